package directory

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userColumns = []string{
	"id", "email", "first_name", "last_name", "company", "roles",
	"status", "location", "signup_source", "spend", "created_at", "updated_at",
}

func TestRepoList(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepo(db)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT (.+) FROM user_profiles").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow("u1", "ada@example.com", "Ada", "Lovelace", "Analytical Engines",
				"{admin,editor}", "active", "London", "email", 150.0, now, now).
			AddRow("u2", "grace@example.com", "Grace", "Hopper", "",
				"{}", "inactive", "", "google", nil, now, now))

	users, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)

	assert.Equal(t, "u1", users[0].ID)
	assert.Equal(t, []string{"admin", "editor"}, users[0].Roles)
	require.NotNil(t, users[0].Spend)
	assert.Equal(t, 150.0, *users[0].Spend)

	assert.Equal(t, "u2", users[1].ID)
	assert.Empty(t, users[1].Roles)
	assert.Nil(t, users[1].Spend, "NULL spend stays nil")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoGet_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepo(db)

	mock.ExpectQuery("SELECT (.+) FROM user_profiles").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err = repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
