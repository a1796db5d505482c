// Package directory provides read access to the user directory: a Postgres
// repository for the full UserRecord projection and a Redis read-through
// cache in front of it. The segmentation evaluator only ever filters the
// in-memory slice this package returns; it never queries the store itself.
package directory

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/oakmart/storefront/internal/domain"
)

// Repo reads user records from PostgreSQL.
type Repo struct {
	db *sql.DB
}

// NewRepo creates a Postgres-backed user directory repository.
func NewRepo(db *sql.DB) *Repo { return &Repo{db: db} }

// List returns the full user directory, oldest signup first. The order is
// stable so that filtered views keep a consistent row order across refreshes.
func (r *Repo) List(ctx context.Context) ([]domain.UserRecord, error) {
	query := `
		SELECT id, email, COALESCE(first_name,''), COALESCE(last_name,''),
			COALESCE(company,''), roles, COALESCE(status,''),
			COALESCE(location,''), COALESCE(signup_source,''), spend,
			created_at, updated_at
		FROM user_profiles
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []domain.UserRecord
	for rows.Next() {
		var u domain.UserRecord
		var spend sql.NullFloat64
		err := rows.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName,
			&u.Company, pq.Array(&u.Roles), &u.Status,
			&u.Location, &u.SignupSource, &spend,
			&u.CreatedAt, &u.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		if spend.Valid {
			v := spend.Float64
			u.Spend = &v
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	return out, nil
}

// Get returns a single user record by ID, or sql.ErrNoRows.
func (r *Repo) Get(ctx context.Context, id string) (*domain.UserRecord, error) {
	query := `
		SELECT id, email, COALESCE(first_name,''), COALESCE(last_name,''),
			COALESCE(company,''), roles, COALESCE(status,''),
			COALESCE(location,''), COALESCE(signup_source,''), spend,
			created_at, updated_at
		FROM user_profiles
		WHERE id = $1
	`

	var u domain.UserRecord
	var spend sql.NullFloat64
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&u.ID, &u.Email, &u.FirstName, &u.LastName,
		&u.Company, pq.Array(&u.Roles), &u.Status,
		&u.Location, &u.SignupSource, &spend,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if spend.Valid {
		v := spend.Float64
		u.Spend = &v
	}

	return &u, nil
}
