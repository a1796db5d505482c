package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasRole(t *testing.T) {
	u := UserRecord{Roles: []string{"admin", "editor"}}
	assert.True(t, u.HasRole("admin"))
	assert.False(t, u.HasRole("viewer"))
	assert.False(t, u.HasRole("Admin"), "role names are case-sensitive")

	empty := UserRecord{}
	assert.False(t, empty.HasRole("admin"))
}
