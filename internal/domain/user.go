package domain

import "time"

// UserStatus enumerates the states an account can be in.
type UserStatus string

const (
	UserActive    UserStatus = "active"
	UserInactive  UserStatus = "inactive"
	UserSuspended UserStatus = "suspended"
	UserPending   UserStatus = "pending"
)

// UserRecord is the read-only projection of an account as consumed by the
// admin user table and the segmentation evaluator. Optional attributes are
// empty strings or nil pointers; the evaluator treats them as absent.
type UserRecord struct {
	ID           string     `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	FirstName    string     `json:"first_name" db:"first_name"`
	LastName     string     `json:"last_name" db:"last_name"`
	Company      string     `json:"company,omitempty" db:"company"`
	Roles        []string   `json:"roles" db:"roles"`
	Status       UserStatus `json:"status,omitempty" db:"status"`
	Location     string     `json:"location,omitempty" db:"location"`
	SignupSource string     `json:"signup_source,omitempty" db:"signup_source"`
	Spend        *float64   `json:"spend,omitempty" db:"spend"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// HasRole reports whether the user carries the given role.
func (u *UserRecord) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}
