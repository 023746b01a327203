package auth

import "time"

// Role is carried in the auth token issued by the external auth system.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleKitchen  Role = "KITCHEN"
	RoleWaiter   Role = "WAITER"
	RoleCustomer Role = "CUSTOMER"
)

// Staff reports whether the role grants staff-side order transitions.
func (r Role) Staff() bool {
	switch r {
	case RoleAdmin, RoleKitchen, RoleWaiter:
		return true
	}
	return false
}

// Claims is the identity extracted from a verified token.
type Claims struct {
	UserID int64
	Role   Role
}

// Strategy verifies and issues auth tokens.
type Strategy interface {
	IssueToken(userID int64, role Role) (string, error)
	ParseToken(token string) (*Claims, error)
	Name() string
}

// Options tune token issuance.
type Options struct {
	TTL time.Duration
}
