package domain

import "strings"

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleAdmin
}

type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"-"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Role      Role   `json:"role"`
}

// DisplayName is the name used when addressing the user.
func (u User) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	return u.Username
}

type NewUser struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      Role
}

// Normalize lowercases the identity fields and defaults the role.
func (n NewUser) Normalize() NewUser {
	n.Username = strings.ToLower(strings.TrimSpace(n.Username))
	n.Email = strings.ToLower(strings.TrimSpace(n.Email))
	if n.Role == "" {
		n.Role = RoleCustomer
	}
	return n
}

// UserUpdate is a partial update; nil fields are left untouched.
type UserUpdate struct {
	Username  *string
	Email     *string
	Password  *string
	FirstName *string
	LastName  *string
	Role      *Role
}

func (u UserUpdate) Normalize() UserUpdate {
	if u.Username != nil {
		v := strings.ToLower(strings.TrimSpace(*u.Username))
		u.Username = &v
	}
	if u.Email != nil {
		v := strings.ToLower(strings.TrimSpace(*u.Email))
		u.Email = &v
	}
	return u
}

func (u UserUpdate) Empty() bool {
	return u.Username == nil && u.Email == nil && u.Password == nil &&
		u.FirstName == nil && u.LastName == nil && u.Role == nil
}

// Principal is the authenticated caller as seen by the core.
type Principal struct {
	UserID int64
	Role   Role
}

func (p Principal) Authenticated() bool {
	return p.UserID > 0
}

func (p Principal) IsAdmin() bool {
	return p.Authenticated() && p.Role == RoleAdmin
}
