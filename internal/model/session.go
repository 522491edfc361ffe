package model

import "time"

// RoleAdmin is the only role the storefront knows
const RoleAdmin = "admin"

// AdminUser is the identity held by an admin session
type AdminUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// Session is an authenticated admin identity. Expiry is milliseconds since
// the Unix epoch, matching the persisted format.
type Session struct {
	ID     string    `json:"id,omitempty"`
	User   AdminUser `json:"user"`
	Expiry int64     `json:"expiry"`
}

// ExpiresAt returns the expiry as a time
func (s Session) ExpiresAt() time.Time {
	return time.UnixMilli(s.Expiry)
}

// Valid reports whether the session is still valid at now
func (s Session) Valid(now time.Time) bool {
	return s.Expiry > now.UnixMilli()
}
