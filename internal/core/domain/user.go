package domain

import "time"

// User represents a user of the application. Authentication is handled by
// the session layer; the workflow core only ever consumes the user id and
// the system-admin flag.
type User struct {
	UserID        string `json:"userID"`
	Username      string `json:"username" db:"username"`
	PasswordHash  string `json:"-" db:"password_hash"`
	Name          string `json:"name"`
	IsSystemAdmin bool   `json:"isSystemAdmin" db:"is_system_admin"`
	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty" db:"deleted_at"`

	// Refresh Token Fields
	RefreshTokenHash       *string    `json:"-" db:"refresh_token_hash"`
	RefreshTokenExpiryTime *time.Time `json:"-" db:"refresh_token_expiry_time"`
}

// GoogleUserInfo is the subset of the Google userinfo response consumed when
// provisioning a user from a Google sign-in.
type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}
