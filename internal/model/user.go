package model

import "time"

// Role values stored in users.role.  ADMIN manages slots, windows and
// member plans; MEMBER books and cancels their own classes.
const (
	RoleAdmin  = "ADMIN"
	RoleMember = "MEMBER"
)

// User represents an application user record as stored in the `users`
// table.  Handlers define separate response types with JSON tags; these
// structs are used by the repository layer.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Email        – unique email address.
//	PasswordHash – bcrypt hashed password.
//	FullName     – display name shown on rosters.
//	Role         – ADMIN or MEMBER.
//	IsActive     – whether the account is active.
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type User struct {
	ID           int64     `json:"id"`         // users.id
	Email        string    `json:"email"`      // users.email
	PasswordHash string    `json:"-"`          // users.password_hash, never serialized
	FullName     string    `json:"full_name"`  // users.full_name
	Role         string    `json:"role"`       // users.role
	IsActive     bool      `json:"is_active"`  // users.is_active
	CreatedAt    time.Time `json:"created_at"` // users.created_at
	UpdatedAt    time.Time `json:"updated_at"` // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user and carries expiry and revocation
// metadata.  The plain token is never stored; only its SHA-256 hash.
//
// Fields:
//
//	ID        – primary key identifier.
//	UserID    – owner of the token.
//	TokenHash – SHA-256 hex digest of the token value.
//	ExpiresAt – expiration timestamp of the token.
//	RevokedAt – when the token was revoked (null if still active).
//	CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        int64      // refresh_tokens.id
	UserID    int64      // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
