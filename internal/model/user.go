package model

import "time"

// User is the credential-store record. PasswordHash never leaves the process:
// the json tag excludes it from every serialized form.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TokenClaims is the decoded, verified view of an access token. It is
// ephemeral: nothing here is persisted server-side.
type TokenClaims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	TokenID   string
}

// Token is the login response body. ExpiresIn is seconds until expiry.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}
