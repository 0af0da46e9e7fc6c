package auth

import (
	"errors"
	"time"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
	ErrTokenNotRecognized = errors.New("token not recognized")
)

// UserRecord is the persisted user as the auth core sees it. RefreshTokens is
// the ordered list of currently valid refresh tokens; presence in the list is
// the sole authority for refresh validity.
type UserRecord struct {
	ID            int64
	Username      string
	PasswordHash  string
	Role          string
	RefreshTokens []string
	CreatedAt     time.Time
}

type AccessClaims struct {
	Username  string
	Role      string
	ExpiresAt time.Time
}

type AuthResult struct {
	Username     string
	IsAdmin      bool
	AccessToken  string
	RefreshToken string
}
