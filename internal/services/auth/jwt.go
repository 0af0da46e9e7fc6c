package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenManager signs and verifies the two token kinds. Access tokens carry
// username and role; refresh tokens carry only the username. The two secrets
// may hold the same value but are configured independently.
type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

type accessTokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func NewTokenManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	if accessTTL <= 0 {
		accessTTL = 72 * time.Hour
	}
	if refreshTTL <= 0 {
		refreshTTL = 168 * time.Hour
	}

	return &TokenManager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

func (m *TokenManager) AccessTTL() time.Duration  { return m.accessTTL }
func (m *TokenManager) RefreshTTL() time.Duration { return m.refreshTTL }

func (m *TokenManager) IssueAccess(username, role string) (string, error) {
	if len(m.accessSecret) == 0 {
		return "", fmt.Errorf("access secret is empty")
	}
	if strings.TrimSpace(username) == "" {
		return "", fmt.Errorf("invalid access token payload")
	}

	now := m.now().UTC()
	claims := accessTokenClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.accessSecret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}

	return signed, nil
}

func (m *TokenManager) IssueRefresh(username string) (string, error) {
	if len(m.refreshSecret) == 0 {
		return "", fmt.Errorf("refresh secret is empty")
	}
	if strings.TrimSpace(username) == "" {
		return "", fmt.Errorf("invalid refresh token payload")
	}

	// Tokens are stored and compared by value, so each issuance must produce
	// a distinct string even for the same user at the same second. The jti
	// claim guarantees that; without it, rotation would append a byte-equal
	// copy of the token it just removed.
	now := m.now().UTC()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.refreshTTL)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.refreshSecret)
	if err != nil {
		return "", fmt.Errorf("sign refresh token: %w", err)
	}

	return signed, nil
}

// VerifyAccess returns ErrTokenExpired when the only problem is the expiry
// and ErrTokenInvalid for every other signature or shape failure. A token
// checked at exactly its expiry instant is expired.
func (m *TokenManager) VerifyAccess(raw string) (AccessClaims, error) {
	claims := &accessTokenClaims{}
	if err := m.parse(raw, claims, m.accessSecret); err != nil {
		return AccessClaims{}, err
	}
	if strings.TrimSpace(claims.Subject) == "" || claims.ExpiresAt == nil {
		return AccessClaims{}, ErrTokenInvalid
	}

	return AccessClaims{
		Username:  claims.Subject,
		Role:      claims.Role,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// VerifyRefresh returns the username the token was issued to.
func (m *TokenManager) VerifyRefresh(raw string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	if err := m.parse(raw, claims, m.refreshSecret); err != nil {
		return "", err
	}
	if strings.TrimSpace(claims.Subject) == "" || claims.ExpiresAt == nil {
		return "", ErrTokenInvalid
	}

	return claims.Subject, nil
}

// DecodeExpiry extracts the expiry without verifying the signature. Used only
// for diagnostic logging, never for authorization decisions.
func (m *TokenManager) DecodeExpiry(raw string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}, false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

func (m *TokenManager) parse(raw string, claims jwt.Claims, secret []byte) error {
	if strings.TrimSpace(raw) == "" {
		return ErrTokenInvalid
	}

	token, err := jwt.ParseWithClaims(raw, claims, func(_ *jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return ErrTokenInvalid
	}
	if token == nil || !token.Valid {
		return ErrTokenInvalid
	}

	return nil
}
