package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Inkrex-dev/lab-dash-ex/internal/domain/enums"
)

// UserStore is the persisted user-record store the session controller runs
// against. Create assigns the role itself: the first user ever created is
// admin, everyone after is a regular user.
type UserStore interface {
	Create(ctx context.Context, username, passwordHash string) (UserRecord, error)
	FindByUsername(ctx context.Context, username string) (UserRecord, error)
	HasUsers(ctx context.Context) (bool, error)
	ReplaceRefreshTokens(ctx context.Context, userID int64, tokens []string) error
	FindByRefreshToken(ctx context.Context, token string) (UserRecord, error)
	PurgeRefreshToken(ctx context.Context, token string) ([]int64, error)
}

type Service struct {
	users      UserStore
	tokens     *TokenManager
	bcryptCost int
	logger     *zap.Logger
}

func NewService(users UserStore, tokens *TokenManager, bcryptCost int, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		users:      users,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

func (s *Service) Register(ctx context.Context, username, password string) (UserRecord, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return UserRecord{}, ErrInvalidInput
	}

	hash, err := HashPassword(password, s.bcryptCost)
	if err != nil {
		return UserRecord{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, username, hash)
	if err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			return UserRecord{}, ErrUsernameTaken
		}
		return UserRecord{}, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// Login verifies credentials and opens a new session. Unknown username and
// wrong password are indistinguishable to the caller. Existing refresh tokens
// are left alone so each device keeps its own independently rotatable token.
func (s *Service) Login(ctx context.Context, username, password string) (AuthResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return AuthResult{}, ErrInvalidInput
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, fmt.Errorf("find user: %w", err)
	}

	if err := CheckPassword(user.PasswordHash, password); err != nil {
		return AuthResult{}, ErrInvalidCredentials
	}

	return s.issueForUser(ctx, user, user.RefreshTokens)
}

// Refresh exchanges a refresh token for a fresh pair, rotating the old token
// out. A cryptographically valid token that is absent from its owner's list
// is treated as reuse: the value is swept from every user's list and no new
// tokens are issued.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (AuthResult, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return AuthResult{}, ErrInvalidInput
	}

	if exp, ok := s.tokens.DecodeExpiry(refreshToken); ok {
		s.logger.Debug("refresh token presented", zap.Time("expires_at", exp))
	}

	username, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return AuthResult{}, err
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return AuthResult{}, ErrUserNotFound
		}
		return AuthResult{}, fmt.Errorf("find user: %w", err)
	}

	if !ContainsToken(user.RefreshTokens, refreshToken) {
		ids, purgeErr := s.users.PurgeRefreshToken(ctx, refreshToken)
		if purgeErr != nil {
			s.logger.Warn("refresh token sweep failed", zap.Error(purgeErr))
		} else if len(ids) > 0 {
			s.logger.Warn("refresh token found on other users during sweep",
				zap.String("username", username),
				zap.Int("affected_users", len(ids)),
			)
		}
		return AuthResult{}, ErrTokenNotRecognized
	}

	return s.rotate(ctx, user, refreshToken)
}

// Logout removes one occurrence of the token from the first user found
// holding it. A token nobody holds is a no-op; logout is idempotent.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if strings.TrimSpace(refreshToken) == "" {
		return nil
	}

	user, err := s.users.FindByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("find user by refresh token: %w", err)
	}

	remaining := RemoveToken(user.RefreshTokens, refreshToken)
	if err := s.users.ReplaceRefreshTokens(ctx, user.ID, remaining); err != nil {
		return fmt.Errorf("remove refresh token: %w", err)
	}

	return nil
}

func (s *Service) HasUsers(ctx context.Context) (bool, error) {
	exists, err := s.users.HasUsers(ctx)
	if err != nil {
		return false, fmt.Errorf("check users exist: %w", err)
	}
	return exists, nil
}

// ValidateAccess checks an access token on its own. Access tokens are never
// persisted; validity is purely cryptographic and time based.
func (s *Service) ValidateAccess(accessToken string) (AccessClaims, error) {
	return s.tokens.VerifyAccess(accessToken)
}

// ResolveIdentity validates the access token and maps the claimed username to
// its stored user id for request-scoped identity. The lookup does not decide
// token validity; it only rejects tokens for users that no longer exist.
func (s *Service) ResolveIdentity(ctx context.Context, accessToken string) (Identity, error) {
	claims, err := s.tokens.VerifyAccess(accessToken)
	if err != nil {
		return Identity{}, err
	}

	user, err := s.users.FindByUsername(ctx, claims.Username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return Identity{}, ErrUserNotFound
		}
		return Identity{}, fmt.Errorf("find user: %w", err)
	}

	return Identity{
		UserID:   user.ID,
		Username: user.Username,
		Role:     claims.Role,
	}, nil
}

func (s *Service) rotate(ctx context.Context, user UserRecord, oldToken string) (AuthResult, error) {
	accessToken, err := s.tokens.IssueAccess(user.Username, user.Role)
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue access token: %w", err)
	}
	newRefresh, err := s.tokens.IssueRefresh(user.Username)
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue refresh token: %w", err)
	}

	next := AppendToken(RemoveToken(user.RefreshTokens, oldToken), newRefresh)
	if err := s.users.ReplaceRefreshTokens(ctx, user.ID, next); err != nil {
		return AuthResult{}, fmt.Errorf("rotate refresh token: %w", err)
	}

	return AuthResult{
		Username:     user.Username,
		IsAdmin:      user.Role == string(enums.RoleAdmin),
		AccessToken:  accessToken,
		RefreshToken: newRefresh,
	}, nil
}

func (s *Service) issueForUser(ctx context.Context, user UserRecord, current []string) (AuthResult, error) {
	accessToken, err := s.tokens.IssueAccess(user.Username, user.Role)
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue access token: %w", err)
	}
	refreshToken, err := s.tokens.IssueRefresh(user.Username)
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue refresh token: %w", err)
	}

	if err := s.users.ReplaceRefreshTokens(ctx, user.ID, AppendToken(current, refreshToken)); err != nil {
		return AuthResult{}, fmt.Errorf("store refresh token: %w", err)
	}

	return AuthResult{
		Username:     user.Username,
		IsAdmin:      user.Role == string(enums.RoleAdmin),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
