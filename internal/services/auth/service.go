package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Raiyan-S/GP-Dashboard/internal/domain/enums"
	"github.com/Raiyan-S/GP-Dashboard/internal/domain/model"
)

// Service owns the credential and session lifecycle: registration, login,
// opaque token issuance, sliding-window renewal, lazy expiry and revocation.
type Service struct {
	users         UserStore
	sessions      SessionStore
	sessionTTL    time.Duration
	refreshWindow time.Duration
	now           func() time.Time
}

func NewService(users UserStore, sessions SessionStore, sessionTTL, refreshWindow time.Duration) *Service {
	if sessionTTL <= 0 {
		sessionTTL = time.Hour
	}
	if refreshWindow <= 0 || refreshWindow > sessionTTL {
		refreshWindow = sessionTTL / 4
	}

	return &Service{
		users:         users,
		sessions:      sessions,
		sessionTTL:    sessionTTL,
		refreshWindow: refreshWindow,
		now:           time.Now,
	}
}

// SetClock replaces the time source. Tests use it to step through the
// expiry and renewal transitions without sleeping.
func (s *Service) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Register stores a new user with the default clinic role. The username is
// expected to be validated (email syntax, password policy) at the HTTP
// boundary; duplicates are detected here against the unique username index.
func (s *Service) Register(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return ErrInvalidInput
	}

	hash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user := model.User{
		Username:     username,
		PasswordHash: hash,
		Role:         enums.RoleClinic,
		CreatedAt:    s.now().UTC(),
	}

	if err := s.users.Insert(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicateUser) {
			return ErrDuplicateUser
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// Login verifies the credentials and issues a fresh session. The error for a
// wrong password and an unknown username is identical so the response cannot
// be used to probe registered emails.
func (s *Service) Login(ctx context.Context, username, password string) (LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return LoginResult{}, ErrInvalidInput
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, fmt.Errorf("get user by username: %w", err)
	}

	if !VerifyPassword(password, user.PasswordHash) {
		return LoginResult{}, ErrInvalidCredentials
	}

	token, err := s.CreateSession(ctx, user.ID)
	if err != nil {
		return LoginResult{}, err
	}

	return LoginResult{Token: token, User: user}, nil
}

// CreateSession persists a new opaque token expiring after the session TTL.
func (s *Service) CreateSession(ctx context.Context, userID primitive.ObjectID) (string, error) {
	token, err := NewSessionToken()
	if err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}

	now := s.now().UTC()
	session := model.Session{
		UserID:    userID,
		Token:     token,
		ExpiresAt: now.Add(s.sessionTTL),
		CreatedAt: now,
	}

	if err := s.sessions.Insert(ctx, session); err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}

	return token, nil
}

// ValidateSession resolves a token to its session. An expired session is
// deleted on sight (lazy expiry) and reported as ErrUnauthorized, the same
// as a token that never existed. A session whose remaining TTL has dropped
// below the refresh window is extended to now+TTL before being returned;
// the store applies the extension conditionally on the expiry read here so
// concurrent renewals of the same token cannot clobber each other.
func (s *Service) ValidateSession(ctx context.Context, token string) (model.Session, error) {
	if strings.TrimSpace(token) == "" {
		return model.Session{}, ErrUnauthorized
	}

	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return model.Session{}, ErrUnauthorized
		}
		return model.Session{}, fmt.Errorf("get session by token: %w", err)
	}

	now := s.now().UTC()
	if session.ExpiresAt.Before(now) {
		if err := s.sessions.DeleteByToken(ctx, token); err != nil {
			return model.Session{}, fmt.Errorf("delete expired session: %w", err)
		}
		return model.Session{}, ErrUnauthorized
	}

	if session.ExpiresAt.Sub(now) < s.refreshWindow {
		newExpiry := now.Add(s.sessionTTL)
		err := s.sessions.ExtendExpiry(ctx, token, session.ExpiresAt, newExpiry)
		switch {
		case err == nil:
			session.ExpiresAt = newExpiry
		case errors.Is(err, ErrSessionNotFound):
			// Lost the renewal race or the session was revoked in between;
			// the session we read is still valid right now.
		default:
			return model.Session{}, fmt.Errorf("extend session expiry: %w", err)
		}
	}

	return session, nil
}

// RevokeSession deletes the session. Revoking an unknown token is a no-op.
func (s *Service) RevokeSession(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return nil
	}
	if err := s.sessions.DeleteByToken(ctx, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// CurrentUser validates the token and resolves the referenced user. A
// session pointing at a deleted user does not grant access.
func (s *Service) CurrentUser(ctx context.Context, token string) (model.User, error) {
	session, err := s.ValidateSession(ctx, token)
	if err != nil {
		return model.User{}, err
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return model.User{}, ErrUnauthorized
		}
		return model.User{}, fmt.Errorf("get session user: %w", err)
	}

	return user, nil
}
