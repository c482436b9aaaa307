package auth

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Raiyan-S/GP-Dashboard/internal/domain/model"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateUser      = errors.New("user already registered")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrSessionNotFound    = errors.New("session not found")
	ErrUserNotFound       = errors.New("user not found")
)

// SessionStore persists opaque session tokens. ExtendExpiry is conditional
// on the expiry the caller read, so two concurrent renewals cannot move the
// expiry backwards.
type SessionStore interface {
	Insert(ctx context.Context, session model.Session) error
	GetByToken(ctx context.Context, token string) (model.Session, error)
	ExtendExpiry(ctx context.Context, token string, ifExpiresAt, newExpiresAt time.Time) error
	DeleteByToken(ctx context.Context, token string) error
}

type UserStore interface {
	Insert(ctx context.Context, user model.User) error
	GetByUsername(ctx context.Context, username string) (model.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (model.User, error)
}

type LoginResult struct {
	Token string
	User  model.User
}
