package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Raiyan-S/GP-Dashboard/internal/domain/model"
	"github.com/Raiyan-S/GP-Dashboard/internal/services/auth"
)

type SessionRepo struct {
	collection *mongo.Collection
}

func NewSessionRepo(db *mongo.Database) *SessionRepo {
	return &SessionRepo{collection: db.Collection(sessionsCollection)}
}

func (r *SessionRepo) Insert(ctx context.Context, session model.Session) error {
	if r.collection == nil {
		return fmt.Errorf("sessions collection is nil")
	}

	if _, err := r.collection.InsertOne(ctx, session); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	return nil
}

func (r *SessionRepo) GetByToken(ctx context.Context, token string) (model.Session, error) {
	if r.collection == nil {
		return model.Session{}, fmt.Errorf("sessions collection is nil")
	}

	var session model.Session
	err := r.collection.FindOne(ctx, bson.M{"token": token}).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return model.Session{}, auth.ErrSessionNotFound
		}
		return model.Session{}, fmt.Errorf("find session by token: %w", err)
	}

	return session, nil
}

// ExtendExpiry moves the expiry forward only if it still holds the value
// the caller read. A concurrent renewal that got there first makes the
// filter miss, which surfaces as ErrSessionNotFound.
func (r *SessionRepo) ExtendExpiry(ctx context.Context, token string, ifExpiresAt, newExpiresAt time.Time) error {
	if r.collection == nil {
		return fmt.Errorf("sessions collection is nil")
	}

	res, err := r.collection.UpdateOne(ctx,
		bson.M{"token": token, "expires": ifExpiresAt},
		bson.M{"$set": bson.M{"expires": newExpiresAt}},
	)
	if err != nil {
		return fmt.Errorf("extend session expiry: %w", err)
	}
	if res.MatchedCount == 0 {
		return auth.ErrSessionNotFound
	}

	return nil
}

// DeleteExpired removes every session that expired before the cutoff.
func (r *SessionRepo) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	if r.collection == nil {
		return 0, fmt.Errorf("sessions collection is nil")
	}

	res, err := r.collection.DeleteMany(ctx, bson.M{"expires": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}

	return res.DeletedCount, nil
}

func (r *SessionRepo) DeleteByToken(ctx context.Context, token string) error {
	if r.collection == nil {
		return fmt.Errorf("sessions collection is nil")
	}

	if _, err := r.collection.DeleteOne(ctx, bson.M{"token": token}); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	return nil
}
