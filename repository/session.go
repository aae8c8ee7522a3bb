package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"noteshare/model"
	"noteshare/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type SessionRepo struct {
	MongoCollection *mongo.Collection
	Timeout         time.Duration
}

func GetSessionRepo(db *mongo.Database, timeout time.Duration) *SessionRepo {
	return &SessionRepo{
		MongoCollection: db.Collection(SessionsCollection),
		Timeout:         timeout,
	}
}

func (r *SessionRepo) CreateSession(ctx context.Context, session *model.Session) error {
	timer := utils.TrackDBOperation("insert", SessionsCollection)
	defer timer.ObserveDuration()

	if session == nil {
		utils.TrackError("database", "nil_session")
		return fmt.Errorf("session cannot be nil")
	}
	if session.ID == "" || session.UserID == "" {
		utils.TrackError("database", "invalid_session_data")
		return fmt.Errorf("invalid session data: missing required fields")
	}

	ctx, cancel := withTimeout(ctx, r.Timeout)
	defer cancel()

	if _, err := r.MongoCollection.InsertOne(ctx, session); err != nil {
		utils.TrackError("database", "session_creation_failed")
		return writeErr("create session", err)
	}
	return nil
}

func (r *SessionRepo) GetSession(ctx context.Context, sessionID string) (*model.Session, error) {
	timer := utils.TrackDBOperation("find", SessionsCollection)
	defer timer.ObserveDuration()

	if sessionID == "" {
		return nil, ErrNotFound
	}

	ctx, cancel := withTimeout(ctx, r.Timeout)
	defer cancel()

	var session model.Session
	err := r.MongoCollection.FindOne(ctx, bson.M{"_id": sessionID}).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		utils.TrackError("database", "session_fetch_failed")
		return nil, fmt.Errorf("failed to fetch session: %w", err)
	}
	return &session, nil
}

// GetUserActiveSessions lists unexpired active sessions, most recent activity first.
func (r *SessionRepo) GetUserActiveSessions(ctx context.Context, userID string) ([]*model.Session, error) {
	timer := utils.TrackDBOperation("find_many", SessionsCollection)
	defer timer.ObserveDuration()

	ctx, cancel := withTimeout(ctx, r.Timeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "last_activity_at", Value: -1}})
	cursor, err := r.MongoCollection.Find(ctx,
		bson.M{
			"user_id":    userID,
			"is_active":  true,
			"expires_at": bson.M{"$gt": time.Now().UTC()},
		}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch active sessions: %w", err)
	}
	defer cursor.Close(ctx)

	sessions := []*model.Session{}
	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, fmt.Errorf("failed to decode sessions: %w", err)
	}
	return sessions, nil
}

// EndSession marks a session inactive. Ending an unknown session is ErrNotFound.
func (r *SessionRepo) EndSession(ctx context.Context, sessionID string) error {
	return r.updateOne(ctx, sessionID, bson.M{
		"is_active":        false,
		"last_activity_at": time.Now().UTC(),
	})
}

func (r *SessionRepo) TouchSession(ctx context.Context, sessionID string, at time.Time) error {
	return r.updateOne(ctx, sessionID, bson.M{"last_activity_at": at.UTC()})
}

func (r *SessionRepo) updateOne(ctx context.Context, sessionID string, set bson.M) error {
	timer := utils.TrackDBOperation("update", SessionsCollection)
	defer timer.ObserveDuration()

	ctx, cancel := withTimeout(ctx, r.Timeout)
	defer cancel()

	result, err := r.MongoCollection.UpdateOne(ctx, bson.M{"_id": sessionID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SessionRepo) DeleteUserSessions(ctx context.Context, userID string) (int64, error) {
	timer := utils.TrackDBOperation("delete_many", SessionsCollection)
	defer timer.ObserveDuration()

	if userID == "" {
		return 0, fmt.Errorf("userID cannot be empty")
	}

	ctx, cancel := withTimeout(ctx, r.Timeout)
	defer cancel()

	result, err := r.MongoCollection.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete user sessions: %w", err)
	}
	return result.DeletedCount, nil
}
