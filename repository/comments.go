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

type CommentsRepo struct {
	MongoCollection *mongo.Collection
	Timeout         time.Duration
}

func GetCommentsRepo(db *mongo.Database, timeout time.Duration) *CommentsRepo {
	return &CommentsRepo{
		MongoCollection: db.Collection(CommentsCollection),
		Timeout:         timeout,
	}
}

func (r *CommentsRepo) AddComment(ctx context.Context, comment *model.Comment) error {
	timer := utils.TrackDBOperation("insert", CommentsCollection)
	defer timer.ObserveDuration()

	ctx, cancel := withTimeout(ctx, r.Timeout)
	defer cancel()

	if _, err := r.MongoCollection.InsertOne(ctx, comment); err != nil {
		utils.TrackError("database", "comment_creation_failed")
		return writeErr("add comment", err)
	}
	return nil
}

func (r *CommentsRepo) GetComment(ctx context.Context, commentID string) (*model.Comment, error) {
	timer := utils.TrackDBOperation("find", CommentsCollection)
	defer timer.ObserveDuration()

	ctx, cancel := withTimeout(ctx, r.Timeout)
	defer cancel()

	var comment model.Comment
	err := r.MongoCollection.FindOne(ctx, bson.M{"_id": commentID}).Decode(&comment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find comment: %w", err)
	}
	return &comment, nil
}

// GetNoteComments lists the comments of one note, newest first
func (r *CommentsRepo) GetNoteComments(ctx context.Context, noteID string) ([]*model.Comment, error) {
	timer := utils.TrackDBOperation("find_many", CommentsCollection)
	defer timer.ObserveDuration()

	ctx, cancel := withTimeout(ctx, r.Timeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.MongoCollection.Find(ctx, bson.M{"note_id": noteID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find comments: %w", err)
	}
	defer cursor.Close(ctx)

	comments := []*model.Comment{}
	if err = cursor.All(ctx, &comments); err != nil {
		return nil, fmt.Errorf("failed to decode comments: %w", err)
	}
	return comments, nil
}

func (r *CommentsRepo) DeleteComment(ctx context.Context, commentID string) error {
	timer := utils.TrackDBOperation("delete", CommentsCollection)
	defer timer.ObserveDuration()

	ctx, cancel := withTimeout(ctx, r.Timeout)
	defer cancel()

	result, err := r.MongoCollection.DeleteOne(ctx, bson.M{"_id": commentID})
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteNoteComments removes every comment attached to any of noteIDs.
func (r *CommentsRepo) DeleteNoteComments(ctx context.Context, noteIDs []string) (int64, error) {
	if len(noteIDs) == 0 {
		return 0, nil
	}
	return r.deleteMany(ctx, bson.M{"note_id": bson.M{"$in": noteIDs}})
}

// DeleteUserComments removes every comment authored by userID.
func (r *CommentsRepo) DeleteUserComments(ctx context.Context, userID string) (int64, error) {
	return r.deleteMany(ctx, bson.M{"user_id": userID})
}

func (r *CommentsRepo) deleteMany(ctx context.Context, filter bson.M) (int64, error) {
	timer := utils.TrackDBOperation("delete_many", CommentsCollection)
	defer timer.ObserveDuration()

	ctx, cancel := withTimeout(ctx, r.Timeout)
	defer cancel()

	result, err := r.MongoCollection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to delete comments: %w", err)
	}
	return result.DeletedCount, nil
}

// CountCommentsFor counts comments per note id. Ids without comments are absent.
func (r *CommentsRepo) CountCommentsFor(ctx context.Context, noteIDs []string) (map[string]int, error) {
	counts := make(map[string]int, len(noteIDs))
	if len(noteIDs) == 0 {
		return counts, nil
	}

	timer := utils.TrackDBOperation("aggregate", CommentsCollection)
	defer timer.ObserveDuration()

	ctx, cancel := withTimeout(ctx, r.Timeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"note_id": bson.M{"$in": noteIDs}}}},
		{{Key: "$group", Value: bson.M{"_id": "$note_id", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := r.MongoCollection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to count comments: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		NoteID string `bson:"_id"`
		Count  int    `bson:"count"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode comment counts: %w", err)
	}
	for _, row := range rows {
		counts[row.NoteID] = row.Count
	}
	return counts, nil
}
