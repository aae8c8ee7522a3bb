package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"noteshare/model"
	"noteshare/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type NotesRepo struct {
	MongoCollection *mongo.Collection
	Timeout         time.Duration
}

func GetNotesRepo(db *mongo.Database, timeout time.Duration) *NotesRepo {
	return &NotesRepo{
		MongoCollection: db.Collection(NotesCollection),
		Timeout:         timeout,
	}
}

var newestFirst = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}

// CreateNote inserts a new note
func (r *NotesRepo) CreateNote(ctx context.Context, note *model.Note) error {
	timer := utils.TrackDBOperation("insert", NotesCollection)
	defer timer.ObserveDuration()

	if note.ID == "" || note.UserID == "" {
		return errors.New("note id and user id are required")
	}

	ctx, cancel := withTimeout(ctx, r.Timeout)
	defer cancel()

	if _, err := r.MongoCollection.InsertOne(ctx, note); err != nil {
		utils.TrackError("database", "note_creation_failed")
		return writeErr("create note", err)
	}
	return nil
}

func (r *NotesRepo) findOne(ctx context.Context, filter bson.M) (*model.Note, error) {
	timer := utils.TrackDBOperation("find", NotesCollection)
	defer timer.ObserveDuration()

	ctx, cancel := withTimeout(ctx, r.Timeout)
	defer cancel()

	var note model.Note
	err := r.MongoCollection.FindOne(ctx, filter).Decode(&note)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find note: %w", err)
	}
	return &note, nil
}

// GetNoteByID retrieves a note regardless of owner
func (r *NotesRepo) GetNoteByID(ctx context.Context, noteID string) (*model.Note, error) {
	return r.findOne(ctx, bson.M{"_id": noteID})
}

// GetNote retrieves a note owned by userID
func (r *NotesRepo) GetNote(ctx context.Context, noteID, userID string) (*model.Note, error) {
	return r.findOne(ctx, bson.M{"_id": noteID, "user_id": userID})
}

func (r *NotesRepo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.Note, error) {
	timer := utils.TrackDBOperation("find_many", NotesCollection)
	defer timer.ObserveDuration()

	ctx, cancel := withTimeout(ctx, r.Timeout)
	defer cancel()

	cursor, err := r.MongoCollection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find notes: %w", err)
	}
	defer cursor.Close(ctx)

	notes := []*model.Note{}
	if err = cursor.All(ctx, &notes); err != nil {
		return nil, fmt.Errorf("failed to decode notes: %w", err)
	}
	return notes, nil
}

// GetUserNotes retrieves all notes for a user, newest first
func (r *NotesRepo) GetUserNotes(ctx context.Context, userID string) ([]*model.Note, error) {
	return r.find(ctx, bson.M{"user_id": userID}, options.Find().SetSort(newestFirst))
}

// GetAllNotes retrieves every note, newest first
func (r *NotesRepo) GetAllNotes(ctx context.Context) ([]*model.Note, error) {
	return r.find(ctx, bson.M{}, options.Find().SetSort(newestFirst))
}

// GetNotesByIDs returns the notes that still exist among ids, in no particular order.
func (r *NotesRepo) GetNotesByIDs(ctx context.Context, ids []string) ([]*model.Note, error) {
	if len(ids) == 0 {
		return []*model.Note{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find())
}

// SearchNotes matches query as a literal, case-insensitive substring of title or content.
// An empty userID searches every note.
func (r *NotesRepo) SearchNotes(ctx context.Context, userID, query string) ([]*model.Note, error) {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	filter := bson.M{
		"$or": bson.A{
			bson.M{"title": pattern},
			bson.M{"content": pattern},
		},
	}
	if userID != "" {
		filter["user_id"] = userID
	}
	return r.find(ctx, filter, options.Find().SetSort(newestFirst))
}

// UpdateNote applies patch to a note owned by userID and returns the result.
func (r *NotesRepo) UpdateNote(ctx context.Context, noteID, userID string, patch model.NotePatch) (*model.Note, error) {
	timer := utils.TrackDBOperation("update", NotesCollection)
	defer timer.ObserveDuration()

	set := bson.M{"updated_at": time.Now().UTC()}
	update := bson.M{"$set": set}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Content != nil {
		set["content"] = *patch.Content
	}
	if patch.ImageURL != nil {
		if *patch.ImageURL == "" {
			update["$unset"] = bson.M{"image_url": ""}
		} else {
			set["image_url"] = *patch.ImageURL
		}
	}

	ctx, cancel := withTimeout(ctx, r.Timeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var note model.Note
	err := r.MongoCollection.FindOneAndUpdate(ctx,
		bson.M{"_id": noteID, "user_id": userID},
		update, opts).Decode(&note)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		utils.TrackError("database", "note_update_failed")
		return nil, fmt.Errorf("failed to update note: %w", err)
	}
	return &note, nil
}

// DeleteNote deletes a note owned by userID
func (r *NotesRepo) DeleteNote(ctx context.Context, noteID, userID string) error {
	timer := utils.TrackDBOperation("delete", NotesCollection)
	defer timer.ObserveDuration()

	ctx, cancel := withTimeout(ctx, r.Timeout)
	defer cancel()

	result, err := r.MongoCollection.DeleteOne(ctx, bson.M{"_id": noteID, "user_id": userID})
	if err != nil {
		utils.TrackError("database", "note_deletion_failed")
		return fmt.Errorf("failed to delete note: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// GetUserNoteIDs lists the ids of every note owned by userID
func (r *NotesRepo) GetUserNoteIDs(ctx context.Context, userID string) ([]string, error) {
	timer := utils.TrackDBOperation("find_ids", NotesCollection)
	defer timer.ObserveDuration()

	ctx, cancel := withTimeout(ctx, r.Timeout)
	defer cancel()

	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cursor, err := r.MongoCollection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find note ids: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID string `bson:"_id"`
	}
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode note ids: %w", err)
	}
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return ids, nil
}

func (r *NotesRepo) DeleteUserNotes(ctx context.Context, userID string) (int64, error) {
	timer := utils.TrackDBOperation("delete_many", NotesCollection)
	defer timer.ObserveDuration()

	ctx, cancel := withTimeout(ctx, r.Timeout)
	defer cancel()

	result, err := r.MongoCollection.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete user notes: %w", err)
	}
	return result.DeletedCount, nil
}
