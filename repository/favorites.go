package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"noteshare/model"
	"noteshare/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type FavoritesRepo struct {
	MongoCollection *mongo.Collection
	Timeout         time.Duration
}

func GetFavoritesRepo(db *mongo.Database, timeout time.Duration) *FavoritesRepo {
	return &FavoritesRepo{
		MongoCollection: db.Collection(FavoritesCollection),
		Timeout:         timeout,
	}
}

// GetFavorites returns the favorite set of userID, or ErrNotFound if the user never toggled one.
func (r *FavoritesRepo) GetFavorites(ctx context.Context, userID string) (*model.Favorite, error) {
	timer := utils.TrackDBOperation("find", FavoritesCollection)
	defer timer.ObserveDuration()

	ctx, cancel := withTimeout(ctx, r.Timeout)
	defer cancel()

	var fav model.Favorite
	err := r.MongoCollection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&fav)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find favorites: %w", err)
	}
	if fav.Notes == nil {
		fav.Notes = []string{}
	}
	return &fav, nil
}

// AddFavorite appends noteID to the user's set, creating the set on first use.
func (r *FavoritesRepo) AddFavorite(ctx context.Context, userID, noteID string) error {
	timer := utils.TrackDBOperation("upsert", FavoritesCollection)
	defer timer.ObserveDuration()

	ctx, cancel := withTimeout(ctx, r.Timeout)
	defer cancel()

	update := bson.M{
		"$addToSet":    bson.M{"notes": noteID},
		"$setOnInsert": bson.M{"_id": uuid.NewString()},
	}
	_, err := r.MongoCollection.UpdateOne(ctx, bson.M{"user_id": userID}, update,
		options.Update().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		// a concurrent first favorite created the set; it now matches the filter
		_, err = r.MongoCollection.UpdateOne(ctx, bson.M{"user_id": userID}, update,
			options.Update().SetUpsert(true))
	}
	if err != nil {
		utils.TrackError("database", "favorite_add_failed")
		return writeErr("add favorite", err)
	}
	return nil
}

func (r *FavoritesRepo) RemoveFavorite(ctx context.Context, userID, noteID string) error {
	timer := utils.TrackDBOperation("update", FavoritesCollection)
	defer timer.ObserveDuration()

	ctx, cancel := withTimeout(ctx, r.Timeout)
	defer cancel()

	_, err := r.MongoCollection.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$pull": bson.M{"notes": noteID}})
	if err != nil {
		utils.TrackError("database", "favorite_remove_failed")
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	return nil
}

// CountFavoritesFor counts, per note id, how many favorite sets contain it.
// Ids with no favorites are absent from the result.
func (r *FavoritesRepo) CountFavoritesFor(ctx context.Context, noteIDs []string) (map[string]int, error) {
	counts := make(map[string]int, len(noteIDs))
	if len(noteIDs) == 0 {
		return counts, nil
	}

	timer := utils.TrackDBOperation("aggregate", FavoritesCollection)
	defer timer.ObserveDuration()

	ctx, cancel := withTimeout(ctx, r.Timeout)
	defer cancel()

	in := bson.M{"$in": noteIDs}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"notes": in}}},
		{{Key: "$unwind", Value: "$notes"}},
		{{Key: "$match", Value: bson.M{"notes": in}}},
		{{Key: "$group", Value: bson.M{"_id": "$notes", "count": bson.M{"$sum": 1}}}},
	}

	cursor, err := r.MongoCollection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to count favorites: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		NoteID string `bson:"_id"`
		Count  int    `bson:"count"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode favorite counts: %w", err)
	}
	for _, row := range rows {
		counts[row.NoteID] = row.Count
	}
	return counts, nil
}

// RemoveNotesFromFavorites pulls every id in noteIDs out of every favorite set.
func (r *FavoritesRepo) RemoveNotesFromFavorites(ctx context.Context, noteIDs []string) error {
	if len(noteIDs) == 0 {
		return nil
	}

	timer := utils.TrackDBOperation("update_many", FavoritesCollection)
	defer timer.ObserveDuration()

	ctx, cancel := withTimeout(ctx, r.Timeout)
	defer cancel()

	in := bson.M{"$in": noteIDs}
	_, err := r.MongoCollection.UpdateMany(ctx,
		bson.M{"notes": in},
		bson.M{"$pull": bson.M{"notes": in}})
	if err != nil {
		return fmt.Errorf("failed to remove notes from favorites: %w", err)
	}
	return nil
}

func (r *FavoritesRepo) DeleteUserFavorites(ctx context.Context, userID string) error {
	timer := utils.TrackDBOperation("delete", FavoritesCollection)
	defer timer.ObserveDuration()

	ctx, cancel := withTimeout(ctx, r.Timeout)
	defer cancel()

	if _, err := r.MongoCollection.DeleteMany(ctx, bson.M{"user_id": userID}); err != nil {
		return fmt.Errorf("failed to delete user favorites: %w", err)
	}
	return nil
}
