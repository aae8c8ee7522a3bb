package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func collectionIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		UsersCollection: {
			{
				Keys:    bson.D{{Key: "username", Value: 1}},
				Options: options.Index().SetName("username_unique").SetUnique(true),
			},
			// email is optional; uniqueness only applies to documents that carry one
			{
				Keys: bson.D{{Key: "email", Value: 1}},
				Options: options.Index().
					SetName("email_unique").
					SetUnique(true).
					SetPartialFilterExpression(bson.M{"email": bson.M{"$type": "string"}}),
			},
		},
		NotesCollection: {
			{
				Keys: bson.D{
					{Key: "user_id", Value: 1},
					{Key: "created_at", Value: -1},
				},
				Options: options.Index().SetName("user_notes_date"),
			},
			{
				Keys:    bson.D{{Key: "created_at", Value: -1}},
				Options: options.Index().SetName("notes_date"),
			},
		},
		FavoritesCollection: {
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}},
				Options: options.Index().SetName("favorites_user_unique").SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "notes", Value: 1}},
				Options: options.Index().SetName("favorites_notes"),
			},
		},
		CommentsCollection: {
			{
				Keys: bson.D{
					{Key: "note_id", Value: 1},
					{Key: "created_at", Value: -1},
				},
				Options: options.Index().SetName("note_comments_date"),
			},
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}},
				Options: options.Index().SetName("comments_user"),
			},
		},
		SessionsCollection: {
			{
				Keys: bson.D{
					{Key: "user_id", Value: 1},
					{Key: "last_activity_at", Value: -1},
				},
				Options: options.Index().SetName("user_sessions_activity"),
			},
			// expired sessions are purged by the server
			{
				Keys:    bson.D{{Key: "expires_at", Value: 1}},
				Options: options.Index().SetName("sessions_ttl").SetExpireAfterSeconds(0),
			},
		},
	}
}

func SetupIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	for name, models := range collectionIndexes() {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", name, err)
		}
	}

	log.Info().Msg("Successfully created all indexes")
	return nil
}
