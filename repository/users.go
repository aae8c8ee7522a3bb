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

func GetUserRepo(db *mongo.Database, timeout time.Duration) *UserRepo {
	return &UserRepo{
		MongoCollection: db.Collection(UsersCollection),
		Timeout:         timeout,
	}
}

type UserRepo struct {
	MongoCollection *mongo.Collection
	Timeout         time.Duration
}

func (r *UserRepo) AddUser(ctx context.Context, user *model.User) error {
	timer := utils.TrackDBOperation("insert", UsersCollection)
	defer timer.ObserveDuration()

	if user.ID == "" || user.Username == "" || user.PasswordHash == "" {
		utils.TrackError("database", "invalid_user_data")
		return errors.New("user id, username and password hash are required")
	}

	ctx, cancel := withTimeout(ctx, r.Timeout)
	defer cancel()

	if _, err := r.MongoCollection.InsertOne(ctx, user); err != nil {
		utils.TrackError("database", "user_creation_failed")
		return writeErr("add user", err)
	}
	return nil
}

func (r *UserRepo) findOne(ctx context.Context, filter bson.D) (*model.User, error) {
	timer := utils.TrackDBOperation("find", UsersCollection)
	defer timer.ObserveDuration()

	ctx, cancel := withTimeout(ctx, r.Timeout)
	defer cancel()

	var user model.User
	err := r.MongoCollection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		utils.TrackError("database", "user_lookup_error")
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

func (r *UserRepo) FindUserByID(ctx context.Context, userID string) (*model.User, error) {
	return r.findOne(ctx, bson.D{{Key: "_id", Value: userID}})
}

func (r *UserRepo) FindUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.findOne(ctx, bson.D{{Key: "username", Value: username}})
}

func (r *UserRepo) FindUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

// FindUsersByIDs returns the users that exist among ids, in no particular order.
func (r *UserRepo) FindUsersByIDs(ctx context.Context, ids []string) ([]*model.User, error) {
	if len(ids) == 0 {
		return []*model.User{}, nil
	}

	timer := utils.TrackDBOperation("find_many", UsersCollection)
	defer timer.ObserveDuration()

	ctx, cancel := withTimeout(ctx, r.Timeout)
	defer cancel()

	opts := options.Find().SetProjection(bson.M{"password_hash": 0, "two_factor_secret": 0})
	cursor, err := r.MongoCollection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find users: %w", err)
	}
	defer cursor.Close(ctx)

	users := []*model.User{}
	if err = cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

// UpdateUser applies patch and returns the updated document.
func (r *UserRepo) UpdateUser(ctx context.Context, userID string, patch model.UserPatch) (*model.User, error) {
	set := bson.M{}
	unset := bson.M{}
	if patch.Username != nil {
		set["username"] = *patch.Username
	}
	if patch.ClearEmail {
		unset["email"] = ""
	} else if patch.Email != nil {
		set["email"] = *patch.Email
	}
	if patch.ProfileImageURL != nil {
		set["profile_image_url"] = *patch.ProfileImageURL
	}
	if len(set) == 0 && len(unset) == 0 {
		return r.FindUserByID(ctx, userID)
	}

	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return r.findOneAndUpdate(ctx, userID, update)
}

// SetTwoFactor stores the TOTP state. An empty secret clears the secret and recovery codes.
func (r *UserRepo) SetTwoFactor(ctx context.Context, userID, secret string, enabled bool, recoveryCodes []string) error {
	set := bson.M{"two_factor_enabled": enabled}
	update := bson.M{"$set": set}
	if secret == "" {
		update["$unset"] = bson.M{"two_factor_secret": "", "recovery_codes": ""}
	} else {
		set["two_factor_secret"] = secret
		if recoveryCodes != nil {
			set["recovery_codes"] = recoveryCodes
		}
	}
	_, err := r.findOneAndUpdate(ctx, userID, update)
	return err
}

// ConsumeRecoveryCode removes hashedCode from the user's recovery codes and
// reports whether it was present.
func (r *UserRepo) ConsumeRecoveryCode(ctx context.Context, userID, hashedCode string) (bool, error) {
	timer := utils.TrackDBOperation("update", UsersCollection)
	defer timer.ObserveDuration()

	ctx, cancel := withTimeout(ctx, r.Timeout)
	defer cancel()

	result, err := r.MongoCollection.UpdateOne(ctx,
		bson.M{"_id": userID, "recovery_codes": hashedCode},
		bson.M{"$pull": bson.M{"recovery_codes": hashedCode}})
	if err != nil {
		return false, fmt.Errorf("failed to consume recovery code: %w", err)
	}
	return result.ModifiedCount == 1, nil
}

func (r *UserRepo) findOneAndUpdate(ctx context.Context, userID string, update bson.M) (*model.User, error) {
	timer := utils.TrackDBOperation("update", UsersCollection)
	defer timer.ObserveDuration()

	ctx, cancel := withTimeout(ctx, r.Timeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user model.User
	err := r.MongoCollection.FindOneAndUpdate(ctx, bson.M{"_id": userID}, update, opts).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		utils.TrackError("database", "user_update_failed")
		return nil, writeErr("update user", err)
	}
	return &user, nil
}

func (r *UserRepo) DeleteUserByID(ctx context.Context, userID string) error {
	timer := utils.TrackDBOperation("delete", UsersCollection)
	defer timer.ObserveDuration()

	ctx, cancel := withTimeout(ctx, r.Timeout)
	defer cancel()

	result, err := r.MongoCollection.DeleteOne(ctx, bson.M{"_id": userID})
	if err != nil {
		utils.TrackError("database", "user_deletion_failed")
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
