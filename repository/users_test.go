package repository

import (
	"context"
	"testing"
	"time"

	"noteshare/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func userDoc(id, username string) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "username", Value: username},
		{Key: "password_hash", Value: "salt$hash"},
		{Key: "created_at", Value: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
		{Key: "two_factor_enabled", Value: false},
	}
}

func TestUserRepo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("AddUser", func(mt *mtest.T) {
		repo := &UserRepo{MongoCollection: mt.Coll, Timeout: time.Second}
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		err := repo.AddUser(ctx, &model.User{ID: "u1", Username: "alice", PasswordHash: "salt$hash"})
		assert.NoError(mt, err)
	})

	mt.Run("AddUser duplicate username", func(mt *mtest.T) {
		repo := &UserRepo{MongoCollection: mt.Coll, Timeout: time.Second}
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error",
		}))

		err := repo.AddUser(ctx, &model.User{ID: "u2", Username: "alice", PasswordHash: "salt$hash"})
		assert.ErrorIs(mt, err, ErrDuplicate)
	})

	mt.Run("AddUser rejects incomplete user", func(mt *mtest.T) {
		repo := &UserRepo{MongoCollection: mt.Coll, Timeout: time.Second}

		err := repo.AddUser(ctx, &model.User{ID: "u3"})
		assert.Error(mt, err)
	})

	mt.Run("FindUserByUsername", func(mt *mtest.T) {
		repo := &UserRepo{MongoCollection: mt.Coll, Timeout: time.Second}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "noteshare.users", mtest.FirstBatch,
			userDoc("u1", "alice")))

		user, err := repo.FindUserByUsername(ctx, "alice")
		require.NoError(mt, err)
		assert.Equal(mt, "u1", user.ID)
		assert.Equal(mt, "alice", user.Username)
		assert.Nil(mt, user.Email)
	})

	mt.Run("FindUserByID not found", func(mt *mtest.T) {
		repo := &UserRepo{MongoCollection: mt.Coll, Timeout: time.Second}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "noteshare.users", mtest.FirstBatch))

		user, err := repo.FindUserByID(ctx, "missing")
		assert.ErrorIs(mt, err, ErrNotFound)
		assert.Nil(mt, user)
	})

	mt.Run("FindUsersByIDs", func(mt *mtest.T) {
		repo := &UserRepo{MongoCollection: mt.Coll, Timeout: time.Second}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "noteshare.users", mtest.FirstBatch,
			userDoc("u1", "alice"), userDoc("u2", "bob")))

		users, err := repo.FindUsersByIDs(ctx, []string{"u1", "u2", "gone"})
		require.NoError(mt, err)
		assert.Len(mt, users, 2)
	})

	mt.Run("FindUsersByIDs empty input skips the query", func(mt *mtest.T) {
		repo := &UserRepo{MongoCollection: mt.Coll, Timeout: time.Second}

		users, err := repo.FindUsersByIDs(ctx, nil)
		require.NoError(mt, err)
		assert.Empty(mt, users)
	})

	mt.Run("UpdateUser", func(mt *mtest.T) {
		repo := &UserRepo{MongoCollection: mt.Coll, Timeout: time.Second}
		updated := userDoc("u1", "alice2")
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: updated}))

		name := "alice2"
		user, err := repo.UpdateUser(ctx, "u1", model.UserPatch{Username: &name, ClearEmail: true})
		require.NoError(mt, err)
		assert.Equal(mt, "alice2", user.Username)
	})

	mt.Run("UpdateUser conflict", func(mt *mtest.T) {
		repo := &UserRepo{MongoCollection: mt.Coll, Timeout: time.Second}
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    11000,
			Message: "E11000 duplicate key error",
			Name:    "DuplicateKey",
		}))

		name := "bob"
		_, err := repo.UpdateUser(ctx, "u1", model.UserPatch{Username: &name})
		assert.ErrorIs(mt, err, ErrDuplicate)
	})

	mt.Run("UpdateUser missing user", func(mt *mtest.T) {
		repo := &UserRepo{MongoCollection: mt.Coll, Timeout: time.Second}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		name := "ghost"
		_, err := repo.UpdateUser(ctx, "missing", model.UserPatch{Username: &name})
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("DeleteUserByID", func(mt *mtest.T) {
		repo := &UserRepo{MongoCollection: mt.Coll, Timeout: time.Second}
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}),
		)

		assert.NoError(mt, repo.DeleteUserByID(ctx, "u1"))
		assert.ErrorIs(mt, repo.DeleteUserByID(ctx, "u1"), ErrNotFound)
	})
}
