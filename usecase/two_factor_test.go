package usecase_test

import (
	"context"
	"testing"
	"time"

	"noteshare/services"
	"noteshare/usecase"
	"noteshare/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func currentCode(t *testing.T, secret string) string {
	t.Helper()
	code, err := services.CurrentTOTP(secret, time.Now())
	require.NoError(t, err)
	return code
}

func TestTwoFactorFlow(t *testing.T) {
	ctx := context.Background()
	app := newApp(t)
	alice := register(t, app, "alice")

	_, err := app.UserService.EnableTwoFactor(ctx, alice.ID, "123456")
	assert.ErrorIs(t, err, usecase.ErrValidation)

	key, err := app.UserService.SetupTwoFactor(ctx, alice.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, key.Secret)
	assert.Contains(t, key.URL, "otpauth://totp/")

	_, err = app.UserService.EnableTwoFactor(ctx, alice.ID, "000000")
	if err != nil {
		assert.ErrorIs(t, err, usecase.ErrAuth)
	}

	codes, err := app.UserService.EnableTwoFactor(ctx, alice.ID, currentCode(t, key.Secret))
	require.NoError(t, err)
	assert.Len(t, codes, utils.NumRecoveryCodes)

	stored, err := app.Users.FindUserByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.True(t, stored.TwoFactorEnabled)
	assert.NotContains(t, stored.RecoveryCodes, codes[0])

	_, err = app.UserService.SetupTwoFactor(ctx, alice.ID)
	assert.ErrorIs(t, err, usecase.ErrValidation)

	t.Run("login needs a second factor", func(t *testing.T) {
		_, err := app.UserService.Login(ctx, usecase.LoginInput{Username: "alice", Password: testPassword})
		assert.ErrorIs(t, err, usecase.ErrAuth)
		assert.Equal(t, "Two-factor code required", usecase.Message(err))
	})

	t.Run("login with totp", func(t *testing.T) {
		res, err := app.UserService.Login(ctx, usecase.LoginInput{
			Username: "alice", Password: testPassword, TwoFactorCode: currentCode(t, key.Secret),
		})
		require.NoError(t, err)
		assert.NotEmpty(t, res.Token)
	})

	t.Run("recovery codes are single use", func(t *testing.T) {
		in := usecase.LoginInput{Username: "alice", Password: testPassword, TwoFactorCode: codes[1]}
		_, err := app.UserService.Login(ctx, in)
		require.NoError(t, err)

		_, err = app.UserService.Login(ctx, in)
		assert.ErrorIs(t, err, usecase.ErrAuth)
	})

	t.Run("disable", func(t *testing.T) {
		err := app.UserService.DisableTwoFactor(ctx, alice.ID, "not-a-code")
		assert.ErrorIs(t, err, usecase.ErrAuth)

		require.NoError(t, app.UserService.DisableTwoFactor(ctx, alice.ID, codes[2]))

		stored, err := app.Users.FindUserByID(ctx, alice.ID)
		require.NoError(t, err)
		assert.False(t, stored.TwoFactorEnabled)
		assert.Empty(t, stored.TwoFactorSecret)
		assert.Empty(t, stored.RecoveryCodes)

		login(t, app, "alice")
	})
}
