package usecase

import (
	"context"
	"strings"

	"noteshare/model"
	"noteshare/services"
	"noteshare/utils"
)

// SetupTwoFactor stores a fresh, not yet enabled TOTP secret.
func (s *UserService) SetupTwoFactor(ctx context.Context, userID string) (*services.TOTPKey, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.TwoFactorEnabled {
		return nil, validationError("Two-factor authentication is already enabled")
	}

	issuer := s.TOTPIssuer
	if issuer == "" {
		issuer = "noteshare"
	}
	key, err := services.GenerateTOTP(issuer, user.Username)
	if err != nil {
		return nil, err
	}
	if err := s.Users.SetTwoFactor(ctx, userID, key.Secret, false, nil); err != nil {
		return nil, err
	}
	return key, nil
}

// EnableTwoFactor confirms the pending secret with a code and returns one-time
// recovery codes. Only their hashes are stored.
func (s *UserService) EnableTwoFactor(ctx context.Context, userID, code string) ([]string, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.TwoFactorEnabled {
		return nil, validationError("Two-factor authentication is already enabled")
	}
	if user.TwoFactorSecret == "" {
		return nil, validationError("Two-factor setup has not been started")
	}
	if !services.ValidateTOTP(strings.TrimSpace(code), user.TwoFactorSecret) {
		utils.TrackAuthAttempt("failure", "2fa")
		return nil, authError("Invalid two-factor code")
	}

	codes, err := utils.GenerateRecoveryCodes()
	if err != nil {
		return nil, err
	}
	if err := s.Users.SetTwoFactor(ctx, userID, user.TwoFactorSecret, true, utils.HashRecoveryCodes(codes)); err != nil {
		return nil, err
	}
	utils.TrackAuthAttempt("success", "2fa")
	return codes, nil
}

func (s *UserService) DisableTwoFactor(ctx context.Context, userID, code string) error {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return err
	}
	if !user.TwoFactorEnabled {
		return validationError("Two-factor authentication is not enabled")
	}
	ok, err := s.verifySecondFactor(ctx, user, code)
	if err != nil {
		return err
	}
	if !ok {
		utils.TrackAuthAttempt("failure", "2fa")
		return authError("Invalid two-factor code")
	}
	return s.Users.SetTwoFactor(ctx, userID, "", false, nil)
}

// verifySecondFactor accepts a current TOTP code or consumes a recovery code.
func (s *UserService) verifySecondFactor(ctx context.Context, user *model.User, code string) (bool, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return false, nil
	}
	if services.ValidateTOTP(code, user.TwoFactorSecret) {
		return true, nil
	}
	return s.Users.ConsumeRecoveryCode(ctx, user.ID, utils.HashRecoveryCode(code))
}
