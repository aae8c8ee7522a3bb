package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"noteshare/model"
	"noteshare/repository"
	"noteshare/services"
	"noteshare/utils"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type UserService struct {
	Users     UserStore
	Notes     NoteStore
	Favorites FavoriteStore
	Comments  CommentStore
	Sessions  SessionStore
	Tx        TxRunner
	Tokens    *services.TokenManager
	Blacklist services.TokenBlacklist
	Images    *ImageUploader
	// TOTPIssuer labels the account in authenticator apps.
	TOTPIssuer string
}

type RegisterInput struct {
	Username        string
	Password        string
	Email           *string
	ProfileImageURL *string
	ProfileImage    *Upload
}

type LoginInput struct {
	Username      string
	Password      string
	TwoFactorCode string
	UserAgent     string
	IPAddress     string
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *model.User
}

type ProfileUpdate struct {
	Username        *string
	Email           *string
	ProfileImageURL *string
	ProfileImage    *Upload
}

func optional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return nil, validationError("Username and password are required")
	}
	email := optional(in.Email)

	if _, err := s.Users.FindUserByUsername(ctx, username); err == nil {
		return nil, conflictError("Username already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if email != nil {
		if _, err := s.Users.FindUserByEmail(ctx, *email); err == nil {
			return nil, conflictError("Email already exists")
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}

	hash, err := services.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:              uuid.NewString(),
		Username:        username,
		Email:           email,
		PasswordHash:    hash,
		ProfileImageURL: optional(in.ProfileImageURL),
		CreatedAt:       time.Now().UTC(),
	}

	if in.ProfileImage != nil {
		url, err := s.Images.Store(ctx, user.ID, *in.ProfileImage, "profile")
		if err != nil {
			return nil, err
		}
		user.ProfileImageURL = &url
	}

	if err := s.Users.AddUser(ctx, user); err != nil {
		if in.ProfileImage != nil {
			s.Images.Remove(ctx, user.ID, user.ProfileImageURL)
		}
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, conflictError("Username or email already exists")
		}
		return nil, err
	}

	utils.TrackRegistration()
	log.Info().Str("user_id", user.ID).Msg("user registered")
	return user, nil
}

func (s *UserService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return nil, validationError("Username and password are required")
	}

	user, err := s.Users.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.TrackAuthAttempt("failure", "login")
			return nil, authError(msgInvalidCredentials)
		}
		return nil, err
	}
	if !services.ComparePasswords(user.PasswordHash, in.Password) {
		utils.TrackAuthAttempt("failure", "login")
		return nil, authError(msgInvalidCredentials)
	}

	if user.TwoFactorEnabled {
		if strings.TrimSpace(in.TwoFactorCode) == "" {
			return nil, authError("Two-factor code required")
		}
		ok, err := s.verifySecondFactor(ctx, user, in.TwoFactorCode)
		if err != nil {
			return nil, err
		}
		if !ok {
			utils.TrackAuthAttempt("failure", "2fa")
			return nil, authError(msgInvalidCredentials)
		}
	}

	now := time.Now().UTC()
	session := &model.Session{
		ID:             uuid.NewString(),
		UserID:         user.ID,
		CreatedAt:      now,
		ExpiresAt:      now.Add(s.Tokens.Expiration),
		LastActivityAt: now,
		DeviceInfo:     utils.DeviceInfo(in.UserAgent),
		IPAddress:      in.IPAddress,
		IsActive:       true,
	}
	if err := s.Sessions.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	token, claims, err := s.Tokens.Generate(user.ID, session.ID)
	if err != nil {
		return nil, err
	}

	utils.TrackAuthAttempt("success", "login")
	return &LoginResult{Token: token, ExpiresAt: claims.ExpiresAt.Time, User: user}, nil
}

// Authenticate resolves a bearer token to its claims. The token must be
// unrevoked and bound to a live session.
func (s *UserService) Authenticate(ctx context.Context, token string) (*services.Claims, error) {
	claims, err := s.Tokens.Parse(token)
	if err != nil {
		utils.TrackAuthAttempt("failure", "token")
		return nil, authError("Invalid or expired token")
	}

	if s.Blacklist != nil {
		revoked, err := s.Blacklist.Contains(ctx, token)
		if err != nil {
			log.Warn().Err(err).Msg("token blacklist unavailable")
		} else if revoked {
			utils.TrackAuthAttempt("failure", "token")
			return nil, authError("Token has been revoked")
		}
	}

	session, err := s.Sessions.GetSession(ctx, claims.SessionID())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, authError("Session has ended")
		}
		return nil, err
	}
	now := time.Now().UTC()
	if !session.Valid(now) || session.UserID != claims.UserID() {
		return nil, authError("Session has ended")
	}

	if err := s.Sessions.TouchSession(ctx, session.ID, now); err != nil {
		log.Warn().Err(err).Str("session_id", session.ID).Msg("failed to update session activity")
	}
	return claims, nil
}

func (s *UserService) Logout(ctx context.Context, token string, claims *services.Claims) error {
	if err := s.Sessions.EndSession(ctx, claims.SessionID()); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if s.Blacklist != nil && claims.ExpiresAt != nil {
		if err := s.Blacklist.Add(ctx, token, claims.ExpiresAt.Time); err != nil {
			// the session is already ended, which is enough to reject the token
			log.Warn().Err(err).Msg("failed to blacklist token")
		}
	}
	return nil
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.Users.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundError("User not found")
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, in ProfileUpdate) (*model.User, error) {
	current, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	var patch model.UserPatch
	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if username == "" {
			return nil, validationError("Username cannot be empty")
		}
		if username != current.Username {
			if err := s.ensureFree(ctx, s.Users.FindUserByUsername, username, userID, "Username already exists"); err != nil {
				return nil, err
			}
			patch.Username = &username
		}
	}
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		switch {
		case email == "":
			patch.ClearEmail = current.Email != nil
		case current.Email == nil || *current.Email != email:
			if err := s.ensureFree(ctx, s.Users.FindUserByEmail, email, userID, "Email already exists"); err != nil {
				return nil, err
			}
			patch.Email = &email
		}
	}
	if url := optional(in.ProfileImageURL); url != nil {
		patch.ProfileImageURL = url
	}

	uploaded := false
	if in.ProfileImage != nil {
		url, err := s.Images.Store(ctx, userID, *in.ProfileImage, "profile")
		if err != nil {
			return nil, err
		}
		patch.ProfileImageURL = &url
		uploaded = true
	}

	updated, err := s.Users.UpdateUser(ctx, userID, patch)
	if err != nil {
		if uploaded {
			s.Images.Remove(ctx, userID, patch.ProfileImageURL)
		}
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, conflictError("Username or email already exists")
		case errors.Is(err, repository.ErrNotFound):
			return nil, notFoundError("User not found")
		}
		return nil, err
	}

	if patch.ProfileImageURL != nil && current.ProfileImageURL != nil &&
		*current.ProfileImageURL != *patch.ProfileImageURL {
		s.Images.Remove(ctx, userID, current.ProfileImageURL)
	}
	return updated, nil
}

func (s *UserService) ensureFree(ctx context.Context,
	find func(context.Context, string) (*model.User, error),
	value, userID, msg string) error {
	other, err := find(ctx, value)
	if err == nil && other.ID != userID {
		return conflictError(msg)
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	return nil
}

// DeleteAccount removes the user together with their notes (and those notes'
// comments and favorite references), their comments, favorites and sessions.
func (s *UserService) DeleteAccount(ctx context.Context, userID string) error {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return err
	}

	err = runTx(ctx, s.Tx, func(ctx context.Context) error {
		noteIDs, err := s.Notes.GetUserNoteIDs(ctx, userID)
		if err != nil {
			return err
		}
		if _, err := s.Comments.DeleteNoteComments(ctx, noteIDs); err != nil {
			return err
		}
		if err := s.Favorites.RemoveNotesFromFavorites(ctx, noteIDs); err != nil {
			return err
		}
		if _, err := s.Notes.DeleteUserNotes(ctx, userID); err != nil {
			return err
		}
		if _, err := s.Comments.DeleteUserComments(ctx, userID); err != nil {
			return err
		}
		if err := s.Favorites.DeleteUserFavorites(ctx, userID); err != nil {
			return err
		}
		if _, err := s.Sessions.DeleteUserSessions(ctx, userID); err != nil {
			return err
		}
		return s.Users.DeleteUserByID(ctx, userID)
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFoundError("User not found")
		}
		return err
	}

	s.Images.Remove(ctx, userID, user.ProfileImageURL)
	log.Info().Str("user_id", userID).Msg("account deleted")
	return nil
}

func (s *UserService) ListSessions(ctx context.Context, userID string) ([]*model.Session, error) {
	return s.Sessions.GetUserActiveSessions(ctx, userID)
}
