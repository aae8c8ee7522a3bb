package dto

import (
	"noteshare/model"
	"time"
)

// UserResponse is the public view of a user; secrets never leave the service.
type UserResponse struct {
	ID               string  `json:"id"`
	Username         string  `json:"username"`
	Email            *string `json:"email"`
	ProfileImageURL  *string `json:"profile_image_url"`
	TwoFactorEnabled bool    `json:"two_factor_enabled"`
}

func ToUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:               user.ID,
		Username:         user.Username,
		Email:            user.Email,
		ProfileImageURL:  user.ProfileImageURL,
		TwoFactorEnabled: user.TwoFactorEnabled,
	}
}

type SessionResponse struct {
	ID             string    `json:"session_id"`
	DeviceInfo     string    `json:"device_info"`
	IPAddress      string    `json:"ip_address"`
	CreatedAt      time.Time `json:"created_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
	ExpiresAt      time.Time `json:"expires_at"`
	Current        bool      `json:"current"`
}

func ToSessionResponses(sessions []*model.Session, currentID string) []SessionResponse {
	out := make([]SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, SessionResponse{
			ID:             s.ID,
			DeviceInfo:     s.DeviceInfo,
			IPAddress:      s.IPAddress,
			CreatedAt:      s.CreatedAt,
			LastActivityAt: s.LastActivityAt,
			ExpiresAt:      s.ExpiresAt,
			Current:        s.ID == currentID,
		})
	}
	return out
}

type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        UserResponse `json:"user"`
}

type TwoFactorSetupResponse struct {
	Secret string `json:"secret"`
	URL    string `json:"otpauth_url"`
	QRCode string `json:"qr_code"`
}
