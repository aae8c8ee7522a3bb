package model

import "time"

type User struct {
	ID               string    `bson:"_id" json:"id"`
	Username         string    `bson:"username" json:"username"`
	Email            *string   `bson:"email,omitempty" json:"email"`
	PasswordHash     string    `bson:"password_hash" json:"-"`
	ProfileImageURL  *string   `bson:"profile_image_url,omitempty" json:"profile_image_url"`
	CreatedAt        time.Time `bson:"created_at" json:"created_at"`
	TwoFactorSecret  string    `bson:"two_factor_secret,omitempty" json:"-"`
	TwoFactorEnabled bool      `bson:"two_factor_enabled" json:"two_factor_enabled"`
	RecoveryCodes    []string  `bson:"recovery_codes,omitempty" json:"-"` // sha256 hex
}

// UserPatch holds a partial profile update. ClearEmail removes the address.
type UserPatch struct {
	Username        *string
	Email           *string
	ClearEmail      bool
	ProfileImageURL *string
}
