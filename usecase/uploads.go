package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"noteshare/services"
	"noteshare/utils"

	"github.com/rs/zerolog/log"
)

// Upload is a client supplied file.
type Upload struct {
	Filename string
	Content  io.Reader
}

type ImageUploader struct {
	Storage services.Storage
	MaxSize int64
}

// Store validates the upload as an image and saves it under a collision-free
// name derived from ownerID. It returns the public URL.
func (u *ImageUploader) Store(ctx context.Context, ownerID string, up Upload, kind string) (string, error) {
	if u == nil || u.Storage == nil {
		return "", errors.New("upload storage is not configured")
	}
	if up.Content == nil {
		return "", validationError("No file provided")
	}

	data, err := io.ReadAll(io.LimitReader(up.Content, u.MaxSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > u.MaxSize {
		return "", validationError("File too large")
	}
	if len(data) == 0 {
		return "", validationError("No file provided")
	}

	_, contentType, err := services.DetectImage(data)
	if err != nil {
		return "", validationError("File must be an image (png, jpeg, gif, webp or bmp)")
	}

	name := utils.UploadFileName(ownerID, up.Filename, time.Now())
	if err := u.Storage.Save(ctx, name, data, contentType); err != nil {
		return "", err
	}

	utils.TrackUpload(kind)
	return services.PublicURL(name), nil
}

// Remove deletes an upload that ownerID stored earlier. URLs pointing at
// anyone else's file, or outside the upload path, are left alone. Failures
// are logged, never returned.
func (u *ImageUploader) Remove(ctx context.Context, ownerID string, url *string) {
	if u == nil || u.Storage == nil || url == nil {
		return
	}
	name := services.NameFromURL(*url)
	if name == "" {
		return
	}
	if !utils.OwnsUpload(ownerID, name) {
		log.Debug().Str("file", name).Str("user_id", ownerID).Msg("not removing upload owned by someone else")
		return
	}
	if err := u.Storage.Delete(ctx, name); err != nil && !errors.Is(err, services.ErrObjectNotFound) {
		log.Warn().Err(err).Str("file", name).Msg("failed to delete stored upload")
	}
}
