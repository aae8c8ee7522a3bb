package services

import (
	"bytes"
	"errors"
	"image"

	// decoders registered for DecodeConfig
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

var ErrNotAnImage = errors.New("file is not a supported image")

var imageContentTypes = map[string]string{
	"gif":  "image/gif",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"bmp":  "image/bmp",
	"webp": "image/webp",
}

// DetectImage checks that data decodes as png, jpeg, gif, webp or bmp and
// returns the format name and content type.
func DetectImage(data []byte) (string, string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", "", ErrNotAnImage
	}
	contentType, ok := imageContentTypes[format]
	if !ok || cfg.Width <= 0 || cfg.Height <= 0 {
		return "", "", ErrNotAnImage
	}
	return format, contentType, nil
}
