package services

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTOTP(t *testing.T) {
	key, err := GenerateTOTP("noteshare", "alice")
	require.NoError(t, err)
	assert.NotEmpty(t, key.Secret)
	assert.Contains(t, key.URL, "issuer=noteshare")

	require.True(t, strings.HasPrefix(key.QRCode, "data:image/png;base64,"))
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(key.QRCode, "data:image/png;base64,"))
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, qrCodeSize, img.Bounds().Dx())
}

func TestValidateTOTP(t *testing.T) {
	key, err := GenerateTOTP("noteshare", "alice")
	require.NoError(t, err)

	code, err := CurrentTOTP(key.Secret, time.Now())
	require.NoError(t, err)
	assert.True(t, ValidateTOTP(code, key.Secret))

	stale, err := CurrentTOTP(key.Secret, time.Now().Add(-10*time.Minute))
	require.NoError(t, err)
	if stale != code {
		assert.False(t, ValidateTOTP(stale, key.Secret))
	}

	assert.False(t, ValidateTOTP("", key.Secret))
	assert.False(t, ValidateTOTP(code, ""))
}
