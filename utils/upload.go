package utils

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

const maxFilenameLength = 100

// SanitizeFilename keeps the base name of a client supplied file name and
// replaces anything outside [A-Za-z0-9._-] with "_".
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	name = filepath.Base(name)
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		name = "upload"
	}
	if len(name) > maxFilenameLength {
		ext := filepath.Ext(name)
		if len(ext) > 10 {
			ext = ""
		}
		name = name[:maxFilenameLength-len(ext)] + ext
	}
	return name
}

// UploadFileName builds the stored name "<owner>_<unix>_<random>_<sanitized original>".
// The random part keeps same-second uploads of one file name apart.
func UploadFileName(ownerID, original string, now time.Time) string {
	return fmt.Sprintf("%s_%d_%s_%s", uploadPrefix(ownerID), now.Unix(),
		strings.ReplaceAll(uuid.NewString(), "-", "")[:8], SanitizeFilename(original))
}

// OwnsUpload reports whether name was produced by UploadFileName for ownerID.
func OwnsUpload(ownerID, name string) bool {
	return ownerID != "" && strings.HasPrefix(name, uploadPrefix(ownerID)+"_")
}

func uploadPrefix(ownerID string) string {
	return SanitizeFilename(ownerID)
}
