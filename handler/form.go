package handler

import (
	"errors"
	"mime/multipart"
	"net/http"

	"noteshare/usecase"
	"noteshare/utils"

	"github.com/gin-gonic/gin"
)

// optionalForm returns a pointer to the form value when the field was sent at
// all, so that an empty value can mean "clear".
func optionalForm(c *gin.Context, field string) *string {
	if v, ok := c.GetPostForm(field); ok {
		return &v
	}
	return nil
}

// formUpload opens the file sent under field. A missing file is (nil, nil).
// The caller must close the returned file.
func formUpload(c *gin.Context, field string) (*usecase.Upload, multipart.File, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	f, err := header.Open()
	if err != nil {
		return nil, nil, err
	}
	return &usecase.Upload{Filename: header.Filename, Content: f}, f, nil
}

func closeUpload(f multipart.File) {
	if f != nil {
		f.Close()
	}
}

func uploadFailed(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		utils.RequestTooLarge(c, "File too large")
		return
	}
	utils.BadRequest(c, "Invalid file upload")
}
