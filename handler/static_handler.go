package handler

import (
	"errors"
	"net/http"

	"noteshare/services"
	"noteshare/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ServeUploadHandler streams a stored upload from whichever backend holds it.
func ServeUploadHandler(c *gin.Context, storage services.Storage) {
	name := c.Param("filename")
	body, contentType, err := storage.Open(c.Request.Context(), name)
	if err != nil {
		c.Header("Cache-Control", "no-store")
		if errors.Is(err, services.ErrObjectNotFound) {
			utils.NotFound(c, "File not found")
			return
		}
		log.Error().Err(err).Str("file", name).Msg("failed to open upload")
		utils.InternalError(c)
		return
	}
	defer body.Close()

	c.DataFromReader(http.StatusOK, -1, contentType, body, map[string]string{
		"X-Content-Type-Options": "nosniff",
	})
}
