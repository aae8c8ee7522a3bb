package handler

import (
	"errors"

	"noteshare/middleware"
	"noteshare/usecase"
	"noteshare/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// respondError maps usecase error kinds onto status codes. Anything else is
// logged and answered with a generic 500.
func respondError(c *gin.Context, err error) {
	msg := usecase.Message(err)
	switch {
	case errors.Is(err, usecase.ErrValidation):
		utils.TrackError("validation", c.FullPath())
		utils.BadRequest(c, msg)
	case errors.Is(err, usecase.ErrAuth):
		utils.TrackError("auth", c.FullPath())
		utils.Unauthorized(c, msg)
	case errors.Is(err, usecase.ErrPermission):
		utils.TrackError("permission", c.FullPath())
		utils.Forbidden(c, msg)
	case errors.Is(err, usecase.ErrNotFound):
		utils.NotFound(c, msg)
	case errors.Is(err, usecase.ErrConflict):
		utils.TrackError("conflict", c.FullPath())
		utils.Conflict(c, msg)
	default:
		log.Error().Err(err).
			Str("request_id", c.GetString(middleware.ContextRequestID)).
			Str("path", c.FullPath()).
			Msg("request failed")
		utils.TrackError("internal", c.FullPath())
		utils.InternalError(c)
	}
}
