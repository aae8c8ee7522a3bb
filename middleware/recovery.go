package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"noteshare/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func EnhancedRecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().
					Str("request_id", c.GetString(ContextRequestID)).
					Str("method", c.Request.Method).
					Str("path", c.Request.URL.Path).
					Str("panic", fmt.Sprint(err)).
					Bytes("stack", debug.Stack()).
					Msg("recovered from panic")
				utils.TrackError("panic", "recovered")
				utils.AbortWith(c, http.StatusInternalServerError, "Internal server error")
			}
		}()
		c.Next()
	}
}
