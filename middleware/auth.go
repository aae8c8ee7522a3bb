package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"noteshare/services"
	"noteshare/usecase"
	"noteshare/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Context keys set by AuthMiddleware.
const (
	ContextUserID = "user_id"
	ContextClaims = "claims"
	ContextToken  = "token"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*services.Claims, error)
}

func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			utils.AbortWith(c, http.StatusUnauthorized, "Missing or invalid token")
			return
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if tokenString == "" {
			utils.AbortWith(c, http.StatusUnauthorized, "Missing or invalid token")
			return
		}

		claims, err := auth.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			if errors.Is(err, usecase.ErrAuth) {
				utils.AbortWith(c, http.StatusUnauthorized, usecase.Message(err))
				return
			}
			log.Error().Err(err).Str("request_id", c.GetString(ContextRequestID)).Msg("authentication failed")
			utils.TrackError("auth", "internal")
			utils.AbortWith(c, http.StatusInternalServerError, "Internal server error")
			return
		}

		c.Set(ContextUserID, claims.UserID())
		c.Set(ContextClaims, claims)
		c.Set(ContextToken, tokenString)
		c.Next()
	}
}

// UserID returns the authenticated caller, or "" outside AuthMiddleware.
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

func Claims(c *gin.Context) *services.Claims {
	v, ok := c.Get(ContextClaims)
	if !ok {
		return nil
	}
	claims, _ := v.(*services.Claims)
	return claims
}
