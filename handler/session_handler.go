package handler

import (
	"net/http"

	"noteshare/dto"
	"noteshare/middleware"
	"noteshare/usecase"

	"github.com/gin-gonic/gin"
)

func GetActiveSessions(c *gin.Context, userService *usecase.UserService) {
	sessions, err := userService.ListSessions(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	current := ""
	if claims := middleware.Claims(c); claims != nil {
		current = claims.SessionID()
	}
	c.JSON(http.StatusOK, gin.H{"sessions": dto.ToSessionResponses(sessions, current)})
}
