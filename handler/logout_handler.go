package handler

import (
	"noteshare/middleware"
	"noteshare/usecase"
	"noteshare/utils"

	"github.com/gin-gonic/gin"
)

func LogoutHandler(c *gin.Context, userService *usecase.UserService) {
	claims := middleware.Claims(c)
	if claims == nil {
		utils.Unauthorized(c, "Missing or invalid token")
		return
	}

	if err := userService.Logout(c.Request.Context(), c.GetString(middleware.ContextToken), claims); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Logged out successfully")
}
