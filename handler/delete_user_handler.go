package handler

import (
	"noteshare/middleware"
	"noteshare/usecase"
	"noteshare/utils"

	"github.com/gin-gonic/gin"
)

// DeleteUserHandler removes the caller's account and everything it owns. The
// current token stops working because its session is deleted with the user.
func DeleteUserHandler(c *gin.Context, userService *usecase.UserService) {
	if err := userService.DeleteAccount(c.Request.Context(), middleware.UserID(c)); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Account deleted successfully")
}
