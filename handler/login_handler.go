package handler

import (
	"net/http"

	"noteshare/dto"
	"noteshare/usecase"
	"noteshare/utils"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Username      string `json:"username" binding:"required,notblank"`
	Password      string `json:"password" binding:"required"`
	TwoFactorCode string `json:"two_factor_code"`
}

func LoginHandler(c *gin.Context, userService *usecase.UserService) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Username and password are required")
		return
	}

	result, err := userService.Login(c.Request.Context(), usecase.LoginInput{
		Username:      req.Username,
		Password:      req.Password,
		TwoFactorCode: req.TwoFactorCode,
		UserAgent:     c.Request.UserAgent(),
		IPAddress:     c.ClientIP(),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.LoginResponse{
		AccessToken: result.Token,
		TokenType:   "Bearer",
		ExpiresAt:   result.ExpiresAt,
		User:        dto.ToUserResponse(result.User),
	})
}
