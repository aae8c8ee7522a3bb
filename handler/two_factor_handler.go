package handler

import (
	"net/http"

	"noteshare/dto"
	"noteshare/middleware"
	"noteshare/usecase"
	"noteshare/utils"

	"github.com/gin-gonic/gin"
)

type twoFactorCodeRequest struct {
	Code string `json:"code" binding:"required,notblank"`
}

// Generate2FASecretHandler starts setup: the secret is stored but not enabled
// until a code generated from it is confirmed.
func Generate2FASecretHandler(c *gin.Context, userService *usecase.UserService) {
	key, err := userService.SetupTwoFactor(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.TwoFactorSetupResponse{
		Secret: key.Secret,
		URL:    key.URL,
		QRCode: key.QRCode,
	})
}

func Enable2FAHandler(c *gin.Context, userService *usecase.UserService) {
	var req twoFactorCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Two-factor code is required")
		return
	}

	recoveryCodes, err := userService.EnableTwoFactor(c.Request.Context(), middleware.UserID(c), req.Code)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"msg":            "Two-factor authentication enabled",
		"recovery_codes": recoveryCodes,
		"warning":        "Save these recovery codes securely. They will not be shown again.",
	})
}

// Disable2FAHandler accepts either a current code or an unused recovery code.
func Disable2FAHandler(c *gin.Context, userService *usecase.UserService) {
	var req twoFactorCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Two-factor code is required")
		return
	}

	if err := userService.DisableTwoFactor(c.Request.Context(), middleware.UserID(c), req.Code); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Two-factor authentication disabled")
}
