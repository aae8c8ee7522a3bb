package handler

import (
	"net/http"

	"noteshare/dto"
	"noteshare/usecase"
	"noteshare/utils"

	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Username string `form:"username" json:"username" binding:"required,notblank"`
	Password string `form:"password" json:"password" binding:"required"`
}

// RegistrationHandler accepts multipart or urlencoded forms. The optional
// profile picture is sent as the "profile_image" file.
func RegistrationHandler(c *gin.Context, userService *usecase.UserService) {
	var req registerRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.BadRequest(c, "Username and password are required")
		return
	}

	upload, file, err := formUpload(c, "profile_image")
	if err != nil {
		uploadFailed(c, err)
		return
	}
	defer closeUpload(file)

	user, err := userService.Register(c.Request.Context(), usecase.RegisterInput{
		Username:        req.Username,
		Password:        req.Password,
		Email:           optionalForm(c, "email"),
		ProfileImageURL: optionalForm(c, "profile_image_url"),
		ProfileImage:    upload,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"msg":  "User registered successfully",
		"user": dto.ToUserResponse(user),
	})
}
