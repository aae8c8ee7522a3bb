package handler

import (
	"net/http"

	"noteshare/dto"
	"noteshare/middleware"
	"noteshare/usecase"

	"github.com/gin-gonic/gin"
)

func GetUserProfileHandler(c *gin.Context, userService *usecase.UserService) {
	user, err := userService.GetProfile(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": dto.ToUserResponse(user)})
}

// UpdateProfileHandler changes only the form fields that were sent. An empty
// email removes it.
func UpdateProfileHandler(c *gin.Context, userService *usecase.UserService) {
	upload, file, err := formUpload(c, "profile_image")
	if err != nil {
		uploadFailed(c, err)
		return
	}
	defer closeUpload(file)

	user, err := userService.UpdateProfile(c.Request.Context(), middleware.UserID(c), usecase.ProfileUpdate{
		Username:        optionalForm(c, "username"),
		Email:           optionalForm(c, "email"),
		ProfileImageURL: optionalForm(c, "profile_image_url"),
		ProfileImage:    upload,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"msg":  "Profile updated successfully",
		"user": dto.ToUserResponse(user),
	})
}

func GetUserStatsHandler(c *gin.Context, userService *usecase.UserService) {
	stats, err := userService.GetStats(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}
