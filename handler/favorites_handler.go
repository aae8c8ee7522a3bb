package handler

import (
	"net/http"

	"noteshare/middleware"
	"noteshare/usecase"

	"github.com/gin-gonic/gin"
)

func GetFavoritesHandler(c *gin.Context, favoritesService *usecase.FavoritesService) {
	notes, err := favoritesService.GetFavorites(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, notes)
}

func ToggleFavoriteHandler(c *gin.Context, favoritesService *usecase.FavoritesService) {
	added, err := favoritesService.ToggleFavorite(c.Request.Context(), middleware.UserID(c), c.Param("noteId"))
	if err != nil {
		respondError(c, err)
		return
	}

	msg := "Note removed from favorites"
	if added {
		msg = "Note added to favorites"
	}
	c.JSON(http.StatusOK, gin.H{"msg": msg, "favorited": added})
}
