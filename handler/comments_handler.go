package handler

import (
	"net/http"

	"noteshare/middleware"
	"noteshare/usecase"
	"noteshare/utils"

	"github.com/gin-gonic/gin"
)

type commentRequest struct {
	Content string `json:"content" binding:"required,notblank"`
}

func GetCommentsHandler(c *gin.Context, commentsService *usecase.CommentsService) {
	comments, err := commentsService.GetComments(c.Request.Context(), c.Param("noteId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

func AddCommentHandler(c *gin.Context, commentsService *usecase.CommentsService) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Comment content is required")
		return
	}

	comment, err := commentsService.AddComment(c.Request.Context(), c.Param("noteId"), middleware.UserID(c), req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func DeleteCommentHandler(c *gin.Context, commentsService *usecase.CommentsService) {
	if err := commentsService.DeleteComment(c.Request.Context(), c.Param("id"), middleware.UserID(c)); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Comment deleted successfully")
}
