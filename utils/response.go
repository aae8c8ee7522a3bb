package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the body of every message-only reply.
type Response struct {
	Msg string `json:"msg"`
}

func Message(c *gin.Context, status int, msg string) {
	c.JSON(status, &Response{Msg: msg})
}

func Success(c *gin.Context, msg string) {
	Message(c, http.StatusOK, msg)
}

func BadRequest(c *gin.Context, msg string) {
	Message(c, http.StatusBadRequest, msg)
}

func Unauthorized(c *gin.Context, msg string) {
	Message(c, http.StatusUnauthorized, msg)
}

func Forbidden(c *gin.Context, msg string) {
	Message(c, http.StatusForbidden, msg)
}

func NotFound(c *gin.Context, msg string) {
	Message(c, http.StatusNotFound, msg)
}

func Conflict(c *gin.Context, msg string) {
	Message(c, http.StatusConflict, msg)
}

func RequestTooLarge(c *gin.Context, msg string) {
	Message(c, http.StatusRequestEntityTooLarge, msg)
}

func InternalError(c *gin.Context) {
	Message(c, http.StatusInternalServerError, "Internal server error")
}

// AbortWith writes a message reply and stops the handler chain.
func AbortWith(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, &Response{Msg: msg})
}
