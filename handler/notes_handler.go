package handler

import (
	"net/http"

	"noteshare/middleware"
	"noteshare/model"
	"noteshare/usecase"
	"noteshare/utils"

	"github.com/gin-gonic/gin"
)

type createNoteRequest struct {
	Title    string  `json:"title" binding:"required,notblank"`
	Content  *string `json:"content"`
	ImageURL *string `json:"image_url"`
}

// updateNoteRequest leaves absent (or null) fields untouched.
type updateNoteRequest struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	ImageURL *string `json:"image_url"`
}

func GetUserNotesHandler(c *gin.Context, notesService *usecase.NotesService) {
	notes, err := notesService.GetUserNotes(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, notes)
}

func GetAllNotesHandler(c *gin.Context, notesService *usecase.NotesService) {
	notes, err := notesService.GetAllNotes(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, notes)
}

func SearchNotesHandler(c *gin.Context, notesService *usecase.NotesService) {
	notes, err := notesService.SearchNotes(c.Request.Context(), middleware.UserID(c), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, notes)
}

func SearchAllNotesHandler(c *gin.Context, notesService *usecase.NotesService) {
	notes, err := notesService.SearchNotes(c.Request.Context(), "", c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, notes)
}

func CreateNoteHandler(c *gin.Context, notesService *usecase.NotesService) {
	var req createNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Title is required")
		return
	}

	note, err := notesService.CreateNote(c.Request.Context(), middleware.UserID(c), usecase.NoteInput{
		Title:    req.Title,
		Content:  req.Content,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"msg": "Note created successfully",
		"id":  note.ID,
	})
}

func UpdateNoteHandler(c *gin.Context, notesService *usecase.NotesService) {
	var req updateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request body")
		return
	}

	note, err := notesService.UpdateNote(c.Request.Context(), c.Param("id"), middleware.UserID(c), model.NotePatch{
		Title:    req.Title,
		Content:  req.Content,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"msg":  "Note updated successfully",
		"note": note,
	})
}

func DeleteNoteHandler(c *gin.Context, notesService *usecase.NotesService) {
	if err := notesService.DeleteNote(c.Request.Context(), c.Param("id"), middleware.UserID(c)); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Note deleted successfully")
}

// UploadImageHandler stores the multipart "image" file and returns its URL for
// use as a note's image_url.
func UploadImageHandler(c *gin.Context, notesService *usecase.NotesService) {
	upload, file, err := formUpload(c, "image")
	if err != nil {
		uploadFailed(c, err)
		return
	}
	defer closeUpload(file)
	if upload == nil {
		utils.BadRequest(c, "No file provided")
		return
	}

	url, err := notesService.UploadImage(c.Request.Context(), middleware.UserID(c), *upload)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"msg": "File uploaded successfully",
		"url": url,
	})
}
