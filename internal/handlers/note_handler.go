package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"notes_service/internal/dto"
	"notes_service/internal/middleware"
	"notes_service/internal/services"
	"notes_service/pkg/apperrors"
	"notes_service/pkg/responses"
)

var errInvalidNoteID = apperrors.NotFound("NOTE_NOT_FOUND", "note not found")

type NoteHandler struct {
	notes *services.NoteService
}

func NewNoteHandler(notes *services.NoteService) *NoteHandler {
	return &NoteHandler{notes: notes}
}

// ListNotes returns a page of the caller's notes. ?limit=&cursor=
func (h *NoteHandler) ListNotes(c *gin.Context) {
	page, err := h.notes.List(c.Request.Context(), middleware.CallerID(c), queryInt(c, "limit"), c.Query("cursor"))
	if err != nil {
		responses.Error(c, err)
		return
	}
	responses.JSON(c, http.StatusOK, page)
}

func (h *NoteHandler) CreateNote(c *gin.Context) {
	var req dto.CreateNoteReq
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.notes.Create(c.Request.Context(), middleware.CallerID(c), req)
	if err != nil {
		responses.Error(c, err)
		return
	}
	responses.JSON(c, http.StatusCreated, res)
}

// GetNote returns the note's sharing state.
func (h *NoteHandler) GetNote(c *gin.Context) {
	noteID, ok := noteIDParam(c)
	if !ok {
		return
	}
	state, err := h.notes.ShareState(c.Request.Context(), middleware.CallerID(c), noteID)
	if err != nil {
		responses.Error(c, err)
		return
	}
	responses.JSON(c, http.StatusOK, state)
}

func (h *NoteHandler) UpdateNote(c *gin.Context) {
	noteID, ok := noteIDParam(c)
	if !ok {
		return
	}
	var req dto.UpdateNoteReq
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.notes.Update(c.Request.Context(), middleware.CallerID(c), noteID, req)
	if err != nil {
		responses.Error(c, err)
		return
	}
	responses.JSON(c, http.StatusOK, res)
}

func (h *NoteHandler) DeleteNote(c *gin.Context) {
	noteID, ok := noteIDParam(c)
	if !ok {
		return
	}
	if err := h.notes.Delete(c.Request.Context(), middleware.CallerID(c), noteID); err != nil {
		responses.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *NoteHandler) GetActivity(c *gin.Context) {
	noteID, ok := noteIDParam(c)
	if !ok {
		return
	}
	entries, err := h.notes.Activity(c.Request.Context(), middleware.CallerID(c), noteID, queryInt(c, "limit"))
	if err != nil {
		responses.Error(c, err)
		return
	}
	responses.JSON(c, http.StatusOK, entries)
}
