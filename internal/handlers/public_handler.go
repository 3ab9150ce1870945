package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"notes_service/internal/services"
	"notes_service/pkg/responses"
)

type PublicHandler struct {
	notes *services.NoteService
}

func NewPublicHandler(notes *services.NoteService) *PublicHandler {
	return &PublicHandler{notes: notes}
}

// GetPublicNote serves /p/:slug.
func (h *PublicHandler) GetPublicNote(c *gin.Context) {
	page, err := h.notes.PublicNote(c.Request.Context(), c.Param("slug"))
	if err != nil {
		responses.Error(c, err)
		return
	}
	responses.JSON(c, http.StatusOK, page)
}
