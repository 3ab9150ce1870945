package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"notes_service/internal/dto"
	"notes_service/internal/middleware"
	"notes_service/internal/services"
	"notes_service/pkg/responses"
)

type CommentHandler struct {
	comments *services.CommentService
}

func NewCommentHandler(comments *services.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

func (h *CommentHandler) ListComments(c *gin.Context) {
	noteID, ok := noteIDParam(c)
	if !ok {
		return
	}
	items, err := h.comments.List(c.Request.Context(), middleware.CallerID(c), noteID)
	if err != nil {
		responses.Error(c, err)
		return
	}
	responses.JSON(c, http.StatusOK, items)
}

func (h *CommentHandler) AddComment(c *gin.Context) {
	noteID, ok := noteIDParam(c)
	if !ok {
		return
	}
	var req dto.AddCommentReq
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.comments.Add(c.Request.Context(), middleware.CallerID(c), noteID, req)
	if err != nil {
		responses.Error(c, err)
		return
	}
	responses.JSON(c, http.StatusCreated, item)
}
