package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"notes_service/internal/dto"
	"notes_service/internal/middleware"
	"notes_service/internal/services"
	"notes_service/pkg/responses"
)

type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req dto.RegisterReq
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.users.Register(c.Request.Context(), req)
	if err != nil {
		responses.Error(c, err)
		return
	}
	responses.JSON(c, http.StatusCreated, res)
}

func (h *UserHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.users.Login(c.Request.Context(), req)
	if err != nil {
		responses.Error(c, err)
		return
	}
	responses.JSON(c, http.StatusOK, res)
}

// SearchUsers backs the collaborator picker. ?q=&limit=
func (h *UserHandler) SearchUsers(c *gin.Context) {
	users, err := h.users.Search(c.Request.Context(), middleware.CallerID(c), c.Query("q"), queryInt(c, "limit"))
	if err != nil {
		responses.Error(c, err)
		return
	}
	responses.JSON(c, http.StatusOK, users)
}
