package router

import (
	"github.com/gin-gonic/gin"

	"notes_service/internal/handlers"
)

func AuthRoutes(rg *gin.RouterGroup, h *handlers.UserHandler) {
	authRoutes := rg.Group("/auth")
	{
		authRoutes.POST("/register", h.Register)
		authRoutes.POST("/login", h.Login)
	}
}

func UserRoutes(rg *gin.RouterGroup, h *handlers.UserHandler) {
	rg.GET("/users/search", h.SearchUsers)
}
