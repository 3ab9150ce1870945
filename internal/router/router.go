package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"notes_service/internal/handlers"
	"notes_service/internal/middleware"
)

type Handlers struct {
	Users    *handlers.UserHandler
	Notes    *handlers.NoteHandler
	Comments *handlers.CommentHandler
	Public   *handlers.PublicHandler
}

// Auth holds the two authentication middlewares routes choose between.
type Auth struct {
	Required gin.HandlerFunc
	Optional gin.HandlerFunc
}

func SetupRouter(router *gin.Engine, h Handlers, auth Auth) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/p/:slug", h.Public.GetPublicNote)

	//v1 api
	v1 := router.Group("/api/v1")

	AuthRoutes(v1, h.Users)
	UserRoutes(v1.Group("", auth.Required), h.Users)
	NoteRoutes(v1, h.Notes, h.Comments, auth)
}

// New builds the engine with the shared middleware stack and every route.
func New(h Handlers, auth Auth) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.LoggerMiddleware(), middleware.CORS())
	middleware.SetupPrometheus(r)
	SetupRouter(r, h, auth)
	return r
}
