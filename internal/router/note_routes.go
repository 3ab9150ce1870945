package router

import (
	"github.com/gin-gonic/gin"

	"notes_service/internal/handlers"
)

// NoteRoutes defines routes for notes and their comments. Reads that public
// notes allow anonymously use optional auth.
func NoteRoutes(rg *gin.RouterGroup, notes *handlers.NoteHandler, comments *handlers.CommentHandler, auth Auth) {
	group := rg.Group("/notes")
	{
		group.GET("", auth.Required, notes.ListNotes)
		group.POST("", auth.Required, notes.CreateNote)
		group.GET("/:noteId", auth.Optional, notes.GetNote)
		group.PUT("/:noteId", auth.Required, notes.UpdateNote)
		group.DELETE("/:noteId", auth.Required, notes.DeleteNote)
		group.GET("/:noteId/activity", auth.Required, notes.GetActivity)

		// Comments
		group.GET("/:noteId/comments", auth.Optional, comments.ListComments)
		group.POST("/:noteId/comments", auth.Required, comments.AddComment)
	}
}
