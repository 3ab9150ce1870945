package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"notes_service/pkg/responses"
)

// noteIDParam parses :noteId. A malformed id cannot name any note, so it is
// reported as not found.
func noteIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("noteId"))
	if err != nil {
		responses.Error(c, errInvalidNoteID)
		return uuid.Nil, false
	}
	return id, true
}

// queryInt returns 0 for a missing or non-numeric value.
func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return n
}

func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		responses.BadRequest(c, "INVALID_BODY", "invalid request body: "+err.Error())
		return false
	}
	return true
}
