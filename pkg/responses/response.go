package responses

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"notes_service/pkg/apperrors"
	"notes_service/pkg/logger"
)

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Error writes err as an error envelope. Errors that are not AppErrors are
// logged and reported as internal without their text.
func Error(c *gin.Context, err error) {
	status, body := describe(err)
	if status == http.StatusInternalServerError {
		logger.Log.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
	}
	c.JSON(status, ErrorResponse{Error: body})
}

// Abort is Error for middleware: it also stops the handler chain.
func Abort(c *gin.Context, err error) {
	status, body := describe(err)
	c.AbortWithStatusJSON(status, ErrorResponse{Error: body})
}

// BadRequest reports a body or parameter that could not be parsed.
func BadRequest(c *gin.Context, code, message string) {
	Error(c, apperrors.InvalidInput(code, message))
}
