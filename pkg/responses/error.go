package responses

import (
	"errors"
	"net/http"

	"notes_service/pkg/apperrors"
)

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindUnauthenticated:
		return http.StatusUnauthorized
	case apperrors.KindForbidden:
		return http.StatusForbidden
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindInvalidInput:
		return http.StatusBadRequest
	case apperrors.KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func describe(err error) (int, ErrorBody) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError, ErrorBody{Code: "INTERNAL", Message: "internal server error"}
	}
	code := appErr.Code
	if code == "" {
		code = string(appErr.Kind)
	}
	return StatusFor(appErr.Kind), ErrorBody{Code: code, Message: appErr.Message}
}
