package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	pkgerr "github.com/yungbote/mastery-engine/internal/pkg/errors"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// RespondServiceError maps the service sentinels to transport codes.
func RespondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pkgerr.ErrNotFound):
		RespondError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, pkgerr.ErrInvalidArgument):
		RespondError(c, http.StatusBadRequest, "invalid_argument", err)
	case errors.Is(err, pkgerr.ErrConcurrentSessionConflict):
		RespondError(c, http.StatusConflict, "concurrent_session", err)
	case errors.Is(err, pkgerr.ErrSessionClosed):
		RespondError(c, http.StatusGone, "session_closed", err)
	case errors.Is(err, pkgerr.ErrNoQuestionAvailable):
		RespondError(c, http.StatusUnprocessableEntity, "no_question_available", err)
	default:
		RespondError(c, http.StatusInternalServerError, "internal", err)
	}
}
