package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/webide/backend/internal/domain/tabs"
	"github.com/GriffinCanCode/webide/backend/internal/domain/tree"
	"github.com/GriffinCanCode/webide/backend/internal/workspace"
)

// statusFor maps domain errors onto HTTP status codes
func statusFor(err error) int {
	var moveErr *tree.MoveError
	switch {
	case errors.As(err, &moveErr):
		if moveErr.Reason == tree.ReasonNotFound {
			return http.StatusNotFound
		}
		return http.StatusConflict
	case errors.Is(err, tree.ErrNotFound), errors.Is(err, tabs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, tree.ErrAlreadyExists), errors.Is(err, tree.ErrNoDrag):
		return http.StatusConflict
	case errors.Is(err, tree.ErrInvalidName),
		errors.Is(err, tree.ErrNotFolder),
		errors.Is(err, tree.ErrNotFile),
		errors.Is(err, tree.ErrInvalidSort),
		errors.Is(err, tree.ErrInvalidPattern),
		errors.Is(err, tabs.ErrIndexOutOfRange),
		errors.Is(err, tabs.ErrInvalidDocument):
		return http.StatusBadRequest
	case errors.Is(err, workspace.ErrClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as {"error": ...}, adding the move reason when
// there is one.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	body := gin.H{"error": err.Error()}

	var moveErr *tree.MoveError
	if errors.As(err, &moveErr) {
		body["reason"] = moveErr.Reason
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, body)
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}
