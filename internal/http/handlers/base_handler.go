// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"mashwar/internal/modules/posting"
	"mashwar/internal/modules/route"
)

type errorResponse struct {
	Error string `json:"error"`
}

// isValidID ensures IDs are alphanumeric and at most 32 chars (matches the
// current ID generator).
func isValidID(v string) bool {
	if v == "" || len(v) > 32 {
		return false
	}
	for _, c := range v {
		if (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			continue
		}
		return false
	}
	return true
}

func writeError(c *gin.Context, status int, msg string) {
	c.JSON(status, errorResponse{Error: msg})
}

func writePostingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, posting.ErrBadRequest),
		errors.Is(err, route.ErrMalformedPolyline),
		errors.Is(err, route.ErrDegeneratePath):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, posting.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, posting.ErrForbidden):
		writeError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, posting.ErrInvalidState), errors.Is(err, posting.ErrConflict):
		writeError(c, http.StatusConflict, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

// actorID extracts the authenticated user set by the gateway. Session
// issuance happens upstream; this service only trusts the forwarded header.
func actorID(c *gin.Context) (string, bool) {
	id := c.GetHeader("X-User-ID")
	if !isValidID(id) {
		return "", false
	}
	return id, true
}
