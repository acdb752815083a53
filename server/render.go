package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studycircle/feedmux/utils"
	. "github.com/studycircle/feedmux/utils/log"
)

// httpStatus maps the shared error taxonomy onto HTTP statuses. Anything
// outside the taxonomy is an internal error.
func httpStatus(err error) int {
	switch {
	case errors.Is(err, utils.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, utils.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, utils.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, utils.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, utils.ErrUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func abortWithError(c *gin.Context, err error) {
	status := httpStatus(err)
	if status >= http.StatusInternalServerError {
		Log.Error("request failed: ", err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

// currentUserId reads the caller identity set by the JWT middleware. An empty
// sub means the middleware did not run or rejected the request already.
func currentUserId(c *gin.Context) (string, bool) {
	sub := c.Request.Header.Get("sub")
	if sub == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing caller identity"})
		return "", false
	}
	return sub, true
}
