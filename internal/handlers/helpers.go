package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"agroterra/internal/services"
)

// tolerant of types in the context (int / int64 / float64 / string)
func getIntFromCtx(c *gin.Context, key string) (int, bool) {
	v, ok := c.Get(key)
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		return int(t), true
	case string:
		if n, err := strconv.Atoi(t); err == nil {
			return n, true
		}
	}
	return 0, false
}

func getAccountAndRole(c *gin.Context) (accountID, roleID int) {
	if id, ok := getIntFromCtx(c, "account_id"); ok {
		accountID = id
	}
	if id, ok := getIntFromCtx(c, "role_id"); ok {
		roleID = id
	}
	return
}

// respondFlowError maps an expected security-flow outcome onto an HTTP
// response with enough structure (remaining minutes, attempts left) that
// the client never has to parse message strings. Unexpected errors become a
// generic 500.
func respondFlowError(c *gin.Context, err error) {
	var locked *services.LockedError
	var throttled *services.ThrottledError
	var badState *services.InvalidStateError
	var badPin *services.InvalidPinError

	switch {
	case errors.As(err, &locked):
		c.JSON(http.StatusForbidden, gin.H{
			"error":             "account temporarily locked",
			"remaining_minutes": locked.Minutes(),
		})
	case errors.As(err, &throttled):
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":               "too many requests, try later",
			"retry_after_seconds": int(throttled.RetryAfter.Seconds()),
		})
	case errors.As(err, &badPin):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":         "incorrect code",
			"attempts_left": badPin.AttemptsLeft,
		})
	case errors.As(err, &badState):
		c.JSON(http.StatusConflict, gin.H{
			"error": badState.Error(),
			"state": badState.State,
		})
	case errors.Is(err, services.ErrNotRegistered):
		c.JSON(http.StatusNotFound, gin.H{"error": "account not registered"})
	case errors.Is(err, services.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
	case errors.Is(err, services.ErrNoPendingVerification):
		c.JSON(http.StatusBadRequest, gin.H{"error": "no pending verification"})
	case errors.Is(err, services.ErrPinExpired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "code expired, start over"})
	case errors.Is(err, services.ErrTooManyAttempts):
		c.JSON(http.StatusBadRequest, gin.H{"error": "too many attempts, start over"})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
	case errors.Is(err, services.ErrPinNotConfirmed):
		c.JSON(http.StatusBadRequest, gin.H{"error": "confirm the code first"})
	case errors.Is(err, services.ErrPasswordUnchanged):
		c.JSON(http.StatusBadRequest, gin.H{"error": "new password must differ from the current one"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
