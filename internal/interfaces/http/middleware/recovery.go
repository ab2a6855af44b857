package middleware

import (
	"errors"
	"net"
	"net/http"
	"os"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tastyaana/tiffin/internal/shared/constants"
	"github.com/tastyaana/tiffin/internal/shared/logger"
	"github.com/tastyaana/tiffin/internal/shared/utils"
)

// Recovery converts panics into 500 responses. Request headers are never
// logged; the structured fields below are enough to find the request in the
// access log.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		if isClientDisconnect(recovered) {
			logger.Warn("client connection lost mid-request",
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"client_ip", c.ClientIP())
			c.Abort()
			return
		}

		logger.Error("panic recovered",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"query", c.Request.URL.RawQuery,
			"client_ip", c.ClientIP(),
			"request_id", c.GetHeader(constants.HeaderXRequestID),
			"panic", recovered,
			"stack", string(debug.Stack()))

		utils.ErrorResponse(c, http.StatusInternalServerError, "Internal server error occurred")
	})
}

// isClientDisconnect reports whether the recovered value is the peer tearing
// the connection down rather than a bug worth a stack trace.
func isClientDisconnect(recovered interface{}) bool {
	err, ok := recovered.(error)
	if !ok {
		return false
	}

	var opErr *net.OpError
	if !errors.As(err, &opErr) {
		return false
	}
	var sysErr *os.SyscallError
	if !errors.As(opErr.Err, &sysErr) {
		return false
	}

	msg := strings.ToLower(sysErr.Error())
	return strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "connection reset by peer") ||
		strings.Contains(msg, "connection refused")
}

// ErrorHandler surfaces errors attached to the gin context as API responses.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		logger.Error("handler error",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"error", err)

		if !c.Writer.Written() {
			utils.ErrorResponseWithError(c, err)
		}
	}
}
