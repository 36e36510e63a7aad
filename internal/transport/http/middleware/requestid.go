package middleware

import (
	"github.com/gin-gonic/gin"
	ctxlog "github.com/orclabs/elt-orchestrator/internal/log"
)

// RequestID threads a request ID through the request context so the log
// handler stamps every record beneath it. An incoming X-Request-ID wins,
// letting callers correlate across services; otherwise one is minted and
// echoed back in the response header.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = ctxlog.NewRequestID()
		}

		c.Request = c.Request.WithContext(ctxlog.WithRequestID(c.Request.Context(), id))
		c.Header("X-Request-ID", id)
		c.Next()
	}
}
