package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"regexp"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/logger"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDGinKey = "request_id"
	requestIDBytes  = 16
)

type requestIDCtxKey struct{}

var (
	requestIDPattern = regexp.MustCompile(`^[A-Za-z0-9-]{1,64}$`)
	requestIDSeq     atomic.Uint64
)

// RequestIDConfig controls request id assignment.
type RequestIDConfig struct {
	// TrustUpstream reuses a well-formed incoming X-Request-ID.
	TrustUpstream bool
}

// RequestID tags every request with an id. The id is echoed in the
// X-Request-ID response header, attached to log records of the request, and
// stored in the request context so outgoing backend calls can forward it.
func RequestID(cfg RequestIDConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		var id string
		if cfg.TrustUpstream {
			if upstream := c.GetHeader(requestIDHeader); requestIDPattern.MatchString(upstream) {
				id = upstream
			}
		}
		if id == "" {
			id = newRequestID()
		}

		c.Set(requestIDGinKey, id)
		c.Header(requestIDHeader, id)

		ctx := context.WithValue(c.Request.Context(), requestIDCtxKey{}, id)
		ctx = logger.WithContextAttrs(ctx, slog.String("request_id", id))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetRequestID returns the id assigned to the request, or "".
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDGinKey)
}

// RequestIDFromContext returns the id stored by RequestID, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDCtxKey{}).(string)
	return id
}

func newRequestID() string {
	b := make([]byte, requestIDBytes)
	if _, err := rand.Read(b); err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 16) + "-" + strconv.FormatUint(requestIDSeq.Add(1), 16)
	}
	return hex.EncodeToString(b)
}
