package apiclient

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/simp-lee/partsweb/internal/domain"
)

// ContextValue reads a per-request value, such as a token or request id,
// from the context of an outgoing request.
type ContextValue func(ctx context.Context) string

type tokenKey struct{}

// WithToken returns a copy of ctx carrying the session token sent by BearerToken.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext returns the session token stored by WithToken.
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// BearerToken sets "Authorization: Bearer {token}" when source yields a
// non-empty token. A nil source reads the token stored by WithToken.
func BearerToken(source ContextValue) Interceptor {
	if source == nil {
		source = TokenFromContext
	}
	return func(next Handler) Handler {
		return func(req *http.Request) (*http.Response, error) {
			if token := source(req.Context()); token != "" {
				req.Header.Set("Authorization", "Bearer "+token)
			}
			return next(req)
		}
	}
}

// RequestID forwards the inbound request id as X-Request-ID.
func RequestID(source ContextValue) Interceptor {
	return func(next Handler) Handler {
		return func(req *http.Request) (*http.Response, error) {
			if source != nil && req.Header.Get("X-Request-ID") == "" {
				if id := source(req.Context()); id != "" {
					req.Header.Set("X-Request-ID", id)
				}
			}
			return next(req)
		}
	}
}

// RequestLogging logs every outgoing call with its status and latency.
// Failures are logged at Warn, transport failures at Error.
func RequestLogging(logger *slog.Logger) Interceptor {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next Handler) Handler {
		return func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next(req)

			attrs := []slog.Attr{
				slog.String("method", req.Method),
				slog.String("url", req.URL.String()),
				slog.Duration("latency", time.Since(start)),
			}
			ctx := req.Context()
			msg := "api request"

			switch status := domain.HTTPStatus(err); {
			case err == nil:
				attrs = append(attrs, slog.Int("status", resp.StatusCode))
				logger.LogAttrs(ctx, slog.LevelDebug, msg, attrs...)
			case status == 0:
				attrs = append(attrs, slog.String("error", err.Error()))
				logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
			default:
				attrs = append(attrs, slog.Int("status", status))
				logger.LogAttrs(ctx, slog.LevelWarn, msg, attrs...)
			}
			return resp, err
		}
	}
}
