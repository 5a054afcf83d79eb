package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/partsweb/internal/domain"
	"github.com/simp-lee/partsweb/internal/pkg"
)

// PanicMessage is the alert shown to the user when a handler panics.
const PanicMessage = "Ocorreu um erro inesperado. Tente novamente."

// Recovery turns a handler panic into a 500 and logs it with its stack.
// The response matches the caller: htmx requests get a danger alert and no
// swap, browsers the errors/500.html page, everything else a JSON error body.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}

	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			logger.ErrorContext(c.Request.Context(), "panic recovered",
				slog.Any("panic", rec),
				slog.String("method", c.Request.Method),
				slog.String("path", c.Request.URL.Path),
				slog.String("stack", string(debug.Stack())),
			)
			c.Abort()

			switch {
			case pkg.IsHTMX(c):
				pkg.RespondAlerts(c, http.StatusInternalServerError, []domain.Alert{{
					Type:    domain.AlertDanger,
					Message: PanicMessage,
					Timeout: domain.DefaultAlertTimeout,
				}})
			case strings.Contains(strings.ToLower(c.GetHeader("Accept")), "text/html"):
				renderPanicPage(c)
			default:
				c.JSON(http.StatusInternalServerError, gin.H{
					"status":  http.StatusInternalServerError,
					"error":   http.StatusText(http.StatusInternalServerError),
					"message": "internal server error",
					"path":    c.Request.URL.Path,
				})
			}
		}()
		c.Next()
	}
}

// renderPanicPage falls back to plain text when no HTML renderer is set.
func renderPanicPage(c *gin.Context) {
	defer func() {
		if recover() != nil {
			c.Data(http.StatusInternalServerError, "text/plain; charset=utf-8", []byte("500 Internal Server Error"))
		}
	}()
	c.HTML(http.StatusInternalServerError, "errors/500.html", gin.H{})
}
