package session

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/simp-lee/partsweb/internal/domain"
	"github.com/simp-lee/partsweb/internal/notify"
)

const (
	// DefaultCookieName names the cookie that carries the session id.
	DefaultCookieName = "partsweb_session"

	sessionContextKey = "session"
)

// CookieOptions controls the session cookie.
type CookieOptions struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

// Middleware resolves the browser session from its cookie, creating one when
// the cookie is missing or stale, and puts the session hub in the request context.
func Middleware(store *Store, opts CookieOptions) gin.HandlerFunc {
	if opts.Name == "" {
		opts.Name = DefaultCookieName
	}

	return func(c *gin.Context) {
		var sess *Session
		if id, err := c.Cookie(opts.Name); err == nil && isValidID(id) {
			sess, _ = store.Get(id)
		}
		if sess == nil {
			sess = store.Create()
			http.SetCookie(c.Writer, &http.Cookie{
				Name:     opts.Name,
				Value:    sess.ID,
				Path:     "/",
				MaxAge:   int(opts.MaxAge / time.Second),
				HttpOnly: true,
				Secure:   opts.Secure,
				SameSite: http.SameSiteLaxMode,
			})
		}

		c.Set(sessionContextKey, sess)
		c.Request = c.Request.WithContext(notify.WithHub(c.Request.Context(), sess.Hub))
		c.Next()
	}
}

// FromGin returns the session attached by Middleware, or nil.
func FromGin(c *gin.Context) *Session {
	if v, ok := c.Get(sessionContextKey); ok {
		if sess, ok := v.(*Session); ok {
			return sess
		}
	}
	return nil
}

// Hub returns the alert hub of the request's session. Requests that did not
// pass through Middleware get a detached hub nobody listens to.
func Hub(c *gin.Context) *notify.Hub {
	if sess := FromGin(c); sess != nil {
		return sess.Hub
	}
	return notify.NewHub(nil)
}

// TakeAlerts drains the alerts waiting on the request's session board.
func TakeAlerts(c *gin.Context) []domain.Alert {
	if sess := FromGin(c); sess != nil {
		return sess.Board.Take()
	}
	return nil
}

func isValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
