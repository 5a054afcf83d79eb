package auth

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/partsweb/internal/apiclient"
	"github.com/simp-lee/partsweb/internal/domain"
	"github.com/simp-lee/partsweb/internal/pkg"
	"github.com/simp-lee/partsweb/internal/pkg/page"
	"github.com/simp-lee/partsweb/internal/session"
)

const (
	// DefaultCookieName is the cookie holding the session token.
	DefaultCookieName = "jwt_token"
	// LoginRoute is the login page of the frontend.
	LoginRoute = "/login"
	// GuardMessage is shown when an anonymous browser opens a guarded page.
	GuardMessage = "Você precisa estar logado para acessar esta página."
)

// GateOptions configures a Gate.
type GateOptions struct {
	CookieName string
	MaxAge     time.Duration
	Secure     bool
	// LoginPath is the backend login resource, relative to the API base URL.
	LoginPath string
}

// Gate tracks whether the browser holds a session token. The token is only
// checked for presence; the backend decides whether it is still valid.
type Gate struct {
	client *apiclient.Client
	opts   GateOptions
}

// NewGate creates a Gate that logs in through client.
func NewGate(client *apiclient.Client, opts GateOptions) *Gate {
	if opts.CookieName == "" {
		opts.CookieName = DefaultCookieName
	}
	if opts.LoginPath == "" {
		opts.LoginPath = "auth/login"
	}
	return &Gate{client: client, opts: opts}
}

// Token returns the session token of the request, or "".
func (g *Gate) Token(c *gin.Context) string {
	token, err := c.Cookie(g.opts.CookieName)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(token)
}

// IsAuthenticated reports whether the request carries a non-empty token.
func (g *Gate) IsAuthenticated(c *gin.Context) bool {
	return g.Token(c) != ""
}

// Login exchanges the credentials for a token and stores it in the token
// cookie. Rejected credentials (400 or 401) return false without an error;
// the rejection has already been reported to the user by the REST client.
func (g *Gate) Login(c *gin.Context, username, password string) (bool, error) {
	resp, err := apiclient.Post[loginResponse](c.Request.Context(), g.client, g.opts.LoginPath, loginRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		switch domain.HTTPStatus(err) {
		case http.StatusBadRequest, http.StatusUnauthorized:
			return false, nil
		}
		return false, err
	}
	if resp.Token == "" {
		return false, errors.New("login response carries no token")
	}

	g.setCookie(c, resp.Token, int(g.opts.MaxAge/time.Second))
	return true, nil
}

// Logout clears the token cookie and sends the browser to the login page.
func (g *Gate) Logout(c *gin.Context) {
	g.setCookie(c, "", -1)
	pkg.Redirect(c, LoginRoute)
}

func (g *Gate) setCookie(c *gin.Context, value string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     g.opts.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   g.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Context exposes the token to the rest of the request: outgoing REST calls
// send it as a bearer token and pages see the auth state.
func (g *Gate) Context() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := g.Token(c)
		c.Set(page.AuthenticatedKey, token != "")
		if token != "" {
			c.Request = c.Request.WithContext(apiclient.WithToken(c.Request.Context(), token))
		}
		c.Next()
	}
}

// RequireAuth guards pages when required is true: anonymous browsers are
// warned and sent to the login page.
func (g *Gate) RequireAuth(required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !required || g.IsAuthenticated(c) {
			c.Next()
			return
		}
		session.Hub(c).ShowWarning(GuardMessage)
		c.Abort()
		pkg.Redirect(c, LoginRoute+"?next="+url.QueryEscape(c.Request.URL.RequestURI()))
	}
}
