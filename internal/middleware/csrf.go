package middleware

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	csrfCookieName = "_csrf_token"
	csrfFormField  = "_csrf_token"
	csrfHeaderName = "X-CSRF-Token"
	csrfGinKey     = "CSRFToken"
	csrfNonceBytes = 32
)

// CSRF failure reasons passed to CSRFConfig.OnFailure.
const (
	CSRFMissing = "CSRF token missing"
	CSRFInvalid = "CSRF token invalid"
)

// CSRFConfig configures the CSRF middleware.
type CSRFConfig struct {
	Secret string
	// Secure marks the token cookie HTTPS-only.
	Secure bool
	// OnFailure answers a rejected mutation. The request is already aborted.
	// Defaults to a plain 403.
	OnFailure func(c *gin.Context, reason string)
}

// CSRF protects form posts with a signed double-submit token.
//
// Safe requests get a token cookie (readable by scripts, so htmx can echo it
// in X-CSRF-Token) and the token in gin.Context for templates. Mutations must
// present the same validly signed token in the _csrf_token form field or the
// X-CSRF-Token header.
//
// Token format: hex(nonce) "." base64url(HMAC-SHA256(nonce, secret)).
func CSRF(cfg CSRFConfig) gin.HandlerFunc {
	secret := strings.TrimSpace(cfg.Secret)
	onFailure := cfg.OnFailure
	if onFailure == nil {
		onFailure = func(c *gin.Context, reason string) {
			c.String(http.StatusForbidden, reason)
		}
	}
	reject := func(c *gin.Context, reason string) {
		c.Abort()
		onFailure(c, reason)
	}

	if secret == "" {
		return func(c *gin.Context) {
			c.AbortWithStatus(http.StatusInternalServerError)
		}
	}

	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			token, err := c.Cookie(csrfCookieName)
			if err != nil || !validToken(token, secret) {
				if token, err = newToken(secret); err != nil {
					c.AbortWithStatus(http.StatusInternalServerError)
					return
				}
				http.SetCookie(c.Writer, &http.Cookie{
					Name:     csrfCookieName,
					Value:    token,
					Path:     "/",
					Secure:   cfg.Secure,
					SameSite: http.SameSiteStrictMode,
				})
			}
			c.Set(csrfGinKey, token)
			c.Next()
			return
		}

		cookieToken, err := c.Cookie(csrfCookieName)
		if err != nil || cookieToken == "" {
			reject(c, CSRFMissing)
			return
		}
		sent := c.GetHeader(csrfHeaderName)
		if sent == "" {
			sent = c.PostForm(csrfFormField)
		}
		if sent == "" {
			reject(c, CSRFMissing)
			return
		}
		if !validToken(cookieToken, secret) || subtle.ConstantTimeCompare([]byte(cookieToken), []byte(sent)) != 1 {
			reject(c, CSRFInvalid)
			return
		}

		c.Set(csrfGinKey, cookieToken)
		c.Next()
	}
}

// GetCSRFToken returns the token stored by CSRF, or "".
func GetCSRFToken(c *gin.Context) string {
	return c.GetString(csrfGinKey)
}

func newToken(secret string) (string, error) {
	nonce := make([]byte, csrfNonceBytes)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	n := hex.EncodeToString(nonce)
	return n + "." + sign(n, secret), nil
}

func sign(nonce, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(nonce))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func validToken(token, secret string) bool {
	nonce, sig, ok := strings.Cut(token, ".")
	if !ok || nonce == "" || sig == "" {
		return false
	}
	return hmac.Equal([]byte(sig), []byte(sign(nonce, secret)))
}
