// Package page holds the response helpers shared by the page handlers: full
// page rendering with the pending alerts, and the htmx answers for mutations.
package page

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/partsweb/internal/domain"
	"github.com/simp-lee/partsweb/internal/middleware"
	"github.com/simp-lee/partsweb/internal/pkg"
	"github.com/simp-lee/partsweb/internal/session"
)

// AuthenticatedKey is the gin key holding whether the browser has a token.
const AuthenticatedKey = "authenticated"

// InvalidFormMessage is the warning shown when a submitted form fails validation.
const InvalidFormMessage = "Por favor, preencha todos os campos obrigatórios corretamente."

// Render writes a full page. Every page receives the alerts waiting on the
// session board, the CSRF token, the auth state and the current path.
func Render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Alerts"] = session.TakeAlerts(c)
	data["CSRFToken"] = middleware.GetCSRFToken(c)
	data["Authenticated"] = c.GetBool(AuthenticatedKey)
	data["Path"] = c.Request.URL.Path
	c.HTML(status, name, data)
}

// ErrorPage renders errors/{status}.html.
func ErrorPage(c *gin.Context, status int) {
	Render(c, status, fmt.Sprintf("errors/%d.html", status), nil)
}

// Success publishes a success alert and sends the browser to location, where
// the alert is rendered with the reloaded list.
func Success(c *gin.Context, message, location string) {
	session.Hub(c).ShowSuccess(message)
	pkg.Redirect(c, location)
}

// LoadFailed reports a page whose data could not be loaded. Backend errors
// already carry the client's danger alert, so msg is only published for
// failures that never reached the backend answer.
func LoadFailed(c *gin.Context, msg string, err error) {
	var httpErr *domain.HTTPError
	if errors.As(err, &httpErr) || errors.Is(err, context.Canceled) {
		return
	}
	session.Hub(c).ShowError(msg)
}

// Fail answers a failed mutation: the form stays as it is and the alerts
// already published for this request are shown. Plain form posts are sent
// back to the page they came from, which renders the alerts.
func Fail(c *gin.Context, status int) {
	if !pkg.IsHTMX(c) {
		if back := LocalPath(c.GetHeader("Referer"), c.Request.Host); back != "" {
			c.Redirect(http.StatusSeeOther, back)
			return
		}
	}
	pkg.RespondAlerts(c, status, session.TakeAlerts(c))
}

// LocalPath returns the path and query of target when it points at host (or
// is a bare local path), and "" otherwise.
func LocalPath(target, host string) string {
	if target == "" {
		return ""
	}
	u, err := url.Parse(target)
	if err != nil || (u.Host != "" && u.Host != host) || (u.Scheme != "" && u.Scheme != "http" && u.Scheme != "https") {
		return ""
	}
	if !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(u.Path, "//") || strings.Contains(u.Path, "\\") {
		return ""
	}
	return u.RequestURI()
}

// Warn publishes warnings and answers with Fail.
func Warn(c *gin.Context, status int, messages ...string) {
	hub := session.Hub(c)
	for _, m := range messages {
		hub.ShowWarning(m)
	}
	Fail(c, status)
}

// FailStatus picks the response status for a failed REST call.
func FailStatus(err error) int {
	if status := domain.HTTPStatus(err); status >= 400 {
		return status
	}
	return http.StatusBadGateway
}

// PageNumber reads the 1-based "page" query parameter. Missing or invalid
// values mean the first page.
func PageNumber(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("page"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Pager is the view model of the pagination component. Pages are 1-based.
type Pager struct {
	Current    int
	TotalPages int
	Total      int64
	BaseURL    string
	Query      string
}

// NewPager builds the pager for a page envelope. extra is appended to every
// page link, e.g. "name=disc" to keep a filter.
func NewPager[T any](p *domain.PageResponse[T], baseURL, extra string) Pager {
	return Pager{
		Current:    p.CurrentPage(),
		TotalPages: p.TotalPages,
		Total:      p.TotalElements,
		BaseURL:    baseURL,
		Query:      extra,
	}
}

// HasPrev reports whether a previous page exists.
func (p Pager) HasPrev() bool { return p.Current > 1 }

// HasNext reports whether a next page exists.
func (p Pager) HasNext() bool { return p.Current < p.TotalPages }

// Pages lists the page numbers to show.
func (p Pager) Pages() []int {
	pages := make([]int, 0, p.TotalPages)
	for i := 1; i <= p.TotalPages; i++ {
		pages = append(pages, i)
	}
	return pages
}

// Link returns the URL of page n.
func (p Pager) Link(n int) string {
	link := p.BaseURL + "?page=" + strconv.Itoa(n)
	if p.Query != "" {
		link += "&" + p.Query
	}
	return link
}
