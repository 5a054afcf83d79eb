package auth

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/partsweb/internal/pkg"
	"github.com/simp-lee/partsweb/internal/pkg/page"
)

// HomeRoute is where a successful login lands when no page was requested.
const HomeRoute = "/categories"

// Handler serves the login and logout pages.
type Handler struct {
	gate   *Gate
	logger *slog.Logger
}

// NewHandler creates a Handler for gate.
func NewHandler(gate *Gate, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{gate: gate, logger: logger}
}

// LoginPage renders the login form.
// GET /login
func (h *Handler) LoginPage(c *gin.Context) {
	if h.gate.IsAuthenticated(c) {
		c.Redirect(http.StatusSeeOther, HomeRoute)
		return
	}
	page.Render(c, http.StatusOK, "auth/login.html", gin.H{
		"Title": "Entrar",
		"Next":  c.Query("next"),
	})
}

// Login exchanges the submitted credentials for a token.
// POST /login
func (h *Handler) Login(c *gin.Context) {
	var form LoginForm
	if err := c.ShouldBind(&form); err != nil {
		page.Warn(c, http.StatusUnprocessableEntity, append([]string{page.InvalidFormMessage}, pkg.ValidationMessages(err)...)...)
		return
	}

	ok, err := h.gate.Login(c, form.Username, form.Password)
	if err != nil {
		h.logger.WarnContext(c.Request.Context(), "login failed", slog.String("username", form.Username), slog.Any("error", err))
		page.Fail(c, page.FailStatus(err))
		return
	}
	if !ok {
		page.Fail(c, http.StatusUnauthorized)
		return
	}

	next := page.LocalPath(form.Next, c.Request.Host)
	if next == "" || next == LoginRoute {
		next = HomeRoute
	}
	page.Success(c, "Login realizado com sucesso!", next)
}

// Logout clears the token.
// POST /logout
func (h *Handler) Logout(c *gin.Context) {
	h.gate.Logout(c)
}
