package auth

import "github.com/gin-gonic/gin"

// Module registers the login pages.
type Module struct {
	handler *Handler
}

// NewModule creates the auth module. Panics if h is nil.
func NewModule(h *Handler) *Module {
	if h == nil {
		panic("auth.NewModule: handler must not be nil")
	}
	return &Module{handler: h}
}

// RegisterRoutes registers the login and logout routes. They stay outside the
// auth guard.
func (m *Module) RegisterRoutes(pages *gin.RouterGroup) {
	pages.GET("/login", m.handler.LoginPage)
	pages.POST("/login", m.handler.Login)
	pages.POST("/logout", m.handler.Logout)
}
