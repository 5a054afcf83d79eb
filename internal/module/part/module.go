package part

import "github.com/gin-gonic/gin"

// Module registers the part pages and the compatibility view.
type Module struct {
	handler *Handler
}

// NewModule creates the part module. Panics if h is nil.
func NewModule(h *Handler) *Module {
	if h == nil {
		panic("part.NewModule: handler must not be nil")
	}
	return &Module{handler: h}
}

// RegisterRoutes registers the part routes.
func (m *Module) RegisterRoutes(pages *gin.RouterGroup) {
	pages.GET("/parts", m.handler.ListPage)
	pages.GET("/parts/new", m.handler.NewPage)
	pages.GET("/parts/edit", m.handler.EditPage)
	pages.GET("/parts/edit/:id", m.handler.EditPage)
	pages.POST("/parts", m.handler.Create)
	pages.PUT("/parts/:id", m.handler.Update)
	pages.POST("/parts/:id", m.handler.Update)
	pages.DELETE("/parts", m.handler.Delete)
	pages.DELETE("/parts/:id", m.handler.Delete)

	pages.GET("/parts/:id/compatibilities", m.handler.CompatibilityPage)
	pages.POST("/parts/:id/compatibilities", m.handler.AddCompatibility)
	pages.DELETE("/parts/:id/compatibilities", m.handler.DeleteCompatibility)
	pages.DELETE("/parts/:id/compatibilities/:cid", m.handler.DeleteCompatibility)
}
