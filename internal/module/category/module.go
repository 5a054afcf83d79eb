package category

import "github.com/gin-gonic/gin"

// Module registers the category pages.
type Module struct {
	handler *Handler
}

// NewModule creates the category module. Panics if h is nil.
func NewModule(h *Handler) *Module {
	if h == nil {
		panic("category.NewModule: handler must not be nil")
	}
	return &Module{handler: h}
}

// RegisterRoutes registers the category routes. The id-less edit and delete
// routes answer with a warning.
func (m *Module) RegisterRoutes(pages *gin.RouterGroup) {
	pages.GET("/categories", m.handler.ListPage)
	pages.GET("/categories/new", m.handler.NewPage)
	pages.GET("/categories/edit", m.handler.EditPage)
	pages.GET("/categories/edit/:id", m.handler.EditPage)
	pages.POST("/categories", m.handler.Create)
	pages.PUT("/categories/:id", m.handler.Update)
	pages.POST("/categories/:id", m.handler.Update)
	pages.DELETE("/categories", m.handler.Delete)
	pages.DELETE("/categories/:id", m.handler.Delete)
}
