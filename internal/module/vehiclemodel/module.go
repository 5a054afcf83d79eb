package vehiclemodel

import "github.com/gin-gonic/gin"

// Module registers the vehicle model pages.
type Module struct {
	handler *Handler
}

// NewModule creates the vehicle model module. Panics if h is nil.
func NewModule(h *Handler) *Module {
	if h == nil {
		panic("vehiclemodel.NewModule: handler must not be nil")
	}
	return &Module{handler: h}
}

// RegisterRoutes registers the vehicle model routes.
func (m *Module) RegisterRoutes(pages *gin.RouterGroup) {
	pages.GET("/vehicle-models", m.handler.ListPage)
	pages.GET("/vehicle-models/new", m.handler.NewPage)
	pages.GET("/vehicle-models/edit", m.handler.EditPage)
	pages.GET("/vehicle-models/edit/:id", m.handler.EditPage)
	pages.POST("/vehicle-models", m.handler.Create)
	pages.PUT("/vehicle-models/:id", m.handler.Update)
	pages.POST("/vehicle-models/:id", m.handler.Update)
	pages.DELETE("/vehicle-models", m.handler.Delete)
	pages.DELETE("/vehicle-models/:id", m.handler.Delete)
}
