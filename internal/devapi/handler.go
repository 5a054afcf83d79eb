package devapi

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/partsweb/internal/domain"
	"github.com/simp-lee/partsweb/internal/pkg"
)

const msgPartMismatch = "A peça do corpo difere da peça da URL."

// CatalogHandler serves the catalog resources. Categories and vehicle models
// are returned as plain arrays; parts and compatibilities as page envelopes.
type CatalogHandler struct {
	store  *Store
	logger *slog.Logger
}

// NewCatalogHandler creates a CatalogHandler.
func NewCatalogHandler(store *Store, logger *slog.Logger) *CatalogHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogHandler{store: store, logger: logger}
}

// RegisterRoutes mounts the catalog routes on rg.
func (h *CatalogHandler) RegisterRoutes(rg *gin.RouterGroup) {
	categories := rg.Group("/categories")
	categories.GET("", h.ListCategories)
	categories.POST("", h.CreateCategory)
	categories.GET("/:id", h.GetCategory)
	categories.PUT("/:id", h.UpdateCategory)
	categories.DELETE("/:id", h.DeleteCategory)

	models := rg.Group("/vehicle-models")
	models.GET("", h.ListVehicleModels)
	models.POST("", h.CreateVehicleModel)
	models.GET("/:id", h.GetVehicleModel)
	models.PUT("/:id", h.UpdateVehicleModel)
	models.DELETE("/:id", h.DeleteVehicleModel)

	parts := rg.Group("/parts")
	parts.GET("", h.ListParts)
	parts.POST("", h.CreatePart)
	parts.GET("/:id", h.GetPart)
	parts.PUT("/:id", h.UpdatePart)
	parts.DELETE("/:id", h.DeletePart)
	parts.GET("/:id/compatibilities", h.ListCompatibilities)
	parts.POST("/:id/compatibilities", h.AddCompatibility)
	parts.DELETE("/:id/compatibilities/:compatibilityId", h.DeleteCompatibility)
}

// --------------- categories ---------------

// ListCategories handles GET /api/v1/categories.
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	rows, err := h.store.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, mapSlice(rows, Category.toDomain))
}

// GetCategory handles GET /api/v1/categories/:id.
func (h *CatalogHandler) GetCategory(c *gin.Context) {
	row, err := h.store.GetCategory(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, row.toDomain())
}

// CreateCategory handles POST /api/v1/categories.
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req categoryRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	row := req.model()
	if err := h.store.CreateCategory(c.Request.Context(), &row); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, row.toDomain())
}

// UpdateCategory handles PUT /api/v1/categories/:id.
func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	var req categoryRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	row := req.model()
	if err := h.store.UpdateCategory(c.Request.Context(), c.Param("id"), &row); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, row.toDomain())
}

// DeleteCategory handles DELETE /api/v1/categories/:id.
func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	if err := h.store.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --------------- vehicle models ---------------

// ListVehicleModels handles GET /api/v1/vehicle-models.
func (h *CatalogHandler) ListVehicleModels(c *gin.Context) {
	rows, err := h.store.ListVehicleModels(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, mapSlice(rows, VehicleModel.toDomain))
}

// GetVehicleModel handles GET /api/v1/vehicle-models/:id.
func (h *CatalogHandler) GetVehicleModel(c *gin.Context) {
	row, err := h.store.GetVehicleModel(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, row.toDomain())
}

// CreateVehicleModel handles POST /api/v1/vehicle-models.
func (h *CatalogHandler) CreateVehicleModel(c *gin.Context) {
	var req vehicleModelRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	row := req.model()
	if err := h.store.CreateVehicleModel(c.Request.Context(), &row); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, row.toDomain())
}

// UpdateVehicleModel handles PUT /api/v1/vehicle-models/:id.
func (h *CatalogHandler) UpdateVehicleModel(c *gin.Context) {
	var req vehicleModelRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	row := req.model()
	if err := h.store.UpdateVehicleModel(c.Request.Context(), c.Param("id"), &row); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, row.toDomain())
}

// DeleteVehicleModel handles DELETE /api/v1/vehicle-models/:id.
func (h *CatalogHandler) DeleteVehicleModel(c *gin.Context) {
	if err := h.store.DeleteVehicleModel(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --------------- parts ---------------

// ListParts handles GET /api/v1/parts?page=&size=&sort=&name=.
func (h *CatalogHandler) ListParts(c *gin.Context) {
	req := pkg.ParsePageRequest(c)
	rows, total, sorted, err := h.store.ListParts(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, pkg.NewPage(mapSlice(rows, Part.toDomain), total, req, sorted))
}

// GetPart handles GET /api/v1/parts/:id.
func (h *CatalogHandler) GetPart(c *gin.Context) {
	row, err := h.store.GetPart(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, row.toDomain())
}

// CreatePart handles POST /api/v1/parts.
func (h *CatalogHandler) CreatePart(c *gin.Context) {
	var req partRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	row := req.model()
	if err := h.store.CreatePart(c.Request.Context(), &row); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, row.toDomain())
}

// UpdatePart handles PUT /api/v1/parts/:id.
func (h *CatalogHandler) UpdatePart(c *gin.Context) {
	var req partRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	row := req.model()
	if err := h.store.UpdatePart(c.Request.Context(), c.Param("id"), &row); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, row.toDomain())
}

// DeletePart handles DELETE /api/v1/parts/:id. Its compatibilities go with it.
func (h *CatalogHandler) DeletePart(c *gin.Context) {
	if err := h.store.DeletePart(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --------------- compatibilities ---------------

// ListCompatibilities handles GET /api/v1/parts/:id/compatibilities.
func (h *CatalogHandler) ListCompatibilities(c *gin.Context) {
	req := pkg.ParsePageRequest(c)
	rows, total, sorted, err := h.store.ListCompatibilities(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, pkg.NewPage(mapSlice(rows, Compatibility.toDomain), total, req, sorted))
}

// AddCompatibility handles POST /api/v1/parts/:id/compatibilities.
func (h *CatalogHandler) AddCompatibility(c *gin.Context) {
	var req compatibilityRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	partID := c.Param("id")
	if req.PartID != "" && req.PartID != partID {
		respondError(c, h.logger, domain.NewAppError(domain.CodeValidation, msgPartMismatch, nil))
		return
	}
	row, err := h.store.AddCompatibility(c.Request.Context(), partID,
		strings.TrimSpace(req.VehicleModelID), strings.TrimSpace(req.Notes))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, row.toDomain())
}

// DeleteCompatibility handles DELETE /api/v1/parts/:id/compatibilities/:compatibilityId.
func (h *CatalogHandler) DeleteCompatibility(c *gin.Context) {
	if err := h.store.DeleteCompatibility(c.Request.Context(), c.Param("id"), c.Param("compatibilityId")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// respondError logs server-side failures and sends the error body.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	if domain.HTTPStatusCode(err) >= http.StatusInternalServerError {
		logger.ErrorContext(c.Request.Context(), "request failed",
			slog.String("path", c.FullPath()),
			slog.String("username", CurrentUsername(c)),
			slog.Any("error", err))
	}
	pkg.Error(c, err)
}
