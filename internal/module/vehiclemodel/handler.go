package vehiclemodel

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/partsweb/internal/domain"
	"github.com/simp-lee/partsweb/internal/pkg"
	"github.com/simp-lee/partsweb/internal/pkg/page"
	"github.com/simp-lee/partsweb/internal/session"
)

// ListRoute is the vehicle model list page.
const ListRoute = "/vehicle-models"

const (
	msgLoadFailed    = "Não foi possível carregar os modelos de veículos. Tente novamente mais tarde."
	msgEditLoad      = "Erro ao carregar modelo de veículo para edição. Verifique o ID."
	msgMissingEdit   = "ID do modelo de veículo não encontrado para edição."
	msgMissingDelete = "ID do modelo de veículo não fornecido para exclusão."
	msgCreated       = "Modelo de veículo criado com sucesso!"
	msgUpdated       = "Modelo de veículo atualizado com sucesso!"
	msgDeleted       = "Modelo de veículo deletado com sucesso!"

	confirmTitle   = "Confirmar Exclusão"
	confirmMessage = "Tem certeza que deseja deletar este modelo de veículo? Esta ação não pode ser desfeita."
)

// Handler serves the vehicle model pages.
type Handler struct {
	svc    domain.VehicleModelService
	logger *slog.Logger
}

// NewHandler creates a Handler over svc.
func NewHandler(svc domain.VehicleModelService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

// ListPage renders every vehicle model.
// GET /vehicle-models
func (h *Handler) ListPage(c *gin.Context) {
	models, err := h.svc.GetAll(c.Request.Context())
	if err != nil {
		h.logger.WarnContext(c.Request.Context(), "list vehicle models failed", slog.Any("error", err))
		page.LoadFailed(c, msgLoadFailed, err)
	}
	page.Render(c, http.StatusOK, "vehiclemodel/list.html", gin.H{
		"Title":          "Modelos de Veículos",
		"Models":         models,
		"ConfirmTitle":   confirmTitle,
		"ConfirmMessage": confirmMessage,
	})
}

// NewPage renders the empty form.
// GET /vehicle-models/new
func (h *Handler) NewPage(c *gin.Context) {
	page.Render(c, http.StatusOK, "vehiclemodel/form.html", formData(false, "", Form{}))
}

// EditPage renders the form filled with the stored vehicle model.
// GET /vehicle-models/edit/:id
func (h *Handler) EditPage(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		session.Hub(c).ShowWarning(msgMissingEdit)
		pkg.Redirect(c, ListRoute)
		return
	}
	model, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.logger.WarnContext(c.Request.Context(), "load vehicle model failed", slog.String("id", id), slog.Any("error", err))
		session.Hub(c).ShowError(msgEditLoad)
		pkg.Redirect(c, ListRoute)
		return
	}
	page.Render(c, http.StatusOK, "vehiclemodel/form.html", formData(true, id, FormFrom(model)))
}

// Create stores a new vehicle model.
// POST /vehicle-models
func (h *Handler) Create(c *gin.Context) {
	var form Form
	if err := c.ShouldBind(&form); err != nil {
		invalidForm(c, err)
		return
	}
	if _, err := h.svc.Create(c.Request.Context(), form.VehicleModel()); err != nil {
		h.logger.WarnContext(c.Request.Context(), "create vehicle model failed", slog.Any("error", err))
		page.Fail(c, page.FailStatus(err))
		return
	}
	page.Success(c, msgCreated, ListRoute)
}

// Update replaces the vehicle model.
// PUT /vehicle-models/:id
func (h *Handler) Update(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		page.Warn(c, http.StatusBadRequest, msgMissingEdit)
		return
	}
	var form Form
	if err := c.ShouldBind(&form); err != nil {
		invalidForm(c, err)
		return
	}
	if _, err := h.svc.Update(c.Request.Context(), id, form.VehicleModel()); err != nil {
		h.logger.WarnContext(c.Request.Context(), "update vehicle model failed", slog.String("id", id), slog.Any("error", err))
		page.Fail(c, page.FailStatus(err))
		return
	}
	page.Success(c, msgUpdated, ListRoute)
}

// Delete removes the vehicle model.
// DELETE /vehicle-models/:id
func (h *Handler) Delete(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		page.Warn(c, http.StatusBadRequest, msgMissingDelete)
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		h.logger.WarnContext(c.Request.Context(), "delete vehicle model failed", slog.String("id", id), slog.Any("error", err))
		page.Fail(c, page.FailStatus(err))
		return
	}
	page.Success(c, msgDeleted, ListRoute)
}

func formData(edit bool, id string, form Form) gin.H {
	title := "Novo Modelo de Veículo"
	if edit {
		title = "Editar Modelo de Veículo"
	}
	return gin.H{
		"Title":   title,
		"IsEdit":  edit,
		"ID":      id,
		"Form":    form,
		"MinYear": pkg.FirstModelYear,
		"MaxYear": time.Now().Year(),
	}
}

func invalidForm(c *gin.Context, err error) {
	page.Warn(c, http.StatusUnprocessableEntity, append([]string{page.InvalidFormMessage}, pkg.ValidationMessages(err)...)...)
}
