package part

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/partsweb/internal/apiclient"
	"github.com/simp-lee/partsweb/internal/domain"
	"github.com/simp-lee/partsweb/internal/pkg"
	"github.com/simp-lee/partsweb/internal/pkg/page"
	"github.com/simp-lee/partsweb/internal/session"
)

// CompatibilitySort orders the compatibility list.
const CompatibilitySort = "vehicleModel.name,asc"

const (
	msgMissingPart        = "ID da peça não fornecido."
	msgCompatDataFailed   = "Erro ao carregar dados da peça ou modelos de veículos."
	msgCompatListFailed   = "Não foi possível carregar as compatibilidades desta peça."
	msgSelectModel        = "Por favor, selecione um modelo de veículo."
	msgCompatAdded        = "Compatibilidade adicionada com sucesso!"
	msgCompatMissingIDs   = "IDs necessários para exclusão da compatibilidade não fornecidos."
	msgCompatRemoved      = "Compatibilidade removida com sucesso!"
	confirmRemoveTitle    = "Confirmar Remoção"
	confirmRemoveQuestion = "Tem certeza que deseja remover esta compatibilidade?"
)

// compatibilityRoute returns the compatibility page of a part.
func compatibilityRoute(partID string) string {
	return "/" + apiclient.Path(ResourcePath, partID, compatibilitiesPath)
}

// CompatibilityPage renders the part, the vehicle model dropdown and one page
// of the part's compatibilities. The list is only loaded once the part and
// the vehicle models are known.
// GET /parts/:id/compatibilities?page=
func (h *Handler) CompatibilityPage(c *gin.Context) {
	ctx := c.Request.Context()
	partID := strings.TrimSpace(c.Param("id"))
	if partID == "" {
		session.Hub(c).ShowError(msgMissingPart)
		pkg.Redirect(c, ListRoute)
		return
	}

	p, err := h.parts.GetByID(ctx, partID)
	var models []domain.VehicleModel
	if err == nil {
		models, err = h.models.GetAll(ctx)
	}
	if err != nil {
		h.logger.WarnContext(ctx, "load compatibility view failed", slog.String("part_id", partID), slog.Any("error", err))
		session.Hub(c).ShowError(msgCompatDataFailed)
		pkg.Redirect(c, ListRoute)
		return
	}

	params := domain.NewPaginationParams(page.PageNumber(c)-1, PageSize, CompatibilitySort)
	result, err := h.parts.GetCompatibilities(ctx, partID, params)
	if err != nil {
		h.logger.WarnContext(ctx, "list compatibilities failed", slog.String("part_id", partID), slog.Any("error", err))
		page.LoadFailed(c, msgCompatListFailed, err)
		result = domain.EmptyPage[domain.PartVehicleCompatibility](PageSize)
	}

	page.Render(c, http.StatusOK, "part/compatibilities.html", gin.H{
		"Title":           "Compatibilidades",
		"Part":            p,
		"VehicleModels":   models,
		"Compatibilities": result.Content,
		"Pager":           page.NewPager(result, compatibilityRoute(partID), ""),
		"Form":            CompatibilityForm{},
		"ConfirmTitle":    confirmRemoveTitle,
		"ConfirmMessage":  confirmRemoveQuestion,
	})
}

// AddCompatibility links a vehicle model to the part.
// POST /parts/:id/compatibilities
func (h *Handler) AddCompatibility(c *gin.Context) {
	partID := strings.TrimSpace(c.Param("id"))
	var form CompatibilityForm
	if err := c.ShouldBind(&form); err != nil {
		if strings.TrimSpace(form.VehicleModelID) == "" {
			page.Warn(c, http.StatusUnprocessableEntity, msgSelectModel)
			return
		}
		page.Warn(c, http.StatusUnprocessableEntity, append([]string{page.InvalidFormMessage}, pkg.ValidationMessages(err)...)...)
		return
	}

	notes := strings.TrimSpace(form.Notes)
	if _, err := h.parts.AddCompatibility(c.Request.Context(), partID, form.VehicleModelID, notes); err != nil {
		h.logger.WarnContext(c.Request.Context(), "add compatibility failed",
			slog.String("part_id", partID), slog.String("vehicle_model_id", form.VehicleModelID), slog.Any("error", err))
		page.Fail(c, page.FailStatus(err))
		return
	}
	page.Success(c, msgCompatAdded, compatibilityRoute(partID))
}

// DeleteCompatibility removes one compatibility after the confirmation.
// DELETE /parts/:id/compatibilities/:cid
func (h *Handler) DeleteCompatibility(c *gin.Context) {
	partID := strings.TrimSpace(c.Param("id"))
	compatibilityID := strings.TrimSpace(c.Param("cid"))
	if partID == "" || compatibilityID == "" {
		page.Warn(c, http.StatusBadRequest, msgCompatMissingIDs)
		return
	}
	if err := h.parts.DeleteCompatibility(c.Request.Context(), partID, compatibilityID); err != nil {
		h.logger.WarnContext(c.Request.Context(), "delete compatibility failed",
			slog.String("part_id", partID), slog.String("compatibility_id", compatibilityID), slog.Any("error", err))
		page.Fail(c, page.FailStatus(err))
		return
	}
	page.Success(c, msgCompatRemoved, compatibilityRoute(partID))
}
