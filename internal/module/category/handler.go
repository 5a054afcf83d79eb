package category

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/partsweb/internal/domain"
	"github.com/simp-lee/partsweb/internal/pkg"
	"github.com/simp-lee/partsweb/internal/pkg/page"
	"github.com/simp-lee/partsweb/internal/session"
)

// ListRoute is the category list page.
const ListRoute = "/categories"

const (
	msgLoadFailed    = "Não foi possível carregar as categorias. Tente novamente mais tarde."
	msgEditLoad      = "Erro ao carregar categoria para edição. Verifique o ID."
	msgMissingEdit   = "ID da categoria não encontrado para edição."
	msgMissingDelete = "ID da categoria não fornecido para exclusão."
	msgCreated       = "Categoria criada com sucesso!"
	msgUpdated       = "Categoria atualizada com sucesso!"
	msgDeleted       = "Categoria deletada com sucesso!"

	confirmTitle   = "Confirmar Exclusão"
	confirmMessage = "Tem certeza que deseja deletar esta categoria? Esta ação não pode ser desfeita."
)

// Handler serves the category pages.
type Handler struct {
	svc    domain.CategoryService
	logger *slog.Logger
}

// NewHandler creates a Handler over svc.
func NewHandler(svc domain.CategoryService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

// ListPage renders every category. A failed load still renders the page,
// empty, with the alerts.
// GET /categories
func (h *Handler) ListPage(c *gin.Context) {
	categories, err := h.svc.GetAll(c.Request.Context())
	if err != nil {
		h.logger.WarnContext(c.Request.Context(), "list categories failed", slog.Any("error", err))
		page.LoadFailed(c, msgLoadFailed, err)
		categories = []domain.Category{}
	}
	page.Render(c, http.StatusOK, "category/list.html", gin.H{
		"Title":          "Categorias",
		"Categories":     categories,
		"ConfirmTitle":   confirmTitle,
		"ConfirmMessage": confirmMessage,
	})
}

// NewPage renders the empty category form.
// GET /categories/new
func (h *Handler) NewPage(c *gin.Context) {
	page.Render(c, http.StatusOK, "category/form.html", gin.H{
		"Title":  "Nova Categoria",
		"IsEdit": false,
		"Form":   Form{},
	})
}

// EditPage renders the form filled with the stored category.
// GET /categories/edit/:id
func (h *Handler) EditPage(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		session.Hub(c).ShowWarning(msgMissingEdit)
		pkg.Redirect(c, ListRoute)
		return
	}

	category, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.logger.WarnContext(c.Request.Context(), "load category failed", slog.String("id", id), slog.Any("error", err))
		session.Hub(c).ShowError(msgEditLoad)
		pkg.Redirect(c, ListRoute)
		return
	}

	page.Render(c, http.StatusOK, "category/form.html", gin.H{
		"Title":  "Editar Categoria",
		"IsEdit": true,
		"ID":     id,
		"Form":   FormFrom(category),
	})
}

// Create stores a new category.
// POST /categories
func (h *Handler) Create(c *gin.Context) {
	form, ok := bindForm(c)
	if !ok {
		return
	}
	if _, err := h.svc.Create(c.Request.Context(), form.Category()); err != nil {
		h.logger.WarnContext(c.Request.Context(), "create category failed", slog.Any("error", err))
		page.Fail(c, page.FailStatus(err))
		return
	}
	page.Success(c, msgCreated, ListRoute)
}

// Update replaces the category.
// PUT /categories/:id
func (h *Handler) Update(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		page.Warn(c, http.StatusBadRequest, msgMissingEdit)
		return
	}
	form, ok := bindForm(c)
	if !ok {
		return
	}
	if _, err := h.svc.Update(c.Request.Context(), id, form.Category()); err != nil {
		h.logger.WarnContext(c.Request.Context(), "update category failed", slog.String("id", id), slog.Any("error", err))
		page.Fail(c, page.FailStatus(err))
		return
	}
	page.Success(c, msgUpdated, ListRoute)
}

// Delete removes the category once the user confirmed the dialog.
// DELETE /categories/:id
func (h *Handler) Delete(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		page.Warn(c, http.StatusBadRequest, msgMissingDelete)
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		h.logger.WarnContext(c.Request.Context(), "delete category failed", slog.String("id", id), slog.Any("error", err))
		page.Fail(c, page.FailStatus(err))
		return
	}
	page.Success(c, msgDeleted, ListRoute)
}

// bindForm binds the submitted form. On failure it has already answered with
// the warnings.
func bindForm(c *gin.Context) (Form, bool) {
	var form Form
	if err := c.ShouldBind(&form); err != nil {
		page.Warn(c, http.StatusUnprocessableEntity, append([]string{page.InvalidFormMessage}, pkg.ValidationMessages(err)...)...)
		return form, false
	}
	return form, true
}
