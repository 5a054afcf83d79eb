package part

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/partsweb/internal/domain"
	"github.com/simp-lee/partsweb/internal/pkg"
	"github.com/simp-lee/partsweb/internal/pkg/page"
	"github.com/simp-lee/partsweb/internal/session"
)

// ListRoute is the part list page.
const ListRoute = "/parts"

// List parameters of the part list.
const (
	PageSize = 10
	ListSort = "name,asc"
)

const (
	msgLoadFailed        = "Não foi possível carregar as peças. Tente novamente mais tarde."
	msgCategoriesFailed  = "Não foi possível carregar as categorias."
	msgEditLoad          = "Erro ao carregar peça para edição. Verifique o ID."
	msgMissingEdit       = "ID da peça não encontrado para edição."
	msgMissingDelete     = "ID da peça não fornecido para exclusão."
	msgCreated           = "Peça criada com sucesso!"
	msgUpdated           = "Peça atualizada com sucesso!"
	msgDeleted           = "Peça deletada com sucesso!"
	confirmDeleteTitle   = "Confirmar Exclusão"
	confirmDeleteMessage = "Tem certeza que deseja deletar esta peça? Esta ação não pode ser desfeita."
)

// Handler serves the part pages. Categories feed the form dropdown and
// vehicle models the compatibility dropdown.
type Handler struct {
	parts      domain.PartService
	categories domain.CategoryService
	models     domain.VehicleModelService
	logger     *slog.Logger
}

// NewHandler creates a Handler over the three services.
func NewHandler(parts domain.PartService, categories domain.CategoryService, models domain.VehicleModelService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{parts: parts, categories: categories, models: models, logger: logger}
}

// ListPage renders one page of parts, optionally filtered by name. The UI
// page is 1-based; the backend page is 0-based.
// GET /parts?page=&name=
func (h *Handler) ListPage(c *gin.Context) {
	ctx := c.Request.Context()
	name := strings.TrimSpace(c.Query("name"))
	params := domain.NewPaginationParams(page.PageNumber(c)-1, PageSize, ListSort)
	params.Name = name

	result, err := h.parts.GetAll(ctx, params)
	if err != nil {
		h.logger.WarnContext(ctx, "list parts failed", slog.Any("error", err))
		page.LoadFailed(c, msgLoadFailed, err)
		result = domain.EmptyPage[domain.Part](PageSize)
	}

	extra := ""
	if name != "" {
		extra = url.Values{"name": {name}}.Encode()
	}
	page.Render(c, http.StatusOK, "part/list.html", gin.H{
		"Title":          "Peças",
		"Parts":          result.Content,
		"Pager":          page.NewPager(result, ListRoute, extra),
		"Name":           name,
		"ConfirmTitle":   confirmDeleteTitle,
		"ConfirmMessage": confirmDeleteMessage,
	})
}

// NewPage renders the empty part form.
// GET /parts/new
func (h *Handler) NewPage(c *gin.Context) {
	h.renderForm(c, "", Form{})
}

// EditPage renders the form filled with the stored part.
// GET /parts/edit/:id
func (h *Handler) EditPage(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		session.Hub(c).ShowWarning(msgMissingEdit)
		pkg.Redirect(c, ListRoute)
		return
	}
	p, err := h.parts.GetByID(c.Request.Context(), id)
	if err != nil {
		h.logger.WarnContext(c.Request.Context(), "load part failed", slog.String("id", id), slog.Any("error", err))
		session.Hub(c).ShowError(msgEditLoad)
		pkg.Redirect(c, ListRoute)
		return
	}
	h.renderForm(c, id, FormFrom(p))
}

// renderForm loads the category dropdown and renders the form. A failed
// category load leaves the dropdown empty.
func (h *Handler) renderForm(c *gin.Context, id string, form Form) {
	categories, err := h.categories.GetAll(c.Request.Context())
	if err != nil {
		h.logger.WarnContext(c.Request.Context(), "load categories failed", slog.Any("error", err))
		session.Hub(c).ShowError(msgCategoriesFailed)
	}
	title := "Nova Peça"
	if id != "" {
		title = "Editar Peça"
	}
	page.Render(c, http.StatusOK, "part/form.html", gin.H{
		"Title":      title,
		"IsEdit":     id != "",
		"ID":         id,
		"Form":       form,
		"Categories": categories,
	})
}

// Create stores a new part.
// POST /parts
func (h *Handler) Create(c *gin.Context) {
	var form Form
	if !bind(c, &form) {
		return
	}
	if _, err := h.parts.Create(c.Request.Context(), form.Part()); err != nil {
		h.logger.WarnContext(c.Request.Context(), "create part failed", slog.Any("error", err))
		page.Fail(c, page.FailStatus(err))
		return
	}
	page.Success(c, msgCreated, ListRoute)
}

// Update replaces the part.
// PUT /parts/:id
func (h *Handler) Update(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		page.Warn(c, http.StatusBadRequest, msgMissingEdit)
		return
	}
	var form Form
	if !bind(c, &form) {
		return
	}
	if _, err := h.parts.Update(c.Request.Context(), id, form.Part()); err != nil {
		h.logger.WarnContext(c.Request.Context(), "update part failed", slog.String("id", id), slog.Any("error", err))
		page.Fail(c, page.FailStatus(err))
		return
	}
	page.Success(c, msgUpdated, ListRoute)
}

// Delete removes the part and reloads the list page the user was on.
// DELETE /parts/:id
func (h *Handler) Delete(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		page.Warn(c, http.StatusBadRequest, msgMissingDelete)
		return
	}
	if err := h.parts.Delete(c.Request.Context(), id); err != nil {
		h.logger.WarnContext(c.Request.Context(), "delete part failed", slog.String("id", id), slog.Any("error", err))
		page.Fail(c, page.FailStatus(err))
		return
	}
	back := page.LocalPath(c.GetHeader("HX-Current-URL"), c.Request.Host)
	if !strings.HasPrefix(back, ListRoute+"?") {
		back = ListRoute
	}
	page.Success(c, msgDeleted, back)
}

// bind binds the submitted form into dst. On failure it has already answered
// with the warnings.
func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBind(dst); err != nil {
		page.Warn(c, http.StatusUnprocessableEntity, append([]string{page.InvalidFormMessage}, pkg.ValidationMessages(err)...)...)
		return false
	}
	return true
}
