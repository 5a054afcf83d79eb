package pkg

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/pagination"
	"gorm.io/gorm"

	"github.com/simp-lee/partsweb/internal/domain"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	// maxPage bounds the page index so offsets stay far from overflow.
	maxPage = 1 << 20
)

// validFieldName matches API field names such as "name" or "vehicleModel.name".
var validFieldName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*(\.[a-zA-Z_][a-zA-Z0-9_]*)*$`)

// likeEscaper escapes LIKE wildcards so a name filter matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// PageRequest holds the page, size, sort and name filter of a list request.
// Page is 0-based.
type PageRequest struct {
	Page      int
	Size      int
	SortField string
	SortDesc  bool
	Name      string
}

// ParsePageRequest reads page, size, sort ("field,direction") and name from
// the query string. Missing or invalid values fall back to page 0, size 20
// and no sort; size is capped at 100 and page at maxPage.
func ParsePageRequest(c *gin.Context) PageRequest {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 0 {
		page = 0
	}
	if page > maxPage {
		page = maxPage
	}

	size, err := strconv.Atoi(c.Query("size"))
	if err != nil || size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	req := PageRequest{
		Page: page,
		Size: size,
		Name: strings.TrimSpace(c.Query("name")),
	}

	field, direction, _ := strings.Cut(c.Query("sort"), ",")
	field = strings.TrimSpace(field)
	direction = strings.ToLower(strings.TrimSpace(direction))
	if validFieldName.MatchString(field) && (direction == "" || direction == "asc" || direction == "desc") {
		req.SortField = field
		req.SortDesc = direction == "desc"
	}

	return req
}

// SortColumn resolves the requested sort field against an allowlist mapping
// API field names to SQL columns.
func (r PageRequest) SortColumn(columns map[string]string) (string, bool) {
	if r.SortField == "" {
		return "", false
	}
	column, ok := columns[r.SortField]
	return column, ok
}

// Window returns a GORM scope that applies OFFSET and LIMIT.
func Window(offset, limit int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(offset).Limit(limit)
	}
}

// FetchPage counts the matching rows and loads the requested page through a
// pagination.Paginator. A page past the end yields no items and skips the
// fetch.
func FetchPage[T any](
	ctx context.Context,
	req PageRequest,
	count func(ctx context.Context) (int64, error),
	fetch func(ctx context.Context, offset, limit int) ([]T, error),
) ([]T, int64, error) {
	total, err := count(ctx)
	if err != nil {
		return nil, 0, err
	}
	size := req.Size
	if size < 1 {
		size = defaultPageSize
	}
	totalPages := (total + int64(size) - 1) / int64(size)
	if req.Page < 0 || int64(req.Page) >= totalPages {
		return []T{}, total, nil
	}

	p := pagination.NewPaginator(
		pagination.WithItemsPerPage[T](size),
		pagination.WithKnownTotal[T](total),
		pagination.WithSliceCallback(fetch),
	)
	page, err := p.Paginate(ctx, req.Page+1)
	if err != nil {
		return nil, 0, err
	}
	return page.Items, total, nil
}

// Sort returns a GORM scope that orders by the requested field when it is in
// columns, and by fallback otherwise. Fields outside the allowlist are
// silently ignored.
func Sort(req PageRequest, columns map[string]string, fallback string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		column, ok := req.SortColumn(columns)
		if !ok {
			if fallback == "" {
				return db
			}
			return db.Order(fallback)
		}
		direction := " asc"
		if req.SortDesc {
			direction = " desc"
		}
		return db.Order(column + direction)
	}
}

// NameFilter returns a GORM scope matching column case-insensitively against
// the name filter. An empty filter leaves the query untouched.
func NameFilter(column, name string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if name == "" {
			return db
		}
		pattern := "%" + likeEscaper.Replace(strings.ToLower(name)) + "%"
		return db.Where("LOWER("+column+`) LIKE ? ESCAPE '\'`, pattern)
	}
}

// NewPage wraps one page of items in the page envelope.
func NewPage[T any](items []T, total int64, req PageRequest, sorted bool) *domain.PageResponse[T] {
	return domain.NewPageResponse(items, req.Page, req.Size, total, sorted)
}
