package category

import (
	"strings"

	"github.com/simp-lee/partsweb/internal/domain"
)

// Form is the category form as submitted by the browser.
type Form struct {
	Name        string `form:"name" label:"Nome" binding:"required,notblank,max=100"`
	Description string `form:"description" label:"Descrição" binding:"max=500"`
}

// FormFrom fills a form from an existing category.
func FormFrom(c *domain.Category) Form {
	return Form{Name: c.Name, Description: c.Description}
}

// Category converts the form into the resource body.
func (f Form) Category() domain.Category {
	return domain.Category{
		Name:        strings.TrimSpace(f.Name),
		Description: strings.TrimSpace(f.Description),
	}
}
