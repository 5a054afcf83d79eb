package part

import (
	"strings"

	"github.com/simp-lee/partsweb/internal/domain"
)

// Form is the part form as submitted by the browser.
type Form struct {
	Name        string `form:"name" label:"Nome" binding:"required,notblank,max=100"`
	PartNumber  string `form:"partNumber" label:"Número da peça" binding:"required,notblank,max=50"`
	CategoryID  string `form:"categoryId" label:"Categoria" binding:"required,notblank"`
	Description string `form:"description" label:"Descrição" binding:"max=500"`
}

// FormFrom fills a form from an existing part.
func FormFrom(p *domain.Part) Form {
	return Form{
		Name:        p.Name,
		PartNumber:  p.PartNumber,
		CategoryID:  p.Category.ID,
		Description: p.Description,
	}
}

// Part converts the form into a part referencing its category by id.
func (f Form) Part() domain.Part {
	return domain.Part{
		Name:        strings.TrimSpace(f.Name),
		PartNumber:  strings.TrimSpace(f.PartNumber),
		Description: strings.TrimSpace(f.Description),
		Category:    domain.Category{ID: f.CategoryID},
	}
}

// CompatibilityForm adds a vehicle model to a part.
type CompatibilityForm struct {
	VehicleModelID string `form:"vehicleModelId" label:"Modelo de veículo" binding:"required,notblank"`
	Notes          string `form:"notes" label:"Observações" binding:"max=500"`
}
