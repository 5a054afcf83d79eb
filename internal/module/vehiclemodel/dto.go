package vehiclemodel

import (
	"strconv"
	"strings"

	"github.com/simp-lee/partsweb/internal/domain"
)

// Form is the vehicle model form as submitted by the browser. Year stays a
// string so an empty field means "no year".
type Form struct {
	Name         string `form:"name" label:"Nome" binding:"required,notblank,max=100"`
	Manufacturer string `form:"manufacturer" label:"Fabricante" binding:"required,notblank,max=100"`
	Year         string `form:"year" label:"Ano" binding:"modelyear"`
	Description  string `form:"description" label:"Descrição" binding:"max=500"`
}

// FormFrom fills a form from an existing vehicle model.
func FormFrom(m *domain.VehicleModel) Form {
	f := Form{Name: m.Name, Manufacturer: m.Manufacturer, Description: m.Description}
	if m.Year != nil {
		f.Year = strconv.Itoa(*m.Year)
	}
	return f
}

// VehicleModel converts a validated form into the resource body.
func (f Form) VehicleModel() domain.VehicleModel {
	m := domain.VehicleModel{
		Name:         strings.TrimSpace(f.Name),
		Manufacturer: strings.TrimSpace(f.Manufacturer),
		Description:  strings.TrimSpace(f.Description),
	}
	if year, err := strconv.Atoi(strings.TrimSpace(f.Year)); err == nil {
		m.Year = &year
	}
	return m
}
