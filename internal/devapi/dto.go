package devapi

import "strings"

// categoryRequest is the body of POST/PUT /api/v1/categories.
type categoryRequest struct {
	Name        string `json:"name" binding:"required,notblank,max=100" label:"Nome"`
	Description string `json:"description" binding:"max=500" label:"Descrição"`
}

func (r categoryRequest) model() Category {
	return Category{Name: strings.TrimSpace(r.Name), Description: strings.TrimSpace(r.Description)}
}

// vehicleModelRequest is the body of POST/PUT /api/v1/vehicle-models.
type vehicleModelRequest struct {
	Name         string `json:"name" binding:"required,notblank,max=100" label:"Nome"`
	Manufacturer string `json:"manufacturer" binding:"required,notblank,max=100" label:"Fabricante"`
	Year         *int   `json:"year" binding:"omitempty,modelyear" label:"Ano"`
	Description  string `json:"description" binding:"max=500" label:"Descrição"`
}

func (r vehicleModelRequest) model() VehicleModel {
	return VehicleModel{
		Name:         strings.TrimSpace(r.Name),
		Manufacturer: strings.TrimSpace(r.Manufacturer),
		Year:         r.Year,
		Description:  strings.TrimSpace(r.Description),
	}
}

// partRequest is the body of POST/PUT /api/v1/parts. The category travels
// as a bare id.
type partRequest struct {
	Name        string `json:"name" binding:"required,notblank,max=150" label:"Nome"`
	Description string `json:"description" binding:"max=500" label:"Descrição"`
	PartNumber  string `json:"partNumber" binding:"required,notblank,max=50" label:"Número da peça"`
	CategoryID  string `json:"categoryId" binding:"required,notblank" label:"Categoria"`
}

func (r partRequest) model() Part {
	return Part{
		Name:        strings.TrimSpace(r.Name),
		Description: strings.TrimSpace(r.Description),
		PartNumber:  strings.TrimSpace(r.PartNumber),
		CategoryID:  strings.TrimSpace(r.CategoryID),
	}
}

// compatibilityRequest is the body of POST /api/v1/parts/:id/compatibilities.
// PartID is optional; when present it must match the path.
type compatibilityRequest struct {
	PartID         string `json:"partId"`
	VehicleModelID string `json:"vehicleModelId" binding:"required,notblank" label:"Modelo de veículo"`
	Notes          string `json:"notes" binding:"max=500" label:"Observações"`
}

// loginRequest is the body of POST /api/v1/auth/login.
type loginRequest struct {
	Username string `json:"username" binding:"required,notblank" label:"Usuário"`
	Password string `json:"password" binding:"required" label:"Senha"`
}

// loginResponse carries the token and its expiry in Unix seconds.
type loginResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
}
