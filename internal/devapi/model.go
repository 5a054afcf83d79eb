package devapi

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/simp-lee/partsweb/internal/domain"
)

// BaseModel is the common base of all tables. IDs are UUID strings assigned
// on insert. It replaces gorm.Model to avoid the implicit soft delete of DeletedAt.
type BaseModel struct {
	ID        string `gorm:"type:varchar(36);primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BeforeCreate assigns a new UUID unless one is already set.
func (m *BaseModel) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// Category is the categories table.
type Category struct {
	BaseModel
	Name        string `gorm:"size:100;not null;uniqueIndex"`
	Description string `gorm:"size:500"`
}

// VehicleModel is the vehicle_models table.
type VehicleModel struct {
	BaseModel
	Name         string `gorm:"size:100;not null;index"`
	Manufacturer string `gorm:"size:100;not null"`
	Year         *int
	Description  string `gorm:"size:500"`
}

// Part is the parts table. Category is preloaded on reads.
type Part struct {
	BaseModel
	Name        string `gorm:"size:150;not null;index"`
	Description string `gorm:"size:500"`
	PartNumber  string `gorm:"size:50;not null;uniqueIndex"`
	CategoryID  string `gorm:"type:varchar(36);not null;index"`
	Category    Category
}

// Compatibility links a part to a vehicle model, at most once per pair.
type Compatibility struct {
	BaseModel
	PartID         string `gorm:"type:varchar(36);not null;uniqueIndex:idx_part_vehicle_model"`
	VehicleModelID string `gorm:"type:varchar(36);not null;uniqueIndex:idx_part_vehicle_model;index"`
	Notes          string `gorm:"size:500"`
	Part           Part
	VehicleModel   VehicleModel
}

// TableName keeps the resource name of the REST contract.
func (Compatibility) TableName() string {
	return "part_vehicle_compatibilities"
}

// User is an account allowed to log in.
type User struct {
	BaseModel
	Username     string `gorm:"size:50;not null;uniqueIndex"`
	PasswordHash string `gorm:"size:100;not null"`
}

// models lists every table for AutoMigrate, parents first.
func models() []any {
	return []any{&Category{}, &VehicleModel{}, &Part{}, &Compatibility{}, &User{}}
}

func (c Category) toDomain() domain.Category {
	return domain.Category{ID: c.ID, Name: c.Name, Description: c.Description}
}

func (v VehicleModel) toDomain() domain.VehicleModel {
	return domain.VehicleModel{
		ID:           v.ID,
		Name:         v.Name,
		Manufacturer: v.Manufacturer,
		Year:         v.Year,
		Description:  v.Description,
	}
}

func (p Part) toDomain() domain.Part {
	return domain.Part{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		PartNumber:  p.PartNumber,
		Category:    p.Category.toDomain(),
	}
}

func (c Compatibility) toDomain() domain.PartVehicleCompatibility {
	return domain.PartVehicleCompatibility{
		ID:           c.ID,
		Part:         c.Part.toDomain(),
		VehicleModel: c.VehicleModel.toDomain(),
		Notes:        c.Notes,
	}
}

func mapSlice[M any, D any](rows []M, fn func(M) D) []D {
	out := make([]D, len(rows))
	for i, r := range rows {
		out[i] = fn(r)
	}
	return out
}
