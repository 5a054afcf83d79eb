package domain

import "context"

// CategoryService is the client-side access to the categories resource.
type CategoryService interface {
	GetAll(ctx context.Context) ([]Category, error)
	GetByID(ctx context.Context, id string) (*Category, error)
	Create(ctx context.Context, category Category) (*Category, error)
	Update(ctx context.Context, id string, category Category) (*Category, error)
	Delete(ctx context.Context, id string) error
}

// VehicleModelService is the client-side access to the vehicle models resource.
type VehicleModelService interface {
	GetAll(ctx context.Context) ([]VehicleModel, error)
	GetByID(ctx context.Context, id string) (*VehicleModel, error)
	Create(ctx context.Context, model VehicleModel) (*VehicleModel, error)
	Update(ctx context.Context, id string, model VehicleModel) (*VehicleModel, error)
	Delete(ctx context.Context, id string) error
}

// PartService is the client-side access to the parts resource and its
// compatibility sub-resource.
type PartService interface {
	GetAll(ctx context.Context, params PaginationParams) (*PageResponse[Part], error)
	GetByID(ctx context.Context, id string) (*Part, error)
	Create(ctx context.Context, part Part) (*Part, error)
	Update(ctx context.Context, id string, part Part) (*Part, error)
	Delete(ctx context.Context, id string) error

	GetCompatibilities(ctx context.Context, partID string, params PaginationParams) (*PageResponse[PartVehicleCompatibility], error)
	AddCompatibility(ctx context.Context, partID, vehicleModelID, notes string) (*PartVehicleCompatibility, error)
	DeleteCompatibility(ctx context.Context, partID, compatibilityID string) error
}
