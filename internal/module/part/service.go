package part

import (
	"context"

	"github.com/simp-lee/partsweb/internal/apiclient"
	"github.com/simp-lee/partsweb/internal/domain"
)

const (
	// ResourcePath is the REST path of the parts resource.
	ResourcePath = "parts"

	compatibilitiesPath = "compatibilities"
)

// partService implements domain.PartService over the REST client.
type partService struct {
	client *apiclient.Client
}

// NewService creates a PartService backed by client.
func NewService(client *apiclient.Client) domain.PartService {
	return &partService{client: client}
}

// GetAll returns one page of parts.
func (s *partService) GetAll(ctx context.Context, params domain.PaginationParams) (*domain.PageResponse[domain.Part], error) {
	return apiclient.GetPaginated[domain.Part](ctx, s.client, ResourcePath, params)
}

func (s *partService) GetByID(ctx context.Context, id string) (*domain.Part, error) {
	p, err := apiclient.Get[domain.Part](ctx, s.client, ResourcePath, id, nil)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create sends the part with its category flattened to categoryId.
func (s *partService) Create(ctx context.Context, part domain.Part) (*domain.Part, error) {
	payload := part.Payload()
	payload.ID = ""
	p, err := apiclient.Post[domain.Part](ctx, s.client, ResourcePath, payload)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Update sends the part with its category flattened to categoryId.
func (s *partService) Update(ctx context.Context, id string, part domain.Part) (*domain.Part, error) {
	payload := part.Payload()
	payload.ID = id
	p, err := apiclient.Put[domain.Part](ctx, s.client, ResourcePath, id, payload)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *partService) Delete(ctx context.Context, id string) error {
	return apiclient.Delete(ctx, s.client, ResourcePath, id)
}

// GetCompatibilities returns one page of the vehicle models compatible with
// the part.
func (s *partService) GetCompatibilities(ctx context.Context, partID string, params domain.PaginationParams) (*domain.PageResponse[domain.PartVehicleCompatibility], error) {
	return apiclient.GetPaginated[domain.PartVehicleCompatibility](ctx, s.client, apiclient.Path(ResourcePath, partID, compatibilitiesPath), params)
}

func (s *partService) AddCompatibility(ctx context.Context, partID, vehicleModelID, notes string) (*domain.PartVehicleCompatibility, error) {
	body := domain.CompatibilityRequest{PartID: partID, VehicleModelID: vehicleModelID, Notes: notes}
	pc, err := apiclient.Post[domain.PartVehicleCompatibility](ctx, s.client, apiclient.Path(ResourcePath, partID, compatibilitiesPath), body)
	if err != nil {
		return nil, err
	}
	return &pc, nil
}

func (s *partService) DeleteCompatibility(ctx context.Context, partID, compatibilityID string) error {
	return apiclient.Delete(ctx, s.client, apiclient.Path(ResourcePath, partID, compatibilitiesPath), compatibilityID)
}
