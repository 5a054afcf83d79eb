package vehiclemodel

import (
	"context"

	"github.com/simp-lee/partsweb/internal/apiclient"
	"github.com/simp-lee/partsweb/internal/domain"
)

// ResourcePath is the REST path of the vehicle models resource.
const ResourcePath = "vehicle-models"

// vehicleModelService implements domain.VehicleModelService over the REST client.
type vehicleModelService struct {
	client *apiclient.Client
}

// NewService creates a VehicleModelService backed by client.
func NewService(client *apiclient.Client) domain.VehicleModelService {
	return &vehicleModelService{client: client}
}

// GetAll returns every vehicle model as the plain array the endpoint answers.
func (s *vehicleModelService) GetAll(ctx context.Context) ([]domain.VehicleModel, error) {
	models, err := apiclient.Get[[]domain.VehicleModel](ctx, s.client, ResourcePath, "", nil)
	if err != nil {
		return nil, err
	}
	if models == nil {
		models = []domain.VehicleModel{}
	}
	return models, nil
}

func (s *vehicleModelService) GetByID(ctx context.Context, id string) (*domain.VehicleModel, error) {
	m, err := apiclient.Get[domain.VehicleModel](ctx, s.client, ResourcePath, id, nil)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *vehicleModelService) Create(ctx context.Context, model domain.VehicleModel) (*domain.VehicleModel, error) {
	model.ID = ""
	m, err := apiclient.Post[domain.VehicleModel](ctx, s.client, ResourcePath, model)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *vehicleModelService) Update(ctx context.Context, id string, model domain.VehicleModel) (*domain.VehicleModel, error) {
	model.ID = id
	m, err := apiclient.Put[domain.VehicleModel](ctx, s.client, ResourcePath, id, model)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *vehicleModelService) Delete(ctx context.Context, id string) error {
	return apiclient.Delete(ctx, s.client, ResourcePath, id)
}
