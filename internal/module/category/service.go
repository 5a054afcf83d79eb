package category

import (
	"context"

	"github.com/simp-lee/partsweb/internal/apiclient"
	"github.com/simp-lee/partsweb/internal/domain"
)

// ResourcePath is the REST path of the categories resource.
const ResourcePath = "categories"

// categoryService implements domain.CategoryService over the REST client.
type categoryService struct {
	client *apiclient.Client
}

// NewService creates a CategoryService backed by client.
func NewService(client *apiclient.Client) domain.CategoryService {
	return &categoryService{client: client}
}

// GetAll returns every category. The endpoint answers a plain array.
func (s *categoryService) GetAll(ctx context.Context) ([]domain.Category, error) {
	categories, err := apiclient.Get[[]domain.Category](ctx, s.client, ResourcePath, "", nil)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []domain.Category{}
	}
	return categories, nil
}

func (s *categoryService) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	c, err := apiclient.Get[domain.Category](ctx, s.client, ResourcePath, id, nil)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *categoryService) Create(ctx context.Context, category domain.Category) (*domain.Category, error) {
	category.ID = ""
	c, err := apiclient.Post[domain.Category](ctx, s.client, ResourcePath, category)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *categoryService) Update(ctx context.Context, id string, category domain.Category) (*domain.Category, error) {
	category.ID = id
	c, err := apiclient.Put[domain.Category](ctx, s.client, ResourcePath, id, category)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *categoryService) Delete(ctx context.Context, id string) error {
	return apiclient.Delete(ctx, s.client, ResourcePath, id)
}
