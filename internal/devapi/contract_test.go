package devapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/simp-lee/partsweb/internal/apiclient"
	"github.com/simp-lee/partsweb/internal/config"
	"github.com/simp-lee/partsweb/internal/devapi"
	"github.com/simp-lee/partsweb/internal/domain"
	"github.com/simp-lee/partsweb/internal/module/category"
	"github.com/simp-lee/partsweb/internal/module/part"
	"github.com/simp-lee/partsweb/internal/module/vehiclemodel"
)

// startBackend serves a fresh in-memory backend and returns a client for it.
func startBackend(t *testing.T, requireAuth bool, interceptors ...apiclient.Interceptor) *apiclient.Client {
	t.Helper()
	s, err := devapi.New(&config.DevAPIConfig{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 8080, Mode: "test"},
		Database: config.DatabaseConfig{
			Driver: "sqlite",
			SQLite: config.SQLiteConfig{Path: config.MemoryDSN},
		},
		Log:  config.LogConfig{Level: "error", Format: "text"},
		Auth: config.DevAPIAuthConfig{RequireAuth: requireAuth, JWTSecret: "contract-secret-0123456789-abcdefghijk"},
		Seed: config.SeedConfig{Username: "admin", Password: "admin123"},
	})
	if err != nil {
		t.Fatalf("devapi.New: %v", err)
	}
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		srv.Close()
		_ = s.Close()
	})

	interceptors = append(interceptors, apiclient.ErrorTranslation(nil, nil))
	client, err := apiclient.New(apiclient.Options{
		BaseURL:      srv.URL + devapi.APIPrefix,
		Interceptors: interceptors,
	})
	if err != nil {
		t.Fatalf("apiclient.New: %v", err)
	}
	return client
}

func TestContract_CategoryLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := category.NewService(startBackend(t, false))

	created, err := svc.Create(ctx, domain.Category{Name: "Freios", Description: "Discos"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("created category has no id")
	}

	updated, err := svc.Update(ctx, created.ID, domain.Category{ID: created.ID, Name: "Freios ABS"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "Freios ABS" {
		t.Errorf("updated = %+v", updated)
	}

	_, err = svc.Create(ctx, domain.Category{Name: "Freios ABS"})
	if domain.HTTPStatus(err) != http.StatusConflict || err.Error() == "" {
		t.Errorf("duplicate err = %v", err)
	}

	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	err = svc.Delete(ctx, created.ID)
	if !domain.IsNotFound(err) {
		t.Fatalf("second Delete err = %v; want not found", err)
	}
	if err.Error() != "Categoria não encontrada." {
		t.Errorf("message = %q", err.Error())
	}

	all, err := svc.GetAll(ctx)
	if err != nil || len(all) != 0 {
		t.Errorf("GetAll = %+v, %v", all, err)
	}
}

func TestContract_PartsAndCompatibilities(t *testing.T) {
	ctx := context.Background()
	client := startBackend(t, false)
	categories := category.NewService(client)
	models := vehiclemodel.NewService(client)
	parts := part.NewService(client)

	brakes, err := categories.Create(ctx, domain.Category{Name: "Freios"})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	year := 2020
	civic, err := models.Create(ctx, domain.VehicleModel{Name: "Civic", Manufacturer: "Honda", Year: &year})
	if err != nil {
		t.Fatalf("create model: %v", err)
	}

	var pad *domain.Part
	for _, n := range []string{"Pastilha", "Disco", "Fluido", "Cabo", "Sensor", "Pinça", "Mangueira", "Tambor", "Lona", "Cilindro", "Reparo"} {
		p, err := parts.Create(ctx, domain.Part{Name: n, PartNumber: "PN-" + n, Category: *brakes})
		if err != nil {
			t.Fatalf("create part %s: %v", n, err)
		}
		if n == "Pastilha" {
			pad = p
		}
	}
	if pad.Category.Name != "Freios" {
		t.Errorf("part category = %+v", pad.Category)
	}

	page, err := parts.GetAll(ctx, domain.NewPaginationParams(1, part.PageSize, part.ListSort))
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if err := page.Validate(); err != nil {
		t.Fatalf("envelope: %v", err)
	}
	if page.Number != 1 || page.TotalElements != 11 || page.TotalPages != 2 || len(page.Content) != 1 || !page.Last || page.First {
		t.Errorf("second page = %+v", page)
	}
	if page.Content[0].Name != "Tambor" {
		t.Errorf("last by name = %q", page.Content[0].Name)
	}

	link, err := parts.AddCompatibility(ctx, pad.ID, civic.ID, "Somente dianteira")
	if err != nil {
		t.Fatalf("AddCompatibility: %v", err)
	}
	if _, err := parts.AddCompatibility(ctx, pad.ID, civic.ID, ""); domain.HTTPStatus(err) != http.StatusConflict {
		t.Errorf("duplicate link err = %v", err)
	}

	links, err := parts.GetCompatibilities(ctx, pad.ID, domain.NewPaginationParams(0, part.PageSize, part.CompatibilitySort))
	if err != nil {
		t.Fatalf("GetCompatibilities: %v", err)
	}
	if len(links.Content) != 1 || links.Content[0].Notes != "Somente dianteira" || links.Content[0].VehicleModel.DisplayName() != "Honda Civic (2020)" {
		t.Errorf("links = %+v", links.Content)
	}

	if err := models.Delete(ctx, civic.ID); domain.HTTPStatus(err) != http.StatusConflict {
		t.Errorf("delete linked model err = %v", err)
	}
	if err := parts.DeleteCompatibility(ctx, pad.ID, link.ID); err != nil {
		t.Fatalf("DeleteCompatibility: %v", err)
	}
	if err := parts.DeleteCompatibility(ctx, pad.ID, link.ID); !domain.IsNotFound(err) {
		t.Errorf("second DeleteCompatibility err = %v", err)
	}
	if err := models.Delete(ctx, civic.ID); err != nil {
		t.Errorf("delete unlinked model: %v", err)
	}
}

func TestContract_BearerToken(t *testing.T) {
	ctx := context.Background()
	client := startBackend(t, true, apiclient.BearerToken(nil))
	svc := category.NewService(client)

	if _, err := svc.GetAll(ctx); domain.HTTPStatus(err) != http.StatusUnauthorized {
		t.Fatalf("anonymous GetAll err = %v", err)
	}

	type login struct {
		Token string `json:"token"`
	}
	resp, err := apiclient.Post[login](ctx, client, "auth/login", map[string]string{"username": "admin", "password": "admin123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	authed := apiclient.WithToken(ctx, resp.Token)
	if _, err := svc.GetAll(authed); err != nil {
		t.Errorf("authenticated GetAll: %v", err)
	}
}
