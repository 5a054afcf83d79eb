package devapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/simp-lee/partsweb/internal/config"
	"github.com/simp-lee/partsweb/internal/domain"
	"github.com/simp-lee/partsweb/internal/pkg"
)

// newTestStore opens a private in-memory database with every table migrated.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := config.SetupDatabase(&config.DatabaseConfig{
		Driver: "sqlite",
		SQLite: config.SQLiteConfig{Path: config.MemoryDSN},
	}, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("SetupDatabase: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	store := NewStore(db)
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return store
}

func mustCategory(t *testing.T, s *Store, name string) Category {
	t.Helper()
	c := Category{Name: name}
	if err := s.CreateCategory(context.Background(), &c); err != nil {
		t.Fatalf("CreateCategory(%q): %v", name, err)
	}
	return c
}

func mustVehicleModel(t *testing.T, s *Store, manufacturer, name string) VehicleModel {
	t.Helper()
	m := VehicleModel{Name: name, Manufacturer: manufacturer}
	if err := s.CreateVehicleModel(context.Background(), &m); err != nil {
		t.Fatalf("CreateVehicleModel(%q): %v", name, err)
	}
	return m
}

func mustPart(t *testing.T, s *Store, name, number, categoryID string) Part {
	t.Helper()
	p := Part{Name: name, PartNumber: number, CategoryID: categoryID}
	if err := s.CreatePart(context.Background(), &p); err != nil {
		t.Fatalf("CreatePart(%q): %v", name, err)
	}
	return p
}

// appErrMessage returns the message of the AppError in err's chain.
func appErrMessage(err error) string {
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return ""
}

func TestStore_Categories(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	brakes := mustCategory(t, s, "Freios")
	if _, err := uuid.Parse(brakes.ID); err != nil {
		t.Fatalf("id %q is not a UUID: %v", brakes.ID, err)
	}
	mustCategory(t, s, "Filtros")

	dup := Category{Name: "Freios"}
	if err := s.CreateCategory(ctx, &dup); !domain.IsAlreadyExists(err) || appErrMessage(err) != msgCategoryExists {
		t.Errorf("duplicate create err = %v", err)
	}

	list, err := s.ListCategories(ctx)
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if len(list) != 2 || list[0].Name != "Filtros" || list[1].Name != "Freios" {
		t.Errorf("list = %+v; want ordered by name", list)
	}

	upd := Category{Name: "Freios e ABS", Description: "Sistema de freio"}
	if err := s.UpdateCategory(ctx, brakes.ID, &upd); err != nil {
		t.Fatalf("UpdateCategory: %v", err)
	}
	if upd.ID != brakes.ID || upd.Name != "Freios e ABS" {
		t.Errorf("updated = %+v", upd)
	}

	rename := Category{Name: "Filtros"}
	if err := s.UpdateCategory(ctx, brakes.ID, &rename); !domain.IsAlreadyExists(err) {
		t.Errorf("rename onto an existing name err = %v", err)
	}

	if _, err := s.GetCategory(ctx, "missing"); !domain.IsNotFound(err) || appErrMessage(err) != msgCategoryNotFound {
		t.Errorf("get missing err = %v", err)
	}
	if err := s.UpdateCategory(ctx, "missing", &Category{Name: "x"}); !domain.IsNotFound(err) {
		t.Errorf("update missing err = %v", err)
	}

	if err := s.DeleteCategory(ctx, brakes.ID); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}
	if err := s.DeleteCategory(ctx, brakes.ID); !domain.IsNotFound(err) || appErrMessage(err) != msgCategoryNotFound {
		t.Errorf("second delete err = %v", err)
	}
}

func TestStore_DeleteCategoryInUse(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	cat := mustCategory(t, s, "Freios")
	mustPart(t, s, "Disco", "D-1", cat.ID)

	err := s.DeleteCategory(ctx, cat.ID)
	if !domain.IsAlreadyExists(err) || appErrMessage(err) != msgCategoryInUse {
		t.Fatalf("err = %v", err)
	}
	if _, err := s.GetCategory(ctx, cat.ID); err != nil {
		t.Errorf("category must survive: %v", err)
	}
}

func TestStore_VehicleModels(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	year := 2020
	civic := VehicleModel{Name: "Civic", Manufacturer: "Honda", Year: &year}
	if err := s.CreateVehicleModel(ctx, &civic); err != nil {
		t.Fatalf("CreateVehicleModel: %v", err)
	}
	mustVehicleModel(t, s, "Fiat", "Uno")

	list, err := s.ListVehicleModels(ctx)
	if err != nil {
		t.Fatalf("ListVehicleModels: %v", err)
	}
	if len(list) != 2 || list[0].Manufacturer != "Fiat" || list[1].Year == nil || *list[1].Year != 2020 {
		t.Errorf("list = %+v", list)
	}

	upd := VehicleModel{Name: "Civic", Manufacturer: "Honda"}
	if err := s.UpdateVehicleModel(ctx, civic.ID, &upd); err != nil {
		t.Fatalf("UpdateVehicleModel: %v", err)
	}
	got, err := s.GetVehicleModel(ctx, civic.ID)
	if err != nil {
		t.Fatalf("GetVehicleModel: %v", err)
	}
	if got.Year != nil {
		t.Errorf("year = %d; want cleared", *got.Year)
	}

	cat := mustCategory(t, s, "Freios")
	part := mustPart(t, s, "Disco", "D-1", cat.ID)
	if _, err := s.AddCompatibility(ctx, part.ID, civic.ID, ""); err != nil {
		t.Fatalf("AddCompatibility: %v", err)
	}
	if err := s.DeleteVehicleModel(ctx, civic.ID); !domain.IsAlreadyExists(err) || appErrMessage(err) != msgVehicleModelInUse {
		t.Errorf("delete in use err = %v", err)
	}
	if err := s.DeleteVehicleModel(ctx, "missing"); !domain.IsNotFound(err) {
		t.Errorf("delete missing err = %v", err)
	}
}

func TestStore_Parts(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	brakes := mustCategory(t, s, "Freios")
	filters := mustCategory(t, s, "Filtros")

	disc := mustPart(t, s, "Disco de freio", "D-1", brakes.ID)
	if disc.Category.Name != "Freios" {
		t.Errorf("created part category = %+v; want it loaded", disc.Category)
	}

	bad := Part{Name: "Órfã", PartNumber: "X-1", CategoryID: "missing"}
	if err := s.CreatePart(ctx, &bad); !domain.IsValidation(err) || appErrMessage(err) != msgCategoryInvalid {
		t.Errorf("unknown category err = %v", err)
	}
	dup := Part{Name: "Outro", PartNumber: "D-1", CategoryID: brakes.ID}
	if err := s.CreatePart(ctx, &dup); !domain.IsAlreadyExists(err) || appErrMessage(err) != msgPartNumberExists {
		t.Errorf("duplicate part number err = %v", err)
	}

	upd := Part{Name: "Disco ventilado", PartNumber: "D-1V", CategoryID: filters.ID}
	if err := s.UpdatePart(ctx, disc.ID, &upd); err != nil {
		t.Fatalf("UpdatePart: %v", err)
	}
	if upd.ID != disc.ID || upd.Category.Name != "Filtros" || upd.PartNumber != "D-1V" {
		t.Errorf("updated = %+v", upd)
	}
	if err := s.UpdatePart(ctx, disc.ID, &Part{Name: "x", PartNumber: "y", CategoryID: "missing"}); !domain.IsValidation(err) {
		t.Errorf("update with unknown category err = %v", err)
	}
	if err := s.UpdatePart(ctx, "missing", &Part{Name: "x", PartNumber: "y", CategoryID: brakes.ID}); !domain.IsNotFound(err) {
		t.Errorf("update missing err = %v", err)
	}

	if _, err := s.GetPart(ctx, "missing"); !domain.IsNotFound(err) || appErrMessage(err) != msgPartNotFound {
		t.Errorf("get missing err = %v", err)
	}
}

func TestStore_ListParts(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	brakes := mustCategory(t, s, "Freios")
	filters := mustCategory(t, s, "Filtros")
	for i := range 12 {
		mustPart(t, s, fmt.Sprintf("Pastilha %02d", i), fmt.Sprintf("P-%02d", i), brakes.ID)
	}
	mustPart(t, s, "Filtro de óleo", "F-1", filters.ID)
	mustPart(t, s, "Anel", "A-1", filters.ID)

	tests := []struct {
		name      string
		req       pkg.PageRequest
		wantTotal int64
		wantFirst string
		wantLen   int
		sorted    bool
	}{
		{"first page by name", pkg.PageRequest{Page: 0, Size: 10, SortField: "name"}, 14, "Anel", 10, true},
		{"second page", pkg.PageRequest{Page: 1, Size: 10, SortField: "name"}, 14, "Pastilha 08", 4, true},
		{"descending", pkg.PageRequest{Page: 0, Size: 3, SortField: "name", SortDesc: true}, 14, "Pastilha 11", 3, true},
		{"by category name", pkg.PageRequest{Page: 0, Size: 2, SortField: "category.name"}, 14, "Anel", 2, true},
		{"name filter", pkg.PageRequest{Page: 0, Size: 10, Name: "PASTILHA 1"}, 2, "Pastilha 10", 2, false},
		{"unknown sort falls back to name", pkg.PageRequest{Page: 0, Size: 1, SortField: "secret"}, 14, "Anel", 1, false},
		{"past the end", pkg.PageRequest{Page: 5, Size: 10}, 14, "", 0, false},
		{"huge page index", pkg.PageRequest{Page: math.MaxInt, Size: 100}, 14, "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, total, sorted, err := s.ListParts(ctx, tt.req)
			if err != nil {
				t.Fatalf("ListParts: %v", err)
			}
			if total != tt.wantTotal || len(rows) != tt.wantLen || sorted != tt.sorted {
				t.Fatalf("total=%d len=%d sorted=%v", total, len(rows), sorted)
			}
			if tt.wantLen > 0 {
				if rows[0].Name != tt.wantFirst {
					t.Errorf("first = %q, want %q", rows[0].Name, tt.wantFirst)
				}
				if rows[0].Category.ID == "" {
					t.Error("category not preloaded")
				}
			}
		})
	}
}

func TestStore_Compatibilities(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	cat := mustCategory(t, s, "Freios")
	pad := mustPart(t, s, "Pastilha", "P-1", cat.ID)
	other := mustPart(t, s, "Disco", "D-1", cat.ID)
	uno := mustVehicleModel(t, s, "Fiat", "Uno")
	civic := mustVehicleModel(t, s, "Honda", "Civic")

	added, err := s.AddCompatibility(ctx, pad.ID, uno.ID, "works with v1")
	if err != nil {
		t.Fatalf("AddCompatibility: %v", err)
	}
	if added.Notes != "works with v1" || added.VehicleModel.Name != "Uno" || added.Part.Category.Name != "Freios" {
		t.Errorf("added = %+v", added)
	}
	if _, err := s.AddCompatibility(ctx, pad.ID, civic.ID, ""); err != nil {
		t.Fatalf("AddCompatibility: %v", err)
	}

	if _, err := s.AddCompatibility(ctx, pad.ID, uno.ID, ""); !domain.IsAlreadyExists(err) || appErrMessage(err) != msgCompatibilityExists {
		t.Errorf("duplicate err = %v", err)
	}
	if _, err := s.AddCompatibility(ctx, "missing", uno.ID, ""); !domain.IsNotFound(err) || appErrMessage(err) != msgPartNotFound {
		t.Errorf("missing part err = %v", err)
	}
	if _, err := s.AddCompatibility(ctx, pad.ID, "missing", ""); !domain.IsValidation(err) || appErrMessage(err) != msgVehicleModelInvalid {
		t.Errorf("missing model err = %v", err)
	}

	rows, total, sorted, err := s.ListCompatibilities(ctx, pad.ID, pkg.PageRequest{Size: 10, SortField: "vehicleModel.name"})
	if err != nil {
		t.Fatalf("ListCompatibilities: %v", err)
	}
	if total != 2 || !sorted || len(rows) != 2 || rows[0].VehicleModel.Name != "Civic" || rows[1].VehicleModel.Name != "Uno" {
		t.Errorf("rows = %+v total=%d sorted=%v", rows, total, sorted)
	}
	if _, _, _, err := s.ListCompatibilities(ctx, "missing", pkg.PageRequest{Size: 10}); !domain.IsNotFound(err) {
		t.Errorf("list of missing part err = %v", err)
	}

	if err := s.DeleteCompatibility(ctx, other.ID, added.ID); !domain.IsNotFound(err) || appErrMessage(err) != msgCompatibilityNotFound {
		t.Errorf("delete through another part err = %v", err)
	}
	if err := s.DeleteCompatibility(ctx, pad.ID, added.ID); err != nil {
		t.Fatalf("DeleteCompatibility: %v", err)
	}

	if err := s.DeletePart(ctx, pad.ID); err != nil {
		t.Fatalf("DeletePart: %v", err)
	}
	var left int64
	s.db.Model(&Compatibility{}).Count(&left)
	if left != 0 {
		t.Errorf("%d compatibilities left after the part was deleted", left)
	}
	if err := s.DeletePart(ctx, pad.ID); !domain.IsNotFound(err) {
		t.Errorf("second delete err = %v", err)
	}
}

func TestStore_Users(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if n, err := s.CountUsers(ctx); err != nil || n != 0 {
		t.Fatalf("CountUsers = %d, %v", n, err)
	}
	if err := s.CreateUser(ctx, &User{Username: "admin", PasswordHash: "h"}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if err := s.CreateUser(ctx, &User{Username: "admin", PasswordHash: "h"}); !domain.IsAlreadyExists(err) {
		t.Errorf("duplicate user err = %v", err)
	}
	u, err := s.FindUser(ctx, "admin")
	if err != nil || u.Username != "admin" {
		t.Errorf("FindUser = %+v, %v", u, err)
	}
	if _, err := s.FindUser(ctx, "nobody"); !domain.IsNotFound(err) {
		t.Errorf("FindUser missing err = %v", err)
	}
}

func TestStore_Ping(t *testing.T) {
	if err := newTestStore(t).Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		check   func(error) bool
		message string
	}{
		{"nil", nil, func(err error) bool { return err == nil }, ""},
		{"record not found", gorm.ErrRecordNotFound, domain.IsNotFound, "Peça não encontrada."},
		{"duplicated key", gorm.ErrDuplicatedKey, domain.IsAlreadyExists, "Já existe."},
		{"sqlite unique", errors.New("constraint failed: UNIQUE constraint failed: categories.name (2067)"), domain.IsAlreadyExists, "Já existe."},
		{"postgres unique", errors.New(`ERROR: duplicate key value violates unique constraint "idx_parts_part_number"`), domain.IsAlreadyExists, "Já existe."},
		{"other", errors.New("disk I/O error"), domain.IsInternal, "database error"},
		{"app error kept", domain.NewAppError(domain.CodeValidation, "inválido", nil), domain.IsValidation, "inválido"},
		{"bare not found gets message", domain.ErrNotFound, domain.IsNotFound, "Peça não encontrada."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.err, "Peça não encontrada.", "Já existe.")
			if !tt.check(got) {
				t.Fatalf("mapError(%v) = %v", tt.err, got)
			}
			if got != nil && appErrMessage(got) != tt.message {
				t.Errorf("message = %q, want %q", appErrMessage(got), tt.message)
			}
		})
	}
}
