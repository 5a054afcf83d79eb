package devapi

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/simp-lee/partsweb/internal/domain"
	"github.com/simp-lee/partsweb/internal/pkg"
)

// Sortable API fields of the paginated lists, mapped to SQL columns.
var (
	partSortColumns = map[string]string{
		"name":          "parts.name",
		"partNumber":    "parts.part_number",
		"category.name": "categories.name",
	}
	compatibilitySortColumns = map[string]string{
		"vehicleModel.name":         "vehicle_models.name",
		"vehicleModel.manufacturer": "vehicle_models.manufacturer",
		"vehicleModel.year":         "vehicle_models.year",
		"notes":                     "part_vehicle_compatibilities.notes",
	}
)

// User-facing messages of the REST error bodies.
const (
	msgCategoryNotFound      = "Categoria não encontrada."
	msgCategoryExists        = "Já existe uma categoria com este nome."
	msgCategoryInUse         = "A categoria possui peças vinculadas e não pode ser excluída."
	msgCategoryInvalid       = "Categoria informada não existe."
	msgVehicleModelNotFound  = "Modelo de veículo não encontrado."
	msgVehicleModelInUse     = "O modelo de veículo possui compatibilidades e não pode ser excluído."
	msgVehicleModelInvalid   = "Modelo de veículo informado não existe."
	msgPartNotFound          = "Peça não encontrada."
	msgPartNumberExists      = "Já existe uma peça com este número."
	msgCompatibilityNotFound = "Compatibilidade não encontrada."
	msgCompatibilityExists   = "Esta peça já está vinculada a este modelo de veículo."
	msgUserExists            = "Usuário já existe."
)

// Store is the gorm-backed persistence of the catalog and its users.
type Store struct {
	db *gorm.DB
}

// NewStore creates a Store backed by the given GORM database.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates every table.
func (s *Store) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(models()...)
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// --------------- categories ---------------

// ListCategories returns all categories ordered by name.
func (s *Store) ListCategories(ctx context.Context) ([]Category, error) {
	var rows []Category
	if err := s.db.WithContext(ctx).Order("name").Find(&rows).Error; err != nil {
		return nil, mapError(err, "", "")
	}
	return rows, nil
}

// GetCategory retrieves a category by id.
func (s *Store) GetCategory(ctx context.Context, id string) (*Category, error) {
	var row Category
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, mapError(err, msgCategoryNotFound, "")
	}
	return &row, nil
}

// CreateCategory inserts a category and assigns its id.
func (s *Store) CreateCategory(ctx context.Context, row *Category) error {
	row.ID = ""
	return mapError(s.db.WithContext(ctx).Create(row).Error, "", msgCategoryExists)
}

// UpdateCategory overwrites the name and description of category id.
func (s *Store) UpdateCategory(ctx context.Context, id string, row *Category) error {
	existing, err := s.GetCategory(ctx, id)
	if err != nil {
		return err
	}
	existing.Name = row.Name
	existing.Description = row.Description
	if err := s.db.WithContext(ctx).Save(existing).Error; err != nil {
		return mapError(err, "", msgCategoryExists)
	}
	*row = *existing
	return nil
}

// DeleteCategory removes a category that no part references.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	return pkg.WithTx(ctx, s.db, func(tx *gorm.DB) error {
		var inUse int64
		if err := tx.Model(&Part{}).Where("category_id = ?", id).Count(&inUse).Error; err != nil {
			return mapError(err, "", "")
		}
		if inUse > 0 {
			return domain.NewAppError(domain.CodeAlreadyExists, msgCategoryInUse, nil)
		}
		return deleteByID[Category](tx, id, msgCategoryNotFound)
	})
}

// --------------- vehicle models ---------------

// ListVehicleModels returns all vehicle models ordered by manufacturer and name.
func (s *Store) ListVehicleModels(ctx context.Context) ([]VehicleModel, error) {
	var rows []VehicleModel
	if err := s.db.WithContext(ctx).Order("manufacturer").Order("name").Order("year").Find(&rows).Error; err != nil {
		return nil, mapError(err, "", "")
	}
	return rows, nil
}

// GetVehicleModel retrieves a vehicle model by id.
func (s *Store) GetVehicleModel(ctx context.Context, id string) (*VehicleModel, error) {
	var row VehicleModel
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, mapError(err, msgVehicleModelNotFound, "")
	}
	return &row, nil
}

// CreateVehicleModel inserts a vehicle model and assigns its id.
func (s *Store) CreateVehicleModel(ctx context.Context, row *VehicleModel) error {
	row.ID = ""
	return mapError(s.db.WithContext(ctx).Create(row).Error, "", "")
}

// UpdateVehicleModel overwrites every editable field of vehicle model id.
func (s *Store) UpdateVehicleModel(ctx context.Context, id string, row *VehicleModel) error {
	existing, err := s.GetVehicleModel(ctx, id)
	if err != nil {
		return err
	}
	existing.Name = row.Name
	existing.Manufacturer = row.Manufacturer
	existing.Year = row.Year
	existing.Description = row.Description
	if err := s.db.WithContext(ctx).Save(existing).Error; err != nil {
		return mapError(err, "", "")
	}
	*row = *existing
	return nil
}

// DeleteVehicleModel removes a vehicle model no compatibility references.
func (s *Store) DeleteVehicleModel(ctx context.Context, id string) error {
	return pkg.WithTx(ctx, s.db, func(tx *gorm.DB) error {
		var inUse int64
		if err := tx.Model(&Compatibility{}).Where("vehicle_model_id = ?", id).Count(&inUse).Error; err != nil {
			return mapError(err, "", "")
		}
		if inUse > 0 {
			return domain.NewAppError(domain.CodeAlreadyExists, msgVehicleModelInUse, nil)
		}
		return deleteByID[VehicleModel](tx, id, msgVehicleModelNotFound)
	})
}

// --------------- parts ---------------

// ListParts returns one page of parts with their category, filtered by name.
// The bool reports whether the requested sort was applied.
func (s *Store) ListParts(ctx context.Context, req pkg.PageRequest) ([]Part, int64, bool, error) {
	base := s.db.WithContext(ctx).Model(&Part{}).
		Scopes(pkg.NameFilter("parts.name", req.Name))

	rows, total, err := pkg.FetchPage(ctx, req,
		func(context.Context) (int64, error) {
			var total int64
			err := base.Session(&gorm.Session{}).Count(&total).Error
			return total, err
		},
		func(_ context.Context, offset, limit int) ([]Part, error) {
			var rows []Part
			err := base.Session(&gorm.Session{}).
				Joins("LEFT JOIN categories ON categories.id = parts.category_id").
				Preload("Category").
				Scopes(
					pkg.Sort(req, partSortColumns, "parts.name"),
					thenBy("parts.name", "parts.id"),
					pkg.Window(offset, limit),
				).
				Find(&rows).Error
			return rows, err
		})
	if err != nil {
		return nil, 0, false, mapError(err, "", "")
	}

	_, sorted := req.SortColumn(partSortColumns)
	return rows, total, sorted, nil
}

// GetPart retrieves a part with its category.
func (s *Store) GetPart(ctx context.Context, id string) (*Part, error) {
	var row Part
	if err := s.db.WithContext(ctx).Preload("Category").First(&row, "id = ?", id).Error; err != nil {
		return nil, mapError(err, msgPartNotFound, "")
	}
	return &row, nil
}

// CreatePart inserts a part whose category must exist.
func (s *Store) CreatePart(ctx context.Context, row *Part) error {
	row.ID = ""
	err := pkg.WithTx(ctx, s.db, func(tx *gorm.DB) error {
		if err := requireRow[Category](tx, row.CategoryID, msgCategoryInvalid); err != nil {
			return err
		}
		return mapError(tx.Omit(clause.Associations).Create(row).Error, "", msgPartNumberExists)
	})
	if err != nil {
		return err
	}
	return s.reloadPart(ctx, row)
}

// UpdatePart overwrites every editable field of part id.
func (s *Store) UpdatePart(ctx context.Context, id string, row *Part) error {
	err := pkg.WithTx(ctx, s.db, func(tx *gorm.DB) error {
		var existing Part
		if err := tx.First(&existing, "id = ?", id).Error; err != nil {
			return mapError(err, msgPartNotFound, "")
		}
		if err := requireRow[Category](tx, row.CategoryID, msgCategoryInvalid); err != nil {
			return err
		}
		existing.Name = row.Name
		existing.Description = row.Description
		existing.PartNumber = row.PartNumber
		existing.CategoryID = row.CategoryID
		if err := tx.Omit(clause.Associations).Save(&existing).Error; err != nil {
			return mapError(err, "", msgPartNumberExists)
		}
		*row = existing
		return nil
	})
	if err != nil {
		return err
	}
	return s.reloadPart(ctx, row)
}

// DeletePart removes a part together with its compatibilities.
func (s *Store) DeletePart(ctx context.Context, id string) error {
	return pkg.WithTx(ctx, s.db, func(tx *gorm.DB) error {
		if err := tx.Where("part_id = ?", id).Delete(&Compatibility{}).Error; err != nil {
			return mapError(err, "", "")
		}
		return deleteByID[Part](tx, id, msgPartNotFound)
	})
}

func (s *Store) reloadPart(ctx context.Context, row *Part) error {
	fresh, err := s.GetPart(ctx, row.ID)
	if err != nil {
		return err
	}
	*row = *fresh
	return nil
}

// --------------- compatibilities ---------------

// ListCompatibilities returns one page of the compatibilities of partID.
// The bool reports whether the requested sort was applied.
func (s *Store) ListCompatibilities(ctx context.Context, partID string, req pkg.PageRequest) ([]Compatibility, int64, bool, error) {
	db := s.db.WithContext(ctx)
	if err := requireRow[Part](db, partID, ""); err != nil {
		return nil, 0, false, mapError(err, msgPartNotFound, "")
	}

	base := db.Model(&Compatibility{}).
		Where("part_vehicle_compatibilities.part_id = ?", partID)

	rows, total, err := pkg.FetchPage(ctx, req,
		func(context.Context) (int64, error) {
			var total int64
			err := base.Session(&gorm.Session{}).Count(&total).Error
			return total, err
		},
		func(_ context.Context, offset, limit int) ([]Compatibility, error) {
			var rows []Compatibility
			err := base.Session(&gorm.Session{}).
				Joins("JOIN vehicle_models ON vehicle_models.id = part_vehicle_compatibilities.vehicle_model_id").
				Preload("Part.Category").
				Preload("VehicleModel").
				Scopes(
					pkg.Sort(req, compatibilitySortColumns, "vehicle_models.name"),
					thenBy("vehicle_models.manufacturer", "part_vehicle_compatibilities.id"),
					pkg.Window(offset, limit),
				).
				Find(&rows).Error
			return rows, err
		})
	if err != nil {
		return nil, 0, false, mapError(err, "", "")
	}

	_, sorted := req.SortColumn(compatibilitySortColumns)
	return rows, total, sorted, nil
}

// AddCompatibility links partID to vehicleModelID once.
func (s *Store) AddCompatibility(ctx context.Context, partID, vehicleModelID, notes string) (*Compatibility, error) {
	row := Compatibility{PartID: partID, VehicleModelID: vehicleModelID, Notes: notes}
	err := pkg.WithTx(ctx, s.db, func(tx *gorm.DB) error {
		if err := requireRow[Part](tx, partID, ""); err != nil {
			return mapError(err, msgPartNotFound, "")
		}
		if err := requireRow[VehicleModel](tx, vehicleModelID, msgVehicleModelInvalid); err != nil {
			return err
		}
		return mapError(tx.Omit(clause.Associations).Create(&row).Error, "", msgCompatibilityExists)
	})
	if err != nil {
		return nil, err
	}

	var fresh Compatibility
	err = s.db.WithContext(ctx).
		Preload("Part.Category").
		Preload("VehicleModel").
		First(&fresh, "id = ?", row.ID).Error
	if err != nil {
		return nil, mapError(err, msgCompatibilityNotFound, "")
	}
	return &fresh, nil
}

// DeleteCompatibility removes compatibility id of partID.
func (s *Store) DeleteCompatibility(ctx context.Context, partID, id string) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND part_id = ?", id, partID).
		Delete(&Compatibility{})
	if result.Error != nil {
		return mapError(result.Error, "", "")
	}
	if result.RowsAffected == 0 {
		return domain.NewAppError(domain.CodeNotFound, msgCompatibilityNotFound, nil)
	}
	return nil
}

// --------------- users ---------------

// FindUser retrieves a user by username.
func (s *Store) FindUser(ctx context.Context, username string) (*User, error) {
	var row User
	if err := s.db.WithContext(ctx).First(&row, "username = ?", username).Error; err != nil {
		return nil, mapError(err, "", "")
	}
	return &row, nil
}

// CreateUser inserts a user.
func (s *Store) CreateUser(ctx context.Context, row *User) error {
	row.ID = ""
	return mapError(s.db.WithContext(ctx).Create(row).Error, "", msgUserExists)
}

// CountUsers returns the number of users.
func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&User{}).Count(&n).Error; err != nil {
		return 0, mapError(err, "", "")
	}
	return n, nil
}

// --------------- helpers ---------------

// thenBy appends tie-breaking ORDER BY columns. Scopes run when the query
// executes, so ties must be scopes too to sort after the requested order.
func thenBy(columns ...string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for _, col := range columns {
			db = db.Order(col)
		}
		return db
	}
}

// requireRow fails with a validation error carrying msg when no row of M has
// the given id. An empty msg reports a not-found error instead.
func requireRow[M any](tx *gorm.DB, id, msg string) error {
	var n int64
	if err := tx.Model(new(M)).Where("id = ?", id).Count(&n).Error; err != nil {
		return mapError(err, "", "")
	}
	if n > 0 {
		return nil
	}
	if msg == "" {
		return domain.ErrNotFound
	}
	return domain.NewAppError(domain.CodeValidation, msg, nil)
}

func deleteByID[M any](tx *gorm.DB, id, notFound string) error {
	result := tx.Where("id = ?", id).Delete(new(M))
	if result.Error != nil {
		return mapError(result.Error, "", "")
	}
	if result.RowsAffected == 0 {
		return domain.NewAppError(domain.CodeNotFound, notFound, nil)
	}
	return nil
}

// mapError converts GORM errors to domain errors, using notFound and
// duplicate as the user-facing messages when given.
func mapError(err error, notFound, duplicate string) error {
	if err == nil {
		return nil
	}
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		if appErr.Code == domain.CodeNotFound && notFound != "" {
			return domain.NewAppError(domain.CodeNotFound, notFound, nil)
		}
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if notFound == "" {
			return domain.ErrNotFound
		}
		return domain.NewAppError(domain.CodeNotFound, notFound, err)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicateKeyError(err) {
		if duplicate == "" {
			duplicate = "Registro duplicado."
		}
		return domain.NewAppError(domain.CodeAlreadyExists, duplicate, err)
	}
	return domain.NewAppError(domain.CodeInternal, "database error", err)
}

// isDuplicateKeyError detects unique constraint violations by examining the
// error message. This is needed because not all GORM dialectors translate
// driver-level errors to gorm.ErrDuplicatedKey (e.g. the pure-Go SQLite driver).
func isDuplicateKeyError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}
