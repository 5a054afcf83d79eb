package devapi

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/simp-lee/partsweb/internal/config"
	"github.com/simp-lee/partsweb/internal/pkg"
)

// Seed creates the configured user when the users table is empty and, when
// enabled, a small demo catalog when the categories table is empty.
func Seed(ctx context.Context, store *Store, auth *AuthService, cfg config.SeedConfig, logger *slog.Logger) error {
	if cfg.Username != "" {
		n, err := store.CountUsers(ctx)
		if err != nil {
			return fmt.Errorf("count users: %w", err)
		}
		if n == 0 {
			if _, err := auth.Register(ctx, cfg.Username, cfg.Password); err != nil {
				return fmt.Errorf("seed user: %w", err)
			}
			logger.Info("seed user created", slog.String("username", cfg.Username))
		}
	}

	if !cfg.Catalog {
		return nil
	}
	var categories int64
	if err := store.db.WithContext(ctx).Model(&Category{}).Count(&categories).Error; err != nil {
		return fmt.Errorf("count categories: %w", err)
	}
	if categories > 0 {
		return nil
	}
	if err := pkg.WithTx(ctx, store.db, seedCatalog); err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	logger.Info("demo catalog created")
	return nil
}

func seedCatalog(tx *gorm.DB) error {
	year := func(y int) *int { return &y }

	brakes := Category{Name: "Freios", Description: "Discos, pastilhas e componentes do sistema de freio."}
	filters := Category{Name: "Filtros", Description: "Filtros de óleo, ar e combustível."}
	suspension := Category{Name: "Suspensão"}
	for _, c := range []*Category{&brakes, &filters, &suspension} {
		if err := tx.Create(c).Error; err != nil {
			return err
		}
	}

	civic := VehicleModel{Name: "Civic", Manufacturer: "Honda", Year: year(2020)}
	gol := VehicleModel{Name: "Gol", Manufacturer: "Volkswagen", Year: year(2015)}
	onix := VehicleModel{Name: "Onix", Manufacturer: "Chevrolet", Year: year(2022)}
	uno := VehicleModel{Name: "Uno", Manufacturer: "Fiat"}
	for _, m := range []*VehicleModel{&civic, &gol, &onix, &uno} {
		if err := tx.Create(m).Error; err != nil {
			return err
		}
	}

	pad := Part{Name: "Pastilha de freio dianteira", PartNumber: "PF-1001", CategoryID: brakes.ID}
	disc := Part{Name: "Disco de freio ventilado", PartNumber: "DF-2040", CategoryID: brakes.ID}
	oil := Part{Name: "Filtro de óleo", PartNumber: "FO-330", CategoryID: filters.ID}
	air := Part{Name: "Filtro de ar", PartNumber: "FA-118", CategoryID: filters.ID}
	shock := Part{Name: "Amortecedor traseiro", PartNumber: "AM-775", CategoryID: suspension.ID,
		Description: "Par, pressurizado a gás."}
	for _, p := range []*Part{&pad, &disc, &oil, &air, &shock} {
		if err := tx.Omit(clause.Associations).Create(p).Error; err != nil {
			return err
		}
	}

	links := []Compatibility{
		{PartID: pad.ID, VehicleModelID: civic.ID},
		{PartID: pad.ID, VehicleModelID: gol.ID, Notes: "Somente versões 1.6."},
		{PartID: disc.ID, VehicleModelID: civic.ID},
		{PartID: oil.ID, VehicleModelID: onix.ID},
		{PartID: oil.ID, VehicleModelID: uno.ID},
		{PartID: shock.ID, VehicleModelID: gol.ID},
	}
	for i := range links {
		if err := tx.Omit(clause.Associations).Create(&links[i]).Error; err != nil {
			return err
		}
	}
	return nil
}
