package seeding

import (
	"context"
	"fmt"

	"github.com/managementproperties/mono-repo/backend/shared/go-models"
	"github.com/managementproperties/mono-repo/backend/shared/go-repositories"
	"github.com/managementproperties/mono-repo/backend/shared/go-utils"
)

// DemoProperties covers one listing per status so every page of the site
// has something to render on a fresh environment.
var DemoProperties = []models.PropertyFields{
	{
		Title:       utils.Ptr("Two Bedroom Flat, Station Road"),
		Address:     utils.Ptr("14 Station Road, Harrow HA1 2RS"),
		Area:        utils.Ptr("Harrow"),
		Price:       utils.Ptr(1650.0),
		PriceUnit:   utils.Ptr(models.PriceUnitPCM),
		Status:      utils.Ptr(string(models.StatusRent)),
		Beds:        utils.Ptr(2),
		Baths:       utils.Ptr(1),
		Featured:    utils.Ptr(true),
		Lat:         utils.Ptr(51.5793),
		Lng:         utils.Ptr(-0.3342),
		Images:      &[]string{},
		Description: utils.Ptr("Bright first floor flat a short walk from Harrow-on-the-Hill station."),
	},
	{
		Title:         utils.Ptr("Three Bedroom Semi, Kenton Lane"),
		Address:       utils.Ptr("82 Kenton Lane, Harrow HA3 8RX"),
		Area:          utils.Ptr("Kenton"),
		Price:         utils.Ptr(585000.0),
		PriceUnit:     utils.Ptr(models.PriceUnitPCM),
		SalePriceUnit: utils.Ptr(models.SalePriceGuide),
		Status:        utils.Ptr(string(models.StatusSale)),
		Beds:          utils.Ptr(3),
		Baths:         utils.Ptr(2),
		Lat:           utils.Ptr(51.5936),
		Lng:           utils.Ptr(-0.3176),
		Images:        &[]string{},
		Description:   utils.Ptr("Extended family home with a south facing garden."),
	},
	{
		Title:         utils.Ptr("Retail Unit, Wealdstone High Street"),
		Address:       utils.Ptr("5 High Street, Wealdstone HA3 5BY"),
		Area:          utils.Ptr("Wealdstone"),
		Price:         utils.Ptr(28000.0),
		PriceUnit:     utils.Ptr(models.PriceUnitPA),
		SalePriceUnit: utils.Ptr(models.SalePriceOIRO),
		Status:        utils.Ptr(string(models.StatusCommercial)),
		Lat:           utils.Ptr(51.5952),
		Lng:           utils.Ptr(-0.3349),
		Images:        &[]string{},
		Description:   utils.Ptr("Ground floor A1 unit with rear storage."),
	},
}

// SeedDemoProperties inserts DemoProperties into an empty store. A store
// that already holds listings, active or not, is left untouched.
func SeedDemoProperties(ctx context.Context, repo repositories.PropertyRepository) error {
	existing, err := repo.List(ctx, true)
	if err != nil {
		return fmt.Errorf("error checking for existing listings: %w", err)
	}
	if len(existing) > 0 {
		utils.Logger.Infof("Store already holds %d listings; skipping demo seed.", len(existing))
		return nil
	}

	for _, f := range DemoProperties {
		id, err := repo.Create(ctx, f)
		if err != nil {
			return fmt.Errorf("failed to insert demo listing %q: %w", utils.Val(f.Title), err)
		}
		utils.Logger.Infof("Seeded demo listing (ID=%d, title=%s).", id, utils.Val(f.Title))
	}
	return nil
}
