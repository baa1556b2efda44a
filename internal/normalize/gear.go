package normalize

import (
	"fmt"

	"strava-archive/internal/database"
	"strava-archive/internal/strava"
)

// Gear flattens a gear payload into a gear row. Distance stays in
// meters; the reporting layer converts when presenting.
func Gear(g *strava.Gear) (database.GearRow, error) {
	if g == nil || g.ID == "" {
		return database.GearRow{}, fmt.Errorf("gear payload has no id")
	}

	retired := int64(0)
	if g.Retired {
		retired = 1
	}

	return database.GearRow{
		GearID:    g.ID,
		Name:      g.Name,
		Distance:  g.Distance,
		BrandName: g.BrandName,
		ModelName: g.ModelName,
		Retired:   retired,
		Weight:    g.Weight,
	}, nil
}
