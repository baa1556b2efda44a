package normalize

import (
	"encoding/json"
	"fmt"

	"strava-archive/internal/database"
	"strava-archive/internal/strava"
)

// Splits bundles all laps of one activity into a single row. The
// splits_metric and laps payload fragments are stored serialized, and
// zoneTypes records which zone distributions exist for the activity
// (empty when the zones fetch failed or returned nothing).
func Splits(detail *strava.ActivityDetail, zoneTypes []string) (database.SplitsRow, error) {
	if detail == nil || detail.ID == 0 {
		return database.SplitsRow{}, fmt.Errorf("detail payload has no activity id")
	}

	return database.SplitsRow{
		ID:             detail.ID,
		SportType:      detail.SportType,
		SplitsMetric:   rawOrEmptyList(detail.SplitsMetric),
		Laps:           rawOrEmptyList(detail.Laps),
		AvailableZones: marshalStrings(zoneTypes),
	}, nil
}

func rawOrEmptyList(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return "[]"
	}
	return string(raw)
}

func marshalStrings(v []string) string {
	if len(v) == 0 {
		return "[]"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(b)
}
