package normalize

import (
	"math"

	"strava-archive/internal/database"
	"strava-archive/internal/strava"
)

// Zones emits one row per (zone type, band) pair found in the payload.
// A payload with zero zone types yields zero rows.
func Zones(activityID int64, zones []strava.ActivityZone) []database.Row {
	var rows []database.Row
	for _, zone := range zones {
		for _, bucket := range zone.DistributionBuckets {
			rows = append(rows, database.ZoneRow{
				ID:         activityID,
				ZoneType:   zone.Type,
				MinValue:   int64(math.Round(bucket.Min)),
				MaxValue:   int64(math.Round(bucket.Max)),
				TimeInZone: bucket.Time,
			})
		}
	}
	return rows
}

// ZoneTypes lists the zone types present in a payload, in payload order.
func ZoneTypes(zones []strava.ActivityZone) []string {
	types := make([]string, 0, len(zones))
	for _, zone := range zones {
		types = append(types, zone.Type)
	}
	return types
}
