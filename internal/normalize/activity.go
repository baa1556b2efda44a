// Package normalize turns raw Strava payloads into flat rows matching
// the store's schema. Normalizers are pure: no I/O, no clock, and they
// fail only on contract violations (missing id, unparseable timestamp),
// never on missing-but-optional fields.
package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"strava-archive/internal/database"
	"strava-archive/internal/strava"
)

// Activity flattens a listing entry into an activities row. The date,
// month, weekday and start/end times all derive from the single local
// start timestamp. Distance is stored in kilometers and duration in
// minutes; downstream analysis depends on those units.
func Activity(s strava.ActivitySummary) (database.ActivityRow, error) {
	if s.ID == 0 {
		return database.ActivityRow{}, fmt.Errorf("activity summary has no id")
	}

	start, err := time.Parse(time.RFC3339, s.StartDateLocal)
	if err != nil {
		return database.ActivityRow{}, fmt.Errorf("failed to parse start date for activity %d: %w", s.ID, err)
	}
	end := start.Add(time.Duration(s.ElapsedTime) * time.Second)

	indoor := int64(0)
	if s.Trainer {
		indoor = 1
	}

	var intensity *int64
	if s.SufferScore != nil {
		v := int64(math.Round(*s.SufferScore))
		intensity = &v
	}

	return database.ActivityRow{
		ID:               s.ID,
		Name:             s.Name,
		Date:             start.Format("2006-01-02"),
		Month:            start.Format("01"),
		DayOfWeek:        start.Format("Monday"),
		StartTime:        start.Format("15:04:05"),
		EndTime:          end.Format("15:04:05"),
		SportType:        s.SportType,
		Indoor:           indoor,
		Distance:         round2(s.Distance / 1000),
		Duration:         round2(float64(s.MovingTime) / 60),
		ElevationGain:    s.TotalElevationGain,
		GearID:           s.GearID,
		AverageHeartrate: s.AverageHeartrate,
		AverageSpeed:     s.AverageSpeed,
		AverageCadence:   s.AverageCadence,
		AverageTemp:      s.AverageTemp,
		AverageWatts:     s.AverageWatts,
		Intensity:        intensity,
		LatLng:           marshalOrEmptyList(s.StartLatLng),
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// marshalOrEmptyList serializes a slice, mapping absent to "[]" so the
// stored field is always a JSON array.
func marshalOrEmptyList(v []float64) string {
	if len(v) == 0 {
		return "[]"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(b)
}
