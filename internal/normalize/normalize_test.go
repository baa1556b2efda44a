package normalize

import (
	"encoding/json"
	"testing"

	"strava-archive/internal/database"
	"strava-archive/internal/strava"
)

func TestActivity(t *testing.T) {
	t.Run("Derivations", func(t *testing.T) {
		hr := 150.5
		suffer := 41.6
		summary := strava.ActivitySummary{
			ID:                 42,
			Name:               "Evening Run",
			SportType:          "Run",
			StartDateLocal:     "2024-03-15T18:30:00Z",
			Trainer:            false,
			Distance:           10250,   // meters
			MovingTime:         3000,    // 50 min
			ElapsedTime:        3600,    // 1 hour
			TotalElevationGain: 120,
			GearID:             "g123",
			AverageHeartrate:   &hr,
			AverageSpeed:       3.4,
			SufferScore:        &suffer,
			StartLatLng:        []float64{52.37, 4.89},
		}

		row, err := Activity(summary)
		if err != nil {
			t.Fatalf("Failed to normalize activity: %v", err)
		}

		if row.Date != "2024-03-15" {
			t.Errorf("Expected date 2024-03-15, got %s", row.Date)
		}
		if row.Month != "03" {
			t.Errorf("Expected month 03, got %s", row.Month)
		}
		if row.DayOfWeek != "Friday" {
			t.Errorf("Expected day_of_week Friday, got %s", row.DayOfWeek)
		}
		if row.StartTime != "18:30:00" {
			t.Errorf("Expected start_time 18:30:00, got %s", row.StartTime)
		}
		if row.EndTime != "19:30:00" {
			t.Errorf("Expected end_time 19:30:00, got %s", row.EndTime)
		}
		if row.Distance != 10.25 {
			t.Errorf("Expected distance 10.25 km, got %v", row.Distance)
		}
		if row.Duration != 50 {
			t.Errorf("Expected duration 50 min, got %v", row.Duration)
		}
		if row.Indoor != 0 {
			t.Errorf("Expected indoor 0, got %d", row.Indoor)
		}
		if row.Intensity == nil || *row.Intensity != 42 {
			t.Errorf("Expected intensity 42, got %v", row.Intensity)
		}
		if row.LatLng != "[52.37,4.89]" {
			t.Errorf("Expected lat_lng [52.37,4.89], got %s", row.LatLng)
		}
	})

	t.Run("IndoorFromTrainer", func(t *testing.T) {
		row, err := Activity(strava.ActivitySummary{
			ID:             7,
			StartDateLocal: "2024-01-01T08:00:00Z",
			Trainer:        true,
		})
		if err != nil {
			t.Fatalf("Failed to normalize activity: %v", err)
		}
		if row.Indoor != 1 {
			t.Errorf("Expected indoor 1 for trainer activity, got %d", row.Indoor)
		}
		if row.LatLng != "[]" {
			t.Errorf("Expected empty lat_lng list, got %s", row.LatLng)
		}
	})

	t.Run("MissingID", func(t *testing.T) {
		if _, err := Activity(strava.ActivitySummary{StartDateLocal: "2024-01-01T08:00:00Z"}); err == nil {
			t.Error("Expected error for summary without id")
		}
	})

	t.Run("BadTimestamp", func(t *testing.T) {
		if _, err := Activity(strava.ActivitySummary{ID: 1, StartDateLocal: "yesterday"}); err == nil {
			t.Error("Expected error for unparseable timestamp")
		}
	})
}

func TestStreams(t *testing.T) {
	t.Run("RenameAndPlaceholder", func(t *testing.T) {
		set := strava.StreamSet{
			"time":            {Data: json.RawMessage(`[0,1,2]`)},
			"velocity_smooth": {Data: json.RawMessage(`[2.5,2.6]`)},
			"heartrate":       {Data: json.RawMessage(`[]`)},
		}

		row, err := Streams(42, set)
		if err != nil {
			t.Fatalf("Failed to normalize streams: %v", err)
		}

		if row.Time != "[0,1,2]" {
			t.Errorf("Expected time series [0,1,2], got %s", row.Time)
		}
		if row.Speed != "[2.5,2.6]" {
			t.Errorf("Expected velocity_smooth stored as speed, got %s", row.Speed)
		}
		if row.Heartrate != "[0]" {
			t.Errorf("Expected placeholder for empty heartrate, got %s", row.Heartrate)
		}
		// Entirely absent series also get the placeholder.
		if row.Watts != "[0]" {
			t.Errorf("Expected placeholder for absent watts, got %s", row.Watts)
		}
		if row.Cadence != "[0]" || row.Altitude != "[0]" || row.LatLng != "[0]" || row.Distance != "[0]" {
			t.Error("Expected placeholder for every missing series")
		}
	})

	t.Run("MissingID", func(t *testing.T) {
		if _, err := Streams(0, strava.StreamSet{}); err == nil {
			t.Error("Expected error for zero activity id")
		}
	})
}

func TestZones(t *testing.T) {
	zones := []strava.ActivityZone{
		{
			Type: "heartrate",
			DistributionBuckets: []strava.ZoneBucket{
				{Min: 0, Max: 123.4, Time: 600},
				{Min: 123.4, Max: 153, Time: 1200},
			},
		},
		{
			Type: "power",
			DistributionBuckets: []strava.ZoneBucket{
				{Min: 0, Max: 180, Time: 900},
			},
		},
	}

	rows := Zones(42, zones)
	if len(rows) != 3 {
		t.Fatalf("Expected 3 zone rows, got %d", len(rows))
	}

	first, ok := rows[0].(database.ZoneRow)
	if !ok {
		t.Fatalf("Expected ZoneRow, got %T", rows[0])
	}
	if first.ZoneType != "heartrate" || first.MaxValue != 123 {
		t.Errorf("Unexpected first zone row: %+v", first)
	}

	types := ZoneTypes(zones)
	if len(types) != 2 || types[0] != "heartrate" || types[1] != "power" {
		t.Errorf("Expected zone types [heartrate power], got %v", types)
	}

	if rows := Zones(42, nil); len(rows) != 0 {
		t.Errorf("Expected zero rows for no zones, got %d", len(rows))
	}
}

func TestBestEfforts(t *testing.T) {
	prRank := int64(2)
	efforts := []strava.BestEffort{
		{Name: "1k", Distance: 1000, ElapsedTime: 240, PRRank: &prRank, StartDateLocal: "2024-03-15T18:35:00Z"},
		{Name: "1 mile", Distance: 1609, ElapsedTime: 400},
	}

	rows := BestEfforts(42, "2024-03-15", efforts)
	if len(rows) != 2 {
		t.Fatalf("Expected 2 best effort rows, got %d", len(rows))
	}

	first := rows[0].(database.BestEffortRow)
	if first.Date != "2024-03-15" || first.Name != "1k" || *first.PRRank != 2 {
		t.Errorf("Unexpected first effort row: %+v", first)
	}

	second := rows[1].(database.BestEffortRow)
	if second.Date != "2024-03-15" {
		t.Errorf("Expected fallback to activity date, got %s", second.Date)
	}
	if second.PRRank != nil {
		t.Errorf("Expected nil pr_rank, got %v", second.PRRank)
	}

	if rows := BestEfforts(42, "2024-03-15", nil); len(rows) != 0 {
		t.Errorf("Expected zero rows for no efforts, got %d", len(rows))
	}
}

func TestSplits(t *testing.T) {
	detail := &strava.ActivityDetail{
		ActivitySummary: strava.ActivitySummary{ID: 42, SportType: "Run"},
		SplitsMetric:    json.RawMessage(`[{"split":1}]`),
	}

	row, err := Splits(detail, []string{"heartrate"})
	if err != nil {
		t.Fatalf("Failed to normalize splits: %v", err)
	}
	if row.SplitsMetric != `[{"split":1}]` {
		t.Errorf("Unexpected splits_metric: %s", row.SplitsMetric)
	}
	if row.Laps != "[]" {
		t.Errorf("Expected empty laps list, got %s", row.Laps)
	}
	if row.AvailableZones != `["heartrate"]` {
		t.Errorf("Unexpected available_zones: %s", row.AvailableZones)
	}

	if _, err := Splits(nil, nil); err == nil {
		t.Error("Expected error for nil detail")
	}
}

func TestGear(t *testing.T) {
	gear := &strava.Gear{
		ID:        "b456",
		Name:      "Gravel Bike",
		Distance:  1200000,
		BrandName: "Canyon",
		Retired:   true,
		Weight:    9.2,
	}

	row, err := Gear(gear)
	if err != nil {
		t.Fatalf("Failed to normalize gear: %v", err)
	}
	if row.GearID != "b456" || row.Retired != 1 {
		t.Errorf("Unexpected gear row: %+v", row)
	}

	if _, err := Gear(nil); err == nil {
		t.Error("Expected error for nil gear")
	}
}
