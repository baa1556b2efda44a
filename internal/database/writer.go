package database

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"strava-archive/internal/metrics"
)

// ErrUnknownTable indicates a table name outside the fixed allow-list.
// It signals a programming error, not a data problem, and is never
// swallowed by the per-row containment below.
var ErrUnknownTable = errors.New("unknown table")

// tableColumns is the closed allow-list of writable tables and their
// column order. Queries are only ever built from this registry, never
// from caller-supplied names.
var tableColumns = map[string][]string{
	"activities": {
		"id", "name", "date", "month", "day_of_week", "start_time",
		"end_time", "sport_type", "indoor", "distance", "duration",
		"elevation_gain", "gear_id", "average_heartrate", "average_speed",
		"average_cadence", "average_temp", "average_watts", "intensity",
		"lat_lng",
	},
	"gear": {
		"gear_id", "name", "distance", "brand_name", "model_name",
		"retired", "weight",
	},
	"splits": {
		"id", "sport_type", "splits_metric", "laps", "available_zones",
	},
	"zones": {
		"id", "zone_type", "min_value", "max_value", "time_in_zone",
	},
	"best_efforts": {
		"id", "date", "name", "distance", "time", "pr_rank",
	},
	"streams": {
		"id", "time", "distance", "latlng", "altitude", "speed",
		"heartrate", "cadence", "watts",
	},
	"cache": {"id"},
	"health": {
		"id", "date", "apple_exercise_time", "apple_move_time", "caffeine",
		"cardio_recovery", "flights_climbed", "headphone_audio_exposure",
		"heart_rate_variability", "mindful_minutes", "physical_effort",
		"respiratory_rate", "resting_heart_rate",
		"running_ground_contact_time", "running_power", "running_speed",
		"running_stride_length", "running_vertical_oscillation",
		"sleep_analysis_asleep", "sleep_analysis_in_bed",
		"sleep_analysis_core", "sleep_analysis_deep", "sleep_analysis_rem",
		"sleep_analysis_awake", "step_count", "time_in_daylight", "vo2_max",
		"walking_running_distance", "month", "day_of_week",
	},
}

// ValidateTable checks a table name against the allow-list.
func ValidateTable(table string) error {
	if _, ok := tableColumns[table]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}
	return nil
}

// InsertIgnore inserts each row into table if no row with the same
// primary key exists; existing rows are silently skipped, never updated.
// Rows are inserted one at a time so a malformed row does not abort the
// rest of the batch: each row's failure is logged and the loop continues.
// Empty input is a no-op. Returns the number of rows actually inserted.
func (db *DB) InsertIgnore(logger *slog.Logger, table string, rows []Row) (int64, error) {
	if err := ValidateTable(table); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	columns := tableColumns[table]
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	query := fmt.Sprintf(
		"INSERT OR IGNORE INTO %s (%s) VALUES (%s)",
		table, strings.Join(columns, ", "), placeholders,
	)

	var inserted int64
	for _, row := range rows {
		values := row.Values()
		if len(values) != len(columns) {
			logger.Error("row value count does not match table columns",
				"table", table,
				"values", len(values),
				"columns", len(columns))
			metrics.RowInsertFailuresTotal.WithLabelValues(table).Inc()
			continue
		}

		result, err := db.conn.Exec(query, values...)
		if err != nil {
			logger.Error("failed to insert row", "table", table, "error", err)
			metrics.RowInsertFailuresTotal.WithLabelValues(table).Inc()
			continue
		}

		affected, err := result.RowsAffected()
		if err != nil {
			logger.Error("failed to get rows affected", "table", table, "error", err)
			continue
		}
		inserted += affected
	}

	metrics.RowsInsertedTotal.WithLabelValues(table).Add(float64(inserted))
	return inserted, nil
}
