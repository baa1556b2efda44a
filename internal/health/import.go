// Package health imports the Apple Health export CSV into the health
// table. One row per calendar day; days already stored are skipped, so
// re-importing the same export is a no-op.
package health

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"strava-archive/internal/database"
	"strava-archive/internal/metrics"
)

// Importer reads health export files and writes them through the store.
type Importer struct {
	db     *database.DB
	logger *slog.Logger
}

// New creates an Importer.
func New(db *database.DB, logger *slog.Logger) *Importer {
	return &Importer{db: db, logger: logger}
}

// ImportFile parses the CSV at path and inserts every day not already
// present in the health table. Rows with an unparseable date are
// skipped with a log line, not fatal.
func (im *Importer) ImportFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open health export: %w", err)
	}
	defer f.Close()

	rows, err := Parse(f)
	if err != nil {
		return fmt.Errorf("failed to parse health export: %w", err)
	}

	existing, err := im.db.HealthDates()
	if err != nil {
		return fmt.Errorf("failed to load stored health dates: %w", err)
	}
	existingSet := make(map[string]struct{}, len(existing))
	for _, date := range existing {
		existingSet[date] = struct{}{}
	}

	var fresh []database.Row
	skipped := 0
	for _, row := range rows {
		if _, ok := existingSet[row.Date]; ok {
			skipped++
			continue
		}
		fresh = append(fresh, row)
	}
	metrics.HealthRowsSkippedTotal.Add(float64(skipped))

	if len(fresh) == 0 {
		im.logger.Info("no new health data", "parsed", len(rows), "skipped", skipped)
		return nil
	}

	inserted, err := im.db.InsertIgnore(im.logger, "health", fresh)
	if err != nil {
		return fmt.Errorf("failed to insert health rows: %w", err)
	}
	metrics.HealthRowsImportedTotal.Add(float64(inserted))

	im.logger.Info("health import complete",
		"parsed", len(rows), "inserted", inserted, "skipped", skipped)
	return nil
}

// columnFields maps normalized CSV headers to row field setters. The
// map is closed: unknown export columns are ignored.
var columnFields = map[string]func(*database.HealthRow, string){
	"apple_exercise_time":          func(r *database.HealthRow, v string) { r.AppleExerciseTime = parseFloat(v) },
	"apple_move_time":              func(r *database.HealthRow, v string) { r.AppleMoveTime = parseFloat(v) },
	"caffeine":                     func(r *database.HealthRow, v string) { r.Caffeine = parseFloat(v) },
	"cardio_recovery":              func(r *database.HealthRow, v string) { r.CardioRecovery = parseFloat(v) },
	"flights_climbed":              func(r *database.HealthRow, v string) { r.FlightsClimbed = parseInt(v) },
	"headphone_audio_exposure":     func(r *database.HealthRow, v string) { r.HeadphoneAudioExposure = parseFloat(v) },
	"heart_rate_variability":       func(r *database.HealthRow, v string) { r.HeartRateVariability = parseFloat(v) },
	"mindful_minutes":              func(r *database.HealthRow, v string) { r.MindfulMinutes = parseFloat(v) },
	"physical_effort":              func(r *database.HealthRow, v string) { r.PhysicalEffort = parseFloat(v) },
	"respiratory_rate":             func(r *database.HealthRow, v string) { r.RespiratoryRate = parseFloat(v) },
	"resting_heart_rate":           func(r *database.HealthRow, v string) { r.RestingHeartRate = parseFloat(v) },
	"running_ground_contact_time":  func(r *database.HealthRow, v string) { r.RunningGroundContactTime = parseFloat(v) },
	"running_power":                func(r *database.HealthRow, v string) { r.RunningPower = parseFloat(v) },
	"running_speed":                func(r *database.HealthRow, v string) { r.RunningSpeed = parseFloat(v) },
	"running_stride_length":        func(r *database.HealthRow, v string) { r.RunningStrideLength = parseFloat(v) },
	"running_vertical_oscillation": func(r *database.HealthRow, v string) { r.RunningVerticalOscillation = parseFloat(v) },
	"sleep_analysis_asleep":        func(r *database.HealthRow, v string) { r.SleepAnalysisAsleep = parseFloat(v) },
	"sleep_analysis_in_bed":        func(r *database.HealthRow, v string) { r.SleepAnalysisInBed = parseFloat(v) },
	"sleep_analysis_core":          func(r *database.HealthRow, v string) { r.SleepAnalysisCore = parseFloat(v) },
	"sleep_analysis_deep":          func(r *database.HealthRow, v string) { r.SleepAnalysisDeep = parseFloat(v) },
	"sleep_analysis_rem":           func(r *database.HealthRow, v string) { r.SleepAnalysisREM = parseFloat(v) },
	"sleep_analysis_awake":         func(r *database.HealthRow, v string) { r.SleepAnalysisAwake = parseFloat(v) },
	"step_count":                   func(r *database.HealthRow, v string) { r.StepCount = parseInt(v) },
	"time_in_daylight":             func(r *database.HealthRow, v string) { r.TimeInDaylight = parseFloat(v) },
	"vo2_max":                      func(r *database.HealthRow, v string) { r.VO2Max = parseFloat(v) },
	"walking_running_distance":     func(r *database.HealthRow, v string) { r.WalkingRunningDistance = parseFloat(v) },
}

// Parse reads an export CSV and returns one HealthRow per data line.
// Header names are normalized before matching, so unit suffixes and
// capitalization in the export do not matter.
func Parse(r io.Reader) ([]database.HealthRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	dateIdx := -1
	setters := make(map[int]func(*database.HealthRow, string))
	for i, name := range header {
		normalized := NormalizeHeader(name)
		if normalized == "date" {
			dateIdx = i
			continue
		}
		if set, ok := columnFields[normalized]; ok {
			setters[i] = set
		}
	}
	if dateIdx < 0 {
		return nil, fmt.Errorf("export has no date column")
	}

	var rows []database.HealthRow
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}
		line++

		if dateIdx >= len(record) {
			continue
		}
		date, ok := parseDate(record[dateIdx])
		if !ok {
			continue
		}

		row := database.HealthRow{ID: int64(line), Date: date}
		if ts, err := time.Parse("2006-01-02", date); err == nil {
			row.Month = ts.Format("01")
			row.DayOfWeek = ts.Format("Monday")
		}
		for i, set := range setters {
			if i < len(record) {
				set(&row, record[i])
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// NormalizeHeader maps an export header to its column name: lowercase,
// unit parenthetical stripped, brackets dropped, spaces collapsed to
// underscores. "Sleep Analysis [Asleep] (hr)" becomes
// "sleep_analysis_asleep".
func NormalizeHeader(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	if i := strings.Index(s, "("); i >= 0 {
		s = s[:i]
	}
	s = strings.ReplaceAll(s, "[", "")
	s = strings.ReplaceAll(s, "]", "")
	s = strings.ReplaceAll(s, "+", "")
	s = strings.Join(strings.Fields(s), "_")
	return s
}

// parseDate accepts either a bare date or a date-time and returns the
// calendar day.
func parseDate(value string) (string, bool) {
	v := strings.TrimSpace(value)
	if len(v) >= 10 {
		v = v[:10]
	}
	if _, err := time.Parse("2006-01-02", v); err != nil {
		return "", false
	}
	return v, true
}

func parseFloat(value string) *float64 {
	v := strings.TrimSpace(value)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	return &f
}

func parseInt(value string) *int64 {
	v := strings.TrimSpace(value)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	n := int64(math.Round(f))
	return &n
}
