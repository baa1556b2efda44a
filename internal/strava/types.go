package strava

import (
	"encoding/json"
	"fmt"
	"io"
)

// ActivitySummary is one entry of an activity listing. Listings carry
// the full summary-level field set, not just ids.
type ActivitySummary struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	SportType          string    `json:"sport_type"`
	StartDateLocal     string    `json:"start_date_local"`
	Trainer            bool      `json:"trainer"`
	Distance           float64   `json:"distance"`
	MovingTime         int64     `json:"moving_time"`
	ElapsedTime        int64     `json:"elapsed_time"`
	TotalElevationGain float64   `json:"total_elevation_gain"`
	GearID             string    `json:"gear_id"`
	AverageHeartrate   *float64  `json:"average_heartrate"`
	AverageSpeed       float64   `json:"average_speed"`
	AverageCadence     *float64  `json:"average_cadence"`
	AverageTemp        *float64  `json:"average_temp"`
	AverageWatts       *float64  `json:"average_watts"`
	SufferScore        *float64  `json:"suffer_score"`
	StartLatLng        []float64 `json:"start_latlng"`
}

// ActivityDetail is the expanded per-activity record. Splits and laps
// are kept raw; they are stored serialized, never interpreted.
type ActivityDetail struct {
	ActivitySummary
	SplitsMetric json.RawMessage `json:"splits_metric"`
	Laps         json.RawMessage `json:"laps"`
	BestEfforts  []BestEffort    `json:"best_efforts"`
}

// BestEffort is one named effort segment embedded in a detail payload
type BestEffort struct {
	Name           string  `json:"name"`
	Distance       float64 `json:"distance"`
	ElapsedTime    int64   `json:"elapsed_time"`
	PRRank         *int64  `json:"pr_rank"`
	StartDateLocal string  `json:"start_date_local"`
}

// ActivityZone is one zone set (heartrate or power) for an activity
type ActivityZone struct {
	Type                string       `json:"type"`
	DistributionBuckets []ZoneBucket `json:"distribution_buckets"`
}

// ZoneBucket is one band of a zone distribution
type ZoneBucket struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Time float64 `json:"time"`
}

// Stream is one series of a key-by-type streams response
type Stream struct {
	Data         json.RawMessage `json:"data"`
	SeriesType   string          `json:"series_type"`
	OriginalSize int             `json:"original_size"`
	Resolution   string          `json:"resolution"`
}

// StreamSet maps series name to its stream
type StreamSet map[string]Stream

// Gear is a bike or pair of shoes referenced by activities
type Gear struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Distance  float64 `json:"distance"`
	BrandName string  `json:"brand_name"`
	ModelName string  `json:"model_name"`
	Retired   bool    `json:"retired"`
	Weight    float64 `json:"weight"`
}

// decodeJSON decodes a JSON body into v
func decodeJSON(r io.Reader, v any) error {
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("failed to decode json: %w", err)
	}
	return nil
}
