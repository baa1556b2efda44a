package normalize

import (
	"bytes"
	"fmt"

	"strava-archive/internal/database"
	"strava-archive/internal/strava"
)

// placeholderSeries stands in for a missing or empty series so that
// downstream consumers can always index position 0.
const placeholderSeries = "[0]"

// Streams flattens a key-by-type streams response into a single streams
// row. Each of the 8 known series is serialized as-is; absent or empty
// series become the one-element placeholder. The remote's
// velocity_smooth series is stored under the speed column.
func Streams(activityID int64, set strava.StreamSet) (database.StreamsRow, error) {
	if activityID == 0 {
		return database.StreamsRow{}, fmt.Errorf("streams payload has no activity id")
	}

	return database.StreamsRow{
		ID:        activityID,
		Time:      seriesOrPlaceholder(set, "time"),
		Distance:  seriesOrPlaceholder(set, "distance"),
		LatLng:    seriesOrPlaceholder(set, "latlng"),
		Altitude:  seriesOrPlaceholder(set, "altitude"),
		Speed:     seriesOrPlaceholder(set, "velocity_smooth"),
		Heartrate: seriesOrPlaceholder(set, "heartrate"),
		Cadence:   seriesOrPlaceholder(set, "cadence"),
		Watts:     seriesOrPlaceholder(set, "watts"),
	}, nil
}

func seriesOrPlaceholder(set strava.StreamSet, key string) string {
	stream, ok := set[key]
	if !ok {
		return placeholderSeries
	}

	data := bytes.TrimSpace(stream.Data)
	switch string(data) {
	case "", "null", "[]":
		return placeholderSeries
	}
	return string(data)
}
