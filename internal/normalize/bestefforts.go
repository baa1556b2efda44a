package normalize

import (
	"time"

	"strava-archive/internal/database"
	"strava-archive/internal/strava"
)

// BestEfforts emits one row per named effort embedded in a detail
// payload. An absent list yields zero rows. Each row's date is the
// effort's own local date, falling back to the activity date.
func BestEfforts(activityID int64, activityDate string, efforts []strava.BestEffort) []database.Row {
	var rows []database.Row
	for _, effort := range efforts {
		date := activityDate
		if ts, err := time.Parse(time.RFC3339, effort.StartDateLocal); err == nil {
			date = ts.Format("2006-01-02")
		}

		rows = append(rows, database.BestEffortRow{
			ID:       activityID,
			Date:     date,
			Name:     effort.Name,
			Distance: effort.Distance,
			Time:     effort.ElapsedTime,
			PRRank:   effort.PRRank,
		})
	}
	return rows
}
