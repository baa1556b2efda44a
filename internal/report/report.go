package report

import (
	"database/sql"
	"fmt"
	"io"
	"sort"
	"strconv"
	"text/tabwriter"
	"time"

	"strava-archive/internal/database"
)

// Activity is one stored activity as the report layer sees it: month is
// an abbreviation ("Jan") and duration stays in minutes; totals convert
// to hours at aggregation time.
type Activity struct {
	ID            int64
	Name          string
	Date          string // YYYY-MM-DD
	Month         string // "Jan".."Dec"
	DayOfWeek     string // full name as stored
	SportType     string
	Indoor        bool
	Distance      float64 // km
	Duration      float64 // minutes
	ElevationGain float64 // m
	AverageSpeed  float64
}

func (a Activity) year() int {
	if len(a.Date) < 4 {
		return 0
	}
	y, err := strconv.Atoi(a.Date[:4])
	if err != nil {
		return 0
	}
	return y
}

func (a Activity) weekdayAbbr() string {
	ts, err := time.Parse("2006-01-02", a.Date)
	if err != nil {
		return ""
	}
	return ts.Format("Mon")
}

// Load reads all activities from the store, converting the stored
// numeric month to its abbreviation.
func Load(db *database.DB) ([]Activity, error) {
	rows, err := db.Conn().Query(`
		SELECT id, name, date, month, day_of_week, sport_type, indoor,
		       distance, duration, elevation_gain, average_speed
		FROM activities
		ORDER BY date`)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()

	var activities []Activity
	for rows.Next() {
		var a Activity
		var month string
		var indoor int64
		var name sql.NullString
		if err := rows.Scan(&a.ID, &name, &a.Date, &month, &a.DayOfWeek,
			&a.SportType, &indoor, &a.Distance, &a.Duration,
			&a.ElevationGain, &a.AverageSpeed); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		a.Name = name.String
		a.Indoor = indoor == 1
		a.Month = monthAbbr(month)
		activities = append(activities, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activities: %w", err)
	}

	return activities, nil
}

// monthAbbr converts a stored zero-padded month ("01") to "Jan".
// Unrecognized input passes through unchanged.
func monthAbbr(month string) string {
	n, err := strconv.Atoi(month)
	if err != nil || n < 1 || n > 12 {
		return month
	}
	return AllMonths[n-1]
}

// TotalByMetric sums one metric over a sport type. Duration is reported
// in hours; distance and elevation gain keep their stored units. The
// result is truncated to a whole number.
func TotalByMetric(activities []Activity, metric, sportType string) (int64, error) {
	switch metric {
	case "distance", "duration", "elevation_gain":
	default:
		return 0, fmt.Errorf("invalid metric: %s", metric)
	}

	var total float64
	for _, a := range activities {
		if a.SportType != sportType {
			continue
		}
		switch metric {
		case "distance":
			total += a.Distance
		case "duration":
			total += a.Duration / 60
		case "elevation_gain":
			total += a.ElevationGain
		}
	}
	return int64(total), nil
}

// MonthlyTotal is one month's sum and the running total up to and
// including that month.
type MonthlyTotal struct {
	Month      string
	Total      float64
	Cumulative float64
}

// MonthlyCumulative aggregates a metric per month in date order and
// adds a running cumulative sum. Months with no activities are absent.
func MonthlyCumulative(activities []Activity, metric string) ([]MonthlyTotal, error) {
	value, ok := map[string]func(Activity) float64{
		"distance":       func(a Activity) float64 { return a.Distance },
		"duration":       func(a Activity) float64 { return a.Duration },
		"elevation_gain": func(a Activity) float64 { return a.ElevationGain },
	}[metric]
	if !ok {
		return nil, fmt.Errorf("invalid metric: %s", metric)
	}

	sorted := make([]Activity, len(activities))
	copy(sorted, activities)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date < sorted[j].Date })

	var order []string
	totals := make(map[string]float64)
	for _, a := range sorted {
		if _, seen := totals[a.Month]; !seen {
			order = append(order, a.Month)
		}
		totals[a.Month] += value(a)
	}

	var out []MonthlyTotal
	cumulative := 0.0
	for _, month := range order {
		cumulative += totals[month]
		out = append(out, MonthlyTotal{Month: month, Total: totals[month], Cumulative: cumulative})
	}
	return out, nil
}

// maxPrintRows caps the table output.
const maxPrintRows = 20

// Print renders activities as an aligned table, capped at 20 rows.
func Print(w io.Writer, title string, activities []Activity) {
	if len(activities) == 0 {
		fmt.Fprintf(w, "%s: no activities\n", title)
		return
	}

	fmt.Fprintln(w, title)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tSPORT\tNAME\tDISTANCE\tDURATION\tELEVATION")
	shown := activities
	if len(shown) > maxPrintRows {
		shown = shown[:maxPrintRows]
	}
	for _, a := range shown {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.2f\t%.0f\t%.0f\n",
			a.ID, a.Date, a.SportType, a.Name, a.Distance, a.Duration, a.ElevationGain)
	}
	tw.Flush()

	if len(activities) > maxPrintRows {
		fmt.Fprintf(w, "Showing first %d of %d rows\n", maxPrintRows, len(activities))
	}
}
