// Package report loads stored activities and provides the filtering and
// aggregation used by the report command.
package report

import (
	"fmt"
	"time"
)

// Month and weekday abbreviations accepted by filters, in calendar order.
var (
	AllMonths   = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
	AllWeekdays = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
)

// rangeColumns are the numeric fields the range filter may target.
var rangeColumns = map[string]func(Activity) float64{
	"distance":       func(a Activity) float64 { return a.Distance },
	"duration":       func(a Activity) float64 { return a.Duration },
	"elevation_gain": func(a Activity) float64 { return a.ElevationGain },
	"average_speed":  func(a Activity) float64 { return a.AverageSpeed },
}

// FilterOptions selects a subset of activities. Zero values mean "no
// constraint"; Indoor and Outdoor both default to included.
type FilterOptions struct {
	Date      string // exact day, YYYY-MM-DD
	SportType string
	Years     []int
	Months    []string // abbreviations, e.g. "Jan"
	Weekdays  []string // abbreviations, e.g. "Mon"

	RangeColumn string
	RangeMin    *float64
	RangeMax    *float64

	ExcludeIndoor  bool
	ExcludeOutdoor bool
}

// Filter applies the options in a fixed order, returning early as soon
// as a step empties the set: date, sport type, time period, numeric
// range, location.
func Filter(activities []Activity, opts FilterOptions) ([]Activity, error) {
	result := activities

	if opts.Date != "" {
		if _, err := time.Parse("2006-01-02", opts.Date); err != nil {
			return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", opts.Date)
		}
		result = keep(result, func(a Activity) bool { return a.Date == opts.Date })
		if len(result) == 0 {
			return nil, nil
		}
	}

	if opts.SportType != "" {
		result = keep(result, func(a Activity) bool { return a.SportType == opts.SportType })
		if len(result) == 0 {
			return nil, nil
		}
	}

	result, err := filterTimePeriod(result, opts.Years, opts.Months, opts.Weekdays)
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, nil
	}

	if opts.RangeColumn != "" {
		value, ok := rangeColumns[opts.RangeColumn]
		if !ok {
			return nil, fmt.Errorf("unknown range column %q", opts.RangeColumn)
		}
		result = keep(result, func(a Activity) bool {
			v := value(a)
			if opts.RangeMin != nil && v < *opts.RangeMin {
				return false
			}
			if opts.RangeMax != nil && v > *opts.RangeMax {
				return false
			}
			return true
		})
		if len(result) == 0 {
			return nil, nil
		}
	}

	if opts.ExcludeIndoor {
		result = keep(result, func(a Activity) bool { return !a.Indoor })
	}
	if opts.ExcludeOutdoor {
		result = keep(result, func(a Activity) bool { return a.Indoor })
	}

	return result, nil
}

func filterTimePeriod(activities []Activity, years []int, months, weekdays []string) ([]Activity, error) {
	result := activities

	if len(years) > 0 {
		yearSet := make(map[int]struct{}, len(years))
		for _, y := range years {
			yearSet[y] = struct{}{}
		}
		result = keep(result, func(a Activity) bool {
			_, ok := yearSet[a.year()]
			return ok
		})
	}

	if len(months) > 0 {
		monthSet, err := abbrSet(months, AllMonths, "month")
		if err != nil {
			return nil, err
		}
		result = keep(result, func(a Activity) bool {
			_, ok := monthSet[a.Month]
			return ok
		})
	}

	if len(weekdays) > 0 {
		weekdaySet, err := abbrSet(weekdays, AllWeekdays, "weekday")
		if err != nil {
			return nil, err
		}
		result = keep(result, func(a Activity) bool {
			_, ok := weekdaySet[a.weekdayAbbr()]
			return ok
		})
	}

	return result, nil
}

// abbrSet validates the requested abbreviations against the known list
// and returns them as a set.
func abbrSet(requested, known []string, kind string) (map[string]struct{}, error) {
	knownSet := make(map[string]struct{}, len(known))
	for _, k := range known {
		knownSet[k] = struct{}{}
	}

	set := make(map[string]struct{}, len(requested))
	for _, r := range requested {
		if _, ok := knownSet[r]; !ok {
			return nil, fmt.Errorf("invalid %s abbreviation %q", kind, r)
		}
		set[r] = struct{}{}
	}
	return set, nil
}

func keep(activities []Activity, pred func(Activity) bool) []Activity {
	var out []Activity
	for _, a := range activities {
		if pred(a) {
			out = append(out, a)
		}
	}
	return out
}
