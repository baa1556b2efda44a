package strava

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// AllStreamKeys are the series this program requests and stores
var AllStreamKeys = []string{
	"time", "distance", "latlng", "altitude",
	"velocity_smooth", "heartrate", "cadence", "watts",
}

const (
	listPerPage      = 200 // Strava max
	streamResolution = "medium"
)

// ListActivities fetches the athlete's full activity listing, paging
// until a short page is returned. Listing order is preserved.
func (c *Client) ListActivities(ctx context.Context) ([]ActivitySummary, error) {
	var all []ActivitySummary

	for page := 1; ; page++ {
		params := url.Values{
			"page":     {strconv.Itoa(page)},
			"per_page": {strconv.Itoa(listPerPage)},
		}

		body, err := c.get(ctx, "/athlete/activities?"+params.Encode())
		if err != nil {
			return nil, fmt.Errorf("failed to list activities (page %d): %w", page, err)
		}

		var activities []ActivitySummary
		if err := json.Unmarshal(body, &activities); err != nil {
			return nil, fmt.Errorf("failed to unmarshal activities: %w", err)
		}

		all = append(all, activities...)

		if len(activities) < listPerPage {
			break
		}

		// Small delay between pages to be respectful of rate limits
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}

	return all, nil
}

// GetActivity fetches the detail payload for one activity. An empty
// response body is an explicit empty outcome, returned as (nil, nil),
// not an error.
func (c *Client) GetActivity(ctx context.Context, activityID int64) (*ActivityDetail, error) {
	body, err := c.get(ctx, fmt.Sprintf("/activities/%d", activityID))
	if err != nil {
		return nil, fmt.Errorf("failed to get activity %d: %w", activityID, err)
	}

	if isEmptyPayload(body) {
		return nil, nil
	}

	var detail ActivityDetail
	if err := json.Unmarshal(body, &detail); err != nil {
		return nil, fmt.Errorf("failed to unmarshal activity %d: %w", activityID, err)
	}

	return &detail, nil
}

// GetActivityZones fetches the zone distributions for one activity. An
// activity without zones yields an empty slice.
func (c *Client) GetActivityZones(ctx context.Context, activityID int64) ([]ActivityZone, error) {
	body, err := c.get(ctx, fmt.Sprintf("/activities/%d/zones", activityID))
	if err != nil {
		return nil, fmt.Errorf("failed to get zones for activity %d: %w", activityID, err)
	}

	if isEmptyPayload(body) {
		return nil, nil
	}

	var zones []ActivityZone
	if err := json.Unmarshal(body, &zones); err != nil {
		return nil, fmt.Errorf("failed to unmarshal zones for activity %d: %w", activityID, err)
	}

	return zones, nil
}

// GetActivityStreams fetches the requested series for one activity,
// keyed by type. Series absent from the response are simply missing
// from the returned set.
func (c *Client) GetActivityStreams(ctx context.Context, activityID int64, keys []string, resolution string) (StreamSet, error) {
	if len(keys) == 0 {
		keys = AllStreamKeys
	}
	if resolution == "" {
		resolution = streamResolution
	}

	params := url.Values{
		"keys":        {strings.Join(keys, ",")},
		"resolution":  {resolution},
		"key_by_type": {"true"},
	}

	body, err := c.get(ctx, fmt.Sprintf("/activities/%d/streams?%s", activityID, params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to get streams for activity %d: %w", activityID, err)
	}

	if isEmptyPayload(body) {
		return nil, nil
	}

	var streams StreamSet
	if err := json.Unmarshal(body, &streams); err != nil {
		return nil, fmt.Errorf("failed to unmarshal streams for activity %d: %w", activityID, err)
	}

	return streams, nil
}

// GetGear fetches one piece of gear by its id
func (c *Client) GetGear(ctx context.Context, gearID string) (*Gear, error) {
	body, err := c.get(ctx, "/gear/"+url.PathEscape(gearID))
	if err != nil {
		return nil, fmt.Errorf("failed to get gear %s: %w", gearID, err)
	}

	if isEmptyPayload(body) {
		return nil, nil
	}

	var gear Gear
	if err := json.Unmarshal(body, &gear); err != nil {
		return nil, fmt.Errorf("failed to unmarshal gear %s: %w", gearID, err)
	}

	return &gear, nil
}

// isEmptyPayload reports whether the body carries no usable record
func isEmptyPayload(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	switch string(trimmed) {
	case "", "null", "{}", "[]":
		return true
	}
	return false
}
