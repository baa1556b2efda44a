package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"strava-archive/internal/database"
	"strava-archive/internal/strava"
)

// fakeClient is a scriptable Client. Nil function fields fall back to
// empty successful responses.
type fakeClient struct {
	listActivities func(ctx context.Context) ([]strava.ActivitySummary, error)
	getActivity    func(ctx context.Context, id int64) (*strava.ActivityDetail, error)
	getZones       func(ctx context.Context, id int64) ([]strava.ActivityZone, error)
	getStreams     func(ctx context.Context, id int64, keys []string, resolution string) (strava.StreamSet, error)
	getGear        func(ctx context.Context, gearID string) (*strava.Gear, error)

	detailCalls []int64
}

func (f *fakeClient) ListActivities(ctx context.Context) ([]strava.ActivitySummary, error) {
	if f.listActivities != nil {
		return f.listActivities(ctx)
	}
	return nil, nil
}

func (f *fakeClient) GetActivity(ctx context.Context, id int64) (*strava.ActivityDetail, error) {
	f.detailCalls = append(f.detailCalls, id)
	if f.getActivity != nil {
		return f.getActivity(ctx, id)
	}
	return nil, nil
}

func (f *fakeClient) GetActivityZones(ctx context.Context, id int64) ([]strava.ActivityZone, error) {
	if f.getZones != nil {
		return f.getZones(ctx, id)
	}
	return nil, nil
}

func (f *fakeClient) GetActivityStreams(ctx context.Context, id int64, keys []string, resolution string) (strava.StreamSet, error) {
	if f.getStreams != nil {
		return f.getStreams(ctx, id, keys, resolution)
	}
	return nil, nil
}

func (f *fakeClient) GetGear(ctx context.Context, gearID string) (*strava.Gear, error) {
	if f.getGear != nil {
		return f.getGear(ctx, gearID)
	}
	return nil, nil
}

func openTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.Open(t.TempDir() + "/test.db")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

func summary(id int64, date string) strava.ActivitySummary {
	return strava.ActivitySummary{
		ID:             id,
		Name:           fmt.Sprintf("Activity %d", id),
		SportType:      "Run",
		StartDateLocal: date,
		Distance:       5000,
		MovingTime:     1800,
		ElapsedTime:    1900,
	}
}

func detailFor(s strava.ActivitySummary) *strava.ActivityDetail {
	return &strava.ActivityDetail{
		ActivitySummary: s,
		SplitsMetric:    json.RawMessage(`[{"split":1}]`),
		BestEfforts: []strava.BestEffort{
			{Name: "1k", Distance: 1000, ElapsedTime: 240, StartDateLocal: s.StartDateLocal},
		},
	}
}

func tableCount(t *testing.T, db *database.DB, table string) int64 {
	t.Helper()
	count, err := db.RowCount(table)
	if err != nil {
		t.Fatalf("Failed to count %s rows: %v", table, err)
	}
	return count
}

func TestRunEndToEnd(t *testing.T) {
	db := openTestDB(t)

	listing := []strava.ActivitySummary{
		summary(101, "2024-03-15T07:00:00Z"),
		summary(102, "2024-03-16T07:00:00Z"),
	}
	client := &fakeClient{
		listActivities: func(ctx context.Context) ([]strava.ActivitySummary, error) {
			return listing, nil
		},
		getActivity: func(ctx context.Context, id int64) (*strava.ActivityDetail, error) {
			for _, s := range listing {
				if s.ID == id {
					return detailFor(s), nil
				}
			}
			return nil, nil
		},
		getZones: func(ctx context.Context, id int64) ([]strava.ActivityZone, error) {
			return []strava.ActivityZone{
				{Type: "heartrate", DistributionBuckets: []strava.ZoneBucket{
					{Min: 0, Max: 120, Time: 600},
					{Min: 120, Max: 150, Time: 900},
				}},
			}, nil
		},
		getStreams: func(ctx context.Context, id int64, keys []string, resolution string) (strava.StreamSet, error) {
			return strava.StreamSet{
				"time":            {Data: json.RawMessage(`[0,1,2]`)},
				"velocity_smooth": {Data: json.RawMessage(`[2.5,2.6,2.7]`)},
			}, nil
		},
	}

	s := New(db, client, slog.Default())
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	for table, want := range map[string]int64{
		"activities":   2,
		"cache":        2,
		"splits":       2,
		"zones":        4,
		"best_efforts": 2,
		"streams":      2,
	} {
		if got := tableCount(t, db, table); got != want {
			t.Errorf("Expected %d rows in %s, got %d", want, table, got)
		}
	}

	// Second run with the same listing must be a full no-op.
	client.detailCalls = nil
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Second run failed: %v", err)
	}
	if len(client.detailCalls) != 0 {
		t.Errorf("Expected no detail fetches on second run, got %v", client.detailCalls)
	}
	if got := tableCount(t, db, "activities"); got != 2 {
		t.Errorf("Expected activities unchanged at 2, got %d", got)
	}
}

func TestRunWithPartialCache(t *testing.T) {
	db := openTestDB(t)

	// 101 was attempted on an earlier run; only 102 is novel.
	if err := db.ClaimActivity(101); err != nil {
		t.Fatalf("Failed to pre-claim 101: %v", err)
	}

	s102 := summary(102, "2024-03-16T07:00:00Z")
	client := &fakeClient{
		listActivities: func(ctx context.Context) ([]strava.ActivitySummary, error) {
			return []strava.ActivitySummary{summary(101, "2024-03-15T07:00:00Z"), s102}, nil
		},
		getActivity: func(ctx context.Context, id int64) (*strava.ActivityDetail, error) {
			return detailFor(s102), nil
		},
		getStreams: func(ctx context.Context, id int64, keys []string, resolution string) (strava.StreamSet, error) {
			// Full set except heartrate.
			return strava.StreamSet{
				"time":            {Data: json.RawMessage(`[0,1,2]`)},
				"distance":        {Data: json.RawMessage(`[0,3,6]`)},
				"latlng":          {Data: json.RawMessage(`[[52.3,4.8]]`)},
				"altitude":        {Data: json.RawMessage(`[1,2,3]`)},
				"velocity_smooth": {Data: json.RawMessage(`[2.5,2.6,2.7]`)},
				"cadence":         {Data: json.RawMessage(`[80,81,82]`)},
				"watts":           {Data: json.RawMessage(`[200,210,220]`)},
			}, nil
		},
	}

	if err := New(db, client, slog.Default()).Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(client.detailCalls) != 1 || client.detailCalls[0] != 102 {
		t.Errorf("Expected detail fetch only for 102, got %v", client.detailCalls)
	}

	cached, err := db.CachedIDs()
	if err != nil {
		t.Fatalf("Failed to load cached ids: %v", err)
	}
	if len(cached) != 2 {
		t.Errorf("Expected cache {101, 102}, got %v", cached)
	}

	for table, want := range map[string]int64{
		"activities":   1,
		"best_efforts": 1,
		"zones":        0,
		"streams":      1,
	} {
		if got := tableCount(t, db, table); got != want {
			t.Errorf("Expected %d rows in %s, got %d", want, table, got)
		}
	}

	var heartrate, speed string
	err = db.Conn().QueryRow("SELECT heartrate, speed FROM streams WHERE id = 102").Scan(&heartrate, &speed)
	if err != nil {
		t.Fatalf("Failed to read streams row: %v", err)
	}
	if heartrate != "[0]" {
		t.Errorf("Expected heartrate placeholder [0], got %s", heartrate)
	}
	if speed != "[2.5,2.6,2.7]" {
		t.Errorf("Expected velocity_smooth stored as speed, got %s", speed)
	}
}

func TestRunListingFailure(t *testing.T) {
	db := openTestDB(t)
	client := &fakeClient{
		listActivities: func(ctx context.Context) ([]strava.ActivitySummary, error) {
			return nil, errors.New("remote down")
		},
	}

	err := New(db, client, slog.Default()).Run(context.Background())
	if err == nil {
		t.Fatal("Expected error when listing fails")
	}
	if got := tableCount(t, db, "activities"); got != 0 {
		t.Errorf("Expected no activities stored, got %d", got)
	}
}

func TestRunEmptyListing(t *testing.T) {
	db := openTestDB(t)
	client := &fakeClient{}

	if err := New(db, client, slog.Default()).Run(context.Background()); err != nil {
		t.Fatalf("Expected empty listing to be a clean no-op, got %v", err)
	}
	if len(client.detailCalls) != 0 {
		t.Errorf("Expected no detail fetches, got %v", client.detailCalls)
	}
}

func TestClaimHappensBeforeDetailFetch(t *testing.T) {
	db := openTestDB(t)

	// Every detail fetch fails. The claim must already be committed, so
	// the activity is not retried on the next run.
	client := &fakeClient{
		listActivities: func(ctx context.Context) ([]strava.ActivitySummary, error) {
			return []strava.ActivitySummary{summary(7, "2024-03-15T07:00:00Z")}, nil
		},
		getActivity: func(ctx context.Context, id int64) (*strava.ActivityDetail, error) {
			cached, err := db.CachedIDs()
			if err != nil {
				t.Fatalf("Failed to read cache mid-fetch: %v", err)
			}
			if len(cached) != 1 || cached[0] != 7 {
				t.Errorf("Expected id 7 claimed before detail fetch, cache is %v", cached)
			}
			return nil, errors.New("detail fetch failed")
		},
	}

	s := New(db, client, slog.Default())
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if got := tableCount(t, db, "cache"); got != 1 {
		t.Errorf("Expected claim to survive detail failure, cache count %d", got)
	}
	if got := tableCount(t, db, "splits"); got != 0 {
		t.Errorf("Expected no splits for failed detail, got %d", got)
	}

	// The failed activity stays attempted: no re-fetch on the next run.
	client.detailCalls = nil
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Second run failed: %v", err)
	}
	if len(client.detailCalls) != 0 {
		t.Errorf("Expected no retry for claimed activity, got %v", client.detailCalls)
	}
}

func TestZonesAndStreamsFailIndependently(t *testing.T) {
	db := openTestDB(t)

	client := &fakeClient{
		listActivities: func(ctx context.Context) ([]strava.ActivitySummary, error) {
			return []strava.ActivitySummary{summary(9, "2024-03-15T07:00:00Z")}, nil
		},
		getActivity: func(ctx context.Context, id int64) (*strava.ActivityDetail, error) {
			return detailFor(summary(9, "2024-03-15T07:00:00Z")), nil
		},
		getZones: func(ctx context.Context, id int64) ([]strava.ActivityZone, error) {
			return nil, errors.New("zones unavailable")
		},
		getStreams: func(ctx context.Context, id int64, keys []string, resolution string) (strava.StreamSet, error) {
			return strava.StreamSet{"time": {Data: json.RawMessage(`[0,1]`)}}, nil
		},
	}

	if err := New(db, client, slog.Default()).Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if got := tableCount(t, db, "zones"); got != 0 {
		t.Errorf("Expected no zone rows after zones failure, got %d", got)
	}
	if got := tableCount(t, db, "streams"); got != 1 {
		t.Errorf("Expected streams row despite zones failure, got %d", got)
	}
	if got := tableCount(t, db, "splits"); got != 1 {
		t.Errorf("Expected splits row despite zones failure, got %d", got)
	}
}

func TestGearSync(t *testing.T) {
	db := openTestDB(t)

	s1 := summary(1, "2024-03-15T07:00:00Z")
	s1.GearID = "g123"
	s2 := summary(2, "2024-03-16T07:00:00Z")
	s2.GearID = "g123" // same gear referenced twice

	gearFetches := 0
	client := &fakeClient{
		listActivities: func(ctx context.Context) ([]strava.ActivitySummary, error) {
			return []strava.ActivitySummary{s1, s2}, nil
		},
		getGear: func(ctx context.Context, gearID string) (*strava.Gear, error) {
			gearFetches++
			return &strava.Gear{ID: gearID, Name: "Trail Shoes", Distance: 100000}, nil
		},
	}

	syncer := New(db, client, slog.Default())
	if err := syncer.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if gearFetches != 1 {
		t.Errorf("Expected 1 gear fetch for duplicate references, got %d", gearFetches)
	}
	if got := tableCount(t, db, "gear"); got != 1 {
		t.Errorf("Expected 1 gear row, got %d", got)
	}

	// Known gear is not re-fetched on later runs.
	if err := syncer.Run(context.Background()); err != nil {
		t.Fatalf("Second run failed: %v", err)
	}
	if gearFetches != 1 {
		t.Errorf("Expected no gear fetch on second run, got %d total", gearFetches)
	}
}

func TestCheckDiscrepancies(t *testing.T) {
	db := openTestDB(t)
	logger := slog.Default()

	rows := []database.Row{
		database.ActivityRow{ID: 1, Date: "2024-01-01", Month: "01", DayOfWeek: "Monday", LatLng: "[]"},
		database.ActivityRow{ID: 2, Date: "2024-01-02", Month: "01", DayOfWeek: "Tuesday", LatLng: "[]"},
		database.ActivityRow{ID: 3, Date: "2024-01-03", Month: "01", DayOfWeek: "Wednesday", LatLng: "[]"},
	}
	if _, err := db.InsertIgnore(logger, "activities", rows); err != nil {
		t.Fatalf("Failed to insert activities: %v", err)
	}
	for _, id := range []int64{1, 2} {
		if err := db.ClaimActivity(id); err != nil {
			t.Fatalf("Failed to claim %d: %v", id, err)
		}
	}

	s := New(db, &fakeClient{}, logger)
	s.checkDiscrepancies(logger)

	// Detection only: the missing id must not be repaired into the cache.
	cached, err := db.CachedIDs()
	if err != nil {
		t.Fatalf("Failed to load cached ids: %v", err)
	}
	if len(cached) != 2 {
		t.Errorf("Expected cache untouched with 2 ids, got %v", cached)
	}
}
