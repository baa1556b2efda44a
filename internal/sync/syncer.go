// Package sync implements the incremental synchronization core: novelty
// detection against the cache table, per-activity detail processing, and
// the post-run reconciliation check.
package sync

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"strava-archive/internal/database"
	"strava-archive/internal/metrics"
	"strava-archive/internal/normalize"
	"strava-archive/internal/strava"
)

// Client is the remote collaborator consumed by the syncer. *strava.Client
// satisfies it; tests substitute fakes.
type Client interface {
	ListActivities(ctx context.Context) ([]strava.ActivitySummary, error)
	GetActivity(ctx context.Context, activityID int64) (*strava.ActivityDetail, error)
	GetActivityZones(ctx context.Context, activityID int64) ([]strava.ActivityZone, error)
	GetActivityStreams(ctx context.Context, activityID int64, keys []string, resolution string) (strava.StreamSet, error)
	GetGear(ctx context.Context, gearID string) (*strava.Gear, error)
}

// Syncer drives one full synchronization run
type Syncer struct {
	db     *database.DB
	client Client
	logger *slog.Logger
}

// New creates a Syncer. All collaborators are injected; the syncer holds
// no ambient state.
func New(db *database.DB, client Client, logger *slog.Logger) *Syncer {
	return &Syncer{db: db, client: client, logger: logger}
}

// Run executes one synchronization pass: list, gear sync, novelty
// filter, bulk activity insert, per-activity detail processing. The
// reconciliation check runs on every exit path, including failures.
func (s *Syncer) Run(ctx context.Context) error {
	start := time.Now()
	logger := s.logger.With("run_id", strings.Split(uuid.New().String(), "-")[0])

	// The discrepancy check is the run's one guaranteed observability
	// signal; it must fire whether or not processing completes.
	defer func() {
		s.checkDiscrepancies(logger)
		metrics.SyncRunDuration.Observe(time.Since(start).Seconds())
	}()

	summaries, err := s.client.ListActivities(ctx)
	if err != nil {
		metrics.SyncRunsTotal.WithLabelValues(metrics.RunFailed).Inc()
		metrics.RemoteFetchesTotal.WithLabelValues(metrics.ResourceListing, metrics.ResultFailure).Inc()
		return fmt.Errorf("failed to list activities: %w", err)
	}
	metrics.RemoteFetchesTotal.WithLabelValues(metrics.ResourceListing, metrics.ResultSuccess).Inc()
	metrics.ActivitiesListedTotal.Add(float64(len(summaries)))

	if len(summaries) == 0 {
		logger.Warn("no activities data fetched, nothing to process")
		metrics.SyncRunsTotal.WithLabelValues(metrics.RunNoData).Inc()
		return nil
	}

	logger.Info("fetched activity listing", "count", len(summaries))

	s.syncGear(ctx, logger, summaries)

	cachedIDs, err := s.db.CachedIDs()
	if err != nil {
		metrics.SyncRunsTotal.WithLabelValues(metrics.RunFailed).Inc()
		return fmt.Errorf("failed to load cached ids: %w", err)
	}

	listedIDs := make([]int64, len(summaries))
	byID := make(map[int64]strava.ActivitySummary, len(summaries))
	for i, summary := range summaries {
		listedIDs[i] = summary.ID
		byID[summary.ID] = summary
	}

	novelIDs := Novelty(listedIDs, IDSet(cachedIDs))
	if len(novelIDs) == 0 {
		logger.Info("no new activities")
		metrics.SyncRunsTotal.WithLabelValues(metrics.RunCompleted).Inc()
		return nil
	}

	logger.Info("new activities found", "count", len(novelIDs))
	metrics.NewActivitiesTotal.Add(float64(len(novelIDs)))

	// Bulk-insert activity rows before any detail processing so that a
	// crash mid-loop leaves listed-but-unclaimed ids visible to the
	// reconciliation check.
	s.insertActivities(logger, novelIDs, byID)

	for _, activityID := range novelIDs {
		s.processActivity(ctx, logger, activityID, byID[activityID])
	}

	metrics.SyncRunsTotal.WithLabelValues(metrics.RunCompleted).Inc()
	return nil
}

// insertActivities normalizes and inserts the activities rows for the
// novel ids. Normalization failures skip that row only.
func (s *Syncer) insertActivities(logger *slog.Logger, novelIDs []int64, byID map[int64]strava.ActivitySummary) {
	rows := make([]database.Row, 0, len(novelIDs))
	for _, id := range novelIDs {
		row, err := normalize.Activity(byID[id])
		if err != nil {
			logger.Error("failed to normalize activity", "activity_id", id, "error", err)
			continue
		}
		rows = append(rows, row)
	}

	if _, err := s.db.InsertIgnore(logger, "activities", rows); err != nil {
		logger.Error("failed to insert activities", "error", err)
	}
}

// processActivity claims the cache row for the id and then runs the
// detail pipeline. Any failure is contained to this activity; the claim
// always happens before the first fetch.
func (s *Syncer) processActivity(ctx context.Context, logger *slog.Logger, activityID int64, summary strava.ActivitySummary) {
	if err := s.db.ClaimActivity(activityID); err != nil {
		// Without the claim the attempt ordering invariant is broken, so
		// the id is left for the next run rather than processed unclaimed.
		logger.Error("failed to claim activity, skipping", "activity_id", activityID, "error", err)
		return
	}

	detail, err := s.client.GetActivity(ctx, activityID)
	if err != nil {
		logger.Error("failed to fetch activity detail", "activity_id", activityID, "error", err)
		metrics.RemoteFetchesTotal.WithLabelValues(metrics.ResourceDetail, metrics.ResultFailure).Inc()
		return
	}
	if detail == nil {
		logger.Warn("activity has no detailed data", "activity_id", activityID)
		metrics.RemoteFetchesTotal.WithLabelValues(metrics.ResourceDetail, metrics.ResultEmpty).Inc()
		return
	}
	metrics.RemoteFetchesTotal.WithLabelValues(metrics.ResourceDetail, metrics.ResultSuccess).Inc()

	logger.Info("processing new activity",
		"activity_id", activityID,
		"date", strings.Split(summary.StartDateLocal, "T")[0],
		"sport_type", detail.SportType,
		"name", detail.Name)

	s.processDetail(ctx, logger, activityID, detail)
}

// processDetail fetches the remaining sub-resources and inserts the
// best-effort entity bundle. Zones and streams are fetched behind
// independent guards so one's failure never suppresses the other.
func (s *Syncer) processDetail(ctx context.Context, logger *slog.Logger, activityID int64, detail *strava.ActivityDetail) {
	var zones []strava.ActivityZone
	if z, err := s.client.GetActivityZones(ctx, activityID); err != nil {
		logger.Error("failed to fetch activity zones", "activity_id", activityID, "error", err)
		metrics.RemoteFetchesTotal.WithLabelValues(metrics.ResourceZones, metrics.ResultFailure).Inc()
	} else {
		zones = z
		metrics.RemoteFetchesTotal.WithLabelValues(metrics.ResourceZones, metrics.ResultSuccess).Inc()
	}

	var streams strava.StreamSet
	if st, err := s.client.GetActivityStreams(ctx, activityID, strava.AllStreamKeys, ""); err != nil {
		logger.Error("failed to fetch activity streams", "activity_id", activityID, "error", err)
		metrics.RemoteFetchesTotal.WithLabelValues(metrics.ResourceStreams, metrics.ResultFailure).Inc()
	} else {
		streams = st
		metrics.RemoteFetchesTotal.WithLabelValues(metrics.ResourceStreams, metrics.ResultSuccess).Inc()
	}

	activityDate := ""
	if start, err := time.Parse(time.RFC3339, detail.StartDateLocal); err == nil {
		activityDate = start.Format("2006-01-02")
	}

	if row, err := normalize.Splits(detail, normalize.ZoneTypes(zones)); err != nil {
		logger.Error("failed to normalize splits", "activity_id", activityID, "error", err)
	} else if _, err := s.db.InsertIgnore(logger, "splits", []database.Row{row}); err != nil {
		logger.Error("failed to insert splits", "activity_id", activityID, "error", err)
	}

	if _, err := s.db.InsertIgnore(logger, "zones", normalize.Zones(activityID, zones)); err != nil {
		logger.Error("failed to insert zones", "activity_id", activityID, "error", err)
	}

	efforts := normalize.BestEfforts(activityID, activityDate, detail.BestEfforts)
	if _, err := s.db.InsertIgnore(logger, "best_efforts", efforts); err != nil {
		logger.Error("failed to insert best efforts", "activity_id", activityID, "error", err)
	}

	if streams != nil {
		if row, err := normalize.Streams(activityID, streams); err != nil {
			logger.Error("failed to normalize streams", "activity_id", activityID, "error", err)
		} else if _, err := s.db.InsertIgnore(logger, "streams", []database.Row{row}); err != nil {
			logger.Error("failed to insert streams", "activity_id", activityID, "error", err)
		}
	}
}

// syncGear fetches and inserts gear referenced by the listing that is
// not yet stored. Per-gear failures are contained.
func (s *Syncer) syncGear(ctx context.Context, logger *slog.Logger, summaries []strava.ActivitySummary) {
	known, err := s.db.GearIDs()
	if err != nil {
		logger.Error("failed to load known gear ids", "error", err)
		return
	}

	knownSet := make(map[string]struct{}, len(known))
	for _, id := range known {
		knownSet[id] = struct{}{}
	}

	var rows []database.Row
	seen := make(map[string]struct{})
	for _, summary := range summaries {
		gearID := summary.GearID
		if gearID == "" {
			continue
		}
		if _, ok := knownSet[gearID]; ok {
			continue
		}
		if _, ok := seen[gearID]; ok {
			continue
		}
		seen[gearID] = struct{}{}

		gear, err := s.client.GetGear(ctx, gearID)
		if err != nil {
			logger.Error("failed to fetch gear", "gear_id", gearID, "error", err)
			metrics.RemoteFetchesTotal.WithLabelValues(metrics.ResourceGear, metrics.ResultFailure).Inc()
			continue
		}
		metrics.RemoteFetchesTotal.WithLabelValues(metrics.ResourceGear, metrics.ResultSuccess).Inc()

		row, err := normalize.Gear(gear)
		if err != nil {
			logger.Error("failed to normalize gear", "gear_id", gearID, "error", err)
			continue
		}

		logger.Info("new gear detected",
			"gear_id", gearID,
			"gear_type", gearType(gearID),
			"name", row.Name,
			"distance_km", int(row.Distance/1000))
		rows = append(rows, row)
	}

	if _, err := s.db.InsertIgnore(logger, "gear", rows); err != nil {
		logger.Error("failed to insert gear", "error", err)
	}
}

// gearType classifies a gear id by its prefix convention
func gearType(gearID string) string {
	switch {
	case strings.HasPrefix(gearID, "b"):
		return "Bike"
	case strings.HasPrefix(gearID, "g"):
		return "Shoes"
	default:
		return "Unknown"
	}
}

// checkDiscrepancies compares the authoritative activity id list against
// the cache and reports drift. Detection only: it never repairs.
func (s *Syncer) checkDiscrepancies(logger *slog.Logger) {
	activityIDs, err := s.db.ActivityIDs()
	if err != nil {
		logger.Error("discrepancy check failed to load activity ids", "error", err)
		return
	}

	cachedIDs, err := s.db.CachedIDs()
	if err != nil {
		logger.Error("discrepancy check failed to load cached ids", "error", err)
		return
	}

	missing := Novelty(activityIDs, IDSet(cachedIDs))
	metrics.CacheDiscrepancies.Set(float64(len(missing)))

	if len(missing) > 0 {
		logger.Warn("activities not present in cache", "count", len(missing), "ids", missing)
	}
}
