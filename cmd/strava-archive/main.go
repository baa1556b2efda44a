package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"strava-archive/internal/config"
	"strava-archive/internal/database"
	"strava-archive/internal/health"
	"strava-archive/internal/report"
	"strava-archive/internal/strava"
	syncer "strava-archive/internal/sync"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads configuration, builds the logger, and opens the database.
// The caller must defer db.Close().
func setup() (*config.Config, *slog.Logger, *database.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}

	logger := newLogger(cfg.LogLevel)

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	return cfg, logger, db, nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level: lvl,
	}))
	slog.SetDefault(logger)
	return logger
}

// confirm asks a yes/no question on stdin. Anything other than y/Y is no.
func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(answer), "y")
}

var rootCmd = &cobra.Command{
	Use:   "strava-archive",
	Short: "Incremental Strava activity archive",
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch and store new activities",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, db, err := setup()
		if err != nil {
			return err
		}
		defer db.Close()

		if cfg.MetricsAddr != "" {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			go func() {
				logger.Info("metrics listener started", "addr", cfg.MetricsAddr)
				if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
					logger.Error("metrics listener failed", "error", err)
				}
			}()
		}

		client := strava.NewClient(cfg.StravaClientID, cfg.StravaClientSecret, cfg.StravaRefreshToken, logger)
		return syncer.New(db, client, logger).Run(cmd.Context())
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Manage health export data",
}

var healthImportCmd = &cobra.Command{
	Use:   "import [FILE]",
	Short: "Import an Apple Health export CSV",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, db, err := setup()
		if err != nil {
			return err
		}
		defer db.Close()

		path := cfg.HealthCSVPath
		if len(args) > 0 {
			path = args[0]
		}

		return health.New(db, logger).ImportFile(path)
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Filter and summarize stored activities",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, db, err := setup()
		if err != nil {
			return err
		}
		defer db.Close()

		activities, err := report.Load(db)
		if err != nil {
			return err
		}

		opts := report.FilterOptions{
			Date:           reportFlags.date,
			SportType:      reportFlags.sport,
			Years:          reportFlags.years,
			Months:         reportFlags.months,
			Weekdays:       reportFlags.weekdays,
			RangeColumn:    reportFlags.rangeColumn,
			ExcludeIndoor:  reportFlags.excludeIndoor,
			ExcludeOutdoor: reportFlags.excludeOutdoor,
		}
		if cmd.Flags().Changed("range-min") {
			opts.RangeMin = &reportFlags.rangeMin
		}
		if cmd.Flags().Changed("range-max") {
			opts.RangeMax = &reportFlags.rangeMax
		}

		filtered, err := report.Filter(activities, opts)
		if err != nil {
			return err
		}

		report.Print(os.Stdout, "Activities", filtered)

		if reportFlags.total != "" {
			if reportFlags.sport == "" {
				return fmt.Errorf("--total requires --sport")
			}
			total, err := report.TotalByMetric(filtered, reportFlags.total, reportFlags.sport)
			if err != nil {
				return err
			}
			fmt.Printf("Total %s for %s: %d\n", reportFlags.total, reportFlags.sport, total)
		}

		if reportFlags.monthly != "" {
			months, err := report.MonthlyCumulative(filtered, reportFlags.monthly)
			if err != nil {
				return err
			}
			fmt.Printf("Monthly %s:\n", reportFlags.monthly)
			for _, m := range months {
				fmt.Printf("  %s\t%.1f\t(cumulative %.1f)\n", m.Month, m.Total, m.Cumulative)
			}
		}

		return nil
	},
}

var reportFlags struct {
	date           string
	sport          string
	years          []int
	months         []string
	weekdays       []string
	rangeColumn    string
	rangeMin       float64
	rangeMax       float64
	excludeIndoor  bool
	excludeOutdoor bool
	total          string
	monthly        string
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the processed-activity cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the cache, making every activity novel again",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, logger, db, err := setup()
		if err != nil {
			return err
		}
		defer db.Close()

		if !confirm("Clear the whole cache? Every listed activity will be re-processed on the next sync") {
			fmt.Println("Aborted.")
			return nil
		}

		if err := db.ClearCache(); err != nil {
			return err
		}
		logger.Info("cache cleared")
		return nil
	},
}

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manual database maintenance",
}

var dbDropTableCmd = &cobra.Command{
	Use:   "drop-table TABLE",
	Short: "Drop one table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, logger, db, err := setup()
		if err != nil {
			return err
		}
		defer db.Close()

		table := args[0]
		if !confirm(fmt.Sprintf("Drop table %q and all its rows?", table)) {
			fmt.Println("Aborted.")
			return nil
		}

		if err := db.DropTable(table); err != nil {
			return err
		}
		logger.Info("table dropped", "table", table)
		return nil
	},
}

var dbDeleteLastCmd = &cobra.Command{
	Use:   "delete-last",
	Short: "Delete the most recent activity from activities and cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, logger, db, err := setup()
		if err != nil {
			return err
		}
		defer db.Close()

		if !confirm("Delete the last row from activities and cache?") {
			fmt.Println("Aborted.")
			return nil
		}

		for _, table := range []string{"activities", "cache"} {
			if err := db.DeleteLastRow(table); err != nil {
				return err
			}
			logger.Info("last row deleted", "table", table)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)

	healthCmd.AddCommand(healthImportCmd)
	rootCmd.AddCommand(healthCmd)

	reportCmd.Flags().StringVar(&reportFlags.date, "date", "", "Exact date (YYYY-MM-DD)")
	reportCmd.Flags().StringVar(&reportFlags.sport, "sport", "", "Sport type, e.g. Run")
	reportCmd.Flags().IntSliceVar(&reportFlags.years, "year", nil, "Years to include")
	reportCmd.Flags().StringSliceVar(&reportFlags.months, "month", nil, "Month abbreviations to include, e.g. Jan")
	reportCmd.Flags().StringSliceVar(&reportFlags.weekdays, "weekday", nil, "Weekday abbreviations to include, e.g. Mon")
	reportCmd.Flags().StringVar(&reportFlags.rangeColumn, "range-column", "", "Numeric column to range-filter on")
	reportCmd.Flags().Float64Var(&reportFlags.rangeMin, "range-min", 0, "Minimum value (inclusive)")
	reportCmd.Flags().Float64Var(&reportFlags.rangeMax, "range-max", 0, "Maximum value (inclusive)")
	reportCmd.Flags().BoolVar(&reportFlags.excludeIndoor, "exclude-indoor", false, "Exclude indoor activities")
	reportCmd.Flags().BoolVar(&reportFlags.excludeOutdoor, "exclude-outdoor", false, "Exclude outdoor activities")
	reportCmd.Flags().StringVar(&reportFlags.total, "total", "", "Print the total of a metric (distance, duration, elevation_gain); requires --sport")
	reportCmd.Flags().StringVar(&reportFlags.monthly, "monthly", "", "Print monthly cumulative sums of a metric")
	rootCmd.AddCommand(reportCmd)

	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)

	dbCmd.AddCommand(dbDropTableCmd)
	dbCmd.AddCommand(dbDeleteLastCmd)
	rootCmd.AddCommand(dbCmd)
}
