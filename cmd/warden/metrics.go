package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/warden/internal/backlog"
	"github.com/fyrsmithlabs/warden/internal/metrics"
	"github.com/fyrsmithlabs/warden/internal/report"
	"github.com/fyrsmithlabs/warden/internal/session"
)

var metricsJSON bool

// recurrenceWindow is how far back the error-recurrence dimension looks
// for fix commits.
const recurrenceWindow = 30 * 24 * time.Hour

func init() {
	rootCmd.AddCommand(metricsCmd)
	metricsCmd.AddCommand(metricsReportCmd)

	metricsReportCmd.Flags().BoolVar(&metricsJSON, "json", false, "output results as JSON")
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Hook adoption and process maturity metrics",
}

var metricsReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Score process maturity from local evidence",
	Long: `Score process maturity from the evidence warden can observe:
delegation records, fix-commit recurrence, documentation coverage, test
freshness, backlog atomicity, and hook adoption. Missing evidence
scores its dimension low instead of failing the report.

Examples:
  warden metrics report
  warden metrics report --json`,
	RunE: runMetricsReport,
}

func runMetricsReport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	defer logger.Sync()

	root, repo := workspace()
	store := session.NewStore(cfg.State.Dir, root, cfg.Session, logger)
	activity := metrics.NewActivity(cfg.State.Dir, logger)

	in := metrics.Inputs{
		Tests:        store.Tests(),
		TestValidity: cfg.Quality.TestValidity.Duration(),
		Activity:     activity.Load(),
	}

	if repo != nil {
		stats, err := repo.FixRecurrence(ctx, time.Now().Add(-recurrenceWindow))
		if err != nil {
			logger.Warn(ctx, "failed to read fix history", zap.Error(err))
		} else {
			in.Recurrence = stats
		}
	}

	backlogStore := backlog.NewStore(cfg.State.Dir, logger)
	audit, err := backlogStore.LoadReport()
	if err != nil {
		logger.Warn(ctx, "failed to load atomicity report", zap.Error(err))
	} else {
		in.Audit = audit
	}

	delegation, err := metrics.LoadDelegation(cfg.State.Dir)
	if err != nil {
		logger.Warn(ctx, "failed to load delegation metrics", zap.Error(err))
	} else {
		in.Delegation = delegation
	}

	docs, err := metrics.LoadDocsCoverage(cfg.State.Dir)
	if err != nil {
		logger.Warn(ctx, "failed to load docs coverage", zap.Error(err))
	} else {
		in.Docs = docs
	}

	maturity := metrics.Calculate(time.Now(), in)

	if metricsJSON {
		return outputJSON(struct {
			Maturity *metrics.MaturityReport   `json:"maturity"`
			Activity *metrics.ActivityDocument `json:"activity"`
		}{maturity, in.Activity})
	}

	fmt.Println(report.MaturityTable(maturity))
	fmt.Println()
	fmt.Println(report.ActivityTable(in.Activity))
	return nil
}
