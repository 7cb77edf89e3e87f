package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/warden/internal/report"
	"github.com/fyrsmithlabs/warden/internal/session"
)

var sessionJSON bool

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionShowCmd)
	sessionCmd.AddCommand(sessionResetCmd)

	sessionShowCmd.Flags().BoolVar(&sessionJSON, "json", false, "output results as JSON")
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect and reset per-workspace session state",
	Long: `Inspect and reset the session records gates read and write.

Records are keyed by workspace root and expire per concern: edits,
tests, scan, review.

Examples:
  warden session show
  warden session show tests --json
  warden session reset edits`,
}

var sessionShowCmd = &cobra.Command{
	Use:   "show [concern]",
	Short: "Show session records",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSessionShow,
}

var sessionResetCmd = &cobra.Command{
	Use:   "reset [concern]",
	Short: "Reset session records",
	Long: `Reset session records for the current workspace.

With no argument every concern is cleared and gates start from a clean
slate on the next event.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSessionReset,
}

func runSessionShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	defer logger.Sync()

	store := newSessionStore(cfg, logger)
	concerns := session.Concerns()
	if len(args) == 1 {
		concern, err := parseConcern(args[0])
		if err != nil {
			return err
		}
		concerns = []session.Concern{concern}
	}

	if sessionJSON {
		out := make(map[string]any, len(concerns))
		for _, concern := range concerns {
			out[string(concern)] = concernRecord(store, concern)
		}
		return outputJSON(out)
	}

	now := time.Now()
	for i, concern := range concerns {
		if i > 0 {
			fmt.Println()
		}
		fmt.Printf("%s:\n%s\n", concern, indent(concernSummary(store, concern, now), "  "))
	}
	return nil
}

func runSessionReset(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	defer logger.Sync()

	store := newSessionStore(cfg, logger)
	if len(args) == 1 {
		concern, err := parseConcern(args[0])
		if err != nil {
			return err
		}
		if err := store.Reset(concern); err != nil {
			return err
		}
		fmt.Printf("Reset %s session state.\n", concern)
		return nil
	}

	if err := store.ResetAll(); err != nil {
		return err
	}
	fmt.Println("Reset all session state.")
	return nil
}

func parseConcern(name string) (session.Concern, error) {
	concern := session.Concern(name)
	for _, known := range session.Concerns() {
		if concern == known {
			return concern, nil
		}
	}
	return "", fmt.Errorf("unknown concern %q (valid: edits, tests, scan, review)", name)
}

func concernRecord(store *session.Store, concern session.Concern) any {
	switch concern {
	case session.ConcernEdits:
		return store.Edits()
	case session.ConcernTests:
		return store.Tests()
	case session.ConcernScan:
		return store.Scan()
	default:
		return store.Review()
	}
}

func concernSummary(store *session.Store, concern session.Concern, now time.Time) string {
	switch concern {
	case session.ConcernEdits:
		return report.EditsSummary(store.Edits(), now)
	case session.ConcernTests:
		return report.TestsSummary(store.Tests(), now)
	case session.ConcernScan:
		return report.ScanSummary(store.Scan())
	default:
		return report.ReviewSummary(store.Review())
	}
}

// indent prefixes every non-empty line of s.
func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}
