package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/warden/internal/backlog"
	"github.com/fyrsmithlabs/warden/internal/config"
	"github.com/fyrsmithlabs/warden/internal/logging"
	"github.com/fyrsmithlabs/warden/internal/report"
	"github.com/fyrsmithlabs/warden/internal/task"
)

var (
	backlogAddFile string
	backlogJSON    bool
	auditWatch     bool
)

func init() {
	rootCmd.AddCommand(backlogCmd)
	backlogCmd.AddCommand(backlogAddCmd)
	backlogCmd.AddCommand(backlogStatusCmd)
	backlogCmd.AddCommand(backlogAuditCmd)
	backlogCmd.AddCommand(backlogUpdateCmd)

	backlogCmd.PersistentFlags().BoolVar(&backlogJSON, "json", false, "output results as JSON")
	backlogAddCmd.Flags().StringVar(&backlogAddFile, "file", "-", "task batch file, - for stdin")
	backlogAuditCmd.Flags().BoolVar(&auditWatch, "watch", false, "re-audit whenever the backlog changes")
}

var (
	errBatchRejected = errors.New("batch rejected")
	errAuditFailed   = errors.New("atomicity audit failed")
)

var backlogCmd = &cobra.Command{
	Use:   "backlog",
	Short: "Manage the delegable task backlog",
	Long: `Manage the delegable task backlog.

Every task entering the backlog must satisfy the atomicity constraints:
few files, a bounded diff, a bounded effort estimate, a test command,
and complete context refs for remote assignees.

Examples:
  # Admit a batch
  warden backlog add --file batch.json

  # Inspect and audit
  warden backlog status
  warden backlog audit --watch`,
}

var backlogAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Admit a batch of tasks",
	Long: `Admit a batch of tasks into the backlog.

The batch is JSON: either {"tasks": [...]} or a bare task array.
Admission is all-or-nothing; one violation rejects the whole batch and
leaves the backlog untouched.

Examples:
  # From a file
  warden backlog add --file batch.json

  # From stdin
  planner | warden backlog add`,
	RunE: runBacklogAdd,
}

var backlogStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show backlog contents and counts",
	RunE:  runBacklogStatus,
}

var backlogAuditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Audit every task against the atomicity constraints",
	Long: `Audit every persisted task and regenerate the atomicity report.

Exit 0 when the backlog is compliant (an empty backlog counts), 1 when
any task violates a constraint. With --watch the audit reruns whenever
the backlog document changes; policy failures keep the watch alive.

Examples:
  warden backlog audit
  warden backlog audit --watch
  warden backlog audit --json`,
	RunE: runBacklogAudit,
}

var backlogUpdateCmd = &cobra.Command{
	Use:   "update <id> <status>",
	Short: "Move a task through its lifecycle",
	Long: `Move a task to a new status.

Legal moves: open to in_progress, in_progress to done or failed.
Nothing moves backwards.

Examples:
  warden backlog update 7f3a2c1e in_progress
  warden backlog update 7f3a2c1e done`,
	Args: cobra.ExactArgs(2),
	RunE: runBacklogUpdate,
}

// newDispatcher wires the backlog store and validator from config. The
// store is returned too for callers that need its paths.
func newDispatcher(cfg *config.Config, logger *logging.Logger) (*backlog.Dispatcher, *backlog.Store) {
	store := backlog.NewStore(cfg.State.Dir, logger)
	validator := task.NewValidator(task.Limits{
		MaxFilesTouched: cfg.Backlog.MaxFilesTouched,
		MaxLinesChanged: cfg.Backlog.MaxLinesChanged,
		MaxEffortMins:   cfg.Backlog.MaxEffortMins,
		RemoteAssignees: cfg.Backlog.RemoteAssignees,
	})
	return backlog.NewDispatcher(store, validator, logger), store
}

func runBacklogAdd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	defer logger.Sync()

	data, err := readInput(backlogAddFile)
	if err != nil {
		return err
	}
	batch, err := parseBatch(data)
	if err != nil {
		return err
	}

	dispatcher, _ := newDispatcher(cfg, logger)
	doc, err := dispatcher.AddTasks(batch)
	var batchErr *backlog.BatchError
	if errors.As(err, &batchErr) {
		fmt.Println(report.BatchRejection(batchErr))
		return errBatchRejected
	}
	if err != nil {
		return err
	}

	fmt.Printf("Admitted %d task(s); backlog now has %d (%d open).\n",
		len(batch), doc.Stats.Total, doc.Stats.Open)
	return nil
}

func runBacklogStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	defer logger.Sync()

	dispatcher, _ := newDispatcher(cfg, logger)
	doc, err := dispatcher.Status()
	if err != nil {
		return err
	}

	if backlogJSON {
		return outputJSON(doc)
	}
	fmt.Println(report.BacklogStatus(doc))
	return nil
}

func runBacklogAudit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	defer logger.Sync()

	dispatcher, store := newDispatcher(cfg, logger)
	if !auditWatch {
		return auditOnce(dispatcher)
	}

	// The watcher needs the state directory to exist before the first
	// save does.
	if err := config.EnsureStateDir(cfg); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	watcher, err := backlog.NewWatcher(store.Path())
	if err != nil {
		return err
	}
	defer watcher.Stop()
	if err := watcher.Start(ctx); err != nil {
		return err
	}

	if err := auditOnce(dispatcher); err != nil && !errors.Is(err, errAuditFailed) {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-watcher.Changes():
			fmt.Println()
			if err := auditOnce(dispatcher); err != nil && !errors.Is(err, errAuditFailed) {
				return err
			}
		}
	}
}

func auditOnce(dispatcher *backlog.Dispatcher) error {
	r, err := dispatcher.Audit()
	if err != nil {
		return err
	}

	if backlogJSON {
		if err := outputJSON(r); err != nil {
			return err
		}
	} else {
		fmt.Println(report.AuditSummary(r))
	}

	if !r.Passed() {
		return errAuditFailed
	}
	return nil
}

func runBacklogUpdate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	defer logger.Sync()

	dispatcher, _ := newDispatcher(cfg, logger)
	updated, err := dispatcher.UpdateStatus(args[0], task.Status(args[1]))
	if err != nil {
		return err
	}

	fmt.Printf("Task %s is now %s.\n", updated.ID, updated.Status)
	return nil
}

// readInput reads the batch payload from a file, or stdin for "-".
func readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read from stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return data, nil
}

// parseBatch accepts {"tasks": [...]} or a bare task array.
func parseBatch(data []byte) ([]task.Task, error) {
	var wrapper struct {
		Tasks []task.Task `json:"tasks"`
	}
	if err := json.Unmarshal(data, &wrapper); err == nil && wrapper.Tasks != nil {
		return wrapper.Tasks, nil
	}

	var tasks []task.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("failed to parse task batch: %w", err)
	}
	return tasks, nil
}
