package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/warden/internal/config"
	"github.com/fyrsmithlabs/warden/internal/gate"
	"github.com/fyrsmithlabs/warden/internal/logging"
	"github.com/fyrsmithlabs/warden/internal/metrics"
	"github.com/fyrsmithlabs/warden/internal/rules"
	"github.com/fyrsmithlabs/warden/internal/session"
	"github.com/fyrsmithlabs/warden/pkg/hookio"
)

var hookMode string

func init() {
	rootCmd.AddCommand(hookCmd)
	hookCmd.Flags().StringVar(&hookMode, "mode", "pretool", "hook mode (pretool)")
}

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Evaluate one host tool event from stdin",
	Long: `Evaluate one host tool event against the gate chain.

Reads a single JSON event from stdin, runs every gate, and writes the
decision to stdout: nothing for a plain allow, advisory lines for an
allow with notes, a permission object for file gating, or a continue
object for command gating. Always exits 0: a broken hook must never
stop the host.

Examples:
  # Wired into the host's PreToolUse hook
  warden hook < event.json

  # The read is bounded; no input means no opinion
  warden hook`,
	RunE: runHook,
}

// runHook fails open at every step: any problem short of a policy
// violation results in a silent allow, logged but never surfaced.
func runHook(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.LoadWithFile(flagConfig)
	if err != nil {
		cfg = config.Default()
	}
	applyStateFlag(cfg)

	logger := newLogger(cfg)
	defer logger.Sync()

	if hookMode != "pretool" {
		logger.Warn(ctx, "unsupported hook mode, allowing", zap.String("mode", hookMode))
		return nil
	}

	ev, err := hookio.Read(os.Stdin, cfg.Hook.StdinTimeout.Duration())
	if err != nil {
		logger.Warn(ctx, "hook event unreadable, allowing", zap.Error(err))
		return nil
	}
	if ev == nil {
		return nil
	}

	root, repo := workspace()
	ctx = logging.WithWorkspace(ctx, session.WorkspaceKey(root))
	ctx = logging.WithEvent(ctx, string(ev.Kind), ev.Target)

	set, err := rules.Compile(cfg, root)
	if err != nil {
		logger.Warn(ctx, "rule compilation failed, allowing", zap.Error(err))
		return nil
	}

	store := session.NewStore(cfg.State.Dir, root, cfg.Session, logger)
	activity := metrics.NewActivity(cfg.State.Dir, logger)
	defer activity.Flush()

	var inspector gate.StagedInspector
	if repo != nil {
		inspector = repo
	}

	registry := gate.NewRegistry(logger, activityRecorder{activity},
		gate.DefaultGates(cfg, set, inspector, root)...)
	res := registry.Evaluate(ctx, ev, store)

	logger.Info(ctx, "hook decision",
		zap.String("tool", ev.Tool),
		zap.String("outcome", string(res.Decision.Outcome)),
		zap.String("rule", res.Decision.Rule),
		zap.Int("advisories", len(res.Advisories)))

	emitDecision(os.Stdout, ev, res)
	return nil
}

// activityRecorder adapts the metrics counter file to the registry's
// recorder interface.
type activityRecorder struct {
	activity *metrics.Activity
}

func (r activityRecorder) Record(gateName string, d gate.Decision) {
	r.activity.Record(gateName, string(d.Outcome), d.Advisory())
}

// emitDecision writes the wire decision for one evaluated event. Blocks
// on command events use the continue object; file gating uses the
// permission object. A plain allow emits nothing; advisories go out as
// bare lines.
func emitDecision(w io.Writer, ev *hookio.Event, res gate.Result) {
	d := res.Decision
	switch d.Outcome {
	case gate.OutcomeBlock:
		if ev.Kind == hookio.KindBash {
			_ = hookio.WriteContinue(w, false, d.Message)
		} else {
			_ = hookio.WritePermission(w, hookio.PermissionDeny, d.Message)
		}
	case gate.OutcomeAsk:
		_ = hookio.WritePermission(w, hookio.PermissionAsk, d.Message)
	default:
		for _, adv := range res.Advisories {
			fmt.Fprintln(w, adv.Message)
		}
	}
}
