package gate

import (
	"context"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/warden/internal/config"
	"github.com/fyrsmithlabs/warden/internal/logging"
	"github.com/fyrsmithlabs/warden/internal/rules"
	"github.com/fyrsmithlabs/warden/internal/session"
	"github.com/fyrsmithlabs/warden/pkg/hookio"
)

// Result is the combined outcome of running every gate against one
// event. Decision is the terminal verdict; Advisories collects the
// allow-with-message decisions that fired along the way, in gate order.
type Result struct {
	Decision   Decision
	Advisories []Decision
}

// Registry evaluates gates in a fixed order.
type Registry struct {
	gates    []Gate
	logger   *logging.Logger
	recorder ActivityRecorder
}

// NewRegistry builds a registry over the given gates. Order is
// significant: gates are evaluated exactly in the order given. The
// recorder may be nil.
func NewRegistry(logger *logging.Logger, recorder ActivityRecorder, gates ...Gate) *Registry {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Registry{gates: gates, logger: logger, recorder: recorder}
}

// Gates returns the registered gate names in evaluation order.
func (r *Registry) Gates() []string {
	names := make([]string, len(r.gates))
	for i, g := range r.gates {
		names[i] = g.Name()
	}
	return names
}

// Evaluate runs every gate against the event. The first block wins and
// short-circuits the remaining gates. An ask is remembered and becomes
// the terminal decision only if nothing blocks. Gate errors are logged
// and treated as allows.
func (r *Registry) Evaluate(ctx context.Context, ev *hookio.Event, state session.Repository) Result {
	res := Result{Decision: Allow()}
	if ev == nil {
		return res
	}

	var ask *Decision
	for _, g := range r.gates {
		d, err := g.Evaluate(ctx, ev, state)
		if err != nil {
			r.logger.Warn(ctx, "gate evaluation failed, treating as allow",
				zap.String("gate", g.Name()),
				zap.Error(err))
			continue
		}
		r.record(g.Name(), d)

		switch {
		case d.Outcome == OutcomeBlock:
			res.Decision = d
			return res
		case d.Outcome == OutcomeAsk && ask == nil:
			copied := d
			ask = &copied
		case d.Advisory():
			res.Advisories = append(res.Advisories, d)
		}
	}

	if ask != nil {
		res.Decision = *ask
	}
	return res
}

func (r *Registry) record(name string, d Decision) {
	if r.recorder == nil {
		return
	}
	r.recorder.Record(name, d)
}

// DefaultGates assembles the standard gate chain in its canonical
// order: plan-mode, multi-file, quality, then the advisories
// (scan-first, arch-audit, pre-commit, test-reminder, agent-suggest).
// The inspector may be nil when no repository is available; the
// pre-commit gate then skips its size checks.
func DefaultGates(cfg *config.Config, set *rules.Set, inspector StagedInspector, workdir string) []Gate {
	return []Gate{
		NewPlanModeGate(),
		NewMultiFileGate(set, cfg.MultiFile.Threshold),
		NewQualityGate(set, cfg.Quality.TestValidity.Duration()),
		NewScanFirstGate(cfg.ScanFirst.ReadThreshold),
		NewArchAuditGate(cfg.ArchAudit.FileThreshold),
		NewPreCommitGate(set, cfg.PreCommit, inspector, workdir),
		NewTestReminderGate(cfg.TestReminder.SourceSuffixes, workdir),
		NewAgentSuggestGate(set.Agents),
	}
}
