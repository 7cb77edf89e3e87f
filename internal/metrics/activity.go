package metrics

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/warden/internal/logging"
)

const activityFile = "hook-activity.json"

// GateCounters tallies how a single gate has decided over the life of a
// project. Advisories are allows that carried a message, so they are
// counted in both buckets.
type GateCounters struct {
	Invocations int `json:"invocations"`
	Allows      int `json:"allows"`
	Asks        int `json:"asks"`
	Blocks      int `json:"blocks"`
	Advisories  int `json:"advisories"`
}

// ActivityDocument is the on-disk shape of the hook usage counters.
type ActivityDocument struct {
	Gates     map[string]GateCounters `json:"gates"`
	UpdatedAt time.Time               `json:"updated_at"`
}

// Totals sums the counters across all gates.
func (d *ActivityDocument) Totals() GateCounters {
	var t GateCounters
	if d == nil {
		return t
	}
	for _, c := range d.Gates {
		t.Invocations += c.Invocations
		t.Allows += c.Allows
		t.Asks += c.Asks
		t.Blocks += c.Blocks
		t.Advisories += c.Advisories
	}
	return t
}

// Activity persists per-gate decision counters under
// <state-dir>/metrics/hook-activity.json. Counters inform the maturity
// report only; a lost update is acceptable, so load and flush errors are
// logged and otherwise ignored.
type Activity struct {
	dir    string
	logger *logging.Logger

	doc   *ActivityDocument
	dirty bool
}

// NewActivity returns a counter store rooted at stateDir. Nothing is read
// until the first Record or Load call.
func NewActivity(stateDir string, logger *logging.Logger) *Activity {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Activity{dir: filepath.Join(stateDir, "metrics"), logger: logger}
}

// Path returns the location of the counter document.
func (a *Activity) Path() string {
	return filepath.Join(a.dir, activityFile)
}

// Record increments the counters for one gate decision. The outcome is the
// decision outcome string (allow, ask or block); advisory marks allows that
// carried a message for the user. Counters stay in memory until Flush.
func (a *Activity) Record(gate, outcome string, advisory bool) {
	doc := a.load()
	c := doc.Gates[gate]
	c.Invocations++
	switch outcome {
	case "allow":
		c.Allows++
		if advisory {
			c.Advisories++
		}
	case "ask":
		c.Asks++
	case "block":
		c.Blocks++
	}
	doc.Gates[gate] = c
	a.dirty = true
}

// Load returns the current counter document, reading it from disk on first
// use. A missing or unreadable file yields empty counters.
func (a *Activity) Load() *ActivityDocument {
	return a.load()
}

// Flush writes accumulated counters back to disk. It is a no-op when
// nothing was recorded since the last write.
func (a *Activity) Flush() {
	if !a.dirty || a.doc == nil {
		return
	}
	a.doc.UpdatedAt = time.Now().UTC()
	if err := a.write(a.doc); err != nil {
		a.logger.Warn(context.Background(), "failed to persist hook activity",
			zap.String("path", a.Path()), zap.Error(err))
		return
	}
	a.dirty = false
}

func (a *Activity) load() *ActivityDocument {
	if a.doc != nil {
		return a.doc
	}
	doc := &ActivityDocument{Gates: map[string]GateCounters{}}
	data, err := os.ReadFile(a.Path())
	if err == nil {
		if uerr := json.Unmarshal(data, doc); uerr != nil {
			a.logger.Warn(context.Background(), "discarding corrupt hook activity",
				zap.String("path", a.Path()), zap.Error(uerr))
			doc = &ActivityDocument{Gates: map[string]GateCounters{}}
		}
	} else if !os.IsNotExist(err) {
		a.logger.Warn(context.Background(), "failed to read hook activity",
			zap.String("path", a.Path()), zap.Error(err))
	}
	if doc.Gates == nil {
		doc.Gates = map[string]GateCounters{}
	}
	a.doc = doc
	return a.doc
}

func (a *Activity) write(doc *ActivityDocument) error {
	if err := os.MkdirAll(a.dir, 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	path := a.Path()
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
