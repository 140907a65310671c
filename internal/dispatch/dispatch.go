// SPDX-License-Identifier: MPL-2.0

package dispatch

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/classicalliu/cita-common/internal/coverage"
	"github.com/classicalliu/cita-common/internal/inventory"
	"github.com/classicalliu/cita-common/internal/plan"
	"github.com/classicalliu/cita-common/internal/runner"
	"github.com/classicalliu/cita-common/internal/selection"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

const (
	StateIdle State = iota
	StateValidatingArgs
	StateRunningPlan
	StateCheckingCompleteness
	StateDone
	StateFailed
)

var stateNames = [...]string{
	StateIdle:                 "idle",
	StateValidatingArgs:       "validating-args",
	StateRunningPlan:          "running-plan",
	StateCheckingCompleteness: "checking-completeness",
	StateDone:                 "done",
	StateFailed:               "failed",
}

type (
	// State is a step of a dispatched run.
	State int

	// Request is a CI invocation as typed on the command line. Empty Hash or
	// Crypto select the defaults.
	Request struct {
		Action string
		Hash   string
		Crypto string
		// Upload asks for coverage upload after a successful test run.
		Upload bool
	}

	// Uploader is the coverage pass run after a successful test action.
	Uploader interface {
		Run(ctx context.Context) coverage.Report
	}

	// Options configures a Dispatcher.
	Options struct {
		Catalog *plan.Catalog
		// Root is the workspace directory scanned for completeness.
		Root    string
		Exclude []string
		// NewRunner returns a fresh runner for each dispatched run.
		NewRunner func() *runner.Runner
		// Uploader may be nil when coverage upload is not configured.
		Uploader Uploader
		// WarningsEnv is added to the tool environment of strict actions.
		WarningsEnv []string
		Logger      *log.Logger
	}

	// Dispatcher runs requests against one workspace.
	Dispatcher struct {
		opts   Options
		logger *log.Logger
	}

	// Outcome is the result of one dispatched run.
	Outcome struct {
		RunID string
		State State
		// Plan is empty when the request was rejected.
		Plan    plan.Plan
		Records []runner.Record
		// Upload is nil unless a coverage pass ran.
		Upload *coverage.Report
		Err    error
	}
)

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// ExitCode maps the final state to the process exit status.
func (o Outcome) ExitCode() int {
	if o.State == StateDone {
		return 0
	}
	return 1
}

// New creates a Dispatcher.
func New(opts Options) *Dispatcher {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stderr)
	}
	if opts.Exclude == nil {
		opts.Exclude = inventory.DefaultExclude
	}
	return &Dispatcher{opts: opts, logger: logger}
}

// run carries the mutable state of one Dispatch call.
type run struct {
	outcome Outcome
	logger  *log.Logger
}

func (r *run) transition(s State) {
	r.logger.Debug("transition", "from", r.outcome.State, "to", s)
	r.outcome.State = s
}

func (r *run) fail(err error) Outcome {
	r.outcome.Err = err
	r.transition(StateFailed)
	return r.outcome
}

// Dispatch executes req to completion. The returned Outcome is Done only when
// every planned invocation succeeded and the workspace inventory matched.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) Outcome {
	id := uuid.NewString()
	r := &run{
		outcome: Outcome{RunID: id, State: StateIdle},
		logger:  d.logger.With("run_id", id),
	}

	r.transition(StateValidatingArgs)
	action, sel, err := parseRequest(req)
	if err != nil {
		return r.fail(err)
	}
	r.logger = r.logger.With("action", action)

	p := d.opts.Catalog.Build(action, sel)
	r.outcome.Plan = p
	rc := runner.Context{Action: action, Selection: sel}
	if action.Strict() {
		rc.Env = append(rc.Env, d.opts.WarningsEnv...)
	}
	r.logger.Info("starting", "selection", sel, "invocations", len(p.Invocations), "skipped", p.Count(plan.StatusSkip))

	r.transition(StateRunningPlan)
	rn := d.opts.NewRunner()
	for _, inv := range p.Invocations {
		if err := ctx.Err(); err != nil {
			r.outcome.Records = rn.Log().Records()
			return r.fail(fmt.Errorf("run interrupted before %s: %w", inv.Module, err))
		}
		if err := rn.Run(ctx, rc, inv); err != nil {
			r.outcome.Records = rn.Log().Records()
			return r.fail(err)
		}
	}
	r.outcome.Records = rn.Log().Records()

	r.transition(StateCheckingCompleteness)
	inv, err := inventory.Scan(d.opts.Root, d.opts.Exclude)
	if err != nil {
		return r.fail(err)
	}
	if err := inventory.Reconcile(inv, rn.Log().Modules(), plan.CatalogFile); err != nil {
		return r.fail(err)
	}

	r.transition(StateDone)

	if req.Upload && action == plan.ActionTest {
		d.upload(ctx, r)
	}

	return r.outcome
}

// upload runs the coverage pass. Its failure is reported on the outcome but
// never changes the final state.
func (d *Dispatcher) upload(ctx context.Context, r *run) {
	if d.opts.Uploader == nil {
		r.logger.Warn("coverage upload requested but not configured")
		return
	}
	report := d.opts.Uploader.Run(ctx)
	r.outcome.Upload = &report
	if report.Err != nil {
		r.logger.Warn("coverage upload failed", "err", report.Err)
	}
}

func parseRequest(req Request) (plan.Action, selection.Selection, error) {
	action, err := plan.ParseAction(req.Action)
	if err != nil {
		return 0, selection.Selection{}, err
	}
	sel, err := selection.Resolve(req.Hash, req.Crypto)
	if err != nil {
		return 0, selection.Selection{}, err
	}
	return action, sel, nil
}

// IsConfigError reports whether the outcome failed on request validation.
func (o Outcome) IsConfigError() bool {
	return errors.Is(o.Err, selection.ErrConfig)
}
