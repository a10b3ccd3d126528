// Package turn runs one agent turn: load the project tree, apply the
// agent's tool calls in order and persist the result.
package turn

import (
	"context"
	"errors"
	"fmt"

	"github.com/brettbedarf/projectfs"
	"github.com/brettbedarf/projectfs/config"
	"github.com/brettbedarf/projectfs/internal/util"
	"github.com/brettbedarf/projectfs/store"
	"github.com/brettbedarf/projectfs/tools"
	"github.com/brettbedarf/projectfs/vfs"
	"github.com/google/uuid"
)

// ErrStepLimit marks calls that arrived after the turn's step ceiling
var ErrStepLimit = errors.New("step limit reached")

// Request is one turn's input. Files, when set, replaces whatever the store
// holds for ProjectID. An empty ProjectID runs the turn without persistence.
type Request struct {
	ProjectID string                `json:"projectId,omitempty"`
	Files     projectfs.Snapshot    `json:"files,omitempty"`
	Calls     []*projectfs.ToolCall `json:"calls"`
}

// Outcome is what a turn produced
type Outcome struct {
	TurnID    string
	ProjectID string
	Results   []tools.Result
	Snapshot  projectfs.Snapshot
	EntryFile string
	Events    []tools.Event
	Persisted bool
}

// Runner executes turns. It holds no tree state of its own; each Run builds
// a fresh tree and discards it afterwards.
type Runner struct {
	cfg       *config.Config
	store     store.Store
	registry  *tools.Registry
	observers []tools.Observer
}

type Option func(*Runner)

// WithRegistry replaces the built-in tools
func WithRegistry(r *tools.Registry) Option {
	return func(rn *Runner) { rn.registry = r }
}

// WithObserver adds an observer to every turn's executor. Its events carry
// the tree after each change.
func WithObserver(o tools.Observer) Option {
	return func(rn *Runner) { rn.observers = append(rn.observers, o) }
}

// NewRunner creates a Runner. A nil store disables persistence.
func NewRunner(cfg *config.Config, st store.Store, opts ...Option) *Runner {
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}
	r := &Runner{cfg: cfg, store: st}
	for _, opt := range opts {
		opt(r)
	}
	if r.registry == nil {
		r.registry = tools.DefaultRegistry()
	}
	return r
}

// Run applies req. Calls past the step ceiling are answered with
// [ErrStepLimit] and not executed. When ctx is canceled mid-turn the
// remaining calls are skipped, nothing is persisted and ctx.Err() is
// returned along with the partial outcome.
func (r *Runner) Run(ctx context.Context, req Request) (*Outcome, error) {
	turnID := uuid.NewString()
	logger := util.GetLogger("Turn").With().Str("turn", turnID).Str("project", req.ProjectID).Logger()

	fsys, err := r.load(ctx, req)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load project tree")
		return nil, err
	}

	out := &Outcome{TurnID: turnID, ProjectID: req.ProjectID}
	collect := tools.ObserverFunc(func(ev tools.Event) {
		out.Events = append(out.Events, ev)
	})
	opts := []tools.ExecutorOption{tools.WithRegistry(r.registry), tools.WithObserver(collect)}
	for _, o := range r.observers {
		opts = append(opts, tools.WithTreeObserver(o))
	}
	exec := tools.NewExecutor(fsys, opts...)

	limit := r.cfg.StepLimit()
	var canceled error
	for i, call := range req.Calls {
		if err := ctx.Err(); err != nil {
			canceled = err
			break
		}
		if call == nil {
			out.Results = append(out.Results, exec.Execute(ctx, nil))
			continue
		}
		if i >= limit {
			out.Results = append(out.Results, tools.Result{
				ToolCallID: call.ID,
				Tool:       call.ToolName,
				Label:      tools.Label(call),
				Err:        fmt.Errorf("%w: at most %d tool calls per turn", ErrStepLimit, limit),
			})
			continue
		}
		out.Results = append(out.Results, exec.Execute(ctx, call))
	}

	out.Snapshot = vfs.Serialize(fsys)
	out.EntryFile = fsys.EntryFile()

	if canceled != nil {
		logger.Warn().Err(canceled).Int("applied", len(out.Results)).Msg("Turn canceled; not persisting")
		return out, canceled
	}
	if req.ProjectID != "" && r.store != nil {
		if err := r.store.Save(ctx, req.ProjectID, out.Snapshot); err != nil {
			logger.Error().Err(err).Msg("Failed to persist project tree")
			return out, err
		}
		out.Persisted = true
	}
	logger.Info().Int("calls", len(req.Calls)).Int("changes", len(out.Events)).Bool("persisted", out.Persisted).Msg("Turn complete")
	return out, nil
}

// load builds the turn's starting tree
func (r *Runner) load(ctx context.Context, req Request) (*vfs.FileSystem, error) {
	fsys := vfs.NewFS(r.cfg)
	snap := req.Files
	if snap == nil && req.ProjectID != "" && r.store != nil {
		stored, err := r.store.Load(ctx, req.ProjectID)
		switch {
		case errors.Is(err, store.ErrNotFound):
		case err != nil:
			return nil, err
		default:
			snap = stored
		}
	}
	if err := fsys.Load(snap); err != nil {
		return nil, err
	}
	return fsys, nil
}
