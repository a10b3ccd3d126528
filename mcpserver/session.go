// Package mcpserver exposes the project tools to MCP clients over stdio.
package mcpserver

import (
	"context"
	"errors"
	"sync"

	"github.com/brettbedarf/projectfs"
	"github.com/brettbedarf/projectfs/config"
	"github.com/brettbedarf/projectfs/internal/util"
	"github.com/brettbedarf/projectfs/requests"
	"github.com/brettbedarf/projectfs/store"
	"github.com/brettbedarf/projectfs/tools"
	"github.com/brettbedarf/projectfs/vfs"
	"github.com/google/uuid"
)

// Session holds one project tree for the lifetime of an MCP connection.
// Calls are serialized; every successful mutation is saved before the
// call returns.
type Session struct {
	mu        sync.Mutex
	projectID string
	store     store.Store
	exec      *tools.Executor
	observers []tools.Observer
	// pending is the last mutation of the running call
	pending *tools.Event
}

// SessionOption configures a [Session]
type SessionOption func(*Session)

// WithObserver forwards every mutation to o after it is saved
func WithObserver(o tools.Observer) SessionOption {
	return func(s *Session) { s.observers = append(s.observers, o) }
}

// NewSession loads projectID from st, starting empty when it was never saved.
// An empty projectID gets a fresh random id. st may be nil, in which case
// nothing is persisted.
func NewSession(ctx context.Context, cfg *config.Config, st store.Store, projectID string, opts ...SessionOption) (*Session, error) {
	logger := util.GetLogger("MCPSession")
	if projectID == "" {
		projectID = uuid.NewString()
	}
	s := &Session{projectID: projectID, store: st}
	for _, opt := range opts {
		opt(s)
	}

	fsys := vfs.NewFS(cfg)
	if st != nil {
		snap, err := st.Load(ctx, projectID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			logger.Debug().Str("project", projectID).Msg("Starting empty project")
		case err != nil:
			return nil, err
		default:
			if err := fsys.Load(snap); err != nil {
				return nil, err
			}
		}
	}

	s.exec = tools.NewExecutor(fsys, tools.WithTreeObserver(tools.ObserverFunc(func(ev tools.Event) {
		s.pending = &ev
	})))
	logger.Info().Str("project", projectID).Int("files", len(fsys.GetAllFiles())).Msg("Session ready")
	return s, nil
}

// ProjectID returns the id the session loads from and saves to
func (s *Session) ProjectID() string {
	return s.projectID
}

// Snapshot returns the current tree
func (s *Session) Snapshot() projectfs.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return vfs.Serialize(s.exec.FS())
}

// Call decodes and runs one tool call. The returned error is only set when
// the tree changed but could not be saved; command failures are reported in
// the Result.
func (s *Session) Call(ctx context.Context, tool projectfs.ToolName, args map[string]any) (tools.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cmd, err := requests.DecodeMap(tool, args)
	if err != nil {
		return tools.Result{Tool: tool, Err: err}, nil
	}

	s.pending = nil
	res := s.exec.ExecuteCommand(ctx, cmd)
	if !res.OK() || s.pending == nil {
		return res, nil
	}

	if s.store != nil {
		if err := s.store.Save(ctx, s.projectID, s.pending.Tree); err != nil {
			logger := util.GetLogger("MCPSession")
			logger.Error().Err(err).Str("project", s.projectID).Msg("Failed to persist project tree")
			return res, err
		}
	}
	for _, o := range s.observers {
		o.OnChange(*s.pending)
	}
	return res, nil
}
