package turn_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/brettbedarf/projectfs"
	"github.com/brettbedarf/projectfs/config"
	"github.com/brettbedarf/projectfs/internal/mocks"
	"github.com/brettbedarf/projectfs/internal/util"
	"github.com/brettbedarf/projectfs/requests"
	"github.com/brettbedarf/projectfs/store"
	"github.com/brettbedarf/projectfs/tools"
	"github.com/brettbedarf/projectfs/turn"
	"github.com/brettbedarf/projectfs/vfs"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func createCall(t *testing.T, tool projectfs.ToolName, args map[string]any) *projectfs.ToolCall {
	t.Helper()
	raw, err := json.Marshal(args)
	require.NoError(t, err)
	return &projectfs.ToolCall{ToolName: tool, Input: raw}
}

func createFile(t *testing.T, path, text string) *projectfs.ToolCall {
	return createCall(t, projectfs.StrReplaceEditor, map[string]any{"command": "create", "path": path, "file_text": text})
}

func liveConfig(maxSteps int) *config.Config {
	return config.NewConfig(&config.ConfigOverride{
		Provider: util.Pointer(config.ProviderAnthropic),
		MaxSteps: util.Pointer(maxSteps),
	})
}

func TestRunner_PersistsCompletedTurn(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := store.NewMemoryStore()
	r := turn.NewRunner(liveConfig(40), st)

	out, err := r.Run(ctx, turn.Request{
		ProjectID: "p1",
		Calls: []*projectfs.ToolCall{
			createFile(t, "/App.jsx", "<App/>"),
			createCall(t, projectfs.StrReplaceEditor, map[string]any{"command": "view", "path": "/App.jsx"}),
		},
	})

	require.NoError(t, err)
	_, err = uuid.Parse(out.TurnID)
	assert.NoError(t, err, "turn id must be a uuid")
	require.Len(t, out.Results, 2)
	assert.Equal(t, "<App/>", out.Results[1].Text())
	assert.Equal(t, "/App.jsx", out.EntryFile)
	assert.True(t, out.Persisted)
	require.Len(t, out.Events, 1)
	assert.Nil(t, out.Events[0].Tree)

	saved, err := st.Load(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, out.Snapshot, saved)

	// the next turn starts from the stored tree
	out, err = r.Run(ctx, turn.Request{
		ProjectID: "p1",
		Calls: []*projectfs.ToolCall{
			createCall(t, projectfs.FileManager, map[string]any{"command": "rename", "path": "/App.jsx", "new_path": "/src/App.jsx"}),
		},
	})
	require.NoError(t, err)
	assert.True(t, out.Results[0].OK(), out.Results[0].Text())
	assert.Equal(t, map[string]string{"/src/App.jsx": "<App/>"}, out.Snapshot.Files())
	assert.Equal(t, "", out.EntryFile)
}

func TestRunner_RequestFilesOverrideStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := &mocks.MockStore{}
	st.On("Save", mock.Anything, "p1", mock.Anything).Return(nil).Once()
	r := turn.NewRunner(nil, st)

	out, err := r.Run(ctx, turn.Request{
		ProjectID: "p1",
		Files:     projectfs.Snapshot{{Path: "/main.js", Type: projectfs.FileType, Content: "m"}},
	})

	require.NoError(t, err)
	assert.Equal(t, map[string]string{"/main.js": "m"}, out.Snapshot.Files())
	assert.Equal(t, "/main.js", out.EntryFile)
	st.AssertExpectations(t)
	st.AssertNotCalled(t, "Load", mock.Anything, mock.Anything)
}

func TestRunner_Anonymous(t *testing.T) {
	t.Parallel()

	st := &mocks.MockStore{}
	r := turn.NewRunner(nil, st)

	out, err := r.Run(context.Background(), turn.Request{Calls: []*projectfs.ToolCall{createFile(t, "/a.js", "")}})

	require.NoError(t, err)
	assert.False(t, out.Persisted)
	st.AssertNotCalled(t, "Load", mock.Anything, mock.Anything)
	st.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunner_StepLimit(t *testing.T) {
	t.Parallel()

	t.Run("Mock provider", func(t *testing.T) {
		t.Parallel()
		r := turn.NewRunner(config.NewDefaultConfig(), nil)
		var calls []*projectfs.ToolCall
		for _, p := range []string{"/a", "/b", "/c", "/d", "/e", "/f"} {
			calls = append(calls, createFile(t, p, ""))
		}

		out, err := r.Run(context.Background(), turn.Request{Calls: calls})

		require.NoError(t, err)
		require.Len(t, out.Results, 6)
		for _, res := range out.Results[:config.DefaultMockMaxSteps] {
			assert.True(t, res.OK(), res.Text())
		}
		for _, res := range out.Results[config.DefaultMockMaxSteps:] {
			assert.ErrorIs(t, res.Err, turn.ErrStepLimit)
		}
		assert.Equal(t, "Creating e", out.Results[4].Label, "refused calls keep their label")
		assert.Len(t, out.Snapshot.Files(), config.DefaultMockMaxSteps, "calls past the ceiling are not executed")
	})
	t.Run("Live provider", func(t *testing.T) {
		t.Parallel()
		r := turn.NewRunner(liveConfig(2), nil)

		out, err := r.Run(context.Background(), turn.Request{Calls: []*projectfs.ToolCall{
			createFile(t, "/a", ""), createFile(t, "/b", ""), createFile(t, "/c", ""),
		}})

		require.NoError(t, err)
		assert.ErrorIs(t, out.Results[2].Err, turn.ErrStepLimit)
		assert.Len(t, out.Snapshot.Files(), 2)
	})
}

// cancelOnChange cancels the turn as soon as the first mutation lands
type cancelOnChange struct {
	cancel context.CancelFunc
}

func (c cancelOnChange) OnChange(tools.Event) { c.cancel() }

func TestRunner_CancellationSkipsPersist(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	st := &mocks.MockStore{}
	st.On("Load", mock.Anything, "p1").Return(nil, store.ErrNotFound)
	r := turn.NewRunner(liveConfig(40), st, turn.WithObserver(cancelOnChange{cancel: cancel}))

	out, err := r.Run(ctx, turn.Request{
		ProjectID: "p1",
		Calls:     []*projectfs.ToolCall{createFile(t, "/a", "1"), createFile(t, "/b", "2")},
	})

	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, out)
	assert.Len(t, out.Results, 1, "calls after cancellation are skipped")
	assert.Equal(t, map[string]string{"/a": "1"}, out.Snapshot.Files(), "applied mutations stay in the tree")
	assert.False(t, out.Persisted)
	st.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunner_LoadErrors(t *testing.T) {
	t.Parallel()

	t.Run("Store failure", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("boom")
		st := &mocks.MockStore{}
		st.On("Load", mock.Anything, "p1").Return(nil, boom)

		_, err := turn.NewRunner(nil, st).Run(context.Background(), turn.Request{ProjectID: "p1"})
		assert.ErrorIs(t, err, boom)
	})
	t.Run("Corrupt snapshot", func(t *testing.T) {
		t.Parallel()
		_, err := turn.NewRunner(nil, nil).Run(context.Background(), turn.Request{
			Files: projectfs.Snapshot{{Path: "relative", Type: projectfs.FileType}},
		})
		assert.ErrorIs(t, err, vfs.ErrCorrupt)
	})
	t.Run("Save failure", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("disk full")
		st := &mocks.MockStore{}
		st.On("Load", mock.Anything, "p1").Return(nil, store.ErrNotFound)
		st.On("Save", mock.Anything, "p1", mock.Anything).Return(boom)

		out, err := turn.NewRunner(nil, st).Run(context.Background(), turn.Request{ProjectID: "p1"})
		assert.ErrorIs(t, err, boom)
		assert.False(t, out.Persisted)
	})
}

func TestRunner_InvalidCallsDoNotAbortTurn(t *testing.T) {
	t.Parallel()

	out, err := turn.NewRunner(nil, nil).Run(context.Background(), turn.Request{Calls: []*projectfs.ToolCall{
		{ToolName: "unknown"},
		createFile(t, "/ok.js", ""),
	}})

	require.NoError(t, err)
	assert.False(t, out.Results[0].OK())
	assert.True(t, out.Results[1].OK())
}

func TestRunner_NullCallsDoNotAbortTurn(t *testing.T) {
	t.Parallel()

	var req turn.Request
	require.NoError(t, json.Unmarshal([]byte(`{"calls":[null,{"toolName":"str_replace_editor","input":{"command":"create","path":"/a.js","file_text":"a"}},null]}`), &req))
	require.Len(t, req.Calls, 3)

	var out *turn.Outcome
	var err error
	require.NotPanics(t, func() {
		out, err = turn.NewRunner(liveConfig(2), nil).Run(context.Background(), req)
	})

	require.NoError(t, err)
	require.Len(t, out.Results, 3)
	assert.ErrorIs(t, out.Results[0].Err, requests.ErrInvalidCommand)
	assert.Equal(t, "Error: Invalid command: missing tool call", out.Results[0].Text())
	assert.True(t, out.Results[1].OK())
	assert.ErrorIs(t, out.Results[2].Err, requests.ErrInvalidCommand, "a null past the ceiling is still answered")
	assert.Equal(t, []string{"/", "/a.js"}, out.Snapshot.Paths())
}
