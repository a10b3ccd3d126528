package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/brettbedarf/projectfs"
	"github.com/brettbedarf/projectfs/internal/util"
	"github.com/brettbedarf/projectfs/store"
	"github.com/brettbedarf/projectfs/tools"
	"github.com/brettbedarf/projectfs/turn"
	"github.com/brettbedarf/projectfs/vfs"
	"github.com/go-chi/chi/v5"
)

// maxBodyBytes bounds a turn request body
const maxBodyBytes = 16 << 20

// TurnRequestDTO is the JSON body of a turn request
type TurnRequestDTO struct {
	Files projectfs.Snapshot    `json:"files,omitempty"`
	Calls []*projectfs.ToolCall `json:"calls"`
}

// TurnResponseDTO is the JSON body returned for a completed turn
type TurnResponseDTO struct {
	TurnID    string             `json:"turnId"`
	ProjectID string             `json:"projectId,omitempty"`
	Results   []tools.ResultDTO  `json:"results"`
	Files     projectfs.Snapshot `json:"files"`
	EntryFile string             `json:"entryFile"`
	Events    []tools.Event      `json:"events"`
	Persisted bool               `json:"persisted"`
}

// FilesResponseDTO is the JSON body of a project tree lookup
type FilesResponseDTO struct {
	ProjectID string             `json:"projectId"`
	Files     projectfs.Snapshot `json:"files"`
	EntryFile string             `json:"entryFile"`
}

type errorDTO struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) runAnonymousTurn(w http.ResponseWriter, r *http.Request) {
	s.runTurn(w, r, "")
}

func (s *Server) runProjectTurn(w http.ResponseWriter, r *http.Request) {
	s.runTurn(w, r, chi.URLParam(r, "projectID"))
}

func (s *Server) runTurn(w http.ResponseWriter, r *http.Request, projectID string) {
	var body TurnRequestDTO
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid_json", "invalid request body: "+err.Error())
		return
	}

	out, err := s.runner.Run(r.Context(), turn.Request{ProjectID: projectID, Files: body.Files, Calls: body.Calls})
	if err != nil {
		s.writeTurnErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, NewTurnResponse(out))
}

// NewTurnResponse converts a turn outcome for the wire
func NewTurnResponse(out *turn.Outcome) TurnResponseDTO {
	resp := TurnResponseDTO{
		TurnID:    out.TurnID,
		ProjectID: out.ProjectID,
		Results:   make([]tools.ResultDTO, 0, len(out.Results)),
		Files:     out.Snapshot,
		EntryFile: out.EntryFile,
		Events:    out.Events,
		Persisted: out.Persisted,
	}
	if resp.Events == nil {
		resp.Events = []tools.Event{}
	}
	for _, res := range out.Results {
		resp.Results = append(resp.Results, res.DTO())
	}
	return resp
}

func (s *Server) writeTurnErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, vfs.ErrCorrupt):
		writeErr(w, http.StatusBadRequest, "corrupt_snapshot", err.Error())
	case errors.Is(err, store.ErrInvalidID):
		writeErr(w, http.StatusBadRequest, "invalid_project_id", err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeErr(w, http.StatusServiceUnavailable, "canceled", "turn canceled before completion")
	default:
		writeErr(w, http.StatusInternalServerError, "store_error", err.Error())
	}
}

func (s *Server) getProjectFiles(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")

	snap, err := s.store.Load(r.Context(), projectID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeErr(w, http.StatusNotFound, "not_found", "project not found: "+projectID)
		return
	case errors.Is(err, store.ErrInvalidID):
		writeErr(w, http.StatusBadRequest, "invalid_project_id", err.Error())
		return
	case err != nil:
		writeErr(w, http.StatusInternalServerError, "store_error", err.Error())
		return
	}

	fsys, err := vfs.Deserialize(snap)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "corrupt_snapshot", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, FilesResponseDTO{
		ProjectID: projectID,
		Files:     vfs.Serialize(fsys),
		EntryFile: fsys.EntryFile(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger := util.GetLogger("HTTP")
		logger.Warn().Err(err).Msg("Failed to write response")
	}
}

func writeErr(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorDTO{Code: code, Message: message})
}
