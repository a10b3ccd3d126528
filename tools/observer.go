package tools

import "github.com/brettbedarf/projectfs"

// EventKind classifies a change to the tree
type EventKind string

const (
	EventCreated  EventKind = "created"
	EventModified EventKind = "modified"
	EventDeleted  EventKind = "deleted"
	EventRenamed  EventKind = "renamed"
)

// Event describes one successful mutation
type Event struct {
	Tool    projectfs.ToolName    `json:"tool"`
	Command projectfs.CommandName `json:"command"`
	Kind    EventKind             `json:"kind"`
	Path    string                `json:"path"`
	NewPath string                `json:"newPath,omitempty"`
	// Tree is the full tree right after the change
	Tree projectfs.Snapshot `json:"-"`
}

// Observer is told about every mutation after it has been applied.
// Failed commands never reach an observer.
type Observer interface {
	OnChange(ev Event)
}

// ObserverFunc adapts a plain function to [Observer]
type ObserverFunc func(ev Event)

func (f ObserverFunc) OnChange(ev Event) { f(ev) }
