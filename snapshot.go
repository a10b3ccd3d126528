package projectfs

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// NodeType valid types are FileType "file" and DirectoryType "directory"
type NodeType string

const (
	FileType      NodeType = "file"
	DirectoryType NodeType = "directory"
)

// Entry is one node of a flattened tree: its canonical path and descriptor.
// Content is only meaningful for files.
type Entry struct {
	Path    string
	Type    NodeType
	Content string
}

// Snapshot is the flat transport form of a project tree: an ordered mapping of
// path to node descriptor. It marshals to a JSON object
//
//	{"/App.jsx": {"type": "file", "content": "..."}, "/src": {"type": "directory"}}
//
// and keeps key order in both directions. Duplicate keys in the input are kept
// as separate entries so consumers can detect them.
type Snapshot []Entry

// descriptorDTO is the JSON representation of a single [Entry] value
type descriptorDTO struct {
	Type    NodeType `json:"type"`
	Content *string  `json:"content,omitempty"`
}

// Get returns the first entry for path
func (s Snapshot) Get(path string) (Entry, bool) {
	for _, e := range s {
		if e.Path == path {
			return e, true
		}
	}
	return Entry{}, false
}

// Paths returns the entry paths in order
func (s Snapshot) Paths() []string {
	paths := make([]string, len(s))
	for i, e := range s {
		paths[i] = e.Path
	}
	return paths
}

// Files returns the file entries as a path to content map
func (s Snapshot) Files() map[string]string {
	files := make(map[string]string)
	for _, e := range s {
		if e.Type == FileType {
			files[e.Path] = e.Content
		}
	}
	return files
}

func (s Snapshot) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Path)
		if err != nil {
			return nil, err
		}
		dto := descriptorDTO{Type: e.Type}
		if e.Type == FileType {
			content := e.Content
			dto.Content = &content
		}
		val, err := json.Marshal(dto)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (s *Snapshot) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*s = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("snapshot must be a JSON object, got %v", tok)
	}

	out := Snapshot{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		path, ok := tok.(string)
		if !ok {
			return fmt.Errorf("snapshot key must be a string, got %v", tok)
		}
		var dto descriptorDTO
		if err := dec.Decode(&dto); err != nil {
			return fmt.Errorf("snapshot entry %q: %w", path, err)
		}
		e := Entry{Path: path, Type: dto.Type}
		if dto.Content != nil {
			e.Content = *dto.Content
		}
		out = append(out, e)
	}
	// closing brace
	if _, err := dec.Token(); err != nil {
		return err
	}
	*s = out
	return nil
}
