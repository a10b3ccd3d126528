package requests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CommandDTO is the JSON representation of the argument bag shared by every
// tool command. Pointer fields distinguish a missing argument from a zero
// value; which of them are required depends on Command.
type CommandDTO struct {
	Command    *string     `json:"command"`
	Path       *string     `json:"path"`
	FileText   *string     `json:"file_text,omitempty"`
	OldStr     *string     `json:"old_str,omitempty"`
	NewStr     *string     `json:"new_str,omitempty"`
	InsertLine *LineNumber `json:"insert_line,omitempty"`
	NewPath    *string     `json:"new_path,omitempty"`
}

// LineNumber is an insert position. Agents send it as a JSON number or, less
// often, as a numeric string; both are accepted as long as the value is a
// whole number.
type LineNumber int

func (l *LineNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("insert_line must be a number")
	}

	text := string(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		text = strings.TrimSpace(s)
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return fmt.Errorf("insert_line must be a number, got %s", data)
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) || f > math.MaxInt32 || f < math.MinInt32 {
		return fmt.Errorf("insert_line must be a whole number, got %s", data)
	}
	*l = LineNumber(f)
	return nil
}
