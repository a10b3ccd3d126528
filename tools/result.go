package tools

import "github.com/brettbedarf/projectfs"

// ErrorPrefix marks a failed call in the text handed back to the agent
const ErrorPrefix = "Error: "

// Result is the outcome of one tool call: Output on success, Err otherwise.
type Result struct {
	ToolCallID string
	Tool       projectfs.ToolName
	Command    projectfs.CommandName
	Label      string
	Output     string
	Err        error
}

// OK reports whether the call succeeded
func (r Result) OK() bool {
	return r.Err == nil
}

// Text renders the result the way the agent sees it
func (r Result) Text() string {
	if r.Err != nil {
		return ErrorPrefix + r.Err.Error()
	}
	return r.Output
}

// ResultDTO is the JSON form of a [Result] sent to clients
type ResultDTO struct {
	ToolCallID string                `json:"toolCallId,omitempty"`
	ToolName   projectfs.ToolName    `json:"toolName"`
	Command    projectfs.CommandName `json:"command,omitempty"`
	Label      string                `json:"label"`
	OK         bool                  `json:"ok"`
	Result     string                `json:"result"`
}

// DTO converts r for the wire
func (r Result) DTO() ResultDTO {
	return ResultDTO{
		ToolCallID: r.ToolCallID,
		ToolName:   r.Tool,
		Command:    r.Command,
		Label:      r.Label,
		OK:         r.OK(),
		Result:     r.Text(),
	}
}
