package mcpserver

import (
	"context"
	"fmt"

	"github.com/brettbedarf/projectfs"
	"github.com/brettbedarf/projectfs/internal/util"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ServerName is reported to clients during initialization
const ServerName = "projectfs"

// New creates an MCP server exposing the editor and file manager tools of sess
func New(sess *Session, version string) *server.MCPServer {
	s := server.NewMCPServer(
		ServerName,
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	s.AddTool(editorTool(), sess.handler(projectfs.StrReplaceEditor))
	s.AddTool(fileManagerTool(), sess.handler(projectfs.FileManager))
	return s
}

// ServeStdio blocks serving s on stdin/stdout
func ServeStdio(s *server.MCPServer) error {
	logger := util.GetLogger("MCP")
	logger.Info().Msg("Serving MCP over stdio")
	return server.ServeStdio(s)
}

func editorTool() mcp.Tool {
	return mcp.NewTool(projectfs.StrReplaceEditor,
		mcp.WithDescription("View, create and edit files in the project. "+
			"str_replace needs old_str to match exactly once; undo_edit reverts the last change to a file."),
		mcp.WithString("command",
			mcp.Required(),
			mcp.Enum(
				projectfs.CommandView,
				projectfs.CommandCreate,
				projectfs.CommandStrReplace,
				projectfs.CommandInsert,
				projectfs.CommandUndoEdit,
			),
			mcp.Description("The editor command to run"),
		),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Absolute path of the file or directory, e.g. /App.jsx"),
		),
		mcp.WithString("file_text",
			mcp.Description("Content of the new file (create)"),
		),
		mcp.WithString("old_str",
			mcp.Description("Text to replace; must appear exactly once (str_replace)"),
		),
		mcp.WithString("new_str",
			mcp.Description("Replacement text (str_replace) or text to insert (insert)"),
		),
		mcp.WithNumber("insert_line",
			mcp.Description("Line after which new_str is inserted; 0 inserts at the top (insert)"),
		),
	)
}

func fileManagerTool() mcp.Tool {
	return mcp.NewTool(projectfs.FileManager,
		mcp.WithDescription("Rename or delete files and directories in the project."),
		mcp.WithString("command",
			mcp.Required(),
			mcp.Enum(projectfs.CommandRename, projectfs.CommandDelete),
			mcp.Description("The file manager command to run"),
		),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Absolute path of the file or directory"),
		),
		mcp.WithString("new_path",
			mcp.Description("Destination path (rename)"),
		),
	)
}

func (s *Session) handler(tool projectfs.ToolName) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res, err := s.Call(ctx, tool, req.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("%s (change applied but not saved: %v)", res.Text(), err)), nil
		}
		if !res.OK() {
			return mcp.NewToolResultError(res.Text()), nil
		}
		return mcp.NewToolResultText(res.Output), nil
	}
}
