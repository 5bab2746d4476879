package mcpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"noteboard/internal/canvas"
	"noteboard/internal/service"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// SceneAccess runs an engine operation against a board's scene and persists
// the result. The storage-backed headless canvas implements it; a host that
// keeps a live engine for the open board can route through that instead.
type SceneAccess interface {
	With(boardID string, op func(*canvas.Engine) error) error
}

// Server exposes the board canvas over MCP: tools to read and edit
// scenes, resources describing boards, and prompts for common agent
// workflows. Destructive tools go through the approval queue.
type Server struct {
	mcp      *server.MCPServer
	emitter  EventEmitter
	approval *ApprovalQueue
	layout   *LayoutEngine

	// Injected services
	boards  *service.BoardService
	scenes  SceneAccess
	imports *service.ImportService

	// Board targeted by tools that omit boardId; set by open_board.
	activeBoardID string
}

// Deps carries everything the host wires into the MCP server.
type Deps struct {
	Emitter    EventEmitter
	Boards     *service.BoardService
	Scenes     SceneAccess
	Imports    *service.ImportService
	ApprovalDB *sql.DB // standalone mode: approvals flow through SQLite instead of in-process
}

// New builds the server and registers every tool, resource and prompt.
func New(ctx context.Context, deps Deps) *Server {
	approval := NewApprovalQueue(ctx, deps.Emitter)
	if deps.ApprovalDB != nil {
		approval.SetDB(deps.ApprovalDB)
	}

	s := &Server{
		emitter:  deps.Emitter,
		approval: approval,
		layout:   NewLayoutEngine(),
		boards:   deps.Boards,
		scenes:   deps.Scenes,
		imports:  deps.Imports,
		mcp: server.NewMCPServer(
			"noteboard-mcp",
			"1.0.0",
			server.WithToolCapabilities(true),
			server.WithResourceCapabilities(true, false),
			server.WithPromptCapabilities(true),
		),
	}

	s.registerBoardTools()
	s.registerCanvasTools()
	s.registerImportTools()
	s.registerResources()
	s.registerPrompts()
	return s
}

// ServeStdio blocks, speaking MCP over stdin/stdout.
func (s *Server) ServeStdio() error {
	log.Println("[MCP] serving on stdio")
	return server.ServeStdio(s.mcp)
}

// Approve resolves a pending approval in the user's favor.
func (s *Server) Approve(actionID string) {
	s.approval.Approve(actionID)
}

// Reject resolves a pending approval against the agent.
func (s *Server) Reject(actionID string) {
	s.approval.Reject(actionID)
}

// ── Helpers ────────────────────────────────────────────────

// emitSceneChanged notifies the frontend that a board's scene changed under
// it, so an open view can reload.
func (s *Server) emitSceneChanged(ctx context.Context, boardID string) {
	s.emitter.Emit(ctx, "mcp:scene-changed", map[string]string{"boardId": boardID})
}

func textResult(text string) *mcp.CallToolResult {
	return mcp.NewToolResultText(text)
}

// jsonResult renders v as indented JSON in a text result; agents get
// something they can both read and parse.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

// resolveBoardID returns the boardId from tool args or falls back to the
// active board.
func (s *Server) resolveBoardID(args map[string]any) (string, error) {
	if id, ok := args["boardId"].(string); ok && id != "" {
		return id, nil
	}
	if s.activeBoardID != "" {
		return s.activeBoardID, nil
	}
	return "", fmt.Errorf("no boardId provided and no active board set (use open_board first)")
}
