package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerBoardTools() {
	// ── list_boards ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_boards",
		mcp.WithDescription("List all boards in the workspace"),
	), s.handleListBoards)

	// ── create_board ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("create_board",
		mcp.WithDescription("Create a new empty board"),
		mcp.WithString("name",
			mcp.Description("Name of the new board"),
			mcp.Required(),
		),
	), s.handleCreateBoard)

	// ── open_board ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("open_board",
		mcp.WithDescription("Open a board and make it the active board for subsequent tool calls. Tools that accept boardId will default to this."),
		mcp.WithString("boardId",
			mcp.Description("ID of the board to open"),
			mcp.Required(),
		),
	), s.handleOpenBoard)

	// ── set_viewport ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("set_viewport",
		mcp.WithDescription("Save a board's remembered camera: pan offset and zoom scale"),
		mcp.WithString("boardId", mcp.Description("Board ID (optional, defaults to active board)")),
		mcp.WithNumber("x", mcp.Description("Pan X offset in screen pixels"), mcp.Required()),
		mcp.WithNumber("y", mcp.Description("Pan Y offset in screen pixels"), mcp.Required()),
		mcp.WithNumber("scale", mcp.Description("Zoom scale, clamped to [0.1, 5.0] on load"), mcp.Required()),
	), s.handleSetViewport)
}

func (s *Server) handleListBoards(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	boards, err := s.boards.ListBoards()
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	return jsonResult(boards)
}

func (s *Server) handleCreateBoard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString("name", "")
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	board, err := s.boards.CreateBoard(name)
	if err != nil {
		return nil, fmt.Errorf("create board: %w", err)
	}
	// Auto-set as active board
	s.activeBoardID = board.ID
	return jsonResult(board)
}

func (s *Server) handleOpenBoard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	boardID := req.GetString("boardId", "")
	if boardID == "" {
		return nil, fmt.Errorf("boardId is required")
	}
	state, err := s.boards.OpenBoard(boardID)
	if err != nil {
		return nil, fmt.Errorf("open board: %w", err)
	}
	s.activeBoardID = boardID
	return jsonResult(map[string]any{
		"board":      state.Board,
		"blockCount": len(state.Blocks),
		"edgeCount":  len(state.Edges),
	})
}

func (s *Server) handleSetViewport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	boardID, err := s.resolveBoardID(args)
	if err != nil {
		return nil, err
	}
	x := getFloat(args, "x", 0)
	y := getFloat(args, "y", 0)
	scale := getFloat(args, "scale", 1)
	if err := s.boards.SaveViewport(boardID, x, y, scale); err != nil {
		return nil, fmt.Errorf("save viewport: %w", err)
	}
	return textResult(fmt.Sprintf("Viewport saved: pan (%.0f, %.0f) at %.2fx", x, y, scale)), nil
}
