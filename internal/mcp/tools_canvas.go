package mcpserver

import (
	"context"
	"fmt"
	"math"

	"noteboard/internal/canvas"
	"noteboard/internal/domain"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerCanvasTools() {
	// ── create_block ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("create_block",
		mcp.WithDescription("Add a block to a board. Omit x and y to have a spot picked automatically."),
		mcp.WithString("type",
			mcp.Description("Block type: text, checklist, table, image, code (default text)"),
		),
		mcp.WithString("boardId",
			mcp.Description("Board ID (optional, defaults to active board)"),
		),
		mcp.WithNumber("x", mcp.Description("X position in world units (optional, auto-layout if omitted)")),
		mcp.WithNumber("y", mcp.Description("Y position in world units (optional, auto-layout if omitted)")),
		mcp.WithNumber("width", mcp.Description("Width (optional, uses the type default)")),
		mcp.WithNumber("height", mcp.Description("Height (optional, uses the type default)")),
		mcp.WithString("title", mcp.Description("Block title (optional)")),
		mcp.WithString("content", mcp.Description("Body content (optional)")),
	), s.handleCreateBlock)

	// ── update_block_content ───────────────────────────
	s.mcp.AddTool(mcp.NewTool("update_block_content",
		mcp.WithDescription("Replace a block's content"),
		mcp.WithString("blockId", mcp.Description("Block to edit"), mcp.Required()),
		mcp.WithString("content", mcp.Description("Replacement content"), mcp.Required()),
		mcp.WithString("boardId", mcp.Description("Board ID (optional, defaults to active board)")),
	), s.handleUpdateBlockContent)

	// ── list_blocks ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_blocks",
		mcp.WithDescription("List all blocks on a board, optionally filtered by type"),
		mcp.WithString("boardId", mcp.Description("Board ID (optional, defaults to active board)")),
		mcp.WithString("type", mcp.Description("Only list blocks of this type (optional)")),
	), s.handleListBlocks)

	// ── move_block ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("move_block",
		mcp.WithDescription("Move a block to an absolute position"),
		mcp.WithString("blockId", mcp.Description("Block to move"), mcp.Required()),
		mcp.WithNumber("x", mcp.Description("Destination X in world units"), mcp.Required()),
		mcp.WithNumber("y", mcp.Description("Destination Y in world units"), mcp.Required()),
		mcp.WithString("boardId", mcp.Description("Board ID (optional, defaults to active board)")),
	), s.handleMoveBlock)

	// ── resize_block ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("resize_block",
		mcp.WithDescription("Resize a block. Sizes below the 150x100 minimum are clamped."),
		mcp.WithString("blockId", mcp.Description("Block to resize"), mcp.Required()),
		mcp.WithNumber("width", mcp.Description("Target width"), mcp.Required()),
		mcp.WithNumber("height", mcp.Description("Target height"), mcp.Required()),
		mcp.WithString("boardId", mcp.Description("Board ID (optional, defaults to active board)")),
	), s.handleResizeBlock)

	// ── duplicate_block ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("duplicate_block",
		mcp.WithDescription("Duplicate a block, content included, connections not. The copy lands offset beside the original."),
		mcp.WithString("blockId", mcp.Description("Block to copy"), mcp.Required()),
		mcp.WithString("boardId", mcp.Description("Board ID (optional, defaults to active board)")),
	), s.handleDuplicateBlock)

	// ── connect_blocks ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("connect_blocks",
		mcp.WithDescription("Connect two blocks with a directional arrow. Anchor sides default to whichever sides face each other."),
		mcp.WithString("fromId", mcp.Description("Source block ID"), mcp.Required()),
		mcp.WithString("toId", mcp.Description("Target block ID"), mcp.Required()),
		mcp.WithString("fromHandle", mcp.Description("Anchor side on the source: top, right, bottom, left (optional)")),
		mcp.WithString("toHandle", mcp.Description("Anchor side on the target: top, right, bottom, left (optional)")),
		mcp.WithString("boardId", mcp.Description("Board ID (optional, defaults to active board)")),
	), s.handleConnectBlocks)

	// ── disconnect_blocks (destructive) ────────────────
	s.mcp.AddTool(mcp.NewTool("disconnect_blocks",
		mcp.WithDescription("🛑 DESTRUCTIVE: Remove the arrow(s) from one block to another. Requires user approval."),
		mcp.WithString("fromId", mcp.Description("Source block ID"), mcp.Required()),
		mcp.WithString("toId", mcp.Description("Target block ID"), mcp.Required()),
		mcp.WithString("boardId", mcp.Description("Board ID (optional, defaults to active board)")),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDisconnectBlocks)

	// ── delete_block (destructive) ─────────────────────
	s.mcp.AddTool(mcp.NewTool("delete_block",
		mcp.WithDescription("🛑 DESTRUCTIVE: Delete a block and every arrow touching it. Requires user approval."),
		mcp.WithString("blockId", mcp.Description("Block to delete"), mcp.Required()),
		mcp.WithString("boardId", mcp.Description("Board ID (optional, defaults to active board)")),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDeleteBlock)

	// ── arrange_blocks ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("arrange_blocks",
		mcp.WithDescription("Auto-arrange all blocks on a board into a grid layout. One undo restores the previous arrangement."),
		mcp.WithString("boardId", mcp.Description("Board ID (optional, defaults to active board)")),
		mcp.WithNumber("startX", mcp.Description("Grid origin X (default 0)")),
		mcp.WithNumber("startY", mcp.Description("Grid origin Y (default 0)")),
	), s.handleArrangeBlocks)

	// ── describe_canvas ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("describe_canvas",
		mcp.WithDescription("Describe a board: its viewport, blocks, and the arrows between them"),
		mcp.WithString("boardId", mcp.Description("Board ID (optional, defaults to active board)")),
	), s.handleDescribeCanvas)
}

func boolPtr(v bool) *bool { return &v }

// ── Handlers ───────────────────────────────────────────────

func (s *Server) handleCreateBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	boardID, err := s.resolveBoardID(args)
	if err != nil {
		return nil, err
	}

	typeStr, _ := args["type"].(string)
	bt, err := parseBlockType(typeStr)
	if err != nil {
		return nil, err
	}

	w := getFloat(args, "width", 0)
	h := getFloat(args, "height", 0)
	if w <= 0 || h <= 0 {
		w, h = canvas.SizeFor(bt)
	}

	x, hasX := args["x"].(float64)
	y, hasY := args["y"].(float64)
	title, _ := args["title"].(string)
	content, _ := args["content"].(string)

	var created domain.Block
	err = s.scenes.With(boardID, func(en *canvas.Engine) error {
		// Auto-layout if position not provided
		if !hasX || !hasY {
			x, y = s.layout.NextPosition(en.Export().Blocks, w, h)
		}
		created = en.InsertBlock(domain.Block{
			Type:    bt,
			Title:   title,
			Content: content,
			X:       x,
			Y:       y,
			Width:   w,
			Height:  h,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create block: %w", err)
	}

	s.emitSceneChanged(ctx, boardID)
	return jsonResult(created)
}

func (s *Server) handleUpdateBlockContent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	blockID, _ := args["blockId"].(string)
	if blockID == "" {
		return nil, fmt.Errorf("blockId is required")
	}
	boardID, err := s.resolveBoardID(args)
	if err != nil {
		return nil, err
	}
	content, _ := args["content"].(string)

	err = s.scenes.With(boardID, func(en *canvas.Engine) error {
		if _, ok := en.Block(blockID); !ok {
			return fmt.Errorf("block %s not found on board %s", blockID, boardID)
		}
		en.UpdateBlock(blockID, canvas.BlockPatch{Content: &content})
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emitSceneChanged(ctx, boardID)
	return textResult(fmt.Sprintf("Block %s content updated", blockID)), nil
}

func (s *Server) handleListBlocks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	boardID, err := s.resolveBoardID(args)
	if err != nil {
		return nil, err
	}

	state, err := s.boards.OpenBoard(boardID)
	if err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}

	filterType, _ := args["type"].(string)
	var summaries []blockSummary
	for _, b := range state.Blocks {
		if filterType != "" && string(b.Type) != filterType {
			continue
		}
		summaries = append(summaries, summarizeBlock(b))
	}
	return jsonResult(summaries)
}

func (s *Server) handleMoveBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	blockID, _ := args["blockId"].(string)
	if blockID == "" {
		return nil, fmt.Errorf("blockId is required")
	}
	boardID, err := s.resolveBoardID(args)
	if err != nil {
		return nil, err
	}

	var x, y float64
	err = s.scenes.With(boardID, func(en *canvas.Engine) error {
		b, ok := en.Block(blockID)
		if !ok {
			return fmt.Errorf("block %s not found on board %s", blockID, boardID)
		}
		x = getFloat(args, "x", b.X)
		y = getFloat(args, "y", b.Y)
		en.MoveBlock(blockID, x, y)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emitSceneChanged(ctx, boardID)
	return textResult(fmt.Sprintf("Block %s moved to (%.0f, %.0f)", blockID, x, y)), nil
}

func (s *Server) handleResizeBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	blockID, _ := args["blockId"].(string)
	if blockID == "" {
		return nil, fmt.Errorf("blockId is required")
	}
	boardID, err := s.resolveBoardID(args)
	if err != nil {
		return nil, err
	}

	var w, h float64
	err = s.scenes.With(boardID, func(en *canvas.Engine) error {
		b, ok := en.Block(blockID)
		if !ok {
			return fmt.Errorf("block %s not found on board %s", blockID, boardID)
		}
		en.BeginBlockResize(blockID)
		en.ResizeBlock(blockID, getFloat(args, "width", b.Width), getFloat(args, "height", b.Height))
		// Report the clamped size, not the requested one
		b, _ = en.Block(blockID)
		w, h = b.Width, b.Height
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emitSceneChanged(ctx, boardID)
	return textResult(fmt.Sprintf("Block %s resized to (%.0f × %.0f)", blockID, w, h)), nil
}

func (s *Server) handleDuplicateBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	blockID, _ := args["blockId"].(string)
	if blockID == "" {
		return nil, fmt.Errorf("blockId is required")
	}
	boardID, err := s.resolveBoardID(args)
	if err != nil {
		return nil, err
	}

	var dup domain.Block
	err = s.scenes.With(boardID, func(en *canvas.Engine) error {
		d, ok := en.DuplicateBlock(blockID)
		if !ok {
			return fmt.Errorf("block %s not found on board %s", blockID, boardID)
		}
		dup = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emitSceneChanged(ctx, boardID)
	return jsonResult(dup)
}

func (s *Server) handleConnectBlocks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	fromID, _ := args["fromId"].(string)
	toID, _ := args["toId"].(string)
	if fromID == "" || toID == "" {
		return nil, fmt.Errorf("fromId and toId are required")
	}
	if fromID == toID {
		return nil, fmt.Errorf("a block cannot connect to itself")
	}
	boardID, err := s.resolveBoardID(args)
	if err != nil {
		return nil, err
	}

	fromSide, err := parseSide(args, "fromHandle")
	if err != nil {
		return nil, err
	}
	toSide, err := parseSide(args, "toHandle")
	if err != nil {
		return nil, err
	}

	var edge domain.Edge
	err = s.scenes.With(boardID, func(en *canvas.Engine) error {
		from, ok := en.Block(fromID)
		if !ok {
			return fmt.Errorf("block %s not found on board %s", fromID, boardID)
		}
		to, ok := en.Block(toID)
		if !ok {
			return fmt.Errorf("block %s not found on board %s", toID, boardID)
		}
		if fromSide == "" || toSide == "" {
			df, dt := facingSides(from, to)
			if fromSide == "" {
				fromSide = df
			}
			if toSide == "" {
				toSide = dt
			}
		}
		e, ok := en.ConnectBlocks(fromID, toID, fromSide, toSide)
		if !ok {
			return fmt.Errorf("could not connect %s to %s", fromID, toID)
		}
		edge = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emitSceneChanged(ctx, boardID)
	return jsonResult(edge)
}

func (s *Server) handleDisconnectBlocks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	fromID, _ := args["fromId"].(string)
	toID, _ := args["toId"].(string)
	if fromID == "" || toID == "" {
		return nil, fmt.Errorf("fromId and toId are required")
	}
	boardID, err := s.resolveBoardID(args)
	if err != nil {
		return nil, err
	}

	approved, err := s.approval.Request("disconnect_blocks",
		fmt.Sprintf("Remove the connection from block %s to block %s", fromID, toID))
	if err != nil || !approved {
		return textResult("Disconnect rejected by user"), nil
	}

	removed := 0
	err = s.scenes.With(boardID, func(en *canvas.Engine) error {
		for _, e := range en.Export().Edges {
			if e.FromID == fromID && e.ToID == toID {
				en.DeleteEdge(e.ID)
				removed++
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("disconnect blocks: %w", err)
	}
	if removed == 0 {
		return textResult(fmt.Sprintf("No connection from %s to %s", fromID, toID)), nil
	}

	s.emitSceneChanged(ctx, boardID)
	return textResult(fmt.Sprintf("Removed %d connection(s) from %s to %s", removed, fromID, toID)), nil
}

func (s *Server) handleDeleteBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	blockID, _ := args["blockId"].(string)
	if blockID == "" {
		return nil, fmt.Errorf("blockId is required")
	}
	boardID, err := s.resolveBoardID(args)
	if err != nil {
		return nil, err
	}

	// The metadata lets the frontend highlight what is about to go.
	meta := fmt.Sprintf(`{"blockIds":["%s"]}`, blockID)
	approved, err := s.approval.Request("delete_block",
		fmt.Sprintf("Delete block %s and its connections", blockID), meta)
	if err != nil || !approved {
		return textResult("Deletion rejected by user"), nil
	}

	err = s.scenes.With(boardID, func(en *canvas.Engine) error {
		if _, ok := en.Block(blockID); !ok {
			return fmt.Errorf("block %s not found on board %s", blockID, boardID)
		}
		en.DeleteBlock(blockID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emitSceneChanged(ctx, boardID)
	return textResult(fmt.Sprintf("Block %s deleted", blockID)), nil
}

func (s *Server) handleArrangeBlocks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	boardID, err := s.resolveBoardID(args)
	if err != nil {
		return nil, err
	}
	startX := getFloat(args, "startX", 0)
	startY := getFloat(args, "startY", 0)

	arranged := 0
	err = s.scenes.With(boardID, func(en *canvas.Engine) error {
		blocks := en.Export().Blocks
		if len(blocks) == 0 {
			return nil
		}
		placed := s.layout.ArrangeGroup(blocks, startX, startY)
		moves := make([]canvas.BlockMove, len(placed))
		for i, b := range placed {
			moves[i] = canvas.BlockMove{ID: b.ID, X: b.X, Y: b.Y}
		}
		en.MoveBlocks(moves)
		arranged = len(placed)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("arrange blocks: %w", err)
	}

	s.emitSceneChanged(ctx, boardID)
	return textResult(fmt.Sprintf("Arranged %d blocks", arranged)), nil
}

func (s *Server) handleDescribeCanvas(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	boardID, err := s.resolveBoardID(args)
	if err != nil {
		return nil, err
	}

	state, err := s.boards.OpenBoard(boardID)
	if err != nil {
		return nil, fmt.Errorf("describe canvas: %w", err)
	}

	blocks := make([]blockSummary, len(state.Blocks))
	for i, b := range state.Blocks {
		blocks[i] = summarizeBlock(b)
	}
	type edgeSummary struct {
		ID         string `json:"id"`
		FromID     string `json:"fromId"`
		ToID       string `json:"toId"`
		FromHandle string `json:"fromHandle"`
		ToHandle   string `json:"toHandle"`
	}
	edges := make([]edgeSummary, len(state.Edges))
	for i, e := range state.Edges {
		edges[i] = edgeSummary{
			ID:         e.ID,
			FromID:     e.FromID,
			ToID:       e.ToID,
			FromHandle: string(e.FromHandle),
			ToHandle:   string(e.ToHandle),
		}
	}
	return jsonResult(map[string]any{
		"board": map[string]any{
			"id":   state.Board.ID,
			"name": state.Board.Name,
		},
		"viewport": map[string]float64{
			"x":     state.Board.ViewportX,
			"y":     state.Board.ViewportY,
			"scale": state.Board.ViewportScale,
		},
		"blocks": blocks,
		"edges":  edges,
	})
}

// ── Helper types ───────────────────────────────────────────

// blockSummary is the compact block shape list_blocks and describe_canvas
// return; Preview carries at most the first 200 characters of content.
type blockSummary struct {
	ID      string  `json:"id"`
	Type    string  `json:"type"`
	Title   string  `json:"title,omitempty"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Preview string  `json:"preview"`
}

func summarizeBlock(b domain.Block) blockSummary {
	preview := b.Content
	if len(preview) > 200 {
		preview = preview[:200] + "..."
	}
	return blockSummary{
		ID:      b.ID,
		Type:    string(b.Type),
		Title:   b.Title,
		X:       b.X,
		Y:       b.Y,
		Width:   b.Width,
		Height:  b.Height,
		Preview: preview,
	}
}

func getFloat(args map[string]any, key string, fallback float64) float64 {
	if v, ok := args[key].(float64); ok {
		return v
	}
	return fallback
}

// parseBlockType validates a type argument; empty means the default type.
func parseBlockType(s string) (domain.BlockType, error) {
	if s == "" {
		return domain.DefaultBlockType, nil
	}
	t := domain.BlockType(s)
	switch t {
	case domain.BlockTypeText, domain.BlockTypeChecklist, domain.BlockTypeTable,
		domain.BlockTypeImage, domain.BlockTypeCode:
		return t, nil
	}
	return "", fmt.Errorf("unknown block type %q (use text, checklist, table, image, or code)", s)
}

// parseSide validates an anchor side argument; empty means pick for me.
func parseSide(args map[string]any, key string) (domain.HandleSide, error) {
	v, _ := args[key].(string)
	if v == "" {
		return "", nil
	}
	side := domain.HandleSide(v)
	if !side.Valid() {
		return "", fmt.Errorf("%s must be one of top, right, bottom, left", key)
	}
	return side, nil
}

// facingSides picks anchor sides from the relative position of two blocks:
// when the target sits mostly to the right, connect right→left, and so on
// for the other three directions.
func facingSides(from, to domain.Block) (domain.HandleSide, domain.HandleSide) {
	dx := (to.X + to.Width/2) - (from.X + from.Width/2)
	dy := (to.Y + to.Height/2) - (from.Y + from.Height/2)
	if math.Abs(dx) >= math.Abs(dy) {
		if dx >= 0 {
			return domain.HandleRight, domain.HandleLeft
		}
		return domain.HandleLeft, domain.HandleRight
	}
	if dy >= 0 {
		return domain.HandleBottom, domain.HandleTop
	}
	return domain.HandleTop, domain.HandleBottom
}
