package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(mcp.NewPrompt("layout_board",
		mcp.WithPromptDescription("Guide through laying out a topic as connected blocks on a board"),
		mcp.WithArgument("topic",
			mcp.ArgumentDescription("Topic to map out on the board"),
			mcp.RequiredArgument(),
		),
	), s.handleLayoutBoardPrompt)

	s.mcp.AddPrompt(mcp.NewPrompt("map_process",
		mcp.WithPromptDescription("Diagram a process as a left-to-right chain of connected blocks"),
		mcp.WithArgument("processName",
			mcp.ArgumentDescription("Name of the process to diagram"),
			mcp.RequiredArgument(),
		),
	), s.handleMapProcessPrompt)
}

// userPrompt wraps a single user-role text message as a prompt result.
func userPrompt(description, text string) *mcp.GetPromptResult {
	msg := mcp.PromptMessage{
		Role:    mcp.RoleUser,
		Content: mcp.TextContent{Type: "text", Text: text},
	}
	return &mcp.GetPromptResult{
		Description: description,
		Messages:    []mcp.PromptMessage{msg},
	}
}

func (s *Server) handleLayoutBoardPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	topic := req.Params.Arguments["topic"]
	text := fmt.Sprintf(`Lay out "%s" as a board of connected blocks. Follow these steps:

1. Create a board named "%s" with create_board (it becomes the active board)
2. Break the topic into 4-8 ideas and create a block for each with create_block. Give every block a short title and a sentence or two of content. Omit x/y so auto-layout places them
3. Use connect_blocks to draw an arrow for each relationship between ideas. Let the anchor sides default so arrows leave from whichever sides face each other
4. Run arrange_blocks to settle everything into a clean grid
5. Finish with describe_canvas and double-check that every block is connected to at least one other

Keep titles short; put detail in the content.`, topic, topic)
	return userPrompt(fmt.Sprintf("Lay out a board for: %s", topic), text), nil
}

func (s *Server) handleMapProcessPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	processName := req.Params.Arguments["processName"]
	text := fmt.Sprintf(`Diagram the "%s" process as a chain of blocks read left to right. Follow these steps:

1. Open or create a board for the process
2. List the stages in order. Create a text block per stage with create_block, placing stage N at x = N * 340, y = 0, so the chain reads left to right
3. Connect each stage to the next with connect_blocks using fromHandle "right" and toHandle "left"
4. Where a stage branches, place the alternative below (same x, y = 200) and connect it with fromHandle "bottom" and toHandle "top"
5. Use describe_canvas to verify the chain has no gaps

Every stage except the last must have an outgoing arrow.`, processName)
	return userPrompt(fmt.Sprintf("Diagram the %s process", processName), text), nil
}
