package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerResources() {
	// ── canvas://boards ────────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		"canvas://boards",
		"All Boards",
		mcp.WithMIMEType("application/json"),
	), s.handleBoardsResource)

	// ── canvas://board/{boardId} ───────────────────────
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(
			"canvas://board/{boardId}",
			"Board Scene",
		),
		s.handleBoardResource,
	)
}

// resourceJSON renders v as a single JSON resource at uri.
func resourceJSON(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal resource %s: %w", uri, err)
	}
	contents := mcp.TextResourceContents{
		URI:      uri,
		MIMEType: "application/json",
		Text:     string(data),
	}
	return []mcp.ResourceContents{contents}, nil
}

func (s *Server) handleBoardsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	boards, err := s.boards.ListBoards()
	if err != nil {
		return nil, err
	}

	type boardSummary struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Icon string `json:"icon"`
	}
	summaries := make([]boardSummary, 0, len(boards))
	for _, b := range boards {
		summaries = append(summaries, boardSummary{ID: b.ID, Name: b.Name, Icon: b.Icon})
	}
	return resourceJSON("canvas://boards", summaries)
}

func (s *Server) handleBoardResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	boardID := extractBoardIDFromURI(uri)
	if boardID == "" {
		return nil, fmt.Errorf("could not extract boardId from URI: %s", uri)
	}

	state, err := s.boards.OpenBoard(boardID)
	if err != nil {
		return nil, err
	}
	return resourceJSON(uri, state)
}

// extractBoardIDFromURI extracts the board ID from "canvas://board/{id}".
func extractBoardIDFromURI(uri string) string {
	const prefix = "canvas://board/"
	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	id := strings.TrimPrefix(uri, prefix)
	// Tolerate a trailing path segment
	if idx := strings.IndexByte(id, '/'); idx >= 0 {
		id = id[:idx]
	}
	return id
}
