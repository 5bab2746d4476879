package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerImportTools() {
	s.mcp.AddTool(mcp.NewTool("list_import_jobs",
		mcp.WithDescription("List configured import jobs and their last run status"),
	), s.handleListImportJobs)

	s.mcp.AddTool(mcp.NewTool("run_import_job",
		mcp.WithDescription("🛑 DESTRUCTIVE: Execute an import job now. Replace-mode jobs delete the blocks from their previous run. Requires user approval."),
		mcp.WithString("jobId", mcp.Description("Import job ID"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleRunImportJob)

	s.mcp.AddTool(mcp.NewTool("list_import_sources",
		mcp.WithDescription("List available import source types with their configuration schemas"),
	), s.handleListImportSources)

	s.mcp.AddTool(mcp.NewTool("preview_import_source",
		mcp.WithDescription("Preview records from an import source without writing any blocks"),
		mcp.WithString("sourceType", mcp.Description("Source type (use list_import_sources to see available types)"), mcp.Required()),
		mcp.WithString("sourceConfigJSON", mcp.Description("Config for the source, JSON-encoded"), mcp.Required()),
	), s.handlePreviewImportSource)

	s.mcp.AddTool(mcp.NewTool("list_import_runs",
		mcp.WithDescription("List recent runs of an import job, newest first"),
		mcp.WithString("jobId", mcp.Description("Import job ID"), mcp.Required()),
	), s.handleListImportRuns)
}

func (s *Server) handleListImportJobs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jobs, err := s.imports.ListJobs()
	if err != nil {
		return nil, fmt.Errorf("list import jobs: %w", err)
	}
	return jsonResult(jobs)
}

func (s *Server) handleRunImportJob(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jobID := req.GetString("jobId", "")
	if jobID == "" {
		return nil, fmt.Errorf("jobId is required")
	}

	approved, err := s.approval.Request("run_import_job",
		fmt.Sprintf("Run import job %s (may replace previously imported blocks)", jobID))
	if err != nil || !approved {
		return textResult("Run rejected by user"), nil
	}

	result, err := s.imports.RunJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("run import job: %w", err)
	}
	return jsonResult(result)
}

func (s *Server) handleListImportSources(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.imports.ListSources())
}

func (s *Server) handlePreviewImportSource(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sourceType := req.GetString("sourceType", "")
	sourceConfigStr := req.GetString("sourceConfigJSON", "")
	if sourceType == "" || sourceConfigStr == "" {
		return nil, fmt.Errorf("sourceType and sourceConfigJSON are required")
	}

	preview, err := s.imports.PreviewSource(ctx, sourceType, sourceConfigStr)
	if err != nil {
		return nil, fmt.Errorf("preview source: %w", err)
	}
	return jsonResult(preview)
}

func (s *Server) handleListImportRuns(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jobID := req.GetString("jobId", "")
	if jobID == "" {
		return nil, fmt.Errorf("jobId is required")
	}
	runs, err := s.imports.ListRuns(jobID)
	if err != nil {
		return nil, fmt.Errorf("list import runs: %w", err)
	}
	return jsonResult(runs)
}
