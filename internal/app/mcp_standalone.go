package app

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	mcpserver "noteboard/internal/mcp"
	"noteboard/internal/secret"
	"noteboard/internal/service"
	"noteboard/internal/storage"
)

// noopEmitter drops events. Standalone mode has no frontend listening.
type noopEmitter struct{}

func (noopEmitter) Emit(_ context.Context, _ string, _ any) {}

// ServeMCP runs the app as a standalone MCP server on stdin/stdout with no
// GUI. It shares the SQLite file with a possibly-running GUI process;
// destructive tools block on mcp_approvals rows that the GUI resolves.
func ServeMCP() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".local", "share", "noteboard")
	dbPath := filepath.Join(dataDir, "noteboard.db")

	db, err := storage.New(dbPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	boardStore := storage.NewBoardStore(db)
	blockStore := storage.NewBlockStore(db)
	edgeStore := storage.NewEdgeStore(db)
	importStore := storage.NewImportStore(db)
	connStore := storage.NewSourceConnectionStore(db)

	emitter := noopEmitter{}

	boardsSvc := service.NewBoardService(boardStore, blockStore, edgeStore, emitter)
	headless := service.NewHeadlessCanvas(boardStore, blockStore, edgeStore)
	importsSvc := service.NewImportService(importStore, headless, emitter)
	connectionsSvc := service.NewSourceConnectionService(connStore, secret.NewKeychainStore())
	defer connectionsSvc.Close()

	wireConnectionQuerier(connectionsSvc)

	mcpSrv := mcpserver.New(ctx, mcpserver.Deps{
		Emitter:    emitter,
		Boards:     boardsSvc,
		Scenes:     headless,
		Imports:    importsSvc,
		ApprovalDB: db.Conn(),
	})

	log.Printf("[MCP] standalone server, data at %s", dbPath)
	if err := mcpSrv.ServeStdio(); err != nil {
		log.Fatalf("mcp server: %v", err)
	}
}
