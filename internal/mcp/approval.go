package mcpserver

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventEmitter lets the queue raise frontend prompts. The desktop app
// passes its Wails-backed emitter; standalone mode passes a no-op.
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

// PendingAction is one destructive tool call waiting for a verdict.
type PendingAction struct {
	ID          string `json:"id"`
	Tool        string `json:"tool"`
	Description string `json:"description"`
	CreatedAt   string `json:"createdAt"`
	Metadata    string `json:"metadata"` // extra JSON context, e.g. block ids
}

// ApprovalQueue blocks destructive tool calls until a human rules on them.
// In-process it parks the call on a channel and raises a Wails prompt; with
// SetDB it parks on an mcp_approvals row instead, and whichever GUI process
// shares the SQLite file resolves it.
type ApprovalQueue struct {
	ctx     context.Context
	emitter EventEmitter
	timeout time.Duration

	mu      sync.Mutex
	waiting map[string]chan bool

	db *sql.DB // non-nil switches Request to row polling
}

const approvalPollEvery = 500 * time.Millisecond

func NewApprovalQueue(ctx context.Context, emitter EventEmitter) *ApprovalQueue {
	q := &ApprovalQueue{
		ctx:     ctx,
		emitter: emitter,
		timeout: 2 * time.Minute,
		waiting: make(map[string]chan bool),
	}
	return q
}

// SetDB switches the queue to cross-process mode: requests become rows in
// mcp_approvals and the answer arrives as a status update from the GUI.
func (q *ApprovalQueue) SetDB(db *sql.DB) { q.db = db }

// Request blocks until the action is approved, rejected, or timed out.
// metadata, when given, is a JSON string with extra context for the prompt.
func (q *ApprovalQueue) Request(tool, description string, metadata ...string) (bool, error) {
	id := uuid.New().String()
	metaJSON := "{}"
	if len(metadata) > 0 && metadata[0] != "" {
		metaJSON = metadata[0]
	}
	if q.db != nil {
		return q.awaitRow(id, tool, description, metaJSON)
	}
	return q.awaitChannel(id, tool, description, metaJSON)
}

// awaitRow inserts a pending row and polls its status. The row is deleted
// on every exit path so the GUI's prompt list stays clean.
func (q *ApprovalQueue) awaitRow(id, tool, description, metadata string) (bool, error) {
	const stmt = `INSERT INTO mcp_approvals (id, tool, description, status, metadata)
		VALUES (?, ?, ?, 'pending', ?)`
	if _, err := q.db.Exec(stmt, id, tool, description, metadata); err != nil {
		return false, fmt.Errorf("queue approval: %w", err)
	}
	drop := func() { q.db.Exec(`DELETE FROM mcp_approvals WHERE id = ?`, id) }

	deadline := time.Now().Add(q.timeout)
	ticker := time.NewTicker(approvalPollEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if time.Now().After(deadline) {
				drop()
				return false, fmt.Errorf("%s: approval timed out after %s", tool, q.timeout)
			}
			var status string
			err := q.db.QueryRow(`SELECT status FROM mcp_approvals WHERE id = ?`, id).Scan(&status)
			if err != nil {
				continue
			}
			switch status {
			case "approved":
				drop()
				return true, nil
			case "rejected":
				drop()
				return false, fmt.Errorf("%s rejected by user", tool)
			}
		case <-q.ctx.Done():
			drop()
			return false, fmt.Errorf("approval wait cancelled")
		}
	}
}

// awaitChannel raises a frontend prompt and parks the call on a channel
// until Approve or Reject feeds it.
func (q *ApprovalQueue) awaitChannel(id, tool, description, metadata string) (bool, error) {
	verdict := make(chan bool, 1)
	q.mu.Lock()
	q.waiting[id] = verdict
	q.mu.Unlock()
	defer func() {
		q.mu.Lock()
		delete(q.waiting, id)
		q.mu.Unlock()
	}()

	q.emitter.Emit(q.ctx, "mcp:approval-required", PendingAction{
		ID:          id,
		Tool:        tool,
		Description: description,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
		Metadata:    metadata,
	})

	select {
	case approved := <-verdict:
		if !approved {
			return false, fmt.Errorf("%s rejected by user", tool)
		}
		return true, nil
	case <-time.After(q.timeout):
		q.emitter.Emit(q.ctx, "mcp:approval-dismissed", map[string]string{"id": id})
		return false, fmt.Errorf("%s: approval timed out after %s", tool, q.timeout)
	}
}

// Approve releases a parked call with a yes.
func (q *ApprovalQueue) Approve(actionID string) { q.resolve(actionID, true) }

// Reject releases a parked call with a no.
func (q *ApprovalQueue) Reject(actionID string) { q.resolve(actionID, false) }

// resolve is a no-op for ids that are gone; the verdict channel is
// buffered, so feeding a call that just timed out cannot block.
func (q *ApprovalQueue) resolve(actionID string, approved bool) {
	q.mu.Lock()
	ch, ok := q.waiting[actionID]
	q.mu.Unlock()
	if ok {
		ch <- approved
	}
}
