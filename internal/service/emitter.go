package service

import (
	"context"
	"sync"
)

// ─────────────────────────────────────────────────────────────
// EventEmitter — frontend event fan-out
// ─────────────────────────────────────────────────────────────

// EventEmitter pushes named events to the frontend. In the desktop app the
// App struct forwards these to wailsRuntime.EventsEmit; tests and the
// headless MCP process plug in their own implementations, so services never
// touch the Wails runtime directly.
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

// MockEmitter records emissions for test assertions. Import runs emit from
// their own goroutines, so appends are guarded.
type MockEmitter struct {
	mu     sync.Mutex
	Events []EmittedEvent
}

// EmittedEvent is one recorded Emit call.
type EmittedEvent struct {
	Event string
	Data  any
}

func (m *MockEmitter) Emit(_ context.Context, event string, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, EmittedEvent{Event: event, Data: data})
}
