package service

import (
	"database/sql"
	"fmt"

	"noteboard/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// Window geometry persistence
// ─────────────────────────────────────────────────────────────

// WindowSize holds the saved window dimensions.
type WindowSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

const (
	settingWindowWidth  = "window_width"
	settingWindowHeight = "window_height"
	defaultWindowWidth  = 1280
	defaultWindowHeight = 800

	// Floors for restored sizes; anything smaller falls back to the defaults.
	minWindowWidth  = 800
	minWindowHeight = 600
)

// WindowSettingsService saves and restores the main window's size across
// sessions, one app_settings row per dimension.
type WindowSettingsService struct {
	db *storage.DB
}

// NewWindowSettingsService creates a WindowSettingsService.
func NewWindowSettingsService(db *storage.DB) *WindowSettingsService {
	return &WindowSettingsService{db: db}
}

// LoadWindowSize returns the saved dimensions; missing or sub-floor values
// become the defaults.
func (s *WindowSettingsService) LoadWindowSize() WindowSize {
	size := WindowSize{Width: defaultWindowWidth, Height: defaultWindowHeight}
	if s.db == nil {
		return size
	}
	conn := s.db.Conn()
	if w, ok := readSetting(conn, settingWindowWidth); ok && w >= minWindowWidth {
		size.Width = w
	}
	if h, ok := readSetting(conn, settingWindowHeight); ok && h >= minWindowHeight {
		size.Height = h
	}
	return size
}

// SaveWindowSize persists the current dimensions.
func (s *WindowSettingsService) SaveWindowSize(width, height int) error {
	if s.db == nil {
		return fmt.Errorf("window settings: no db")
	}
	conn := s.db.Conn()
	if err := writeSetting(conn, settingWindowWidth, width); err != nil {
		return err
	}
	return writeSetting(conn, settingWindowHeight, height)
}

func readSetting(conn *sql.DB, key string) (int, bool) {
	var v int
	err := conn.QueryRow(`SELECT value FROM app_settings WHERE key = ?`, key).Scan(&v)
	return v, err == nil
}

func writeSetting(conn *sql.DB, key string, value int) error {
	_, err := conn.Exec(
		`INSERT INTO app_settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}
