// Package settings persists the two user preferences next to the
// executable and keeps an in-memory copy safe for concurrent readers.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"pockettray/voice"
)

// FileName is the settings file kept beside the executable.
const FileName = "pocket-tray.json"

type Settings struct {
	MonitorEnabled bool   `json:"monitor_enabled"`
	CurrentVoice   string `json:"current_voice"`
}

// Defaults returns the settings used when no usable file exists.
func Defaults() Settings {
	return Settings{MonitorEnabled: true, CurrentVoice: voice.Default()}
}

// DefaultPath resolves the settings file next to the running binary.
func DefaultPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolve executable: %w", err)
	}
	return filepath.Join(filepath.Dir(exe), FileName), nil
}

// Load reads path and falls back to defaults on any problem: missing
// file, unreadable file, malformed JSON, or an unknown voice id. Fields
// absent from the file keep their default values; unknown fields are
// ignored.
func Load(path string) Settings {
	s := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return Defaults()
	}
	if !voice.Valid(s.CurrentVoice) {
		s.CurrentVoice = voice.Default()
	}
	return s
}

// Save writes the whole record atomically: marshal, write a sibling temp
// file, rename over the destination.
func Save(path string, s Settings) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace settings: %w", err)
	}
	return nil
}

// Store owns the live settings record. Every mutation saves immediately;
// a save failure leaves the in-memory value effective and is reported to
// the caller.
type Store struct {
	mu   sync.RWMutex
	path string
	s    Settings
}

// Open loads path (or defaults) into a new store. It never fails: a bad
// or missing file yields defaults.
func Open(path string) *Store {
	return &Store{path: path, s: Load(path)}
}

func (st *Store) Get() Settings {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.s
}

func (st *Store) Voice() string {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.s.CurrentVoice
}

func (st *Store) Monitoring() bool {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.s.MonitorEnabled
}

// SetVoice switches the current voice and persists. Unknown ids are
// rejected without touching state.
func (st *Store) SetVoice(id string) error {
	if !voice.Valid(id) {
		return fmt.Errorf("unknown voice %q", id)
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.CurrentVoice = id
	return Save(st.path, st.s)
}

// SetMonitoring flips the clipboard-monitoring flag and persists.
func (st *Store) SetMonitoring(enabled bool) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.MonitorEnabled = enabled
	return Save(st.path, st.s)
}
