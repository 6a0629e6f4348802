package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// GlobalConfig is the per-user configuration at ~/.warroom/config.json.
// Worksheet content never lives here, only cross-worksheet preferences.
type GlobalConfig struct {
	// CurrentWorksheet is the worksheet commands default to when --worksheet
	// is not given.
	CurrentWorksheet string `json:"currentWorksheet,omitempty"`

	// DeviceID is a stable per-machine identifier, stamped into exports so
	// a snapshot's origin can be traced when files get passed around.
	DeviceID string `json:"deviceId,omitempty"`

	// Theme seeds appearance.theme for newly created worksheets.
	Theme string `json:"theme,omitempty"`

	// HistoryLimit caps how many revisions each worksheet's history keeps.
	// Zero means unlimited.
	HistoryLimit int `json:"historyLimit,omitempty"`
}

func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.warroom).
	if v := strings.TrimSpace(os.Getenv("WARROOM_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".warroom"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

func LoadConfig() (*GlobalConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &GlobalConfig{}, nil
		}
		return nil, err
	}
	var cfg GlobalConfig
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func SaveConfig(cfg *GlobalConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	// Best-effort safety net: keep a copy of the previous config to make
	// recovery from accidental overwrites easier.
	if prev, err := os.ReadFile(path); err == nil && len(prev) > 0 {
		_ = atomicWriteFile(dir, "config.json.bak.*.tmp", path+".bak", prev, 0o644)
	}

	// Unique temp file name so concurrent CLI and TUI processes cannot
	// clobber each other mid-write.
	return atomicWriteFile(dir, "config.json.*.tmp", path, b, 0o600)
}

// EnsureDeviceID fills in cfg.DeviceID if missing and reports whether the
// config was modified.
func EnsureDeviceID(cfg *GlobalConfig) (string, bool) {
	if id := strings.TrimSpace(cfg.DeviceID); id != "" {
		return id, false
	}
	cfg.DeviceID = uuid.NewString()
	return cfg.DeviceID, true
}
