package store

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"testing"

	"golang.org/x/sync/errgroup"
)

// Concurrent CLI and TUI processes write config.json through the same
// atomic-rename path; none of the interleavings may leave a corrupt or
// half-written file behind.
func TestSaveConfigConcurrentWriters(t *testing.T) {
	cfgDir := t.TempDir()
	t.Setenv("WARROOM_CONFIG_DIR", cfgDir)

	if err := SaveConfig(&GlobalConfig{CurrentWorksheet: "seed", Theme: "dark"}); err != nil {
		t.Fatalf("SaveConfig(seed): %v", err)
	}

	var g errgroup.Group
	for i := 0; i < 64; i++ {
		g.Go(func() error {
			cfg, err := LoadConfig()
			if err != nil {
				return err
			}
			cfg.CurrentWorksheet = fmt.Sprintf("ws-%d", i)
			cfg.DeviceID = fmt.Sprintf("dev-%d", i)
			cfg.HistoryLimit = i
			return SaveConfig(cfg)
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent SaveConfig: %v", err)
	}

	path, err := ConfigPath()
	if err != nil {
		t.Fatalf("ConfigPath: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config.json: %v", err)
	}
	var cfg GlobalConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		t.Fatalf("config.json corrupted: %v\nraw:\n%s", err, raw)
	}
	if !strings.HasPrefix(cfg.CurrentWorksheet, "ws-") {
		t.Fatalf("no writer won: currentWorksheet = %q", cfg.CurrentWorksheet)
	}

	ents, err := os.ReadDir(cfgDir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range ents {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Fatalf("leftover temp file: %s", e.Name())
		}
	}

	// The best-effort backup, when present, must also parse.
	if bak, err := os.ReadFile(path + ".bak"); err == nil && len(bak) > 0 {
		if err := json.Unmarshal(bak, &cfg); err != nil {
			t.Fatalf("config.json.bak corrupted: %v\nraw:\n%s", err, bak)
		}
	}
}
