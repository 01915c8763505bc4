package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(context.Background(), "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.App.Name != "voltway" || cfg.Database.DSN == "" {
		t.Fatalf("Load() = %+v", cfg)
	}
	if cfg.Retry.MaxAttempts != 3 || cfg.Retry.Delay != 10*time.Second {
		t.Fatalf("Load() retry = %+v", cfg.Retry)
	}
	if cfg.Planning.ServiceLevelZ != 1.65 || cfg.Planning.LowStockThreshold != 50 {
		t.Fatalf("Load() planning = %+v", cfg.Planning)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
app:
  name: voltway-test
  simulated_today: "2025-04-10"
database:
  dsn: ":memory:"
assistant:
  max_tool_iterations: 3
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.App.Name != "voltway-test" || cfg.Assistant.MaxToolIterations != 3 {
		t.Fatalf("Load() = %+v", cfg)
	}
	// Untouched keys keep their defaults.
	if cfg.Assistant.HistoryTurns != 4 {
		t.Fatalf("Load() history_turns = %d", cfg.Assistant.HistoryTurns)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(context.Background(), filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("Load(absent file) expected error")
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		Database:  DatabaseConfig{DSN: "data/test.sqlite"},
		Retry:     RetryConfig{MaxAttempts: 3, Delay: time.Second},
		Assistant: AssistantConfig{MaxToolIterations: 6},
		Planning:  PlanningConfig{ServiceLevelZ: 1.65, DemandSigmaCoefficient: 0.2},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	broken := valid
	broken.App.SimulatedToday = "10/04/2025"
	if err := broken.Validate(); err == nil {
		t.Fatal("Validate(bad date) expected error")
	}

	broken = valid
	broken.Retry.MaxAttempts = 0
	if err := broken.Validate(); err == nil {
		t.Fatal("Validate(no attempts) expected error")
	}
}

func TestClockPinnedToSimulatedToday(t *testing.T) {
	cfg := Config{App: AppConfig{SimulatedToday: "2025-04-10"}}
	clock, err := cfg.Clock()
	if err != nil {
		t.Fatalf("Clock() error = %v", err)
	}
	want := time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)
	if !clock().Equal(want) {
		t.Fatalf("clock() = %v", clock())
	}

	cfg.App.SimulatedToday = ""
	wall, err := cfg.Clock()
	if err != nil {
		t.Fatalf("Clock() error = %v", err)
	}
	if time.Since(wall()) > time.Minute {
		t.Fatalf("wall clock too far off: %v", wall())
	}
}
