package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/daystram/dammen/engine"
	"github.com/daystram/dammen/game"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dammen.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return path
}

func TestSetupDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := Setup("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Default()
	if cfg.Server != want.Server {
		t.Errorf("unexpected server config: got=%+v want=%+v", cfg.Server, want.Server)
	}
	if cfg.Engine != want.Engine {
		t.Errorf("unexpected engine config: got=%+v want=%+v", cfg.Engine, want.Engine)
	}
	if cfg.Rules != game.DefaultRules() {
		t.Errorf("unexpected rules: got=%+v want=%+v", cfg.Rules, game.DefaultRules())
	}
	if cfg.Clock != want.Clock {
		t.Errorf("unexpected clock: got=%+v want=%+v", cfg.Clock, want.Clock)
	}
	if cfg.Rating != want.Rating {
		t.Errorf("unexpected rating config: got=%+v want=%+v", cfg.Rating, want.Rating)
	}
}

func TestSetupFile(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, `
server:
  addr: 127.0.0.1:9000
  max_time_limit: 3s
engine:
  hash_size: 4096
  default_difficulty: hard
  weights:
    king: 300
rules:
  king_move_plies: 40
clock:
  initial: 5m
  draw_on_insufficient_material: true
rating:
  tau: 0.3
`)
	cfg, err := Setup(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Addr != "127.0.0.1:9000" || cfg.Server.MaxTimeLimit != 3*time.Second {
		t.Errorf("unexpected server config: got=%+v", cfg.Server)
	}
	if cfg.Engine.HashTableSize != 4096 || cfg.Engine.DefaultDifficulty != "hard" {
		t.Errorf("unexpected engine config: got=%+v", cfg.Engine)
	}
	wantWeights := engine.DefaultWeights()
	wantWeights.King = 300
	if cfg.Engine.Weights != wantWeights {
		t.Errorf("unexpected weights: got=%+v want=%+v", cfg.Engine.Weights, wantWeights)
	}
	if cfg.Rules.KingMovePlies != 40 || cfg.Rules.Repetitions != 3 {
		t.Errorf("unexpected rules: got=%+v", cfg.Rules)
	}
	wantClock := game.ClockConfig{Initial: 5 * time.Minute, Increment: 5 * time.Second, DrawOnInsufficientMaterial: true}
	if cfg.Clock != wantClock {
		t.Errorf("unexpected clock: got=%+v want=%+v", cfg.Clock, wantClock)
	}
	if cfg.Rating.Tau != 0.3 {
		t.Errorf("unexpected tau: got=%v want=%v", cfg.Rating.Tau, 0.3)
	}
}

// not parallel: t.Setenv
func TestSetupEnv(t *testing.T) {
	t.Setenv("DAMMEN_SERVER_ADDR", ":9999")
	t.Setenv("DAMMEN_ENGINE_HASH_SIZE", "1024")
	t.Setenv("DAMMEN_ENGINE_WEIGHTS_TEMPO", "0")
	t.Setenv("DAMMEN_CLOCK_INCREMENT", "2s")

	path := writeConfig(t, "server:\n  addr: :7000\n")
	cfg, err := Setup(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Addr != ":9999" {
		t.Errorf("unexpected addr: got=%s want=%s", cfg.Server.Addr, ":9999")
	}
	if cfg.Engine.HashTableSize != 1024 {
		t.Errorf("unexpected hash size: got=%d want=%d", cfg.Engine.HashTableSize, 1024)
	}
	if cfg.Engine.Weights.Tempo != 0 {
		t.Errorf("unexpected tempo: got=%d want=%d", cfg.Engine.Weights.Tempo, 0)
	}
	if cfg.Clock.Increment != 2*time.Second {
		t.Errorf("unexpected increment: got=%s want=%s", cfg.Clock.Increment, 2*time.Second)
	}
}

func TestSetupErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{name: "unknown difficulty", content: "engine:\n  default_difficulty: grandmaster\n", wantErr: ErrInvalidConfig},
		{name: "invalid rules", content: "rules:\n  repetitions: 1\n", wantErr: ErrInvalidConfig},
		{name: "invalid clock", content: "clock:\n  initial: 0s\n", wantErr: ErrInvalidConfig},
		{name: "invalid tau", content: "rating:\n  tau: -1\n", wantErr: ErrInvalidConfig},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Setup(writeConfig(t, tt.content))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("unexpected error: got=%v want=%v", err, tt.wantErr)
			}
		})
	}

	if _, err := Setup(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("expected error for missing config file")
	}
}
