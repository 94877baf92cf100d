package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Krause140/eudr-monitor-24-7/internal/monitor"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Monitor.Interval != time.Hour {
		t.Fatalf("expected default interval 1h, got %v", cfg.Monitor.Interval)
	}
	if cfg.Monitor.Spacing != 2*time.Second {
		t.Fatalf("expected default spacing 2s, got %v", cfg.Monitor.Spacing)
	}
	if cfg.Snapshot.Provider != "file" || cfg.Snapshot.Path != "data/state.json" {
		t.Fatalf("expected file snapshot defaults, got %+v", cfg.Snapshot)
	}
	if cfg.Notify.Provider != "webhook" {
		t.Fatalf("expected webhook notify default, got %q", cfg.Notify.Provider)
	}
	if len(cfg.Sources) != len(DefaultSources()) {
		t.Fatalf("expected default source catalog, got %d sources", len(cfg.Sources))
	}
	if cfg.Sources[0].Priority != monitor.PriorityCritical {
		t.Fatalf("expected first default source to be critical, got %q", cfg.Sources[0].Priority)
	}
}

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
server:
  port: 9090
logging:
  development: false
monitor:
  interval: 30m
  spacing: 1s
  fetch_timeout: 10s
  user_agent: test-agent
  change_capacity: 10
snapshot:
  provider: postgres
  postgres:
    dsn: postgres://localhost/monitor
    table: page_state
notify:
  provider: webhook
  webhook_url: https://hooks.example.com/alerts
sources:
  - url: https://example.com/regulation
    name: Example Regulation
    category: regulation
    priority: critical
  - url: https://example.com/faq
    name: Example FAQ
    category: guidance
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Logging.Development {
		t.Fatalf("expected development logging disabled")
	}
	if cfg.Monitor.Interval != 30*time.Minute || cfg.Monitor.Spacing != time.Second {
		t.Fatalf("expected monitor overrides to apply, got %+v", cfg.Monitor)
	}
	if cfg.Monitor.ChangeCapacity != 10 {
		t.Fatalf("expected change capacity 10, got %d", cfg.Monitor.ChangeCapacity)
	}
	if cfg.Snapshot.Provider != "postgres" || cfg.Snapshot.Postgres.Table != "page_state" {
		t.Fatalf("expected postgres snapshot overrides, got %+v", cfg.Snapshot)
	}
	if len(cfg.Sources) != 2 {
		t.Fatalf("expected 2 configured sources, got %d", len(cfg.Sources))
	}
	if cfg.Sources[0].ID != "https://example.com/regulation" || cfg.Sources[0].Category != monitor.CategoryRegulation {
		t.Fatalf("expected source overrides to apply: %+v", cfg.Sources[0])
	}
	if cfg.Sources[1].Priority != "" {
		t.Fatalf("expected omitted priority to stay empty, got %q", cfg.Sources[1].Priority)
	}
}

func TestConfigValidateErrors(t *testing.T) {
	t.Parallel()

	base := Config{
		Server: ServerConfig{Port: 8080},
		Monitor: MonitorConfig{
			Interval:     time.Hour,
			Spacing:      2 * time.Second,
			FetchTimeout: 30 * time.Second,
		},
		Snapshot: SnapshotConfig{Provider: "file", Path: "data/state.json"},
		Notify:   NotifyConfig{Provider: "webhook"},
		Sources:  DefaultSources(),
	}

	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "invalid port",
			cfg: func() Config {
				c := base
				c.Server.Port = 0
				return c
			}(),
			want: "server.port",
		},
		{
			name: "invalid interval",
			cfg: func() Config {
				c := base
				c.Monitor.Interval = 0
				return c
			}(),
			want: "monitor.interval",
		},
		{
			name: "negative spacing",
			cfg: func() Config {
				c := base
				c.Monitor.Spacing = -time.Second
				return c
			}(),
			want: "monitor.spacing",
		},
		{
			name: "no sources",
			cfg: func() Config {
				c := base
				c.Sources = nil
				return c
			}(),
			want: "at least one source",
		},
		{
			name: "unknown snapshot provider",
			cfg: func() Config {
				c := base
				c.Snapshot.Provider = "redis"
				return c
			}(),
			want: "snapshot.provider",
		},
		{
			name: "postgres missing dsn",
			cfg: func() Config {
				c := base
				c.Snapshot.Provider = "postgres"
				return c
			}(),
			want: "snapshot.postgres.dsn",
		},
		{
			name: "gcs missing bucket",
			cfg: func() Config {
				c := base
				c.Snapshot.Provider = "gcs"
				return c
			}(),
			want: "snapshot.gcs.bucket",
		},
		{
			name: "pubsub missing topic",
			cfg: func() Config {
				c := base
				c.Notify.Provider = "pubsub"
				c.Notify.PubSub.ProjectID = "proj"
				return c
			}(),
			want: "notify.pubsub",
		},
		{
			name: "unknown notify provider",
			cfg: func() Config {
				c := base
				c.Notify.Provider = "pigeon"
				return c
			}(),
			want: "notify.provider",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
