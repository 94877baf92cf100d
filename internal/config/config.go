// Package config loads and validates monitor configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Krause140/eudr-monitor-24-7/internal/monitor"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server   ServerConfig     `mapstructure:"server"`
	Logging  LoggingConfig    `mapstructure:"logging"`
	Monitor  MonitorConfig    `mapstructure:"monitor"`
	Snapshot SnapshotConfig   `mapstructure:"snapshot"`
	Notify   NotifyConfig     `mapstructure:"notify"`
	Sources  []monitor.Source `mapstructure:"sources"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// MonitorConfig governs sweep cadence and fetch behavior.
type MonitorConfig struct {
	Interval       time.Duration `mapstructure:"interval"`
	Spacing        time.Duration `mapstructure:"spacing"`
	FetchTimeout   time.Duration `mapstructure:"fetch_timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
	EventCapacity  int           `mapstructure:"event_capacity"`
	SweepCapacity  int           `mapstructure:"sweep_capacity"`
	ChangeCapacity int           `mapstructure:"change_capacity"`
}

// SnapshotConfig selects and configures the state persistence backend.
type SnapshotConfig struct {
	Provider string         `mapstructure:"provider"`
	Path     string         `mapstructure:"path"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	GCS      GCSConfig      `mapstructure:"gcs"`
}

// PostgresConfig controls access to the relational snapshot store.
type PostgresConfig struct {
	DSN      string `mapstructure:"dsn"`
	Table    string `mapstructure:"table"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

// GCSConfig addresses the bucket object used for snapshot persistence.
type GCSConfig struct {
	Bucket string `mapstructure:"bucket"`
	Object string `mapstructure:"object"`
}

// NotifyConfig selects and configures the change notification channel.
type NotifyConfig struct {
	Provider   string        `mapstructure:"provider"`
	WebhookURL string        `mapstructure:"webhook_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	PubSub     PubSubConfig  `mapstructure:"pubsub"`
}

// PubSubConfig holds metadata for publish-subscribe notifications.
type PubSubConfig struct {
	ProjectID string `mapstructure:"project_id"`
	TopicName string `mapstructure:"topic_name"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("EUDRMON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if len(cfg.Sources) == 0 {
		cfg.Sources = DefaultSources()
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("logging.development", true)
	v.SetDefault("monitor.interval", "1h")
	v.SetDefault("monitor.spacing", "2s")
	v.SetDefault("monitor.fetch_timeout", "30s")
	v.SetDefault("monitor.user_agent", "eudr-monitor/1.0 (+https://github.com/Krause140/eudr-monitor-24-7)")
	v.SetDefault("monitor.event_capacity", monitor.DefaultEventCapacity)
	v.SetDefault("monitor.sweep_capacity", monitor.DefaultSweepCapacity)
	v.SetDefault("monitor.change_capacity", monitor.DefaultChangeCapacity)
	v.SetDefault("snapshot.provider", "file")
	v.SetDefault("snapshot.path", "data/state.json")
	v.SetDefault("snapshot.postgres.table", "monitor_state")
	v.SetDefault("snapshot.gcs.object", "monitor-state.json")
	v.SetDefault("notify.provider", "webhook")
	v.SetDefault("notify.timeout", "15s")
}

// DefaultSources returns the built-in catalog of monitored pages.
func DefaultSources() []monitor.Source {
	return []monitor.Source{
		{
			ID:          "https://eur-lex.europa.eu/legal-content/EN/TXT/?uri=CELEX:32023R1115",
			DisplayName: "EUDR Regulation (EUR-Lex)",
			Category:    monitor.CategoryRegulation,
			Priority:    monitor.PriorityCritical,
		},
		{
			ID:          "https://environment.ec.europa.eu/topics/forests/deforestation/regulation-deforestation-free-products_en",
			DisplayName: "EC Deforestation Regulation Overview",
			Category:    monitor.CategoryGuidance,
			Priority:    monitor.PriorityCritical,
		},
		{
			ID:          "https://green-business.ec.europa.eu/deforestation-regulation-implementation_en",
			DisplayName: "EUDR Implementation Guidance",
			Category:    monitor.CategoryGuidance,
			Priority:    monitor.PriorityHigh,
		},
		{
			ID:          "https://webgate.ec.europa.eu/tracesnt/login",
			DisplayName: "TRACES NT Portal",
			Category:    monitor.CategorySystems,
			Priority:    monitor.PriorityHigh,
		},
		{
			ID:          "https://green-business.ec.europa.eu/deforestation-regulation-implementation/deforestation-regulation-faq_en",
			DisplayName: "EUDR Frequently Asked Questions",
			Category:    monitor.CategoryGuidance,
			Priority:    monitor.PriorityMedium,
		},
	}
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Monitor.Interval <= 0 {
		return fmt.Errorf("monitor.interval must be > 0")
	}
	if c.Monitor.Spacing < 0 {
		return fmt.Errorf("monitor.spacing must be >= 0")
	}
	if c.Monitor.FetchTimeout <= 0 {
		return fmt.Errorf("monitor.fetch_timeout must be > 0")
	}
	if len(c.Sources) == 0 {
		return fmt.Errorf("at least one source must be configured")
	}
	switch c.Snapshot.Provider {
	case "file":
		if c.Snapshot.Path == "" {
			return fmt.Errorf("snapshot.path must be set for the file provider")
		}
	case "postgres":
		if c.Snapshot.Postgres.DSN == "" {
			return fmt.Errorf("snapshot.postgres.dsn must be set for the postgres provider")
		}
	case "gcs":
		if c.Snapshot.GCS.Bucket == "" {
			return fmt.Errorf("snapshot.gcs.bucket must be set for the gcs provider")
		}
	default:
		return fmt.Errorf("unknown snapshot.provider %q", c.Snapshot.Provider)
	}
	switch c.Notify.Provider {
	case "webhook", "none":
	case "pubsub":
		if c.Notify.PubSub.ProjectID == "" || c.Notify.PubSub.TopicName == "" {
			return fmt.Errorf("notify.pubsub.project_id and notify.pubsub.topic_name must be set for the pubsub provider")
		}
	default:
		return fmt.Errorf("unknown notify.provider %q", c.Notify.Provider)
	}
	return nil
}
