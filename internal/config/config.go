package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/huenthong/spacifychat/internal/routing"
	"github.com/huenthong/spacifychat/internal/scoring"
)

type Config struct {
	Server   ServerConfig       `yaml:"server"`
	Database DatabaseConfig     `yaml:"database"`
	NATS     NATSConfig         `yaml:"nats"`
	Redis    RedisConfig        `yaml:"redis"`
	Chat     ChatConfig         `yaml:"chat"`
	Notify   NotifyConfig       `yaml:"notify"`
	Scoring  scoring.Thresholds `yaml:"scoring"`
	Routing  RoutingConfig      `yaml:"routing"`
	Report   ReportConfig       `yaml:"report"`
}

type ServerConfig struct {
	Port               int      `yaml:"port"`
	MetricsPort        int      `yaml:"metrics_port"`
	AdminToken         string   `yaml:"admin_token"`
	RateLimitPerMinute int      `yaml:"rate_limit_per_minute"`
	CORSOrigins        []string `yaml:"cors_origins"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// NATSConfig points at the event bus. An empty URL disables publishing.
type NATSConfig struct {
	URL string `yaml:"url"`
}

// RedisConfig points at the session cache. An empty Addr keeps chat
// sessions in process memory.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type ChatConfig struct {
	SessionTTLMinutes int `yaml:"session_ttl_minutes"`
}

// NotifyConfig points at the hot-lead webhook. An empty URL disables it.
type NotifyConfig struct {
	WebhookURL   string `yaml:"webhook_url"`
	WebhookToken string `yaml:"webhook_token"`
}

// RoutingConfig carries the roster and per-temperature draw tables.
// Weights and SLAMinutes are keyed by temperature name.
type RoutingConfig struct {
	Agents     []routing.Agent               `yaml:"agents"`
	Weights    map[string]map[string]float64 `yaml:"weights"`
	SLAMinutes map[string]int                `yaml:"sla_minutes"`
}

type ReportConfig struct {
	StatsIntervalSeconds    int `yaml:"stats_interval_seconds"`
	SLACheckIntervalSeconds int `yaml:"sla_check_interval_seconds"`
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Chat.SessionTTLMinutes) * time.Minute
}

func (c *Config) StatsInterval() time.Duration {
	return time.Duration(c.Report.StatsIntervalSeconds) * time.Second
}

func (c *Config) SLACheckInterval() time.Duration {
	return time.Duration(c.Report.SLACheckIntervalSeconds) * time.Second
}

// Roster converts the configured agents into a routing roster.
func (c *Config) Roster() routing.Roster {
	return routing.Roster(c.Routing.Agents)
}

// Tables converts the configured weight maps into routing tables.
func (c *Config) Tables() routing.Tables {
	tables := make(routing.Tables, len(c.Routing.Weights))
	for temp, weights := range c.Routing.Weights {
		tables[scoring.Temperature(temp)] = weights
	}
	return tables
}

// SLATargets converts the configured per-temperature minutes into durations.
func (c *Config) SLATargets() routing.SLATargets {
	targets := make(routing.SLATargets, len(c.Routing.SLAMinutes))
	for temp, minutes := range c.Routing.SLAMinutes {
		targets[scoring.Temperature(temp)] = time.Duration(minutes) * time.Minute
	}
	return targets
}

// Validate rejects configuration the service cannot run with. Roster,
// weight table, threshold, and SLA problems surface through a trial
// router construction so the checks live in one place.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("server port must be positive, got %d", c.Server.Port)
	}
	if c.Server.MetricsPort <= 0 {
		return fmt.Errorf("metrics port must be positive, got %d", c.Server.MetricsPort)
	}
	if c.Server.RateLimitPerMinute <= 0 {
		return fmt.Errorf("rate limit must be positive, got %d", c.Server.RateLimitPerMinute)
	}
	if c.Chat.SessionTTLMinutes <= 0 {
		return fmt.Errorf("session ttl must be positive, got %d", c.Chat.SessionTTLMinutes)
	}
	if c.Report.StatsIntervalSeconds <= 0 {
		return fmt.Errorf("stats interval must be positive, got %d", c.Report.StatsIntervalSeconds)
	}
	if c.Report.SLACheckIntervalSeconds <= 0 {
		return fmt.Errorf("sla check interval must be positive, got %d", c.Report.SLACheckIntervalSeconds)
	}
	for temp := range c.Routing.Weights {
		if !scoring.Temperature(temp).Valid() {
			return fmt.Errorf("routing weights reference unknown temperature %q", temp)
		}
	}
	for temp := range c.Routing.SLAMinutes {
		if !scoring.Temperature(temp).Valid() {
			return fmt.Errorf("sla_minutes references unknown temperature %q", temp)
		}
	}
	if _, err := routing.New(c.Roster(), c.Tables(), c.Scoring, c.SLATargets()); err != nil {
		return err
	}
	return nil
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:               8080,
			MetricsPort:        9090,
			RateLimitPerMinute: 120,
			CORSOrigins:        []string{"*"},
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "spacify.db",
		},
		Chat: ChatConfig{
			SessionTTLMinutes: 60,
		},
		Scoring: scoring.DefaultThresholds(),
		Routing: defaultRouting(),
		Report: ReportConfig{
			StatsIntervalSeconds:    30,
			SLACheckIntervalSeconds: 30,
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func defaultRouting() RoutingConfig {
	weights := make(map[string]map[string]float64)
	for temp, w := range routing.DefaultTables() {
		weights[string(temp)] = w
	}
	slas := make(map[string]int)
	for temp, d := range routing.DefaultSLATargets() {
		slas[string(temp)] = int(d.Minutes())
	}
	return RoutingConfig{
		Agents:     routing.DefaultRoster(),
		Weights:    weights,
		SLAMinutes: slas,
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SPACIFY_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("SPACIFY_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("SPACIFY_ADMIN_TOKEN"); v != "" {
		cfg.Server.AdminToken = v
	}
	if v := os.Getenv("SPACIFY_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.RateLimitPerMinute = n
		}
	}
	if v := os.Getenv("SPACIFY_CORS_ORIGINS"); v != "" {
		var origins []string
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				origins = append(origins, part)
			}
		}
		if len(origins) > 0 {
			cfg.Server.CORSOrigins = origins
		}
	}
	if v := os.Getenv("SPACIFY_DB_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("SPACIFY_DB_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("SPACIFY_NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("SPACIFY_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("SPACIFY_WEBHOOK_URL"); v != "" {
		cfg.Notify.WebhookURL = v
	}
	if v := os.Getenv("SPACIFY_WEBHOOK_TOKEN"); v != "" {
		cfg.Notify.WebhookToken = v
	}
	if v := os.Getenv("SPACIFY_SESSION_TTL_MIN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Chat.SessionTTLMinutes = n
		}
	}
	if v := os.Getenv("SPACIFY_STATS_INTERVAL_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Report.StatsIntervalSeconds = n
		}
	}
	if v := os.Getenv("SPACIFY_SLA_CHECK_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Report.SLACheckIntervalSeconds = n
		}
	}
}
