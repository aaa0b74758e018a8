package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
	Reminders  RemindersConfig  `yaml:"reminders"`
	Log        LogConfig        `yaml:"log"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size      int `yaml:"size"`
	QueueSize int `yaml:"queue_size"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// RemindersConfig controls the two reminder ticks.
type RemindersConfig struct {
	Timezone                   string         `yaml:"timezone"`
	MedicationIntervalSeconds  int            `yaml:"medication_interval_seconds"`
	AppointmentIntervalSeconds int            `yaml:"appointment_interval_seconds"`
	AppointmentLeadMinutes     int            `yaml:"appointment_lead_minutes"`
	MedicationInterval         time.Duration  `yaml:"-"`
	AppointmentInterval        time.Duration  `yaml:"-"`
	Location                   *time.Location `yaml:"-"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// LogConfig selects the zap preset.
type LogConfig struct {
	Development bool `yaml:"development"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.ApplyDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults fills zero values and resolves derived fields.
func (cfg *Config) ApplyDefaults() error {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 30
	}

	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "reminders.db"
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		cfg.WorkerPool.Size = 1
	}
	if cfg.WorkerPool.QueueSize <= 0 {
		cfg.WorkerPool.QueueSize = 64
	}

	r := &cfg.Reminders
	if r.MedicationIntervalSeconds <= 0 {
		r.MedicationIntervalSeconds = 60
	}
	if r.AppointmentIntervalSeconds <= 0 {
		r.AppointmentIntervalSeconds = 300
	}
	if r.AppointmentLeadMinutes <= 0 {
		r.AppointmentLeadMinutes = 60
	}
	r.MedicationInterval = time.Duration(r.MedicationIntervalSeconds) * time.Second
	r.AppointmentInterval = time.Duration(r.AppointmentIntervalSeconds) * time.Second

	if r.Timezone == "" {
		r.Timezone = "Local"
	}
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		return err
	}
	r.Location = loc

	return nil
}
