// Package config loads service configuration from YAML files with
// environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"time"
)

const (
	defaultServerPort      = 8060
	defaultServerTimeout   = 30 * time.Second
	defaultDatabasePort    = 5432
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 5
	defaultConnMaxLifetime = 5 * time.Minute
	defaultRedisAddress    = "localhost:6379"
	defaultOutputDir       = "./storage/videos"
	defaultMaxHeight       = 1080
	defaultYtDlpPath       = "yt-dlp"
	defaultScanItemsCap    = 5000
	defaultConcurrency     = 2
	defaultJobTimeout      = 10 * time.Minute
)

// Config is the root configuration for both the API server and the worker.
type Config struct {
	Debug    bool           `env:"APP_DEBUG" yaml:"debug"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Auth     AuthConfig     `yaml:"auth"`
	Media    MediaConfig    `yaml:"media"`
	Scan     ScanConfig     `yaml:"scan"`
	Worker   WorkerConfig   `yaml:"worker"`
}

type ServerConfig struct {
	Host         string        `env:"SERVER_HOST" yaml:"host"`
	Port         int           `env:"SERVER_PORT" yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	CORSOrigins  []string      `env:"CORS_ORIGINS" yaml:"cors_origins"`
}

type DatabaseConfig struct {
	Host            string        `env:"DB_HOST"     yaml:"host"`
	Port            int           `env:"DB_PORT"     yaml:"port"`
	User            string        `env:"DB_USER"     yaml:"user"`
	Password        string        `env:"DB_PASSWORD" yaml:"password"`
	DBName          string        `env:"DB_NAME"     yaml:"dbname"`
	SSLMode         string        `env:"DB_SSLMODE"  yaml:"sslmode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

type RedisConfig struct {
	Address  string `env:"REDIS_ADDRESS"  yaml:"address"`
	Password string `env:"REDIS_PASSWORD" yaml:"password"`
	DB       int    `env:"REDIS_DB"       yaml:"db"`
}

// AuthConfig holds the API-key gate settings. An empty key disables the gate.
type AuthConfig struct {
	APIKey string `env:"API_KEY" yaml:"api_key"`
}

// MediaConfig controls the yt-dlp integration and download output layout.
type MediaConfig struct {
	OutputDir string `env:"VIDEO_OUTDIR" yaml:"output_dir"`
	MaxHeight int    `env:"MAX_HEIGHT"   yaml:"max_height"`
	YtDlpPath string `env:"YTDLP_PATH"   yaml:"ytdlp_path"`
}

// ScanConfig controls channel scan behaviour.
type ScanConfig struct {
	// MaxItemsCap is the hard ceiling for per-category enumeration,
	// applied regardless of what a caller requests.
	MaxItemsCap int `env:"SCAN_MAX_ITEMS_CAP" yaml:"max_items_cap"`
}

// WorkerConfig controls the queue worker process.
type WorkerConfig struct {
	Concurrency int           `env:"WORKER_CONCURRENCY" yaml:"concurrency"`
	JobTimeout  time.Duration `env:"WORKER_JOB_TIMEOUT" yaml:"job_timeout"`
}

// Load reads the YAML config at path (if present), applies defaults, then
// applies environment variable overrides. Env always wins.
func Load(path string) (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, fmt.Errorf("load environment files: %w", err)
	}

	var cfg Config
	if err := loadYAML(path, &cfg); err != nil {
		return nil, err
	}

	setDefaults(&cfg)
	applyEnvOverrides(&cfg)

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 {
		return errors.New("server.port must be positive")
	}
	if c.Database.Host == "" {
		return errors.New("database.host is required")
	}
	if c.Database.User == "" {
		return errors.New("database.user is required")
	}
	if c.Database.DBName == "" {
		return errors.New("database.dbname is required")
	}
	if c.Redis.Address == "" {
		return errors.New("redis.address is required")
	}
	if c.Scan.MaxItemsCap <= 0 {
		return errors.New("scan.max_items_cap must be positive")
	}
	if c.Worker.Concurrency <= 0 {
		return errors.New("worker.concurrency must be positive")
	}
	return nil
}

func setDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaultServerPort
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = defaultServerTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = defaultServerTimeout
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = defaultDatabasePort
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = defaultMaxOpenConns
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = defaultMaxIdleConns
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = defaultConnMaxLifetime
	}
	if cfg.Redis.Address == "" {
		cfg.Redis.Address = defaultRedisAddress
	}
	if cfg.Media.OutputDir == "" {
		cfg.Media.OutputDir = defaultOutputDir
	}
	if cfg.Media.MaxHeight == 0 {
		cfg.Media.MaxHeight = defaultMaxHeight
	}
	if cfg.Media.YtDlpPath == "" {
		cfg.Media.YtDlpPath = defaultYtDlpPath
	}
	if cfg.Scan.MaxItemsCap == 0 {
		cfg.Scan.MaxItemsCap = defaultScanItemsCap
	}
	if cfg.Worker.Concurrency == 0 {
		cfg.Worker.Concurrency = defaultConcurrency
	}
	if cfg.Worker.JobTimeout == 0 {
		cfg.Worker.JobTimeout = defaultJobTimeout
	}
}
