package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	defaultImageMaxSize = 10 * 1024 * 1024  // 10MiB
	defaultModelMaxSize = 200 * 1024 * 1024 // 200MiB
	// multipart framing and text fields on top of the largest file
	requestBodyHeadroom = 16 * 1024 * 1024
)

// Config captures service level configuration loaded from config.yaml.
// Every leaf can be overridden through a BLENDER_BOARD_* environment variable.
type Config struct {
	Server   ServerConfig   `yaml:"server" envPrefix:"SERVER_"`
	Database DatabaseConfig `yaml:"database" envPrefix:"DATABASE_"`
	Storage  StorageConfig  `yaml:"storage" envPrefix:"STORAGE_"`
	Upload   UploadConfig   `yaml:"upload" envPrefix:"UPLOAD_"`
	CORS     CORSConfig     `yaml:"cors" envPrefix:"CORS_"`
	Redis    RedisConfig    `yaml:"redis" envPrefix:"REDIS_"`
	Log      LogConfig      `yaml:"log" envPrefix:"LOG_"`
}

// ServerConfig defines HTTP server options.
type ServerConfig struct {
	Address            string `yaml:"address" env:"ADDRESS"`
	MaxRequestBodySize int64  `yaml:"max_request_body_size" env:"MAX_REQUEST_BODY_SIZE"`
}

// DatabaseConfig defines the database backend configuration.
type DatabaseConfig struct {
	Driver   string         `yaml:"driver" env:"DRIVER"`
	SQLite   SQLiteConfig   `yaml:"sqlite" envPrefix:"SQLITE_"`
	MySQL    MySQLConfig    `yaml:"mysql" envPrefix:"MYSQL_"`
	Postgres PostgresConfig `yaml:"postgres" envPrefix:"POSTGRES_"`
}

// SQLiteConfig contains SQLite specific settings.
type SQLiteConfig struct {
	Path string `yaml:"path" env:"PATH"`
}

// MySQLConfig contains MySQL specific connection details.
type MySQLConfig struct {
	DSN string `yaml:"dsn" env:"DSN"`
}

// PostgresConfig contains PostgreSQL specific connection details.
type PostgresConfig struct {
	DSN string `yaml:"dsn" env:"DSN"`
}

// StorageConfig selects where uploaded files live.
type StorageConfig struct {
	Type  string             `yaml:"type" env:"TYPE"`
	Local LocalStorageConfig `yaml:"local" envPrefix:"LOCAL_"`
}

// LocalStorageConfig holds the root of the per-kind upload directories.
type LocalStorageConfig struct {
	BasePath string `yaml:"base_path" env:"BASE_PATH"`
}

// UploadConfig defines per-kind upload ceilings in bytes.
type UploadConfig struct {
	ImageMaxSize int64 `yaml:"image_max_size" env:"IMAGE_MAX_SIZE"`
	ModelMaxSize int64 `yaml:"model_max_size" env:"MODEL_MAX_SIZE"`
}

// CORSConfig defines CORS middleware settings.
type CORSConfig struct {
	AllowOrigin      string `yaml:"allow_origin" env:"ALLOW_ORIGIN"`
	AllowMethods     string `yaml:"allow_methods" env:"ALLOW_METHODS"`
	AllowHeaders     string `yaml:"allow_headers" env:"ALLOW_HEADERS"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"ALLOW_CREDENTIALS"`
}

// RedisConfig defines Redis connection settings for the write lock.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled" env:"ENABLED"`
	Address  string `yaml:"address" env:"ADDRESS"`
	Password string `yaml:"password" env:"PASSWORD"`
	DB       int    `yaml:"db" env:"DB"`
	// LockKey, LockTTL and LockTimeout tune the write lock around mutations.
	LockKey     string        `yaml:"lock_key" env:"LOCK_KEY"`
	LockTTL     time.Duration `yaml:"lock_ttl" env:"LOCK_TTL"`
	LockTimeout time.Duration `yaml:"lock_timeout" env:"LOCK_TIMEOUT"`
}

// LogConfig controls hlog verbosity.
type LogConfig struct {
	Level string `yaml:"level" env:"LEVEL"`
}

// Load reads a YAML configuration file from the provided path and applies
// environment overrides on top of it.
// It searches in the current working directory first, then next to the binary executable.
func Load(name string) (*Config, error) {
	cfg := defaultConfig()

	configPath := findConfigFile(name)
	if configPath == "" {
		log.Printf("Warning: config file %q not found, using defaults", name)
	} else {
		log.Printf("Loading config from: %s", configPath)
		if err := decodeFile(configPath, cfg); err != nil {
			return nil, err
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "BLENDER_BOARD_"}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	applyDefaults(cfg)
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer func() { _ = f.Close() }()

	var parsed Config
	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(&parsed); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	*cfg = parsed
	return nil
}

func defaultConfig() *Config {
	cfg := &Config{
		CORS: CORSConfig{
			AllowOrigin:  "*",
			AllowMethods: "GET,POST,PATCH,DELETE,OPTIONS",
			AllowHeaders: "*",
		},
	}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.SQLite.Path == "" {
		cfg.Database.SQLite.Path = "data/blender-board.sqlite"
	}
	if cfg.Storage.Type == "" {
		cfg.Storage.Type = "local"
	}
	if cfg.Storage.Local.BasePath == "" {
		cfg.Storage.Local.BasePath = "uploads"
	}
	if cfg.Upload.ImageMaxSize <= 0 {
		cfg.Upload.ImageMaxSize = defaultImageMaxSize
	}
	if cfg.Upload.ModelMaxSize <= 0 {
		cfg.Upload.ModelMaxSize = defaultModelMaxSize
	}
	if cfg.Server.MaxRequestBodySize <= 0 {
		largest := cfg.Upload.ModelMaxSize
		if cfg.Upload.ImageMaxSize > largest {
			largest = cfg.Upload.ImageMaxSize
		}
		// a model create may carry source + preview + thumbnail
		cfg.Server.MaxRequestBodySize = 2*largest + cfg.Upload.ImageMaxSize + requestBodyHeadroom
	}
	if cfg.Redis.Address == "" {
		cfg.Redis.Address = "localhost:6379"
	}
	if cfg.Redis.LockKey == "" {
		cfg.Redis.LockKey = "blender_board:write_lock"
	}
	if cfg.Redis.LockTTL <= 0 {
		cfg.Redis.LockTTL = 2 * time.Minute
	}
	if cfg.Redis.LockTimeout <= 0 {
		cfg.Redis.LockTimeout = 10 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// findConfigFile searches for a config file in the current directory first,
// then next to the binary executable. Returns the full path or empty string.
func findConfigFile(name string) string {
	if _, err := os.Stat(name); err == nil {
		abs, _ := filepath.Abs(name)
		return abs
	}

	exe, err := os.Executable()
	if err == nil {
		candidate := filepath.Join(filepath.Dir(exe), name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return ""
}
