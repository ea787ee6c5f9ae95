package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/tuantuan-o/ConnectionPool/pkg/errors"

	"gopkg.in/yaml.v3"
)

// Config is the full process configuration
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Pool     PoolConfig     `yaml:"pool"`
	Admin    AdminConfig    `yaml:"admin"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DatabaseConfig describes the database endpoint connections are opened against
type DatabaseConfig struct {
	Driver   string `yaml:"driver"` // mysql | sqlite
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"` // database name, or file path for sqlite
}

// PoolConfig describes pool sizing and wait behavior
type PoolConfig struct {
	InitSize         int `yaml:"init_size"`          // connections created at startup, also the floor
	MaxSize          int `yaml:"max_size"`           // ceiling on total owned connections
	MaxIdleSeconds   int `yaml:"max_idle_seconds"`   // idle eviction threshold and reaper period
	AcquireTimeoutMs int `yaml:"acquire_timeout_ms"` // bounded wait for callers
}

// MaxIdle returns the idle eviction threshold as a duration
func (p PoolConfig) MaxIdle() time.Duration {
	return time.Duration(p.MaxIdleSeconds) * time.Second
}

// AcquireTimeout returns the caller wait bound as a duration
func (p PoolConfig) AcquireTimeout() time.Duration {
	return time.Duration(p.AcquireTimeoutMs) * time.Millisecond
}

// AdminConfig describes the admin/observability HTTP listener
type AdminConfig struct {
	Addr string `yaml:"addr"`
}

// LoggingConfig represents logging settings
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver: "mysql",
			Host:   "127.0.0.1",
			Port:   3306,
		},
		Pool: PoolConfig{
			InitSize:         2,
			MaxSize:          10,
			MaxIdleSeconds:   60,
			AcquireTimeoutMs: 1000,
		},
		Admin: AdminConfig{
			Addr: ":8080",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from a file, applies environment overrides and
// validates the result. The file is required: the pool never starts with
// implicit defaults only.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: no configuration file given", errors.ErrConfigNotFound)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", errors.ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse yaml config: %w", err)
		}
	default:
		parseProperties(string(data), config)
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// parseProperties parses key=value lines into the config. Lines without an
// equals sign, comments and lines with unparseable values are skipped.
// Unknown keys are ignored.
func parseProperties(text string, config *Config) {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		idx := strings.Index(line, "=")
		if idx < 0 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		value := strings.TrimSpace(line[idx+1:])

		switch key {
		case "driver":
			config.Database.Driver = value
		case "host":
			config.Database.Host = value
		case "port":
			if v, err := strconv.Atoi(value); err == nil {
				config.Database.Port = v
			}
		case "username":
			config.Database.Username = value
		case "password":
			config.Database.Password = value
		case "dbname":
			config.Database.DBName = value
		case "initSize":
			if v, err := strconv.Atoi(value); err == nil {
				config.Pool.InitSize = v
			}
		case "maxSize":
			if v, err := strconv.Atoi(value); err == nil {
				config.Pool.MaxSize = v
			}
		case "maxIdleSeconds":
			if v, err := strconv.Atoi(value); err == nil {
				config.Pool.MaxIdleSeconds = v
			}
		case "acquireTimeoutMs":
			if v, err := strconv.Atoi(value); err == nil {
				config.Pool.AcquireTimeoutMs = v
			}
		case "adminAddr":
			config.Admin.Addr = value
		case "logLevel":
			config.Logging.Level = value
		case "logFormat":
			config.Logging.Format = value
		}
	}
}

// applyEnvOverrides applies environment variable overrides
func applyEnvOverrides(config *Config) {
	if host := os.Getenv("DB_HOST"); host != "" {
		config.Database.Host = host
	}

	if port := os.Getenv("DB_PORT"); port != "" {
		if v, err := strconv.Atoi(port); err == nil {
			config.Database.Port = v
		}
	}

	if user := os.Getenv("DB_USERNAME"); user != "" {
		config.Database.Username = user
	}

	if pass := os.Getenv("DB_PASSWORD"); pass != "" {
		config.Database.Password = pass
	}

	if name := os.Getenv("DB_NAME"); name != "" {
		config.Database.DBName = name
	}

	if size := os.Getenv("POOL_INIT_SIZE"); size != "" {
		if v, err := strconv.Atoi(size); err == nil {
			config.Pool.InitSize = v
		}
	}

	if size := os.Getenv("POOL_MAX_SIZE"); size != "" {
		if v, err := strconv.Atoi(size); err == nil {
			config.Pool.MaxSize = v
		}
	}

	if addr := os.Getenv("ADMIN_ADDR"); addr != "" {
		config.Admin.Addr = addr
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		config.Logging.Level = logLevel
	}

	if logFormat := os.Getenv("LOG_FORMAT"); logFormat != "" {
		config.Logging.Format = logFormat
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "mysql":
		if c.Database.Host == "" {
			return fmt.Errorf("%w: database host cannot be empty", errors.ErrInvalidConfig)
		}
		if c.Database.Port < 1 || c.Database.Port > 65535 {
			return fmt.Errorf("%w: database port out of range: %d", errors.ErrInvalidConfig, c.Database.Port)
		}
	case "sqlite":
		if c.Database.DBName == "" {
			return fmt.Errorf("%w: sqlite requires dbname to be a file path", errors.ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: %q", errors.ErrUnsupportedDriver, c.Database.Driver)
	}

	if c.Pool.InitSize < 1 {
		return fmt.Errorf("%w: initSize must be at least 1", errors.ErrInvalidConfig)
	}

	if c.Pool.MaxSize < c.Pool.InitSize {
		return fmt.Errorf("%w: maxSize %d is below initSize %d", errors.ErrInvalidConfig, c.Pool.MaxSize, c.Pool.InitSize)
	}

	if c.Pool.MaxIdleSeconds < 1 {
		return fmt.Errorf("%w: maxIdleSeconds must be at least 1", errors.ErrInvalidConfig)
	}

	if c.Pool.AcquireTimeoutMs < 1 {
		return fmt.Errorf("%w: acquireTimeoutMs must be at least 1", errors.ErrInvalidConfig)
	}

	if !isValidLogLevel(c.Logging.Level) {
		return fmt.Errorf("%w: invalid log level: %s", errors.ErrInvalidConfig, c.Logging.Level)
	}

	if !isValidLogFormat(c.Logging.Format) {
		return fmt.Errorf("%w: invalid log format: %s", errors.ErrInvalidConfig, c.Logging.Format)
	}

	return nil
}

// isValidLogLevel checks if the log level is valid
func isValidLogLevel(level string) bool {
	valid := []string{"debug", "info", "warn", "error"}
	level = strings.ToLower(level)
	for _, v := range valid {
		if level == v {
			return true
		}
	}
	return false
}

// isValidLogFormat checks if the log format is valid
func isValidLogFormat(format string) bool {
	switch strings.ToLower(format) {
	case "text", "json":
		return true
	}
	return false
}

// String returns a string representation of the configuration (for logging).
// The password is never included.
func (c *Config) String() string {
	return fmt.Sprintf("Config{Driver: %s, Host: %s:%d, DB: %s, Pool: %d..%d, MaxIdle: %ds, AcquireTimeout: %dms}",
		c.Database.Driver, c.Database.Host, c.Database.Port, c.Database.DBName,
		c.Pool.InitSize, c.Pool.MaxSize, c.Pool.MaxIdleSeconds, c.Pool.AcquireTimeoutMs)
}
