package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tuantuan-o/ConnectionPool/pkg/errors"
)

func writeTempConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write temp config: %v", err)
	}
	return path
}

func TestLoadProperties(t *testing.T) {
	path := writeTempConfig(t, "pool.ini", `
# database endpoint
host=db.example.com
port=3307
username=root
password=123456
dbname=chat
initSize=4
maxSize=16
maxIdleSeconds=30
acquireTimeoutMs=500
adminAddr=:9090
this line is malformed
unknownKey=ignored
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Database.Host != "db.example.com" {
		t.Errorf("Expected host 'db.example.com', got %q", cfg.Database.Host)
	}
	if cfg.Database.Port != 3307 {
		t.Errorf("Expected port 3307, got %d", cfg.Database.Port)
	}
	if cfg.Database.Username != "root" || cfg.Database.Password != "123456" {
		t.Error("Credentials not parsed")
	}
	if cfg.Database.DBName != "chat" {
		t.Errorf("Expected dbname 'chat', got %q", cfg.Database.DBName)
	}
	if cfg.Pool.InitSize != 4 || cfg.Pool.MaxSize != 16 {
		t.Errorf("Pool sizes not parsed: %d..%d", cfg.Pool.InitSize, cfg.Pool.MaxSize)
	}
	if cfg.Pool.MaxIdleSeconds != 30 {
		t.Errorf("Expected maxIdleSeconds 30, got %d", cfg.Pool.MaxIdleSeconds)
	}
	if cfg.Pool.AcquireTimeoutMs != 500 {
		t.Errorf("Expected acquireTimeoutMs 500, got %d", cfg.Pool.AcquireTimeoutMs)
	}
	if cfg.Admin.Addr != ":9090" {
		t.Errorf("Expected admin addr ':9090', got %q", cfg.Admin.Addr)
	}
}

func TestLoadMalformedValuesSkipped(t *testing.T) {
	path := writeTempConfig(t, "pool.ini", `
host=127.0.0.1
port=notanumber
initSize=alsonotanumber
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Unparseable values fall back to defaults
	if cfg.Database.Port != 3306 {
		t.Errorf("Expected default port 3306, got %d", cfg.Database.Port)
	}
	if cfg.Pool.InitSize != 2 {
		t.Errorf("Expected default initSize 2, got %d", cfg.Pool.InitSize)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.ini"))
	if !stderrors.Is(err, errors.ErrConfigNotFound) {
		t.Errorf("Expected ErrConfigNotFound, got %v", err)
	}

	_, err = Load("")
	if !stderrors.Is(err, errors.ErrConfigNotFound) {
		t.Errorf("Expected ErrConfigNotFound for empty path, got %v", err)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeTempConfig(t, "pool.yaml", `
database:
  driver: sqlite
  dbname: ./pool.db
pool:
  init_size: 3
  max_size: 6
  max_idle_seconds: 45
  acquire_timeout_ms: 250
logging:
  level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load yaml config: %v", err)
	}

	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Expected driver sqlite, got %q", cfg.Database.Driver)
	}
	if cfg.Pool.InitSize != 3 || cfg.Pool.MaxSize != 6 {
		t.Errorf("Pool sizes not parsed: %d..%d", cfg.Pool.InitSize, cfg.Pool.MaxSize)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Expected log level debug, got %q", cfg.Logging.Level)
	}
}

func TestEnvOverrides(t *testing.T) {
	path := writeTempConfig(t, "pool.ini", "host=fromfile\n")

	t.Setenv("DB_HOST", "fromenv")
	t.Setenv("POOL_MAX_SIZE", "20")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Database.Host != "fromenv" {
		t.Errorf("Expected env to win, got host %q", cfg.Database.Host)
	}
	if cfg.Pool.MaxSize != 20 {
		t.Errorf("Expected env maxSize 20, got %d", cfg.Pool.MaxSize)
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate: %v", err)
	}

	cfg = DefaultConfig()
	cfg.Database.Driver = "oracle"
	if err := cfg.Validate(); !stderrors.Is(err, errors.ErrUnsupportedDriver) {
		t.Errorf("Expected ErrUnsupportedDriver, got %v", err)
	}

	cfg = DefaultConfig()
	cfg.Pool.InitSize = 0
	if err := cfg.Validate(); !stderrors.Is(err, errors.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for initSize 0, got %v", err)
	}

	cfg = DefaultConfig()
	cfg.Pool.MaxSize = 1
	cfg.Pool.InitSize = 5
	if err := cfg.Validate(); !stderrors.Is(err, errors.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for maxSize < initSize, got %v", err)
	}

	cfg = DefaultConfig()
	cfg.Logging.Level = "loud"
	if err := cfg.Validate(); !stderrors.Is(err, errors.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for bad log level, got %v", err)
	}

	cfg = DefaultConfig()
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); !stderrors.Is(err, errors.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for bad log format, got %v", err)
	}

	cfg = DefaultConfig()
	cfg.Logging.Format = "json"
	if err := cfg.Validate(); err != nil {
		t.Errorf("json log format should validate: %v", err)
	}
}

func TestStringRedactsPassword(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Database.Password = "supersecret"

	if s := cfg.String(); strings.Contains(s, "supersecret") {
		t.Error("String() must not include the password")
	}
}
