package dbconn

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/tuantuan-o/ConnectionPool/pkg/config"
	"github.com/tuantuan-o/ConnectionPool/pkg/errors"

	stderrors "errors"
)

func TestSQLiteExecAndQuery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	conn, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("Failed to open sqlite connection: %v", err)
	}
	defer conn.Close()

	ctx := context.Background()

	if _, err := conn.Exec(ctx, "CREATE TABLE user (name TEXT, age INTEGER)"); err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}

	affected, err := conn.Exec(ctx, "INSERT INTO user(name, age) VALUES (?, ?)", "zhang san", 20)
	if err != nil {
		t.Fatalf("Failed to insert: %v", err)
	}
	if affected != 1 {
		t.Errorf("Expected 1 affected row, got %d", affected)
	}

	rows, err := conn.Query(ctx, "SELECT name, age FROM user WHERE age > ?", 10)
	if err != nil {
		t.Fatalf("Failed to query: %v", err)
	}
	defer rows.Close()

	cols := rows.Columns()
	if len(cols) != 2 || cols[0] != "name" || cols[1] != "age" {
		t.Errorf("Unexpected columns: %v", cols)
	}

	row, err := rows.Next()
	if err != nil {
		t.Fatalf("Failed to read row: %v", err)
	}
	if got := fmt.Sprintf("%s", row[0]); got != "zhang san" {
		t.Errorf("Expected name 'zhang san', got %q", got)
	}
	if row[1] != int64(20) {
		t.Errorf("Expected age 20, got %v", row[1])
	}

	if _, err := rows.Next(); err != io.EOF {
		t.Errorf("Expected io.EOF at end of result set, got %v", err)
	}
}

func TestSQLiteIdleClock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "idle.db")

	conn, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("Failed to open sqlite connection: %v", err)
	}
	defer conn.Close()

	if !conn.IsAlive() {
		t.Error("Fresh connection should be alive")
	}

	time.Sleep(20 * time.Millisecond)
	before := conn.IdleDuration()
	if before < 20*time.Millisecond {
		t.Errorf("Expected idle duration to accumulate, got %v", before)
	}

	conn.RefreshIdle()
	if after := conn.IdleDuration(); after >= before {
		t.Errorf("Expected RefreshIdle to restart the clock, got %v", after)
	}
}

func TestNewFactory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "factory.db")

	factory, err := NewFactory(config.DatabaseConfig{Driver: "sqlite", DBName: path})
	if err != nil {
		t.Fatalf("Failed to build sqlite factory: %v", err)
	}

	conn, err := factory(context.Background())
	if err != nil {
		t.Fatalf("Factory failed to open connection: %v", err)
	}
	conn.Close()
}

func TestNewFactoryUnsupportedDriver(t *testing.T) {
	_, err := NewFactory(config.DatabaseConfig{Driver: "oracle"})
	if !stderrors.Is(err, errors.ErrUnsupportedDriver) {
		t.Errorf("Expected ErrUnsupportedDriver, got %v", err)
	}
}
