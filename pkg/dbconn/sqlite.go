package dbconn

import (
	"fmt"
	"time"

	"github.com/tuantuan-o/ConnectionPool/pkg/errors"

	"github.com/mattn/go-sqlite3"
)

// SQLiteConn is a single SQLite session
type SQLiteConn struct {
	driverConn
}

// OpenSQLite opens one SQLite connection to the database file at path
func OpenSQLite(path string) (*SQLiteConn, error) {
	d := &sqlite3.SQLiteDriver{}
	dc, err := d.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrConnectFailed, err)
	}

	return &SQLiteConn{driverConn{dc: dc, idleSince: time.Now()}}, nil
}
