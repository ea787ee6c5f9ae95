package dbconn

import (
	"context"
	"database/sql/driver"
	"fmt"
	"time"
)

// RawConnection is a single live session to a database server. The pool owns
// connections of this type; callers only ever see them through a pooled
// handle. The idle timestamp is the connection's own: it is refreshed every
// time the connection returns to the pool and read by the reaper.
type RawConnection interface {
	// Exec runs a statement and returns the number of affected rows
	Exec(ctx context.Context, stmt string, args ...any) (int64, error)

	// Query runs a statement and returns a row cursor
	Query(ctx context.Context, stmt string, args ...any) (*Rows, error)

	// IsAlive reports whether the session is still usable
	IsAlive() bool

	// IdleDuration reports how long the connection has been idle
	IdleDuration() time.Duration

	// RefreshIdle restarts the idle clock
	RefreshIdle()

	// Close tears down the session
	Close() error
}

// Factory opens a new RawConnection. The pool calls it during warm-up and
// whenever the producer tops the pool up.
type Factory func(ctx context.Context) (RawConnection, error)

// driverConn implements RawConnection on top of a database/sql/driver.Conn.
// Both backends embed it.
type driverConn struct {
	dc        driver.Conn
	idleSince time.Time
}

func (c *driverConn) Exec(ctx context.Context, stmt string, args ...any) (int64, error) {
	values, err := normalizeArgs(args)
	if err != nil {
		return 0, err
	}

	if ec, ok := c.dc.(driver.ExecerContext); ok {
		res, err := ec.ExecContext(ctx, stmt, namedValues(values))
		if err != nil {
			return 0, err
		}
		return res.RowsAffected()
	}

	st, err := c.dc.Prepare(stmt)
	if err != nil {
		return 0, err
	}
	defer st.Close()

	res, err := st.Exec(values)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (c *driverConn) Query(ctx context.Context, stmt string, args ...any) (*Rows, error) {
	values, err := normalizeArgs(args)
	if err != nil {
		return nil, err
	}

	if qc, ok := c.dc.(driver.QueryerContext); ok {
		dr, err := qc.QueryContext(ctx, stmt, namedValues(values))
		if err != nil {
			return nil, err
		}
		return &Rows{dr: dr}, nil
	}

	st, err := c.dc.Prepare(stmt)
	if err != nil {
		return nil, err
	}

	dr, err := st.Query(values)
	if err != nil {
		st.Close()
		return nil, err
	}
	return &Rows{dr: dr, st: st}, nil
}

func (c *driverConn) IsAlive() bool {
	p, ok := c.dc.(driver.Pinger)
	if !ok {
		return true
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return p.Ping(ctx) == nil
}

func (c *driverConn) IdleDuration() time.Duration {
	return time.Since(c.idleSince)
}

func (c *driverConn) RefreshIdle() {
	c.idleSince = time.Now()
}

func (c *driverConn) Close() error {
	return c.dc.Close()
}

// Rows is a cursor over a driver-level result set
type Rows struct {
	dr driver.Rows
	st driver.Stmt // non-nil when rows came from a prepared fallback
}

// Columns returns the result column names
func (r *Rows) Columns() []string {
	return r.dr.Columns()
}

// Next returns the next row, or io.EOF when the result set is exhausted
func (r *Rows) Next() ([]driver.Value, error) {
	dest := make([]driver.Value, len(r.dr.Columns()))
	if err := r.dr.Next(dest); err != nil {
		return nil, err
	}
	return dest, nil
}

// Close releases the cursor
func (r *Rows) Close() error {
	err := r.dr.Close()
	if r.st != nil {
		if serr := r.st.Close(); err == nil {
			err = serr
		}
	}
	return err
}

// normalizeArgs converts caller arguments to driver values
func normalizeArgs(args []any) ([]driver.Value, error) {
	values := make([]driver.Value, len(args))
	for i, arg := range args {
		v, err := driver.DefaultParameterConverter.ConvertValue(arg)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		values[i] = v
	}
	return values, nil
}

// namedValues adapts positional values to the context-aware driver interfaces
func namedValues(values []driver.Value) []driver.NamedValue {
	named := make([]driver.NamedValue, len(values))
	for i, v := range values {
		named[i] = driver.NamedValue{Ordinal: i + 1, Value: v}
	}
	return named
}
