package pool

import (
	"context"
	"sync/atomic"

	"github.com/tuantuan-o/ConnectionPool/pkg/dbconn"
	"github.com/tuantuan-o/ConnectionPool/pkg/errors"
)

// PooledConn is a borrowed connection. The pool keeps ownership; the caller
// holds the handle for the duration of the borrow and must Close it when
// done, typically with defer. Close returns the connection to the pool
// rather than tearing it down, and is safe to call more than once: release
// happens exactly once no matter how many exit paths reach it.
type PooledConn struct {
	pool     *Pool
	raw      dbconn.RawConnection
	released atomic.Bool
}

func newHandle(p *Pool, raw dbconn.RawConnection) *PooledConn {
	return &PooledConn{pool: p, raw: raw}
}

// Exec runs a statement on the borrowed connection
func (c *PooledConn) Exec(ctx context.Context, stmt string, args ...any) (int64, error) {
	if c.released.Load() {
		return 0, errors.ErrConnReleased
	}
	return c.raw.Exec(ctx, stmt, args...)
}

// Query runs a statement and returns a row cursor
func (c *PooledConn) Query(ctx context.Context, stmt string, args ...any) (*dbconn.Rows, error) {
	if c.released.Load() {
		return nil, errors.ErrConnReleased
	}
	return c.raw.Query(ctx, stmt, args...)
}

// Close returns the connection to the pool. Calling it again is a no-op.
func (c *PooledConn) Close() error {
	if !c.released.CompareAndSwap(false, true) {
		return nil
	}
	c.pool.release(c.raw)
	return nil
}
