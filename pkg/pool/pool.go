package pool

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tuantuan-o/ConnectionPool/pkg/dbconn"
	"github.com/tuantuan-o/ConnectionPool/pkg/errors"
	"github.com/tuantuan-o/ConnectionPool/pkg/logger"
)

// Default configuration values
const (
	DefaultMaxSize           = 10
	DefaultMaxIdle           = time.Minute
	DefaultAcquireTimeout    = time.Second
	DefaultProduceRetryDelay = 100 * time.Millisecond
)

// Config configures a Pool
type Config struct {
	// InitSize is the number of connections opened synchronously at
	// construction. The reaper never shrinks the pool below it.
	InitSize int

	// MaxSize is the ceiling on total owned connections, idle plus
	// checked out.
	MaxSize int

	// MaxIdle is how long a connection may sit idle before the reaper
	// evicts it. It is also the reaper's scan period.
	MaxIdle time.Duration

	// AcquireTimeout bounds Acquire when the caller's context carries
	// no deadline of its own.
	AcquireTimeout time.Duration

	// ProduceRetryDelay is how long the producer pauses after a failed
	// connection attempt before re-evaluating.
	ProduceRetryDelay time.Duration
}

// Pool is a bounded pool of database connections. All coordination runs
// through a single mutex and condition variable shared by callers, the
// producer and the reaper.
type Pool struct {
	cfg     Config
	factory dbconn.Factory
	log     *logger.Logger

	mu     sync.Mutex
	cond   *sync.Cond
	idle   []dbconn.RawConnection // FIFO, oldest-idle at the head
	live   int                    // idle + checked out
	closed bool

	stop chan struct{}
	done sync.WaitGroup

	// Counters
	acquires    uint64
	timeouts    uint64
	creates     uint64
	createFails uint64
	failStreak  uint64 // consecutive producer failures, reset on success
	releases    uint64
	evictions   uint64
}

// New creates a pool, opens InitSize connections synchronously and starts
// the producer and reaper goroutines. Any warm-up failure aborts
// construction: a pool that cannot meet its initial capacity never starts.
func New(cfg Config, factory dbconn.Factory) (*Pool, error) {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultMaxSize
	}
	if cfg.InitSize < 0 {
		cfg.InitSize = 0
	}
	if cfg.InitSize > cfg.MaxSize {
		return nil, fmt.Errorf("%w: initSize %d exceeds maxSize %d", errors.ErrInvalidConfig, cfg.InitSize, cfg.MaxSize)
	}
	if cfg.MaxIdle <= 0 {
		cfg.MaxIdle = DefaultMaxIdle
	}
	if cfg.AcquireTimeout <= 0 {
		cfg.AcquireTimeout = DefaultAcquireTimeout
	}
	if cfg.ProduceRetryDelay <= 0 {
		cfg.ProduceRetryDelay = DefaultProduceRetryDelay
	}

	p := &Pool{
		cfg:     cfg,
		factory: factory,
		log:     logger.Get(),
		idle:    make([]dbconn.RawConnection, 0, cfg.MaxSize),
		stop:    make(chan struct{}),
	}
	p.cond = sync.NewCond(&p.mu)

	// Warm-up
	for i := 0; i < cfg.InitSize; i++ {
		conn, err := factory(context.Background())
		if err != nil {
			for _, c := range p.idle {
				c.Close()
			}
			return nil, fmt.Errorf("warm-up connection %d of %d: %w", i+1, cfg.InitSize, err)
		}
		conn.RefreshIdle()
		p.idle = append(p.idle, conn)
		p.live++
	}

	p.done.Add(2)
	go p.produceLoop()
	go p.reapLoop()

	p.log.InfoWith("pool started", "initSize", cfg.InitSize, "maxSize", cfg.MaxSize, "maxIdle", cfg.MaxIdle)
	return p, nil
}

// Acquire hands out the oldest idle connection, blocking until one is
// available or the deadline passes. When ctx carries no deadline the pool's
// AcquireTimeout applies. The returned handle must be closed when the caller
// is done; closing returns the connection to the pool.
func (p *Pool) Acquire(ctx context.Context) (*PooledConn, error) {
	atomic.AddUint64(&p.acquires, 1)

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.AcquireTimeout)
		defer cancel()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for {
		if p.closed {
			return nil, errors.ErrPoolClosed
		}

		// The queue is always consulted before the deadline so a
		// release racing the timeout is never lost.
		if len(p.idle) > 0 {
			conn := p.idle[0]
			p.idle = p.idle[1:]
			// The queue moved toward empty: wake the producer
			p.cond.Broadcast()
			return newHandle(p, conn), nil
		}

		if err := ctx.Err(); err != nil {
			if err == context.DeadlineExceeded {
				atomic.AddUint64(&p.timeouts, 1)
				return nil, errors.ErrAcquireTimeout
			}
			return nil, err
		}

		p.waitWithContext(ctx)
	}
}

// waitWithContext waits on the pool condition, also waking when ctx expires.
// Callers must hold p.mu and re-check state after it returns.
func (p *Pool) waitWithContext(ctx context.Context) {
	woken := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			p.mu.Lock()
			p.cond.Broadcast()
			p.mu.Unlock()
		case <-woken:
		}
	}()
	p.cond.Wait()
	close(woken)
}

// release returns a connection to the tail of the idle queue and wakes
// waiters. A connection that no longer answers is dropped instead so the
// producer can replace it. Only handles call this.
func (p *Pool) release(conn dbconn.RawConnection) {
	atomic.AddUint64(&p.releases, 1)

	p.mu.Lock()
	if p.closed {
		p.live--
		p.mu.Unlock()
		conn.Close()
		return
	}

	if !conn.IsAlive() {
		p.live--
		p.mu.Unlock()
		p.cond.Broadcast()
		p.log.WarnWith("dropping dead connection on release")
		conn.Close()
		return
	}

	conn.RefreshIdle()
	p.idle = append(p.idle, conn)
	p.mu.Unlock()
	p.cond.Broadcast()
}

// produceLoop is the producer: whenever the queue is empty, or the pool has
// fallen below its floor, and the pool is below its ceiling, it opens exactly
// one connection, enqueues it and wakes waiters. A failed attempt is logged,
// counted and retried after a short pause; it never crashes the loop nor
// reaches a waiting caller.
func (p *Pool) produceLoop() {
	defer p.done.Done()

	for {
		p.mu.Lock()
		// Produce when the queue is drained or a dropped connection left
		// the pool under InitSize; idle connections alone do not satisfy
		// the floor.
		for !p.closed && ((len(p.idle) > 0 && p.live >= p.cfg.InitSize) || p.live >= p.cfg.MaxSize) {
			p.cond.Wait()
		}
		if p.closed {
			p.mu.Unlock()
			return
		}
		// Reserve the slot so concurrent evaluation cannot overshoot
		// MaxSize while we dial outside the lock.
		p.live++
		p.mu.Unlock()

		conn, err := p.factory(context.Background())
		if err != nil {
			p.mu.Lock()
			p.live--
			p.mu.Unlock()
			atomic.AddUint64(&p.createFails, 1)
			atomic.AddUint64(&p.failStreak, 1)
			p.log.ErrorWithErr("producer failed to open connection", err)

			select {
			case <-p.stop:
				return
			case <-time.After(p.cfg.ProduceRetryDelay):
			}
			continue
		}

		atomic.AddUint64(&p.creates, 1)
		atomic.StoreUint64(&p.failStreak, 0)
		conn.RefreshIdle()

		p.mu.Lock()
		if p.closed {
			p.live--
			p.mu.Unlock()
			conn.Close()
			return
		}
		p.idle = append(p.idle, conn)
		p.mu.Unlock()
		p.cond.Broadcast()
	}
}

// reapLoop is the reaper: every MaxIdle it trims connections that have been
// idle at least MaxIdle, never below InitSize. The queue is FIFO, so the
// scan stops at the first head that is still fresh.
func (p *Pool) reapLoop() {
	defer p.done.Done()

	ticker := time.NewTicker(p.cfg.MaxIdle)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			p.reapIdle()
		}
	}
}

func (p *Pool) reapIdle() {
	var victims []dbconn.RawConnection

	p.mu.Lock()
	for p.live > p.cfg.InitSize && len(p.idle) > 0 {
		head := p.idle[0]
		if head.IdleDuration() < p.cfg.MaxIdle {
			// Everything behind the head became idle later
			break
		}
		p.idle = p.idle[1:]
		p.live--
		victims = append(victims, head)
	}
	p.mu.Unlock()

	for _, conn := range victims {
		atomic.AddUint64(&p.evictions, 1)
		if err := conn.Close(); err != nil {
			p.log.WarnWith("failed to close evicted connection", "error", err)
		}
	}

	if len(victims) > 0 {
		p.log.DebugWith("reaped idle connections", "count", len(victims))
	}
}

// Close shuts the pool down: background goroutines stop, idle connections
// are closed, and blocked acquirers fail with ErrPoolClosed. Connections
// still checked out are closed as their handles are released.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return errors.ErrPoolClosed
	}
	p.closed = true
	idle := p.idle
	p.idle = nil
	p.live -= len(idle)
	p.mu.Unlock()

	close(p.stop)
	p.cond.Broadcast()

	for _, conn := range idle {
		if err := conn.Close(); err != nil {
			p.log.WarnWith("failed to close idle connection", "error", err)
		}
	}

	p.done.Wait()
	p.log.InfoWith("pool closed")
	return nil
}

// Stats is a snapshot of pool state
type Stats struct {
	InitSize int `json:"init_size"`
	MaxSize  int `json:"max_size"`
	Live     int `json:"live"`
	Idle     int `json:"idle"`
	InUse    int `json:"in_use"`

	Acquires         uint64 `json:"acquires"`
	Timeouts         uint64 `json:"timeouts"`
	Creates          uint64 `json:"creates"`
	CreateFailures   uint64 `json:"create_failures"`
	CreateFailStreak uint64 `json:"create_fail_streak"`
	Releases         uint64 `json:"releases"`
	Evictions        uint64 `json:"evictions"`
}

// Stats returns current pool statistics
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	live := p.live
	idle := len(p.idle)
	p.mu.Unlock()

	return Stats{
		InitSize:         p.cfg.InitSize,
		MaxSize:          p.cfg.MaxSize,
		Live:             live,
		Idle:             idle,
		InUse:            live - idle,
		Acquires:         atomic.LoadUint64(&p.acquires),
		Timeouts:         atomic.LoadUint64(&p.timeouts),
		Creates:          atomic.LoadUint64(&p.creates),
		CreateFailures:   atomic.LoadUint64(&p.createFails),
		CreateFailStreak: atomic.LoadUint64(&p.failStreak),
		Releases:         atomic.LoadUint64(&p.releases),
		Evictions:        atomic.LoadUint64(&p.evictions),
	}
}
