package errors

import "errors"

// Configuration errors
var (
	// ErrConfigNotFound is returned when the configuration file is absent.
	// The pool must not start without configuration.
	ErrConfigNotFound = errors.New("configuration not found")

	// ErrInvalidConfig is returned when configuration fails validation
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Pool errors
var (
	// ErrAcquireTimeout is returned when no idle connection became
	// available within the acquire deadline
	ErrAcquireTimeout = errors.New("acquire timed out waiting for connection")

	// ErrPoolClosed is returned when operating on a closed pool
	ErrPoolClosed = errors.New("pool is closed")
)

// Connection errors
var (
	// ErrConnectFailed is returned when a database connection cannot be opened
	ErrConnectFailed = errors.New("database connection failed")

	// ErrConnReleased is returned when a pooled connection is used after
	// it has been returned to the pool
	ErrConnReleased = errors.New("connection already released to pool")

	// ErrUnsupportedDriver is returned for an unrecognized driver name
	ErrUnsupportedDriver = errors.New("unsupported database driver")
)
