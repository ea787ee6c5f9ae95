// Package pool provides a bounded, thread-safe pool of reusable database
// connections. Connections are created up front and on demand by a producer
// goroutine, handed out FIFO with a bounded wait, and reclaimed by a reaper
// goroutine once they have sat idle too long.
package pool
