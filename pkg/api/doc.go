// Package api provides the admin HTTP surface for the connection pool.
//
// This package encapsulates all HTTP-related concerns:
// - health endpoint with component rollup and system gauges
// - pool statistics endpoint
// - live statistics stream over websocket
// - request ID and logging middleware
//
// The package uses gin-gonic for routing.
package api
