// Package errors provides standardized error definitions for the connection
// pool. All error definitions are centralized here to ensure consistency
// across the pool core, the database drivers, and the admin surface.
package errors
