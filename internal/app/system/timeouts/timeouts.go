// Package timeouts provides centralized timeout values for handler operations.
//
// These are used with context.WithTimeout for database and third-party I/O in
// HTTP handlers, so adjusting a tier adjusts it everywhere.
//
// Guidelines for choosing a tier:
//   - Ping: health checks and connectivity verification
//   - Short: simple single-document reads or lookups
//   - Medium: list queries, moderate writes, aggregations
//   - Long: multi-collection writes, image-store fan-out
package timeouts

import "time"

const (
	ping   = 2 * time.Second
	short  = 5 * time.Second
	medium = 10 * time.Second
	long   = 30 * time.Second
)

// Ping returns the timeout for health checks.
func Ping() time.Duration { return ping }

// Short returns the timeout for single-document reads.
func Short() time.Duration { return short }

// Medium returns the timeout for list queries and aggregations.
func Medium() time.Duration { return medium }

// Long returns the timeout for operations touching multiple collections or
// the image store.
func Long() time.Duration { return long }
