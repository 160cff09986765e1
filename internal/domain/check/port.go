package check

import (
	"context"
	"time"
)

// Notifier delivers a short text alert to a destination (the owner's phone).
type Notifier interface {
	Send(ctx context.Context, to, message string) error
}

// LogSink is an append-only store of per-check log streams.
type LogSink interface {
	Append(stream string, line []byte) error
	List(includeArchives bool) ([]string, error)
	// Rotate archives the live stream under archive and truncates it.
	// The stream is left untouched when archiving fails.
	Rotate(stream, archive string) error
}

type Clock interface {
	Now() time.Time
}
