// Package audit records authentication lifecycle events: login
// success/failure, logout, and client token acquisition. Recording is
// best-effort everywhere; an audit failure never fails the flow that
// triggered it.
package audit

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Event is one authentication lifecycle occurrence.
type Event struct {
	Action    string
	SessionID string
	Username  string
	Success   bool
	Detail    string
}

// Recorder persists audit events.
type Recorder interface {
	Record(ctx context.Context, event Event)
}

// LogRecorder emits audit events as structured logs only. It is the
// fallback when no database is configured.
type LogRecorder struct {
	logger *zap.Logger
}

var _ Recorder = (*LogRecorder)(nil)

// NewLogRecorder builds the log-only recorder.
func NewLogRecorder(logger *zap.Logger) *LogRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogRecorder{logger: logger}
}

func (r *LogRecorder) Record(_ context.Context, event Event) {
	r.logger.Info("audit",
		zap.String("event", event.Action),
		zap.String("session_id", event.SessionID),
		zap.String("username", event.Username),
		zap.Bool("success", event.Success),
		zap.String("detail", event.Detail),
		zap.Time("timestamp", time.Now().UTC()),
	)
}
