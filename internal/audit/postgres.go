package audit

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const insertEventSQL = `INSERT INTO auth_events (event_id, action, session_id, username, success, detail, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

// PostgresRecorder writes audit events to the auth_events table and
// mirrors them to the log. Insert failures are logged and swallowed.
type PostgresRecorder struct {
	pool   *pgxpool.Pool
	node   *snowflake.Node
	logger *zap.Logger
}

var _ Recorder = (*PostgresRecorder)(nil)

// NewPostgresRecorder builds the database-backed recorder.
func NewPostgresRecorder(pool *pgxpool.Pool, node *snowflake.Node, logger *zap.Logger) *PostgresRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgresRecorder{pool: pool, node: node, logger: logger}
}

func (r *PostgresRecorder) Record(ctx context.Context, event Event) {
	NewLogRecorder(r.logger).Record(ctx, event)

	insertCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(insertCtx, insertEventSQL,
		r.node.Generate().Int64(),
		event.Action,
		event.SessionID,
		event.Username,
		event.Success,
		event.Detail,
		time.Now().UTC(),
	)
	if err != nil {
		r.logger.Warn("audit insert failed",
			zap.String("event", event.Action),
			zap.Error(err),
		)
	}
}
