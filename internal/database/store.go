package database

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store is the data access layer for the purge audit log.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// RecordPurge appends one finished operation to the audit log.
	RecordPurge(ctx context.Context, record *PurgeRecord) error

	// RecentPurges returns the newest audit rows for a channel, newest first.
	RecentPurges(ctx context.Context, channelID string, limit int) ([]PurgeRecord, error)

	// PruneOlderThan deletes audit rows past the retention window and
	// returns how many were removed.
	PruneOlderThan(ctx context.Context, retention time.Duration) (int64, error)

	// RunSQLMaintenance performs VACUUM and statistics refresh.
	RunSQLMaintenance(ctx context.Context) error
}

type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a Store backed by sqlx.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlxStore) RecordPurge(ctx context.Context, record *PurgeRecord) error {
	if record == nil {
		return fmt.Errorf("cannot record nil purge")
	}
	if record.OperationID == "" || record.ChannelID == "" {
		return fmt.Errorf("purge record must carry operation and channel ids")
	}
	record.CreatedAt = time.Now().UTC()

	query := `
        INSERT INTO purges (created_at, operation_id, channel_id, requested_by,
                            search_text, author_id, max_age, matched, deleted, skipped, aborted)
        VALUES (:created_at, :operation_id, :channel_id, :requested_by,
                :search_text, :author_id, :max_age, :matched, :deleted, :skipped, :aborted);
    `
	if _, err := s.db.NamedExecContext(ctx, query, record); err != nil {
		s.logger.ErrorContext(ctx, "Failed to record purge",
			"operation_id", record.OperationID, "channel_id", record.ChannelID, "error", err)
		return fmt.Errorf("failed to record purge: %w", err)
	}

	s.logger.DebugContext(ctx, "Recorded purge",
		"operation_id", record.OperationID, "deleted", record.Deleted, "skipped", record.Skipped)
	return nil
}

func (s *sqlxStore) RecentPurges(ctx context.Context, channelID string, limit int) ([]PurgeRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	var records []PurgeRecord
	query := `
        SELECT * FROM purges
        WHERE channel_id = ?
        ORDER BY created_at DESC, id DESC
        LIMIT ?;
    `
	if err := s.db.SelectContext(ctx, &records, query, channelID, limit); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list recent purges",
			"channel_id", channelID, "error", err)
		return nil, fmt.Errorf("failed to list recent purges: %w", err)
	}
	return records, nil
}

func (s *sqlxStore) PruneOlderThan(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-retention)

	res, err := s.db.ExecContext(ctx, `DELETE FROM purges WHERE created_at < ?;`, cutoff)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to prune audit log", "cutoff", cutoff, "error", err)
		return 0, fmt.Errorf("failed to prune audit log: %w", err)
	}

	pruned, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read pruned row count: %w", err)
	}
	if pruned > 0 {
		s.logger.InfoContext(ctx, "Pruned audit log", "rows", pruned, "cutoff", cutoff)
	}
	return pruned, nil
}

func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	for _, stmt := range []string{"VACUUM;", "ANALYZE;", "PRAGMA optimize;"} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("maintenance statement %q failed: %w", stmt, err)
		}
	}
	s.logger.InfoContext(ctx, "SQL maintenance completed")
	return nil
}
