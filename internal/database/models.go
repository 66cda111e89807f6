package database

import "time"

// PurgeRecord is one row of the purge audit log: a finished (completed or
// aborted) purge operation. Live operations are never persisted.
type PurgeRecord struct {
	ID        uint      `db:"id"`
	CreatedAt time.Time `db:"created_at"`

	OperationID string `db:"operation_id"`
	ChannelID   string `db:"channel_id"`
	RequestedBy string `db:"requested_by"`
	SearchText  string `db:"search_text"`
	AuthorID    string `db:"author_id"`
	MaxAge      string `db:"max_age"`

	Matched int  `db:"matched"`
	Deleted int  `db:"deleted"`
	Skipped int  `db:"skipped"`
	Aborted bool `db:"aborted"`
}
