// Package purge implements the search-and-bulk-delete engine: the paginated
// history scan, the match predicate, the two-tier deletion strategy, and the
// in-memory operation registry that carries cooperative cancellation.
//
// The package never talks to Discord directly; all platform access goes
// through the Channel interface so the engine can be exercised against fakes.
package purge

import (
	"context"
	"time"
)

// Channel is the narrow slice of the platform message transport the engine
// consumes. Implementations live in the bot layer.
type Channel interface {
	// FetchMessages returns up to limit messages strictly older than
	// beforeID (all history when beforeID is empty), newest first.
	FetchMessages(ctx context.Context, limit int, beforeID string) ([]Message, error)

	// DeleteMessage removes a single message.
	DeleteMessage(ctx context.Context, messageID string) error

	// BulkDelete removes up to 100 messages in one call. The platform
	// rejects ids older than the bulk-eligibility window.
	BulkDelete(ctx context.Context, messageIDs []string) error
}

// Message is the engine's read-only view of a platform message.
type Message struct {
	ID          string
	Timestamp   time.Time
	Content     string
	AuthorID    string
	AuthorName  string
	FromWebhook bool
	Embeds      []Embed
	Attachments []string // filenames
}

// Embed holds the searchable text of one rich-content block.
type Embed struct {
	Title       string
	Description string
	AuthorName  string
	FooterText  string
	Fields      []EmbedField
}

// EmbedField is a name/value pair inside an embed.
type EmbedField struct {
	Name  string
	Value string
}

// SearchSpec describes what the scanner looks for.
type SearchSpec struct {
	Text     string
	AuthorID string    // empty = no author filter
	Cutoff   time.Time // zero = no age limit; messages older than this are skipped
}

// ScanResult is what a scan accumulated, plus whether it was cut short by a
// registry abort.
type ScanResult struct {
	Messages []Message
	Aborted  bool
}

// Result summarizes one deletion run.
type Result struct {
	Deleted int
	Skipped int
	Aborted bool
}

// ProgressFunc receives coarse progress updates during deletion.
type ProgressFunc func(deleted, skipped, total int)
