package purge

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// ScannerConfig tunes the history scan. Pause values are rate-limit pacing,
// not correctness requirements.
type ScannerConfig struct {
	PageSize      int           // max messages per fetch, platform caps at 100
	PagesPerPause int           // insert a pacing pause every this many pages
	PagePause     time.Duration // length of the pacing pause
	RetryDelay    time.Duration // wait before the single fetch retry
	CaseSensitive bool          // match policy passed to Matches
}

// Scanner paginates backward through a channel's history collecting messages
// that satisfy a SearchSpec. It aborts cooperatively when its operation id
// disappears from the registry.
type Scanner struct {
	registry *Registry
	log      *slog.Logger
	cfg      ScannerConfig
}

// NewScanner builds a scanner. Zero config fields get working defaults.
func NewScanner(registry *Registry, log *slog.Logger, cfg ScannerConfig) *Scanner {
	if cfg.PageSize <= 0 || cfg.PageSize > 100 {
		cfg.PageSize = 100
	}
	if cfg.PagesPerPause <= 0 {
		cfg.PagesPerPause = 3
	}
	if cfg.PagePause <= 0 {
		cfg.PagePause = 300 * time.Millisecond
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	return &Scanner{
		registry: registry,
		log:      log.With("component", "scanner"),
		cfg:      cfg,
	}
}

// Scan walks the channel history newest-to-oldest and returns every message
// matching spec. It stops on exhausted history, on reaching the age cutoff,
// or — with Aborted set — when the operation id is removed from the registry.
// A fetch failure is retried once; a second failure is returned as an error.
func (s *Scanner) Scan(ctx context.Context, ch Channel, opID string, spec SearchSpec) (ScanResult, error) {
	var res ScanResult
	beforeID := ""
	pages := 0

	for {
		if !s.registry.Exists(opID) {
			s.log.InfoContext(ctx, "scan aborted before fetch",
				"operation_id", opID, "matches", len(res.Messages))
			res.Aborted = true
			return res, nil
		}

		page, err := s.fetchPage(ctx, ch, beforeID)
		if err != nil {
			return res, fmt.Errorf("history fetch failed: %w", err)
		}
		if len(page) == 0 {
			break
		}
		pages++

		for i := range page {
			if !s.registry.Exists(opID) {
				s.log.InfoContext(ctx, "scan aborted mid-page",
					"operation_id", opID, "matches", len(res.Messages))
				res.Aborted = true
				return res, nil
			}
			m := page[i]
			if !spec.Cutoff.IsZero() && m.Timestamp.Before(spec.Cutoff) {
				continue
			}
			if spec.AuthorID != "" {
				// Webhook posts have no resolvable author and never
				// satisfy an author filter.
				if m.FromWebhook || m.AuthorID != spec.AuthorID {
					continue
				}
			}
			if Matches(&m, spec.Text, s.cfg.CaseSensitive) {
				res.Messages = append(res.Messages, m)
			}
		}

		// Pages arrive newest-first, so the last entry is the page's
		// oldest message; once it precedes the cutoff no older page can
		// contain anything in range.
		oldest := page[len(page)-1]
		if !spec.Cutoff.IsZero() && oldest.Timestamp.Before(spec.Cutoff) {
			break
		}
		beforeID = oldest.ID

		if pages%s.cfg.PagesPerPause == 0 {
			if err := sleepCtx(ctx, s.cfg.PagePause); err != nil {
				return res, err
			}
		}
	}

	s.log.InfoContext(ctx, "scan finished",
		"operation_id", opID, "pages", pages, "matches", len(res.Messages))
	return res, nil
}

func (s *Scanner) fetchPage(ctx context.Context, ch Channel, beforeID string) ([]Message, error) {
	page, err := ch.FetchMessages(ctx, s.cfg.PageSize, beforeID)
	if err == nil {
		return page, nil
	}
	s.log.WarnContext(ctx, "fetch failed, retrying once", "before_id", beforeID, "error", err)
	if serr := sleepCtx(ctx, s.cfg.RetryDelay); serr != nil {
		return nil, serr
	}
	return ch.FetchMessages(ctx, s.cfg.PageSize, beforeID)
}

// sleepCtx pauses for d unless the context ends first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
