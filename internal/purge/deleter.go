package purge

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// DeleterConfig tunes the two-tier deletion strategy. All pauses are
// rate-limit pacing; see config defaults for the empirically tuned values.
type DeleterConfig struct {
	BulkMaxAge    time.Duration // platform bulk-eligibility window (14 days)
	ChunkSize     int           // ids per bulk call, platform caps at 100
	ChunkPause    time.Duration // after a successful bulk chunk
	FallbackPause time.Duration // after a chunk that degraded to per-item deletes
	BatchSize     int           // older messages per batch
	GroupSize     int           // concurrent individual deletes in flight
	GroupPause    time.Duration // between concurrency groups
	BatchPause    time.Duration // between batches
}

// Deleter removes an accumulated match set: bulk calls for messages young
// enough for the platform's batched endpoint, paced individual deletes for
// the rest. Abort is cooperative, checked before every chunk, batch, and
// group; already-dispatched deletes in the current group always complete.
type Deleter struct {
	registry *Registry
	log      *slog.Logger
	cfg      DeleterConfig
}

// NewDeleter builds a deleter. Zero config fields get working defaults.
func NewDeleter(registry *Registry, log *slog.Logger, cfg DeleterConfig) *Deleter {
	if cfg.BulkMaxAge <= 0 {
		cfg.BulkMaxAge = 14 * 24 * time.Hour
	}
	if cfg.ChunkSize <= 0 || cfg.ChunkSize > 100 {
		cfg.ChunkSize = 100
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 25
	}
	if cfg.GroupSize <= 0 {
		cfg.GroupSize = 3
	}
	return &Deleter{
		registry: registry,
		log:      log.With("component", "deleter"),
		cfg:      cfg,
	}
}

// progress spaces onProgress calls so the reporting surface is edited roughly
// ten times per run, never more often.
type progress struct {
	fn       ProgressFunc
	total    int
	interval int
	lastAt   int
}

func newProgress(fn ProgressFunc, total int) *progress {
	interval := total / 10
	if interval < 10 {
		interval = 10
	}
	return &progress{fn: fn, total: total, interval: interval}
}

func (p *progress) report(deleted, skipped int) {
	if p.fn == nil {
		return
	}
	done := deleted + skipped
	if done-p.lastAt >= p.interval {
		p.lastAt = done
		p.fn(deleted, skipped, p.total)
	}
}

// DeleteAll removes every message in msgs, reading msgs only (the match set
// is never mutated). Per-item failures count as skipped and never end the
// run; a failed bulk call degrades to per-item handling for that chunk only.
func (d *Deleter) DeleteAll(ctx context.Context, ch Channel, msgs []Message, opID string, onProgress ProgressFunc) Result {
	var res Result
	if len(msgs) == 0 {
		return res
	}

	eligibleAfter := time.Now().Add(-d.cfg.BulkMaxAge)
	var recent, older []Message
	for _, m := range msgs {
		if m.Timestamp.After(eligibleAfter) {
			recent = append(recent, m)
		} else {
			older = append(older, m)
		}
	}
	d.log.InfoContext(ctx, "starting deletion",
		"operation_id", opID, "total", len(msgs),
		"bulk_eligible", len(recent), "older", len(older))

	prog := newProgress(onProgress, len(msgs))

	if d.deleteRecent(ctx, ch, recent, opID, &res, prog) &&
		d.deleteOlder(ctx, ch, older, opID, &res, prog) {
		d.log.InfoContext(ctx, "deletion finished",
			"operation_id", opID, "deleted", res.Deleted, "skipped", res.Skipped)
		return res
	}

	res.Aborted = true
	d.log.InfoContext(ctx, "deletion aborted",
		"operation_id", opID, "deleted", res.Deleted, "skipped", res.Skipped)
	return res
}

// deleteRecent removes bulk-eligible messages chunk by chunk. Returns false
// on abort.
func (d *Deleter) deleteRecent(ctx context.Context, ch Channel, recent []Message, opID string, res *Result, prog *progress) bool {
	for start := 0; start < len(recent); start += d.cfg.ChunkSize {
		if !d.registry.Exists(opID) {
			return false
		}
		end := start + d.cfg.ChunkSize
		if end > len(recent) {
			end = len(recent)
		}
		chunk := recent[start:end]

		ids := make([]string, len(chunk))
		for i, m := range chunk {
			ids[i] = m.ID
		}

		if err := ch.BulkDelete(ctx, ids); err != nil {
			d.log.WarnContext(ctx, "bulk delete failed, falling back to per-item deletes",
				"operation_id", opID, "chunk_size", len(chunk), "error", err)
			ok := d.deletePaced(ctx, ch, chunk, opID, res, prog, 0)
			if !ok {
				return false
			}
			if err := sleepCtx(ctx, d.cfg.FallbackPause); err != nil {
				return false
			}
			continue
		}

		res.Deleted += len(chunk)
		prog.report(res.Deleted, res.Skipped)
		if err := sleepCtx(ctx, d.cfg.ChunkPause); err != nil {
			return false
		}
	}
	return true
}

// deleteOlder removes ineligible messages in paced batches. Returns false on
// abort.
func (d *Deleter) deleteOlder(ctx context.Context, ch Channel, older []Message, opID string, res *Result, prog *progress) bool {
	for start := 0; start < len(older); start += d.cfg.BatchSize {
		if !d.registry.Exists(opID) {
			return false
		}
		end := start + d.cfg.BatchSize
		if end > len(older) {
			end = len(older)
		}
		if !d.deletePaced(ctx, ch, older[start:end], opID, res, prog, d.cfg.GroupPause) {
			return false
		}
		if err := sleepCtx(ctx, d.cfg.BatchPause); err != nil {
			return false
		}
	}
	return true
}

// deletePaced removes msgs individually in bounded-concurrency groups with a
// registry checkpoint before each group. Returns false on abort; deletes
// already in flight for the current group complete either way.
func (d *Deleter) deletePaced(ctx context.Context, ch Channel, msgs []Message, opID string, res *Result, prog *progress, pause time.Duration) bool {
	for start := 0; start < len(msgs); start += d.cfg.GroupSize {
		if !d.registry.Exists(opID) {
			return false
		}
		end := start + d.cfg.GroupSize
		if end > len(msgs) {
			end = len(msgs)
		}

		var deleted, skipped atomic.Int64
		g, gctx := errgroup.WithContext(ctx)
		for _, m := range msgs[start:end] {
			g.Go(func() error {
				if err := ch.DeleteMessage(gctx, m.ID); err != nil {
					// Already gone or transiently forbidden: count
					// and move on.
					d.log.DebugContext(ctx, "message delete failed",
						"operation_id", opID, "message_id", m.ID, "error", err)
					skipped.Add(1)
					return nil
				}
				deleted.Add(1)
				return nil
			})
		}
		_ = g.Wait() // workers never return errors

		res.Deleted += int(deleted.Load())
		res.Skipped += int(skipped.Load())
		prog.report(res.Deleted, res.Skipped)

		if end < len(msgs) {
			if err := sleepCtx(ctx, pause); err != nil {
				return false
			}
		}
	}
	return true
}
