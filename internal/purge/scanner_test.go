package purge_test

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/edgard/purgebot/internal/purge"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fastScannerConfig() purge.ScannerConfig {
	return purge.ScannerConfig{
		PageSize:      100,
		PagesPerPause: 3,
		PagePause:     time.Millisecond,
		RetryDelay:    time.Millisecond,
	}
}

func registerOp(r *purge.Registry, id, channelID string) {
	r.Register(&purge.Operation{
		ID:        id,
		ChannelID: channelID,
		Phase:     purge.PhaseSearching,
		StartTime: time.Now(),
	})
}

func TestScannerCollectsAcrossPages(t *testing.T) {
	t.Parallel()

	now := time.Now()
	ch := newFakeChannel(makeHistory(250, now, "target"))
	reg := purge.NewRegistry()
	registerOp(reg, "op-1", "chan-a")

	s := purge.NewScanner(reg, testLogger(), fastScannerConfig())
	res, err := s.Scan(context.Background(), ch, "op-1", purge.SearchSpec{Text: "target"})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if res.Aborted {
		t.Fatal("scan should not be aborted")
	}
	if len(res.Messages) != 250 {
		t.Fatalf("got %d matches, want 250", len(res.Messages))
	}
	// 3 full pages of 100/100/50 plus the final empty fetch.
	if ch.fetchCalls != 4 {
		t.Errorf("fetch calls = %d, want 4", ch.fetchCalls)
	}
}

func TestScannerHonorsCutoff(t *testing.T) {
	t.Parallel()

	now := time.Now()
	ch := newFakeChannel(makeHistory(250, now, "target"))
	reg := purge.NewRegistry()
	registerOp(reg, "op-1", "chan-a")
	cutoff := now.Add(-90 * time.Minute) // only the newest 91 messages qualify

	s := purge.NewScanner(reg, testLogger(), fastScannerConfig())
	res, err := s.Scan(context.Background(), ch, "op-1", purge.SearchSpec{Text: "target", Cutoff: cutoff})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	for _, m := range res.Messages {
		if m.Timestamp.Before(cutoff) {
			t.Fatalf("message %s at %v precedes cutoff %v", m.ID, m.Timestamp, cutoff)
		}
	}
	if len(res.Messages) != 91 {
		t.Errorf("got %d matches, want 91", len(res.Messages))
	}
	// The first page's oldest message already precedes the cutoff, so one
	// fetch suffices.
	if ch.fetchCalls != 1 {
		t.Errorf("fetch calls = %d, want 1", ch.fetchCalls)
	}
}

func TestScannerAuthorFilter(t *testing.T) {
	t.Parallel()

	now := time.Now()
	history := []purge.Message{
		{ID: "m3", Timestamp: now, Content: "target", AuthorID: "alice"},
		{ID: "m2", Timestamp: now.Add(-time.Minute), Content: "target", AuthorID: "bob"},
		{ID: "m1", Timestamp: now.Add(-2 * time.Minute), Content: "target", AuthorName: "hook", FromWebhook: true},
	}

	tests := []struct {
		name     string
		authorID string
		wantIDs  []string
	}{
		{name: "no filter accepts webhooks", authorID: "", wantIDs: []string{"m3", "m2", "m1"}},
		{name: "filter excludes others and webhooks", authorID: "alice", wantIDs: []string{"m3"}},
		{name: "filter with no hits", authorID: "carol", wantIDs: nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ch := newFakeChannel(history)
			reg := purge.NewRegistry()
			registerOp(reg, "op-1", "chan-a")

			s := purge.NewScanner(reg, testLogger(), fastScannerConfig())
			res, err := s.Scan(context.Background(), ch, "op-1",
				purge.SearchSpec{Text: "target", AuthorID: tc.authorID})
			if err != nil {
				t.Fatalf("Scan failed: %v", err)
			}
			var got []string
			for _, m := range res.Messages {
				got = append(got, m.ID)
			}
			if len(got) != len(tc.wantIDs) {
				t.Fatalf("got ids %v, want %v", got, tc.wantIDs)
			}
			for i := range got {
				if got[i] != tc.wantIDs[i] {
					t.Errorf("got ids %v, want %v", got, tc.wantIDs)
					break
				}
			}
		})
	}
}

func TestScannerAbortMidScan(t *testing.T) {
	t.Parallel()

	now := time.Now()
	ch := newFakeChannel(makeHistory(250, now, "target"))
	reg := purge.NewRegistry()
	registerOp(reg, "op-1", "chan-a")

	// Simulate the abort command landing after the first page was served.
	ch.onFetch = func(call int) {
		if call == 2 {
			reg.Remove("op-1")
		}
	}

	s := purge.NewScanner(reg, testLogger(), fastScannerConfig())
	res, err := s.Scan(context.Background(), ch, "op-1", purge.SearchSpec{Text: "target"})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if !res.Aborted {
		t.Fatal("scan should report aborted")
	}
	if len(res.Messages) != 100 {
		t.Errorf("got %d partial matches, want 100", len(res.Messages))
	}
}

func TestScannerRetriesFetchOnce(t *testing.T) {
	t.Parallel()

	now := time.Now()
	ch := newFakeChannel(makeHistory(5, now, "target"))
	ch.fetchErrs = []error{errTransient} // first call fails, retry succeeds
	reg := purge.NewRegistry()
	registerOp(reg, "op-1", "chan-a")

	s := purge.NewScanner(reg, testLogger(), fastScannerConfig())
	res, err := s.Scan(context.Background(), ch, "op-1", purge.SearchSpec{Text: "target"})
	if err != nil {
		t.Fatalf("Scan failed after single transient error: %v", err)
	}
	if len(res.Messages) != 5 {
		t.Errorf("got %d matches, want 5", len(res.Messages))
	}
}

func TestScannerDoubleFetchFailureIsFatal(t *testing.T) {
	t.Parallel()

	now := time.Now()
	ch := newFakeChannel(makeHistory(5, now, "target"))
	ch.fetchErrs = []error{errTransient, errTransient}
	reg := purge.NewRegistry()
	registerOp(reg, "op-1", "chan-a")

	s := purge.NewScanner(reg, testLogger(), fastScannerConfig())
	if _, err := s.Scan(context.Background(), ch, "op-1", purge.SearchSpec{Text: "target"}); err == nil {
		t.Fatal("expected error after two consecutive fetch failures")
	}
}

func TestScannerEmptyHistory(t *testing.T) {
	t.Parallel()

	ch := newFakeChannel(nil)
	reg := purge.NewRegistry()
	registerOp(reg, "op-1", "chan-a")

	s := purge.NewScanner(reg, testLogger(), fastScannerConfig())
	res, err := s.Scan(context.Background(), ch, "op-1", purge.SearchSpec{Text: "target"})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(res.Messages) != 0 || res.Aborted {
		t.Errorf("got %d matches aborted=%v, want empty clean result", len(res.Messages), res.Aborted)
	}
}

func TestScanResultSortsAscending(t *testing.T) {
	t.Parallel()

	now := time.Now()
	ch := newFakeChannel(makeHistory(30, now, "target"))
	reg := purge.NewRegistry()
	registerOp(reg, "op-1", "chan-a")

	s := purge.NewScanner(reg, testLogger(), fastScannerConfig())
	res, err := s.Scan(context.Background(), ch, "op-1", purge.SearchSpec{Text: "target"})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	// The orchestrator sorts scan output ascending before presenting it.
	sort.Slice(res.Messages, func(i, j int) bool {
		return res.Messages[i].Timestamp.Before(res.Messages[j].Timestamp)
	})
	for i := 1; i < len(res.Messages); i++ {
		if res.Messages[i].Timestamp.Before(res.Messages[i-1].Timestamp) {
			t.Fatal("sorted match set must be non-decreasing by timestamp")
		}
	}
}
