package purge_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/edgard/purgebot/internal/purge"
)

// fakeChannel implements purge.Channel over an in-memory history slice
// (newest first), recording every call for assertions.
type fakeChannel struct {
	mu      sync.Mutex
	history []purge.Message

	fetchErrs   []error // consumed one per FetchMessages call; nil = success
	bulkErr     error   // returned by every BulkDelete when set
	deleteErrFn func(id string) error

	fetchCalls int
	bulkCalls  [][]string
	deleted    map[string]bool

	onFetch  func(call int) // runs before each fetch
	onBulk   func(call int) // runs before each bulk delete
	onDelete func(id string)
}

func newFakeChannel(history []purge.Message) *fakeChannel {
	return &fakeChannel{history: history, deleted: make(map[string]bool)}
}

func (f *fakeChannel) FetchMessages(_ context.Context, limit int, beforeID string) ([]purge.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.fetchCalls++
	if f.onFetch != nil {
		f.onFetch(f.fetchCalls)
	}
	if len(f.fetchErrs) > 0 {
		err := f.fetchErrs[0]
		f.fetchErrs = f.fetchErrs[1:]
		if err != nil {
			return nil, err
		}
	}

	start := 0
	if beforeID != "" {
		start = len(f.history)
		for i, m := range f.history {
			if m.ID == beforeID {
				start = i + 1
				break
			}
		}
	}
	end := start + limit
	if end > len(f.history) {
		end = len(f.history)
	}
	if start >= len(f.history) {
		return nil, nil
	}
	page := make([]purge.Message, end-start)
	copy(page, f.history[start:end])
	return page, nil
}

func (f *fakeChannel) BulkDelete(_ context.Context, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.onBulk != nil {
		f.onBulk(len(f.bulkCalls) + 1)
	}
	if f.bulkErr != nil {
		return f.bulkErr
	}
	f.bulkCalls = append(f.bulkCalls, append([]string(nil), ids...))
	for _, id := range ids {
		f.deleted[id] = true
	}
	return nil
}

func (f *fakeChannel) DeleteMessage(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.onDelete != nil {
		f.onDelete(id)
	}
	if f.deleteErrFn != nil {
		if err := f.deleteErrFn(id); err != nil {
			return err
		}
	}
	f.deleted[id] = true
	return nil
}

func (f *fakeChannel) deletedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.deleted)
}

var errTransient = errors.New("transient platform error")

// makeHistory builds n messages newest first, one minute apart, all
// containing needle in their content.
func makeHistory(n int, newest time.Time, needle string) []purge.Message {
	msgs := make([]purge.Message, n)
	for i := range msgs {
		msgs[i] = purge.Message{
			ID:        fmt.Sprintf("msg-%04d", n-i),
			Timestamp: newest.Add(-time.Duration(i) * time.Minute),
			Content:   fmt.Sprintf("%s number %d", needle, n-i),
			AuthorID:  "author-1",
		}
	}
	return msgs
}
