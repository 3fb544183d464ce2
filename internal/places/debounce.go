package places

import (
	"context"
	"strings"
	"sync"
	"time"
)

const resolveTimeout = 5 * time.Second

// Debouncer schedules a resolver lookup after a quiet period. Each new query
// cancels the pending one (last keystroke wins), and a monotonic sequence
// counter discards responses that arrive after a newer query was issued.
// One Debouncer serves one input field; pickup and dropoff debounce
// independently.
type Debouncer struct {
	resolver Resolver
	delay    time.Duration
	apply    func(query string, suggestions []Suggestion)

	mu    sync.Mutex
	timer *time.Timer
	seq   uint64
}

// NewDebouncer wires a resolver to an apply callback. apply runs on a timer
// goroutine; callers synchronize their own state inside it.
func NewDebouncer(r Resolver, delay time.Duration, apply func(string, []Suggestion)) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{resolver: r, delay: delay, apply: apply}
}

// Query schedules a lookup for query, superseding any pending one. Queries
// below the minimum length clear suggestions immediately without a lookup.
func (d *Debouncer) Query(query string) {
	d.mu.Lock()
	d.seq++
	seq := d.seq
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()

	if len(strings.TrimSpace(query)) < MinQueryLen {
		d.apply(query, nil)
		return
	}

	t := time.AfterFunc(d.delay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
		defer cancel()

		// Lookup failures are non-fatal: the field stays usable for
		// manual entry, so an error just means no suggestions.
		suggestions, err := d.resolver.Resolve(ctx, query)
		if err != nil {
			suggestions = nil
		}

		if !d.current(seq) {
			return
		}
		d.apply(query, suggestions)
	})

	d.mu.Lock()
	if d.seq == seq {
		d.timer = t
	} else {
		t.Stop()
	}
	d.mu.Unlock()
}

// Stop cancels any pending lookup and invalidates in-flight responses. The
// Debouncer remains usable afterwards.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Debouncer) current(seq uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.seq == seq
}
