package booking

import "sync"

// Prefill carries trip values collected elsewhere on the page (the hero
// search section) into the booking form.
type Prefill struct {
	Pickup     string   `json:"pickup"`
	Dropoff    string   `json:"dropoff"`
	Date       string   `json:"date"`
	ReturnDate string   `json:"return_date"`
	TripType   TripType `json:"trip_type"`
	Distance   string   `json:"distance"`
}

// PrefillStore is the shared cross-component store with a single writer (the
// page composition root) and subscribing forms. Updates flow one way: the
// form decides whether to apply them.
type PrefillStore struct {
	mu   sync.RWMutex
	data Prefill
	subs []func(Prefill)
}

func NewPrefillStore() *PrefillStore {
	return &PrefillStore{}
}

// Set replaces the stored values and notifies subscribers.
func (s *PrefillStore) Set(p Prefill) {
	s.mu.Lock()
	s.data = p
	subs := append([]func(Prefill){}, s.subs...)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(p)
	}
}

func (s *PrefillStore) Get() Prefill {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}

// Subscribe registers fn for future updates. Subscribers read the current
// value themselves via Get when they attach.
func (s *PrefillStore) Subscribe(fn func(Prefill)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}
