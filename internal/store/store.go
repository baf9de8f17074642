// Package store owns the authoritative in-memory snapshot of the
// application: session, household, expense items and shopping items. Every
// mutating operation follows the same protocol: clear the previous
// error/info, raise the loading flag, run the remote calls, then record an
// info or error message and drop the flag. Each state change is published
// synchronously to subscribers so the view layer always reflects
// intermediate progress.
//
// Operations are not serialized against each other. Two concurrent calls
// interleave their remote calls and snapshot swaps arbitrarily and the last
// write wins; only the snapshot swap itself is guarded.
package store

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/agustinEspinozaTech/gestor-de-gastos/internal/core"
	"github.com/agustinEspinozaTech/gestor-de-gastos/internal/records"
	"github.com/agustinEspinozaTech/gestor-de-gastos/internal/session"
)

// Event kinds published after successful mutations.
const (
	EventHouseholdChanged = "household.changed"
	EventItemsChanged     = "items.changed"
	EventShoppingChanged  = "shopping.changed"
	EventRollover         = "rollover"
)

// maxItemRecords bounds item listings per household.
const maxItemRecords = 200

// maxLookupRecords bounds user/household lookups.
const maxLookupRecords = 10

// codeAttempts is how many times registration retries a colliding household
// code before giving up.
const codeAttempts = 6

type (
	// State is the snapshot handed to subscribers.
	State struct {
		Session       *core.Session
		Loading       bool
		Error         string
		Info          string
		Household     *core.Household
		Items         []core.Item
		ShoppingItems []core.ShoppingItem
	}

	// Totals is the derived budget view of the current state.
	Totals struct {
		Total           int64
		Pending         int64
		DaysLeft        int
		DailyBase       int64
		DailyAdjustment int64
		DailyRemaining  int64
	}

	// Subscriber receives every published snapshot.
	Subscriber func(State)

	// EventPublisher fans household change events out to other devices.
	// Publishing is best effort; failures are logged, never surfaced.
	EventPublisher interface {
		PublishHouseholdEvent(ctx context.Context, householdCode, kind string) error
	}

	Config struct {
		Records  records.Store
		Sessions session.Store
		Events   EventPublisher // optional

		// DailyTarget is the fixed per-day budget target; defaults to
		// core.DefaultDailyTargetARS.
		DailyTarget int64

		// Now and NewCode default to time.Now and core.RandomHouseholdCode;
		// tests inject deterministic versions.
		Now     func() time.Time
		NewCode func(length int) string
	}

	Store struct {
		mu    sync.Mutex
		state State

		subs   map[int]Subscriber
		nextID int

		records  records.Store
		sessions session.Store
		events   EventPublisher

		dailyTarget int64
		now         func() time.Time
		newCode     func(int) string
	}
)

// New builds a store and restores any persisted session.
func New(ctx context.Context, cfg Config) *Store {
	s := &Store{
		subs:        make(map[int]Subscriber),
		records:     cfg.Records,
		sessions:    cfg.Sessions,
		events:      cfg.Events,
		dailyTarget: cfg.DailyTarget,
		now:         cfg.Now,
		newCode:     cfg.NewCode,
	}
	if s.dailyTarget == 0 {
		s.dailyTarget = core.DefaultDailyTargetARS
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newCode == nil {
		s.newCode = core.RandomHouseholdCode
	}

	if s.sessions != nil {
		sess, err := s.sessions.Get(ctx)
		if err != nil {
			slog.WarnContext(ctx, "Failed to restore persisted session", "error", err)
		} else {
			s.state.Session = sess
		}
	}
	return s
}

// Subscribe registers fn and returns its unsubscribe function.
func (s *Store) Subscribe(fn Subscriber) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Snapshot returns a copy of the current state. Slices are cloned so the
// caller cannot mutate the store's view.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneState(s.state)
}

// Now reports the store's clock so views derive date labels from the same
// time source as the totals.
func (s *Store) Now() time.Time {
	return s.now()
}

// Session returns the active session, or nil.
func (s *Store) Session() *core.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Session == nil {
		return nil
	}
	copied := *s.state.Session
	return &copied
}

// setState applies mutate under the lock and notifies subscribers outside
// it with a cloned snapshot.
func (s *Store) setState(mutate func(*State)) {
	s.mu.Lock()
	mutate(&s.state)
	snapshot := cloneState(s.state)
	subs := make([]Subscriber, 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}

// begin starts the uniform operation protocol.
func (s *Store) begin() {
	s.setState(func(st *State) {
		st.Error = ""
		st.Info = ""
		st.Loading = true
	})
}

// finish ends it: err becomes the human-readable error message, otherwise
// info is recorded. The loading flag always drops.
func (s *Store) finish(err error, info, fallback string) {
	s.setState(func(st *State) {
		if err != nil {
			st.Error = userMessage(err, fallback)
		} else {
			st.Info = info
		}
		st.Loading = false
	})
}

// publish emits a household event when a publisher is configured.
func (s *Store) publish(ctx context.Context, kind string) {
	if s.events == nil {
		return
	}
	sess := s.Session()
	if sess == nil {
		return
	}
	if err := s.events.PublishHouseholdEvent(ctx, sess.HouseholdCode, kind); err != nil {
		slog.WarnContext(ctx, "Failed to publish household event",
			"kind", kind, "household_code", sess.HouseholdCode, "error", err)
	}
}

func cloneState(st State) State {
	out := st
	if st.Session != nil {
		sess := *st.Session
		out.Session = &sess
	}
	if st.Household != nil {
		h := *st.Household
		out.Household = &h
	}
	out.Items = slices.Clone(st.Items)
	out.ShoppingItems = slices.Clone(st.ShoppingItems)
	return out
}

// sortItemsByName orders expense items with Spanish collation, matching how
// the view lists them.
func sortItemsByName(items []core.Item) {
	c := collate.New(language.Spanish)
	slices.SortStableFunc(items, func(a, b core.Item) int {
		return c.CompareString(a.Name, b.Name)
	})
}

func sortShoppingByName(items []core.ShoppingItem) {
	c := collate.New(language.Spanish)
	slices.SortStableFunc(items, func(a, b core.ShoppingItem) int {
		return c.CompareString(a.Name, b.Name)
	})
}
