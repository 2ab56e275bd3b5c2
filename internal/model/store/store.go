// Package store owns the expense collection. Every successful mutation is
// validated, committed in memory and written through as one full snapshot.
package store

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"go.uber.org/zap"
	"max.ks1230/expense-tracker/internal/entity/expense"
	"max.ks1230/expense-tracker/internal/logger"
	"max.ks1230/expense-tracker/internal/model/customerr"
	"max.ks1230/expense-tracker/internal/model/snapshot"
)

type persistence interface {
	Load(ctx context.Context) ([]byte, bool, error)
	Save(ctx context.Context, snapshot []byte) error
}

type config interface {
	Location() *time.Location
	AllowFutureDates() bool
}

type ChangeKind string

const (
	Created ChangeKind = "created"
	Updated ChangeKind = "updated"
	Deleted ChangeKind = "deleted"
)

// Change is delivered to listeners after a mutation is committed in memory.
// For Deleted, Record holds the removed record.
type Change struct {
	Kind   ChangeKind
	Record expense.Record
}

type Listener func(ctx context.Context, change Change)

type Store struct {
	// mu serializes writers. Readers only load records.
	mu      sync.Mutex
	records atomic.Pointer[[]expense.Record]

	persistence persistence
	location    *time.Location
	allowFuture bool

	now   func() time.Time
	newID func() expense.ID

	listenersMu  sync.Mutex
	listeners    map[int]Listener
	nextListener int
}

// New rehydrates a store from the persistence adapter.
//
// A malformed snapshot yields a usable empty store together with a
// *customerr.CorruptStateError. A failing Load yields no store at all.
func New(ctx context.Context, config config, p persistence) (*Store, error) {
	loc := config.Location()
	if loc == nil {
		loc = time.UTC
	}
	s := &Store{
		persistence: p,
		location:    loc,
		allowFuture: config.AllowFutureDates(),
		now:         time.Now,
		newID:       uuid.NewString,
		listeners:   make(map[int]Listener),
	}
	s.publish(nil)

	data, found, err := p.Load(ctx)
	if err != nil {
		return nil, &customerr.PersistenceError{Op: "load", Err: err}
	}
	if !found {
		logger.Info("no snapshot found, starting empty")
		return s, nil
	}

	records, err := snapshot.Decode(data)
	if err != nil {
		logger.Error("snapshot is corrupt, starting empty", zap.Error(err))
		return s, err
	}
	s.publish(records)
	logger.Info("snapshot loaded", zap.Int("records", len(records)))
	return s, nil
}

func (s *Store) Add(ctx context.Context, candidate expense.Candidate) (rec expense.Record, err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "store.Add")
	defer finish(span, "add", time.Now(), &err)

	s.mu.Lock()
	defer s.mu.Unlock()

	candidate, err = s.rules().Candidate(candidate)
	if err != nil {
		return expense.Record{}, err
	}

	rec = expense.Record{
		ID:          s.newID(),
		Amount:      candidate.Amount,
		Category:    candidate.Category,
		Description: candidate.Description,
		Date:        candidate.Date,
		CreatedAt:   s.now().UTC(),
	}
	span.SetTag("id", rec.ID)

	current := s.current()
	next := make([]expense.Record, 0, len(current)+1)
	next = append(next, rec)
	next = append(next, current...)

	err = s.commit(ctx, next, Change{Kind: Created, Record: rec})
	return clone(rec), err
}

// Update overwrites the fields set in patch. An empty patch only touches UpdatedAt.
func (s *Store) Update(ctx context.Context, id expense.ID, patch expense.Patch) (rec expense.Record, err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "store.Update")
	defer finish(span, "update", time.Now(), &err)
	span.SetTag("id", id)

	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.current()
	i := indexOf(current, id)
	if i < 0 {
		return expense.Record{}, &customerr.NotFoundError{ID: id}
	}

	patch, err = s.rules().Patch(patch)
	if err != nil {
		return expense.Record{}, err
	}

	rec = patch.Apply(current[i])
	updatedAt := s.now().UTC()
	rec.UpdatedAt = &updatedAt

	next := slices.Clone(current)
	next[i] = rec

	err = s.commit(ctx, next, Change{Kind: Updated, Record: rec})
	return clone(rec), err
}

// Delete removes the record. Deleting an unknown id is a NotFoundError.
func (s *Store) Delete(ctx context.Context, id expense.ID) (err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "store.Delete")
	defer finish(span, "delete", time.Now(), &err)
	span.SetTag("id", id)

	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.current()
	i := indexOf(current, id)
	if i < 0 {
		return &customerr.NotFoundError{ID: id}
	}
	removed := current[i]

	next := make([]expense.Record, 0, len(current)-1)
	next = append(next, current[:i]...)
	next = append(next, current[i+1:]...)

	return s.commit(ctx, next, Change{Kind: Deleted, Record: removed})
}

// Subscribe registers a listener and returns a function that removes it.
// Listeners run synchronously, in commit order, while the store holds its
// writer lock: they may read the store but must not mutate it.
func (s *Store) Subscribe(listener Listener) (cancel func()) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()

	key := s.nextListener
	s.nextListener++
	s.listeners[key] = listener

	var once sync.Once
	return func() {
		once.Do(func() {
			s.listenersMu.Lock()
			defer s.listenersMu.Unlock()
			delete(s.listeners, key)
		})
	}
}

// commit publishes next as the current collection, writes it through and
// notifies listeners. The in-memory change stays even if the write fails.
// Callers hold s.mu.
func (s *Store) commit(ctx context.Context, next []expense.Record, change Change) error {
	s.publish(next)
	err := s.save(ctx, next)
	s.notify(ctx, change)
	return err
}

func (s *Store) save(ctx context.Context, records []expense.Record) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "store.save")
	defer span.Finish()

	data, err := snapshot.Encode(records)
	if err != nil {
		ext.Error.Set(span, true)
		return &customerr.PersistenceError{Op: "encode", Err: err}
	}
	if err = s.persistence.Save(ctx, data); err != nil {
		ext.Error.Set(span, true)
		logger.Error("failed to save snapshot", zap.Int("records", len(records)), zap.Error(err))
		return &customerr.PersistenceError{Op: "save", Err: err}
	}
	return nil
}

func (s *Store) notify(ctx context.Context, change Change) {
	s.listenersMu.Lock()
	keys := make([]int, 0, len(s.listeners))
	for k := range s.listeners {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	listeners := make([]Listener, 0, len(keys))
	for _, k := range keys {
		listeners = append(listeners, s.listeners[k])
	}
	s.listenersMu.Unlock()

	for _, l := range listeners {
		l(ctx, Change{Kind: change.Kind, Record: clone(change.Record)})
	}
}

func (s *Store) publish(records []expense.Record) {
	s.records.Store(&records)
	gaugeRecords.Set(float64(len(records)))
}

func (s *Store) current() []expense.Record {
	return *s.records.Load()
}

func (s *Store) rules() expense.Rules {
	return expense.Rules{
		Today:       expense.DateOf(s.now().In(s.location)),
		AllowFuture: s.allowFuture,
	}
}

func indexOf(records []expense.Record, id expense.ID) int {
	return slices.IndexFunc(records, func(r expense.Record) bool {
		return r.ID == id
	})
}

// clone detaches the UpdatedAt pointer from the stored record.
func clone(r expense.Record) expense.Record {
	if r.UpdatedAt != nil {
		t := *r.UpdatedAt
		r.UpdatedAt = &t
	}
	return r
}

func finish(span opentracing.Span, op string, start time.Time, err *error) {
	observeOperation(op, time.Since(start), *err)
	if *err != nil {
		ext.Error.Set(span, true)
		span.LogKV("error", (*err).Error())
	}
	span.Finish()
}
