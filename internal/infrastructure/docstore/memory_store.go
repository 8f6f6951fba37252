package docstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memorySubscription struct {
	id      string
	query   Query
	onNext  func([]Document)
	onError func(error)

	mu         sync.Mutex
	busy       bool
	delivered  uint64
	pending    []Document
	pendingAt  uint64
	hasPending bool
}

// deliver hands docs, read at store version v, to onNext. Calls for one
// subscription never overlap and never go back to an older version. Snapshots
// arriving while a call is in flight are coalesced into the newest one, which
// the in-flight goroutine delivers before returning.
func (sub *memorySubscription) deliver(v uint64, docs []Document) {
	sub.mu.Lock()
	if sub.busy {
		if v >= sub.delivered && (!sub.hasPending || v > sub.pendingAt) {
			sub.pending, sub.pendingAt, sub.hasPending = docs, v, true
		}
		sub.mu.Unlock()
		return
	}
	if v < sub.delivered {
		sub.mu.Unlock()
		return
	}

	sub.busy = true
	for {
		sub.delivered = v
		sub.mu.Unlock()
		sub.onNext(docs)
		sub.mu.Lock()
		if !sub.hasPending {
			break
		}
		docs, v = sub.pending, sub.pendingAt
		sub.pending, sub.hasPending = nil, false
	}
	sub.busy = false
	sub.mu.Unlock()
}

// MemoryStore is an in-process Store with live subscriptions. Subscribers are
// notified on the writing goroutine after the write is applied.
type MemoryStore struct {
	mu          sync.RWMutex
	version     uint64
	collections map[string]map[string]map[string]interface{}
	subs        map[string]*memorySubscription
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]map[string]interface{}),
		subs:        make(map[string]*memorySubscription),
	}
}

func copyData(data map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}

func (s *MemoryStore) Get(_ context.Context, ref Ref) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.collections[ref.Collection][ref.ID]
	if !ok {
		return nil, ErrNotFound
	}
	return &Document{ID: ref.ID, Data: copyData(data)}, nil
}

func (s *MemoryStore) Query(_ context.Context, q Query) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.runLocked(q), nil
}

func (s *MemoryStore) runLocked(q Query) []Document {
	var docs []Document
	for id, data := range s.collections[q.Collection] {
		if matches(data, q.Filters) {
			docs = append(docs, Document{ID: id, Data: copyData(data)})
		}
	}

	sort.SliceStable(docs, func(i, j int) bool {
		for _, o := range q.Orders {
			c := compare(docs[i].Data[o.Field], docs[j].Data[o.Field])
			if c == 0 {
				continue
			}
			if o.Direction == Desc {
				return c > 0
			}
			return c < 0
		}
		return docs[i].ID < docs[j].ID
	})

	if q.Limit > 0 && len(docs) > q.Limit {
		docs = docs[:q.Limit]
	}
	return docs
}

func (s *MemoryStore) Subscribe(ctx context.Context, q Query, onNext func([]Document), onError func(error)) (Unsubscribe, error) {
	sub := &memorySubscription{
		id:      uuid.New().String(),
		query:   q,
		onNext:  onNext,
		onError: onError,
	}

	s.mu.Lock()
	s.subs[sub.id] = sub
	initial := s.runLocked(q)
	version := s.version
	s.mu.Unlock()

	sub.deliver(version, initial)

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, sub.id)
			s.mu.Unlock()
		})
	}

	go func() {
		<-ctx.Done()
		unsubscribe()
	}()

	return unsubscribe, nil
}

func (s *MemoryStore) Add(ctx context.Context, collection string, data map[string]interface{}) (string, error) {
	id := uuid.New().String()
	if err := s.Create(ctx, Ref{Collection: collection, ID: id}, data); err != nil {
		return "", err
	}
	return id, nil
}

func (s *MemoryStore) Create(_ context.Context, ref Ref, data map[string]interface{}) error {
	s.mu.Lock()
	col, ok := s.collections[ref.Collection]
	if !ok {
		col = make(map[string]map[string]interface{})
		s.collections[ref.Collection] = col
	}
	if _, exists := col[ref.ID]; exists {
		s.mu.Unlock()
		return ErrAlreadyExists
	}
	col[ref.ID] = copyData(data)
	s.version++
	s.mu.Unlock()

	s.notify(ref.Collection)
	return nil
}

func (s *MemoryStore) Update(_ context.Context, ref Ref, fields map[string]interface{}) error {
	s.mu.Lock()
	data, ok := s.collections[ref.Collection][ref.ID]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	for k, v := range fields {
		data[k] = v
	}
	s.version++
	s.mu.Unlock()

	s.notify(ref.Collection)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, ref Ref) error {
	s.mu.Lock()
	delete(s.collections[ref.Collection], ref.ID)
	s.version++
	s.mu.Unlock()

	s.notify(ref.Collection)
	return nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	s.subs = make(map[string]*memorySubscription)
	s.mu.Unlock()
	return nil
}

// ActiveSubscriptions returns the number of live subscriptions.
func (s *MemoryStore) ActiveSubscriptions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

// FailSubscriptions delivers err to every subscriber of collection.
func (s *MemoryStore) FailSubscriptions(collection string, err error) {
	s.mu.RLock()
	var targets []*memorySubscription
	for _, sub := range s.subs {
		if sub.query.Collection == collection {
			targets = append(targets, sub)
		}
	}
	s.mu.RUnlock()

	for _, sub := range targets {
		sub.onError(err)
	}
}

func (s *MemoryStore) notify(collection string) {
	type delivery struct {
		sub  *memorySubscription
		docs []Document
	}

	s.mu.RLock()
	version := s.version
	var pending []delivery
	for _, sub := range s.subs {
		if sub.query.Collection == collection {
			pending = append(pending, delivery{sub: sub, docs: s.runLocked(sub.query)})
		}
	}
	s.mu.RUnlock()

	for _, d := range pending {
		d.sub.deliver(version, d.docs)
	}
}

func matches(data map[string]interface{}, filters []Filter) bool {
	for _, f := range filters {
		value, ok := data[f.Field]
		if !ok {
			return false
		}

		switch f.Op {
		case OpEqual:
			if compare(value, f.Value) != 0 {
				return false
			}
		case OpGreaterOrEqual:
			if compare(value, f.Value) < 0 {
				return false
			}
		case OpLess:
			if compare(value, f.Value) >= 0 {
				return false
			}
		case OpArrayContains:
			if !arrayContains(value, f.Value) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func arrayContains(array, value interface{}) bool {
	switch items := array.(type) {
	case []interface{}:
		for _, item := range items {
			if compare(item, value) == 0 {
				return true
			}
		}
	case []string:
		for _, item := range items {
			if compare(item, value) == 0 {
				return true
			}
		}
	}
	return false
}

// compare orders two stored values of the same kind. Values of different kinds
// compare by their formatted representation.
func compare(a, b interface{}) int {
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv)
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			switch {
			case av.Before(bv):
				return -1
			case av.After(bv):
				return 1
			default:
				return 0
			}
		}
	case bool:
		if bv, ok := b.(bool); ok {
			switch {
			case av == bv:
				return 0
			case !av:
				return -1
			default:
				return 1
			}
		}
	}

	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			default:
				return 0
			}
		}
	}

	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
