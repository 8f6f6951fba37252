package docstore

import (
	"context"
	"errors"
)

var (
	ErrNotFound      = errors.New("docstore: document not found")
	ErrAlreadyExists = errors.New("docstore: document already exists")
)

type Op string

const (
	OpEqual          Op = "=="
	OpGreaterOrEqual Op = ">="
	OpLess           Op = "<"
	OpArrayContains  Op = "array-contains"
)

type Direction int

const (
	Asc Direction = iota
	Desc
)

type Filter struct {
	Field string
	Op    Op
	Value interface{}
}

type Order struct {
	Field     string
	Direction Direction
}

// Query describes a filtered, ordered and bounded read of one collection.
// Collection may be a nested path such as "privateChat/<id>/messages".
type Query struct {
	Collection string
	Filters    []Filter
	Orders     []Order
	Limit      int
}

func NewQuery(collection string) Query {
	return Query{Collection: collection}
}

func (q Query) Where(field string, op Op, value interface{}) Query {
	filters := make([]Filter, len(q.Filters), len(q.Filters)+1)
	copy(filters, q.Filters)
	q.Filters = append(filters, Filter{Field: field, Op: op, Value: value})
	return q
}

func (q Query) OrderBy(field string, dir Direction) Query {
	orders := make([]Order, len(q.Orders), len(q.Orders)+1)
	copy(orders, q.Orders)
	q.Orders = append(orders, Order{Field: field, Direction: dir})
	return q
}

func (q Query) WithLimit(n int) Query {
	q.Limit = n
	return q
}

type Ref struct {
	Collection string
	ID         string
}

type Document struct {
	ID   string
	Data map[string]interface{}
}

// Unsubscribe cancels a live subscription. Calling it more than once is a no-op.
type Unsubscribe func()

// Store is the document database used by the repositories.
//
// Subscribe pushes the full result set of q to onNext every time it changes,
// starting with the current state. A delivery error is passed to onError.
type Store interface {
	Get(ctx context.Context, ref Ref) (*Document, error)
	Query(ctx context.Context, q Query) ([]Document, error)
	Subscribe(ctx context.Context, q Query, onNext func([]Document), onError func(error)) (Unsubscribe, error)
	Add(ctx context.Context, collection string, data map[string]interface{}) (string, error)
	Create(ctx context.Context, ref Ref, data map[string]interface{}) error
	Update(ctx context.Context, ref Ref, fields map[string]interface{}) error
	Delete(ctx context.Context, ref Ref) error
	Close() error
}
