package docstore

import (
	"context"
	"sync"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"chatdash/pkg/logger"
)

type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{
		client: client,
	}
}

func (s *FirestoreStore) buildQuery(q Query) firestore.Query {
	fq := s.client.Collection(q.Collection).Query

	for _, f := range q.Filters {
		fq = fq.Where(f.Field, string(f.Op), f.Value)
	}
	for _, o := range q.Orders {
		dir := firestore.Asc
		if o.Direction == Desc {
			dir = firestore.Desc
		}
		fq = fq.OrderBy(o.Field, dir)
	}
	if q.Limit > 0 {
		fq = fq.Limit(q.Limit)
	}

	return fq
}

func toDocument(snap *firestore.DocumentSnapshot) Document {
	return Document{
		ID:   snap.Ref.ID,
		Data: snap.Data(),
	}
}

func (s *FirestoreStore) Get(ctx context.Context, ref Ref) (*Document, error) {
	snap, err := s.client.Collection(ref.Collection).Doc(ref.ID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}

	doc := toDocument(snap)
	return &doc, nil
}

func (s *FirestoreStore) Query(ctx context.Context, q Query) ([]Document, error) {
	iter := s.buildQuery(q).Documents(ctx)
	defer iter.Stop()

	var docs []Document
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		docs = append(docs, toDocument(snap))
	}

	return docs, nil
}

func (s *FirestoreStore) Subscribe(ctx context.Context, q Query, onNext func([]Document), onError func(error)) (Unsubscribe, error) {
	ctx, cancel := context.WithCancel(ctx)
	iter := s.buildQuery(q).Snapshots(ctx)

	go func() {
		for {
			snap, err := iter.Next()
			if err != nil {
				if err == iterator.Done || ctx.Err() != nil || status.Code(err) == codes.Canceled {
					return
				}
				// The watch stream retries transient failures itself; an error here is terminal.
				onError(err)
				return
			}

			all, err := snap.Documents.GetAll()
			if err != nil {
				onError(err)
				continue
			}

			docs := make([]Document, 0, len(all))
			for _, d := range all {
				docs = append(docs, toDocument(d))
			}
			onNext(docs)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			iter.Stop()
			logger.Debug("Firestore subscription on %s stopped", q.Collection)
		})
	}, nil
}

func (s *FirestoreStore) Add(ctx context.Context, collection string, data map[string]interface{}) (string, error) {
	ref, _, err := s.client.Collection(collection).Add(ctx, data)
	if err != nil {
		return "", err
	}
	return ref.ID, nil
}

func (s *FirestoreStore) Create(ctx context.Context, ref Ref, data map[string]interface{}) error {
	_, err := s.client.Collection(ref.Collection).Doc(ref.ID).Create(ctx, data)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (s *FirestoreStore) Update(ctx context.Context, ref Ref, fields map[string]interface{}) error {
	updates := make([]firestore.Update, 0, len(fields))
	for path, value := range fields {
		updates = append(updates, firestore.Update{Path: path, Value: value})
	}

	_, err := s.client.Collection(ref.Collection).Doc(ref.ID).Update(ctx, updates)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *FirestoreStore) Delete(ctx context.Context, ref Ref) error {
	_, err := s.client.Collection(ref.Collection).Doc(ref.ID).Delete(ctx)
	return err
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}
