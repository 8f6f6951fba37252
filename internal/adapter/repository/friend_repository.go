package repository

import (
	"context"

	"chatdash/internal/domain/entity"
	"chatdash/internal/domain/repository"
	"chatdash/internal/infrastructure/docstore"
	"chatdash/pkg/errors"
)

const friendsCollection = "friends"

type friendRepository struct {
	store docstore.Store
}

func NewFriendRepository(store docstore.Store) repository.FriendRepository {
	return &friendRepository{
		store: store,
	}
}

func decodeFriendship(doc docstore.Document) (*entity.FriendshipLink, error) {
	var link entity.FriendshipLink
	if err := docstore.Decode(friendsCollection, doc, &link); err != nil {
		return nil, err
	}
	link.ID = doc.ID
	return &link, nil
}

func (r *friendRepository) Create(ctx context.Context, link *entity.FriendshipLink) error {
	key := entity.FriendshipKey(link.UserID1, link.UserID2)

	err := r.store.Create(ctx, docstore.Ref{Collection: friendsCollection, ID: key}, link.Fields())
	if err == docstore.ErrAlreadyExists {
		return errors.Conflict("Users are already friends")
	}
	if err != nil {
		return errors.Internal("Failed to create friendship link", err)
	}

	link.ID = key
	return nil
}

func (r *friendRepository) GetByID(ctx context.Context, id string) (*entity.FriendshipLink, error) {
	doc, err := r.store.Get(ctx, docstore.Ref{Collection: friendsCollection, ID: id})
	if err == docstore.ErrNotFound {
		return nil, errors.NotFound("Friendship link", err)
	}
	if err != nil {
		return nil, errors.Internal("Failed to get friendship link", err)
	}
	return decodeFriendship(*doc)
}

// Find returns nil when no link is stored as (userID1, userID2).
func (r *friendRepository) Find(ctx context.Context, userID1, userID2 string) (*entity.FriendshipLink, error) {
	q := docstore.NewQuery(friendsCollection).
		Where("userId1", docstore.OpEqual, userID1).
		Where("userId2", docstore.OpEqual, userID2).
		WithLimit(1)

	docs, err := r.store.Query(ctx, q)
	if err != nil {
		return nil, errors.Internal("Failed to query friendship links", err)
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return decodeFriendship(docs[0])
}

func (r *friendRepository) ListForUser(ctx context.Context, userID string) ([]*entity.FriendshipLink, error) {
	seen := make(map[string]bool)
	var links []*entity.FriendshipLink

	for _, field := range []string{"userId1", "userId2"} {
		docs, err := r.store.Query(ctx, docstore.NewQuery(friendsCollection).Where(field, docstore.OpEqual, userID))
		if err != nil {
			return nil, errors.Internal("Failed to list friendship links", err)
		}

		for _, doc := range docs {
			if seen[doc.ID] {
				continue
			}
			link, err := decodeFriendship(doc)
			if err != nil {
				return nil, err
			}
			seen[doc.ID] = true
			links = append(links, link)
		}
	}

	return links, nil
}

func (r *friendRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, docstore.Ref{Collection: friendsCollection, ID: id}); err != nil {
		return errors.Internal("Failed to delete friendship link", err)
	}
	return nil
}
