package repository

import (
	"context"
	"time"

	"chatdash/internal/domain/entity"
	"chatdash/internal/domain/repository"
	"chatdash/internal/infrastructure/docstore"
	"chatdash/pkg/errors"
	"chatdash/pkg/logger"
)

const usersCollection = "users"

// prefixUpperBound is appended to a prefix to form the exclusive end of a range scan.
const prefixUpperBound = "\uf8ff"

type userRepository struct {
	store docstore.Store
}

func NewUserRepository(store docstore.Store) repository.UserRepository {
	return &userRepository{
		store: store,
	}
}

func decodeUser(doc docstore.Document) (*entity.User, error) {
	var user entity.User
	if err := docstore.Decode(usersCollection, doc, &user); err != nil {
		return nil, err
	}
	user.DocID = doc.ID
	return &user, nil
}

func decodeUsers(docs []docstore.Document) ([]*entity.User, error) {
	users := make([]*entity.User, 0, len(docs))
	for _, doc := range docs {
		user, err := decodeUser(doc)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	id, err := r.store.Add(ctx, usersCollection, user.Fields())
	if err != nil {
		logger.Error("Failed to create user %s: %v", user.Email, err)
		return errors.Internal("Failed to create user", err)
	}
	user.DocID = id
	return nil
}

func (r *userRepository) findOne(ctx context.Context, field, value string) (*entity.User, error) {
	q := docstore.NewQuery(usersCollection).Where(field, docstore.OpEqual, value).WithLimit(1)

	docs, err := r.store.Query(ctx, q)
	if err != nil {
		return nil, errors.Internal("Failed to query users", err)
	}
	if len(docs) == 0 {
		return nil, errors.NotFound("User", nil)
	}

	return decodeUser(docs[0])
}

func (r *userRepository) GetByID(ctx context.Context, uid string) (*entity.User, error) {
	return r.findOne(ctx, "uid", uid)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, "email", email)
}

func (r *userRepository) List(ctx context.Context, limit int) ([]*entity.User, error) {
	q := docstore.NewQuery(usersCollection).OrderBy("fullname_lower", docstore.Asc)
	if limit > 0 {
		q = q.WithLimit(limit)
	}

	docs, err := r.store.Query(ctx, q)
	if err != nil {
		return nil, errors.Internal("Failed to list users", err)
	}
	return decodeUsers(docs)
}

func (r *userRepository) SearchByFullnamePrefix(ctx context.Context, prefix string, limit int) ([]*entity.User, error) {
	q := docstore.NewQuery(usersCollection).
		Where("fullname_lower", docstore.OpGreaterOrEqual, prefix).
		Where("fullname_lower", docstore.OpLess, prefix+prefixUpperBound)
	if limit > 0 {
		q = q.WithLimit(limit)
	}

	docs, err := r.store.Query(ctx, q)
	if err != nil {
		return nil, errors.Internal("Failed to search users", err)
	}
	return decodeUsers(docs)
}

func (r *userRepository) UpdateStatus(ctx context.Context, docID, status string, lastSeen time.Time) error {
	err := r.store.Update(ctx, docstore.Ref{Collection: usersCollection, ID: docID}, map[string]interface{}{
		"status":   status,
		"lastSeen": lastSeen,
	})
	if err == docstore.ErrNotFound {
		return errors.NotFound("User", err)
	}
	if err != nil {
		return errors.Internal("Failed to update user status", err)
	}
	return nil
}
