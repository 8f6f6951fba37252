package usecase

import (
	"context"
	"strings"
	"time"

	"chatdash/internal/domain/entity"
	"chatdash/internal/domain/repository"
	"chatdash/pkg/errors"
	"chatdash/pkg/logger"
)

type UserUseCase struct {
	userRepo repository.UserRepository
	cache    PresenceCache
	now      func() time.Time
}

// NewUserUseCase builds the use case. cache may be nil.
func NewUserUseCase(userRepo repository.UserRepository, cache PresenceCache) *UserUseCase {
	return &UserUseCase{
		userRepo: userRepo,
		cache:    cache,
		now:      time.Now,
	}
}

type EnsureAccountInput struct {
	UID      string
	Email    string
	Username string
	Fullname string
	Provider string
}

// EnsureAccount returns the user registered under input.Email, creating the
// record first when there is none. created reports whether it was new.
func (uc *UserUseCase) EnsureAccount(ctx context.Context, input EnsureAccountInput) (user *entity.User, created bool, err error) {
	if input.UID == "" || input.Email == "" {
		return nil, false, errors.BadRequest("uid and email are required", nil)
	}

	existing, err := uc.userRepo.GetByEmail(ctx, input.Email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, errors.CodeNotFound) {
		return nil, false, err
	}

	fullname := input.Fullname
	if fullname == "" {
		fullname = input.Username
	}

	now := uc.now()
	user = &entity.User{
		ID:            input.UID,
		Username:      input.Username,
		Email:         input.Email,
		Fullname:      fullname,
		FullnameLower: strings.ToLower(fullname),
		Status:        entity.StatusOnline,
		LastSeen:      now,
		ProfilePic:    entity.DefaultProfilePic,
		Provider:      input.Provider,
		CreatedAt:     now,
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, false, err
	}

	logger.Info("Created account for %s (%s)", user.Email, user.ID)
	uc.cacheLastSeen(ctx, user)
	return user, true, nil
}

func (uc *UserUseCase) GetByID(ctx context.Context, uid string) (*entity.User, error) {
	return uc.userRepo.GetByID(ctx, uid)
}

func (uc *UserUseCase) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return uc.userRepo.GetByEmail(ctx, email)
}

func (uc *UserUseCase) ListUsers(ctx context.Context, limit int) ([]*entity.User, error) {
	return uc.userRepo.List(ctx, limit)
}

// SearchByFullname returns users whose lower-cased full name starts with text,
// leaving out excludeID. Blank text matches nobody.
func (uc *UserUseCase) SearchByFullname(ctx context.Context, text, excludeID string, limit int) ([]*entity.User, error) {
	prefix := strings.ToLower(strings.TrimSpace(text))
	if prefix == "" {
		return []*entity.User{}, nil
	}

	users, err := uc.userRepo.SearchByFullnamePrefix(ctx, prefix, limit)
	if err != nil {
		return nil, err
	}

	results := make([]*entity.User, 0, len(users))
	for _, u := range users {
		if u.ID != excludeID {
			results = append(results, u)
		}
	}
	return results, nil
}

// UpdateActiveStatus persists the user's presence as online or offline with lastSeen = now.
func (uc *UserUseCase) UpdateActiveStatus(ctx context.Context, user *entity.User, active bool) error {
	status := entity.StatusOffline
	if active {
		status = entity.StatusOnline
	}
	now := uc.now()

	if err := uc.userRepo.UpdateStatus(ctx, user.DocID, status, now); err != nil {
		logger.Error("Failed to update active status of %s: %v", user.ID, err)
		return err
	}

	user.Status = status
	user.LastSeen = now
	uc.cacheLastSeen(ctx, user)
	return nil
}

func (uc *UserUseCase) cacheLastSeen(ctx context.Context, user *entity.User) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.SetLastSeen(ctx, user.ID, user.LastSeen, user.Status); err != nil {
		logger.Warn("Failed to cache presence of %s: %v", user.ID, err)
	}
}

// LastActive formats how long ago uid was last seen.
func (uc *UserUseCase) LastActive(ctx context.Context, uid string) (string, error) {
	now := uc.now()

	if uc.cache != nil {
		lastSeen, ok, err := uc.cache.GetLastSeen(ctx, uid)
		if err != nil {
			logger.Warn("Presence cache lookup for %s failed: %v", uid, err)
		} else if ok {
			return entity.FormatLastActive(lastSeen, now), nil
		}
	}

	user, err := uc.userRepo.GetByID(ctx, uid)
	if err != nil {
		return "", err
	}
	return user.LastActive(now), nil
}
