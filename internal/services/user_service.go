package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/isdelr/userdir-be/internal/models"
	"github.com/rs/zerolog/log"
)

// UserStore is the durable record store for users.
// Lookups return a nil user, not an error, when no record matches.
type UserStore interface {
	Insert(ctx context.Context, fields models.NewUserFields) (*models.User, error)
	FindOne(ctx context.Context, filter models.Filter) (*models.User, error)
	UpdateByID(ctx context.Context, id string, patch models.UserPatch) (*models.User, error)
	DeleteByID(ctx context.Context, id string) (*models.User, error)
	Ping(ctx context.Context) error
}

// Cache is a string key-value store. Entries never expire.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Del(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	CreateUser(ctx context.Context, fields models.NewUserFields) (*models.User, error)
	GetUserByAccountNumber(ctx context.Context, accountNumber string) (*models.User, error)
	GetUserByIdentityNumber(ctx context.Context, identityNumber string) (*models.User, error)
	UpdateUser(ctx context.Context, id string, patch models.UserPatch) (*models.User, error)
	DeleteUser(ctx context.Context, id string) (*models.User, error)
}

// UserCacheKey returns the cache key for a natural key value. Account numbers
// and identity numbers share the "user:" prefix.
func UserCacheKey(value string) string {
	return "user:" + value
}

var validate = validator.New()

// UserService reads and writes users through a cache-aside layer.
//
// Only the account-number entry is refreshed on update and cleared on delete.
// The identity-number entry written by GetUserByIdentityNumber is never
// reconciled and may serve a stale or deleted record.
type UserService struct {
	store UserStore
	cache Cache
}

// NewUserService creates a new UserService.
func NewUserService(store UserStore, cache Cache) *UserService {
	return &UserService{store: store, cache: cache}
}

// CreateUser inserts a user and caches it under its account number.
func (s *UserService) CreateUser(ctx context.Context, fields models.NewUserFields) (*models.User, error) {
	if err := validate.Struct(fields); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	user, err := s.store.Insert(ctx, fields)
	if err != nil {
		return nil, err
	}

	// The record is already persisted if this fails; callers still see the error.
	if err := s.put(ctx, UserCacheKey(user.AccountNumber), user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByAccountNumber returns the user with the given account number,
// or an empty user if there is none.
func (s *UserService) GetUserByAccountNumber(ctx context.Context, accountNumber string) (*models.User, error) {
	user, err := s.lookup(ctx, UserCacheKey(accountNumber), models.ByAccountNumber(accountNumber))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return &models.User{}, nil
	}
	return user, nil
}

// GetUserByIdentityNumber returns the user with the given identity number,
// or nil if there is none.
func (s *UserService) GetUserByIdentityNumber(ctx context.Context, identityNumber string) (*models.User, error) {
	return s.lookup(ctx, UserCacheKey(identityNumber), models.ByIdentityNumber(identityNumber))
}

// UpdateUser applies patch to the user with the given id and re-caches the
// updated record under its current account number. Returns nil if no user
// has that id.
func (s *UserService) UpdateUser(ctx context.Context, id string, patch models.UserPatch) (*models.User, error) {
	user, err := s.store.UpdateByID(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}

	if err := s.put(ctx, UserCacheKey(user.AccountNumber), user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes the user with the given id and drops its account-number
// cache entry. Returns the deleted record, or nil if no user has that id.
func (s *UserService) DeleteUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.store.DeleteByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}

	key := UserCacheKey(user.AccountNumber)
	if err := s.cache.Del(ctx, key); err != nil {
		return nil, fmt.Errorf("failed to evict cache entry %s: %w", key, err)
	}
	return user, nil
}

// lookup serves key from the cache, falling back to the store and caching the
// result. Cached values are returned as-is without consulting the store.
func (s *UserService) lookup(ctx context.Context, key string, filter models.Filter) (*models.User, error) {
	cached, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache entry %s: %w", key, err)
	}
	if ok {
		var user models.User
		if err := json.Unmarshal([]byte(cached), &user); err != nil {
			return nil, fmt.Errorf("failed to decode cache entry %s: %w", key, err)
		}
		log.Debug().Str("cache_key", key).Msg("Cache hit")
		return &user, nil
	}
	log.Debug().Str("cache_key", key).Msg("Cache miss")

	user, err := s.store.FindOne(ctx, filter)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}

	if err := s.put(ctx, key, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) put(ctx context.Context, key string, user *models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user %s: %w", user.ID, err)
	}
	if err := s.cache.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("failed to write cache entry %s: %w", key, err)
	}
	return nil
}
