package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dmehra2102/storefront/internal/cart/application"
	"github.com/dmehra2102/storefront/internal/cart/domain"
)

// Store keeps carts as JSON documents keyed by session.
type Store struct {
	rdb *goredis.Client
	ttl time.Duration
}

func NewStore(rdb *goredis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

func (s *Store) Key(session string) string {
	return "cart:" + session
}

// ForSession binds the store to one shopper's cart.
func (s *Store) ForSession(session string) application.Store {
	return sessionStore{store: s, key: s.Key(session)}
}

type sessionStore struct {
	store *Store
	key   string
}

func (ss sessionStore) Load(ctx context.Context) (domain.State, bool, error) {
	raw, err := ss.store.rdb.Get(ctx, ss.key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return domain.State{}, false, nil
	}
	if err != nil {
		return domain.State{}, false, fmt.Errorf("load cart %s: %w", ss.key, err)
	}
	var st domain.State
	if err := json.Unmarshal(raw, &st); err != nil {
		return domain.State{}, false, fmt.Errorf("decode cart %s: %w", ss.key, err)
	}
	return st, true, nil
}

// Save refreshes the TTL on every write so active carts don't expire.
func (ss sessionStore) Save(ctx context.Context, st domain.State) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	if err := ss.store.rdb.Set(ctx, ss.key, raw, ss.store.ttl).Err(); err != nil {
		return fmt.Errorf("save cart %s: %w", ss.key, err)
	}
	return nil
}
