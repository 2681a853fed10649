package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/glam-abaya/cartstore/internal/core/domain"
	"github.com/glam-abaya/cartstore/internal/port"
)

const (
	DefaultCacheSize = 10000
	loadTimeout      = 5 * time.Second
)

var ErrCartUnavailable = errors.New("cart unavailable")

// Registry hands out one CartStore per client session, loading each from its
// own slot on first use. Stores are cached in a bounded LRU whose entries
// expire after the idle TTL; an evicted session is read back from its slot.
type Registry struct {
	provider port.SlotProvider
	opts     []Option
	logger   *zap.Logger

	stores *expirable.LRU[string, *CartStore]
	loads  singleflight.Group
}

func NewRegistry(provider port.SlotProvider, opts ...Option) *Registry {
	o := buildOptions(opts)
	return &Registry{
		provider: provider,
		opts:     opts,
		logger:   o.logger,
		stores:   expirable.NewLRU[string, *CartStore](o.cacheSize, nil, o.cacheTTL),
	}
}

// SlotKey maps a session to its slot key. The empty session uses the bare
// storefront key.
func SlotKey(sessionID string) string {
	if sessionID == "" {
		return domain.SlotKey
	}
	return domain.SlotKey + ":" + sessionID
}

// Get returns the session's store. The first read of a slot is detached from
// ctx cancellation and bounded by its own timeout; a failed read is returned
// as ErrCartUnavailable and nothing is cached.
func (r *Registry) Get(ctx context.Context, sessionID string) (*CartStore, error) {
	if store, ok := r.stores.Get(sessionID); ok {
		r.stores.Add(sessionID, store)
		return store, nil
	}

	v, err, _ := r.loads.Do(sessionID, func() (any, error) {
		if store, ok := r.stores.Get(sessionID); ok {
			return store, nil
		}

		key := SlotKey(sessionID)
		logger := r.logger.With(zap.String("slot_key", key))
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()

		opts := append(r.opts[:len(r.opts):len(r.opts)], WithLogger(logger))
		store, err := LoadCartStore(loadCtx, r.provider.Slot(key), opts...)
		if err != nil {
			logger.Warn("failed to load cart", zap.Error(err))
			return nil, err
		}
		r.stores.Add(sessionID, store)
		return store, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCartUnavailable, err)
	}
	return v.(*CartStore), nil
}

// Len reports the number of sessions currently cached.
func (r *Registry) Len() int {
	return r.stores.Len()
}
