package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/glam-abaya/cartstore/internal/core/domain"
	"github.com/glam-abaya/cartstore/internal/port"
)

// Emitter accepts analytics events without waiting for them to be recorded.
type Emitter interface {
	Emit(event domain.AnalyticsEvent) error
}

type Option func(*options)

type options struct {
	logger   *zap.Logger
	emitter  Emitter
	identity port.IdentityProvider

	cacheSize int
	cacheTTL  time.Duration
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func WithEmitter(emitter Emitter) Option {
	return func(o *options) { o.emitter = emitter }
}

func WithIdentity(identity port.IdentityProvider) Option {
	return func(o *options) { o.identity = identity }
}

// WithCacheSize bounds how many sessions a Registry keeps in memory.
func WithCacheSize(size int) Option {
	return func(o *options) { o.cacheSize = size }
}

// WithCacheTTL expires idle Registry sessions; zero keeps them until evicted
// by size.
func WithCacheTTL(ttl time.Duration) Option {
	return func(o *options) { o.cacheTTL = ttl }
}

func buildOptions(opts []Option) options {
	o := options{
		logger:   zap.NewNop(),
		emitter:  discardEmitter{},
		identity: anonymous{},

		cacheSize: DefaultCacheSize,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

type discardEmitter struct{}

func (discardEmitter) Emit(domain.AnalyticsEvent) error { return nil }

type anonymous struct{}

func (anonymous) UserID(context.Context) string { return "" }
