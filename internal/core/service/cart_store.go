package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/glam-abaya/cartstore/internal/core/domain"
	"github.com/glam-abaya/cartstore/internal/port"
)

// CartStore owns one shopping cart. Every mutation is written back to the
// slot in full; write and analytics failures are logged and never reach the
// caller, so the in-memory items stay authoritative for the session.
type CartStore struct {
	mu     sync.Mutex
	items  []domain.LineItem
	isOpen bool
	// loaded is false while the slot has never been read successfully.
	// Saves are withheld until then.
	loaded bool

	slot     port.CartSlot
	emitter  Emitter
	identity port.IdentityProvider
	logger   *zap.Logger
}

// NewCartStore loads the cart from slot. A missing, unreadable or corrupt
// payload yields an empty cart. After a read error the store retries the read
// before each mutation and does not save until one succeeds.
func NewCartStore(ctx context.Context, slot port.CartSlot, opts ...Option) *CartStore {
	s := newCartStore(slot, buildOptions(opts))
	if err := s.load(ctx); err != nil {
		s.logger.Warn("failed to read cart, starting empty", zap.Error(err))
	}
	return s
}

// LoadCartStore is NewCartStore for callers that would rather fail than start
// from an unread slot. A corrupt payload still yields an empty cart.
func LoadCartStore(ctx context.Context, slot port.CartSlot, opts ...Option) (*CartStore, error) {
	s := newCartStore(slot, buildOptions(opts))
	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func newCartStore(slot port.CartSlot, o options) *CartStore {
	return &CartStore{
		slot:     slot,
		emitter:  o.emitter,
		identity: o.identity,
		logger:   o.logger,
	}
}

// load reports only read errors; a payload that does not decode is logged
// and replaced by an empty cart.
func (s *CartStore) load(ctx context.Context) error {
	data, err := s.slot.Load(ctx)
	if err != nil {
		return fmt.Errorf("read cart: %w", err)
	}
	s.loaded = true

	items, err := domain.DecodeSnapshot(data)
	if err != nil {
		s.logger.Warn("failed to parse cart, starting empty", zap.Error(err))
		s.items = nil
		return nil
	}
	s.items = items
	return nil
}

func (s *CartStore) ensureLoadedLocked(ctx context.Context) {
	if s.loaded {
		return
	}
	pending := s.items
	if err := s.load(ctx); err != nil {
		return
	}
	for _, item := range pending {
		if i := s.indexOf(item.Key()); i >= 0 {
			s.items[i].Quantity += item.Quantity
		} else {
			s.items = append(s.items, item)
		}
	}
}

// AddItem merges quantity into the line keyed by (product.ID, size), or
// appends a new line. A quantity below 1 counts as 1. The cart is opened and
// an add_to_cart event is handed to the emitter.
func (s *CartStore) AddItem(ctx context.Context, product domain.Product, quantity int, size domain.Size) {
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	s.ensureLoadedLocked(ctx)
	key := domain.LineKey{ProductID: product.ID, Size: size}
	if i := s.indexOf(key); i >= 0 {
		s.items[i].Quantity += quantity
	} else {
		s.items = append(s.items, domain.LineItem{Product: product, Quantity: quantity, Size: size})
	}
	s.isOpen = true
	s.persistLocked(ctx)
	s.mu.Unlock()

	event := domain.AnalyticsEvent{
		ProductID: product.ID,
		EventType: domain.EventTypeAddToCart,
		UserID:    s.identity.UserID(ctx),
	}
	if err := s.emitter.Emit(event); err != nil {
		s.logger.Warn("failed to log product analytics event",
			zap.String("product_id", string(product.ID)),
			zap.Error(err),
		)
	}
}

func (s *CartStore) RemoveItem(ctx context.Context, productID domain.ProductID, size domain.Size) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureLoadedLocked(ctx)
	if i := s.indexOf(domain.LineKey{ProductID: productID, Size: size}); i >= 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
	}
	s.persistLocked(ctx)
}

// SetQuantity ignores quantities below 1; removal is RemoveItem's job.
func (s *CartStore) SetQuantity(ctx context.Context, productID domain.ProductID, size domain.Size, quantity int) {
	if quantity < 1 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureLoadedLocked(ctx)
	if i := s.indexOf(domain.LineKey{ProductID: productID, Size: size}); i >= 0 {
		s.items[i].Quantity = quantity
	}
	s.persistLocked(ctx)
}

func (s *CartStore) Increment(ctx context.Context, productID domain.ProductID, size domain.Size) {
	s.step(ctx, productID, size, 1)
}

// Decrement never drops a line: at quantity 1 it is a no-op.
func (s *CartStore) Decrement(ctx context.Context, productID domain.ProductID, size domain.Size) {
	s.step(ctx, productID, size, -1)
}

func (s *CartStore) step(ctx context.Context, productID domain.ProductID, size domain.Size, delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureLoadedLocked(ctx)
	i := s.indexOf(domain.LineKey{ProductID: productID, Size: size})
	if i < 0 {
		return
	}
	next := s.items[i].Quantity + delta
	if next < 1 {
		return
	}
	s.items[i].Quantity = next
	s.persistLocked(ctx)
}

func (s *CartStore) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureLoadedLocked(ctx)
	s.items = nil
	s.persistLocked(ctx)
}

// Items returns a deep copy of the current lines in insertion order.
func (s *CartStore) Items() []domain.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.itemsLocked()
}

// Snapshot returns the lines and the open flag read under one lock.
func (s *CartStore) Snapshot() ([]domain.LineItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.itemsLocked(), s.isOpen
}

func (s *CartStore) itemsLocked() []domain.LineItem {
	out := make([]domain.LineItem, len(s.items))
	for i, item := range s.items {
		out[i] = item.Clone()
	}
	return out
}

func (s *CartStore) TotalValue() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.TotalValue(s.items)
}

func (s *CartStore) TotalCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.TotalCount(s.items)
}

func (s *CartStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *CartStore) IsEmpty() bool {
	return s.Len() == 0
}

func (s *CartStore) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isOpen
}

func (s *CartStore) Open() {
	s.setOpen(func(bool) bool { return true })
}

func (s *CartStore) Close() {
	s.setOpen(func(bool) bool { return false })
}

func (s *CartStore) Toggle() {
	s.setOpen(func(open bool) bool { return !open })
}

func (s *CartStore) setOpen(next func(bool) bool) {
	s.mu.Lock()
	s.isOpen = next(s.isOpen)
	s.mu.Unlock()
}

func (s *CartStore) indexOf(key domain.LineKey) int {
	for i, item := range s.items {
		if item.Key() == key {
			return i
		}
	}
	return -1
}

func (s *CartStore) persistLocked(ctx context.Context) {
	if !s.loaded {
		s.logger.Warn("cart not read yet, skipping save", zap.Int("items", len(s.items)))
		return
	}
	data, err := domain.EncodeSnapshot(s.items)
	if err != nil {
		s.logger.Error("failed to encode cart", zap.Error(err))
		return
	}
	if err := s.slot.Save(ctx, data); err != nil {
		s.logger.Warn("failed to save cart",
			zap.Int("items", len(s.items)),
			zap.Error(err),
		)
	}
}
