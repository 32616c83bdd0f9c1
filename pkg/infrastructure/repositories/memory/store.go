package memory

import (
	"context"
	"sync"
	"time"

	"github.com/vsinha/divmrp/pkg/domain/repositories"
)

// Store is an in-memory implementation of every repository.
// Transactions run on a private copy of the whole state under an exclusive lock and replace the
// committed state on success, which makes them serializable. Entities are copied on read and on write.
type Store struct {
	txMu  sync.Mutex
	mu    sync.RWMutex
	state *state
	now   func() time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		state: newState(),
		now:   time.Now,
	}
}

// Verify interface compliance
var (
	_ repositories.Store       = (*Store)(nil)
	_ repositories.TxManager   = (*Store)(nil)
	_ repositories.StockReader = (*Store)(nil)
)

// WithTransaction runs fn against a snapshot and commits it when fn returns nil.
// Panics and errors leave the committed state untouched.
func (s *Store) WithTransaction(ctx context.Context, fn repositories.TxFunc) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	working := s.state.clone()
	s.mu.RUnlock()

	if err := fn(ctx, newView(&txAccess{state: working}, s.now)); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.state = working
	s.mu.Unlock()
	return nil
}

func (s *Store) view() *view {
	return newView(&rootAccess{store: s}, s.now)
}

func (s *Store) Items() repositories.ItemRepository          { return s.view().Items() }
func (s *Store) Sites() repositories.SiteRepository          { return s.view().Sites() }
func (s *Store) BOMs() repositories.BOMRepository            { return s.view().BOMs() }
func (s *Store) Inventory() repositories.InventoryRepository { return s.view().Inventory() }
func (s *Store) Orders() repositories.OrderRepository        { return s.view().Orders() }
func (s *Store) Transfers() repositories.TransferRepository  { return s.view().Transfers() }
func (s *Store) Pricing() repositories.PricingRepository     { return s.view().Pricing() }

// ItemPricingCount returns the number of stored price calculations
func (s *Store) ItemPricingCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.state.pricings)
}

// access abstracts how repositories reach the state: directly inside a transaction, or through the
// store's locks outside of one.
type access interface {
	read(fn func(*state) error) error
	write(fn func(*state) error) error
}

type txAccess struct {
	state *state
}

func (a *txAccess) read(fn func(*state) error) error  { return fn(a.state) }
func (a *txAccess) write(fn func(*state) error) error { return fn(a.state) }

// rootAccess serves calls made outside WithTransaction. Each write is its own single-statement transaction.
type rootAccess struct {
	store *Store
}

func (a *rootAccess) read(fn func(*state) error) error {
	a.store.mu.RLock()
	defer a.store.mu.RUnlock()
	return fn(a.store.state)
}

func (a *rootAccess) write(fn func(*state) error) error {
	return a.store.WithTransaction(context.Background(), func(_ context.Context, tx repositories.Store) error {
		return fn(tx.(*view).access.(*txAccess).state)
	})
}

// view binds the repositories to one access path
type view struct {
	access access
	now    func() time.Time
}

func newView(a access, now func() time.Time) *view {
	return &view{access: a, now: now}
}

func (v *view) Items() repositories.ItemRepository          { return &itemRepository{v} }
func (v *view) Sites() repositories.SiteRepository          { return &siteRepository{v} }
func (v *view) BOMs() repositories.BOMRepository            { return &bomRepository{v} }
func (v *view) Inventory() repositories.InventoryRepository { return &inventoryRepository{v} }
func (v *view) Orders() repositories.OrderRepository        { return &orderRepository{v} }
func (v *view) Transfers() repositories.TransferRepository  { return &transferRepository{v} }
func (v *view) Pricing() repositories.PricingRepository     { return &pricingRepository{v} }
