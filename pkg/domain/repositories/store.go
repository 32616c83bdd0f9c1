package repositories

import "context"

// Store groups the repositories of one unit of work
type Store interface {
	Items() ItemRepository
	Sites() SiteRepository
	BOMs() BOMRepository
	Inventory() InventoryRepository
	Orders() OrderRepository
	Transfers() TransferRepository
	Pricing() PricingRepository
}

// TxFunc runs inside a transaction against the transactional store
type TxFunc func(ctx context.Context, store Store) error

// TxManager runs fn atomically: commit when fn returns nil, roll back when it returns an error or panics.
// Transactions are not reentrant.
type TxManager interface {
	WithTransaction(ctx context.Context, fn TxFunc) error
}
