package repositories

import (
	"context"

	"github.com/vsinha/divmrp/pkg/domain/entities"
)

// ItemRepository provides access to item master data
type ItemRepository interface {
	GetItem(ctx context.Context, id int64) (*entities.Item, error)
	GetItemByCode(ctx context.Context, code string) (*entities.Item, error)
	ListItems(ctx context.Context) ([]*entities.Item, error)
	SaveItem(ctx context.Context, item *entities.Item) error
}

// SiteRepository provides access to divisions, warehouses and locations
type SiteRepository interface {
	GetDivision(ctx context.Context, id int64) (*entities.Division, error)
	GetWarehouse(ctx context.Context, id int64) (*entities.Warehouse, error)
	GetLocation(ctx context.Context, id int64) (*entities.Location, error)
	SaveDivision(ctx context.Context, division *entities.Division) error
	SaveWarehouse(ctx context.Context, warehouse *entities.Warehouse) error
	SaveLocation(ctx context.Context, location *entities.Location) error
}
