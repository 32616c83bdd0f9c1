package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/vsinha/divmrp/pkg/domain/entities"
)

type itemRepository struct {
	*Store
}

func (r *itemRepository) GetItem(ctx context.Context, id int64) (*entities.Item, error) {
	var item entities.Item
	if err := first(r.conn(ctx), &item, id, "get item", "item"); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *itemRepository) GetItemByCode(ctx context.Context, code string) (*entities.Item, error) {
	var item entities.Item
	err := r.conn(ctx).Where("code = ?", code).Take(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entities.NotFoundf("get item", "item %q not found", code)
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *itemRepository) ListItems(ctx context.Context) ([]*entities.Item, error) {
	var items []*entities.Item
	err := r.conn(ctx).Order("code").Find(&items).Error
	return items, err
}

func (r *itemRepository) SaveItem(ctx context.Context, item *entities.Item) error {
	return translate(r.conn(ctx).Save(item).Error, "save item")
}

type siteRepository struct {
	*Store
}

func (r *siteRepository) GetDivision(ctx context.Context, id int64) (*entities.Division, error) {
	var division entities.Division
	if err := first(r.conn(ctx), &division, id, "get division", "division"); err != nil {
		return nil, err
	}
	return &division, nil
}

func (r *siteRepository) GetWarehouse(ctx context.Context, id int64) (*entities.Warehouse, error) {
	var warehouse entities.Warehouse
	if err := first(r.conn(ctx), &warehouse, id, "get warehouse", "warehouse"); err != nil {
		return nil, err
	}
	return &warehouse, nil
}

func (r *siteRepository) GetLocation(ctx context.Context, id int64) (*entities.Location, error) {
	var location entities.Location
	if err := first(r.conn(ctx), &location, id, "get location", "location"); err != nil {
		return nil, err
	}
	return &location, nil
}

func (r *siteRepository) SaveDivision(ctx context.Context, division *entities.Division) error {
	return translate(r.conn(ctx).Save(division).Error, "save division")
}

func (r *siteRepository) SaveWarehouse(ctx context.Context, warehouse *entities.Warehouse) error {
	return translate(r.conn(ctx).Save(warehouse).Error, "save warehouse")
}

func (r *siteRepository) SaveLocation(ctx context.Context, location *entities.Location) error {
	return translate(r.conn(ctx).Save(location).Error, "save location")
}
