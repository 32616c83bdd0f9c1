package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/vsinha/divmrp/pkg/domain/entities"
)

type orderRepository struct {
	*Store
}

func (r *orderRepository) GetOrder(ctx context.Context, id int64) (*entities.ManufacturingOrder, error) {
	var order entities.ManufacturingOrder
	db := r.locking(ctx).
		Preload("Materials", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Operations", func(db *gorm.DB) *gorm.DB { return db.Order("sequence, id") })
	if err := first(db, &order, id, "get order", "manufacturing order"); err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) CreateOrder(ctx context.Context, order *entities.ManufacturingOrder) error {
	return translate(r.conn(ctx).Create(order).Error, "create order")
}

// UpdateOrder saves the order header and every material and operation row
func (r *orderRepository) UpdateOrder(ctx context.Context, order *entities.ManufacturingOrder) error {
	err := r.conn(ctx).Session(&gorm.Session{FullSaveAssociations: true}).Save(order).Error
	return translate(err, "update order")
}

type transferRepository struct {
	*Store
}

func (r *transferRepository) GetTransfer(ctx context.Context, id int64) (*entities.InterDivisionTransfer, error) {
	var transfer entities.InterDivisionTransfer
	db := r.locking(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") })
	if err := first(db, &transfer, id, "get transfer", "inter-division transfer"); err != nil {
		return nil, err
	}
	return &transfer, nil
}

func (r *transferRepository) CreateTransfer(ctx context.Context, transfer *entities.InterDivisionTransfer) error {
	return translate(r.conn(ctx).Create(transfer).Error, "create transfer")
}

func (r *transferRepository) UpdateTransfer(ctx context.Context, transfer *entities.InterDivisionTransfer) error {
	err := r.conn(ctx).Session(&gorm.Session{FullSaveAssociations: true}).Save(transfer).Error
	return translate(err, "update transfer")
}
