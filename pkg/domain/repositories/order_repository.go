package repositories

import (
	"context"

	"github.com/vsinha/divmrp/pkg/domain/entities"
)

// OrderRepository persists manufacturing orders together with their materials and operations
type OrderRepository interface {
	GetOrder(ctx context.Context, id int64) (*entities.ManufacturingOrder, error)
	CreateOrder(ctx context.Context, order *entities.ManufacturingOrder) error
	UpdateOrder(ctx context.Context, order *entities.ManufacturingOrder) error
}

// TransferRepository persists inter-division transfers together with their lines
type TransferRepository interface {
	GetTransfer(ctx context.Context, id int64) (*entities.InterDivisionTransfer, error)
	CreateTransfer(ctx context.Context, transfer *entities.InterDivisionTransfer) error
	UpdateTransfer(ctx context.Context, transfer *entities.InterDivisionTransfer) error
}
