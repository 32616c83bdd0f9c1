package memory

import (
	"context"

	"github.com/vsinha/divmrp/pkg/domain/entities"
)

type orderRepository struct {
	*view
}

func (r *orderRepository) GetOrder(_ context.Context, id int64) (*entities.ManufacturingOrder, error) {
	var out *entities.ManufacturingOrder
	err := r.access.read(func(s *state) error {
		order, ok := s.orders[id]
		if !ok {
			return entities.NotFoundf("get manufacturing order", "manufacturing order %d not found", id)
		}
		out = copyOrder(order)
		return nil
	})
	return out, err
}

func (r *orderRepository) CreateOrder(_ context.Context, order *entities.ManufacturingOrder) error {
	return r.access.write(func(s *state) error {
		for _, existing := range s.orders {
			if existing.OrderNumber == order.OrderNumber {
				return entities.Validationf("create manufacturing order", "order number %s already exists", order.OrderNumber)
			}
		}
		now := r.now()
		order.ID = s.nextID("manufacturing_orders", 0)
		order.CreatedAt = now
		order.UpdatedAt = now
		for i := range order.Materials {
			order.Materials[i].ID = s.nextID("manufacturing_order_materials", 0)
			order.Materials[i].OrderID = order.ID
		}
		for i := range order.Operations {
			order.Operations[i].ID = s.nextID("manufacturing_order_operations", 0)
			order.Operations[i].OrderID = order.ID
		}
		s.orders[order.ID] = copyOrder(order)
		return nil
	})
}

func (r *orderRepository) UpdateOrder(_ context.Context, order *entities.ManufacturingOrder) error {
	return r.access.write(func(s *state) error {
		existing, ok := s.orders[order.ID]
		if !ok {
			return entities.NotFoundf("update manufacturing order", "manufacturing order %d not found", order.ID)
		}
		order.CreatedAt = existing.CreatedAt
		order.UpdatedAt = r.now()
		s.orders[order.ID] = copyOrder(order)
		return nil
	})
}

type transferRepository struct {
	*view
}

func (r *transferRepository) GetTransfer(_ context.Context, id int64) (*entities.InterDivisionTransfer, error) {
	var out *entities.InterDivisionTransfer
	err := r.access.read(func(s *state) error {
		transfer, ok := s.transfers[id]
		if !ok {
			return entities.NotFoundf("get transfer", "inter-division transfer %d not found", id)
		}
		out = copyTransfer(transfer)
		return nil
	})
	return out, err
}

func (r *transferRepository) CreateTransfer(_ context.Context, transfer *entities.InterDivisionTransfer) error {
	return r.access.write(func(s *state) error {
		now := r.now()
		transfer.ID = s.nextID("inter_division_transfers", transfer.ID)
		transfer.CreatedAt = now
		transfer.UpdatedAt = now
		for i := range transfer.Items {
			transfer.Items[i].ID = s.nextID("inter_division_transfer_items", 0)
			transfer.Items[i].TransferID = transfer.ID
		}
		s.transfers[transfer.ID] = copyTransfer(transfer)
		return nil
	})
}

func (r *transferRepository) UpdateTransfer(_ context.Context, transfer *entities.InterDivisionTransfer) error {
	return r.access.write(func(s *state) error {
		existing, ok := s.transfers[transfer.ID]
		if !ok {
			return entities.NotFoundf("update transfer", "inter-division transfer %d not found", transfer.ID)
		}
		transfer.CreatedAt = existing.CreatedAt
		transfer.UpdatedAt = r.now()
		s.transfers[transfer.ID] = copyTransfer(transfer)
		return nil
	})
}
