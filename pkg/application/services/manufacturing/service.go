package manufacturing

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vsinha/divmrp/pkg/application/dto"
	"github.com/vsinha/divmrp/pkg/application/services/ledger"
	"github.com/vsinha/divmrp/pkg/application/services/mrp"
	"github.com/vsinha/divmrp/pkg/domain/entities"
	"github.com/vsinha/divmrp/pkg/domain/repositories"
	domainservices "github.com/vsinha/divmrp/pkg/domain/services"
	"github.com/vsinha/divmrp/pkg/infrastructure/events"
	"github.com/vsinha/divmrp/pkg/infrastructure/logging"
)

// Service creates manufacturing orders from BOMs and drives their lifecycle
type Service struct {
	store     repositories.Store
	tx        repositories.TxManager
	exploder  *mrp.Exploder
	ledger    *ledger.Ledger
	versions  *domainservices.VersionComparator
	publisher events.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(
	store repositories.Store,
	tx repositories.TxManager,
	exploder *mrp.Exploder,
	ldg *ledger.Ledger,
	publisher events.Publisher,
	logger *zap.Logger,
) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{
		store:     store,
		tx:        tx,
		exploder:  exploder,
		ledger:    ldg,
		versions:  domainservices.NewVersionComparator(),
		publisher: publisher,
		logger:    logging.OrNop(logger),
		now:       time.Now,
	}
}

// Create validates the request, resolves the BOM, explodes it and stores the order with one material
// per requirement, all in one transaction. An order without a usable BOM gets no materials and a
// single generic operation.
func (s *Service) Create(ctx context.Context, req dto.CreateOrderRequest) (*entities.ManufacturingOrder, error) {
	const op = "manufacturing.create"

	if req.ItemID <= 0 {
		return nil, entities.Validationf(op, "item_id is required")
	}
	if req.DivisionID <= 0 {
		return nil, entities.Validationf(op, "division_id is required")
	}
	if !req.Quantity.IsPositive() {
		return nil, entities.Validationf(op, "quantity must be positive, got %s", req.Quantity.String())
	}
	if req.PlannedStart != nil && req.PlannedEnd != nil && req.PlannedEnd.Before(*req.PlannedStart) {
		return nil, entities.Validationf(op, "planned_end cannot be before planned_start")
	}

	var order *entities.ManufacturingOrder
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, tx repositories.Store) error {
		item, err := tx.Items().GetItem(ctx, req.ItemID)
		if err != nil {
			return err
		}
		if _, err := tx.Sites().GetDivision(ctx, req.DivisionID); err != nil {
			return err
		}
		warehouse, err := ledger.ValidateSite(ctx, tx.Sites(), req.WarehouseID, req.LocationID)
		if err != nil {
			return err
		}
		if warehouse.DivisionID != req.DivisionID {
			return entities.Validationf(op, "warehouse %d does not belong to division %d", warehouse.ID, req.DivisionID)
		}

		bom, err := s.resolveBOM(ctx, tx, item.ID, req.BomID)
		if err != nil {
			return err
		}

		var requirements []dto.MaterialRequirement
		if bom != nil {
			components, err := tx.BOMs().GetComponents(ctx, bom.ID)
			if err != nil {
				return err
			}
			requirements, err = s.exploder.Explode(bom, components, req.Quantity)
			if err != nil && !errors.Is(err, mrp.ErrEmptyBOM) {
				return err
			}
		}

		order, err = entities.NewManufacturingOrder(s.orderNumber(), item.ID, req.DivisionID, req.Quantity, req.PlannedStart, req.PlannedEnd)
		if err != nil {
			return entities.Validationf(op, "%s", err.Error())
		}
		if bom != nil {
			id := bom.ID
			order.BomID = &id
		}
		order.Priority = req.Priority
		order.Notes = req.Notes

		for _, r := range requirements {
			componentID := r.SourceComponentID
			order.Materials = append(order.Materials, entities.ManufacturingOrderMaterial{
				ItemID:           r.ComponentItemID,
				BomComponentID:   &componentID,
				PlannedQuantity:  r.PlannedQuantity,
				IssuedQuantity:   decimal.Zero,
				ReturnedQuantity: decimal.Zero,
				UomID:            r.UomID,
				WarehouseID:      warehouse.ID,
				LocationID:       req.LocationID,
			})
		}
		if len(order.Materials) == 0 {
			order.Operations = []entities.ManufacturingOrderOperation{{
				Sequence: 10,
				Name:     entities.GenericOperationName,
				Status:   entities.OperationPending,
			}}
		}

		return tx.Orders().CreateOrder(ctx, order)
	})
	if err != nil {
		s.logger.Info("manufacturing order rejected", zap.Int64("item_id", req.ItemID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("manufacturing order created",
		zap.Int64("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.Int("materials", len(order.Materials)),
	)
	events.Emit(ctx, s.publisher, s.logger, events.NewEvent(events.ManufacturingOrderCreatedEvent, events.OrderStream(order.ID), events.ManufacturingOrderCreated{
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		ItemID:        order.ItemID,
		BomID:         order.BomID,
		DivisionID:    order.DivisionID,
		Quantity:      order.Quantity,
		MaterialCount: len(order.Materials),
	}))

	return order, nil
}

// resolveBOM returns the requested BOM, which must belong to the item, or else the latest active BOM
// of the item. A nil BOM without error means the item has none.
func (s *Service) resolveBOM(ctx context.Context, tx repositories.Store, itemID int64, bomID *int64) (*entities.BillOfMaterials, error) {
	if bomID != nil {
		bom, err := tx.BOMs().GetBOM(ctx, *bomID)
		if err != nil {
			return nil, err
		}
		if bom.ItemID != itemID {
			return nil, entities.Validationf("manufacturing.bom", "bom %d does not belong to item %d", bom.ID, itemID)
		}
		return bom, nil
	}

	boms, err := tx.BOMs().ListBOMsByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return s.LatestActive(boms), nil
}

// LatestActive picks the active BOM with the highest revision, then the highest version label in
// natural order, then the highest id
func (s *Service) LatestActive(boms []*entities.BillOfMaterials) *entities.BillOfMaterials {
	active := make([]*entities.BillOfMaterials, 0, len(boms))
	for _, b := range boms {
		if b.Status == entities.BOMActive {
			active = append(active, b)
		}
	}
	if len(active) == 0 {
		return nil
	}

	sort.Slice(active, func(i, j int) bool {
		a, b := active[i], active[j]
		if a.Revision != b.Revision {
			return a.Revision > b.Revision
		}
		if c := s.versions.CompareVersions(a.Version, b.Version); c != 0 {
			return c > 0
		}
		return a.ID > b.ID
	})
	return active[0]
}

func (s *Service) orderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("MO-%s-%s", s.now().UTC().Format("20060102"), suffix)
}

// Get returns an order with its materials and operations
func (s *Service) Get(ctx context.Context, id int64) (*entities.ManufacturingOrder, error) {
	return s.store.Orders().GetOrder(ctx, id)
}

// UpdateStatus moves the order along its lifecycle
func (s *Service) UpdateStatus(ctx context.Context, id int64, status entities.OrderStatus) (*entities.ManufacturingOrder, error) {
	var (
		order *entities.ManufacturingOrder
		from  entities.OrderStatus
	)
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, tx repositories.Store) error {
		var err error
		order, err = tx.Orders().GetOrder(ctx, id)
		if err != nil {
			return err
		}
		from = order.Status
		if err := order.TransitionTo(status); err != nil {
			return err
		}
		return tx.Orders().UpdateOrder(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("manufacturing order status changed",
		zap.Int64("order_id", id),
		zap.String("from", string(from)),
		zap.String("to", string(status)),
	)
	events.Emit(ctx, s.publisher, s.logger, events.NewEvent(events.ManufacturingOrderStatusEvent, events.OrderStream(id), events.ManufacturingOrderStatusChanged{
		OrderID: id,
		From:    string(from),
		To:      string(status),
	}))
	return order, nil
}

// IssueMaterials debits every outstanding planned quantity from the material's warehouse and starts
// the order. Either every line is issued or none is.
func (s *Service) IssueMaterials(ctx context.Context, id int64) (*entities.ManufacturingOrder, error) {
	const op = "manufacturing.issue"

	var (
		order  *entities.ManufacturingOrder
		issued []events.MaterialLine
		from   entities.OrderStatus
	)
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, tx repositories.Store) error {
		var err error
		order, err = tx.Orders().GetOrder(ctx, id)
		if err != nil {
			return err
		}
		from = order.Status
		if order.Status != entities.OrderInProgress {
			if err := order.TransitionTo(entities.OrderInProgress); err != nil {
				return err
			}
		}

		for i := range order.Materials {
			m := &order.Materials[i]
			qty := m.Outstanding()
			if !qty.IsPositive() {
				continue
			}
			key := entities.InventoryKey{ItemID: m.ItemID, WarehouseID: m.WarehouseID, LocationID: m.LocationID}
			ref := entities.MovementReference{Type: entities.RefManufacturingOrder, ID: order.ID, Note: "issue " + order.OrderNumber}
			if _, err := s.ledger.ApplyDelta(ctx, tx, key, qty.Neg(), ref); err != nil {
				return fmt.Errorf("issue material %d of order %s: %w", m.ID, order.OrderNumber, err)
			}
			m.IssuedQuantity = m.IssuedQuantity.Add(qty)
			issued = append(issued, events.MaterialLine{ItemID: m.ItemID, Quantity: qty})
		}
		if len(issued) == 0 && len(order.Materials) > 0 {
			return entities.Validationf(op, "order %s has nothing left to issue", order.OrderNumber)
		}

		return tx.Orders().UpdateOrder(ctx, order)
	})
	if err != nil {
		s.logger.Info("material issue rejected", zap.Int64("order_id", id), zap.Error(err))
		return nil, err
	}

	evts := []events.Event{
		events.NewEvent(events.MaterialsIssuedEvent, events.OrderStream(id), events.MaterialsIssued{OrderID: id, Lines: issued}),
	}
	if from != order.Status {
		evts = append(evts, events.NewEvent(events.ManufacturingOrderStatusEvent, events.OrderStream(id), events.ManufacturingOrderStatusChanged{
			OrderID: id,
			From:    string(from),
			To:      string(order.Status),
		}))
	}
	events.Emit(ctx, s.publisher, s.logger, evts...)
	return order, nil
}

// ReturnMaterial credits up to the net issued quantity of one material back to its warehouse
func (s *Service) ReturnMaterial(ctx context.Context, orderID, materialID int64, quantity decimal.Decimal) (*entities.ManufacturingOrder, error) {
	const op = "manufacturing.return"

	if !quantity.IsPositive() {
		return nil, entities.Validationf(op, "return quantity must be positive, got %s", quantity.String())
	}

	var (
		order    *entities.ManufacturingOrder
		returned events.MaterialLine
	)
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, tx repositories.Store) error {
		var err error
		order, err = tx.Orders().GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status == entities.OrderCancelled {
			return entities.InvalidTransitionf(op, "order %s is cancelled", order.OrderNumber)
		}
		m, ok := order.Material(materialID)
		if !ok {
			return entities.NotFoundf(op, "material %d not found on order %d", materialID, orderID)
		}
		if quantity.GreaterThan(m.NetIssued()) {
			return entities.Validationf(op, "cannot return %s of item %d, only %s issued", quantity.String(), m.ItemID, m.NetIssued().String())
		}

		key := entities.InventoryKey{ItemID: m.ItemID, WarehouseID: m.WarehouseID, LocationID: m.LocationID}
		ref := entities.MovementReference{Type: entities.RefManufacturingOrder, ID: order.ID, Note: "return " + order.OrderNumber}
		if _, err := s.ledger.ApplyDelta(ctx, tx, key, quantity, ref); err != nil {
			return err
		}
		m.ReturnedQuantity = m.ReturnedQuantity.Add(quantity)
		returned = events.MaterialLine{ItemID: m.ItemID, Quantity: quantity}
		return tx.Orders().UpdateOrder(ctx, order)
	})
	if err != nil {
		s.logger.Info("material return rejected", zap.Int64("order_id", orderID), zap.Int64("material_id", materialID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("materials returned",
		zap.Int64("order_id", orderID),
		zap.Int64("material_id", materialID),
		zap.Int64("item_id", returned.ItemID),
		zap.String("quantity", quantity.String()),
	)
	events.Emit(ctx, s.publisher, s.logger, events.NewEvent(events.MaterialsReturnedEvent, events.OrderStream(orderID), events.MaterialsReturned{
		OrderID:      orderID,
		MaterialID:   materialID,
		MaterialLine: returned,
	}))
	return order, nil
}
