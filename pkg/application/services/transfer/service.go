package transfer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vsinha/divmrp/pkg/application/dto"
	"github.com/vsinha/divmrp/pkg/application/services/ledger"
	"github.com/vsinha/divmrp/pkg/domain/entities"
	"github.com/vsinha/divmrp/pkg/domain/repositories"
	"github.com/vsinha/divmrp/pkg/infrastructure/events"
	"github.com/vsinha/divmrp/pkg/infrastructure/logging"
)

// Service creates, settles and cancels inter-division transfers
type Service struct {
	store     repositories.Store
	tx        repositories.TxManager
	ledger    *ledger.Ledger
	publisher events.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(store repositories.Store, tx repositories.TxManager, ldg *ledger.Ledger, publisher events.Publisher, logger *zap.Logger) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{
		store:     store,
		tx:        tx,
		ledger:    ldg,
		publisher: publisher,
		logger:    logging.OrNop(logger),
		now:       time.Now,
	}
}

// Create stores a draft transfer after checking that every line moves stock from a warehouse of the
// sending division to a warehouse of the receiving one
func (s *Service) Create(ctx context.Context, req dto.CreateTransferRequest) (*entities.InterDivisionTransfer, error) {
	const op = "transfer.create"

	if req.FromDivisionID <= 0 || req.ToDivisionID <= 0 {
		return nil, entities.Validationf(op, "from_division_id and to_division_id are required")
	}
	if req.FromDivisionID == req.ToDivisionID {
		return nil, entities.Validationf(op, "source and destination division must differ")
	}
	if len(req.Items) == 0 {
		return nil, entities.Validationf(op, "transfer needs at least one line")
	}

	transfer := &entities.InterDivisionTransfer{
		TransferNumber: s.transferNumber(),
		FromDivisionID: req.FromDivisionID,
		ToDivisionID:   req.ToDivisionID,
		Status:         entities.TransferDraft,
		Notes:          req.Notes,
	}

	err := s.tx.WithTransaction(ctx, func(ctx context.Context, tx repositories.Store) error {
		for _, id := range []int64{req.FromDivisionID, req.ToDivisionID} {
			if _, err := tx.Sites().GetDivision(ctx, id); err != nil {
				return err
			}
		}

		for i, line := range req.Items {
			if !line.Quantity.IsPositive() {
				return entities.Validationf(op, "line %d: quantity must be positive, got %s", i+1, line.Quantity.String())
			}
			if _, err := tx.Items().GetItem(ctx, line.ItemID); err != nil {
				return fmt.Errorf("line %d: %w", i+1, err)
			}
			if err := checkWarehouse(ctx, tx, line.FromWarehouseID, line.FromLocationID, req.FromDivisionID); err != nil {
				return fmt.Errorf("line %d source: %w", i+1, err)
			}
			if err := checkWarehouse(ctx, tx, line.ToWarehouseID, line.ToLocationID, req.ToDivisionID); err != nil {
				return fmt.Errorf("line %d destination: %w", i+1, err)
			}

			transfer.Items = append(transfer.Items, entities.InterDivisionTransferItem{
				ItemID:          line.ItemID,
				Quantity:        line.Quantity,
				FromWarehouseID: line.FromWarehouseID,
				FromLocationID:  line.FromLocationID,
				ToWarehouseID:   line.ToWarehouseID,
				ToLocationID:    line.ToLocationID,
				LotNumber:       line.LotNumber,
				Status:          entities.TransferItemPending,
			})
		}

		return tx.Transfers().CreateTransfer(ctx, transfer)
	})
	if err != nil {
		s.logger.Info("transfer rejected", zap.Int64("from_division_id", req.FromDivisionID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("transfer created",
		zap.Int64("transfer_id", transfer.ID),
		zap.String("transfer_number", transfer.TransferNumber),
		zap.Int("lines", len(transfer.Items)),
	)
	return transfer, nil
}

func checkWarehouse(ctx context.Context, tx repositories.Store, warehouseID int64, locationID *int64, divisionID int64) error {
	warehouse, err := ledger.ValidateSite(ctx, tx.Sites(), warehouseID, locationID)
	if err != nil {
		return err
	}
	if warehouse.DivisionID != divisionID {
		return entities.Validationf("transfer.site", "warehouse %d does not belong to division %d", warehouse.ID, divisionID)
	}
	return nil
}

func (s *Service) transferNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("IDT-%s-%s", s.now().UTC().Format("20060102"), suffix)
}

// Get returns a transfer with its lines
func (s *Service) Get(ctx context.Context, id int64) (*entities.InterDivisionTransfer, error) {
	return s.store.Transfers().GetTransfer(ctx, id)
}

// Settle processes a draft transfer. Lines run in declaration order inside one transaction: each
// debits its source key and credits its destination key. The first failing line rolls back the
// whole call, so either every line settles and the transfer completes or nothing changes.
func (s *Service) Settle(ctx context.Context, id int64) (*dto.SettlementResult, error) {
	const op = "transfer.settle"

	var (
		transfer *entities.InterDivisionTransfer
		result   *dto.SettlementResult
	)
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, tx repositories.Store) error {
		var err error
		transfer, err = tx.Transfers().GetTransfer(ctx, id)
		if err != nil {
			return err
		}
		if transfer.Status != entities.TransferDraft {
			return entities.InvalidTransitionf(op, "transfer %s is %s, only draft transfers can be processed", transfer.TransferNumber, transfer.Status)
		}
		if transfer.FromDivisionID == transfer.ToDivisionID {
			return entities.Validationf(op, "transfer %s moves stock within division %d", transfer.TransferNumber, transfer.FromDivisionID)
		}

		result = &dto.SettlementResult{TransferID: transfer.ID}
		ref := entities.MovementReference{Type: entities.RefTransfer, ID: transfer.ID, Note: transfer.TransferNumber}
		for i := range transfer.Items {
			line := &transfer.Items[i]
			source, err := s.ledger.ApplyDelta(ctx, tx, line.SourceKey(), line.Quantity.Neg(), ref)
			if err != nil {
				return fmt.Errorf("transfer %s line %d: %w", transfer.TransferNumber, i+1, err)
			}
			destination, err := s.ledger.ApplyDelta(ctx, tx, line.DestinationKey(), line.Quantity, ref)
			if err != nil {
				return fmt.Errorf("transfer %s line %d: %w", transfer.TransferNumber, i+1, err)
			}
			line.Status = entities.TransferItemTransferred

			result.Lines = append(result.Lines, dto.SettledLine{
				TransferItemID:    line.ID,
				ItemID:            line.ItemID,
				Quantity:          line.Quantity,
				SourceOnHand:      source.QuantityOnHand,
				DestinationOnHand: destination.QuantityOnHand,
			})
		}

		completedAt := s.now().UTC()
		transfer.Status = entities.TransferCompleted
		transfer.CompletedAt = &completedAt
		result.Status = string(transfer.Status)
		result.CompletedAt = &completedAt
		return tx.Transfers().UpdateTransfer(ctx, transfer)
	})
	if err != nil {
		s.logger.Info("transfer settlement rolled back", zap.Int64("transfer_id", id), zap.Error(err))
		return nil, err
	}

	lines := make([]events.MaterialLine, 0, len(transfer.Items))
	for _, item := range transfer.Items {
		lines = append(lines, events.MaterialLine{ItemID: item.ItemID, Quantity: item.Quantity})
	}
	s.logger.Info("transfer settled",
		zap.Int64("transfer_id", transfer.ID),
		zap.String("transfer_number", transfer.TransferNumber),
		zap.Int("lines", len(lines)),
	)
	events.Emit(ctx, s.publisher, s.logger, events.NewEvent(events.TransferSettledEvent, events.TransferStream(transfer.ID), events.TransferSettled{
		TransferID:     transfer.ID,
		FromDivisionID: transfer.FromDivisionID,
		ToDivisionID:   transfer.ToDivisionID,
		Lines:          lines,
	}))

	return result, nil
}

// Cancel stops a transfer that has not completed yet
func (s *Service) Cancel(ctx context.Context, id int64) (*entities.InterDivisionTransfer, error) {
	var transfer *entities.InterDivisionTransfer
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, tx repositories.Store) error {
		var err error
		transfer, err = tx.Transfers().GetTransfer(ctx, id)
		if err != nil {
			return err
		}
		if !transfer.Cancellable() {
			return entities.InvalidTransitionf("transfer.cancel", "transfer %s is %s and cannot be cancelled", transfer.TransferNumber, transfer.Status)
		}
		transfer.Status = entities.TransferCancelled
		return tx.Transfers().UpdateTransfer(ctx, transfer)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("transfer cancelled", zap.Int64("transfer_id", id))
	events.Emit(ctx, s.publisher, s.logger, events.NewEvent(events.TransferCancelledEvent, events.TransferStream(id), events.TransferCancelled{TransferID: id}))
	return transfer, nil
}
