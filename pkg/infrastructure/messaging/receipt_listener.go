package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/vsinha/divmrp/pkg/application/dto"
	"github.com/vsinha/divmrp/pkg/domain/entities"
	"github.com/vsinha/divmrp/pkg/infrastructure/logging"
)

// MessageReader is the subset of *kafka.Reader used by the listener
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Adjuster applies one ledger delta in its own transaction
type Adjuster interface {
	Adjust(ctx context.Context, req dto.AdjustmentRequest) (*entities.InventoryRecord, error)
}

// NewKafkaReader creates a consumer-group reader for the receipts topic
func NewKafkaReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       1 << 20,
		MaxWait:        time.Second,
		CommitInterval: 0,
	})
}

// ReceiptListener books goods receipts from kafka as positive ledger deltas. Messages that can never
// be applied are logged and committed; infrastructure failures stop the listener without committing.
type ReceiptListener struct {
	reader MessageReader
	ledger Adjuster
	logger *zap.Logger
}

func NewReceiptListener(reader MessageReader, ledger Adjuster, logger *zap.Logger) *ReceiptListener {
	return &ReceiptListener{reader: reader, ledger: ledger, logger: logging.OrNop(logger)}
}

// Run consumes until ctx is cancelled
func (l *ReceiptListener) Run(ctx context.Context) error {
	l.logger.Info("receipt listener started")
	defer l.logger.Info("receipt listener stopped")

	for {
		msg, err := l.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("fetch receipt: %w", err)
		}

		if err := l.Handle(ctx, msg); err != nil {
			return err
		}
		if err := l.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("commit receipt offset %d: %w", msg.Offset, err)
		}
	}
}

// Supervise runs a listener on a fresh reader until ctx is cancelled. After a failure the reader is
// closed and, after backoff, reopened, so the group hands the uncommitted receipt out again. The
// HTTP API keeps serving while the listener recovers.
func Supervise(ctx context.Context, open func() MessageReader, ledger Adjuster, logger *zap.Logger, backoff time.Duration) {
	logger = logging.OrNop(logger)
	for restarts := 0; ; restarts++ {
		reader := open()
		err := NewReceiptListener(reader, ledger, logger).Run(ctx)
		if cerr := reader.Close(); cerr != nil {
			logger.Warn("close receipt reader", zap.Error(cerr))
		}
		if ctx.Err() != nil {
			return
		}
		logger.Error("receipt listener failed, restarting",
			zap.Error(err), zap.Int("restarts", restarts), zap.Duration("backoff", backoff))

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
	}
}

// Handle applies one message. Only errors worth retrying are returned.
func (l *ReceiptListener) Handle(ctx context.Context, msg kafka.Message) error {
	fields := []zap.Field{zap.Int("partition", msg.Partition), zap.Int64("offset", msg.Offset)}

	var receipt dto.ReceiptMessage
	if err := json.Unmarshal(msg.Value, &receipt); err != nil {
		l.logger.Warn("skipping malformed receipt", append(fields, zap.Error(err))...)
		return nil
	}
	if !receipt.Quantity.IsPositive() {
		l.logger.Warn("skipping receipt with non-positive quantity",
			append(fields, zap.String("quantity", receipt.Quantity.String()))...)
		return nil
	}

	record, err := l.ledger.Adjust(ctx, dto.AdjustmentRequest{
		ItemID:        receipt.ItemID,
		WarehouseID:   receipt.WarehouseID,
		LocationID:    receipt.LocationID,
		LotNumber:     receipt.LotNumber,
		Quantity:      receipt.Quantity,
		ReferenceType: entities.RefReceipt,
		ReferenceID:   receipt.ReferenceID,
		Note:          "goods receipt",
	})
	if err != nil {
		var domainErr *entities.Error
		if errors.As(err, &domainErr) && domainErr.Kind != entities.KindInternal {
			l.logger.Warn("skipping rejected receipt", append(fields, zap.Error(err))...)
			return nil
		}
		return fmt.Errorf("apply receipt %d: %w", receipt.ReferenceID, err)
	}

	l.logger.Info("receipt booked", append(fields,
		zap.Int64("item_id", record.ItemID),
		zap.String("on_hand", record.QuantityOnHand.String()),
	)...)
	return nil
}
