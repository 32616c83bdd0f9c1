package commands

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vsinha/divmrp/pkg/application/dto"
	"github.com/vsinha/divmrp/pkg/interfaces/cli/output"
)

// TransferConfig describes a single-line transfer between two divisions
type TransferConfig struct {
	Config
	FromDivisionID  int64
	ToDivisionID    int64
	FromWarehouseID int64
	ToWarehouseID   int64
	ItemCode        string
	Quantity        string
	LotNumber       string
}

// TransferCommand creates and settles an inter-division transfer against the scenario stock
type TransferCommand struct {
	config TransferConfig
}

func NewTransferCommand(config TransferConfig) *TransferCommand {
	return &TransferCommand{config: config}
}

func (c *TransferCommand) Execute(ctx context.Context) error {
	if c.config.ItemCode == "" {
		return fmt.Errorf("validation error: -item is required")
	}
	qty, err := decimal.NewFromString(c.config.Quantity)
	if err != nil {
		return fmt.Errorf("validation error: invalid quantity %q", c.config.Quantity)
	}

	app, store, err := loadScenario(ctx, c.config.Config)
	if err != nil {
		return err
	}

	item, err := store.Items().GetItemByCode(ctx, c.config.ItemCode)
	if err != nil {
		return err
	}

	line := dto.TransferLineRequest{
		ItemID:          item.ID,
		Quantity:        qty,
		FromWarehouseID: c.config.FromWarehouseID,
		ToWarehouseID:   c.config.ToWarehouseID,
	}
	if c.config.LotNumber != "" {
		lot := c.config.LotNumber
		line.LotNumber = &lot
	}
	transfer, err := app.Transfers.Create(ctx, dto.CreateTransferRequest{
		FromDivisionID: c.config.FromDivisionID,
		ToDivisionID:   c.config.ToDivisionID,
		Notes:          "cli",
		Items:          []dto.TransferLineRequest{line},
	})
	if err != nil {
		return fmt.Errorf("error creating transfer: %w", err)
	}

	result, err := app.Transfers.Settle(ctx, transfer.ID)
	if err != nil {
		return fmt.Errorf("error settling transfer %s: %w", transfer.TransferNumber, err)
	}

	from, err := store.Sites().GetDivision(ctx, transfer.FromDivisionID)
	if err != nil {
		return err
	}
	to, err := store.Sites().GetDivision(ctx, transfer.ToDivisionID)
	if err != nil {
		return err
	}

	report := &output.SettlementReport{
		TransferNumber: transfer.TransferNumber,
		FromDivision:   from.Code,
		ToDivision:     to.Code,
		Status:         result.Status,
	}
	for _, l := range result.Lines {
		report.Lines = append(report.Lines, output.SettledLine{
			ItemCode:          item.Code,
			Quantity:          l.Quantity,
			SourceOnHand:      l.SourceOnHand,
			DestinationOnHand: l.DestinationOnHand,
		})
	}
	return output.Generate(report, c.config.output())
}
