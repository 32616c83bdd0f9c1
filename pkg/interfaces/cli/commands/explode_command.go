package commands

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vsinha/divmrp/pkg/interfaces/cli/output"
)

// ExplodeConfig selects the item to explode. DivisionID 0 considers the BOMs of every division.
type ExplodeConfig struct {
	Config
	ItemCode   string
	DivisionID int64
	Quantity   string
}

// ExplodeCommand previews the material requirements of the latest active BOM of an item
type ExplodeCommand struct {
	config ExplodeConfig
}

func NewExplodeCommand(config ExplodeConfig) *ExplodeCommand {
	return &ExplodeCommand{config: config}
}

func (c *ExplodeCommand) Execute(ctx context.Context) error {
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
	boms, err := store.BOMs().ListBOMsByItem(ctx, item.ID)
	if err != nil {
		return err
	}
	if c.config.DivisionID != 0 {
		filtered := boms[:0]
		for _, b := range boms {
			if b.DivisionID == c.config.DivisionID {
				filtered = append(filtered, b)
			}
		}
		boms = filtered
	}
	bom := app.Manufacturing.LatestActive(boms)
	if bom == nil {
		return fmt.Errorf("item %s has no active BOM", item.Code)
	}

	result, err := app.Exploder.ExplodeByID(ctx, bom.ID, qty)
	if err != nil {
		return fmt.Errorf("error exploding BOM %d: %w", bom.ID, err)
	}

	report := &output.ExplosionReport{
		ItemCode:     item.Code,
		DivisionID:   bom.DivisionID,
		BomID:        bom.ID,
		BomVersion:   bom.Version,
		Revision:     bom.Revision,
		Quantity:     qty,
		Requirements: make([]output.RequirementLine, 0, len(result.Requirements)),
	}
	for _, r := range result.Requirements {
		component, err := store.Items().GetItem(ctx, r.ComponentItemID)
		if err != nil {
			return err
		}
		report.Requirements = append(report.Requirements, output.RequirementLine{
			ItemCode:        component.Code,
			ItemName:        component.Name,
			PlannedQuantity: r.PlannedQuantity,
			UomID:           r.UomID,
			LevelNumber:     r.LevelNumber,
			Position:        r.Position,
		})
	}

	return output.Generate(report, c.config.output())
}
