package commands

import (
	"context"
	"fmt"

	"github.com/vsinha/divmrp/pkg/application/dto"
	"github.com/vsinha/divmrp/pkg/interfaces/cli/output"
)

// PriceConfig selects the item and scenario to price. CurrencyID 0 uses the base currency.
type PriceConfig struct {
	Config
	ItemCode   string
	ScenarioID int64
	CurrencyID int64
}

// PriceCommand calculates the price of an item under a pricing scenario
type PriceCommand struct {
	config PriceConfig
}

func NewPriceCommand(config PriceConfig) *PriceCommand {
	return &PriceCommand{config: config}
}

func (c *PriceCommand) Execute(ctx context.Context) error {
	if c.config.ItemCode == "" || c.config.ScenarioID <= 0 {
		return fmt.Errorf("validation error: -item and -pricing-scenario are required")
	}

	app, store, err := loadScenario(ctx, c.config.Config)
	if err != nil {
		return err
	}

	item, err := store.Items().GetItemByCode(ctx, c.config.ItemCode)
	if err != nil {
		return err
	}
	scenario, err := store.Pricing().GetScenario(ctx, c.config.ScenarioID)
	if err != nil {
		return err
	}

	req := dto.CalculatePriceRequest{ItemID: item.ID, PricingScenarioID: scenario.ID}
	if c.config.CurrencyID > 0 {
		id := c.config.CurrencyID
		req.CurrencyID = &id
	}
	breakdown, err := app.Pricing.Calculate(ctx, req)
	if err != nil {
		return fmt.Errorf("error calculating price: %w", err)
	}

	return output.Generate(&output.PriceReport{
		ItemCode:         item.Code,
		ScenarioName:     scenario.Name,
		CurrencyCode:     breakdown.CurrencyCode,
		BaseCost:         breakdown.BaseCost,
		MarkupAmount:     breakdown.MarkupAmount,
		PriceAfterMarkup: breakdown.PriceAfterMarkup,
		DiscountAmount:   breakdown.DiscountAmount,
		FinalPrice:       breakdown.FinalPrice,
	}, c.config.output())
}
