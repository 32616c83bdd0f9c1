package pricing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vsinha/divmrp/pkg/application/dto"
	"github.com/vsinha/divmrp/pkg/domain/entities"
	"github.com/vsinha/divmrp/pkg/domain/repositories"
	"github.com/vsinha/divmrp/pkg/infrastructure/events"
	"github.com/vsinha/divmrp/pkg/infrastructure/logging"
)

var hundred = decimal.NewFromInt(100)

// Cache serves stored prices on the read path
type Cache interface {
	Get(ctx context.Context, itemID, scenarioID int64) (*entities.ItemPricing, bool, error)
	Set(ctx context.Context, pricing *entities.ItemPricing) error
}

// Calculator derives item prices from cost rows and a pricing scenario
type Calculator struct {
	store     repositories.Store
	tx        repositories.TxManager
	cache     Cache
	publisher events.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewCalculator creates a calculator. cache may be nil.
func NewCalculator(store repositories.Store, tx repositories.TxManager, cache Cache, publisher events.Publisher, logger *zap.Logger) *Calculator {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Calculator{
		store:     store,
		tx:        tx,
		cache:     cache,
		publisher: publisher,
		logger:    logging.OrNop(logger),
		now:       time.Now,
	}
}

// Breakdown applies the scenario percentages to a base cost: markup first, then the discount on
// the marked-up price
func Breakdown(baseCost decimal.Decimal, scenario *entities.PricingScenario) (markup, afterMarkup, discount, final decimal.Decimal) {
	markup = baseCost.Mul(scenario.MarkupPercentage).Div(hundred)
	afterMarkup = baseCost.Add(markup)
	discount = afterMarkup.Mul(scenario.DiscountPercentage).Div(hundred)
	final = afterMarkup.Sub(discount)
	return markup, afterMarkup, discount, final
}

// BaseCost sums the cost rows, skipping indirect overhead unless the scenario includes it.
// Amounts are added as they are; rows in other currencies are not converted.
func BaseCost(costs []*entities.ItemCost, includeIndirect bool) decimal.Decimal {
	total := decimal.Zero
	for _, c := range costs {
		if c.CostType != nil && c.CostType.Category == entities.CostIndirectOverhead && !includeIndirect {
			continue
		}
		total = total.Add(c.Amount)
	}
	return total
}

// Calculate prices the item under the scenario, stores the result as the item's pricing for that
// scenario and returns the full breakdown
func (c *Calculator) Calculate(ctx context.Context, req dto.CalculatePriceRequest) (*dto.PriceBreakdown, error) {
	const op = "pricing.calculate"

	if req.ItemID <= 0 || req.PricingScenarioID <= 0 {
		return nil, entities.Validationf(op, "item_id and pricing_scenario_id are required")
	}

	var (
		breakdown *dto.PriceBreakdown
		stored    *entities.ItemPricing
	)
	err := c.tx.WithTransaction(ctx, func(ctx context.Context, tx repositories.Store) error {
		if _, err := tx.Items().GetItem(ctx, req.ItemID); err != nil {
			return err
		}
		scenario, err := tx.Pricing().GetScenario(ctx, req.PricingScenarioID)
		if err != nil {
			return err
		}

		costs, err := tx.Pricing().ListItemCosts(ctx, req.ItemID)
		if err != nil {
			return err
		}
		if len(costs) == 0 {
			return entities.NewError(entities.KindNoCostsDefined, op, "no costs defined for item %d", req.ItemID)
		}

		currency, err := c.currency(ctx, tx, req.CurrencyID)
		if err != nil {
			return err
		}

		base := BaseCost(costs, scenario.IncludeIndirectCosts)
		markup, afterMarkup, discount, final := Breakdown(base, scenario)

		now := c.now().UTC()
		stored, err = tx.Pricing().GetItemPricing(ctx, req.ItemID, req.PricingScenarioID)
		if err != nil {
			return err
		}
		if stored == nil {
			stored = &entities.ItemPricing{ItemID: req.ItemID, PricingScenarioID: req.PricingScenarioID}
		}
		stored.CurrencyID = currency.ID
		stored.BaseCost = base
		stored.MarkupAmount = markup
		stored.DiscountAmount = discount
		stored.FinalPrice = final
		stored.EffectiveDate = now
		if err := tx.Pricing().SaveItemPricing(ctx, stored); err != nil {
			return err
		}

		breakdown = &dto.PriceBreakdown{
			ItemID:            req.ItemID,
			PricingScenarioID: req.PricingScenarioID,
			CurrencyID:        currency.ID,
			CurrencyCode:      currency.Code,
			BaseCost:          base,
			MarkupAmount:      markup,
			PriceAfterMarkup:  afterMarkup,
			DiscountAmount:    discount,
			FinalPrice:        final,
		}
		return nil
	})
	if err != nil {
		c.logger.Info("price calculation failed",
			zap.Int64("item_id", req.ItemID),
			zap.Int64("pricing_scenario_id", req.PricingScenarioID),
			zap.Error(err),
		)
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, stored); err != nil {
			c.logger.Warn("failed to cache price", zap.Int64("item_id", req.ItemID), zap.Error(err))
		}
	}

	c.logger.Info("price calculated",
		zap.Int64("item_id", req.ItemID),
		zap.Int64("pricing_scenario_id", req.PricingScenarioID),
		zap.String("final_price", breakdown.FinalPrice.String()),
	)
	events.Emit(ctx, c.publisher, c.logger, events.NewEvent(events.PricingCalculatedEvent, events.ItemStream(req.ItemID), events.PricingCalculated{
		ItemID:            req.ItemID,
		PricingScenarioID: req.PricingScenarioID,
		CurrencyID:        breakdown.CurrencyID,
		FinalPrice:        breakdown.FinalPrice,
	}))

	return breakdown, nil
}

// currency returns the requested currency, or the base currency when none was requested
func (c *Calculator) currency(ctx context.Context, tx repositories.Store, currencyID *int64) (*entities.Currency, error) {
	if currencyID != nil {
		return tx.Pricing().GetCurrency(ctx, *currencyID)
	}
	base, err := tx.Pricing().GetBaseCurrency(ctx)
	if err != nil {
		return nil, err
	}
	if base == nil {
		return nil, entities.NewError(entities.KindNoBaseCurrency, "pricing.currency", "no base currency configured")
	}
	return base, nil
}

// GetPricing returns the stored price of the pair, from the cache when possible
func (c *Calculator) GetPricing(ctx context.Context, itemID, scenarioID int64) (*entities.ItemPricing, error) {
	if c.cache != nil {
		cached, ok, err := c.cache.Get(ctx, itemID, scenarioID)
		if err != nil {
			c.logger.Warn("pricing cache read failed", zap.Error(err))
		}
		if ok {
			return cached, nil
		}
	}

	pricing, err := c.store.Pricing().GetItemPricing(ctx, itemID, scenarioID)
	if err != nil {
		return nil, err
	}
	if pricing == nil {
		return nil, entities.NotFoundf("pricing.get", "no pricing for item %d in scenario %d", itemID, scenarioID)
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, pricing); err != nil {
			c.logger.Warn("failed to cache price", zap.Int64("item_id", itemID), zap.Error(err))
		}
	}
	return pricing, nil
}
