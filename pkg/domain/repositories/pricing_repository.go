package repositories

import (
	"context"

	"github.com/vsinha/divmrp/pkg/domain/entities"
)

// PricingRepository provides access to costs, scenarios, currencies and calculated prices.
// GetBaseCurrency and GetItemPricing return (nil, nil) when nothing matches.
type PricingRepository interface {
	GetScenario(ctx context.Context, id int64) (*entities.PricingScenario, error)
	GetCurrency(ctx context.Context, id int64) (*entities.Currency, error)
	GetBaseCurrency(ctx context.Context) (*entities.Currency, error)
	ListItemCosts(ctx context.Context, itemID int64) ([]*entities.ItemCost, error)
	GetItemPricing(ctx context.Context, itemID, scenarioID int64) (*entities.ItemPricing, error)
	SaveItemPricing(ctx context.Context, pricing *entities.ItemPricing) error

	SaveScenario(ctx context.Context, scenario *entities.PricingScenario) error
	SaveCurrency(ctx context.Context, currency *entities.Currency) error
	SaveCostType(ctx context.Context, costType *entities.CostType) error
	SaveItemCost(ctx context.Context, cost *entities.ItemCost) error
}
