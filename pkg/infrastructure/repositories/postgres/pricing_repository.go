package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vsinha/divmrp/pkg/domain/entities"
)

type pricingRepository struct {
	*Store
}

func (r *pricingRepository) GetScenario(ctx context.Context, id int64) (*entities.PricingScenario, error) {
	var scenario entities.PricingScenario
	if err := first(r.conn(ctx), &scenario, id, "get pricing scenario", "pricing scenario"); err != nil {
		return nil, err
	}
	return &scenario, nil
}

func (r *pricingRepository) GetCurrency(ctx context.Context, id int64) (*entities.Currency, error) {
	var currency entities.Currency
	if err := first(r.conn(ctx), &currency, id, "get currency", "currency"); err != nil {
		return nil, err
	}
	return &currency, nil
}

func (r *pricingRepository) GetBaseCurrency(ctx context.Context) (*entities.Currency, error) {
	var currency entities.Currency
	err := r.conn(ctx).Where("is_base_currency = ?", true).Order("id").Take(&currency).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &currency, nil
}

func (r *pricingRepository) ListItemCosts(ctx context.Context, itemID int64) ([]*entities.ItemCost, error) {
	var costs []*entities.ItemCost
	err := r.conn(ctx).Preload("CostType").Where("item_id = ?", itemID).Order("id").Find(&costs).Error
	return costs, err
}

func (r *pricingRepository) GetItemPricing(ctx context.Context, itemID, scenarioID int64) (*entities.ItemPricing, error) {
	var pricing entities.ItemPricing
	err := r.locking(ctx).
		Where("item_id = ? AND pricing_scenario_id = ?", itemID, scenarioID).
		Take(&pricing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pricing, nil
}

// SaveItemPricing upserts on (item_id, pricing_scenario_id)
func (r *pricingRepository) SaveItemPricing(ctx context.Context, pricing *entities.ItemPricing) error {
	return r.conn(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "item_id"}, {Name: "pricing_scenario_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"currency_id", "base_cost", "markup_amount", "discount_amount", "final_price", "effective_date", "updated_at",
		}),
	}).Create(pricing).Error
}

func (r *pricingRepository) SaveScenario(ctx context.Context, scenario *entities.PricingScenario) error {
	return translate(r.conn(ctx).Save(scenario).Error, "save pricing scenario")
}

func (r *pricingRepository) SaveCurrency(ctx context.Context, currency *entities.Currency) error {
	return translate(r.conn(ctx).Save(currency).Error, "save currency")
}

func (r *pricingRepository) SaveCostType(ctx context.Context, costType *entities.CostType) error {
	if !costType.Category.Valid() {
		return entities.Validationf("save cost type", "unknown cost category %q", costType.Category)
	}
	return translate(r.conn(ctx).Save(costType).Error, "save cost type")
}

func (r *pricingRepository) SaveItemCost(ctx context.Context, cost *entities.ItemCost) error {
	return translate(r.conn(ctx).Omit("CostType").Save(cost).Error, "save item cost")
}
