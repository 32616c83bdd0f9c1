package memory

import (
	"context"
	"sort"

	"github.com/vsinha/divmrp/pkg/domain/entities"
)

type pricingRepository struct {
	*view
}

func (r *pricingRepository) GetScenario(_ context.Context, id int64) (*entities.PricingScenario, error) {
	var out *entities.PricingScenario
	err := r.access.read(func(s *state) error {
		sc, ok := s.scenarios[id]
		if !ok {
			return entities.NotFoundf("get pricing scenario", "pricing scenario %d not found", id)
		}
		out = copyScenario(sc)
		return nil
	})
	return out, err
}

func (r *pricingRepository) GetCurrency(_ context.Context, id int64) (*entities.Currency, error) {
	var out *entities.Currency
	err := r.access.read(func(s *state) error {
		c, ok := s.currencies[id]
		if !ok {
			return entities.NotFoundf("get currency", "currency %d not found", id)
		}
		out = copyCurrency(c)
		return nil
	})
	return out, err
}

func (r *pricingRepository) GetBaseCurrency(_ context.Context) (*entities.Currency, error) {
	var out *entities.Currency
	err := r.access.read(func(s *state) error {
		for _, c := range s.currencies {
			if c.IsBaseCurrency && (out == nil || c.ID < out.ID) {
				out = copyCurrency(c)
			}
		}
		return nil
	})
	return out, err
}

func (r *pricingRepository) ListItemCosts(_ context.Context, itemID int64) ([]*entities.ItemCost, error) {
	var out []*entities.ItemCost
	err := r.access.read(func(s *state) error {
		for _, cost := range s.itemCosts {
			if cost.ItemID != itemID {
				continue
			}
			c := copyItemCost(cost)
			if ct, ok := s.costTypes[c.CostTypeID]; ok {
				c.CostType = copyCostType(ct)
			}
			out = append(out, c)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r *pricingRepository) GetItemPricing(_ context.Context, itemID, scenarioID int64) (*entities.ItemPricing, error) {
	var out *entities.ItemPricing
	err := r.access.read(func(s *state) error {
		if p := findPricing(s, itemID, scenarioID); p != nil {
			out = copyPricing(p)
		}
		return nil
	})
	return out, err
}

// SaveItemPricing upserts on the (item, scenario) pair
func (r *pricingRepository) SaveItemPricing(_ context.Context, pricing *entities.ItemPricing) error {
	return r.access.write(func(s *state) error {
		if existing := findPricing(s, pricing.ItemID, pricing.PricingScenarioID); existing != nil {
			pricing.ID = existing.ID
		} else {
			pricing.ID = s.nextID("item_pricings", 0)
		}
		pricing.UpdatedAt = r.now()
		s.pricings[pricing.ID] = copyPricing(pricing)
		return nil
	})
}

func findPricing(s *state, itemID, scenarioID int64) *entities.ItemPricing {
	for _, p := range s.pricings {
		if p.ItemID == itemID && p.PricingScenarioID == scenarioID {
			return p
		}
	}
	return nil
}

func (r *pricingRepository) SaveScenario(_ context.Context, scenario *entities.PricingScenario) error {
	return r.access.write(func(s *state) error {
		if _, ok := s.scenarios[scenario.ID]; !ok {
			scenario.ID = s.nextID("pricing_scenarios", scenario.ID)
		}
		s.scenarios[scenario.ID] = copyScenario(scenario)
		return nil
	})
}

func (r *pricingRepository) SaveCurrency(_ context.Context, currency *entities.Currency) error {
	return r.access.write(func(s *state) error {
		if _, ok := s.currencies[currency.ID]; !ok {
			currency.ID = s.nextID("currencies", currency.ID)
		}
		s.currencies[currency.ID] = copyCurrency(currency)
		return nil
	})
}

func (r *pricingRepository) SaveCostType(_ context.Context, costType *entities.CostType) error {
	return r.access.write(func(s *state) error {
		if !costType.Category.Valid() {
			return entities.Validationf("save cost type", "unknown cost category %q", costType.Category)
		}
		if _, ok := s.costTypes[costType.ID]; !ok {
			costType.ID = s.nextID("cost_types", costType.ID)
		}
		s.costTypes[costType.ID] = copyCostType(costType)
		return nil
	})
}

func (r *pricingRepository) SaveItemCost(_ context.Context, cost *entities.ItemCost) error {
	return r.access.write(func(s *state) error {
		if _, ok := s.costTypes[cost.CostTypeID]; !ok {
			return entities.NotFoundf("save item cost", "cost type %d not found", cost.CostTypeID)
		}
		if _, ok := s.itemCosts[cost.ID]; !ok {
			cost.ID = s.nextID("item_costs", cost.ID)
		}
		s.itemCosts[cost.ID] = copyItemCost(cost)
		return nil
	})
}
