package pricing

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vsinha/divmrp/pkg/application/dto"
	"github.com/vsinha/divmrp/pkg/domain/entities"
	"github.com/vsinha/divmrp/pkg/infrastructure/events"
	testhelpers "github.com/vsinha/divmrp/pkg/infrastructure/testing"
)

type mapCache struct {
	entries map[[2]int64]*entities.ItemPricing
	hits    int
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[[2]int64]*entities.ItemPricing)}
}

func (c *mapCache) Get(_ context.Context, itemID, scenarioID int64) (*entities.ItemPricing, bool, error) {
	p, ok := c.entries[[2]int64{itemID, scenarioID}]
	if ok {
		c.hits++
	}
	return p, ok, nil
}

func (c *mapCache) Set(_ context.Context, p *entities.ItemPricing) error {
	c.entries[[2]int64{p.ItemID, p.PricingScenarioID}] = p
	return nil
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestBreakdown(t *testing.T) {
	tests := []struct {
		name                               string
		base, markupPct, discountPct       string
		markup, afterMarkup, discount, fin string
	}{
		{"reference", "100", "20", "10", "20", "120", "12", "108"},
		{"no_percentages", "55.5", "0", "0", "0", "55.5", "0", "55.5"},
		{"full_discount", "10", "0", "100", "0", "10", "10", "0"},
		{"fractional", "12.34", "12.5", "2.5", "1.5425", "13.8825", "0.3470625", "13.5354375"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scenario := &entities.PricingScenario{MarkupPercentage: dec(tt.markupPct), DiscountPercentage: dec(tt.discountPct)}
			markup, afterMarkup, discount, final := Breakdown(dec(tt.base), scenario)

			for _, c := range []struct {
				field    string
				got      decimal.Decimal
				expected string
			}{
				{"markup", markup, tt.markup},
				{"after markup", afterMarkup, tt.afterMarkup},
				{"discount", discount, tt.discount},
				{"final", final, tt.fin},
			} {
				if !c.got.Equal(dec(c.expected)) {
					t.Errorf("Expected %s %s, got %s", c.field, c.expected, c.got)
				}
			}
		})
	}
}

func TestBreakdown_Monotonic(t *testing.T) {
	base := dec("250")
	price := func(markup, discount string) decimal.Decimal {
		_, _, _, final := Breakdown(base, &entities.PricingScenario{MarkupPercentage: dec(markup), DiscountPercentage: dec(discount)})
		return final
	}

	percentages := []string{"0", "5", "12.5", "20", "50", "99"}
	for i := 1; i < len(percentages); i++ {
		lo, hi := percentages[i-1], percentages[i]
		if !price(hi, "10").GreaterThan(price(lo, "10")) {
			t.Errorf("Expected markup %s to price above markup %s", hi, lo)
		}
		if !price("20", hi).LessThan(price("20", lo)) {
			t.Errorf("Expected discount %s to price below discount %s", hi, lo)
		}
	}
}

func TestBaseCost(t *testing.T) {
	material := &entities.CostType{Category: entities.CostMaterial}
	indirect := &entities.CostType{Category: entities.CostIndirectOverhead}
	costs := []*entities.ItemCost{
		{Amount: dec("60"), CostType: material},
		{Amount: dec("10"), CostType: indirect},
		{Amount: dec("0.25"), CostType: material},
	}

	if got := BaseCost(costs, true); !got.Equal(dec("70.25")) {
		t.Errorf("Expected 70.25 with indirect costs, got %s", got)
	}
	if got := BaseCost(costs, false); !got.Equal(dec("60.25")) {
		t.Errorf("Expected 60.25 without indirect costs, got %s", got)
	}
	if got := BaseCost(nil, true); !got.IsZero() {
		t.Errorf("Expected zero for no costs, got %s", got)
	}
}

func TestCalculator_Calculate(t *testing.T) {
	f := testhelpers.BuildTextileScenario()
	cache := newMapCache()
	calc := NewCalculator(f.Store, f.Store, cache, f.Events, nil)
	ctx := context.Background()

	standard, err := calc.Calculate(ctx, dto.CalculatePriceRequest{ItemID: f.Shirt.ID, PricingScenarioID: f.Standard.ID})
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	if !standard.BaseCost.Equal(dec("100")) || !standard.FinalPrice.Equal(dec("108")) {
		t.Errorf("Expected 100 -> 108, got %s -> %s", standard.BaseCost, standard.FinalPrice)
	}
	if !standard.PriceAfterMarkup.Equal(dec("120")) || !standard.DiscountAmount.Equal(dec("12")) {
		t.Errorf("Unexpected breakdown %+v", standard)
	}
	if standard.CurrencyID != f.USD.ID || standard.CurrencyCode != "USD" {
		t.Errorf("Expected base currency USD, got %s", standard.CurrencyCode)
	}

	lean, err := calc.Calculate(ctx, dto.CalculatePriceRequest{ItemID: f.Shirt.ID, PricingScenarioID: f.Lean.ID})
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	if !lean.BaseCost.Equal(dec("90")) || !lean.FinalPrice.Equal(dec("97.2")) {
		t.Errorf("Expected 90 -> 97.2 without indirect costs, got %s -> %s", lean.BaseCost, lean.FinalPrice)
	}
	if lean.FinalPrice.GreaterThan(standard.FinalPrice) {
		t.Error("Expected excluding indirect costs to never raise the price")
	}

	eur := f.EUR.ID
	inEUR, err := calc.Calculate(ctx, dto.CalculatePriceRequest{ItemID: f.Shirt.ID, PricingScenarioID: f.Standard.ID, CurrencyID: &eur})
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	if inEUR.CurrencyCode != "EUR" || !inEUR.FinalPrice.Equal(dec("108")) {
		t.Errorf("Expected the same amounts labelled EUR, got %s %s", inEUR.FinalPrice, inEUR.CurrencyCode)
	}

	if got := f.Store.ItemPricingCount(); got != 2 {
		t.Errorf("Expected one stored price per (item, scenario), got %d", got)
	}
	stored, err := f.Store.Pricing().GetItemPricing(ctx, f.Shirt.ID, f.Standard.ID)
	if err != nil || stored == nil {
		t.Fatalf("Expected stored pricing, got %v", err)
	}
	if stored.CurrencyID != f.EUR.ID || !stored.FinalPrice.Equal(dec("108")) || stored.EffectiveDate.IsZero() {
		t.Errorf("Expected last calculation to win, got %+v", stored)
	}
	if got := f.Events.EventsOfType(events.PricingCalculatedEvent); len(got) != 3 {
		t.Errorf("Expected 3 pricing events, got %d", len(got))
	}
}

func TestCalculator_CalculateIsIdempotent(t *testing.T) {
	f := testhelpers.BuildTextileScenario()
	calc := NewCalculator(f.Store, f.Store, nil, nil, nil)
	ctx := context.Background()
	req := dto.CalculatePriceRequest{ItemID: f.Shirt.ID, PricingScenarioID: f.Standard.ID}

	first, err := calc.Calculate(ctx, req)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	second, err := calc.Calculate(ctx, req)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}

	if !first.FinalPrice.Equal(second.FinalPrice) {
		t.Errorf("Expected identical prices, got %s and %s", first.FinalPrice, second.FinalPrice)
	}
	if got := f.Store.ItemPricingCount(); got != 1 {
		t.Errorf("Expected a single upserted row, got %d", got)
	}
}

func TestCalculator_Errors(t *testing.T) {
	f := testhelpers.BuildTextileScenario()
	calc := NewCalculator(f.Store, f.Store, nil, nil, nil)
	unknownCurrency := int64(99)

	tests := []struct {
		name    string
		req     dto.CalculatePriceRequest
		wantErr error
	}{
		{"missing_ids", dto.CalculatePriceRequest{}, entities.ErrValidation},
		{"unknown_item", dto.CalculatePriceRequest{ItemID: 99, PricingScenarioID: f.Standard.ID}, entities.ErrNotFound},
		{"unknown_scenario", dto.CalculatePriceRequest{ItemID: f.Shirt.ID, PricingScenarioID: 99}, entities.ErrNotFound},
		{"no_costs", dto.CalculatePriceRequest{ItemID: f.Button.ID, PricingScenarioID: f.Standard.ID}, entities.ErrNoCostsDefined},
		{"unknown_currency", dto.CalculatePriceRequest{ItemID: f.Shirt.ID, PricingScenarioID: f.Standard.ID, CurrencyID: &unknownCurrency}, entities.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := calc.Calculate(context.Background(), tt.req); !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
	if got := f.Store.ItemPricingCount(); got != 0 {
		t.Errorf("Expected failed calculations to store nothing, got %d", got)
	}
}

func TestCalculator_NoBaseCurrency(t *testing.T) {
	f := testhelpers.BuildTextileScenario()
	ctx := context.Background()
	f.USD.IsBaseCurrency = false
	if err := f.Store.Pricing().SaveCurrency(ctx, f.USD); err != nil {
		t.Fatalf("SaveCurrency failed: %v", err)
	}

	calc := NewCalculator(f.Store, f.Store, nil, nil, nil)
	_, err := calc.Calculate(ctx, dto.CalculatePriceRequest{ItemID: f.Shirt.ID, PricingScenarioID: f.Standard.ID})
	if !errors.Is(err, entities.ErrNoBaseCurrency) {
		t.Errorf("Expected NoBaseCurrency, got %v", err)
	}
}

func TestCalculator_GetPricing(t *testing.T) {
	f := testhelpers.BuildTextileScenario()
	cache := newMapCache()
	calc := NewCalculator(f.Store, f.Store, cache, nil, nil)
	ctx := context.Background()

	if _, err := calc.GetPricing(ctx, f.Shirt.ID, f.Standard.ID); !errors.Is(err, entities.ErrNotFound) {
		t.Fatalf("Expected NotFound before any calculation, got %v", err)
	}

	if _, err := calc.Calculate(ctx, dto.CalculatePriceRequest{ItemID: f.Shirt.ID, PricingScenarioID: f.Standard.ID}); err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	got, err := calc.GetPricing(ctx, f.Shirt.ID, f.Standard.ID)
	if err != nil {
		t.Fatalf("GetPricing failed: %v", err)
	}
	if !got.FinalPrice.Equal(dec("108")) {
		t.Errorf("Expected 108, got %s", got.FinalPrice)
	}
	if cache.hits != 1 {
		t.Errorf("Expected the read to be served by the cache, got %d hits", cache.hits)
	}

	delete(cache.entries, [2]int64{f.Shirt.ID, f.Standard.ID})
	if _, err := calc.GetPricing(ctx, f.Shirt.ID, f.Standard.ID); err != nil {
		t.Fatalf("GetPricing failed after eviction: %v", err)
	}
	if _, ok := cache.entries[[2]int64{f.Shirt.ID, f.Standard.ID}]; !ok {
		t.Error("Expected a store read to refill the cache")
	}
}
