package dto

import "github.com/shopspring/decimal"

type CalculatePriceRequest struct {
	ItemID            int64  `json:"item_id" binding:"required"`
	PricingScenarioID int64  `json:"pricing_scenario_id" binding:"required"`
	CurrencyID        *int64 `json:"currency_id"`
}

// PriceBreakdown is the full result of one price calculation
type PriceBreakdown struct {
	ItemID            int64           `json:"item_id"`
	PricingScenarioID int64           `json:"pricing_scenario_id"`
	CurrencyID        int64           `json:"currency_id"`
	CurrencyCode      string          `json:"currency_code"`
	BaseCost          decimal.Decimal `json:"base_cost"`
	MarkupAmount      decimal.Decimal `json:"markup_amount"`
	PriceAfterMarkup  decimal.Decimal `json:"price_after_markup"`
	DiscountAmount    decimal.Decimal `json:"discount_amount"`
	FinalPrice        decimal.Decimal `json:"final_price"`
}
