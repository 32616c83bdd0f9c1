package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// CostCategory groups cost types for pricing
type CostCategory string

const (
	CostMaterial         CostCategory = "material"
	CostLabor            CostCategory = "labor"
	CostDirectOverhead   CostCategory = "direct_overhead"
	CostIndirectOverhead CostCategory = "indirect_overhead"
)

// Valid reports whether c is a known category
func (c CostCategory) Valid() bool {
	switch c {
	case CostMaterial, CostLabor, CostDirectOverhead, CostIndirectOverhead:
		return true
	}
	return false
}

type Currency struct {
	ID             int64  `json:"id" gorm:"primaryKey"`
	Code           string `json:"code" gorm:"size:3;uniqueIndex;not null"`
	Name           string `json:"name" gorm:"size:64"`
	IsBaseCurrency bool   `json:"is_base_currency" gorm:"not null;default:false"`
}

func (Currency) TableName() string {
	return "currencies"
}

type CostType struct {
	ID       int64        `json:"id" gorm:"primaryKey"`
	Name     string       `json:"name" gorm:"size:64;not null"`
	Category CostCategory `json:"category" gorm:"size:32;not null"`
}

func (CostType) TableName() string {
	return "cost_types"
}

// ItemCost is one cost contribution of an item. Amounts are summed without currency conversion.
type ItemCost struct {
	ID            int64           `json:"id" gorm:"primaryKey"`
	ItemID        int64           `json:"item_id" gorm:"not null;index"`
	CostTypeID    int64           `json:"cost_type_id" gorm:"not null"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:numeric(18,4);not null"`
	CurrencyID    int64           `json:"currency_id" gorm:"not null"`
	EffectiveDate time.Time       `json:"effective_date"`

	CostType *CostType `json:"cost_type,omitempty" gorm:"foreignKey:CostTypeID"`
}

func (ItemCost) TableName() string {
	return "item_costs"
}

type PricingScenario struct {
	ID                   int64           `json:"id" gorm:"primaryKey"`
	Name                 string          `json:"name" gorm:"size:128;not null"`
	MarkupPercentage     decimal.Decimal `json:"markup_percentage" gorm:"type:numeric(9,4);not null;default:0"`
	DiscountPercentage   decimal.Decimal `json:"discount_percentage" gorm:"type:numeric(9,4);not null;default:0"`
	IncludeIndirectCosts bool            `json:"include_indirect_costs" gorm:"not null;default:false"`
	Status               string          `json:"status" gorm:"size:16;not null;default:active"`
}

func (PricingScenario) TableName() string {
	return "pricing_scenarios"
}

// ItemPricing is the stored result of the last price calculation for an (item, scenario) pair
type ItemPricing struct {
	ID                int64           `json:"id" gorm:"primaryKey"`
	ItemID            int64           `json:"item_id" gorm:"not null"`
	PricingScenarioID int64           `json:"pricing_scenario_id" gorm:"not null"`
	CurrencyID        int64           `json:"currency_id" gorm:"not null"`
	BaseCost          decimal.Decimal `json:"base_cost" gorm:"type:numeric(18,4);not null"`
	MarkupAmount      decimal.Decimal `json:"markup_amount" gorm:"type:numeric(18,4);not null"`
	DiscountAmount    decimal.Decimal `json:"discount_amount" gorm:"type:numeric(18,4);not null"`
	FinalPrice        decimal.Decimal `json:"final_price" gorm:"type:numeric(18,4);not null"`
	EffectiveDate     time.Time       `json:"effective_date"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func (ItemPricing) TableName() string {
	return "item_pricings"
}
