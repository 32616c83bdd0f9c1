package httpapi

import (
	"github.com/gin-gonic/gin"

	"github.com/vsinha/divmrp/pkg/application/dto"
	"github.com/vsinha/divmrp/pkg/application/services/pricing"
)

type PricingHandler struct {
	svc *pricing.Calculator
}

// Calculate prices an item and stores the result
func (h *PricingHandler) Calculate(c *gin.Context) {
	var req dto.CalculatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	breakdown, err := h.svc.Calculate(c.Request.Context(), req)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, breakdown)
}

func (h *PricingHandler) Get(c *gin.Context) {
	itemID, ok := int64Query(c, "item_id")
	if !ok {
		return
	}
	scenarioID, ok := int64Query(c, "pricing_scenario_id")
	if !ok {
		return
	}
	if itemID == 0 || scenarioID == 0 {
		BadRequest(c, "item_id and pricing_scenario_id are required")
		return
	}

	p, err := h.svc.GetPricing(c.Request.Context(), itemID, scenarioID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, p)
}
