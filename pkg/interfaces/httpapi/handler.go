package httpapi

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/vsinha/divmrp/pkg/application/services/orchestration"
)

// Handlers groups the route handlers
type Handlers struct {
	Manufacturing *ManufacturingHandler
	Transfer      *TransferHandler
	Pricing       *PricingHandler
	BOM           *BOMHandler
	Inventory     *InventoryHandler
}

func NewHandlers(app *orchestration.Application) *Handlers {
	return &Handlers{
		Manufacturing: &ManufacturingHandler{svc: app.Manufacturing},
		Transfer:      &TransferHandler{svc: app.Transfers},
		Pricing:       &PricingHandler{svc: app.Pricing},
		BOM:           &BOMHandler{svc: app.BOMs, exploder: app.Exploder},
		Inventory:     &InventoryHandler{ledger: app.Ledger, stock: app.Stock},
	}
}

// idParam reads a positive numeric path parameter, writing a 400 when it is malformed
func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		BadRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}

// int64Query reads an optional numeric query parameter; absent means zero
func int64Query(c *gin.Context, name string) (int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		BadRequest(c, "invalid "+name)
		return 0, false
	}
	return v, true
}

func decimalQuery(c *gin.Context, name, fallback string) (decimal.Decimal, bool) {
	v, err := decimal.NewFromString(c.DefaultQuery(name, fallback))
	if err != nil {
		BadRequest(c, "invalid "+name)
		return decimal.Zero, false
	}
	return v, true
}
