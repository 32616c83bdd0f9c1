package httpapi

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vsinha/divmrp/pkg/application/dto"
	"github.com/vsinha/divmrp/pkg/application/services/ledger"
	"github.com/vsinha/divmrp/pkg/domain/repositories"
)

type InventoryHandler struct {
	ledger *ledger.Ledger
	stock  repositories.StockReader
}

// Adjust books a signed manual correction
func (h *InventoryHandler) Adjust(c *gin.Context) {
	var req dto.AdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	record, err := h.ledger.Adjust(c.Request.Context(), req)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, record)
}

// List serves the paged stock report
func (h *InventoryHandler) List(c *gin.Context) {
	if h.stock == nil {
		Error(c, CodeInternal, "stock report is not configured")
		return
	}
	var filter repositories.StockFilter
	var ok bool
	if filter.DivisionID, ok = int64Query(c, "division_id"); !ok {
		return
	}
	if filter.WarehouseID, ok = int64Query(c, "warehouse_id"); !ok {
		return
	}
	if filter.ItemID, ok = int64Query(c, "item_id"); !ok {
		return
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.Size, _ = strconv.Atoi(c.DefaultQuery("size", "50"))

	page, err := h.stock.StockLevels(c.Request.Context(), filter)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, page)
}

// Movements lists the ledger journal of ?item_id=
func (h *InventoryHandler) Movements(c *gin.Context) {
	itemID, ok := int64Query(c, "item_id")
	if !ok {
		return
	}
	if itemID == 0 {
		BadRequest(c, "item_id is required")
		return
	}

	movements, err := h.ledger.Movements(c.Request.Context(), itemID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, movements)
}
