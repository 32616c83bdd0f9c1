package httpapi

import (
	"github.com/gin-gonic/gin"

	"github.com/vsinha/divmrp/pkg/application/dto"
	"github.com/vsinha/divmrp/pkg/application/services/manufacturing"
	"github.com/vsinha/divmrp/pkg/domain/entities"
)

type ManufacturingHandler struct {
	svc *manufacturing.Service
}

// Create explodes the BOM and stores a new order with its materials
func (h *ManufacturingHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	order, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, order)
}

func (h *ManufacturingHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	order, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, order)
}

func (h *ManufacturingHandler) UpdateStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	order, err := h.svc.UpdateStatus(c.Request.Context(), id, entities.OrderStatus(req.Status))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, order)
}

func (h *ManufacturingHandler) Issue(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	order, err := h.svc.IssueMaterials(c.Request.Context(), id)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, order)
}

func (h *ManufacturingHandler) ReturnMaterial(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	materialID, ok := idParam(c, "materialId")
	if !ok {
		return
	}
	var req dto.ReturnMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	order, err := h.svc.ReturnMaterial(c.Request.Context(), id, materialID, req.Quantity)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, order)
}
