package httpapi

import (
	"github.com/gin-gonic/gin"

	"github.com/vsinha/divmrp/pkg/application/dto"
	"github.com/vsinha/divmrp/pkg/application/services/bom"
	"github.com/vsinha/divmrp/pkg/application/services/mrp"
)

type BOMHandler struct {
	svc      *bom.Service
	exploder *mrp.Exploder
}

func (h *BOMHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	b, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, b)
}

// Explosion returns the flat requirements of the BOM for ?quantity= (default 1)
func (h *BOMHandler) Explosion(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	qty, ok := decimalQuery(c, "quantity", "1")
	if !ok {
		return
	}

	result, err := h.exploder.ExplodeByID(c.Request.Context(), id, qty)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, result)
}

func (h *BOMHandler) AddComponent(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req dto.AddComponentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	component, err := h.svc.AddComponent(c.Request.Context(), id, req)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, component)
}

func (h *BOMHandler) RemoveComponent(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	componentID, ok := idParam(c, "componentId")
	if !ok {
		return
	}
	if err := h.svc.RemoveComponent(c.Request.Context(), id, componentID); err != nil {
		Fail(c, err)
		return
	}
	Success(c, nil)
}

func (h *BOMHandler) Activate(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	b, err := h.svc.Activate(c.Request.Context(), id)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, b)
}

func (h *BOMHandler) Obsolete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	b, err := h.svc.Obsolete(c.Request.Context(), id)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, b)
}
