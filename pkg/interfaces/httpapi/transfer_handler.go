package httpapi

import (
	"github.com/gin-gonic/gin"

	"github.com/vsinha/divmrp/pkg/application/dto"
	"github.com/vsinha/divmrp/pkg/application/services/transfer"
)

type TransferHandler struct {
	svc *transfer.Service
}

func (h *TransferHandler) Create(c *gin.Context) {
	var req dto.CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	t, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, t)
}

func (h *TransferHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	t, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, t)
}

// Process settles a draft transfer; any failing line leaves the ledger untouched
func (h *TransferHandler) Process(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	result, err := h.svc.Settle(c.Request.Context(), id)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, result)
}

func (h *TransferHandler) Cancel(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	t, err := h.svc.Cancel(c.Request.Context(), id)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, t)
}
