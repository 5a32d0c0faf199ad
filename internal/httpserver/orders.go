package httpserver

import (
	"fmt"
	"net/http"

	"wheeldeal/internal/notify"
	ordersvc "wheeldeal/internal/service/order"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (h *handlers) orderCreate(c *gin.Context) {
	var in ordersvc.CustomerInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.writeJSON(c, http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	o, err := h.deps.OrderSvc.Create(c.Request.Context(), h.cartFor(c), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	sessionFrom(c).Set(sessionOrderNoKey, o.OrderNo)
	h.writeJSON(c, http.StatusCreated, toOrderResponse(*o, h.cfg.StripeTestMode))
}

func (h *handlers) orderDetail(c *gin.Context) {
	o, err := h.deps.OrderSvc.GetByOrderNo(c.Request.Context(), c.Param("orderNo"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.writeJSON(c, http.StatusOK, toOrderResponse(*o, h.cfg.StripeTestMode))
}

func (h *handlers) orderInvoice(c *gin.Context) {
	if h.deps.Invoices == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "invoice rendering is not configured"})
		return
	}
	ctx := c.Request.Context()
	o, err := h.deps.OrderSvc.GetByOrderNo(ctx, c.Param("orderNo"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	pdf, err := h.deps.Invoices.Render(ctx, o)
	if err != nil {
		h.logger.Error("render invoice failed", zap.String("order_no", o.OrderNo), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", notify.InvoiceFilename(o)))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
