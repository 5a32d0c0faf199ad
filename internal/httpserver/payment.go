package httpserver

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	stripeSignatureHeader = "Stripe-Signature"
	maxWebhookBody        = 64 << 10
)

// paymentProcess sends the shopper to the hosted checkout of the order
// placed in this session. Only that order can be paid from here.
func (h *handlers) paymentProcess(c *gin.Context) {
	if h.deps.PaymentSvc == nil {
		h.writeJSON(c, http.StatusServiceUnavailable, gin.H{"error": "payments are not configured"})
		return
	}
	orderNo, _ := sessionFrom(c).Get(sessionOrderNoKey)
	if orderNo == "" {
		h.writeJSON(c, http.StatusBadRequest, gin.H{"error": "no order to pay"})
		return
	}

	url, err := h.deps.PaymentSvc.Process(
		c.Request.Context(),
		orderNo,
		h.cfg.PublicBaseURL+"/payment/completed",
		h.cfg.PublicBaseURL+"/payment/canceled",
	)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if !h.saveSession(c) {
		return
	}
	c.Redirect(http.StatusSeeOther, url)
}

func (h *handlers) paymentCompleted(c *gin.Context) {
	orderNo, _ := sessionFrom(c).Get(sessionOrderNoKey)
	h.writeJSON(c, http.StatusOK, gin.H{"status": "completed", "orderNo": orderNo})
}

func (h *handlers) paymentCanceled(c *gin.Context) {
	orderNo, _ := sessionFrom(c).Get(sessionOrderNoKey)
	h.writeJSON(c, http.StatusOK, gin.H{"status": "canceled", "orderNo": orderNo})
}

func (h *handlers) paymentWebhook(c *gin.Context) {
	if h.deps.PaymentSvc == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "payments are not configured"})
		return
	}
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}
	ev, err := h.deps.PaymentSvc.ParseEvent(payload, c.GetHeader(stripeSignatureHeader))
	if err != nil {
		h.logger.Warn("webhook rejected", zap.Error(err))
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	if err := h.deps.PaymentSvc.HandleEvent(c.Request.Context(), ev); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
