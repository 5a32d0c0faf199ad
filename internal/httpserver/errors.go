package httpserver

import (
	"errors"
	"net/http"

	"wheeldeal/internal/domain"
	"wheeldeal/internal/payment"
	"wheeldeal/internal/recommender"
	"wheeldeal/internal/service/cart"
	couponsvc "wheeldeal/internal/service/coupon"
	ordersvc "wheeldeal/internal/service/order"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func statusFor(err error) int {
	var verr *ordersvc.ValidationError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &verr),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, cart.ErrCartFull),
		errors.Is(err, ordersvc.ErrEmptyCart),
		errors.Is(err, couponsvc.ErrInvalidCoupon),
		errors.Is(err, payment.ErrInvalidSignature):
		return http.StatusBadRequest
	case errors.Is(err, payment.ErrAlreadyPaid), errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, payment.ErrNotConfigured), errors.Is(err, recommender.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps service errors to responses. Internal details of 5xx
// errors are logged, not returned.
func (h *handlers) writeError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusNotFound {
		msg = "not found"
	}
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		if status == http.StatusInternalServerError {
			msg = "internal error"
		}
	}
	body := gin.H{"error": msg}
	var verr *ordersvc.ValidationError
	if errors.As(err, &verr) {
		body["fields"] = verr.Fields
	}
	h.writeJSON(c, status, body)
}

// writeJSON commits the session before writing the body. A session that
// cannot be stored fails the request, since the change would be lost.
func (h *handlers) writeJSON(c *gin.Context, status int, body any) {
	if !h.saveSession(c) {
		return
	}
	c.JSON(status, body)
}

func (h *handlers) saveSession(c *gin.Context) bool {
	if err := commitSession(c); err != nil {
		_ = c.Error(err)
		h.logger.Error("session not saved", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session could not be saved"})
		return false
	}
	return true
}
