package httpserver

import (
	"net/http"

	"wheeldeal/internal/domain"
	"wheeldeal/internal/service/cart"

	"github.com/gin-gonic/gin"
)

type cartAddRequest struct {
	Quantity int  `json:"quantity" binding:"required,min=1,max=20"`
	Override bool `json:"override"`
}

type couponApplyRequest struct {
	Code string `json:"code" binding:"required,max=50"`
}

func (h *handlers) cartFor(c *gin.Context) *cart.Cart {
	return cart.New(sessionFrom(c), h.deps.ProductSvc, h.deps.CouponSvc)
}

func (h *handlers) cartDetail(c *gin.Context) {
	h.renderCart(c, h.cartFor(c))
}

func (h *handlers) cartAdd(c *gin.Context) {
	var req cartAddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeJSON(c, http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	product, err := h.deps.ProductSvc.Get(c.Request.Context(), c.Param("productID"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if !product.Available {
		h.writeJSON(c, http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	crt := h.cartFor(c)
	if err := crt.Add(*product, req.Quantity, req.Override); err != nil {
		h.writeError(c, err)
		return
	}
	h.renderCart(c, crt)
}

func (h *handlers) cartRemove(c *gin.Context) {
	crt := h.cartFor(c)
	crt.Remove(c.Param("productID"))
	h.renderCart(c, crt)
}

func (h *handlers) cartClear(c *gin.Context) {
	crt := h.cartFor(c)
	crt.Clear()
	crt.ClearCoupon()
	h.renderCart(c, crt)
}

func (h *handlers) couponApply(c *gin.Context) {
	var req couponApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeJSON(c, http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	crt := h.cartFor(c)
	if _, err := h.deps.CouponSvc.Apply(c.Request.Context(), crt, req.Code); err != nil {
		h.writeError(c, err)
		return
	}
	h.renderCart(c, crt)
}

func (h *handlers) renderCart(c *gin.Context, crt *cart.Cart) {
	ctx := c.Request.Context()
	items, err := crt.Items(ctx)
	if err != nil {
		h.writeError(c, err)
		return
	}
	coupon, err := crt.Coupon(ctx)
	if err != nil {
		h.writeError(c, err)
		return
	}
	discount, err := crt.Discount(ctx)
	if err != nil {
		h.writeError(c, err)
		return
	}

	products := make([]domain.Product, 0, len(items))
	for _, it := range items {
		products = append(products, it.Product)
	}
	views := h.deps.ProductSvc.Views(ctx, products)

	resp := cartResponse{
		Items:                   make([]cartItemResponse, 0, len(items)),
		Count:                   crt.Len(),
		TotalPrice:              money(crt.TotalPrice()),
		Discount:                money(discount),
		TotalPriceAfterDiscount: money(crt.TotalPrice().Sub(discount)),
	}
	for i, it := range items {
		resp.Items = append(resp.Items, toCartItemResponse(it, views[i]))
	}
	if coupon != nil {
		resp.Coupon = &couponResponse{Code: coupon.Code, Discount: coupon.Discount}
	}
	resp.Suggestions, resp.RecommendationsAvailable = h.suggest(ctx, crt.ProductIDs(), cartSuggestions)
	h.writeJSON(c, http.StatusOK, resp)
}
