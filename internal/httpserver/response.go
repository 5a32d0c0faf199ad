package httpserver

import (
	"time"

	"wheeldeal/internal/domain"
	"wheeldeal/internal/service/cart"
	productsvc "wheeldeal/internal/service/product"

	"github.com/shopspring/decimal"
)

type categoryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type productResponse struct {
	ID          string `json:"id"`
	CategoryID  string `json:"categoryId"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	Price       string `json:"price"`
	Available   bool   `json:"available"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

type productDetailResponse struct {
	Product                  productResponse   `json:"product"`
	Suggestions              []productResponse `json:"suggestions"`
	RecommendationsAvailable bool              `json:"recommendationsAvailable"`
}

type cartItemResponse struct {
	Product    productResponse `json:"product"`
	Quantity   int             `json:"quantity"`
	Price      string          `json:"price"`
	TotalPrice string          `json:"totalPrice"`
}

type couponResponse struct {
	Code     string `json:"code"`
	Discount int    `json:"discount"`
}

type cartResponse struct {
	Items                    []cartItemResponse `json:"items"`
	Count                    int                `json:"count"`
	TotalPrice               string             `json:"totalPrice"`
	Coupon                   *couponResponse    `json:"coupon,omitempty"`
	Discount                 string             `json:"discount"`
	TotalPriceAfterDiscount  string             `json:"totalPriceAfterDiscount"`
	Suggestions              []productResponse  `json:"suggestions"`
	RecommendationsAvailable bool               `json:"recommendationsAvailable"`
}

type orderItemResponse struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	Price       string `json:"price"`
	Quantity    int    `json:"quantity"`
	Cost        string `json:"cost"`
}

type orderResponse struct {
	ID                      string              `json:"id"`
	OrderNo                 string              `json:"orderNo"`
	FirstName               string              `json:"firstName"`
	LastName                string              `json:"lastName"`
	Email                   string              `json:"email"`
	Address                 string              `json:"address"`
	PostalCode              string              `json:"postalCode"`
	City                    string              `json:"city"`
	Paid                    bool                `json:"paid"`
	Discount                int                 `json:"discount"`
	Items                   []orderItemResponse `json:"items"`
	TotalCostBeforeDiscount string              `json:"totalCostBeforeDiscount"`
	DiscountAmount          string              `json:"discountAmount"`
	TotalCost               string              `json:"totalCost"`
	StripeURL               string              `json:"stripeUrl,omitempty"`
	CreatedAt               time.Time           `json:"createdAt"`
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func toCategoryResponses(categories []domain.Category) []categoryResponse {
	out := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, categoryResponse{ID: c.ID, Name: c.Name, Slug: c.Slug})
	}
	return out
}

func toProductResponse(v productsvc.View) productResponse {
	return productResponse{
		ID:          v.ID,
		CategoryID:  v.CategoryID,
		Name:        v.Name,
		Slug:        v.Slug,
		Description: v.Description,
		Price:       money(v.Price),
		Available:   v.Available,
		ImageURL:    v.ImageURL,
	}
}

func toProductResponses(views []productsvc.View) []productResponse {
	out := make([]productResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toProductResponse(v))
	}
	return out
}

func toCartItemResponse(it cart.Item, view productsvc.View) cartItemResponse {
	return cartItemResponse{
		Product:    toProductResponse(view),
		Quantity:   it.Quantity,
		Price:      money(it.Price),
		TotalPrice: money(it.TotalPrice),
	}
}

func toOrderResponse(o domain.Order, stripeTestMode bool) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemResponse{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Price:       money(it.Price),
			Quantity:    it.Quantity,
			Cost:        money(it.Cost()),
		})
	}
	return orderResponse{
		ID:                      o.ID,
		OrderNo:                 o.OrderNo,
		FirstName:               o.FirstName,
		LastName:                o.LastName,
		Email:                   o.Email,
		Address:                 o.Address,
		PostalCode:              o.PostalCode,
		City:                    o.City,
		Paid:                    o.Paid,
		Discount:                o.Discount,
		Items:                   items,
		TotalCostBeforeDiscount: money(o.TotalCostBeforeDiscount()),
		DiscountAmount:          money(o.DiscountAmount()),
		TotalCost:               money(o.TotalCost()),
		StripeURL:               o.StripeURL(stripeTestMode),
		CreatedAt:               o.CreatedAt,
	}
}
