package httpserver

import (
	"errors"
	"strings"
	"time"

	"wheeldeal/internal/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Config holds the HTTP-facing settings.
type Config struct {
	PublicBaseURL  string
	AdminAPIKey    string
	CORSOrigins    []string
	SessionSecret  string
	SessionMaxAge  int
	SecureCookies  bool
	StripeTestMode bool
}

func ConfigFrom(cfg config.Config) Config {
	return Config{
		PublicBaseURL:  cfg.PublicBaseURL,
		AdminAPIKey:    cfg.AdminAPIKey,
		CORSOrigins:    cfg.CORSOrigins,
		SessionSecret:  cfg.Session.Secret,
		SessionMaxAge:  cfg.Session.MaxAge,
		SecureCookies:  cfg.Session.SecureCookies,
		StripeTestMode: cfg.Stripe.TestMode(),
	}
}

// buildRouter wires routes for the API.
func buildRouter(logger *zap.Logger, cfg Config, deps Deps) (*gin.Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SessionSecret == "" {
		return nil, errors.New("session secret is required")
	}
	if deps.CategorySvc == nil || deps.ProductSvc == nil || deps.CouponSvc == nil || deps.OrderSvc == nil {
		return nil, errors.New("catalog, coupon and order services are required")
	}
	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")

	router := gin.New()
	router.Use(requestLogger(logger.Named("http")), recovery(logger))
	if len(cfg.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", apiKeyHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	h := &handlers{cfg: cfg, deps: deps, logger: logger.Named("handlers")}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(deps.Checks))

	// Stripe calls the webhook without a session cookie.
	router.POST("/payment/webhook", h.paymentWebhook)

	shop := router.Group("/", sessionMiddleware(newCookieStore(cfg), logger))
	shop.GET("/categories", h.listCategories)
	shop.GET("/products", h.listProducts)
	shop.GET("/products/:id/:slug", h.productDetail)

	shop.GET("/cart", h.cartDetail)
	shop.POST("/cart/items/:productID", h.cartAdd)
	shop.DELETE("/cart/items/:productID", h.cartRemove)
	shop.DELETE("/cart", h.cartClear)
	shop.POST("/coupons/apply", h.couponApply)

	shop.POST("/orders", h.orderCreate)
	shop.GET("/orders/:orderNo", h.orderDetail)

	shop.POST("/payment/process", h.paymentProcess)
	shop.GET("/payment/completed", h.paymentCompleted)
	shop.GET("/payment/canceled", h.paymentCanceled)

	router.GET("/orders/:orderNo/invoice.pdf", requireAPIKey(cfg.AdminAPIKey), h.orderInvoice)
	admin := router.Group("/admin", requireAPIKey(cfg.AdminAPIKey))
	admin.POST("/recommendations/clear", h.clearRecommendations)

	return router, nil
}

type handlers struct {
	cfg    Config
	deps   Deps
	logger *zap.Logger
}
