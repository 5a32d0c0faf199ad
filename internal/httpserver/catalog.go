package httpserver

import (
	"context"
	"errors"
	"net/http"

	"wheeldeal/internal/recommender"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	productSuggestions = 4
	cartSuggestions    = 4
)

func (h *handlers) listCategories(c *gin.Context) {
	categories, err := h.deps.CategorySvc.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	results := toCategoryResponses(categories)
	h.writeJSON(c, http.StatusOK, gin.H{"count": len(results), "results": results})
}

func (h *handlers) listProducts(c *gin.Context) {
	views, err := h.deps.ProductSvc.ListAvailable(c.Request.Context(), c.Query("category"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	results := toProductResponses(views)
	h.writeJSON(c, http.StatusOK, gin.H{"count": len(results), "results": results})
}

func (h *handlers) productDetail(c *gin.Context) {
	ctx := c.Request.Context()
	view, err := h.deps.ProductSvc.GetAvailable(ctx, c.Param("id"), c.Param("slug"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	suggestions, ok := h.suggest(ctx, []string{view.ID}, productSuggestions)
	h.writeJSON(c, http.StatusOK, productDetailResponse{
		Product:                  toProductResponse(*view),
		Suggestions:              suggestions,
		RecommendationsAvailable: ok,
	})
}

// suggest never fails the request: when recommendations cannot be served it
// returns an empty list and false.
func (h *handlers) suggest(ctx context.Context, ids []string, max int) ([]productResponse, bool) {
	if h.deps.Recommender == nil {
		return []productResponse{}, false
	}
	if len(ids) == 0 {
		return []productResponse{}, true
	}
	products, err := h.deps.Recommender.SuggestProductsFor(ctx, ids, max)
	if err != nil {
		if errors.Is(err, recommender.ErrStoreUnavailable) {
			h.logger.Warn("recommendation store unavailable", zap.Strings("product_ids", ids), zap.Error(err))
		} else {
			h.logger.Error("suggestions failed", zap.Strings("product_ids", ids), zap.Error(err))
		}
		return []productResponse{}, false
	}
	return toProductResponses(h.deps.ProductSvc.Views(ctx, products)), true
}
