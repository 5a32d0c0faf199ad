package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *handlers) clearRecommendations(c *gin.Context) {
	if h.deps.Recommender == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "recommendations are not configured"})
		return
	}
	n, err := h.deps.Recommender.ClearPurchases(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cleared": n})
}
