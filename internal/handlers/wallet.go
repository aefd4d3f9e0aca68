package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kese-app/goldday/internal/ledger"
	"github.com/kese-app/goldday/internal/models"
	"github.com/kese-app/goldday/internal/pricing"
)

// walletBalances values the primary account's holdings. Positions with a
// failed valuation are still returned, flagged, with a zero fiat value.
func (s *Server) walletBalances(c *gin.Context) {
	account, err := s.wallet.Account(0)
	if err != nil {
		writeError(c, err)
		return
	}
	raw, err := account.Balances(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	positions := s.balances.Aggregate(raw)
	c.JSON(http.StatusOK, gin.H{
		"address":    account.Address(),
		"positions":  positions,
		"totalValue": ledger.TotalValue(positions),
	})
}

type refreshPriceRequest struct {
	Asset string `json:"asset" binding:"required"`
}

func (s *Server) refreshPrice(c *gin.Context) {
	var req refreshPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	asset, err := models.ParseAsset(req.Asset)
	if err != nil {
		writeError(c, err)
		return
	}
	rate, fetchedAt, err := s.prices.Refresh(c.Request.Context(), asset, pricing.USD)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"asset":     asset,
		"currency":  pricing.USD,
		"rate":      rate,
		"fetchedAt": fetchedAt.Unix(),
	})
}
