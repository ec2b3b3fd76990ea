package handlers

import (
	"net/http"
	"strconv"

	"codeleague/internal/domain"
	"codeleague/internal/logger"

	"github.com/gin-gonic/gin"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// MyWallet returns the caller's coin balance and recent ledger entries.
func (h *Handler) MyWallet(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit := defaultHistoryLimit
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = min(n, maxHistoryLimit)
		}
	}

	ctx := c.Request.Context()
	balance, err := h.Wallet.GetBalance(ctx, userID)
	if err != nil {
		logger.Error("wallet balance failed", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get balance"})
		return
	}

	history, err := h.Wallet.History(ctx, userID, limit)
	if err != nil {
		logger.Error("wallet history failed", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get history"})
		return
	}
	if history == nil {
		history = []*domain.CoinLedgerEntry{}
	}

	c.JSON(http.StatusOK, gin.H{
		"coins":   balance,
		"history": history,
	})
}

// MyRewards lists the caller's daily settlements, newest first, including days that
// paid nothing.
func (h *Handler) MyRewards(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	settlements, err := h.Rewards.ListByUser(c.Request.Context(), userID, 30)
	if err != nil {
		logger.Error("reward history failed", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get rewards"})
		return
	}
	if settlements == nil {
		settlements = []*domain.DailyRewardSettlement{}
	}

	c.JSON(http.StatusOK, gin.H{"settlements": settlements})
}
