package handlers

import (
	"net/http"
	"strconv"

	"codeleague/internal/domain"
	"codeleague/internal/logger"

	"github.com/gin-gonic/gin"
)

// MyProviderCalls lists the caller's most recent provider calls, for diagnosing why a
// stat shows as private or errored.
func (h *Handler) MyProviderCalls(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit := 20
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = min(n, maxHistoryLimit)
		}
	}

	calls, err := h.CallLog.Recent(c.Request.Context(), userID, limit)
	if err != nil {
		logger.Error("provider call log failed", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get provider calls"})
		return
	}
	if calls == nil {
		calls = []*domain.ProviderCallLog{}
	}

	c.JSON(http.StatusOK, gin.H{"calls": calls})
}
