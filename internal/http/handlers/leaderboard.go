package handlers

import (
	"net/http"
	"strconv"

	"codeleague/internal/logger"

	"github.com/gin-gonic/gin"
)

// maxDayOffset bounds how far back the daily board can be requested.
const maxDayOffset = 7

// DailyLeaderboard returns today's standings for the caller's population.
// ?offset=-1 returns yesterday's.
func (h *Handler) DailyLeaderboard(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	offset := 0
	if v := c.Query("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n > 0 || n < -maxDayOffset {
			c.JSON(http.StatusBadRequest, gin.H{"error": "offset must be between -7 and 0"})
			return
		}
		offset = n
	}

	standings, err := h.Board.Daily(c.Request.Context(), userID, offset, h.now())
	if err != nil {
		logger.Error("daily leaderboard failed", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get leaderboard"})
		return
	}

	c.JSON(http.StatusOK, standings)
}

// WeeklyLeaderboard returns the rolling-range standings.
func (h *Handler) WeeklyLeaderboard(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	rangeKey := c.DefaultQuery("range", h.RangeKey)
	standings, err := h.Board.Weekly(c.Request.Context(), userID, rangeKey)
	if err != nil {
		logger.Error("weekly leaderboard failed", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get leaderboard"})
		return
	}

	c.JSON(http.StatusOK, standings)
}
