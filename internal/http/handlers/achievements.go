package handlers

import (
	"net/http"

	"codeleague/internal/achievement"
	"codeleague/internal/logger"

	"github.com/gin-gonic/gin"
)

// AchievementCatalog lists every achievement that can be earned.
func (h *Handler) AchievementCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"achievements": achievement.Catalog()})
}

// MyAchievements returns what the caller has earned, grouped by achievement.
func (h *Handler) MyAchievements(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	progress, err := h.Achievements.Summary(c.Request.Context(), userID)
	if err != nil {
		logger.Error("achievement summary failed", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get achievements"})
		return
	}
	if progress == nil {
		progress = []achievement.Progress{}
	}

	c.JSON(http.StatusOK, gin.H{"achievements": progress})
}
