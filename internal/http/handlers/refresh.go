package handlers

import (
	"errors"
	"net/http"

	"codeleague/internal/logger"
	"codeleague/internal/repository"
	"codeleague/internal/syncer"

	"github.com/gin-gonic/gin"
)

// Refresh syncs the caller right away, skipping the provider cache. Provider problems
// are reported in the body with 200; only a missing account or credential is an error.
func (h *Handler) Refresh(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	ctx := c.Request.Context()
	user, err := h.Users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if err != nil {
		logger.Error("refresh: load user failed", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
		return
	}
	if !user.HasCredential() {
		c.JSON(http.StatusConflict, gin.H{"error": "no provider credential configured"})
		return
	}

	res, err := h.Sync.SyncUser(ctx, syncer.SyncRequest{
		UserID:      user.ID,
		Credential:  user.ProviderCredential,
		Timezone:    user.TimezoneName(),
		BypassCache: true,
	})
	body := gin.H{"result": res}
	if err != nil {
		body["warning"] = err.Error()
	}
	c.JSON(http.StatusOK, body)
}
