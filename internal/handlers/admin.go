package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/SM8970/Earn-FF-Diamond/internal/services"
)

// AdminHandler is the fulfillment surface for the moderation workflow: it
// lists pending redemption requests and marks them completed once the
// diamonds have been delivered in-game. It performs no other mutation.
type AdminHandler struct {
	redisService *services.RedisService
	adminKey     string
	logger       zerolog.Logger
}

func NewAdminHandler(redisService *services.RedisService, adminKey string, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		redisService: redisService,
		adminKey:     adminKey,
		logger:       logger,
	}
}

// RequireKey guards the admin group with a static key.
func (h *AdminHandler) RequireKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.adminKey == "" || c.GetHeader("X-Admin-Key") != h.adminKey {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid admin key"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func (h *AdminHandler) ListPending(c *gin.Context) {
	limit, err := strconv.ParseInt(c.DefaultQuery("limit", "100"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
		return
	}

	pending, err := h.redisService.GetPendingRedemptions(limit)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to load pending redemptions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"redemptions": pending,
	})
}

func (h *AdminHandler) CompleteRedemption(c *gin.Context) {
	id := c.Param("id")

	if err := h.redisService.CompleteRedemption(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Failed to complete redemption",
			"details": err.Error(),
		})
		return
	}

	h.logger.Info().Str("redemption_id", id).Msg("redemption marked completed")

	redemption, err := h.redisService.GetRedemption(id)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"redemption": redemption,
	})
}
