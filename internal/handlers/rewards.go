package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SM8970/Earn-FF-Diamond/internal/apperr"
	"github.com/SM8970/Earn-FF-Diamond/internal/models"
	"github.com/SM8970/Earn-FF-Diamond/internal/services"
)

type RewardHandler struct {
	engine       *services.RewardEngine
	redisService *services.RedisService
}

func NewRewardHandler(engine *services.RewardEngine, redisService *services.RedisService) *RewardHandler {
	return &RewardHandler{
		engine:       engine,
		redisService: redisService,
	}
}

// Tap starts the ad gate. The reward lands only after the gate is dismissed.
func (h *RewardHandler) Tap(c *gin.Context) {
	userID := c.GetString("user_id")

	state, err := h.engine.Tap(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"state":   state,
	})
}

func (h *RewardHandler) DismissAd(c *gin.Context) {
	userID := c.GetString("user_id")

	state, err := h.engine.DismissAd(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"state":   state,
	})
}

func (h *RewardHandler) Spin(c *gin.Context) {
	userID := c.GetString("user_id")

	result, err := h.engine.Spin(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"result":  result,
	})
}

func (h *RewardHandler) GetState(c *gin.Context) {
	userID := c.GetString("user_id")

	state, err := h.engine.State(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"state":   state,
	})
}

func (h *RewardHandler) Redeem(c *gin.Context) {
	userID := c.GetString("user_id")

	var req models.RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	redemption, err := h.engine.Redeem(userID, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"redemption": redemption,
	})
}

func (h *RewardHandler) GetRedemptions(c *gin.Context) {
	userID := c.GetString("user_id")

	limit, err := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
		return
	}

	redemptions, err := h.redisService.GetUserRedemptions(userID, limit)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to load redemptions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"redemptions": redemptions,
	})
}

// respondError maps application errors onto HTTP; inline guard failures
// surface their message, everything else stays generic.
func respondError(c *gin.Context, err error) {
	code := apperr.Code(err)
	c.JSON(apperr.HTTPStatus(code), gin.H{
		"error": apperr.Message(err),
		"code":  code,
	})
}
