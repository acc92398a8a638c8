package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SM8970/Earn-FF-Diamond/internal/apperr"
	"github.com/SM8970/Earn-FF-Diamond/internal/services"
)

type UserHandler struct {
	redisService *services.RedisService
	engine       *services.RewardEngine
}

func NewUserHandler(redisService *services.RedisService, engine *services.RewardEngine) *UserHandler {
	return &UserHandler{
		redisService: redisService,
		engine:       engine,
	}
}

func (h *UserHandler) GetCurrentUser(c *gin.Context) {
	userID := c.GetString("user_id")
	sessionID := c.GetString("session_id")

	session, err := h.redisService.GetUserSession(userID, sessionID)
	if err != nil {
		respondError(c, apperr.New(apperr.CodeAuth, "Session expired or invalid"))
		return
	}

	profile, err := h.redisService.GetProfile(userID)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to load profile"})
		return
	}

	state, err := h.engine.State(userID)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to load state"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":              userID,
			"game_account_id": profile.GameAccountID,
		},
		"session": gin.H{
			"session_id":    session.SessionID,
			"created_at":    session.CreatedAt,
			"last_accessed": session.LastAccessed,
		},
		"state": state,
	})
}
