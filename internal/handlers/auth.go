package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/SM8970/Earn-FF-Diamond/internal/apperr"
	"github.com/SM8970/Earn-FF-Diamond/internal/models"
	"github.com/SM8970/Earn-FF-Diamond/internal/services"
)

type AuthHandler struct {
	redisService *services.RedisService
	jwtService   *services.JWTService
	engine       *services.RewardEngine
	logger       zerolog.Logger
}

func NewAuthHandler(redisService *services.RedisService, jwtService *services.JWTService, engine *services.RewardEngine, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		redisService: redisService,
		jwtService:   jwtService,
		engine:       engine,
		logger:       logger,
	}
}

// Login binds a user-supplied game account id to an anonymous identity. A
// valid token on the request reuses its identity, so re-login keeps the
// balance; otherwise a fresh identity is minted. The profile upsert must
// succeed before the client is considered logged in.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	identityKey := models.GenerateIdentityKey()
	if claims, err := h.jwtService.ValidateToken(bearerToken(c)); err == nil {
		identityKey = claims.UserID
	}

	if err := h.redisService.EnsureProfile(identityKey, req.GameAccountID); err != nil {
		h.logger.Error().Err(err).Str("user_id", identityKey).Msg("profile upsert failed during login")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to save your profile, please try again"})
		return
	}

	session := &models.UserSession{
		UserID:        identityKey,
		SessionID:     models.GenerateSessionID(),
		GameAccountID: req.GameAccountID,
		CreatedAt:     time.Now(),
		LastAccessed:  time.Now(),
	}

	if err := h.redisService.StoreUserSession(session); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to create session"})
		return
	}

	token, err := h.jwtService.GenerateToken(session.UserID, session.SessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	state, err := h.engine.State(identityKey)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to load profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"user": gin.H{
			"id":              session.UserID,
			"game_account_id": session.GameAccountID,
		},
		"state": state,
	})
}

// RestoreSession re-validates a stored token at app start. An identity
// whose profile has no game account id on file is sent back to the login
// view.
func (h *AuthHandler) RestoreSession(c *gin.Context) {
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

	if !profile.HasGameAccountID() {
		c.JSON(http.StatusConflict, gin.H{
			"error":            "Please provide your Free Fire UID to continue",
			"needs_account_id": true,
		})
		return
	}

	state, err := h.engine.State(userID)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to load profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user": gin.H{
			"id":              userID,
			"game_account_id": profile.GameAccountID,
		},
		"session": gin.H{
			"session_id": session.SessionID,
			"created_at": session.CreatedAt,
		},
		"state": state,
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	userID := c.GetString("user_id")
	sessionID := c.GetString("session_id")

	if err := h.redisService.DeleteUserSession(userID, sessionID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to logout"})
		return
	}

	h.engine.EndSession(userID)

	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return c.Query("token")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}
