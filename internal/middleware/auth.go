package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SM8970/Earn-FF-Diamond/internal/apperr"
	"github.com/SM8970/Earn-FF-Diamond/internal/services"
)

func AuthMiddleware(jwtService *services.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		var tokenString string

		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				unauthorized(c, "Invalid authorization format")
				return
			}
			tokenString = parts[1]
		} else {
			tokenString = c.Query("token")
			if tokenString == "" {
				unauthorized(c, "Authorization header required")
				return
			}
		}

		claims, err := jwtService.ValidateToken(tokenString)
		if err != nil {
			unauthorized(c, "Invalid or expired token")
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("session_id", claims.SessionID)

		c.Next()
	}
}

func unauthorized(c *gin.Context, message string) {
	appErr := apperr.New(apperr.CodeAuth, message)
	c.JSON(apperr.HTTPStatus(appErr.Code), gin.H{
		"error": appErr.Message,
		"code":  appErr.Code,
	})
	c.Abort()
}

func RateLimitMiddleware(redisService *services.RedisService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if userID == "" {
			c.Next()
			return
		}

		path := c.Request.URL.Path

		var limit int
		var window time.Duration

		switch {
		case strings.Contains(path, "/rewards/tap"):
			limit = services.DefaultRateLimitTaps
			window = time.Minute
		case strings.Contains(path, "/rewards/spin"):
			limit = services.DefaultRateLimitSpins
			window = time.Minute
		case strings.Contains(path, "/redemptions") && c.Request.Method == http.MethodPost:
			limit = services.DefaultRateLimitRedeems
			window = time.Minute
		default:
			c.Next()
			return
		}

		allowed, err := redisService.CheckRateLimit(userID, path, limit, window)
		if err != nil || !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"retry_after": window.Seconds(),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
