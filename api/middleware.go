package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tadeyemo32/vanguard-staffing/internal/logging"
	"github.com/tadeyemo32/vanguard-staffing/services"
)

const requestIDHeader = "X-Request-ID"

// RequestIDMiddleware tags every request with an ID, reusing the caller's
// X-Request-ID when one is sent.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("requestID", id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

// AuthMiddleware checks the Authorization header for a valid planner token
// and stores the owner name for downstream handlers.
func AuthMiddleware(auth *services.TokenAuth, appEnv, devBypassToken string) gin.HandlerFunc {
	log := logging.New("auth")
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}"})
			return
		}

		tokenString := parts[1]

		// DEV BYPASS: if APP_ENV=dev and token matches DEV_BYPASS_TOKEN, act as the "dev" owner
		if appEnv == "dev" && devBypassToken != "" && tokenString == devBypassToken {
			c.Set("owner", "dev")
			c.Set("devBypass", true)
			c.Next()
			return
		}

		owner, err := auth.ValidateJWT(tokenString)
		if err != nil {
			log.Warn("token rejected", "path", c.FullPath(), "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set("owner", owner)
		c.Next()
	}
}

// BackendKeyMiddleware requires the X-Vanguard-Key header when a key or a
// bcrypt key hash is configured. With neither set, traffic passes.
func BackendKeyMiddleware(key, keyHash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actual := c.GetHeader("X-Vanguard-Key")
		switch {
		case keyHash != "":
			if actual == "" || !services.CheckKeyHash(actual, keyHash) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid backend access key"})
				return
			}
		case key != "":
			if actual != key {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid backend access key"})
				return
			}
		}
		c.Next()
	}
}

// CORSMiddleware allows the planner UI to call the API from another origin.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Vanguard-Key, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
