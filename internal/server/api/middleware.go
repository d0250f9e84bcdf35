package api

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shopcraft/api/internal/common"
	"github.com/shopcraft/api/internal/server/auth"
	"github.com/shopcraft/api/internal/server/metrics"
	"github.com/shopcraft/api/internal/server/models"
)

// Keys under which middleware stores per-request values in the gin context.
const (
	ctxRequestID = "requestID"
	ctxUserID    = "userID"
	ctxUserRole  = "userRole"
)

func requestID(c *gin.Context) string {
	return c.GetString(ctxRequestID)
}

// RequestID assigns every request an ID, honoring one supplied by the
// client, and echoes it in the response header.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(common.RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Header(common.RequestIDHeader, id)
		c.Next()
	}
}

// Authenticate requires a valid bearer access token and stores the caller's
// identity and role in the context. A missing header and a bad token get
// distinct messages; nothing else about the failure is revealed.
func Authenticate(jwtSecret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(common.AuthorizationHeader)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, envelope{
				Success:   false,
				Message:   "Authentication required",
				RequestID: requestID(c),
			})
			return
		}

		claims, err := auth.ParseAccessToken(token, jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, envelope{
				Success:   false,
				Message:   "Invalid or expired token",
				RequestID: requestID(c),
			})
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxUserRole, claims.Role)
		c.Next()
	}
}

// RequireRoles allows only callers whose role is in the list. Must run
// after Authenticate.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := models.Role(c.GetString(ctxUserRole))
		if !slices.Contains(roles, role) {
			c.AbortWithStatusJSON(http.StatusForbidden, envelope{
				Success:   false,
				Message:   "Insufficient permissions",
				RequestID: requestID(c),
			})
			return
		}
		c.Next()
	}
}

// CORS answers preflight requests and sets the response headers for the
// configured origins. Credentials are allowed because the refresh token
// travels in a cookie.
func CORS(origins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && allowed[origin] {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Vary", "Origin")
		}

		if c.Request.Method == http.MethodOptions {
			c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, "+common.RequestIDHeader)
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// Observe records request latency labelled by method, route template and
// status.
func Observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

func callerID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

func callerRole(c *gin.Context) models.Role {
	return models.Role(c.GetString(ctxUserRole))
}
