package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shopcraft/api/internal/common"
)

// refreshCookiePath scopes the refresh cookie to the auth endpoints so the
// token is never sent with ordinary API traffic.
const refreshCookiePath = "/api/v1/auth"

func setRefreshCookie(c *gin.Context, token string, ttl time.Duration, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(common.RefreshTokenCookie, token, int(ttl.Seconds()), refreshCookiePath, "", secure, true)
}

func clearRefreshCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(common.RefreshTokenCookie, "", -1, refreshCookiePath, "", secure, true)
}

// refreshCookie returns the presented refresh token, or "" when absent.
func refreshCookie(c *gin.Context) string {
	token, err := c.Cookie(common.RefreshTokenCookie)
	if err != nil {
		return ""
	}
	return token
}
