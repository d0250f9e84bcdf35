package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/shopcraft/api/internal/logging"
	"github.com/shopcraft/api/internal/server/models"
	"github.com/shopcraft/api/internal/server/services"
)

// SessionService is the slice of the session service the auth handlers use.
type SessionService interface {
	Register(ctx context.Context, email, password, name string) (*models.User, *services.TokenPair, error)
	Login(ctx context.Context, email, password string) (*models.User, *services.TokenPair, error)
	Refresh(ctx context.Context, rawToken string) (*services.TokenPair, error)
	Logout(ctx context.Context, rawToken string) error
	Me(ctx context.Context, userID string) (*models.User, error)
}

// AuthHandler serves the /auth endpoints. It owns the refresh cookie:
// services never see HTTP, and handlers never see token internals.
type AuthHandler struct {
	sessions      SessionService
	logger        logging.Logger
	refreshTTL    time.Duration
	secureCookies bool
}

func NewAuthHandler(sessions SessionService, logger logging.Logger, refreshTTL time.Duration, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		sessions:      sessions,
		logger:        logger,
		refreshTTL:    refreshTTL,
		secureCookies: secureCookies,
	}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=128"`
	Name     string `json:"name" binding:"omitempty,min=1,max=100"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,max=128"`
}

type userPayload struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserPayload(u *models.User) userPayload {
	return userPayload{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

// bindJSON binds the body into dst and writes the validation response on
// failure. Returns false when the request was already answered.
func bindJSON(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}

	fields := map[string]any{}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			fields[fe.Field()] = "failed validation on '" + fe.Tag() + "'"
		}
	} else {
		fields["body"] = "malformed JSON body"
	}
	respondValidation(c, fields)
	return false
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}

	user, pair, err := h.sessions.Register(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	setRefreshCookie(c, pair.RefreshToken, h.refreshTTL, h.secureCookies)
	respond(c, http.StatusCreated, gin.H{
		"user":        toUserPayload(user),
		"accessToken": pair.AccessToken,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	user, pair, err := h.sessions.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	setRefreshCookie(c, pair.RefreshToken, h.refreshTTL, h.secureCookies)
	respond(c, http.StatusOK, gin.H{
		"user":        toUserPayload(user),
		"accessToken": pair.AccessToken,
	})
}

// Refresh rotates the cookie token. On any failure the cookie is cleared so
// a client stuck with a dead token does not retry it forever.
func (h *AuthHandler) Refresh(c *gin.Context) {
	pair, err := h.sessions.Refresh(c.Request.Context(), refreshCookie(c))
	if err != nil {
		clearRefreshCookie(c, h.secureCookies)
		respondError(c, h.logger, err)
		return
	}

	setRefreshCookie(c, pair.RefreshToken, h.refreshTTL, h.secureCookies)
	respond(c, http.StatusOK, gin.H{"accessToken": pair.AccessToken})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.sessions.Logout(c.Request.Context(), refreshCookie(c)); err != nil {
		respondError(c, h.logger, err)
		return
	}

	clearRefreshCookie(c, h.secureCookies)
	respondMessage(c, http.StatusOK, "Logged out", nil)
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.sessions.Me(c.Request.Context(), callerID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"user": toUserPayload(user)})
}
