// Package services contains the server-side business logic. This file
// implements SessionService, which orchestrates registration, login,
// refresh-token rotation, and logout against the credential store.
package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopcraft/api/internal/common"
	"github.com/shopcraft/api/internal/dbx"
	"github.com/shopcraft/api/internal/logging"
	"github.com/shopcraft/api/internal/server/auth"
	"github.com/shopcraft/api/internal/server/config"
	"github.com/shopcraft/api/internal/server/metrics"
	"github.com/shopcraft/api/internal/server/models"
	"github.com/shopcraft/api/internal/server/repositories/repomanager"
)

// Typed errors surfaced by SessionService. The unauthorized values are
// deliberately uniform: an unknown email and a wrong password share one
// message, and every bad refresh token (unknown, expired, reused) shares
// another, so responses never reveal which check failed.
var (
	ErrUserExists         = common.NewConflict("User already exists")
	ErrInvalidCredentials = common.NewUnauthorized("Invalid credentials")
	ErrRefreshMissing     = common.NewUnauthorized("Refresh token missing")
	ErrInvalidRefresh     = common.NewUnauthorized("Invalid refresh token")
	ErrUserNotFound       = common.NewNotFound("User not found")
)

// errRotationRaced aborts the rotation transaction when the conditional
// revoke hits zero rows: a concurrent caller already rotated this token.
var errRotationRaced = errors.New("rotation raced")

// TokenPair bundles a short-lived access token with the raw refresh secret
// destined for the client's cookie.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// SessionService implements the rotating refresh-token protocol: it issues
// {access, refresh} pairs, rotates refresh tokens atomically, and treats
// replay of a revoked token as theft, revoking every session of the affected
// user.
type SessionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	jwtSecret   []byte
	accessTTL   time.Duration
	refreshTTL  time.Duration
}

// NewSessionService constructs a SessionService from the repository manager
// and server config.
func NewSessionService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *SessionService {
	return &SessionService{
		db:          db,
		repomanager: m,
		logger:      logger.With("component", "session"),
		jwtSecret:   []byte(cfg.JWTSecret),
		accessTTL:   cfg.AccessTokenTTL,
		refreshTTL:  cfg.RefreshTokenTTL(),
	}
}

// Register creates a user and issues the first token pair. A taken email
// fails with ErrUserExists.
func (s *SessionService) Register(ctx context.Context, email, password, name string) (*models.User, *TokenPair, error) {
	users := s.repomanager.Users(s.db)

	if _, err := users.GetByEmail(ctx, email); err == nil {
		return nil, nil, ErrUserExists
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, nil, common.NewInternal(err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, nil, common.NewInternal(err)
	}

	user, err := users.Create(ctx, &models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         models.RoleUser,
	})
	if err != nil {
		// A concurrent registration may still hit the unique index.
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, nil, ErrUserExists
		}
		return nil, nil, common.NewInternal(err)
	}

	pair, err := s.issueTokens(ctx, user.ID, user.Role)
	if err != nil {
		return nil, nil, err
	}

	metrics.Registrations.Inc()
	s.logger.Info(ctx, "user registered", "userID", user.ID)
	return user, pair, nil
}

// Login verifies credentials and issues a fresh token pair. Other active
// sessions of the user are left untouched.
func (s *SessionService) Login(ctx context.Context, email, password string) (*models.User, *TokenPair, error) {
	users := s.repomanager.Users(s.db)

	user, err := users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, common.NewInternal(err)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.issueTokens(ctx, user.ID, user.Role)
	if err != nil {
		return nil, nil, err
	}

	metrics.Logins.Inc()
	return user, pair, nil
}

// Refresh rotates the presented refresh token and mints a new access token.
//
// The rotation runs in one transaction: the current row is revoked with an
// update conditioned on revoked_at still being NULL, and the successor row
// is inserted only when that update touched exactly one row. A replayed
// (already revoked) token, or losing the conditional update to a concurrent
// caller, is treated as evidence of theft: every active token of the user is
// revoked before the caller gets the same opaque failure.
func (s *SessionService) Refresh(ctx context.Context, rawToken string) (*TokenPair, error) {
	if rawToken == "" {
		return nil, ErrRefreshMissing
	}

	repo := s.repomanager.RefreshTokens(s.db)

	token, err := repo.FindByHash(ctx, auth.HashRefreshSecret(rawToken))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, ErrInvalidRefresh
		}
		return nil, common.NewInternal(err)
	}

	now := time.Now()

	if !token.ExpiresAt.After(now) {
		return nil, ErrInvalidRefresh
	}

	if token.RevokedAt != nil {
		return nil, s.containReuse(ctx, token.UserID)
	}

	secret, err := auth.NewRefreshSecret()
	if err != nil {
		return nil, common.NewInternal(err)
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repoTx := s.repomanager.RefreshTokens(tx)

		affected, err := repoTx.Revoke(ctx, token.ID, now)
		if err != nil {
			return err
		}
		if affected != 1 {
			return errRotationRaced
		}

		return repoTx.Create(ctx, token.UserID, secret.Hash, now.Add(s.refreshTTL))
	})
	if err != nil {
		if errors.Is(err, errRotationRaced) {
			return nil, s.containReuse(ctx, token.UserID)
		}
		return nil, common.NewInternal(err)
	}

	// The role captured at lookup is reused here; a role change lands at the
	// next login.
	access, err := auth.SignAccessToken(token.UserID, token.UserRole, s.jwtSecret, s.accessTTL)
	if err != nil {
		return nil, common.NewInternal(err)
	}

	metrics.TokenRotations.Inc()
	return &TokenPair{AccessToken: access, RefreshToken: secret.Raw}, nil
}

// Logout revokes the presented refresh token. It is idempotent: an absent,
// unknown, or already-revoked token is not an error.
func (s *SessionService) Logout(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return nil
	}
	repo := s.repomanager.RefreshTokens(s.db)
	if err := repo.RevokeByHash(ctx, auth.HashRefreshSecret(rawToken), time.Now()); err != nil {
		return common.NewInternal(err)
	}
	return nil
}

// Me resolves the authenticated user's public record. The identity can
// outlive the row it points at, in which case ErrUserNotFound surfaces.
func (s *SessionService) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, common.NewInternal(err)
	}
	return user, nil
}

// containReuse is the theft response: revoke every active session of the
// user, then fail with the same opaque error as any other bad token.
func (s *SessionService) containReuse(ctx context.Context, userID string) error {
	metrics.ReuseDetected.Inc()
	s.logger.Warn(ctx, "refresh token reuse detected, revoking all sessions", "userID", userID)

	repo := s.repomanager.RefreshTokens(s.db)
	if err := repo.RevokeAllForUser(ctx, userID, time.Now()); err != nil {
		return common.NewInternal(err)
	}
	return ErrInvalidRefresh
}

// issueTokens creates a refresh-token row and mints the matching access
// token.
func (s *SessionService) issueTokens(ctx context.Context, userID string, role models.Role) (*TokenPair, error) {
	secret, err := auth.NewRefreshSecret()
	if err != nil {
		return nil, common.NewInternal(err)
	}

	repo := s.repomanager.RefreshTokens(s.db)
	if err := repo.Create(ctx, userID, secret.Hash, time.Now().Add(s.refreshTTL)); err != nil {
		return nil, common.NewInternal(err)
	}

	access, err := auth.SignAccessToken(userID, role, s.jwtSecret, s.accessTTL)
	if err != nil {
		return nil, common.NewInternal(err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: secret.Raw}, nil
}
