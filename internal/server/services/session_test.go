package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopcraft/api/internal/common"
	"github.com/shopcraft/api/internal/dbx"
	"github.com/shopcraft/api/internal/logging"
	"github.com/shopcraft/api/internal/server/auth"
	"github.com/shopcraft/api/internal/server/models"
	"github.com/shopcraft/api/internal/server/repositories/categories"
	"github.com/shopcraft/api/internal/server/repositories/orders"
	"github.com/shopcraft/api/internal/server/repositories/products"
	"github.com/shopcraft/api/internal/server/repositories/refreshtokens"
	"github.com/shopcraft/api/internal/server/repositories/users"
)

const testJWTSecret = "test-secret-test-secret-test-secret!"

type createdToken struct {
	userID    string
	tokenHash string
	expiresAt time.Time
}

type fakeUserRepo struct {
	byEmail map[string]*models.User
	byID    map[string]*models.User

	createErr error
	created   *models.User
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	u := *user
	u.ID = "user-1"
	u.CreatedAt = time.Now()
	f.created = &u
	return &u, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, common.ErrNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, common.ErrNotFound
}

type fakeTokenRepo struct {
	findToken *models.RefreshToken
	findErr   error

	revokeAffected int64
	revokeErr      error

	created          []createdToken
	revokedIDs       []string
	revokedHashes    []string
	revokedAllUserID string
}

func (f *fakeTokenRepo) Create(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	f.created = append(f.created, createdToken{userID: userID, tokenHash: tokenHash, expiresAt: expiresAt})
	return nil
}

func (f *fakeTokenRepo) FindByHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findToken, nil
}

func (f *fakeTokenRepo) Revoke(ctx context.Context, id string, now time.Time) (int64, error) {
	f.revokedIDs = append(f.revokedIDs, id)
	return f.revokeAffected, f.revokeErr
}

func (f *fakeTokenRepo) RevokeByHash(ctx context.Context, tokenHash string, now time.Time) error {
	f.revokedHashes = append(f.revokedHashes, tokenHash)
	return nil
}

func (f *fakeTokenRepo) RevokeAllForUser(ctx context.Context, userID string, now time.Time) error {
	f.revokedAllUserID = userID
	return nil
}

type fakeRepoManager struct {
	users  *fakeUserRepo
	tokens *fakeTokenRepo
}

func (m *fakeRepoManager) RunMigrations(ctx context.Context, db *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository                  { return m.users }
func (m *fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository  { return m.tokens }
func (m *fakeRepoManager) Products(db dbx.DBTX) products.Repository            { return nil }
func (m *fakeRepoManager) Categories(db dbx.DBTX) categories.Repository        { return nil }
func (m *fakeRepoManager) Orders(db dbx.DBTX) orders.Repository                { return nil }

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestService(t *testing.T, m *fakeRepoManager) (*SessionService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return &SessionService{
		db:          db,
		repomanager: m,
		logger:      discardLogger(),
		jwtSecret:   []byte(testJWTSecret),
		accessTTL:   15 * time.Minute,
		refreshTTL:  30 * 24 * time.Hour,
	}, mock
}

func TestSessionService_Register(t *testing.T) {
	t.Run("creates user and issues tokens", func(t *testing.T) {
		m := &fakeRepoManager{users: &fakeUserRepo{byEmail: map[string]*models.User{}}, tokens: &fakeTokenRepo{}}
		svc, _ := newTestService(t, m)

		user, pair, err := svc.Register(context.Background(), "a@b.c", "secret123", "Alice")
		require.NoError(t, err)

		assert.Equal(t, "a@b.c", user.Email)
		assert.Equal(t, models.RoleUser, user.Role)
		assert.True(t, auth.CheckPassword(user.PasswordHash, "secret123"))

		require.Len(t, m.tokens.created, 1)
		assert.Equal(t, auth.HashRefreshSecret(pair.RefreshToken), m.tokens.created[0].tokenHash)

		claims, err := auth.ParseAccessToken(pair.AccessToken, []byte(testJWTSecret))
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.UserID)
		assert.Equal(t, string(models.RoleUser), claims.Role)
	})

	t.Run("taken email", func(t *testing.T) {
		m := &fakeRepoManager{
			users:  &fakeUserRepo{byEmail: map[string]*models.User{"a@b.c": {ID: "user-1"}}},
			tokens: &fakeTokenRepo{},
		}
		svc, _ := newTestService(t, m)

		_, _, err := svc.Register(context.Background(), "a@b.c", "secret123", "")
		assert.ErrorIs(t, err, ErrUserExists)
		assert.Empty(t, m.tokens.created)
	})

	t.Run("concurrent duplicate insert", func(t *testing.T) {
		m := &fakeRepoManager{
			users:  &fakeUserRepo{byEmail: map[string]*models.User{}, createErr: common.ErrAlreadyExists},
			tokens: &fakeTokenRepo{},
		}
		svc, _ := newTestService(t, m)

		_, _, err := svc.Register(context.Background(), "a@b.c", "secret123", "")
		assert.ErrorIs(t, err, ErrUserExists)
	})
}

func TestSessionService_Login(t *testing.T) {
	hash, err := auth.HashPassword("correct horse")
	require.NoError(t, err)

	existing := &models.User{ID: "user-1", Email: "a@b.c", PasswordHash: hash, Role: models.RoleAdmin}

	t.Run("valid credentials", func(t *testing.T) {
		m := &fakeRepoManager{users: &fakeUserRepo{byEmail: map[string]*models.User{"a@b.c": existing}}, tokens: &fakeTokenRepo{}}
		svc, _ := newTestService(t, m)

		user, pair, err := svc.Login(context.Background(), "a@b.c", "correct horse")
		require.NoError(t, err)
		assert.Equal(t, "user-1", user.ID)

		claims, err := auth.ParseAccessToken(pair.AccessToken, []byte(testJWTSecret))
		require.NoError(t, err)
		assert.Equal(t, string(models.RoleAdmin), claims.Role)
		require.Len(t, m.tokens.created, 1)
	})

	t.Run("unknown email and wrong password are indistinguishable", func(t *testing.T) {
		m := &fakeRepoManager{users: &fakeUserRepo{byEmail: map[string]*models.User{"a@b.c": existing}}, tokens: &fakeTokenRepo{}}
		svc, _ := newTestService(t, m)

		_, _, errUnknown := svc.Login(context.Background(), "nobody@b.c", "correct horse")
		_, _, errWrongPw := svc.Login(context.Background(), "a@b.c", "wrong")

		assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
		assert.ErrorIs(t, errWrongPw, ErrInvalidCredentials)
		assert.Equal(t, errUnknown.Error(), errWrongPw.Error())
		assert.Empty(t, m.tokens.created)
	})
}

func TestSessionService_Refresh(t *testing.T) {
	activeToken := func() *models.RefreshToken {
		return &models.RefreshToken{
			ID:        "tok-1",
			UserID:    "user-1",
			TokenHash: auth.HashRefreshSecret("raw-secret"),
			ExpiresAt: time.Now().Add(time.Hour),
			UserRole:  models.RoleUser,
		}
	}

	t.Run("missing token", func(t *testing.T) {
		m := &fakeRepoManager{users: &fakeUserRepo{}, tokens: &fakeTokenRepo{}}
		svc, _ := newTestService(t, m)

		_, err := svc.Refresh(context.Background(), "")
		assert.ErrorIs(t, err, ErrRefreshMissing)
	})

	t.Run("unknown token", func(t *testing.T) {
		m := &fakeRepoManager{users: &fakeUserRepo{}, tokens: &fakeTokenRepo{findErr: common.ErrNotFound}}
		svc, _ := newTestService(t, m)

		_, err := svc.Refresh(context.Background(), "raw-secret")
		assert.ErrorIs(t, err, ErrInvalidRefresh)
		assert.Empty(t, m.tokens.revokedAllUserID)
	})

	t.Run("expired token", func(t *testing.T) {
		tok := activeToken()
		tok.ExpiresAt = time.Now().Add(-time.Minute)
		m := &fakeRepoManager{users: &fakeUserRepo{}, tokens: &fakeTokenRepo{findToken: tok}}
		svc, _ := newTestService(t, m)

		_, err := svc.Refresh(context.Background(), "raw-secret")
		assert.ErrorIs(t, err, ErrInvalidRefresh)
		assert.Empty(t, m.tokens.revokedAllUserID, "expiry is not reuse, no cascade")
	})

	t.Run("revoked token triggers cascade", func(t *testing.T) {
		tok := activeToken()
		revoked := time.Now().Add(-time.Minute)
		tok.RevokedAt = &revoked
		fakeTokens := &fakeTokenRepo{findToken: tok}
		m := &fakeRepoManager{users: &fakeUserRepo{}, tokens: fakeTokens}
		svc, _ := newTestService(t, m)

		_, err := svc.Refresh(context.Background(), "raw-secret")
		assert.ErrorIs(t, err, ErrInvalidRefresh)
		assert.Equal(t, "user-1", fakeTokens.revokedAllUserID)
		assert.Empty(t, fakeTokens.created, "no successor token on reuse")
	})

	t.Run("lost rotation race triggers cascade", func(t *testing.T) {
		fakeTokens := &fakeTokenRepo{findToken: activeToken(), revokeAffected: 0}
		m := &fakeRepoManager{users: &fakeUserRepo{}, tokens: fakeTokens}
		svc, mock := newTestService(t, m)

		mock.ExpectBegin()
		mock.ExpectRollback()

		_, err := svc.Refresh(context.Background(), "raw-secret")
		assert.ErrorIs(t, err, ErrInvalidRefresh)
		assert.Equal(t, "user-1", fakeTokens.revokedAllUserID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("successful rotation", func(t *testing.T) {
		fakeTokens := &fakeTokenRepo{findToken: activeToken(), revokeAffected: 1}
		m := &fakeRepoManager{users: &fakeUserRepo{}, tokens: fakeTokens}
		svc, mock := newTestService(t, m)

		mock.ExpectBegin()
		mock.ExpectCommit()

		pair, err := svc.Refresh(context.Background(), "raw-secret")
		require.NoError(t, err)

		assert.Equal(t, []string{"tok-1"}, fakeTokens.revokedIDs)
		require.Len(t, fakeTokens.created, 1)
		assert.Equal(t, "user-1", fakeTokens.created[0].userID)
		assert.Equal(t, auth.HashRefreshSecret(pair.RefreshToken), fakeTokens.created[0].tokenHash)
		assert.NotEqual(t, "raw-secret", pair.RefreshToken)

		claims, err := auth.ParseAccessToken(pair.AccessToken, []byte(testJWTSecret))
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.UserID)
		assert.Equal(t, string(models.RoleUser), claims.Role)

		assert.Empty(t, fakeTokens.revokedAllUserID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSessionService_Logout(t *testing.T) {
	t.Run("missing token is a no-op", func(t *testing.T) {
		fakeTokens := &fakeTokenRepo{}
		m := &fakeRepoManager{users: &fakeUserRepo{}, tokens: fakeTokens}
		svc, _ := newTestService(t, m)

		require.NoError(t, svc.Logout(context.Background(), ""))
		assert.Empty(t, fakeTokens.revokedHashes)
	})

	t.Run("revokes by hash", func(t *testing.T) {
		fakeTokens := &fakeTokenRepo{}
		m := &fakeRepoManager{users: &fakeUserRepo{}, tokens: fakeTokens}
		svc, _ := newTestService(t, m)

		require.NoError(t, svc.Logout(context.Background(), "raw-secret"))
		assert.Equal(t, []string{auth.HashRefreshSecret("raw-secret")}, fakeTokens.revokedHashes)
	})
}

func TestSessionService_Me(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		m := &fakeRepoManager{
			users:  &fakeUserRepo{byID: map[string]*models.User{"user-1": {ID: "user-1", Email: "a@b.c"}}},
			tokens: &fakeTokenRepo{},
		}
		svc, _ := newTestService(t, m)

		user, err := svc.Me(context.Background(), "user-1")
		require.NoError(t, err)
		assert.Equal(t, "a@b.c", user.Email)
	})

	t.Run("deleted user", func(t *testing.T) {
		m := &fakeRepoManager{users: &fakeUserRepo{byID: map[string]*models.User{}}, tokens: &fakeTokenRepo{}}
		svc, _ := newTestService(t, m)

		_, err := svc.Me(context.Background(), "gone")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}
