package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopcraft/api/internal/common"
	"github.com/shopcraft/api/internal/server/auth"
	"github.com/shopcraft/api/internal/server/models"
	"github.com/shopcraft/api/internal/server/repositories/orders"
	"github.com/shopcraft/api/internal/server/services"
)

type fakeOrders struct {
	placed     []services.OrderLine
	placedBy   string
	placeErr   error
	order      *models.Order
	myOrders   []models.Order
	listParams orders.ListParams
}

func (f *fakeOrders) Place(ctx context.Context, userID string, lines []services.OrderLine) (*models.Order, error) {
	if f.placeErr != nil {
		return nil, f.placeErr
	}
	f.placedBy = userID
	f.placed = lines
	return f.order, nil
}

func (f *fakeOrders) MyOrders(ctx context.Context, userID string) ([]models.Order, error) {
	return f.myOrders, nil
}

func (f *fakeOrders) List(ctx context.Context, params orders.ListParams) (*services.OrderPage, error) {
	f.listParams = params
	return &services.OrderPage{Orders: f.myOrders, Page: 1, Limit: 20}, nil
}

func (f *fakeOrders) Get(ctx context.Context, id, callerID string, callerRole models.Role) (*models.Order, error) {
	if f.order == nil {
		return nil, services.ErrOrderNotFound
	}
	return f.order, nil
}

func (f *fakeOrders) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	if !models.ValidOrderStatus(status) {
		return nil, services.ErrInvalidStatus
	}
	f.order.Status = status
	return f.order, nil
}

func newOrderRouter(t *testing.T, fake *fakeOrders) http.Handler {
	t.Helper()
	cfg := testConfig()
	logger := testLogger()
	return NewRouter(cfg, logger, Handlers{
		Auth:    NewAuthHandler(&fakeSessions{}, logger, cfg.RefreshTokenTTL(), false),
		Catalog: NewCatalogHandler(&fakeCatalog{}, logger),
		Orders:  NewOrderHandler(fake, logger),
	})
}

func bearer(t *testing.T, userID string, role models.Role) func(*http.Request) {
	t.Helper()
	token, err := auth.SignAccessToken(userID, role, []byte(testSecret), time.Minute)
	require.NoError(t, err)
	return func(r *http.Request) {
		r.Header.Set(common.AuthorizationHeader, "Bearer "+token)
	}
}

func TestOrderHandler_Place(t *testing.T) {
	t.Run("requires authentication", func(t *testing.T) {
		h := newOrderRouter(t, &fakeOrders{})

		w := doJSON(t, h, http.MethodPost, "/api/v1/orders",
			`{"items":[{"productId":"prod-1","quantity":1}]}`, nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("places order for the caller", func(t *testing.T) {
		fake := &fakeOrders{order: &models.Order{
			ID: "order-1", UserID: "user-1", Total: "99.98", Status: models.OrderPending,
			Items: []models.OrderItem{{ProductID: "prod-1", Quantity: 2, Price: "49.99"}},
		}}
		h := newOrderRouter(t, fake)

		w := doJSON(t, h, http.MethodPost, "/api/v1/orders",
			`{"items":[{"productId":"prod-1","quantity":2}]}`, bearer(t, "user-1", models.RoleUser))

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "user-1", fake.placedBy)
		require.Len(t, fake.placed, 1)
		assert.Equal(t, 2, fake.placed[0].Quantity)

		order := decodeBody(t, w)["data"].(map[string]any)["order"].(map[string]any)
		assert.Equal(t, "99.98", order["total"])
		assert.Equal(t, "PENDING", order["status"])
	})

	t.Run("insufficient stock", func(t *testing.T) {
		fake := &fakeOrders{placeErr: common.NewBadRequest("Insufficient stock for Widget")}
		h := newOrderRouter(t, fake)

		w := doJSON(t, h, http.MethodPost, "/api/v1/orders",
			`{"items":[{"productId":"prod-1","quantity":99}]}`, bearer(t, "user-1", models.RoleUser))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Insufficient stock for Widget", decodeBody(t, w)["message"])
	})

	t.Run("rejects empty items", func(t *testing.T) {
		h := newOrderRouter(t, &fakeOrders{})

		w := doJSON(t, h, http.MethodPost, "/api/v1/orders",
			`{"items":[]}`, bearer(t, "user-1", models.RoleUser))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestOrderHandler_AdminRoutes(t *testing.T) {
	t.Run("listing requires admin", func(t *testing.T) {
		h := newOrderRouter(t, &fakeOrders{})

		w := doJSON(t, h, http.MethodGet, "/api/v1/orders", "", bearer(t, "user-1", models.RoleUser))

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "Insufficient permissions", decodeBody(t, w)["message"])
	})

	t.Run("admin filters are forwarded", func(t *testing.T) {
		fake := &fakeOrders{}
		h := newOrderRouter(t, fake)

		w := doJSON(t, h, http.MethodGet, "/api/v1/orders?status=PAID&userId=user-2", "",
			bearer(t, "admin-1", models.RoleAdmin))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, models.OrderPaid, fake.listParams.Status)
		assert.Equal(t, "user-2", fake.listParams.UserID)
	})

	t.Run("status update requires admin", func(t *testing.T) {
		fake := &fakeOrders{order: &models.Order{ID: "order-1", Status: models.OrderPending}}
		h := newOrderRouter(t, fake)

		forbidden := doJSON(t, h, http.MethodPatch, "/api/v1/orders/order-1/status",
			`{"status":"SHIPPED"}`, bearer(t, "user-1", models.RoleUser))
		assert.Equal(t, http.StatusForbidden, forbidden.Code)

		ok := doJSON(t, h, http.MethodPatch, "/api/v1/orders/order-1/status",
			`{"status":"SHIPPED"}`, bearer(t, "admin-1", models.RoleAdmin))
		assert.Equal(t, http.StatusOK, ok.Code)
		order := decodeBody(t, ok)["data"].(map[string]any)["order"].(map[string]any)
		assert.Equal(t, "SHIPPED", order["status"])
	})
}
