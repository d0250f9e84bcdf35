package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopcraft/api/internal/common"
	"github.com/shopcraft/api/internal/dbx"
	"github.com/shopcraft/api/internal/logging"
	"github.com/shopcraft/api/internal/server/metrics"
	"github.com/shopcraft/api/internal/server/models"
	"github.com/shopcraft/api/internal/server/repositories/orders"
	"github.com/shopcraft/api/internal/server/repositories/repomanager"
)

var (
	ErrOrderNotFound  = common.NewNotFound("Order not found")
	ErrEmptyOrder     = common.NewBadRequest("Order must contain at least one item")
	ErrInvalidStatus  = common.NewBadRequest("Invalid order status")
	ErrForbiddenOrder = common.NewForbidden("Insufficient permissions")
)

// stockError aborts the placement transaction for the line that failed the
// conditional decrement; the name surfaces in the response.
type stockError struct{ name string }

func (e *stockError) Error() string { return "insufficient stock for " + e.name }

// OrderLine is one requested product line in a placement request.
type OrderLine struct {
	ProductID string
	Quantity  int
}

// OrderPage is one page of the admin order listing.
type OrderPage struct {
	Orders []models.Order
	Page   int
	Limit  int
	Total  int64
}

// OrderService places orders and serves order reads. Placement reserves
// stock and writes the order in one transaction, so a failed line item never
// leaks a partial decrement.
type OrderService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewOrderService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *OrderService {
	return &OrderService{
		db:          db,
		repomanager: m,
		logger:      logger.With("component", "orders"),
	}
}

// Place creates an order for userID. Each line decrements the product's
// stock with an update conditioned on enough stock remaining; a line that
// loses that check aborts the whole transaction. Prices are captured from
// the product rows at placement time.
func (s *OrderService) Place(ctx context.Context, userID string, lines []OrderLine) (*models.Order, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyOrder
	}
	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, common.NewBadRequest("Validation failed")
		}
	}

	var order *models.Order
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		productRepo := s.repomanager.Products(tx)

		items := make([]models.OrderItem, 0, len(lines))
		for _, line := range lines {
			product, err := productRepo.GetByID(ctx, line.ProductID)
			if err != nil {
				if errors.Is(err, common.ErrNotFound) {
					return &stockError{name: "product " + line.ProductID}
				}
				return err
			}

			affected, err := productRepo.DecrementStock(ctx, product.ID, line.Quantity)
			if err != nil {
				return err
			}
			if affected != 1 {
				return &stockError{name: product.Name}
			}

			items = append(items, models.OrderItem{
				ProductID: product.ID,
				Quantity:  line.Quantity,
				Price:     product.Price,
			})
		}

		created, err := s.repomanager.Orders(tx).CreateWithItems(ctx, userID, items)
		if err != nil {
			return err
		}
		order = created
		return nil
	})
	if err != nil {
		var se *stockError
		if errors.As(err, &se) {
			return nil, common.NewBadRequest("Insufficient stock for " + se.name)
		}
		return nil, common.NewInternal(err)
	}

	metrics.OrdersPlaced.Inc()
	s.logger.Info(ctx, "order placed", "orderID", order.ID, "userID", userID, "total", order.Total)
	return order, nil
}

// MyOrders returns the caller's orders, newest first.
func (s *OrderService) MyOrders(ctx context.Context, userID string) ([]models.Order, error) {
	result, err := s.repomanager.Orders(s.db).FindByUser(ctx, userID)
	if err != nil {
		return nil, common.NewInternal(err)
	}
	return result, nil
}

// List returns one page of all orders, optionally filtered by user and
// status. Admin only; the handler enforces the role.
func (s *OrderService) List(ctx context.Context, params orders.ListParams) (*OrderPage, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 {
		params.Limit = defaultPageLimit
	}
	if params.Limit > maxPageLimit {
		params.Limit = maxPageLimit
	}
	if params.Status != "" && !models.ValidOrderStatus(params.Status) {
		return nil, ErrInvalidStatus
	}

	result, total, err := s.repomanager.Orders(s.db).List(ctx, params)
	if err != nil {
		return nil, common.NewInternal(err)
	}
	return &OrderPage{Orders: result, Page: params.Page, Limit: params.Limit, Total: total}, nil
}

// Get returns one order. Non-admin callers may only read their own orders;
// another user's order reports not-found rather than forbidden, so IDs do
// not leak.
func (s *OrderService) Get(ctx context.Context, id, callerID string, callerRole models.Role) (*models.Order, error) {
	order, err := s.repomanager.Orders(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, common.NewInternal(err)
	}
	if callerRole != models.RoleAdmin && order.UserID != callerID {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// UpdateStatus moves an order to a new fulfillment status. Admin only.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	if !models.ValidOrderStatus(status) {
		return nil, ErrInvalidStatus
	}

	order, err := s.repomanager.Orders(s.db).UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, common.NewInternal(err)
	}
	s.logger.Info(ctx, "order status updated", "orderID", id, "status", string(status))
	return order, nil
}
