package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shopcraft/api/internal/logging"
	"github.com/shopcraft/api/internal/server/models"
	"github.com/shopcraft/api/internal/server/repositories/orders"
	"github.com/shopcraft/api/internal/server/services"
)

// OrderService is the slice of the order service the handlers use.
type OrderService interface {
	Place(ctx context.Context, userID string, lines []services.OrderLine) (*models.Order, error)
	MyOrders(ctx context.Context, userID string) ([]models.Order, error)
	List(ctx context.Context, params orders.ListParams) (*services.OrderPage, error)
	Get(ctx context.Context, id, callerID string, callerRole models.Role) (*models.Order, error)
	UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error)
}

// OrderHandler serves the /orders endpoints.
type OrderHandler struct {
	orders OrderService
	logger logging.Logger
}

func NewOrderHandler(orders OrderService, logger logging.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, logger: logger}
}

type orderItemPayload struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
}

type orderPayload struct {
	ID        string             `json:"id"`
	UserID    string             `json:"userId"`
	Total     string             `json:"total"`
	Status    string             `json:"status"`
	CreatedAt time.Time          `json:"createdAt"`
	Items     []orderItemPayload `json:"items"`
}

func toOrderPayload(o *models.Order) orderPayload {
	items := make([]orderItemPayload, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemPayload{ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price})
	}
	return orderPayload{
		ID:        o.ID,
		UserID:    o.UserID,
		Total:     o.Total,
		Status:    string(o.Status),
		CreatedAt: o.CreatedAt,
		Items:     items,
	}
}

func toOrderPayloads(list []models.Order) []orderPayload {
	out := make([]orderPayload, 0, len(list))
	for i := range list {
		out = append(out, toOrderPayload(&list[i]))
	}
	return out
}

type placeOrderRequest struct {
	Items []struct {
		ProductID string `json:"productId" binding:"required"`
		Quantity  int    `json:"quantity" binding:"required,min=1"`
	} `json:"items" binding:"required,min=1,dive"`
}

func (h *OrderHandler) Place(c *gin.Context) {
	var req placeOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	lines := make([]services.OrderLine, 0, len(req.Items))
	for _, it := range req.Items {
		lines = append(lines, services.OrderLine{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	order, err := h.orders.Place(c.Request.Context(), callerID(c), lines)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{"order": toOrderPayload(order)})
}

func (h *OrderHandler) MyOrders(c *gin.Context) {
	list, err := h.orders.MyOrders(c.Request.Context(), callerID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"orders": toOrderPayloads(list)})
}

func (h *OrderHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	result, err := h.orders.List(c.Request.Context(), orders.ListParams{
		Page:   page,
		Limit:  limit,
		UserID: c.Query("userId"),
		Status: models.OrderStatus(c.Query("status")),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, gin.H{
		"orders": toOrderPayloads(result.Orders),
		"page":   result.Page,
		"limit":  result.Limit,
		"total":  result.Total,
	})
}

func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.orders.Get(c.Request.Context(), c.Param("id"), callerID(c), callerRole(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"order": toOrderPayload(order)})
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.orders.UpdateStatus(c.Request.Context(), c.Param("id"), models.OrderStatus(req.Status))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"order": toOrderPayload(order)})
}
