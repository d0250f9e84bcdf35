package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shopcraft/api/internal/logging"
	"github.com/shopcraft/api/internal/server/models"
	"github.com/shopcraft/api/internal/server/repositories/products"
	"github.com/shopcraft/api/internal/server/services"
)

// CatalogService is the slice of the catalog service the handlers use.
type CatalogService interface {
	ListProducts(ctx context.Context, params products.ListParams) (*services.ProductPage, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, name string) (*models.Category, error)
}

// CatalogHandler serves product and category endpoints.
type CatalogHandler struct {
	catalog CatalogService
	logger  logging.Logger
}

func NewCatalogHandler(catalog CatalogService, logger logging.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, logger: logger}
}

type productPayload struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       string  `json:"price"`
	Stock       int     `json:"stock"`
	CategoryID  *string `json:"categoryId,omitempty"`
}

func toProductPayload(p *models.Product) productPayload {
	return productPayload{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		CategoryID:  p.CategoryID,
	}
}

func (h *CatalogHandler) ListProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	result, err := h.catalog.ListProducts(c.Request.Context(), products.ListParams{
		Page:  page,
		Limit: limit,
		Query: c.Query("q"),
		Sort:  c.Query("sort"),
		Order: c.Query("order"),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	items := make([]productPayload, 0, len(result.Products))
	for i := range result.Products {
		items = append(items, toProductPayload(&result.Products[i]))
	}
	totalPages := result.Total / int64(result.Limit)
	if result.Total%int64(result.Limit) != 0 {
		totalPages++
	}
	respond(c, http.StatusOK, gin.H{
		"products":   items,
		"page":       result.Page,
		"limit":      result.Limit,
		"total":      result.Total,
		"totalPages": totalPages,
	})
}

func (h *CatalogHandler) GetProduct(c *gin.Context) {
	product, err := h.catalog.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"product": toProductPayload(product)})
}

type createProductRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       string  `json:"price" binding:"required"`
	Stock       int     `json:"stock" binding:"min=0"`
	CategoryID  *string `json:"categoryId"`
}

func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req createProductRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.catalog.CreateProduct(c.Request.Context(), &models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{"product": toProductPayload(product)})
}

type categoryPayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (h *CatalogHandler) ListCategories(c *gin.Context) {
	cats, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	items := make([]categoryPayload, 0, len(cats))
	for _, cat := range cats {
		items = append(items, categoryPayload{ID: cat.ID, Name: cat.Name})
	}
	respond(c, http.StatusOK, gin.H{"categories": items})
}

type createCategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req createCategoryRequest
	if !bindJSON(c, &req) {
		return
	}

	cat, err := h.catalog.CreateCategory(c.Request.Context(), req.Name)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{"category": categoryPayload{ID: cat.ID, Name: cat.Name}})
}
