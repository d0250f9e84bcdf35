package services

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"

	"github.com/shopcraft/api/internal/common"
	"github.com/shopcraft/api/internal/logging"
	"github.com/shopcraft/api/internal/server/models"
	"github.com/shopcraft/api/internal/server/repositories/products"
	"github.com/shopcraft/api/internal/server/repositories/repomanager"
)

var (
	ErrProductNotFound = common.NewNotFound("Product not found")
	ErrCategoryExists  = common.NewConflict("Category already exists")
	ErrInvalidProduct  = common.NewBadRequest("Validation failed")
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// priceRe accepts a non-negative decimal with at most two fraction digits,
// matching the numeric(10,2) column.
var priceRe = regexp.MustCompile(`^\d{1,8}(\.\d{1,2})?$`)

// ProductPage is one page of the catalog listing.
type ProductPage struct {
	Products []models.Product
	Page     int
	Limit    int
	Total    int64
}

// CatalogService serves product and category reads plus the admin-only
// writes. It holds no state beyond its repositories.
type CatalogService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewCatalogService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *CatalogService {
	return &CatalogService{
		db:          db,
		repomanager: m,
		logger:      logger.With("component", "catalog"),
	}
}

// ListProducts returns one page of products. Out-of-range paging values are
// clamped rather than rejected; an unknown sort column falls back to
// creation time.
func (s *CatalogService) ListProducts(ctx context.Context, params products.ListParams) (*ProductPage, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 {
		params.Limit = defaultPageLimit
	}
	if params.Limit > maxPageLimit {
		params.Limit = maxPageLimit
	}
	switch params.Sort {
	case "price", "name", "createdAt":
	default:
		params.Sort = "createdAt"
	}
	if !strings.EqualFold(params.Order, "asc") {
		params.Order = "desc"
	}

	items, total, err := s.repomanager.Products(s.db).List(ctx, params)
	if err != nil {
		return nil, common.NewInternal(err)
	}
	return &ProductPage{Products: items, Page: params.Page, Limit: params.Limit, Total: total}, nil
}

// GetProduct returns one product by ID.
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.repomanager.Products(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, common.NewInternal(err)
	}
	return product, nil
}

// CreateProduct validates and inserts a new catalog item.
func (s *CatalogService) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if strings.TrimSpace(product.Name) == "" || !priceRe.MatchString(product.Price) || product.Stock < 0 {
		return nil, ErrInvalidProduct
	}

	created, err := s.repomanager.Products(s.db).Create(ctx, product)
	if err != nil {
		return nil, common.NewInternal(err)
	}
	s.logger.Info(ctx, "product created", "productID", created.ID)
	return created, nil
}

// ListCategories returns all categories ordered by name.
func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	cats, err := s.repomanager.Categories(s.db).List(ctx)
	if err != nil {
		return nil, common.NewInternal(err)
	}
	return cats, nil
}

// CreateCategory inserts a new category. Duplicate names conflict.
func (s *CatalogService) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidProduct
	}

	cat, err := s.repomanager.Categories(s.db).Create(ctx, name)
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, ErrCategoryExists
		}
		return nil, common.NewInternal(err)
	}
	return cat, nil
}
