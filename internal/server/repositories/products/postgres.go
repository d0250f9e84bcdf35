package products

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/shopcraft/api/internal/common"
	"github.com/shopcraft/api/internal/dbx"
	"github.com/shopcraft/api/internal/server/models"
)

// sortColumns whitelists the ORDER BY targets; anything else falls back to
// created_at so request parameters never reach the SQL text.
var sortColumns = map[string]string{
	"createdAt": "created_at",
	"price":     "price",
	"name":      "name",
}

// PostgresRepository implements Repository over dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	query := `
		INSERT INTO products (id, name, description, price, stock, category_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`
	product.ID = uuid.NewString()
	var categoryID sql.NullString
	if product.CategoryID != nil {
		categoryID = sql.NullString{String: *product.CategoryID, Valid: true}
	}
	err := r.db.QueryRowContext(ctx, query,
		product.ID, product.Name, product.Description, product.Price, product.Stock, categoryID).
		Scan(&product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return product, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	query := `
		SELECT id, name, description, price, stock, category_id, created_at, updated_at
		FROM products
		WHERE id = $1
	`
	product := &models.Product{}
	var categoryID sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&product.ID, &product.Name, &product.Description, &product.Price,
		&product.Stock, &categoryID, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if categoryID.Valid {
		product.CategoryID = &categoryID.String
	}
	return product, nil
}

func (r *PostgresRepository) List(ctx context.Context, params ListParams) ([]models.Product, int64, error) {
	where := ""
	args := []any{}
	if params.Query != "" {
		where = "WHERE name ILIKE $1 OR description ILIKE $1"
		args = append(args, "%"+params.Query+"%")
	}

	var total int64
	countQuery := "SELECT COUNT(*) FROM products " + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	column, ok := sortColumns[params.Sort]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if params.Order == "asc" {
		direction = "ASC"
	}

	offset := (params.Page - 1) * params.Limit
	query := fmt.Sprintf(`
		SELECT id, name, description, price, stock, category_id, created_at, updated_at
		FROM products %s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, where, column, direction, len(args)+1, len(args)+2)
	args = append(args, params.Limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	items := []models.Product{}
	for rows.Next() {
		var product models.Product
		var categoryID sql.NullString
		if err := rows.Scan(&product.ID, &product.Name, &product.Description, &product.Price,
			&product.Stock, &categoryID, &product.CreatedAt, &product.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("db error: %w", err)
		}
		if categoryID.Valid {
			product.CategoryID = &categoryID.String
		}
		items = append(items, product)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	return items, total, nil
}

func (r *PostgresRepository) DecrementStock(ctx context.Context, id string, quantity int) (int64, error) {
	query := `
		UPDATE products
		SET stock = stock - $2, updated_at = now()
		WHERE id = $1 AND stock >= $2
	`
	res, err := r.db.ExecContext(ctx, query, id, quantity)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return affected, nil
}
