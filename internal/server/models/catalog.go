package models

import "time"

// Category groups products for browsing.
type Category struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Product is a catalog item. Price is kept as a decimal string to avoid
// floating-point drift between the database and responses.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       string
	Stock       int
	CategoryID  *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
