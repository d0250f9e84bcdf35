// Package repomanager vends repository implementations bound to a DBTX and
// owns the schema migration hook. Services hand it either the root *sql.DB
// or an in-flight transaction to get repositories scoped accordingly.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/shopcraft/api/internal/dbx"
	"github.com/shopcraft/api/internal/server/repositories/categories"
	"github.com/shopcraft/api/internal/server/repositories/orders"
	"github.com/shopcraft/api/internal/server/repositories/products"
	"github.com/shopcraft/api/internal/server/repositories/refreshtokens"
	"github.com/shopcraft/api/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Products(db dbx.DBTX) products.Repository
	Categories(db dbx.DBTX) categories.Repository
	Orders(db dbx.DBTX) orders.Repository
}
