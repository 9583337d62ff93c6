// Package repomanager wires table repositories to a database handle. The
// handle is passed per call as a dbx.DBTX so services can run several
// repositories inside one transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/mkravec/rastlinka/internal/dbx"
	"github.com/mkravec/rastlinka/internal/server/repositories/orders"
	"github.com/mkravec/rastlinka/internal/server/repositories/products"
	"github.com/mkravec/rastlinka/internal/server/repositories/reviews"
	"github.com/mkravec/rastlinka/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Products(db dbx.DBTX) products.Repository
	Orders(db dbx.DBTX) orders.Repository
	Reviews(db dbx.DBTX) reviews.Repository
}
