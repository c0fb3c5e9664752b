package repository

import (
	"database/sql"

	"github.com/Masterminds/squirrel"
)

// PostgreSQLInventoryRepository reads inventory rows from PostgreSQL.
type PostgreSQLInventoryRepository struct {
	sqlInventoryRepository
}

// NewPostgreSQLInventoryRepository creates a PostgreSQL inventory repository.
func NewPostgreSQLInventoryRepository(db *sql.DB) *PostgreSQLInventoryRepository {
	return &PostgreSQLInventoryRepository{sqlInventoryRepository{
		db:      db,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}}
}
