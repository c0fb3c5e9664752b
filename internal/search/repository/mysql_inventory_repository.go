package repository

import (
	"database/sql"

	"github.com/Masterminds/squirrel"
)

// MySQLInventoryRepository reads inventory rows from MySQL. The DSN must set
// parseTime=true so timestamps scan into time.Time.
type MySQLInventoryRepository struct {
	sqlInventoryRepository
}

// NewMySQLInventoryRepository creates a MySQL inventory repository.
func NewMySQLInventoryRepository(db *sql.DB) *MySQLInventoryRepository {
	return &MySQLInventoryRepository{sqlInventoryRepository{
		db:      db,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}}
}
