package clients

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"opsconsole/lib/constants"
)

// NewPostgresSQLClient creates a PostgreSQL client with connection pooling sized for Lambda
func NewPostgresSQLClient(host, port, dbname, user, password, sslMode string) (*sql.DB, error) {
	if sslMode == "" {
		sslMode = "require"
	}
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslMode,
	)
	return NewPostgresSQLClientFromDSN(connStr)
}

// NewPostgresSQLClientFromDSN opens and pings a PostgreSQL connection from a DSN or URL
func NewPostgresSQLClientFromDSN(dsn string) (*sql.DB, error) {
	db, err := sql.Open(constants.DRIVER_NAME, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
