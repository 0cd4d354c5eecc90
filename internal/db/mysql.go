package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

// MySQLClient owns the single MySQL session used by a generation run.
//
// The pool is capped at one connection and that connection is pinned for the
// lifetime of the client, so every catalog query of a run travels over the
// same session in sequence.
type MySQLClient struct {
	db   *sql.DB
	conn *sql.Conn
}

// NewMySQLClient opens the database described by cfg and pins one session
func NewMySQLClient(ctx context.Context, cfg *mysql.Config) (*MySQLClient, error) {
	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to configure connector: %w", err)
	}

	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(1)

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to acquire session: %w", err)
	}

	return &MySQLClient{db: db, conn: conn}, nil
}

// Close releases the pinned session and closes the pool
func (c *MySQLClient) Close() error {
	return errors.Join(c.conn.Close(), c.db.Close())
}

// GetConn returns the pinned session
func (c *MySQLClient) GetConn() *sql.Conn {
	return c.conn
}
