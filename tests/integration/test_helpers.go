//go:build integration
// +build integration

package integration

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/testcontainers/testcontainers-go"
	mysqltest "github.com/testcontainers/testcontainers-go/modules/mysql"
	"github.com/tordrt/migrationgen"
)

const testDatabase = "migrationgen"

// fixtureSchema is applied to a fresh database before the tests run
var fixtureSchema = []string{
	`CREATE TABLE users (
		id INT AUTO_INCREMENT PRIMARY KEY,
		email VARCHAR(255) NOT NULL UNIQUE,
		status ENUM('a','b') NOT NULL DEFAULT 'a',
		nickname VARCHAR(50) NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE orders (
		id INT AUTO_INCREMENT PRIMARY KEY,
		order_id INT NOT NULL,
		item_id INT NOT NULL,
		quantity INT UNSIGNED NOT NULL DEFAULT 1,
		UNIQUE KEY ux_order_item (order_id, item_id)
	)`,
	`CREATE TABLE pairs (
		id INT AUTO_INCREMENT PRIMARY KEY,
		a INT NOT NULL,
		b INT NOT NULL,
		c INT NOT NULL,
		d INT NOT NULL,
		UNIQUE KEY z_pair (a, b),
		UNIQUE KEY a_pair (c, d)
	)`,
	`CREATE VIEW active_users AS SELECT id, email FROM users`,
}

// startMySQL returns the configuration of a database loaded with
// fixtureSchema. MYSQL_TEST_DSN points the tests at an existing empty
// database; otherwise a MySQL container is started.
func startMySQL(t *testing.T) *mysql.Config {
	t.Helper()
	ctx := context.Background()

	dsn := os.Getenv("MYSQL_TEST_DSN")
	if dsn == "" {
		container, err := mysqltest.Run(ctx,
			"mysql:8.0.35",
			mysqltest.WithDatabase(testDatabase),
			mysqltest.WithUsername("root"),
			mysqltest.WithPassword("password"),
		)
		t.Cleanup(func() {
			if err := testcontainers.TerminateContainer(container); err != nil {
				fmt.Printf("failed to terminate MySQL container: %v\n", err)
			}
		})
		if err != nil {
			t.Fatalf("failed to start container: %v", err)
		}

		dsn, err = container.ConnectionString(ctx, "tls=skip-verify")
		if err != nil {
			t.Fatalf("failed to get connection string: %v", err)
		}
	}

	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		t.Fatalf("could not parse dsn: %v", err)
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("could not connect to db: %v", err)
	}
	defer db.Close()

	for _, stmt := range fixtureSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			t.Fatalf("failed to apply fixture %q: %v", strings.SplitN(stmt, "\n", 2)[0], err)
		}
	}

	return cfg
}

// optionsFor converts a driver configuration into generation options
func optionsFor(t *testing.T, cfg *mysql.Config) *migrationgen.Options {
	t.Helper()

	host, portStr, err := net.SplitHostPort(cfg.Addr)
	if err != nil {
		t.Fatalf("invalid address %s: %v", cfg.Addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("invalid port %s: %v", portStr, err)
	}

	return &migrationgen.Options{
		Username: cfg.User,
		Password: cfg.Passwd,
		Host:     host,
		Port:     port,
		Database: cfg.DBName,
	}
}

// verifyContains checks that every snippet appears in the artifact
func verifyContains(t *testing.T, name, content string, snippets ...string) {
	t.Helper()

	for _, snippet := range snippets {
		if !strings.Contains(content, snippet) {
			t.Errorf("Expected %s to contain %q, got:\n%s", name, snippet, content)
		}
	}
}

// verifyNotContains checks that no snippet appears in the artifact
func verifyNotContains(t *testing.T, name, content string, snippets ...string) {
	t.Helper()

	for _, snippet := range snippets {
		if strings.Contains(content, snippet) {
			t.Errorf("Expected %s not to contain %q, got:\n%s", name, snippet, content)
		}
	}
}

// verifyInOrder checks that the snippets appear in the artifact in the given order
func verifyInOrder(t *testing.T, name, content string, snippets ...string) {
	t.Helper()

	last := -1
	for _, snippet := range snippets {
		idx := strings.Index(content, snippet)
		if idx == -1 {
			t.Errorf("Expected %s to contain %q, got:\n%s", name, snippet, content)
			return
		}
		if idx < last {
			t.Errorf("Expected %q to appear after the previous snippet in %s, got:\n%s", snippet, name, content)
		}
		last = idx
	}
}
