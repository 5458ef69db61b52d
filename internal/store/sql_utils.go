package store

import (
	"fmt"
	"regexp"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/go-sql-driver/mysql"
	"github.com/supplelab/tierank/schema"
)

// tableNamePattern is the set of identifiers accepted as table names.
var tableNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// validateTableName validates that the table name is a safe SQL identifier.
// It ensures the name consists only of alphanumeric characters and underscores,
// starting with a letter or underscore, to prevent SQL injection.
func validateTableName(name string) error {
	if name == "" {
		return fmt.Errorf("table name cannot be empty")
	}
	if !tableNamePattern.MatchString(name) {
		return fmt.Errorf("invalid table name: %s (must match pattern ^[a-zA-Z_][a-zA-Z0-9_]*$)", name)
	}
	return nil
}

// quoteTableName returns the properly quoted table name for the given backend.
func quoteTableName(name string, backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf("`%s`", name)
	default: // SQLite and PostgreSQL
		return fmt.Sprintf("\"%s\"", name)
	}
}

// statementBuilder returns a squirrel builder using the placeholder style of the backend.
func statementBuilder(backend schema.DatabaseBackend) sq.StatementBuilderType {
	if backend == schema.PostgreSQLBackend {
		return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}
	return sq.StatementBuilder.PlaceholderFormat(sq.Question)
}

// formatTime converts a time.Time to the appropriate format for the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	switch backend {
	case schema.SQLiteBackend:
		return t.UTC().Format(time.RFC3339Nano)
	default:
		return t
	}
}

// parseTime reads a SQLite time column written by formatTime.
func parseTime(value string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, value)
}

// driverName returns the database/sql driver registered for the backend.
func driverName(backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return "mysql"
	case schema.PostgreSQLBackend:
		return "pgx"
	default:
		return "sqlite"
	}
}

// connectionDetail returns a hint shown when a backend cannot be reached.
func connectionDetail(backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return "Check that MySQL is running and the connection string is correct. Ensure user/password are valid."
	case schema.PostgreSQLBackend:
		return "Check that PostgreSQL is running and the connection string is correct. Ensure user/password are valid."
	default:
		return "Verify the database file is writable."
	}
}

// withParseTime enables DATETIME scanning into time.Time for a MySQL DSN.
func withParseTime(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("invalid MySQL connection string: %w. Check connection format: user:password@tcp(host:port)/dbname", err)
	}
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}
