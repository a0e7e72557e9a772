// Package database provides SQLite operations for the data file loader
package database

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"datafile-loader/internal/inference"
	"datafile-loader/internal/parser"
)

// DB interface defines database operations for easier testing and extensibility
// This interface could be extended to support other database backends (PostgreSQL, MySQL, etc.)
type DB interface {
	Close() error
	Query(query string, args ...interface{}) (*sql.Rows, error)
	Exec(query string, args ...interface{}) (sql.Result, error)
	Begin() (*sql.Tx, error)
}

// sqliteDB implements the DB interface for SQLite
type sqliteDB struct {
	*sql.DB
}

// Initialize creates a new SQLite database connection.
// Creates the database file if it doesn't exist.
func Initialize(dbPath string) (DB, error) {
	sqlDB, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows one writer at a time; a single pooled connection keeps
	// concurrent loaders from tripping over SQLITE_BUSY and keeps :memory:
	// databases on one connection
	sqlDB.SetMaxOpenConns(1)

	db := &sqliteDB{sqlDB}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// ReplaceTable drops any pre-existing table with the schema's name and
// creates a fresh one from the resolved column types. SQLite's type affinity
// accepts the resolved names (TINYINT, VARCHAR(50), DATE, ...) directly.
func ReplaceTable(db DB, schema *inference.Schema) error {
	if _, err := db.Exec(schema.DropTableSQL()); err != nil {
		return fmt.Errorf("failed to drop existing table: %w", err)
	}
	if _, err := db.Exec(schema.CreateTableSQL()); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

// InsertRows inserts every buffered row into the schema's table using a
// parameterized statement inside a single transaction. An absent or empty
// field binds SQL NULL. Returns the number of rows inserted.
func InsertRows(db DB, schema *inference.Schema, rows []parser.Row) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	resolved := schema.Resolve()
	names := make([]string, len(resolved))
	placeholders := make([]string, len(resolved))
	for i, col := range resolved {
		names[i] = col.Name
		placeholders[i] = "?"
	}

	insertSQL := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		inference.SanitizeIdentifier(schema.Table),
		strings.Join(names, ", "),
		strings.Join(placeholders, ", "))

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.Prepare(insertSQL)
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	var insertedCount int64
	args := make([]interface{}, len(schema.Columns))
	for _, row := range rows {
		for i, column := range schema.Columns {
			if row.IsNull(column) {
				args[i] = nil
			} else {
				args[i] = row[column]
			}
		}
		if _, err := stmt.Exec(args...); err != nil {
			tx.Rollback()
			return insertedCount, fmt.Errorf("failed to insert row: %w", err)
		}
		insertedCount++
	}

	if err := tx.Commit(); err != nil {
		return insertedCount, fmt.Errorf("failed to commit inserts: %w", err)
	}

	return insertedCount, nil
}

// ExecuteQuery executes a SQL query and returns results as a slice of maps
// This generic approach allows for flexible query results without predefined structs
func ExecuteQuery(db DB, query string) ([]map[string]interface{}, error) {
	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("query execution failed: %w", err)
	}
	defer rows.Close()

	// Get column names
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	var results []map[string]interface{}

	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))

		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		// Handle NULL values and convert byte slices to strings
		row := make(map[string]interface{})
		for i, column := range columns {
			val := values[i]
			if b, ok := val.([]byte); ok {
				val = string(b)
			}
			row[column] = val
		}

		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}

	return results, nil
}
