// Package config provides shared configuration constants and settings
// for the data file loader application
package config

const (
	// DefaultDatabaseFile is the default SQLite database filename
	// used by both load and query commands when no --db flag is provided
	DefaultDatabaseFile = "datafiles.db"

	// DatabaseFileDescription is the help text description for the database file flag
	DatabaseFileDescription = "Path to SQLite database file"

	// FieldDelimiter separates fields within a data file line
	FieldDelimiter = '|'

	// DefaultFileExtension selects which files in the source directory are
	// loaded. A file's name minus this extension becomes its table name.
	DefaultFileExtension = ".txt"

	// DefaultWorkerCount bounds how many files are loaded concurrently
	DefaultWorkerCount = 4
)
