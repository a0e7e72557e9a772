// Package commands implements the CLI commands for the data file loader
package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"datafile-loader/internal/config"
	"datafile-loader/internal/database"
	"datafile-loader/internal/inference"
	"datafile-loader/internal/parser"
)

// NewLoadCommand creates the 'load' subcommand for importing data files into SQLite
// Usage: datafile-loader load --dir ./data [--db datafiles.db] [--ext .txt] [--workers 4]
func NewLoadCommand() *cobra.Command {
	var sourceDir string
	var dbFile string
	var extension string
	var workers int

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load pipe-delimited data files into a SQLite database",
		Long: `Scan a directory for pipe-delimited text files and load each one into its
own database table, inferring every column's storage type from the data.

Each file's first line names its columns; every following line is one record,
with empty fields stored as NULL. The file name minus its extension becomes
the table name. Any existing table with that name is replaced.

Column types are inferred from the values actually seen: all-digit columns
become integers sized by their widest value, decimal columns become floats,
YYYY-MM-DD columns become dates, and anything mixed or textual becomes a
bounded text type. A file that fails to load is reported and skipped; the
rest of the run continues.

Example:
  datafile-loader load --dir ./data --db datafiles.db
  datafile-loader load --dir ./exports --ext .dat --workers 8`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoadCommand(sourceDir, dbFile, extension, workers)
		},
	}

	// Define command flags
	cmd.Flags().StringVarP(&sourceDir, "dir", "i", "", "Directory containing data files (required)")
	cmd.Flags().StringVarP(&dbFile, "db", "d", config.DefaultDatabaseFile, config.DatabaseFileDescription)
	cmd.Flags().StringVar(&extension, "ext", config.DefaultFileExtension, "Data file extension to load")
	cmd.Flags().IntVar(&workers, "workers", config.DefaultWorkerCount, "Number of files to load concurrently")
	cmd.MarkFlagRequired("dir")

	return cmd
}

// runLoadCommand executes the directory loading logic
func runLoadCommand(sourceDir, dbFile, extension string, workers int) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	files, err := listDataFiles(sourceDir, extension)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no %s files found in directory: %s", extension, sourceDir)
	}

	db, err := database.Initialize(dbFile)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	logger.Info("starting load",
		"directory", sourceDir,
		"database", dbFile,
		"files", len(files))

	// Files load independently: a failure aborts that file only. The counter
	// tracks failures so the run can exit non-zero when nothing loaded.
	var failed atomic.Int64

	if workers < 1 {
		workers = 1
	}
	var group errgroup.Group
	group.SetLimit(workers)

	for _, file := range files {
		file := file
		group.Go(func() error {
			table := tableNameFor(file)
			count, err := loadFile(db, file, table)
			if err != nil {
				failed.Add(1)
				logger.Error("failed to load file",
					"file", file,
					"table", table,
					"error", err)
				return nil
			}
			logger.Info("loaded file",
				"file", file,
				"table", table,
				"rows", count)
			return nil
		})
	}
	group.Wait()

	if n := failed.Load(); n == int64(len(files)) {
		return fmt.Errorf("all %d files failed to load", n)
	} else if n > 0 {
		logger.Warn("load finished with failures",
			"loaded", int64(len(files))-n,
			"failed", n)
	}

	return nil
}

// loadFile runs the full pipeline for one data file: read every row, infer
// the column types, replace the destination table, insert the buffered rows.
// Every row is observed before types are resolved; the rows are then replayed
// for insertion.
func loadFile(db database.DB, path, table string) (int64, error) {
	headers, rows, err := parser.ReadFile(path)
	if err != nil {
		return 0, err
	}

	schema := inference.NewSchema(table, headers)
	for _, row := range rows {
		schema.Observe(row)
	}

	if err := database.ReplaceTable(db, schema); err != nil {
		return 0, err
	}

	// A file with a header but no data rows still gets its (empty) table
	return database.InsertRows(db, schema, rows)
}

// listDataFiles returns the paths of all files in dir with the given
// extension, sorted by name
func listDataFiles(dir, extension string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read source directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), extension) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// tableNameFor derives the destination table name from a file path:
// base name minus extension, sanitized into a SQL identifier
func tableNameFor(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return inference.SanitizeIdentifier(base)
}
