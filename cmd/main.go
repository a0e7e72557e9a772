// Package main provides the CLI entry point for the data file loader
// This tool provides two main commands:
// 1. load - Parse pipe-delimited data files and store them in SQLite tables
// 2. query - Execute SQL queries against the loaded data
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"datafile-loader/internal/commands"
)

func main() {
	// Root command defines the base command when called without any subcommands
	var rootCmd = &cobra.Command{
		Use:   "datafile-loader",
		Short: "A CLI tool for loading delimited data files into SQLite",
		Long: `Data File Loader ingests a directory of pipe-delimited text files into a
SQLite database, one table per file, inferring each column's storage type
from the values it actually contains.

Step 1: Load the files with the load command
Step 2: Execute SQL queries against the resulting tables with the query command

Columns holding only digits become integers sized to their widest value,
decimal columns become floats, YYYY-MM-DD columns become dates, and anything
else becomes a bounded text type. Mixed or malformed data never aborts a
load: the affected column simply degrades to text.`,
	}

	// Add subcommands
	rootCmd.AddCommand(commands.NewLoadCommand())
	rootCmd.AddCommand(commands.NewQueryCommand())

	// Execute the root command
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}
