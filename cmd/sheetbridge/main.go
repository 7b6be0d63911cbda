// ABOUTME: Entry point for the sheetbridge import service.
// ABOUTME: Wires together store, fetch client, and HTTP server with CLI commands.

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fieldkit/sheetbridge/internal/config"
	"github.com/fieldkit/sheetbridge/internal/fetch"
	"github.com/fieldkit/sheetbridge/internal/seed"
	"github.com/fieldkit/sheetbridge/internal/server"
	"github.com/fieldkit/sheetbridge/internal/store"
)

var (
	port    string
	dbPath  string
	seedDir string
	numRows int
	numCols int
)

func main() {
	env := config.LoadEnv()

	rootCmd := &cobra.Command{
		Use:   "sheetbridge",
		Short: "Sheetbridge - spreadsheet import bridge for CMS field editors",
		Long: `Sheetbridge imports a spreadsheet attached to a file field of a CMS
record, converts it to tabular JSON, and hands the writes back to the
editing host.

Features:
  • XLSX and CSV parsing with cache-busted downloads
  • Sibling-field resolution inside nested block trees
  • Localized file fields with configurable locale fallback
  • Import history with SQLite persistence
  • Live task stream over WebSocket

Quick Start:
  sheetbridge serve         # Start the bridge on port 9300
  sheetbridge seed          # Write sample fixtures for local testing
  sheetbridge import -c fixtures/render_context.json
  sheetbridge reset         # Wipe the import history database`,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP bridge",
		Long: `Start the sheetbridge HTTP server on the configured port.

The server provides:
  • POST /render     field configuration assistance
  • POST /import     run one import chain
  • GET  /imports    import history (SQLite-backed)
  • GET  /imports/ws live task-state stream
  • GET  /healthz    health check

Environment Variables:
  SHEETBRIDGE_PORT     Server port (default: 9300)
  SHEETBRIDGE_DB_PATH  History database path
  CMS_API_BASE_URL     CMS management API base URL
  CMS_API_TOKEN        CMS API token for upload resolution`,
		RunE: runServe(env),
	}
	serveCmd.Flags().StringVarP(&port, "port", "p", env.Port, "Port to listen on")
	serveCmd.Flags().StringVarP(&dbPath, "db", "d", env.DBPath, "Database path")

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Write sample fixtures for local testing",
		Long: `Generate a sample spreadsheet and a matching render context document.

AI-Powered Generation:
  Set OPENAI_API_KEY to generate realistic sample rows.
  Falls back to static test data if no API key is provided.

The render context document points a file field at the generated CSV,
ready for a local smoke test via 'sheetbridge import'.`,
		RunE: runSeed,
	}
	seedCmd.Flags().StringVarP(&seedDir, "dir", "o", "./fixtures", "Output directory")
	seedCmd.Flags().IntVar(&numRows, "rows", 8, "Number of sample rows")
	seedCmd.Flags().IntVar(&numCols, "cols", 4, "Number of sample columns")

	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset the import history database",
		Long: `Delete the history database file and create a fresh, empty one.

Warning: This permanently deletes all recorded import history!`,
		RunE: runReset,
	}
	resetCmd.Flags().StringVarP(&dbPath, "db", "d", env.DBPath, "Database path")

	rootCmd.AddCommand(serveCmd, newImportCmd(env), seedCmd, resetCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// validateAndCleanDBPath validates and cleans a database path.
func validateAndCleanDBPath(path string) (string, error) {
	cleanPath := strings.TrimSpace(path)
	cleanPath = filepath.Clean(cleanPath)

	if cleanPath == "" || cleanPath == "." || cleanPath == "/" {
		return "", fmt.Errorf("database path cannot be empty, '.', or '/'")
	}

	// Windows: reject bare drive letters (e.g., "C:", "D:")
	if runtime.GOOS == "windows" && len(cleanPath) == 2 && cleanPath[1] == ':' {
		return "", fmt.Errorf("database path cannot be a bare drive letter")
	}

	if strings.Contains(cleanPath, "..") {
		return "", fmt.Errorf("database path cannot contain '..'")
	}

	return cleanPath, nil
}

func runServe(env config.Env) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		var err error
		dbPath, err = validateAndCleanDBPath(dbPath)
		if err != nil {
			return err
		}

		s, err := store.New(dbPath)
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}

		if env.APIToken == "" {
			log.Println("Warning: CMS_API_TOKEN is not set, upload-id resolution will fail")
		}
		client := fetch.NewClient(env.APIBaseURL, env.APIToken)
		srv := server.New(s, client)

		addr := ":" + port
		log.Printf("sheetbridge listening on %s", addr)
		log.Printf("Database: %s", dbPath)
		return http.ListenAndServe(addr, srv.Handler())
	}
}

func runSeed(cmd *cobra.Command, args []string) error {
	gen := seed.NewGenerator()
	fx, err := gen.WriteFixtures(context.Background(), seedDir, numRows, numCols)
	if err != nil {
		return err
	}

	log.Printf("Wrote %d rows x %d columns to %s", fx.Rows, fx.Columns, fx.CSVPath)
	log.Printf("Wrote render context to %s", fx.ContextPath)
	log.Printf("Smoke-test with: sheetbridge import -c %s", fx.ContextPath)
	return nil
}

func runReset(cmd *cobra.Command, args []string) error {
	var err error
	dbPath, err = validateAndCleanDBPath(dbPath)
	if err != nil {
		return err
	}

	if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove existing database: %w", err)
	}

	s, err := store.New(dbPath)
	if err != nil {
		return err
	}
	defer s.Close()

	log.Printf("Reset complete: fresh database at %s", dbPath)
	return nil
}
