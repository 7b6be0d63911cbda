// ABOUTME: Writes seed fixtures to disk for local development.
// ABOUTME: Produces a sample CSV and a render-context JSON document.

package seed

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Fixtures describes what WriteFixtures produced.
type Fixtures struct {
	CSVPath     string
	ContextPath string
	Rows        int
	Columns     int
}

// WriteFixtures generates sample data and writes a CSV file plus a
// render-context document that points a file field at that CSV via a
// file:// URL. The context document feeds the one-shot import command
// as a local smoke test.
func (g *Generator) WriteFixtures(ctx context.Context, dir string, numRows, numCols int) (*Fixtures, error) {
	if numRows <= 0 {
		numRows = 8
	}
	if numCols <= 0 {
		numCols = 4
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating fixtures dir: %w", err)
	}

	rows, err := g.GenerateRows(ctx, numRows, numCols)
	if err != nil {
		return nil, fmt.Errorf("generating rows: %w", err)
	}

	csvPath := filepath.Join(dir, "sample.csv")
	if err := writeCSV(csvPath, rows); err != nil {
		return nil, err
	}

	ctxPath := filepath.Join(dir, "render_context.json")
	if err := writeRenderContext(ctxPath, csvPath); err != nil {
		return nil, err
	}

	return &Fixtures{
		CSVPath:     csvPath,
		ContextPath: ctxPath,
		Rows:        numRows,
		Columns:     numCols,
	}, nil
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// writeRenderContext writes a minimal editing context with a file field
// (id 55) holding a direct URL to the sample CSV and a sibling target
// field (id 56) for the imported table.
func writeRenderContext(path, csvPath string) error {
	abs, err := filepath.Abs(csvPath)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", csvPath, err)
	}

	doc := map[string]any{
		"record_id":    "seed-record",
		"editing_path": "56",
		"locale":       "",
		"tree": map[string]any{
			"55": map[string]any{"url": "file://" + abs},
			"56": nil,
		},
		"fields": map[string]any{
			"55": map[string]any{"id": "55", "api_key": "source_file", "type": "file"},
			"56": map[string]any{"id": "56", "api_key": "table_data", "type": "json"},
		},
		"parameters": map[string]any{
			"sourceFileApiKey": "source_file",
		},
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding render context: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
