// ABOUTME: Tests for the one-shot import command plumbing.
// ABOUTME: Round-trips seeded fixtures through the local fetcher.

package main

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/fieldkit/sheetbridge/internal/config"
	"github.com/fieldkit/sheetbridge/internal/fetch"
	"github.com/fieldkit/sheetbridge/internal/hostproto"
	"github.com/fieldkit/sheetbridge/internal/importer"
	"github.com/fieldkit/sheetbridge/internal/seed"
)

// The seed command's render context must run through the import pipeline
// unmodified: the file:// reference it writes has to normalize and be
// served from disk by the local fetcher.
func TestSeededFixturesImportRoundTrip(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	fx, err := seed.NewGenerator().WriteFixtures(context.Background(), t.TempDir(), 4, 3)
	if err != nil {
		t.Fatalf("WriteFixtures() error = %v", err)
	}

	data, err := os.ReadFile(fx.ContextPath)
	if err != nil {
		t.Fatalf("read context file: %v", err)
	}
	var rc hostproto.RenderContext
	if err := json.Unmarshal(data, &rc); err != nil {
		t.Fatalf("parse context file: %v", err)
	}
	if err := rc.Finalize(); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	var writes []struct {
		path  string
		value any
	}
	setter := hostproto.SetterFunc(func(ctx context.Context, path hostproto.Path, value any) error {
		writes = append(writes, struct {
			path  string
			value any
		}{path.String(), value})
		return nil
	})

	fetcher := &localFetcher{Client: fetch.NewClient("https://unused.example.com", "")}
	result, err := importer.New(fetcher, nil).Start(context.Background(), importer.Request{
		Render: rc,
		Params: config.ParseParams(rc.Parameters),
		Setter: setter,
	})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if result.RowCount != 4 {
		t.Errorf("RowCount = %d, want 4", result.RowCount)
	}
	if result.Filename != "sample.csv" {
		t.Errorf("Filename = %q, want sample.csv", result.Filename)
	}
	if len(writes) != 2 {
		t.Fatalf("got %d writes, want 2", len(writes))
	}
	if writes[0].path != "56" || writes[0].value != nil {
		t.Errorf("first write = %+v, want null at 56", writes[0])
	}
	if writes[1].path != "56" || writes[1].value == nil {
		t.Errorf("second write = %+v, want payload at 56", writes[1])
	}
}
