// ABOUTME: One-shot import command for debugging a record dump locally.
// ABOUTME: Reads a render context file and prints the resulting writes.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fieldkit/sheetbridge/internal/config"
	"github.com/fieldkit/sheetbridge/internal/fetch"
	"github.com/fieldkit/sheetbridge/internal/hostproto"
	"github.com/fieldkit/sheetbridge/internal/importer"
	"github.com/fieldkit/sheetbridge/internal/uploadref"
)

var (
	contextPath   string
	publishRecord bool
)

func newImportCmd(env config.Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Run one import against a record dump",
		Long: `Run a single import chain against a render context document and print
the resulting field writes as JSON, without a running server.

The context document has the same shape as the POST /import body:
record_id, tree, fields, editing_path, locale, and parameters. The
'seed' command writes a ready-made one.

File references using file:// URLs are read from local disk; upload ids
and http(s) URLs go through the CMS API as usual.`,
		RunE: runImport(env),
	}
	cmd.Flags().StringVarP(&contextPath, "context", "c", "", "Render context JSON file (required)")
	cmd.Flags().BoolVar(&publishRecord, "publish", false, "Publish the record after a successful import")
	cmd.MarkFlagRequired("context")
	return cmd
}

func runImport(env config.Env) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(contextPath)
		if err != nil {
			return fmt.Errorf("read context file: %w", err)
		}

		var rc hostproto.RenderContext
		if err := json.Unmarshal(data, &rc); err != nil {
			return fmt.Errorf("parse context file: %w", err)
		}
		if err := rc.Finalize(); err != nil {
			return err
		}

		fetcher := &localFetcher{Client: fetch.NewClient(env.APIBaseURL, env.APIToken)}
		notifier := importer.NotifierFunc(func(ev importer.Event) {
			log.Printf("task %s: %s %s", ev.TaskID, ev.State, ev.Message)
		})

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		setter := hostproto.SetterFunc(func(ctx context.Context, path hostproto.Path, value any) error {
			return enc.Encode(map[string]any{"path": path.String(), "value": value})
		})

		result, err := importer.New(fetcher, notifier).Start(cmd.Context(), importer.Request{
			Render:  rc,
			Params:  config.ParseParams(rc.Parameters),
			Setter:  setter,
			Publish: publishRecord,
		})
		if err != nil {
			return err
		}

		log.Printf("Imported %d rows from %s in %s", result.RowCount, result.Filename, result.Duration)
		return nil
	}
}

// localFetcher serves file:// references from disk and delegates
// everything else to the API client.
type localFetcher struct {
	*fetch.Client
}

func (f *localFetcher) Resolve(ctx context.Context, ref *uploadref.FileReference) (*fetch.ResolvedFile, error) {
	if ref != nil && strings.HasPrefix(ref.DirectURL, "file://") {
		p := strings.TrimPrefix(ref.DirectURL, "file://")
		return &fetch.ResolvedFile{URL: ref.DirectURL, Filename: filepath.Base(p)}, nil
	}
	return f.Client.Resolve(ctx, ref)
}

func (f *localFetcher) Download(ctx context.Context, url string) ([]byte, string, error) {
	if strings.HasPrefix(url, "file://") {
		data, err := os.ReadFile(strings.TrimPrefix(url, "file://"))
		return data, "", err
	}
	return f.Client.Download(ctx, url)
}
