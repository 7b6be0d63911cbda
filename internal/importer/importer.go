// ABOUTME: The import pipeline: resolve file, fetch, parse, normalize, commit.
// ABOUTME: Single linear chain per trigger with a busy guard, no retry, no cancel.

package importer

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/fieldkit/sheetbridge/internal/config"
	"github.com/fieldkit/sheetbridge/internal/fetch"
	"github.com/fieldkit/sheetbridge/internal/fieldpath"
	"github.com/fieldkit/sheetbridge/internal/hostproto"
	"github.com/fieldkit/sheetbridge/internal/sheet"
	"github.com/fieldkit/sheetbridge/internal/tabular"
	"github.com/fieldkit/sheetbridge/internal/uploadref"
)

// Fetcher is the remote side of the pipeline. *fetch.Client implements it.
type Fetcher interface {
	Resolve(ctx context.Context, ref *uploadref.FileReference) (*fetch.ResolvedFile, error)
	Download(ctx context.Context, url string) ([]byte, string, error)
	HasCredential() bool
	PublishRecord(ctx context.Context, recordID string) error
}

// Request is one import trigger: the host's render snapshot plus the
// field-instance parameters and the write entry point.
type Request struct {
	Render  hostproto.RenderContext
	Params  config.Params
	Setter  hostproto.ValueSetter
	Publish bool
}

// Result reports a successful import.
type Result struct {
	TaskID     string          `json:"task_id"`
	Payload    tabular.Payload `json:"payload"`
	SourcePath string          `json:"source_path"`
	Filename   string          `json:"filename"`
	MimeType   string          `json:"mime_type"`
	RowCount   int             `json:"row_count"`
	Duration   time.Duration   `json:"-"`
}

// Importer runs imports for one editor instance. At most one import is in
// flight at a time: the busy flag is a guard on task creation, so a rapid
// double trigger gets ErrBusy instead of a second chain.
type Importer struct {
	fetcher  Fetcher
	notifier Notifier
	running  atomic.Bool
}

// New builds an importer. notifier may be nil.
func New(fetcher Fetcher, notifier Notifier) *Importer {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &Importer{fetcher: fetcher, notifier: notifier}
}

// Busy reports whether an import is currently running.
func (im *Importer) Busy() bool {
	return im.running.Load()
}

// Start runs one import to completion. A second Start while one is
// running returns ErrBusy. Failures come back as *Error with a taxonomy
// code; no error escapes unclassified.
func (im *Importer) Start(ctx context.Context, req Request) (*Result, error) {
	if !im.running.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer im.running.Store(false)

	taskID := uuid.NewString()
	started := time.Now()
	im.notifier.Notify(Event{TaskID: taskID, State: StateRunning, At: started})

	result, err := im.run(ctx, req)
	if err != nil {
		ie := classify(err, "import")
		im.notifier.Notify(Event{TaskID: taskID, State: StateFailed, Message: ie.Message, At: time.Now()})
		return nil, ie
	}

	result.TaskID = taskID
	result.Duration = time.Since(started)
	im.notifier.Notify(Event{TaskID: taskID, State: StateSucceeded, At: time.Now()})
	return result, nil
}

func (im *Importer) run(ctx context.Context, req Request) (*Result, error) {
	if err := req.Params.Validate(); err != nil {
		return nil, &Error{Code: CodeConfig, Message: err.Error()}
	}

	rc := req.Render
	params := req.Params

	sourcePath := fieldpath.ResolveSibling(rc.Tree, rc.EditingPath, rc.Fields, params.SourceFileAPIKey, rc.Locale)
	if sourcePath == nil {
		return nil, im.configError(rc, params,
			fmt.Sprintf("no field with API key %q found near the edited field", params.SourceFileAPIKey))
	}

	target, _ := rc.Fields.ByAPIKey(params.SourceFileAPIKey)
	ref := im.fileReferenceAt(rc, params, sourcePath, target.Localized)
	if ref == nil {
		return nil, im.configError(rc, params,
			fmt.Sprintf("field %q holds no file", params.SourceFileAPIKey))
	}

	if ref.UploadID != "" && !im.fetcher.HasCredential() {
		return nil, &Error{
			Code:    CodeCredential,
			Message: "the CMS API token is not configured",
			Hint:    "set CMS_API_TOKEN so upload ids can be resolved",
		}
	}

	resolved, err := im.fetcher.Resolve(ctx, ref)
	if err != nil {
		return nil, classify(err, "resolving the file")
	}

	data, contentType, err := im.fetcher.Download(ctx, resolved.URL)
	if err != nil {
		return nil, classify(err, "downloading the file")
	}
	if resolved.MimeType == "" {
		resolved.MimeType = contentType
	}

	// Pre-emptive sniff: an image can fail deep inside the parser with a
	// confusing message, so reject it up front.
	if strings.HasPrefix(resolved.MimeType, "image/") {
		return nil, &Error{
			Code:    CodeContentMismatch,
			Message: fmt.Sprintf("%q is an image, not a spreadsheet", resolved.Filename),
			Hint:    "check that the source field contains a spreadsheet",
		}
	}

	wb, err := sheet.Parse(data, resolved.MimeType, resolved.Filename)
	if err != nil {
		return nil, &Error{
			Code:    CodeContentMismatch,
			Message: fmt.Sprintf("could not parse %q as a spreadsheet", resolved.Filename),
			Hint:    "check that the field contains a spreadsheet, not an image",
			Err:     err,
		}
	}

	sh := wb.First()
	if params.SheetName != "" {
		if sh = wb.Named(params.SheetName); sh == nil {
			return nil, &Error{
				Code:    CodeConfig,
				Message: fmt.Sprintf("sheet %q not found in %q", params.SheetName, resolved.Filename),
			}
		}
	}
	if sh == nil {
		return nil, &Error{
			Code:    CodeContentMismatch,
			Message: fmt.Sprintf("%q contains no sheets", resolved.Filename),
		}
	}

	table := tabular.Normalize(sh.Rows)
	meta := tabular.NewMeta(resolved.Filename, resolved.MimeType, params.SourceFileAPIKey)
	payload := tabular.BuildPayload(table, meta)

	if err := Commit(ctx, req.Setter, rc.EditingPath, payload); err != nil {
		return nil, &Error{Code: CodeInternal, Message: "writing the imported table failed", Err: err}
	}

	im.updateSiblings(ctx, req, table)

	if req.Publish {
		if err := im.fetcher.PublishRecord(ctx, rc.RecordID); err != nil {
			return nil, classify(err, "publishing the record")
		}
	}

	return &Result{
		Payload:    payload,
		SourcePath: sourcePath.String(),
		Filename:   resolved.Filename,
		MimeType:   resolved.MimeType,
		RowCount:   len(table.Rows),
	}, nil
}

// fileReferenceAt reads and canonicalizes the file value at sourcePath.
// For a localized field whose resolved locale entry is empty, the locale
// selector gets a second chance on the locale map one level up: another
// locale may still hold a file (unless StrictLocale).
func (im *Importer) fileReferenceAt(rc hostproto.RenderContext, params config.Params, sourcePath hostproto.Path, localized bool) *uploadref.FileReference {
	raw, ok := hostproto.Lookup(rc.Tree, sourcePath)
	if ok {
		if ref := uploadref.Normalize(raw); ref != nil {
			return ref
		}
	}
	if !localized {
		return nil
	}

	// With an active locale the resolved path already ends in the locale
	// segment, so the locale map is one level up; without one, sourcePath
	// addresses the locale map itself.
	localeMapPath := sourcePath
	if rc.Locale != "" {
		localeMapPath = sourcePath.Parent()
	}
	localeMap, ok := hostproto.Lookup(rc.Tree, localeMapPath)
	if !ok {
		return nil
	}
	selected := uploadref.SelectLocale(localeMap, rc.Locale, params.StrictLocale)
	return uploadref.Normalize(selected)
}

// configError builds the self-diagnosis message: it enumerates the file
// fields actually present so the editor can spot a misconfigured API key.
func (im *Importer) configError(rc hostproto.RenderContext, params config.Params, msg string) *Error {
	available := fieldpath.ListFileFields(rc.Tree, rc.EditingPath, rc.Fields)
	hint := "no file fields are present on this record"
	if len(available) > 0 {
		hint = "file fields present: " + strings.Join(available, ", ")
	}
	return &Error{Code: CodeConfig, Message: msg, Hint: hint}
}

// updateSiblings writes the synthesized column list and row count into
// their configured sibling fields. Best-effort: a missing sibling is
// logged, never fatal, because the table itself is already committed.
func (im *Importer) updateSiblings(ctx context.Context, req Request, table tabular.Table) {
	rc := req.Render
	for _, upd := range []struct {
		apiKey string
		value  any
	}{
		{req.Params.ColumnsMetaAPIKey, table.Columns},
		{req.Params.RowCountAPIKey, len(table.Rows)},
	} {
		if upd.apiKey == "" {
			continue
		}
		path := fieldpath.ResolveSibling(rc.Tree, rc.EditingPath, rc.Fields, upd.apiKey, rc.Locale)
		if path == nil {
			log.Printf("sibling field %q not found, skipping update", upd.apiKey)
			continue
		}
		if err := req.Setter.SetField(ctx, path, upd.value); err != nil {
			log.Printf("sibling field %q update failed: %v", upd.apiKey, err)
		}
	}
}
