// ABOUTME: HTTP handlers for render assistance, import triggers, and history.
// ABOUTME: Translates wire JSON into pipeline requests and taxonomy errors.

package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/fieldkit/sheetbridge/internal/config"
	"github.com/fieldkit/sheetbridge/internal/errors"
	"github.com/fieldkit/sheetbridge/internal/fieldpath"
	"github.com/fieldkit/sheetbridge/internal/hostproto"
	"github.com/fieldkit/sheetbridge/internal/importer"
	"github.com/fieldkit/sheetbridge/internal/store"
)

// importRequest is the body of POST /import: the host's render snapshot
// plus the publish toggle.
type importRequest struct {
	hostproto.RenderContext
	Publish bool `json:"publish"`
}

// setOp is one host write the pipeline produced, in call order. The host
// applies them in sequence; order carries the null-then-value commit.
type setOp struct {
	Path  string `json:"path"`
	Value any    `json:"value"`
}

// opCollector records the pipeline's writes instead of applying them.
type opCollector struct {
	mu  sync.Mutex
	ops []setOp
}

func (c *opCollector) SetField(_ context.Context, path hostproto.Path, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ops = append(c.ops, setOp{Path: path.String(), Value: value})
	return nil
}

type importResponse struct {
	Result *importer.Result `json:"result"`
	Ops    []setOp          `json:"ops"`
}

// handleImport runs one import and responds with the result plus the
// ordered writes for the host to apply.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrInvalidBody, "invalid JSON body")
		return
	}
	if err := req.Finalize(); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrInvalidRequest, err.Error())
		return
	}

	params := config.ParseParams(req.Parameters).ApplyQueryOverride(r.URL.RawQuery)
	collector := &opCollector{}

	started := time.Now()
	result, err := s.importerFor(req.RecordID, req.RawEditingPath).Start(r.Context(), importer.Request{
		Render:  req.RenderContext,
		Params:  params,
		Setter:  collector,
		Publish: req.Publish,
	})
	if err != nil {
		var ie *importer.Error
		if !stderrors.As(err, &ie) {
			ie = &importer.Error{Code: importer.CodeInternal, Message: err.Error()}
		}
		s.logImport(&store.ImportRecord{
			RecordID:     req.RecordID,
			FieldPath:    req.RawEditingPath,
			SourceAPIKey: params.SourceFileAPIKey,
			DurationMs:   int(time.Since(started).Milliseconds()),
			Status:       "failed",
			Error:        ie.Message,
		})
		errors.WriteImportError(w, ie)
		return
	}

	s.logImport(&store.ImportRecord{
		TaskID:       result.TaskID,
		RecordID:     req.RecordID,
		FieldPath:    result.SourcePath,
		SourceAPIKey: params.SourceFileAPIKey,
		Filename:     result.Filename,
		MimeType:     result.MimeType,
		RowCount:     result.RowCount,
		ColumnCount:  len(result.Payload.Columns),
		DurationMs:   int(result.Duration.Milliseconds()),
		Status:       "succeeded",
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(importResponse{Result: result, Ops: collector.ops})
}

// renderResponse helps an editor configure the field instance: which file
// fields exist near the edited field, and whether an import is running.
type renderResponse struct {
	FileFields []string      `json:"file_fields"`
	Params     config.Params `json:"params"`
	ParamsOK   bool          `json:"params_ok"`
	Busy       bool          `json:"busy"`
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var rc hostproto.RenderContext
	if err := json.NewDecoder(r.Body).Decode(&rc); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrInvalidBody, "invalid JSON body")
		return
	}
	if err := rc.Finalize(); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrInvalidRequest, err.Error())
		return
	}

	params := config.ParseParams(rc.Parameters).ApplyQueryOverride(r.URL.RawQuery)
	resp := renderResponse{
		FileFields: fieldpath.ListFileFields(rc.Tree, rc.EditingPath, rc.Fields),
		Params:     params,
		ParamsOK:   params.Validate() == nil,
		Busy:       s.importerFor(rc.RecordID, rc.RawEditingPath).Busy(),
	}
	if resp.FileFields == nil {
		resp.FileFields = []string{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// importEntry is the wire form of one history row.
type importEntry struct {
	ID           int64     `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	TaskID       string    `json:"task_id"`
	RecordID     string    `json:"record_id"`
	FieldPath    string    `json:"field_path"`
	SourceAPIKey string    `json:"source_api_key"`
	Filename     string    `json:"filename"`
	MimeType     string    `json:"mime_type"`
	RowCount     int       `json:"row_count"`
	ColumnCount  int       `json:"column_count"`
	DurationMs   int       `json:"duration_ms"`
	Status       string    `json:"status"`
	Error        string    `json:"error,omitempty"`
}

func (s *Server) handleImports(w http.ResponseWriter, r *http.Request) {
	q := &store.ImportQuery{
		RecordID: r.URL.Query().Get("record_id"),
		Status:   r.URL.Query().Get("status"),
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		q.Limit, _ = strconv.Atoi(v)
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		q.Offset, _ = strconv.Atoi(v)
	}

	records, err := s.store.GetImports(q)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrInternal, err.Error())
		return
	}

	entries := make([]importEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, importEntry{
			ID:           rec.ID,
			Timestamp:    rec.Timestamp,
			TaskID:       rec.TaskID,
			RecordID:     rec.RecordID,
			FieldPath:    rec.FieldPath,
			SourceAPIKey: rec.SourceAPIKey,
			Filename:     rec.Filename,
			MimeType:     rec.MimeType,
			RowCount:     rec.RowCount,
			ColumnCount:  rec.ColumnCount,
			DurationMs:   rec.DurationMs,
			Status:       rec.Status,
			Error:        rec.Error,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"imports": entries})
}

func (s *Server) handleImportStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.GetImportStats()
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrInternal, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"total_imports":  stats.TotalImports,
		"failed_imports": stats.FailedImports,
		"total_rows":     stats.TotalRows,
	})
}

// logImport records a history row without blocking the response path.
func (s *Server) logImport(rec *store.ImportRecord) {
	if s.store == nil {
		return
	}
	if err := s.store.LogImport(rec); err != nil {
		// History is observability, not correctness.
		log.Printf("failed to log import: %v", err)
	}
}
