// ABOUTME: The payload persisted into the edited field after an import.
// ABOUTME: Canonical matrix shape: columns, data rows, and a meta envelope.

package tabular

import (
	"time"

	"github.com/google/uuid"
)

// Meta describes the import that produced a payload. The nonce is fresh
// per import so two imports of identical content still differ.
type Meta struct {
	Filename          string `json:"filename"`
	MimeType          string `json:"mime_type"`
	ImportedAt        string `json:"imported_at"`
	Nonce             string `json:"nonce"`
	SourceFieldAPIKey string `json:"source_field_api_key"`
}

// Payload is the canonical value written into the edited field. The matrix
// shape (columns + data arrays) was chosen over row-objects: it is the
// compact form and downstream consumers get column order for free.
type Payload struct {
	Columns []string   `json:"columns"`
	Data    [][]string `json:"data"`
	Meta    Meta       `json:"meta"`
}

// NewMeta builds the meta envelope for an import happening now.
func NewMeta(filename, mimeType, sourceFieldAPIKey string) Meta {
	return Meta{
		Filename:          filename,
		MimeType:          mimeType,
		ImportedAt:        time.Now().UTC().Format(time.RFC3339),
		Nonce:             uuid.NewString(),
		SourceFieldAPIKey: sourceFieldAPIKey,
	}
}

// BuildPayload assembles the persisted value from a normalized table.
func BuildPayload(t Table, meta Meta) Payload {
	return Payload{
		Columns: t.Columns,
		Data:    t.Matrix(),
		Meta:    meta,
	}
}
