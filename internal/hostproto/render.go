// ABOUTME: Per-render context and field metadata supplied by the CMS host.
// ABOUTME: Field descriptors, render context envelope, and value-setter contract.

package hostproto

import (
	"context"
	"encoding/json"
	"fmt"
)

// FieldDescriptor is schema metadata for one field of the content model.
type FieldDescriptor struct {
	ID        string `json:"id"`
	APIKey    string `json:"api_key"`
	Type      string `json:"type"`
	Localized bool   `json:"localized"`
}

// IsFile reports whether the field holds uploaded assets.
func (f FieldDescriptor) IsFile() bool {
	return f.Type == "file" || f.Type == "gallery"
}

// Descriptors maps field ID to descriptor for one content model.
type Descriptors map[string]FieldDescriptor

// ByAPIKey finds the descriptor whose API key matches. Lookup by machine
// name is linear; content models are small.
func (d Descriptors) ByAPIKey(apiKey string) (FieldDescriptor, bool) {
	for _, fd := range d {
		if fd.APIKey == apiKey {
			return fd, true
		}
	}
	return FieldDescriptor{}, false
}

// ByKey resolves a tree key that may be either a field ID or an API key.
func (d Descriptors) ByKey(key string) (FieldDescriptor, bool) {
	if fd, ok := d[key]; ok {
		return fd, true
	}
	return d.ByAPIKey(key)
}

// RenderContext is everything the host hands the plugin for one render of
// the field editor. The tree is a snapshot: the plugin never mutates it
// directly, all writes go through a ValueSetter.
type RenderContext struct {
	RecordID    string            `json:"record_id"`
	Tree        Object            `json:"-"`
	Fields      Descriptors       `json:"fields"`
	EditingPath Path              `json:"-"`
	Locale      string            `json:"locale"`
	Parameters  map[string]string `json:"parameters"`

	RawTree        json.RawMessage `json:"tree"`
	RawEditingPath string          `json:"editing_path"`
}

// Finalize decodes the raw JSON carriers into tree and path form. Called
// once after unmarshaling a render context received over the wire.
func (rc *RenderContext) Finalize() error {
	if rc.RawTree != nil {
		tree, err := DecodeTree(rc.RawTree)
		if err != nil {
			return fmt.Errorf("render context: %w", err)
		}
		rc.Tree = tree
	}
	rc.EditingPath = ParsePath(rc.RawEditingPath)
	if len(rc.EditingPath) == 0 {
		return fmt.Errorf("render context: editing_path is required")
	}
	return nil
}

// ValueSetter is the host's single mutation entry point. Implementations
// must apply writes in call order.
type ValueSetter interface {
	SetField(ctx context.Context, path Path, value any) error
}

// SetterFunc adapts a function to ValueSetter.
type SetterFunc func(ctx context.Context, path Path, value any) error

func (f SetterFunc) SetField(ctx context.Context, path Path, value any) error {
	return f(ctx, path, value)
}
