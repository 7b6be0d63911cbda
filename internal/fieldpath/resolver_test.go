// ABOUTME: Tests for sibling field path resolution.
// ABOUTME: Covers container lookup, key-scheme variants, fallback traversal, and failure.

package fieldpath

import (
	"reflect"
	"testing"

	"github.com/fieldkit/sheetbridge/internal/hostproto"
)

func testFields() hostproto.Descriptors {
	return hostproto.Descriptors{
		"55": {ID: "55", APIKey: "source_file", Type: "file"},
		"56": {ID: "56", APIKey: "table_data", Type: "json"},
		"57": {ID: "57", APIKey: "cover_image", Type: "file"},
	}
}

func TestResolveSiblingIdentifierKeyedBlock(t *testing.T) {
	tree := hostproto.Object{
		"block1": hostproto.Object{
			"55": hostproto.Object{"upload_id": "9"},
			"56": "",
		},
	}

	got := ResolveSibling(tree, hostproto.ParsePath("block1.56"), testFields(), "source_file", "")
	if got.String() != "block1.55" {
		t.Errorf("ResolveSibling() = %q, want %q", got, "block1.55")
	}
}

func TestResolveSiblingAPIKeyKeyedBlock(t *testing.T) {
	tree := hostproto.Object{
		"block1": hostproto.Object{
			"source_file": hostproto.Object{"upload_id": "9"},
			"table_data":  "",
		},
	}

	got := ResolveSibling(tree, hostproto.ParsePath("block1.table_data"), testFields(), "source_file", "")
	if got.String() != "block1.source_file" {
		t.Errorf("ResolveSibling() = %q, want %q", got, "block1.source_file")
	}
}

func TestResolveSiblingIdentifierWinsOverAPIKey(t *testing.T) {
	// When a container somehow owns both key schemes, the field ID entry
	// is the one the resolver must pick.
	tree := hostproto.Object{
		"block1": hostproto.Object{
			"55":          hostproto.Object{"upload_id": "by-id"},
			"source_file": hostproto.Object{"upload_id": "by-api-key"},
			"56":          "",
		},
	}

	got := ResolveSibling(tree, hostproto.ParsePath("block1.56"), testFields(), "source_file", "")
	if got.String() != "block1.55" {
		t.Errorf("ResolveSibling() = %q, want identifier-keyed path %q", got, "block1.55")
	}
}

func TestResolveSiblingLocalizedTarget(t *testing.T) {
	fields := hostproto.Descriptors{
		"55": {ID: "55", APIKey: "source_file", Type: "file", Localized: true},
		"56": {ID: "56", APIKey: "table_data", Type: "json"},
	}
	tree := hostproto.Object{
		"block1": hostproto.Object{
			"55": hostproto.Object{"en": hostproto.Object{"upload_id": "9"}},
			"56": "",
		},
	}

	got := ResolveSibling(tree, hostproto.ParsePath("block1.56"), fields, "source_file", "en")
	if got.String() != "block1.55.en" {
		t.Errorf("ResolveSibling() = %q, want %q", got, "block1.55.en")
	}

	// No active locale: no locale suffix even for a localized field.
	got = ResolveSibling(tree, hostproto.ParsePath("block1.56"), fields, "source_file", "")
	if got.String() != "block1.55" {
		t.Errorf("ResolveSibling() without locale = %q, want %q", got, "block1.55")
	}
}

func TestResolveSiblingFallbackTraversal(t *testing.T) {
	// The host inserted an extra nesting level, so the editing path's
	// direct parent ("wrapper") does not own the target. Exactly one node
	// in the tree owns both the editing key and the target key.
	tree := hostproto.Object{
		"content": hostproto.Array{
			hostproto.Object{
				"inner": hostproto.Object{
					"55": hostproto.Object{"upload_id": "9"},
					"56": "",
				},
			},
		},
	}

	got := ResolveSibling(tree, hostproto.ParsePath("content.0.56"), testFields(), "source_file", "")
	if got.String() != "content.0.inner.55" {
		t.Errorf("ResolveSibling() = %q, want fallback path %q", got, "content.0.inner.55")
	}
}

func TestResolveSiblingFallbackFirstContainerWins(t *testing.T) {
	// Two candidate containers; lexical key order makes "a" the first one
	// visited, so its target entry must win.
	tree := hostproto.Object{
		"a": hostproto.Object{
			"55": hostproto.Object{"upload_id": "first"},
			"56": "",
		},
		"b": hostproto.Object{
			"55": hostproto.Object{"upload_id": "second"},
			"56": "",
		},
	}

	got := ResolveSibling(tree, hostproto.ParsePath("missing.56"), testFields(), "source_file", "")
	if got.String() != "a.55" {
		t.Errorf("ResolveSibling() = %q, want first container in traversal order %q", got, "a.55")
	}
}

func TestResolveSiblingNotFoundReturnsNil(t *testing.T) {
	tree := hostproto.Object{
		"block1": hostproto.Object{"56": ""},
	}

	tests := []struct {
		name      string
		targetKey string
		editing   string
	}{
		{"target absent everywhere", "source_file", "block1.56"},
		{"unknown api key", "no_such_field", "block1.56"},
		{"empty editing path", "source_file", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveSibling(tree, hostproto.ParsePath(tt.editing), testFields(), tt.targetKey, "en")
			if got != nil {
				t.Errorf("ResolveSibling() = %q, want nil", got)
			}
		})
	}
}

func TestResolveSiblingOversizedArraySegment(t *testing.T) {
	// A numeric segment too large for int must read as a lookup miss, not
	// wrap negative and index out of range; the fallback traversal then
	// recovers the real container.
	tree := hostproto.Object{
		"content": hostproto.Array{
			hostproto.Object{"55": hostproto.Object{"upload_id": "9"}, "56": ""},
		},
	}

	got := ResolveSibling(tree, hostproto.ParsePath("content.9223372036854775808.56"), testFields(), "source_file", "")
	if got.String() != "content.0.55" {
		t.Errorf("ResolveSibling() = %q, want content.0.55", got)
	}
}

func TestResolveSiblingScalarContainer(t *testing.T) {
	// Editing path points below a scalar; lookup fails without panicking.
	tree := hostproto.Object{"block1": "not an object"}

	got := ResolveSibling(tree, hostproto.ParsePath("block1.bogus.56"), testFields(), "source_file", "")
	if got != nil {
		t.Errorf("ResolveSibling() = %q, want nil", got)
	}
}

func TestListFileFields(t *testing.T) {
	tree := hostproto.Object{
		"57": hostproto.Object{"upload_id": "3"},
		"block1": hostproto.Object{
			"55": hostproto.Object{"upload_id": "9"},
			"56": "",
		},
	}

	got := ListFileFields(tree, hostproto.ParsePath("block1.56"), testFields())
	want := []string{"source_file", "cover_image"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ListFileFields() = %v, want %v", got, want)
	}
}

func TestListFileFieldsEmptyTree(t *testing.T) {
	got := ListFileFields(hostproto.Object{}, hostproto.ParsePath("block1.56"), testFields())
	if len(got) != 0 {
		t.Errorf("ListFileFields() = %v, want empty", got)
	}
}
