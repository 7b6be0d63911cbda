// ABOUTME: Tests for file reference normalization.
// ABOUTME: Table-driven over the raw value shapes hosts hand back.

package uploadref

import (
	"reflect"
	"testing"

	"github.com/fieldkit/sheetbridge/internal/hostproto"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   hostproto.Node
		want *FileReference
	}{
		{
			name: "upload_id key",
			in:   hostproto.Object{"upload_id": "9"},
			want: &FileReference{UploadID: "9"},
		},
		{
			name: "camelCase uploadId key",
			in:   hostproto.Object{"uploadId": "9"},
			want: &FileReference{UploadID: "9"},
		},
		{
			name: "bare id key",
			in:   hostproto.Object{"id": "42"},
			want: &FileReference{UploadID: "42"},
		},
		{
			name: "numeric id coerced to string",
			in:   hostproto.Object{"upload_id": float64(9)},
			want: &FileReference{UploadID: "9"},
		},
		{
			name: "nested upload relation",
			in:   hostproto.Object{"upload": hostproto.Object{"id": "7"}},
			want: &FileReference{UploadID: "7"},
		},
		{
			name: "direct https url string",
			in:   "https://cdn.example.com/data.xlsx",
			want: &FileReference{DirectURL: "https://cdn.example.com/data.xlsx"},
		},
		{
			name: "direct http url string",
			in:   "http://cdn.example.com/data.csv",
			want: &FileReference{DirectURL: "http://cdn.example.com/data.csv"},
		},
		{
			name: "url inside object",
			in:   hostproto.Object{"url": "https://cdn.example.com/data.csv"},
			want: &FileReference{DirectURL: "https://cdn.example.com/data.csv"},
		},
		{
			name: "file url string",
			in:   "file:///tmp/fixtures/sample.csv",
			want: &FileReference{DirectURL: "file:///tmp/fixtures/sample.csv"},
		},
		{
			name: "file url inside object",
			in:   hostproto.Object{"url": "file:///tmp/fixtures/sample.csv"},
			want: &FileReference{DirectURL: "file:///tmp/fixtures/sample.csv"},
		},
		{
			name: "collection takes first element",
			in: hostproto.Array{
				hostproto.Object{"upload_id": "first"},
				hostproto.Object{"upload_id": "second"},
			},
			want: &FileReference{UploadID: "first"},
		},
		{
			name: "empty collection",
			in:   hostproto.Array{},
			want: nil,
		},
		{
			name: "non-url string",
			in:   "just text",
			want: nil,
		},
		{
			name: "nil value",
			in:   nil,
			want: nil,
		},
		{
			name: "object without usable keys",
			in:   hostproto.Object{"alt": "decorative"},
			want: nil,
		},
		{
			name: "number",
			in:   float64(12),
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Normalize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
