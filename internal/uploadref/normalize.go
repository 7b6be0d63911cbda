// ABOUTME: Canonicalizes raw host file-field values into file references.
// ABOUTME: Handles id-bearing objects, nested upload relations, URLs, and collections.

package uploadref

import (
	"strconv"
	"strings"

	"github.com/fieldkit/sheetbridge/internal/hostproto"
)

// FileReference is the canonical pointer to a source file: either an
// upload id resolvable through the CMS API, or a directly fetchable URL.
// Exactly one of the two is set.
type FileReference struct {
	UploadID  string `json:"upload_id,omitempty"`
	DirectURL string `json:"direct_url,omitempty"`
}

// Normalize converts a raw value read out of the record tree into a file
// reference. Multi-value fields are treated as single-file: a collection
// contributes its first element. Absence of a usable file is a normal nil,
// never an error.
func Normalize(v hostproto.Node) *FileReference {
	if arr, ok := v.(hostproto.Array); ok {
		if len(arr) == 0 {
			return nil
		}
		v = arr[0]
	}

	switch val := v.(type) {
	case hostproto.Object:
		if id := uploadID(val); id != "" {
			return &FileReference{UploadID: id}
		}
		// Some host versions nest the asset under an "upload" relation.
		if rel, ok := val["upload"].(hostproto.Object); ok {
			if id := uploadID(rel); id != "" {
				return &FileReference{UploadID: id}
			}
		}
		if u, ok := val["url"].(string); ok && isDirectURL(u) {
			return &FileReference{DirectURL: u}
		}
	case string:
		if isDirectURL(val) {
			return &FileReference{DirectURL: val}
		}
	}
	return nil
}

// uploadID pulls an upload identifier out of an object, accepting the key
// spellings seen across host serializations.
func uploadID(obj hostproto.Object) string {
	for _, key := range []string{"upload_id", "uploadId", "id"} {
		switch id := obj[key].(type) {
		case string:
			if id != "" {
				return id
			}
		case float64:
			return strconv.FormatFloat(id, 'f', -1, 64)
		}
	}
	return ""
}

// isDirectURL recognizes the URL schemes a fetcher can serve: http(s)
// for remote assets and file for local fixture documents.
func isDirectURL(s string) bool {
	return strings.HasPrefix(s, "http://") ||
		strings.HasPrefix(s, "https://") ||
		strings.HasPrefix(s, "file://")
}
