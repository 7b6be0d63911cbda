// ABOUTME: Sibling field path resolution inside the record value tree.
// ABOUTME: Container-first lookup with a record-wide depth-first fallback.

package fieldpath

import (
	"github.com/fieldkit/sheetbridge/internal/hostproto"
)

// ResolveSibling locates the value path of the field named by targetAPIKey
// inside the same block that owns the field being edited.
//
// The immediate parent of editingPath is assumed to be the owning block.
// Its keys may be field IDs or field API keys depending on how the host
// serialized the nesting level, so both candidates are checked, field ID
// first. When the immediate parent does not own the target, the whole tree
// is searched depth-first for any object that owns the editing field's own
// key, and the candidate check is repeated there; the first owner in
// traversal order wins (object keys in ascending lexical order, array
// elements by index - see hostproto.Walk).
//
// When the target field is localized and a locale is active, the locale
// segment is appended to the resolved path.
//
// A nil result means not found; resolution never panics on malformed trees.
func ResolveSibling(tree hostproto.Object, editingPath hostproto.Path, fields hostproto.Descriptors, targetAPIKey, activeLocale string) hostproto.Path {
	if len(editingPath) == 0 {
		return nil
	}
	target, ok := fields.ByAPIKey(targetAPIKey)
	if !ok {
		return nil
	}

	containerPath := editingPath.Parent()
	if p := resolveAt(tree, containerPath, target, activeLocale); p != nil {
		return p
	}

	// The immediate-parent heuristic can miss when the host inserted an
	// extra nesting level. Re-derive a plausible container: any object
	// that owns the editing field's own key.
	editKeys := candidateKeys(editingPath[len(editingPath)-1], fields)
	var resolved hostproto.Path
	hostproto.Walk(tree, func(path hostproto.Path, node hostproto.Node) bool {
		obj, isObj := node.(hostproto.Object)
		if !isObj {
			return true
		}
		if !ownsAny(obj, editKeys) {
			return true
		}
		if p := resolveAt(tree, path, target, activeLocale); p != nil {
			resolved = p
			return false
		}
		return true
	})
	return resolved
}

// resolveAt checks the object at containerPath for the target field,
// trying the field ID before the API key.
func resolveAt(tree hostproto.Object, containerPath hostproto.Path, target hostproto.FieldDescriptor, activeLocale string) hostproto.Path {
	node, ok := hostproto.Lookup(tree, containerPath)
	if !ok {
		return nil
	}
	obj, ok := node.(hostproto.Object)
	if !ok {
		return nil
	}
	for _, key := range []string{target.ID, target.APIKey} {
		if key == "" {
			continue
		}
		if _, present := obj[key]; present {
			resolved := containerPath.Child(key)
			if target.Localized && activeLocale != "" {
				resolved = resolved.Child(activeLocale)
			}
			return resolved
		}
	}
	return nil
}

// candidateKeys returns the keys under which the field addressed by the
// final path segment may appear in a container: the segment itself plus
// the matching descriptor's ID and API key.
func candidateKeys(segment string, fields hostproto.Descriptors) []string {
	keys := []string{segment}
	if fd, ok := fields.ByKey(segment); ok {
		if fd.ID != segment {
			keys = append(keys, fd.ID)
		}
		if fd.APIKey != segment {
			keys = append(keys, fd.APIKey)
		}
	}
	return keys
}

func ownsAny(obj hostproto.Object, keys []string) bool {
	for _, k := range keys {
		if _, ok := obj[k]; ok {
			return true
		}
	}
	return false
}

// ListFileFields enumerates the API keys of file-typed fields actually
// present in the editing field's container or at the record top level.
// Backs the "field not found" diagnostic so an editor can see which API
// keys would have worked.
func ListFileFields(tree hostproto.Object, editingPath hostproto.Path, fields hostproto.Descriptors) []string {
	seen := make(map[string]bool)
	var out []string

	collect := func(obj hostproto.Object) {
		for _, key := range hostproto.SortedKeys(obj) {
			fd, ok := fields.ByKey(key)
			if !ok || !fd.IsFile() || seen[fd.APIKey] {
				continue
			}
			seen[fd.APIKey] = true
			out = append(out, fd.APIKey)
		}
	}

	if node, ok := hostproto.Lookup(tree, editingPath.Parent()); ok {
		if obj, isObj := node.(hostproto.Object); isObj {
			collect(obj)
		}
	}
	collect(tree)
	return out
}
