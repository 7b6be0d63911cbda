// ABOUTME: Selects the active locale's value out of a locale-keyed field value.
// ABOUTME: Lenient by default: falls back to any populated locale unless strict.

package uploadref

import "github.com/fieldkit/sheetbridge/internal/hostproto"

// SelectLocale picks the value for activeLocale out of a possibly
// locale-keyed field value. Non-objects and arrays pass through unchanged;
// they are assumed non-localized.
//
// When the active locale's entry is missing or empty and strict is false,
// the first populated locale in sorted key order is returned instead. The
// leniency privileges finding some file over locale correctness; pass
// strict=true to get nil instead of another locale's file.
func SelectLocale(v hostproto.Node, activeLocale string, strict bool) hostproto.Node {
	obj, ok := v.(hostproto.Object)
	if !ok {
		return v
	}

	if activeLocale != "" {
		if val, present := obj[activeLocale]; present && truthy(val) {
			return val
		}
	}
	if strict {
		return nil
	}
	for _, key := range hostproto.SortedKeys(obj) {
		if val := obj[key]; truthy(val) {
			return val
		}
	}
	return nil
}

// truthy mirrors the host's notion of a populated value: nil, false, the
// empty string, and zero are empty; objects and arrays (even empty ones)
// count as populated.
func truthy(v hostproto.Node) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case float64:
		return val != 0
	default:
		return true
	}
}
