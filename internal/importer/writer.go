// ABOUTME: Commits the normalized payload into the field under edit.
// ABOUTME: Two-step null-then-value write so value-diffing hosts observe a change.

package importer

import (
	"context"
	"fmt"

	"github.com/fieldkit/sheetbridge/internal/hostproto"
)

// Commit writes value into the field at path. The field is first cleared
// to null and only then set to the real value: a host that diffs by value
// would otherwise silently drop a re-import of an identical file. This is
// a correctness requirement, not an optimization. Commit runs only after
// parsing has fully succeeded, so a failed import never touches a
// previously good value.
func Commit(ctx context.Context, setter hostproto.ValueSetter, path hostproto.Path, value any) error {
	if err := setter.SetField(ctx, path, nil); err != nil {
		return fmt.Errorf("clear field %s: %w", path, err)
	}
	if err := setter.SetField(ctx, path, value); err != nil {
		return fmt.Errorf("write field %s: %w", path, err)
	}
	return nil
}
