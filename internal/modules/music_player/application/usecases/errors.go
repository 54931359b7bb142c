package usecases

import "errors"

// ErrNoSnapshotStore is returned when a persistence operation is requested
// but no snapshot store was configured.
var ErrNoSnapshotStore = errors.New("no snapshot store configured")
