package repository

import "errors"

// ErrStaleVersion is returned by version-guarded updates when the row was
// changed since it was read.
var ErrStaleVersion = errors.New("stale version")
