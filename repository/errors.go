// Sentinel errors shared across the repositories.  Lifecycle operations
// deliberately swallow expected rejections (ban, wrong state, already
// accepted) and return a no-result instead, so these sentinels mostly
// surface from plain lookups.
package repository

import "errors"

// ErrNotFound is returned by lookups when the referenced row does not
// exist.
var ErrNotFound = errors.New("not found")

// ErrInvalidParams is returned when a create operation receives
// parameters that fail validation before any statement is issued.
var ErrInvalidParams = errors.New("invalid parameters")
