package interfaces

import "errors"

// ErrNotFound is wrapped by repository lookups that match nothing.
var ErrNotFound = errors.New("not found")
