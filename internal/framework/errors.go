package framework

import "errors"

// ErrNotFound indicates the requested framework id is not registered.
var ErrNotFound = errors.New("framework not found")
