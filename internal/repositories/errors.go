package repositories

import "errors"

// ErrNotFound is returned when a record does not exist or is not visible
// to the requesting user. Handlers map it to a 404 so callers cannot
// distinguish "someone else's item" from "no such item".
var ErrNotFound = errors.New("not found")
