package jobs

import "errors"

// ErrNotFound indicates the job id is unknown to the store.
var ErrNotFound = errors.New("job not found")

// ErrDuplicateID indicates Create was called with an id that already
// exists. Fresh ids are the caller's responsibility, so this is a
// programming error rather than a recoverable condition.
var ErrDuplicateID = errors.New("job id already exists")
