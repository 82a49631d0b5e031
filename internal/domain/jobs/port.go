package jobs

import "context"

// Store port (interface for the job table). Implementations must be
// safe for concurrent use by in-flight pipelines and read requests;
// reads return snapshots, never a half-updated job.
type Store interface {
	// Create registers a new job in StatusQueued. A duplicate id is a
	// programming error and returns ErrDuplicateID.
	Create(ctx context.Context, j *Job) error

	// MarkProcessing moves queued -> processing.
	MarkProcessing(ctx context.Context, id JobID) error

	// Complete moves the job to StatusCompleted, stamps CompletedAt and
	// overwrites any previous result fields.
	Complete(ctx context.Context, id JobID, res Result) error

	// Fail moves the job to StatusFailed, stamps CompletedAt and
	// records the cause.
	Fail(ctx context.Context, id JobID, cause string) error

	Get(ctx context.Context, id JobID) (*Job, error)

	// List returns jobs newest-created first plus the total count.
	List(ctx context.Context, limit, offset int) ([]*Job, int, error)

	Delete(ctx context.Context, id JobID) error
}
