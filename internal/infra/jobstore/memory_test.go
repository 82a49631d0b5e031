package jobstore

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/bryanwahyu/video-pii-analyzer/internal/domain/jobs"
	"github.com/bryanwahyu/video-pii-analyzer/internal/domain/pii"
)

// fixedClock advances by one second per call so creation order is
// reflected in timestamps
type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.now = c.now.Add(time.Second)
	return c.now
}

func newStore() *Memory {
	return NewMemory(&fixedClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)})
}

func TestJobLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newStore()

	if err := store.Create(ctx, &domain.Job{ID: "j1", SourceRef: "ref", OriginalFilename: "a.mp4"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	j, err := store.Get(ctx, "j1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if j.Status != domain.StatusQueued {
		t.Fatalf("expected queued, got %s", j.Status)
	}
	if j.CreatedAt.IsZero() {
		t.Fatalf("created_at not stamped")
	}

	if err := store.MarkProcessing(ctx, "j1"); err != nil {
		t.Fatalf("mark processing: %v", err)
	}
	j, _ = store.Get(ctx, "j1")
	if j.Status != domain.StatusProcessing {
		t.Fatalf("expected processing, got %s", j.Status)
	}

	res := domain.Result{
		Transcript:  "hello",
		PIIDetected: pii.Report{},
		PIISegments: []pii.SegmentReport{},
		Summary:     pii.Summarize(nil, 0),
	}
	if err := store.Complete(ctx, "j1", res); err != nil {
		t.Fatalf("complete: %v", err)
	}

	j, _ = store.Get(ctx, "j1")
	if j.Status != domain.StatusCompleted {
		t.Fatalf("expected completed, got %s", j.Status)
	}
	if j.CompletedAt == nil {
		t.Fatalf("completed_at not stamped")
	}
	if j.Transcript != "hello" {
		t.Fatalf("transcript not stored")
	}
	if j.Error != "" {
		t.Fatalf("error should be unset, got %q", j.Error)
	}
	if j.Summary == nil {
		t.Fatalf("summary not stored")
	}

	if err := store.Delete(ctx, "j1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, "j1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestDuplicateIDIsRejected(t *testing.T) {
	ctx := context.Background()
	store := newStore()

	if err := store.Create(ctx, &domain.Job{ID: "dup"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Create(ctx, &domain.Job{ID: "dup"}); !errors.Is(err, domain.ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
}

func TestFailRecordsCause(t *testing.T) {
	ctx := context.Background()
	store := newStore()

	store.Create(ctx, &domain.Job{ID: "j1"})
	if err := store.Fail(ctx, "j1", "media unreadable"); err != nil {
		t.Fatalf("fail: %v", err)
	}

	j, _ := store.Get(ctx, "j1")
	if j.Status != domain.StatusFailed {
		t.Fatalf("expected failed, got %s", j.Status)
	}
	if j.Error != "media unreadable" {
		t.Fatalf("cause not recorded, got %q", j.Error)
	}
	if j.CompletedAt == nil {
		t.Fatalf("completed_at not stamped on failure")
	}

	// terminal states never transition back
	if err := store.MarkProcessing(ctx, "j1"); err != nil {
		t.Fatalf("mark processing on terminal: %v", err)
	}
	j, _ = store.Get(ctx, "j1")
	if j.Status != domain.StatusFailed {
		t.Fatalf("terminal state left via MarkProcessing: %s", j.Status)
	}
}

func TestTerminalStateIsImmutable(t *testing.T) {
	ctx := context.Background()
	store := newStore()

	store.Create(ctx, &domain.Job{ID: "j1"})
	if err := store.Complete(ctx, "j1", domain.Result{Transcript: "done"}); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if err := store.Fail(ctx, "j1", "too late"); err != nil {
		t.Fatalf("fail on terminal: %v", err)
	}

	j, _ := store.Get(ctx, "j1")
	if j.Status != domain.StatusCompleted {
		t.Fatalf("completed job overwritten: %s", j.Status)
	}
	if j.Error != "" {
		t.Fatalf("late failure cause recorded on completed job: %q", j.Error)
	}
}

func TestUnknownIDErrors(t *testing.T) {
	ctx := context.Background()
	store := newStore()

	if _, err := store.Get(ctx, "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("get: expected ErrNotFound, got %v", err)
	}
	if err := store.Delete(ctx, "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("delete: expected ErrNotFound, got %v", err)
	}
	if err := store.MarkProcessing(ctx, "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("mark processing: expected ErrNotFound, got %v", err)
	}
	if err := store.Fail(ctx, "nope", "x"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("fail: expected ErrNotFound, got %v", err)
	}
}

func TestListNewestFirstWithPagination(t *testing.T) {
	ctx := context.Background()
	store := newStore()

	for _, id := range []domain.JobID{"a", "b", "c", "d"} {
		if err := store.Create(ctx, &domain.Job{ID: id}); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}

	list, total, err := store.List(ctx, 2, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 4 {
		t.Fatalf("expected total 4, got %d", total)
	}
	if len(list) != 2 || list[0].ID != "d" || list[1].ID != "c" {
		t.Fatalf("expected [d c], got %+v", list)
	}

	list, _, _ = store.List(ctx, 2, 2)
	if len(list) != 2 || list[0].ID != "b" || list[1].ID != "a" {
		t.Fatalf("expected [b a], got %+v", list)
	}

	list, _, _ = store.List(ctx, 10, 3)
	if len(list) != 1 || list[0].ID != "a" {
		t.Fatalf("expected [a], got %+v", list)
	}
}

func TestGetReturnsSnapshot(t *testing.T) {
	ctx := context.Background()
	store := newStore()

	store.Create(ctx, &domain.Job{ID: "j1"})
	snap, _ := store.Get(ctx, "j1")
	snap.Status = domain.StatusFailed

	fresh, _ := store.Get(ctx, "j1")
	if fresh.Status != domain.StatusQueued {
		t.Fatalf("mutating a snapshot leaked into the store")
	}
}
