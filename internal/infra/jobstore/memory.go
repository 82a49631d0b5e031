package jobstore

import (
	"context"
	"sync"

	"github.com/bryanwahyu/video-pii-analyzer/internal/application"
	domain "github.com/bryanwahyu/video-pii-analyzer/internal/domain/jobs"
)

// Memory is the in-process job table. Jobs live until explicitly
// deleted; there is no expiry. All methods are safe for concurrent use
// and reads hand out snapshots, so a List never observes a job halfway
// through a transition.
type Memory struct {
	mu    sync.RWMutex
	jobs  map[domain.JobID]*domain.Job
	order []domain.JobID // creation order, oldest first
	clock application.Clock
}

func NewMemory(clock application.Clock) *Memory {
	if clock == nil {
		clock = application.SystemClock{}
	}
	return &Memory{
		jobs:  make(map[domain.JobID]*domain.Job),
		clock: clock,
	}
}

func (m *Memory) Create(_ context.Context, j *domain.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.jobs[j.ID]; ok {
		return domain.ErrDuplicateID
	}

	cp := *j
	cp.Status = domain.StatusQueued
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = m.clock.Now()
	}
	m.jobs[cp.ID] = &cp
	m.order = append(m.order, cp.ID)
	return nil
}

func (m *Memory) MarkProcessing(_ context.Context, id domain.JobID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	j, ok := m.jobs[id]
	if !ok {
		return domain.ErrNotFound
	}
	// terminal states only leave the machine via Delete
	if !j.Status.Terminal() {
		j.Status = domain.StatusProcessing
	}
	return nil
}

func (m *Memory) Complete(_ context.Context, id domain.JobID, res domain.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	j, ok := m.jobs[id]
	if !ok {
		return domain.ErrNotFound
	}
	if j.Status.Terminal() {
		return nil
	}
	now := m.clock.Now()
	j.Status = domain.StatusCompleted
	j.CompletedAt = &now
	j.Transcript = res.Transcript
	j.PIIDetected = res.PIIDetected
	j.PIISegments = res.PIISegments
	sum := res.Summary
	j.Summary = &sum
	j.Error = ""
	return nil
}

func (m *Memory) Fail(_ context.Context, id domain.JobID, cause string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	j, ok := m.jobs[id]
	if !ok {
		return domain.ErrNotFound
	}
	if j.Status.Terminal() {
		return nil
	}
	now := m.clock.Now()
	j.Status = domain.StatusFailed
	j.CompletedAt = &now
	j.Error = cause
	return nil
}

func (m *Memory) Get(_ context.Context, id domain.JobID) (*domain.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	j, ok := m.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (m *Memory) List(_ context.Context, limit, offset int) ([]*domain.Job, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*domain.Job, 0, limit)
	// newest-created first
	for i := len(m.order) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		j := m.jobs[m.order[i]]
		cp := *j
		out = append(out, &cp)
	}
	return out, len(m.order), nil
}

func (m *Memory) Delete(_ context.Context, id domain.JobID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.jobs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.jobs, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}
