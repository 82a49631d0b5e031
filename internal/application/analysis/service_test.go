package analysis

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bryanwahyu/video-pii-analyzer/internal/application"
	jobsdomain "github.com/bryanwahyu/video-pii-analyzer/internal/domain/jobs"
	"github.com/bryanwahyu/video-pii-analyzer/internal/domain/pii"
	"github.com/bryanwahyu/video-pii-analyzer/internal/domain/transcribe"
	"github.com/bryanwahyu/video-pii-analyzer/internal/infra/jobstore"
)

type fakeMedia struct {
	mu      sync.Mutex
	seq     int
	objects map[string][]byte
	removed map[string]int
}

func newFakeMedia() *fakeMedia {
	return &fakeMedia{objects: make(map[string][]byte), removed: make(map[string]int)}
}

func (f *fakeMedia) Save(_ context.Context, r io.Reader, _ string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	ref := fmt.Sprintf("ref-%d", f.seq)
	f.objects[ref] = data
	return ref, nil
}

func (f *fakeMedia) Open(_ context.Context, ref string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[ref]
	if !ok {
		return nil, errors.New("no such object")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeMedia) Remove(_ context.Context, ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed[ref]++
	delete(f.objects, ref)
	return nil
}

func (f *fakeMedia) removedCount(ref string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.removed[ref]
}

type fakeTranscriber struct {
	out transcribe.Transcript
	err error
}

func (f fakeTranscriber) Transcribe(context.Context, io.Reader, string) (transcribe.Transcript, error) {
	return f.out, f.err
}

func phoneService(store jobsdomain.Store, m *fakeMedia, tr transcribe.Transcript, trErr error) *Service {
	return NewService(
		store,
		m,
		fakeTranscriber{out: tr, err: trErr},
		pii.NewEnsemble(pii.NewPhoneDetector()),
		application.SystemClock{},
		1, 4,
	)
}

func waitTerminal(t *testing.T, store jobsdomain.Store, id jobsdomain.JobID) *jobsdomain.Job {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		j, err := store.Get(context.Background(), id)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if j.Status.Terminal() {
			return j
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("job %s never reached a terminal state", id)
	return nil
}

func TestSubmitVideoCompletes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := jobstore.NewMemory(nil)
	media := newFakeMedia()
	tr := transcribe.Transcript{
		Text: "my number is 91234567 thanks for watching",
		Segments: []transcribe.Segment{
			{Start: 0, End: 4.5, Text: " my number is 91234567 "},
			{Start: 4.5, End: 65.9, Text: " thanks for watching "},
		},
	}
	svc := phoneService(store, media, tr, nil)
	svc.Start(ctx)

	id, err := svc.SubmitVideo(ctx, strings.NewReader("fake video bytes"), "clip.mp4")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	j := waitTerminal(t, store, id)
	if j.Status != jobsdomain.StatusCompleted {
		t.Fatalf("expected completed, got %s (error=%q)", j.Status, j.Error)
	}
	if j.Transcript != tr.Text {
		t.Fatalf("unexpected transcript %q", j.Transcript)
	}
	if len(j.PIIDetected) != 1 || j.PIIDetected[0].Text != "91234567" {
		t.Fatalf("unexpected full report %+v", j.PIIDetected)
	}
	if len(j.PIISegments) != 1 {
		t.Fatalf("segment without PII should be omitted, got %+v", j.PIISegments)
	}
	if j.PIISegments[0].Timestamp != "0:00 -> 0:04" {
		t.Fatalf("unexpected timestamp %q", j.PIISegments[0].Timestamp)
	}
	if j.PIISegments[0].Text != "my number is 91234567" {
		t.Fatalf("segment text should be trimmed, got %q", j.PIISegments[0].Text)
	}
	if j.Summary == nil || j.Summary.TotalPIIItems != 1 || j.Summary.SegmentsWithPII != 1 {
		t.Fatalf("unexpected summary %+v", j.Summary)
	}
	if j.CompletedAt == nil {
		t.Fatalf("completed_at not set")
	}

	if got := media.removedCount("ref-1"); got != 1 {
		t.Fatalf("media should be released exactly once, got %d", got)
	}
}

func TestSubmitVideoTranscriptionFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := jobstore.NewMemory(nil)
	media := newFakeMedia()
	svc := phoneService(store, media, transcribe.Transcript{}, errors.New("media unreadable"))
	svc.Start(ctx)

	id, err := svc.SubmitVideo(ctx, strings.NewReader("not a video"), "broken.mp4")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	j := waitTerminal(t, store, id)
	if j.Status != jobsdomain.StatusFailed {
		t.Fatalf("expected failed, got %s", j.Status)
	}
	if !strings.Contains(j.Error, "media unreadable") {
		t.Fatalf("cause not recorded, got %q", j.Error)
	}
	if j.CompletedAt == nil {
		t.Fatalf("completed_at not set on failure")
	}

	if got := media.removedCount("ref-1"); got != 1 {
		t.Fatalf("media should be released exactly once on failure, got %d", got)
	}
}

func TestAnalyzeTextFindsPhones(t *testing.T) {
	svc := phoneService(jobstore.NewMemory(nil), newFakeMedia(), transcribe.Transcript{}, nil)

	report, summary := svc.AnalyzeText(context.Background(), "call 91234567 today")
	if len(report) != 1 || report[0].Kind != "PHONE_NUMBER" {
		t.Fatalf("unexpected report %+v", report)
	}
	if summary.TotalPIIItems != 1 || !summary.HasPrivacyConcerns {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if summary.SegmentsWithPII != 0 {
		t.Fatalf("text analysis has no segments, got %d", summary.SegmentsWithPII)
	}
}

func TestAnalyzeTextDegradesToEmptyReport(t *testing.T) {
	svc := NewService(
		jobstore.NewMemory(nil),
		newFakeMedia(),
		fakeTranscriber{},
		pii.NewEnsemble(failingDetector{}),
		application.SystemClock{},
		1, 4,
	)

	report, summary := svc.AnalyzeText(context.Background(), "call 91234567 today")
	if report == nil || len(report) != 0 {
		t.Fatalf("expected empty non-nil report, got %#v", report)
	}
	if summary.HasPrivacyConcerns {
		t.Fatalf("detector outage should degrade cleanly, got %+v", summary)
	}
}

type failingDetector struct{}

func (failingDetector) Name() string { return "down" }

func (failingDetector) Detect(context.Context, string) ([]pii.Entity, error) {
	return nil, errors.New("model offline")
}

func TestAnalyzeSegmentFilteringDoesNotTouchFullReport(t *testing.T) {
	svc := phoneService(jobstore.NewMemory(nil), newFakeMedia(), transcribe.Transcript{}, nil)

	tr := transcribe.Transcript{
		Text: "clean intro then 91234567 appears",
		Segments: []transcribe.Segment{
			{Start: 0, End: 3, Text: "clean intro then"},
			{Start: 3, End: 7, Text: "91234567 appears"},
		},
	}
	res := svc.Analyze(context.Background(), tr)

	if len(res.PIISegments) != 1 {
		t.Fatalf("expected only the phone segment, got %+v", res.PIISegments)
	}
	if len(res.PIIDetected) != 1 {
		t.Fatalf("full report must come from the whole transcript, got %+v", res.PIIDetected)
	}
	if res.Summary.SegmentsWithPII != 1 {
		t.Fatalf("unexpected summary %+v", res.Summary)
	}
}

func TestFormatWindow(t *testing.T) {
	cases := []struct {
		start, end float64
		want       string
	}{
		{0, 4.5, "0:00 -> 0:04"},
		{59.9, 65.2, "0:59 -> 1:05"},
		{600, 661, "10:00 -> 11:01"},
	}
	for _, c := range cases {
		if got := formatWindow(c.start, c.end); got != c.want {
			t.Fatalf("formatWindow(%v,%v) = %q, want %q", c.start, c.end, got, c.want)
		}
	}
}
