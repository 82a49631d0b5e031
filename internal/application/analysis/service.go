package analysis

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/bryanwahyu/video-pii-analyzer/internal/application"
	jobsdomain "github.com/bryanwahyu/video-pii-analyzer/internal/domain/jobs"
	"github.com/bryanwahyu/video-pii-analyzer/internal/domain/media"
	"github.com/bryanwahyu/video-pii-analyzer/internal/domain/pii"
	"github.com/bryanwahyu/video-pii-analyzer/internal/domain/transcribe"
	"github.com/bryanwahyu/video-pii-analyzer/internal/middleware"
)

// Service implements the analysis use-cases: synchronous text checks
// and the asynchronous per-job media pipeline. Submitted jobs go
// through an explicit work queue consumed by a fixed worker pool; the
// job store stays the single source of truth for status.
// Service is safe for concurrent use.
type Service struct {
	Jobs        jobsdomain.Store
	Media       media.Store
	Transcriber transcribe.Transcriber
	Ensemble    *pii.Ensemble
	Clock       application.Clock

	queue   chan task
	workers int
	wg      sync.WaitGroup
}

type task struct {
	id       jobsdomain.JobID
	ref      string
	filename string
}

func NewService(store jobsdomain.Store, mediaStore media.Store, tr transcribe.Transcriber, ens *pii.Ensemble, clock application.Clock, workers, queueSize int) *Service {
	if workers <= 0 {
		workers = 2
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	if clock == nil {
		clock = application.SystemClock{}
	}
	return &Service{
		Jobs:        store,
		Media:       mediaStore,
		Transcriber: tr,
		Ensemble:    ens,
		Clock:       clock,
		queue:       make(chan task, queueSize),
		workers:     workers,
	}
}

// Start launches the worker pool. Workers exit when ctx is cancelled;
// Wait blocks until they are done.
func (s *Service) Start(ctx context.Context) {
	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case t := <-s.queue:
					s.process(ctx, t)
				}
			}
		}()
	}
}

func (s *Service) Wait() { s.wg.Wait() }

// SubmitVideo stores the uploaded media, registers a queued job and
// hands it to the pipeline. The returned id is what callers poll.
func (s *Service) SubmitVideo(ctx context.Context, r io.Reader, filename string) (jobsdomain.JobID, error) {
	ref, err := s.Media.Save(ctx, r, filename)
	if err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}

	id := jobsdomain.JobID(uuid.New().String())
	job := &jobsdomain.Job{
		ID:               id,
		Status:           jobsdomain.StatusQueued,
		SourceRef:        ref,
		OriginalFilename: filename,
		CreatedAt:        s.Clock.Now(),
	}
	if err := s.Jobs.Create(ctx, job); err != nil {
		_ = s.Media.Remove(context.Background(), ref)
		return "", err
	}

	middleware.IncrementJobs()
	select {
	case s.queue <- task{id: id, ref: ref, filename: filename}:
	case <-ctx.Done():
		_ = s.Jobs.Fail(context.Background(), id, "submission cancelled before analysis started")
		_ = s.Media.Remove(context.Background(), ref)
		return "", ctx.Err()
	}
	return id, nil
}

// AnalyzeText is the synchronous variant: no transcription, no job.
// A total detector outage degrades to an empty report, it never fails.
func (s *Service) AnalyzeText(ctx context.Context, text string) (pii.Report, pii.Summary) {
	report := s.Ensemble.Reconcile(ctx, text)
	return report, pii.Summarize(report, 0)
}

// process drives one job to a terminal state. The media reference is
// released exactly once whichever way the job ends.
func (s *Service) process(ctx context.Context, t task) {
	middleware.IncrementJobsRunning()
	defer middleware.DecrementJobsRunning()
	defer func() {
		if err := s.Media.Remove(context.Background(), t.ref); err != nil {
			log.Printf("job %s: release media %s: %v", t.id, t.ref, err)
		}
	}()

	if err := s.Jobs.MarkProcessing(ctx, t.id); err != nil {
		log.Printf("job %s: mark processing: %v", t.id, err)
		return
	}

	rc, err := s.Media.Open(ctx, t.ref)
	if err != nil {
		s.fail(t.id, fmt.Errorf("open media: %w", err))
		return
	}
	transcript, err := s.Transcriber.Transcribe(ctx, rc, t.filename)
	rc.Close()
	if err != nil {
		s.fail(t.id, err)
		return
	}

	res := s.Analyze(ctx, transcript)
	if err := s.Jobs.Complete(context.Background(), t.id, res); err != nil {
		log.Printf("job %s: complete: %v", t.id, err)
		return
	}
	log.Printf("job %s: analysis completed, %d PII items", t.id, res.Summary.TotalPIIItems)
}

func (s *Service) fail(id jobsdomain.JobID, cause error) {
	middleware.IncrementJobsFailed()
	log.Printf("job %s: analysis failed: %v", id, cause)
	if err := s.Jobs.Fail(context.Background(), id, cause.Error()); err != nil {
		log.Printf("job %s: record failure: %v", id, err)
	}
}

// Analyze reconciles the full transcript and every timed segment.
// Segments without PII are left out of the segment reports but the
// full-transcript report is unaffected by segment filtering. The
// summary derives from the full report only.
func (s *Service) Analyze(ctx context.Context, tr transcribe.Transcript) jobsdomain.Result {
	full := s.Ensemble.Reconcile(ctx, tr.Text)

	segReports := make([]pii.SegmentReport, 0)
	for _, seg := range tr.Segments {
		text := strings.TrimSpace(seg.Text)
		rep := s.Ensemble.Reconcile(ctx, text)
		if len(rep) == 0 {
			continue
		}
		segReports = append(segReports, pii.SegmentReport{
			Timestamp: formatWindow(seg.Start, seg.End),
			Text:      text,
			PII:       rep,
		})
	}

	return jobsdomain.Result{
		Transcript:  tr.Text,
		PIIDetected: full,
		PIISegments: segReports,
		Summary:     pii.Summarize(full, len(segReports)),
	}
}

// formatWindow renders a segment window as "M:SS -> M:SS" with floored
// minutes and zero-padded seconds.
func formatWindow(start, end float64) string {
	return fmt.Sprintf("%s -> %s", formatTimestamp(start), formatTimestamp(end))
}

func formatTimestamp(sec float64) string {
	s := int(sec)
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}
