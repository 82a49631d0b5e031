package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	openaiapi "github.com/sashabaranov/go-openai"

	"github.com/bryanwahyu/video-pii-analyzer/internal/application"
	"github.com/bryanwahyu/video-pii-analyzer/internal/application/analysis"
	"github.com/bryanwahyu/video-pii-analyzer/internal/config"
	aiopenai "github.com/bryanwahyu/video-pii-analyzer/internal/infra/ai/openai"
	"github.com/bryanwahyu/video-pii-analyzer/internal/infra/httpserver"
	"github.com/bryanwahyu/video-pii-analyzer/internal/infra/jobstore"
	mediastore "github.com/bryanwahyu/video-pii-analyzer/internal/infra/media"
	domainmedia "github.com/bryanwahyu/video-pii-analyzer/internal/domain/media"
	"github.com/bryanwahyu/video-pii-analyzer/internal/domain/pii"
	"github.com/bryanwahyu/video-pii-analyzer/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// shared OpenAI client for transcription and the detector pool
	client := openaiapi.NewClient(cfg.OpenAI.APIKey)

	// detector pool: configured NER models plus the phone heuristic
	detectors := make([]pii.Detector, 0, len(cfg.OpenAI.Detectors)+1)
	for _, d := range cfg.OpenAI.Detectors {
		detectors = append(detectors, aiopenai.NewDetector(client, d.Name, d.Model, d.Focus))
	}
	detectors = append(detectors, pii.NewPhoneDetector())
	ensemble := pii.NewEnsemble(detectors...)

	// media store
	checkers := map[string]middleware.HealthChecker{}
	var store domainmedia.Store
	switch cfg.Storage.Backend {
	case "minio":
		s, err := mediastore.NewMinio(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			log.Fatalf("minio init error: %v", err)
		}
		store = s
		checkers["media"] = &middleware.PingHealthChecker{Pinger: s}
	default:
		s, err := mediastore.NewLocal(cfg.Storage.LocalDir)
		if err != nil {
			log.Fatalf("local store init error: %v", err)
		}
		store = s
	}

	// init service + worker pool
	svc := analysis.NewService(
		jobstore.NewMemory(application.SystemClock{}),
		store,
		aiopenai.NewTranscriber(client, cfg.OpenAI.TranscribeModel),
		ensemble,
		application.SystemClock{},
		cfg.Analysis.Workers,
		cfg.Analysis.QueueSize,
	)
	svc.Start(ctx)

	// init router
	handler := httpserver.NewRouter(svc, httpserver.Options{
		MaxUploadBytes:     int64(cfg.Server.MaxUploadMB) << 20,
		MaxTextBytes:       cfg.Analysis.MaxTextBytes,
		RateLimitCapacity:  cfg.Server.RateLimit.Capacity,
		RateLimitPerSecond: cfg.Server.RateLimit.RefillRate,
		HealthCheckers:     checkers,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Minute, // uploads can be large
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}

	// stop the worker pool and wait for in-flight jobs to settle
	cancel()
	svc.Wait()
}
