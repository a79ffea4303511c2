package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/yoockh/scribely/config"
	"github.com/yoockh/scribely/internal/api/handlers"
	"github.com/yoockh/scribely/internal/api/middleware"
	"github.com/yoockh/scribely/internal/api/routes"
	"github.com/yoockh/scribely/internal/cache"
	"github.com/yoockh/scribely/internal/logger"
	"github.com/yoockh/scribely/internal/providers/llm"
	"github.com/yoockh/scribely/internal/providers/stt"
	mongorepo "github.com/yoockh/scribely/internal/repositories/mongo"
	pgrepo "github.com/yoockh/scribely/internal/repositories/postgres"
	"github.com/yoockh/scribely/internal/services"
	"github.com/yoockh/scribely/internal/storage"
	"github.com/yoockh/scribely/internal/workers"
)

func main() {
	_ = godotenv.Load()
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Job status cache: Redis when configured, in-process otherwise
	var jobCache cache.Cache = cache.NewMemoryCache()
	rdb, err := config.InitRedis(ctx)
	switch {
	case err == nil:
		defer rdb.Close()
		jobCache = cache.NewRedisCache(rdb)
		log.Info("redis connected")
	case errors.Is(err, config.ErrNotConfigured):
		log.Info("redis not configured, job status kept in memory")
	default:
		log.WithError(err).Fatal("redis init error")
	}

	// Job history
	var jobRepo mongorepo.JobRepository
	mc, mdb, err := config.InitMongo(ctx)
	switch {
	case err == nil:
		defer func() { _ = mc.Disconnect(context.Background()) }()
		if err := config.EnsureMongoIndexes(ctx, mdb); err != nil {
			log.WithError(err).Fatal("mongo index setup failed")
		}
		jobRepo = mongorepo.NewJobRepo(mdb)
		log.Info("mongodb connected")
	case errors.Is(err, config.ErrNotConfigured):
		log.Info("mongodb not configured, job history disabled")
	default:
		log.WithError(err).Fatal("mongodb init error")
	}

	// Note index
	var noteRepo pgrepo.NoteRepository
	pg, err := config.InitPostgres()
	switch {
	case err == nil:
		if err := config.MigratePostgres(pg); err != nil {
			log.WithError(err).Fatal("postgres migration failed")
		}
		noteRepo = pgrepo.NewNoteRepo(pg)
		log.Info("postgresql connected")
	case errors.Is(err, config.ErrNotConfigured):
		log.Info("postgresql not configured, note index disabled")
	default:
		log.WithError(err).Fatal("postgresql init error")
	}

	// Upload archive
	var archive storage.Uploader
	if cfg.GCSBucket != "" {
		gcs, err := storage.NewGCSUploader(ctx, cfg.GCSBucket)
		if err != nil {
			log.WithError(err).Fatal("gcs init error")
		}
		defer gcs.Close()
		archive = gcs
	}

	var model llm.Provider
	if cfg.LLMConfigured() {
		gemini, err := llm.NewVertexGemini(ctx, cfg.GCPProjectID, cfg.GCPLocation, llm.GeminiOptions{Model: cfg.GeminiModel})
		if err != nil {
			log.WithError(err).Fatal("vertex ai init error")
		}
		defer gemini.Close()
		log.WithField("model", gemini.Model()).Info("vertex ai ready")
		model = gemini
	} else {
		log.Warn("GCP_PROJECT_ID not set, processing requests will fail with a configuration error")
	}

	speech, err := newSpeech(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("stt init error")
	}
	if speech != nil {
		defer speech.Close()
		log.WithField("provider", speech.Name()).Info("audio transcription enabled")
	}

	jobs := services.NewJobService(jobCache, jobRepo, cfg.JobTTL, log)
	notes := services.NewNoteWriter(cfg.BaseDirectory, services.DefaultSpecialCategories, noteRepo, log)
	transcripts := services.NewTranscriptService(services.NewAIService(model, log), notes, speech, log)

	pool := &workers.FileWorkerPool{
		Jobs:        jobs,
		Transcripts: transcripts,
		Archive:     archive,
		NumWorkers:  cfg.ProcessingWorkers,
		QueueSize:   cfg.QueueSize,
		JobTimeout:  cfg.JobTimeout,
		Logger:      log,
	}
	if err := pool.Start(ctx); err != nil {
		log.WithError(err).Fatal("worker pool start failed")
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))
	routes.RegisterRoutes(r, routes.Deps{
		Transcript:     handlers.NewTranscriptHandler(transcripts, jobs, pool, log),
		Jobs:           handlers.NewJobHandler(jobs),
		Notes:          handlers.NewNoteHandler(services.NewNoteService(noteRepo, log)),
		Logger:         log,
		MaxUploadBytes: cfg.MaxUploadBytes,
		JWTSecret:      cfg.JWTSecret,
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		log.WithFields(logrus.Fields{
			"addr":           srv.Addr,
			"base_directory": cfg.BaseDirectory,
			"workers":        cfg.ProcessingWorkers,
		}).Info("server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
		_ = srv.Close()
	}

	cancel()
	pool.Wait()
	log.Info("server stopped")
}

func newSpeech(ctx context.Context, cfg *config.AppConfig) (stt.Provider, error) {
	switch cfg.STTProvider {
	case config.STTGoogle:
		g, err := stt.NewGoogleSpeech(ctx, cfg.STTLanguage)
		if err != nil {
			return nil, err
		}
		return g, nil
	case config.STTWhisper:
		return stt.NewWhisperWebservice(cfg.WhisperServiceURL, cfg.JobTimeout), nil
	}
	return nil, nil
}
