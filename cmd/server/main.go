package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"feldbeleg/internal/classify"
	"feldbeleg/internal/config"
	"feldbeleg/internal/email/noop"
	"feldbeleg/internal/email/ses"
	"feldbeleg/internal/extract"
	_ "feldbeleg/internal/extract/claude"
	_ "feldbeleg/internal/extract/gemini"
	_ "feldbeleg/internal/extract/openai"
	"feldbeleg/internal/handler"
	"feldbeleg/internal/ocr"
	"feldbeleg/internal/port"
	"feldbeleg/internal/refdata"
	"feldbeleg/internal/repository/postgres"
	"feldbeleg/internal/router"
	"feldbeleg/internal/service"
	s3storage "feldbeleg/internal/storage/s3"
	"feldbeleg/internal/validate"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	userRepo := postgres.NewUserRepo(db)
	docRepo := postgres.NewDocumentRepo(db)

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Reference data for field validation
	refs, err := refdata.Load(&cfg.RefData)
	if err != nil {
		return fmt.Errorf("failed to load reference data: %w", err)
	}

	// Extraction pipeline
	reader := ocr.NewClient(&cfg.OCR)
	classifier := classify.New(cfg.Classify.FormLanguage, classify.DefaultTemplates, cfg.Classify.MinSimilarity)
	extractor, err := buildExtractor(&cfg.Extractor)
	if err != nil {
		return fmt.Errorf("failed to initialize extractor: %w", err)
	}
	validator := validate.New(refs)

	// Email delivery
	sender, err := buildEmailSender(&cfg.Email)
	if err != nil {
		return fmt.Errorf("failed to initialize email sender: %w", err)
	}

	// Initialize services
	authSvc := service.NewAuthService(userRepo, cfg.JWT)
	userSvc := service.NewUserService(userRepo)
	docSvc := service.NewDocumentService(service.DocumentServiceParams{
		DocRepo:         docRepo,
		Storage:         s3Client,
		Reader:          reader,
		Classifier:      classifier,
		Extractor:       extractor,
		Validator:       validator,
		Bucket:          cfg.S3.Bucket,
		MaxFileSizeMB:   cfg.S3.MaxFileSizeMB,
		PresignExpiry:   cfg.S3.PresignExpiry,
		ExtractorModel:  cfg.Extractor.DefaultModel,
		ReconcilerModel: cfg.Extractor.ReconcileModel,
	})
	exportSvc := service.NewExportService(docRepo, s3Client, sender,
		cfg.S3.Bucket, cfg.S3.PresignExpiry, cfg.Export.SubjectPrefix)

	// Initialize handlers
	authH := handler.NewAuthHandler(authSvc)
	userH := handler.NewUserHandler(userSvc)
	docH := handler.NewDocumentHandler(docSvc)
	exportH := handler.NewExportHandler(exportSvc)
	healthH := handler.NewHealthHandler(db)

	r := router.Setup(cfg, authSvc, authH, userH, docH, exportH, healthH)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Extraction queue worker
	worker := service.NewExtractQueueWorker(docRepo, docSvc, service.ExtractQueueConfig{
		PollInterval: time.Duration(cfg.Queue.PollIntervalSecs) * time.Second,
		MaxRetries:   cfg.Queue.MaxRetries,
		Concurrency:  cfg.Queue.Concurrency,
	})
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		worker.Start(ctx)
	}()

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("server starting on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		stop()
		<-workerDone
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Printf("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
	<-workerDone
	return nil
}

// buildExtractor composes the configured provider with per-pass retries and
// multi-sample reconciliation.
func buildExtractor(cfg *config.ExtractorConfig) (port.InvoiceExtractor, error) {
	base, err := extract.NewExtractor(cfg.ProviderConfig())
	if err != nil {
		return nil, err
	}
	if fbCfg := cfg.FallbackProviderConfig(); fbCfg != nil {
		fallback, err := extract.NewExtractor(fbCfg)
		if err != nil {
			return nil, err
		}
		base = extract.NewFallbackExtractor(
			[]port.InvoiceExtractor{base, fallback},
			[]string{cfg.Provider, cfg.FallbackProvider})
	}

	var reconciler port.Reconciler = extract.StatisticalReconciler{}
	if cfg.ReconcileMode == "model" {
		reconcileCfg := cfg.ProviderConfig()
		if cfg.ReconcileModel != "" {
			reconcileCfg.DefaultModel = cfg.ReconcileModel
		}
		modelExtractor, err := extract.NewExtractor(reconcileCfg)
		if err != nil {
			return nil, err
		}
		r, ok := modelExtractor.(port.Reconciler)
		if !ok {
			return nil, fmt.Errorf("provider %s does not support model reconciliation", cfg.Provider)
		}
		reconciler = r
	}

	retried := extract.NewRetryExtractor(base, cfg.MaxRetries, time.Duration(cfg.RetryDelaySecs)*time.Second)
	return extract.NewEnsembleExtractor(retried, reconciler, cfg.Samples), nil
}

func buildEmailSender(cfg *config.EmailConfig) (port.EmailSender, error) {
	switch cfg.Provider {
	case "ses":
		return ses.NewSESSender(cfg.Region, cfg.FromAddress, cfg.FromName)
	default:
		return noop.NewNoopSender(), nil
	}
}
