package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/raushan1140/invoice-po-matcher/internal/async"
	"github.com/raushan1140/invoice-po-matcher/internal/config"
	"github.com/raushan1140/invoice-po-matcher/internal/extract"
	"github.com/raushan1140/invoice-po-matcher/internal/parse"
	"github.com/raushan1140/invoice-po-matcher/internal/query"
	"github.com/raushan1140/invoice-po-matcher/internal/reconcile"
	"github.com/raushan1140/invoice-po-matcher/internal/repository"
	"github.com/raushan1140/invoice-po-matcher/internal/server"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := repository.Open(cfg.Database.Path, cfg.Database.BusyTimeout, logger)
	if err != nil {
		logger.Error("database init failed", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := store.HealthCheck(ctx); err != nil {
		logger.Error("database health check failed", "error", err)
		os.Exit(1)
	}

	extractor := extract.NewExtractor(extract.Config{
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		TessdataDir:   cfg.OCR.TessdataDir,
		PSM:           cfg.OCR.PSM,
		MedianRadius:  cfg.OCR.MedianRadius,
	}, logger)
	parser := parse.NewParser(extractor, logger)

	pool := async.NewExtractionPool(parser, logger,
		async.WithWorkers(cfg.OCR.Workers),
		async.WithTimeout(cfg.OCR.Timeout),
	)

	validator := reconcile.NewValidator(cfg.Matching, logger)

	translator := query.NewTranslator(cfg.LLM, logger)
	if translator == nil {
		logger.Info("no OpenAI API key configured, query engine uses pattern fallback only")
	}
	engine := query.NewEngine(store, translator, logger)

	srv := server.New(cfg, store, pool, validator, engine, logger)
	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	pool.Shutdown(shutdownCtx)

	logger.Info("stopped")
}
