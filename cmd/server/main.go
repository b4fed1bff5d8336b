package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Skufu/sickness-predictor/internal/advice"
	"github.com/Skufu/sickness-predictor/internal/audit"
	"github.com/Skufu/sickness-predictor/internal/model"
	"github.com/Skufu/sickness-predictor/internal/symptom"
	"github.com/Skufu/sickness-predictor/internal/telegram"
)

var version = "dev"

type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Config struct {
	Port           string
	ModelPath      string
	VectorizerPath string
	TopK           int
	AdviceFile     string
	EnableAudit    bool
	AuditDriver    string
	DatabaseURL    string
	TelegramToken  string
	LogLevel       string
}

func main() {
	gin.SetMode(getEnv("GIN_MODE", "release"))

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	artifacts, err := model.Load(cfg.ModelPath, cfg.VectorizerPath)
	if err != nil {
		logger.Fatal("Failed to load model artifacts", zap.Error(err))
	}
	predictor := symptom.New(artifacts.Vectorizer, artifacts.Classifier, symptom.WithTopK(cfg.TopK))
	logger.Info("Model loaded",
		zap.Int("classes", len(predictor.Classes())),
		zap.Int("features", artifacts.Vectorizer.NumFeatures()),
		zap.Int("top_k", predictor.TopK()))

	var responderOpts []advice.Option
	if cfg.AdviceFile != "" {
		overrides, err := advice.LoadOverrides(cfg.AdviceFile)
		if err != nil {
			logger.Fatal("Failed to load advice file", zap.String("path", cfg.AdviceFile), zap.Error(err))
		}
		responderOpts = append(responderOpts, advice.WithResponses(overrides))
	}
	responder := advice.NewResponder(responderOpts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		db  HealthChecker
		rec audit.Recorder
	)
	if cfg.EnableAudit {
		rec, err = audit.Open(ctx, cfg.AuditDriver, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("Audit store connection failed", zap.String("driver", cfg.AuditDriver), zap.Error(err))
		}
		db = rec
		logger.Info("Prediction audit enabled", zap.String("driver", cfg.AuditDriver))
	}
	trail := audit.NewTrail(rec, logger)
	defer trail.Close()

	bot, err := telegram.NewBot(cfg.TelegramToken, predictor, responder, trail, logger)
	if err != nil {
		logger.Fatal("Failed to start Telegram bot", zap.Error(err))
	}
	go func() {
		if err := bot.Start(ctx); err != nil {
			logger.Error("Telegram bot stopped", zap.Error(err))
		}
	}()

	api := &apiHandler{
		predictor: predictor,
		responder: responder,
		trail:     trail,
		logger:    logger,
		features:  artifacts.Vectorizer.NumFeatures(),
	}
	router := setupRouter(db, api)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	logger.Info("server listening", zap.String("port", cfg.Port), zap.String("version", version))
	waitForShutdown(ctx, server, logger)
}

func loadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		ModelPath:      getEnv("MODEL_PATH", "log_symptom.json"),
		VectorizerPath: getEnv("VECTORIZER_PATH", "vectorizer.json"),
		AdviceFile:     os.Getenv("ADVICE_FILE"),
		EnableAudit:    strings.EqualFold(getEnv("ENABLE_AUDIT", "false"), "true"),
		AuditDriver:    strings.ToLower(getEnv("AUDIT_DRIVER", "postgres")),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		TelegramToken:  os.Getenv("TELEGRAM_BOT_TOKEN"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}

	topK, err := strconv.Atoi(getEnv("TOP_K", strconv.Itoa(symptom.DefaultTopK)))
	if err != nil || topK < 1 {
		return nil, fmt.Errorf("TOP_K must be a positive integer")
	}
	cfg.TopK = topK

	if cfg.EnableAudit {
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when ENABLE_AUDIT=true")
		}
		if cfg.AuditDriver != "postgres" && cfg.AuditDriver != "sqlite" {
			return nil, fmt.Errorf("AUDIT_DRIVER must be postgres or sqlite, got %q", cfg.AuditDriver)
		}
	}

	return cfg, nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse LOG_LEVEL: %w", err)
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = lvl
	return zcfg.Build()
}

func waitForShutdown(ctx context.Context, server *http.Server, logger *zap.Logger) {
	<-ctx.Done()

	logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
