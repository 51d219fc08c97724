package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/rida027/stressfree/internal/api"
	"github.com/rida027/stressfree/internal/config"
	dbstore "github.com/rida027/stressfree/internal/db"
	"github.com/rida027/stressfree/internal/logging"
	"github.com/rida027/stressfree/internal/middleware"
	"github.com/rida027/stressfree/internal/services"
)

var (
	commit    = "dev"
	buildTime = ""
)

func main() {
	configDir := flag.String("config", "config", "directory containing config.yaml")
	flag.Parse()

	if err := run(*configDir); err != nil {
		fmt.Fprintf(os.Stderr, "stressfree: %v\n", err)
		os.Exit(1)
	}
}

func run(configDir string) error {
	loader := config.NewLoader(configDir)
	cfg, err := loader.Load()
	if err != nil {
		return err
	}

	log, level, err := logging.Init(logging.Options{
		Level:      cfg.Logging.Level,
		Directory:  cfg.Logging.Directory,
		MaxSize:    cfg.Logging.MaxSize,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAge:     cfg.Logging.MaxAge,
		Compress:   cfg.Logging.Compress,
	})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	loader.Watch(log, func(next *config.Config) {
		lvl, err := logging.ParseLevel(next.Logging.Level)
		if err != nil {
			log.Warn("ignoring invalid log level", zap.Error(err))
			return
		}
		level.SetLevel(lvl)
		log.Info("log level applied", zap.String("level", lvl.String()))
	})

	questionnaires := []services.Questionnaire{services.PHQ9()}
	if path := cfg.Assessment.QuestionnairePath; path != "" {
		q, err := services.LoadQuestionnaire(path)
		if err != nil {
			return fmt.Errorf("load questionnaire: %w", err)
		}
		questionnaires = append(questionnaires, *q)
		log.Info("questionnaire registered", zap.String("id", q.ID), zap.String("path", path))
	}

	store, closeStore, err := openStore(cfg.Store, log, questionnaires...)
	if err != nil {
		return err
	}
	defer closeStore()

	router := api.NewRouter(store, log, questionnaires...)
	if cfg.Assessment.RiskThreshold > 0 {
		router.Assessments().SetRiskThreshold(cfg.Assessment.RiskThreshold)
	}

	mux := http.NewServeMux()
	router.Register(mux)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":             true,
			"name":           "StressFree API",
			"store":          cfg.Store.Driver,
			"questionnaires": router.Assessments().QuestionnaireIDs(),
			"commit":         commit,
			"build_time":     buildTime,
		})
	})

	handler := middleware.Chain(mux,
		middleware.RequestLogger(log),
		middleware.CORS(cfg.CORS.AllowOrigin),
		middleware.SecureHeaders,
		middleware.NoStore,
	)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("StressFree server listening", zap.String("addr", srv.Addr), zap.String("store", cfg.Store.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openStore(cfg config.StoreConfig, log *zap.Logger, questionnaires ...services.Questionnaire) (api.Store, func(), error) {
	if cfg.Driver == "memory" || cfg.Driver == "" {
		return api.NewMemoryStore(), func() {}, nil
	}
	if cfg.Driver == "sqlite" {
		if err := ImportSnapshotIfNeeded(cfg.SnapshotPath, cfg.SQLitePath, cfg.MigrationsDir, log, questionnaires...); err != nil {
			return nil, nil, err
		}
	}
	sqlDB, err := dbstore.Open(cfg.Driver, dbstore.DialectConfig{Path: cfg.SQLitePath, URL: cfg.URL})
	if err != nil {
		return nil, nil, err
	}
	applied, err := dbstore.RunMigrations(sqlDB, cfg.MigrationsDir)
	if err != nil {
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}
	if len(applied) > 0 {
		log.Info("migrations applied", zap.String("driver", cfg.Driver), zap.Strings("files", applied))
	}
	store, err := dbstore.NewSQLStore(sqlDB, log)
	if err != nil {
		_ = sqlDB.Close()
		return nil, nil, err
	}
	return store, func() {
		if err := store.Close(); err != nil {
			log.Warn("failed to close database", zap.Error(err))
		}
	}, nil
}
