package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatali-fataliyev/budget_insights/api"
	"github.com/fatali-fataliyev/budget_insights/internal/auth"
	"github.com/fatali-fataliyev/budget_insights/internal/budget"
	"github.com/fatali-fataliyev/budget_insights/internal/config"
	"github.com/fatali-fataliyev/budget_insights/internal/storage"
	"github.com/fatali-fataliyev/budget_insights/logging"
	"github.com/rs/cors"
)

const shutdownTimeout = 10 * time.Second

// sessionBackend is a budget store that also holds login sessions.
type sessionBackend interface {
	budget.Storage
	auth.SessionStore
}

func main() {
	if err := run(); err != nil {
		logging.Logger.Errorf("application stopped: %v", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := logging.Init(cfg.LogLevel, cfg.AppEnv, cfg.LogDir); err != nil {
		fmt.Println("failed to initialize logger:", err)
		return err
	}

	logging.Logger.Info("application starting...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	verifier, err := newVerifier(ctx, cfg, store)
	if err != nil {
		return err
	}

	bt := budget.NewBudgetTracker(store, budget.WithMaxDateRangeDays(cfg.MaxDateRangeDays))
	handler := api.NewRouter(api.NewApi(bt, verifier))

	corsConf := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", api.TraceIDHeader},
		ExposedHeaders:   []string{"Content-Disposition", api.TraceIDHeader},
		AllowCredentials: true,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           corsConf.Handler(handler),
		ReadHeaderTimeout: cfg.RequestTimeout,
		ReadTimeout:       cfg.RequestTimeout,
		WriteTimeout:      cfg.RequestTimeout,
		IdleTimeout:       2 * cfg.RequestTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logging.Logger.Infof("starting server on port %s (storage=%s, auth=%s)", cfg.Port, bt.StorageType, cfg.AuthProvider)
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logging.Logger.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

func openStorage(ctx context.Context, cfg *config.Config) (sessionBackend, func(), error) {
	if cfg.DataBackend == config.BackendMemory {
		logging.Logger.Warn("using in-memory storage, data is lost on restart")
		return storage.NewInMemoryStorage(), func() {}, nil
	}

	db, err := storage.Init(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	closeDB := func() {
		if err := db.Close(); err != nil {
			logging.Logger.Warnf("failed to close database: %v", err)
		}
	}
	return storage.NewMySQLStorage(db), closeDB, nil
}

func newVerifier(ctx context.Context, cfg *config.Config, sessions auth.SessionStore) (auth.Verifier, error) {
	switch cfg.AuthProvider {
	case config.AuthFirebase:
		fv, err := auth.NewFirebaseVerifier(ctx, cfg.FirebaseProjectID, cfg.FirebaseCredentialFile)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize firebase auth: %w", err)
		}
		return fv, nil
	case config.AuthDev:
		logging.Logger.Warn("dev auth provider trusts bearer tokens as user ids")
		return auth.DevVerifier{}, nil
	default:
		return auth.NewSessionVerifier(sessions), nil
	}
}
