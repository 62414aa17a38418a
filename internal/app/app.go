// Package app assembles the service from configuration: logger, provider
// chain, history store and HTTP router.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"translingo/internal/api"
	"translingo/internal/config"
	"translingo/internal/detect"
	"translingo/internal/provider"
	"translingo/internal/storage"
	"translingo/internal/worker"
)

const shutdownTimeout = 10 * time.Second

// App owns every long-lived component. Build it with New and release it
// with Close.
type App struct {
	Config     *config.Config
	Logger     *logrus.Logger
	Registry   *provider.Registry
	Resolver   *provider.Resolver
	Store      storage.Store
	Detector   detect.Heuristic
	Dispatcher *worker.Dispatcher

	// Remote is set when external detection is enabled.
	Remote api.RemoteDetector
}

// New builds the application from cfg.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logger, err := NewLogger(cfg.BasicConfig)
	if err != nil {
		return nil, err
	}
	reg, libre, err := NewRegistry(ctx, cfg)
	if err != nil {
		return nil, err
	}
	store, err := storage.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.BasicConfig.Storage, err)
	}

	dispatcher := worker.NewDispatcher(worker.DispatcherConfig{
		MinWorkers:        cfg.BasicConfig.MinWorkers,
		MaxWorkers:        cfg.BasicConfig.MaxWorkers,
		QueueSize:         cfg.BasicConfig.QueueSize,
		WorkerIdleTimeout: time.Duration(cfg.BasicConfig.WorkerIdleTimeout) * time.Minute,
	}, logger)

	a := &App{
		Config:     cfg,
		Logger:     logger,
		Registry:   reg,
		Resolver:   provider.NewResolver(reg, detect.Heuristic{}, logger),
		Store:      store,
		Dispatcher: dispatcher,
	}
	if cfg.BasicConfig.ExternalDetection && libre.Available() {
		a.Remote = libre
	}

	providers := make([]string, 0)
	for _, s := range reg.Statuses() {
		if s.Available {
			providers = append(providers, s.Name)
		}
	}
	logger.WithFields(logrus.Fields{
		"storage":            cfg.BasicConfig.Storage,
		"providers":          strings.Join(providers, ","),
		"external_detection": a.Remote != nil,
	}).Info("Application initialized")
	return a, nil
}

// NewLogger builds the logrus logger described by cfg.
func NewLogger(cfg config.BasicConfig) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	logger.SetLevel(level)
	if strings.EqualFold(cfg.LogFormat, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger, nil
}

// NewRegistry registers the providers in fallback order: DeepL, LLM,
// MyMemory, LibreTranslate. Only the last one rejects untranslated output.
func NewRegistry(ctx context.Context, cfg *config.Config) (*provider.Registry, *provider.LibreTranslate, error) {
	timeout := time.Duration(cfg.BasicConfig.ProviderTimeoutSeconds) * time.Second

	deepl := cfg.Provider(config.ProviderDeepL)
	llmCfg := cfg.Provider(config.ProviderLLM)
	llm, err := provider.NewLLM(ctx, provider.LLMConfig{
		Kind:    llmCfg.Kind,
		BaseURL: llmCfg.BaseURL,
		Model:   llmCfg.Model,
		APIKey:  llmCfg.APIKey,
		Timeout: timeout,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("init llm provider: %w", err)
	}
	myMemory := cfg.Provider(config.ProviderMyMemory)
	libreCfg := cfg.Provider(config.ProviderLibreTranslate)
	libre := provider.NewLibreTranslate(libreCfg.BaseURL, libreCfg.APIKey, timeout)

	reg := provider.NewRegistry()
	reg.Register(provider.NewDeepL(deepl.BaseURL, deepl.APIKey, timeout))
	reg.Register(llm)
	reg.Register(provider.NewMyMemory(myMemory.BaseURL, myMemory.Email, timeout))
	reg.Register(libre, provider.RejectUntranslated())
	return reg, libre, nil
}

// Handler returns the HTTP handler bound to the app's components.
func (a *App) Handler() *api.Handler {
	return api.NewHandler(api.Deps{
		Translator:   a.Resolver,
		Store:        a.Store,
		Detector:     a.Detector,
		Remote:       a.Remote,
		Providers:    a.Registry,
		Dispatcher:   a.Dispatcher,
		Logger:       a.Logger,
		HistoryLimit: a.Config.BasicConfig.HistoryLimit,
	})
}

// Router returns the gin engine serving the API.
func (a *App) Router() *gin.Engine {
	return api.NewRouter(a.Handler())
}

// Serve listens on the configured address until ctx is cancelled, then
// shuts the server down gracefully.
func (a *App) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.Config.BasicConfig.ServerAddress,
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.WithField("addr", srv.Addr).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server stopped: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.Logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	return nil
}

// Close stops the worker pool and releases the history store.
func (a *App) Close() error {
	if a.Dispatcher != nil {
		a.Dispatcher.Close()
	}
	if a.Store == nil {
		return nil
	}
	return a.Store.Close()
}
