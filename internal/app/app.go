package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/mystuff/mystuff/internal/config"
	"github.com/mystuff/mystuff/internal/utils"
	log "github.com/sirupsen/logrus"
)

// Application wires configuration, storage, router, and server lifecycle.
type Application struct {
	cfg    config.Application
	deps   *Dependencies
	router *mux.Router
	srv    *http.Server
}

// NewApplication constructs the full HTTP application, ready to Run().
// Failing to open the store is fatal for the caller.
func NewApplication(ctx context.Context) (*Application, error) {
	cfg, err := config.Load("./config/application.yaml")
	if err != nil {
		return nil, err
	}
	if os.Getenv("LOG_LEVEL") == "" {
		log.SetLevel(cfg.LogLevel())
	}

	repo, err := OpenRepository(ctx, cfg)
	if err != nil {
		return nil, err
	}

	deps, err := BuildDependencies(ctx, repo, utils.SystemClock{})
	if err != nil {
		repo.Close()
		return nil, err
	}

	r := mux.NewRouter()
	SetupMiddleware(r)
	RegisterRoutes(r, deps)

	srv := &http.Server{
		Handler:      r,
		Addr:         cfg.Listen,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Application{cfg: cfg, deps: deps, router: r, srv: srv}, nil
}

// Run serves HTTP until ctx is cancelled, then shuts the server down and closes the store.
func (a *Application) Run(ctx context.Context) error {
	serveErr := make(chan error, 1)
	go func() {
		log.Infof("Starting server on %s (storage: %s)", a.srv.Addr, a.cfg.Storage.Driver)
		serveErr <- a.srv.ListenAndServe()
	}()

	var err error
	select {
	case err = <-serveErr:
	case <-ctx.Done():
		log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err = a.srv.Shutdown(shutdownCtx)
	}
	if errors.Is(err, http.ErrServerClosed) {
		err = nil
	}
	return errors.Join(err, a.deps.Close())
}
