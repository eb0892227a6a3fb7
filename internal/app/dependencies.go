package app

import (
	"context"
	"fmt"

	"github.com/mystuff/mystuff/internal/config"
	"github.com/mystuff/mystuff/internal/database"
	"github.com/mystuff/mystuff/internal/event_bus"
	"github.com/mystuff/mystuff/internal/utils"
	"github.com/mystuff/mystuff/pkg/inventory"
	"github.com/mystuff/mystuff/pkg/store"
	log "github.com/sirupsen/logrus"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Clock    utils.Clock
	EventBus *event_bus.EventBus
	Store    *store.Context

	InventoryService *inventory.ServiceImpl
	CsvItemsRenderer *inventory.CsvItemsRenderer
	InventoryHandler *inventory.Handler
	SummaryView      *inventory.SummaryView

	unsubscribe []func()
}

// OpenRepository opens and migrates the configured storage backend.
func OpenRepository(ctx context.Context, cfg config.Application) (store.Repository, error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		if err := database.MigratePostgres(cfg.Database); err != nil {
			return nil, err
		}
		pool, err := database.OpenPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		log.Infof("Using Postgres store at %s:%d/%s", cfg.Database.Host, cfg.Database.Port, cfg.Database.Name)
		return store.NewPostgresRepository(pool), nil
	case config.DriverSQLite:
		db, err := database.OpenSQLite(cfg.Storage.SQLite.Path)
		if err != nil {
			return nil, err
		}
		if err := database.MigrateSQLite(db); err != nil {
			db.Close()
			return nil, err
		}
		log.Infof("Using SQLite store at %s", cfg.Storage.SQLite.Path)
		return store.NewSQLiteRepository(db), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// BuildDependencies loads the store from repo and wires services and handlers on top of it.
func BuildDependencies(ctx context.Context, repo store.Repository, clock utils.Clock) (*Dependencies, error) {
	deps := &Dependencies{Clock: clock}

	deps.EventBus = event_bus.NewEventBus()
	storeCtx, err := store.NewContext(ctx, repo, deps.EventBus)
	if err != nil {
		return nil, fmt.Errorf("failed to load store: %w", err)
	}
	deps.Store = storeCtx

	deps.InventoryService = inventory.NewService(deps.Store, deps.Clock)
	deps.CsvItemsRenderer = inventory.NewCsvItemsRenderer()
	deps.InventoryHandler = inventory.NewHandler(deps.InventoryService, deps.CsvItemsRenderer, deps.Clock)

	deps.SummaryView = inventory.NewSummaryView(deps.Store, deps.EventBus, deps.Clock)
	deps.unsubscribe = append(deps.unsubscribe, logTotalsOnSave(deps.EventBus, deps.SummaryView))

	return deps, nil
}

// logTotalsOnSave logs the inventory totals after every successful save. It must be
// subscribed after the view so the view has already refreshed.
func logTotalsOnSave(bus *event_bus.EventBus, view *inventory.SummaryView) func() {
	return bus.Subscribe(func(e event_bus.Event) error {
		summary, _ := view.Current()
		log.Infof("Inventory: %d item(s), total value %.2f, daily cost %.2f",
			summary.ItemCount, summary.TotalValue, summary.TotalDailyCost)
		return nil
	}, event_bus.StoreSaved)
}

// Close detaches the subscribers and releases the store.
func (d *Dependencies) Close() error {
	for _, unsubscribe := range d.unsubscribe {
		unsubscribe()
	}
	d.SummaryView.Close()
	return d.Store.Close()
}
