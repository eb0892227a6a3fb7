package inventory

import (
	"errors"
	"sync"

	"github.com/mystuff/mystuff/internal/event_bus"
	"github.com/mystuff/mystuff/internal/utils"
	"github.com/mystuff/mystuff/pkg/item"
	"github.com/mystuff/mystuff/pkg/store"
	log "github.com/sirupsen/logrus"
)

// SummaryView keeps the filtered item list and its aggregates current. It
// recomputes from the store on every store notification.
type SummaryView struct {
	mu          sync.RWMutex
	store       *store.Context
	clock       utils.Clock
	categoryID  string
	summary     Summary
	items       []item.Item
	unsubscribe func()
}

func NewSummaryView(st *store.Context, bus *event_bus.EventBus, clock utils.Clock) *SummaryView {
	v := &SummaryView{store: st, clock: clock}
	v.Refresh()
	v.unsubscribe = event_bus.SubscribeTyped(bus, func(e event_bus.EventT[store.Change]) error {
		log.Tracef("Summary view refreshing after %s %s", e.Data.Kind, e.Data.EntityID)
		v.Refresh()
		return nil
	}, event_bus.StoreEvents...)
	return v
}

// Select switches the view to one category, or to every item when categoryID is empty.
func (v *SummaryView) Select(categoryID string) error {
	if categoryID != "" {
		if _, err := v.store.Category(categoryID); err != nil {
			return err
		}
	}
	v.mu.Lock()
	v.categoryID = categoryID
	v.mu.Unlock()
	v.Refresh()
	return nil
}

// Refresh recomputes the view as of the clock's now. A selected category that no
// longer exists falls back to every item.
func (v *SummaryView) Refresh() {
	v.mu.Lock()
	defer v.mu.Unlock()

	summary, items, err := summarize(v.store, v.categoryID, v.clock.Now())
	if errors.Is(err, store.ErrCategoryNotFound) {
		log.Debugf("Selected category %s is gone, showing all items", v.categoryID)
		v.categoryID = ""
		summary, items, err = summarize(v.store, "", v.clock.Now())
	}
	if err != nil {
		log.Errorf("Failed to refresh summary view: %v", err)
		return
	}
	v.summary = summary
	v.items = items
}

// Current returns the last computed summary and the items it covers.
func (v *SummaryView) Current() (Summary, []item.Item) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	items := make([]item.Item, len(v.items))
	copy(items, v.items)
	return v.summary, items
}

func (v *SummaryView) Close() {
	v.unsubscribe()
}
