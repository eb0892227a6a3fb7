package store

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/mystuff/mystuff/internal/event_bus"
	"github.com/mystuff/mystuff/pkg/category"
	"github.com/mystuff/mystuff/pkg/item"
	log "github.com/sirupsen/logrus"
)

// Entity is anything the Context can insert or delete: item.Item or category.Category.
type Entity interface {
	EntityID() string
}

// Change is the payload published with every store notification.
type Change = event_bus.Change

type set map[string]struct{}

// Context is the unit of work over the committed store. Mutations are staged in
// memory and visible to queries immediately; Save commits them atomically.
//
// Both directions of the item/category relation are indexed: categoryItems
// holds the items of every live category, itemCategory the category of every
// categorized item. Every mutation keeps the two in step.
type Context struct {
	mu   sync.RWMutex
	repo Repository
	bus  *event_bus.EventBus

	categories    map[string]category.Category
	categoryOrder []string
	items         map[string]item.Item
	categoryItems map[string]set
	itemCategory  map[string]string

	dirtyCategories set
	dirtyItems      set
}

// NewContext loads the committed snapshot from repo. bus may be nil when nobody listens.
func NewContext(ctx context.Context, repo Repository, bus *event_bus.EventBus) (*Context, error) {
	snapshot, err := repo.Load(ctx)
	if err != nil {
		return nil, &StorageError{Op: "load", Err: err}
	}
	c := &Context{repo: repo, bus: bus}
	if err := c.reset(snapshot); err != nil {
		return nil, err
	}
	log.Infof("Store loaded with %d categories and %d items", len(snapshot.Categories), len(snapshot.Items))
	return c, nil
}

func (c *Context) reset(snapshot Snapshot) error {
	categories := make(map[string]category.Category, len(snapshot.Categories))
	categoryOrder := make([]string, 0, len(snapshot.Categories))
	categoryItems := make(map[string]set, len(snapshot.Categories))
	for _, cat := range snapshot.Categories {
		categories[cat.ID] = cat
		categoryOrder = append(categoryOrder, cat.ID)
		categoryItems[cat.ID] = set{}
	}

	items := make(map[string]item.Item, len(snapshot.Items))
	itemCategory := make(map[string]string)
	for _, it := range snapshot.Items {
		if it.HasCategory() {
			members, ok := categoryItems[it.CategoryID]
			if !ok {
				return fmt.Errorf("item %s: %w", it.ID, ErrDanglingCategory)
			}
			members[it.ID] = struct{}{}
			itemCategory[it.ID] = it.CategoryID
		}
		items[it.ID] = it
	}

	c.categories = categories
	c.categoryOrder = categoryOrder
	c.categoryItems = categoryItems
	c.items = items
	c.itemCategory = itemCategory
	c.dirtyCategories = set{}
	c.dirtyItems = set{}
	return nil
}

// Insert stages a new item or category. An item must reference a live category or none.
func (c *Context) Insert(ctx context.Context, entity Entity) error {
	c.mu.Lock()
	change, err := c.insert(entity)
	c.mu.Unlock()
	if err != nil {
		return err
	}
	c.publish(ctx, change)
	return nil
}

func (c *Context) insert(entity Entity) (Change, error) {
	switch e := entity.(type) {
	case item.Item:
		if _, exists := c.items[e.ID]; exists {
			return Change{}, fmt.Errorf("item %s: %w", e.ID, ErrDuplicateID)
		}
		if err := c.checkCategory(e); err != nil {
			return Change{}, err
		}
		c.putItem(e)
		log.Debugf("Inserted item %s (%s)", e.ID, e.Name)
		return Change{Kind: event_bus.ItemInserted, EntityID: e.ID}, nil
	case category.Category:
		if _, exists := c.categories[e.ID]; exists {
			return Change{}, fmt.Errorf("category %s: %w", e.ID, ErrDuplicateID)
		}
		c.categories[e.ID] = e
		c.categoryOrder = append(c.categoryOrder, e.ID)
		c.categoryItems[e.ID] = set{}
		c.dirtyCategories[e.ID] = struct{}{}
		log.Debugf("Inserted category %s (%s)", e.ID, e.Name)
		return Change{Kind: event_bus.CategoryInserted, EntityID: e.ID}, nil
	default:
		return Change{}, fmt.Errorf("%w: %T", ErrUnsupportedEntity, entity)
	}
}

// Update replaces the fields of the live item with the same ID. The category may change.
func (c *Context) Update(ctx context.Context, it item.Item) error {
	c.mu.Lock()
	if _, exists := c.items[it.ID]; !exists {
		c.mu.Unlock()
		return fmt.Errorf("item %s: %w", it.ID, ErrItemNotFound)
	}
	if err := c.checkCategory(it); err != nil {
		c.mu.Unlock()
		return err
	}
	c.unindexItem(it.ID)
	c.putItem(it)
	c.mu.Unlock()

	log.Debugf("Updated item %s", it.ID)
	c.publish(ctx, Change{Kind: event_bus.ItemUpdated, EntityID: it.ID})
	return nil
}

// Delete stages the removal of an item or a category. Deleting a category
// deletes every item assigned to it first, in the same change set.
func (c *Context) Delete(ctx context.Context, entity Entity) error {
	c.mu.Lock()
	changes, err := c.delete(entity)
	c.mu.Unlock()
	if err != nil {
		return err
	}
	c.publish(ctx, changes...)
	return nil
}

func (c *Context) delete(entity Entity) ([]Change, error) {
	switch e := entity.(type) {
	case item.Item:
		if _, exists := c.items[e.ID]; !exists {
			return nil, fmt.Errorf("item %s: %w", e.ID, ErrItemNotFound)
		}
		c.removeItem(e.ID)
		log.Debugf("Deleted item %s", e.ID)
		return []Change{{Kind: event_bus.ItemDeleted, EntityID: e.ID}}, nil
	case category.Category:
		members, exists := c.categoryItems[e.ID]
		if !exists {
			return nil, fmt.Errorf("category %s: %w", e.ID, ErrCategoryNotFound)
		}
		changes := make([]Change, 0, len(members)+1)
		for _, itemID := range slices.Sorted(maps.Keys(members)) {
			c.removeItem(itemID)
			changes = append(changes, Change{Kind: event_bus.ItemDeleted, EntityID: itemID})
		}
		delete(c.categories, e.ID)
		delete(c.categoryItems, e.ID)
		c.categoryOrder = slices.DeleteFunc(c.categoryOrder, func(id string) bool { return id == e.ID })
		c.dirtyCategories[e.ID] = struct{}{}
		log.Debugf("Deleted category %s with %d item(s)", e.ID, len(changes))
		return append(changes, Change{Kind: event_bus.CategoryDeleted, EntityID: e.ID}), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedEntity, entity)
	}
}

func (c *Context) checkCategory(it item.Item) error {
	if !it.HasCategory() {
		return nil
	}
	if _, ok := c.categories[it.CategoryID]; !ok {
		return fmt.Errorf("item %s category %s: %w", it.ID, it.CategoryID, ErrDanglingCategory)
	}
	return nil
}

func (c *Context) putItem(it item.Item) {
	c.items[it.ID] = it
	if it.HasCategory() {
		c.categoryItems[it.CategoryID][it.ID] = struct{}{}
		c.itemCategory[it.ID] = it.CategoryID
	}
	c.dirtyItems[it.ID] = struct{}{}
}

func (c *Context) unindexItem(id string) {
	if categoryID, ok := c.itemCategory[id]; ok {
		delete(c.categoryItems[categoryID], id)
		delete(c.itemCategory, id)
	}
}

func (c *Context) removeItem(id string) {
	c.unindexItem(id)
	delete(c.items, id)
	c.dirtyItems[id] = struct{}{}
}

// Save commits the staged changes in one transaction. When the commit fails the
// staged changes are kept so the caller can retry, and a *StorageError is returned.
func (c *Context) Save(ctx context.Context) error {
	c.mu.Lock()
	changes := c.changeSet()
	if changes.IsEmpty() {
		c.mu.Unlock()
		return nil
	}
	if err := c.repo.Commit(ctx, changes); err != nil {
		c.mu.Unlock()
		log.Errorf("Failed to save changes: %v", err)
		return &StorageError{Op: "save", Err: err}
	}
	c.dirtyCategories = set{}
	c.dirtyItems = set{}
	c.mu.Unlock()

	log.Infof("Saved %d category and %d item change(s)",
		len(changes.UpsertCategories)+len(changes.DeleteCategories),
		len(changes.UpsertItems)+len(changes.DeleteItems))
	c.publish(ctx, Change{Kind: event_bus.StoreSaved})
	return nil
}

func (c *Context) changeSet() ChangeSet {
	var changes ChangeSet
	for _, id := range slices.Sorted(maps.Keys(c.dirtyCategories)) {
		if _, live := c.categories[id]; !live {
			changes.DeleteCategories = append(changes.DeleteCategories, id)
		}
	}
	for _, id := range c.categoryOrder {
		if _, dirty := c.dirtyCategories[id]; dirty {
			changes.UpsertCategories = append(changes.UpsertCategories, c.categories[id])
		}
	}
	for _, id := range slices.Sorted(maps.Keys(c.dirtyItems)) {
		if it, live := c.items[id]; live {
			changes.UpsertItems = append(changes.UpsertItems, it)
		} else {
			changes.DeleteItems = append(changes.DeleteItems, id)
		}
	}
	return changes
}

// Discard drops every staged change by reloading the committed snapshot.
func (c *Context) Discard(ctx context.Context) error {
	c.mu.Lock()
	snapshot, err := c.repo.Load(ctx)
	if err != nil {
		c.mu.Unlock()
		log.Errorf("Failed to reload store: %v", err)
		return &StorageError{Op: "discard", Err: err}
	}
	err = c.reset(snapshot)
	c.mu.Unlock()
	if err != nil {
		return err
	}
	c.publish(ctx, Change{Kind: event_bus.StoreDiscarded})
	return nil
}

func (c *Context) HasChanges() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.dirtyCategories) > 0 || len(c.dirtyItems) > 0
}

// Items returns every live item, most recent purchase first. Items bought on the
// same day are ordered newest created first.
func (c *Context) Items() []item.Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return sortedItems(slices.Collect(maps.Values(c.items)))
}

// ItemsOf returns the items of a category, ordered like Items.
func (c *Context) ItemsOf(categoryID string) ([]item.Item, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	members, ok := c.categoryItems[categoryID]
	if !ok {
		return nil, fmt.Errorf("category %s: %w", categoryID, ErrCategoryNotFound)
	}
	items := make([]item.Item, 0, len(members))
	for id := range members {
		items = append(items, c.items[id])
	}
	return sortedItems(items), nil
}

func (c *Context) Item(id string) (item.Item, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	it, ok := c.items[id]
	if !ok {
		return item.Item{}, fmt.Errorf("item %s: %w", id, ErrItemNotFound)
	}
	return it, nil
}

// Categories returns the live categories in insertion order.
func (c *Context) Categories() []category.Category {
	c.mu.RLock()
	defer c.mu.RUnlock()
	categories := make([]category.Category, 0, len(c.categoryOrder))
	for _, id := range c.categoryOrder {
		categories = append(categories, c.categories[id])
	}
	return categories
}

func (c *Context) Category(id string) (category.Category, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cat, ok := c.categories[id]
	if !ok {
		return category.Category{}, fmt.Errorf("category %s: %w", id, ErrCategoryNotFound)
	}
	return cat, nil
}

func (c *Context) CategoryByName(name string) (category.Category, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, id := range c.categoryOrder {
		if c.categories[id].Name == name {
			return c.categories[id], true
		}
	}
	return category.Category{}, false
}

// Close releases the underlying repository.
func (c *Context) Close() error {
	return c.repo.Close()
}

// publish notifies subscribers of changes already applied in memory. Observers
// must see them even when the caller's context is cancelled by now.
func (c *Context) publish(ctx context.Context, changes ...Change) {
	if c.bus == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	for _, change := range changes {
		if err := c.bus.Publish(event_bus.NewEvent(ctx, change.Kind, change)); err != nil {
			log.Warnf("Store notification %s for %q failed: %v", change.Kind, change.EntityID, err)
		}
	}
}

func sortedItems(items []item.Item) []item.Item {
	slices.SortFunc(items, func(a, b item.Item) int {
		if n := b.PurchaseDate.Compare(a.PurchaseDate); n != 0 {
			return n
		}
		if n := b.CreatedAt.Compare(a.CreatedAt); n != 0 {
			return n
		}
		return strings.Compare(a.ID, b.ID)
	})
	return items
}
