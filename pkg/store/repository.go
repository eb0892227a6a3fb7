package store

import (
	"context"

	"github.com/mystuff/mystuff/pkg/category"
	"github.com/mystuff/mystuff/pkg/item"
)

// Snapshot is the committed state of the store. Categories are in insertion order.
type Snapshot struct {
	Categories []category.Category
	Items      []item.Item
}

// ChangeSet is everything a Context has staged since the last save. A Repository
// applies it in one transaction in this order: upsert categories, upsert items,
// delete items, delete categories.
type ChangeSet struct {
	UpsertCategories []category.Category
	UpsertItems      []item.Item
	DeleteItems      []string
	DeleteCategories []string
}

func (c ChangeSet) IsEmpty() bool {
	return len(c.UpsertCategories) == 0 && len(c.UpsertItems) == 0 &&
		len(c.DeleteItems) == 0 && len(c.DeleteCategories) == 0
}

type Repository interface {
	Load(ctx context.Context) (Snapshot, error)
	Commit(ctx context.Context, changes ChangeSet) error
	Close() error
}
