package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/mystuff/mystuff/pkg/category"
	"github.com/mystuff/mystuff/pkg/item"
)

var errForeignKey = errors.New("foreign key constraint failed")

// RepositoryStub is an in-memory Repository for tests. It enforces the item to
// category reference like the SQL schemas do. Set FailLoad or FailCommit to make
// the next calls fail.
type RepositoryStub struct {
	mu         sync.Mutex
	categories []category.Category
	items      map[string]item.Item

	FailLoad   error
	FailCommit error
	Commits    int
	LastCommit ChangeSet
}

func NewRepositoryStub(categories []category.Category, items []item.Item) *RepositoryStub {
	s := &RepositoryStub{
		categories: slices.Clone(categories),
		items:      make(map[string]item.Item, len(items)),
	}
	for _, i := range items {
		s.items[i.ID] = i
	}
	return s
}

func (s *RepositoryStub) Load(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailLoad != nil {
		return Snapshot{}, s.FailLoad
	}
	items := make([]item.Item, 0, len(s.items))
	for _, i := range s.items {
		items = append(items, i)
	}
	return Snapshot{Categories: slices.Clone(s.categories), Items: items}, nil
}

// Commit applies the change set to a copy and swaps it in only when every step succeeded.
func (s *RepositoryStub) Commit(ctx context.Context, changes ChangeSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailCommit != nil {
		return s.FailCommit
	}

	categories := slices.Clone(s.categories)
	items := make(map[string]item.Item, len(s.items))
	for id, i := range s.items {
		items[id] = i
	}
	hasCategory := func(id string) bool {
		return slices.ContainsFunc(categories, func(c category.Category) bool { return c.ID == id })
	}

	for _, c := range changes.UpsertCategories {
		if idx := slices.IndexFunc(categories, func(existing category.Category) bool { return existing.ID == c.ID }); idx >= 0 {
			categories[idx] = c
		} else {
			categories = append(categories, c)
		}
	}
	for _, i := range changes.UpsertItems {
		if i.HasCategory() && !hasCategory(i.CategoryID) {
			return fmt.Errorf("item %s: %w", i.ID, errForeignKey)
		}
		items[i.ID] = i
	}
	for _, id := range changes.DeleteItems {
		delete(items, id)
	}
	for _, id := range changes.DeleteCategories {
		for _, i := range items {
			if i.CategoryID == id {
				return fmt.Errorf("category %s still referenced by item %s: %w", id, i.ID, errForeignKey)
			}
		}
		categories = slices.DeleteFunc(categories, func(c category.Category) bool { return c.ID == id })
	}

	s.categories = categories
	s.items = items
	s.Commits++
	s.LastCommit = changes
	return nil
}

func (s *RepositoryStub) Close() error {
	return nil
}
