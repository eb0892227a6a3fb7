package inventory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mystuff/mystuff/internal/utils"
	"github.com/mystuff/mystuff/pkg/category"
	"github.com/mystuff/mystuff/pkg/item"
	"github.com/mystuff/mystuff/pkg/store"
	log "github.com/sirupsen/logrus"
)

// ErrValidation marks user input that was rejected before touching the store.
// It is always joined with the specific cause, e.g. item.ErrInvalidPrice.
var ErrValidation = errors.New("invalid input")

// AllCategoriesName labels a summary computed over every item.
const AllCategoriesName = "All"

// Summary holds the aggregates of the items in view.
type Summary struct {
	CategoryID     string
	CategoryName   string
	ItemCount      int
	TotalValue     float64
	TotalDailyCost float64
}

type Service interface {
	CreateCategory(ctx context.Context, name string) (category.Category, error)
	// CreateCategoryForDraft creates a category and selects it in the draft.
	CreateCategoryForDraft(ctx context.Context, draft *ItemDraft, name string) (category.Category, error)
	CreateItem(ctx context.Context, draft ItemDraft) (item.Item, error)
	EditDraft(ctx context.Context, id string) (ItemDraft, error)
	EditItem(ctx context.Context, id string, draft ItemDraft) (item.Item, error)
	DeleteItems(ctx context.Context, ids ...string) error
	DeleteCategory(ctx context.Context, id string) error
	ListItems(ctx context.Context, categoryID string) ([]item.Item, error)
	ListCategories(ctx context.Context) []category.Category
	Summary(ctx context.Context, categoryID string) (Summary, error)
}

// ServiceImpl is the single writer of the store. Mutations are serialized so that
// each one validates and saves against the state it saw.
type ServiceImpl struct {
	mu    sync.Mutex
	store *store.Context
	clock utils.Clock
}

func NewService(st *store.Context, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{store: st, clock: clock}
}

func (s *ServiceImpl) CreateCategory(ctx context.Context, name string) (category.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createCategory(ctx, name)
}

func (s *ServiceImpl) CreateCategoryForDraft(ctx context.Context, draft *ItemDraft, name string) (category.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	created, err := s.createCategory(ctx, name)
	if err != nil {
		return category.Category{}, err
	}
	draft.CategoryID = created.ID
	return created, nil
}

func (s *ServiceImpl) createCategory(ctx context.Context, name string) (category.Category, error) {
	if err := s.validateCategoryName(name); err != nil {
		return category.Category{}, err
	}

	created := category.New(name)
	if err := s.store.Insert(ctx, created); err != nil {
		return category.Category{}, err
	}
	if err := s.store.Save(ctx); err != nil {
		return category.Category{}, err
	}
	log.Infof("Created category %s (%s)", created.ID, created.Name)
	return created, nil
}

func (s *ServiceImpl) validateCategoryName(name string) error {
	if err := category.ValidateName(name, s.store.Categories()); err != nil {
		if errors.Is(err, category.ErrDuplicateName) {
			log.Debugf("Category %q already exists", name)
			return err
		}
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return nil
}

// draftCategory resolves the category a parsed draft files its item under. When the
// draft names a new category, that category is returned unsaved and the draft points at it.
func (s *ServiceImpl) draftCategory(draft ItemDraft, parsed *parsedDraft) (*category.Category, error) {
	if draft.NewCategoryName == "" {
		return nil, s.checkCategory(parsed.categoryID)
	}
	if err := s.validateCategoryName(draft.NewCategoryName); err != nil {
		return nil, err
	}
	created := category.New(draft.NewCategoryName)
	parsed.categoryID = created.ID
	return &created, nil
}

func (s *ServiceImpl) insertCategory(ctx context.Context, c *category.Category) error {
	if c == nil {
		return nil
	}
	return s.store.Insert(ctx, *c)
}

// CreateItem validates the whole draft, including a new category it names, before
// anything is staged. Item and new category are saved together.
func (s *ServiceImpl) CreateItem(ctx context.Context, draft ItemDraft) (item.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	parsed, err := draft.parse()
	if err != nil {
		return item.Item{}, err
	}
	newCategory, err := s.draftCategory(draft, &parsed)
	if err != nil {
		return item.Item{}, err
	}

	created := item.New(parsed.name, parsed.purchaseDate, parsed.price, parsed.categoryID)
	if err := s.insertCategory(ctx, newCategory); err != nil {
		return item.Item{}, err
	}
	if err := s.store.Insert(ctx, created); err != nil {
		return item.Item{}, err
	}
	if err := s.store.Save(ctx); err != nil {
		return item.Item{}, err
	}
	log.Infof("Created item %s (%s)", created.ID, created.Name)
	return created, nil
}

func (s *ServiceImpl) EditDraft(ctx context.Context, id string) (ItemDraft, error) {
	existing, err := s.store.Item(id)
	if err != nil {
		return ItemDraft{}, err
	}
	return draftOf(existing), nil
}

// EditItem applies the draft to the item with the given id. The item keeps its identity.
// Nothing is changed or saved when the draft does not parse.
func (s *ServiceImpl) EditItem(ctx context.Context, id string, draft ItemDraft) (item.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.store.Item(id)
	if err != nil {
		return item.Item{}, err
	}
	parsed, err := draft.parse()
	if err != nil {
		return item.Item{}, err
	}
	newCategory, err := s.draftCategory(draft, &parsed)
	if err != nil {
		return item.Item{}, err
	}

	edited := existing
	edited.Name = parsed.name
	edited.Price = parsed.price
	edited.PurchaseDate = parsed.purchaseDate
	edited.CategoryID = parsed.categoryID
	if err := s.insertCategory(ctx, newCategory); err != nil {
		return item.Item{}, err
	}
	if err := s.store.Update(ctx, edited); err != nil {
		return item.Item{}, err
	}
	if err := s.store.Save(ctx); err != nil {
		return item.Item{}, err
	}
	log.Infof("Updated item %s", edited.ID)
	return edited, nil
}

// DeleteItems deletes all the given items in one save. Nothing is deleted when one of them is unknown.
func (s *ServiceImpl) DeleteItems(ctx context.Context, ids ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]item.Item, 0, len(ids))
	for _, id := range ids {
		existing, err := s.store.Item(id)
		if err != nil {
			return err
		}
		items = append(items, existing)
	}
	for _, i := range items {
		if err := s.store.Delete(ctx, i); err != nil {
			return err
		}
	}
	if err := s.store.Save(ctx); err != nil {
		return err
	}
	log.Infof("Deleted %d item(s)", len(items))
	return nil
}

// DeleteCategory deletes the category and every item assigned to it.
func (s *ServiceImpl) DeleteCategory(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.store.Category(id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, existing); err != nil {
		return err
	}
	if err := s.store.Save(ctx); err != nil {
		return err
	}
	log.Infof("Deleted category %s (%s)", existing.ID, existing.Name)
	return nil
}

// ListItems returns the items of a category, or every item when categoryID is empty.
func (s *ServiceImpl) ListItems(ctx context.Context, categoryID string) ([]item.Item, error) {
	if err := s.checkCategory(categoryID); err != nil {
		return nil, err
	}
	return item.FilterByCategory(s.store.Items(), categoryID), nil
}

func (s *ServiceImpl) ListCategories(ctx context.Context) []category.Category {
	return s.store.Categories()
}

func (s *ServiceImpl) Summary(ctx context.Context, categoryID string) (Summary, error) {
	summary, _, err := summarize(s.store, categoryID, s.clock.Now())
	return summary, err
}

func (s *ServiceImpl) checkCategory(categoryID string) error {
	if categoryID == "" {
		return nil
	}
	_, err := s.store.Category(categoryID)
	return err
}

// summarize filters the live items by categoryID and aggregates them as of now.
func summarize(st *store.Context, categoryID string, now time.Time) (Summary, []item.Item, error) {
	summary := Summary{CategoryName: AllCategoriesName}
	if categoryID != "" {
		selected, err := st.Category(categoryID)
		if err != nil {
			return Summary{}, nil, err
		}
		summary.CategoryID = selected.ID
		summary.CategoryName = selected.Name
	}

	items := item.FilterByCategory(st.Items(), categoryID)
	summary.ItemCount = len(items)
	summary.TotalValue = item.TotalValue(items)
	summary.TotalDailyCost = item.TotalDailyCost(items, now)
	return summary, items, nil
}
