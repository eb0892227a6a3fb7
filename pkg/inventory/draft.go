package inventory

import (
	"fmt"
	"time"

	"github.com/mystuff/mystuff/internal/utils"
	"github.com/mystuff/mystuff/pkg/item"
)

// ItemDraft is an item form being filled in. Price is kept as typed.
// A non-empty NewCategoryName files the item under a new category of that name,
// created in the same save as the item; CategoryID is then ignored.
type ItemDraft struct {
	Name            string
	Price           string
	PurchaseDate    time.Time
	CategoryID      string
	NewCategoryName string
}

// NewDraft starts an empty draft dated today.
func NewDraft(clock utils.Clock) ItemDraft {
	return ItemDraft{PurchaseDate: utils.DateOf(clock.Now())}
}

func draftOf(i item.Item) ItemDraft {
	return ItemDraft{
		Name:         i.Name,
		Price:        item.FormatPrice(i.Price),
		PurchaseDate: i.PurchaseDate,
		CategoryID:   i.CategoryID,
	}
}

// CanSave reports whether the required fields are filled in. The price may still fail to parse.
func (d ItemDraft) CanSave() bool {
	return d.Name != "" && d.Price != ""
}

type parsedDraft struct {
	name         string
	price        float64
	purchaseDate time.Time
	categoryID   string
}

func (d ItemDraft) parse() (parsedDraft, error) {
	if d.Name == "" {
		return parsedDraft{}, fmt.Errorf("%w: %w", ErrValidation, item.ErrEmptyName)
	}
	price, err := item.ParsePrice(d.Price)
	if err != nil {
		return parsedDraft{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if d.PurchaseDate.IsZero() {
		return parsedDraft{}, fmt.Errorf("%w: %w", ErrValidation, item.ErrMissingPurchaseDate)
	}
	return parsedDraft{
		name:         d.Name,
		price:        price,
		purchaseDate: utils.DateOf(d.PurchaseDate),
		categoryID:   d.CategoryID,
	}, nil
}
