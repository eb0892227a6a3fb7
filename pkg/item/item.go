package item

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mystuff/mystuff/internal/utils"
)

var ErrEmptyName = errors.New("item name is empty")
var ErrMissingPurchaseDate = errors.New("item purchase date is missing")

// Item is a purchased belonging. CategoryID is empty when the item is uncategorized.
type Item struct {
	ID   string
	Name string
	// PurchaseDate is a calendar date stored as midnight UTC, see utils.DateOf.
	PurchaseDate time.Time
	Price        float64
	CategoryID   string
	// CreatedAt has microsecond precision, the finest every backend stores.
	CreatedAt time.Time
}

// New builds a complete item with a fresh identity. There is no partial construction.
func New(name string, purchaseDate time.Time, price float64, categoryID string) Item {
	return Item{
		ID:           uuid.NewString(),
		Name:         name,
		PurchaseDate: utils.DateOf(purchaseDate),
		Price:        price,
		CategoryID:   categoryID,
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}
}

func (i Item) HasCategory() bool {
	return i.CategoryID != ""
}

// DailyAverageCost amortizes the price over the whole calendar days elapsed since
// the purchase. Purchases made today or dated in the future count as one day.
func (i Item) DailyAverageCost(now time.Time) float64 {
	days := utils.DaysBetween(i.PurchaseDate, now)
	return i.Price / float64(max(days, 1))
}

func (i Item) Validate() error {
	if i.Name == "" {
		return ErrEmptyName
	}
	if i.Price < 0 {
		return ErrNegativePrice
	}
	if i.PurchaseDate.IsZero() {
		return ErrMissingPurchaseDate
	}
	return nil
}

func (i Item) EntityID() string {
	return i.ID
}
