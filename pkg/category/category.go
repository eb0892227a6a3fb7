package category

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrEmptyName = errors.New("category name is empty")
var ErrDuplicateName = errors.New("category name already exists")

// Category groups items. Deleting a category deletes every item assigned to it.
type Category struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

func New(name string) Category {
	return Category{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

// ValidateName checks a candidate name against the existing categories.
// Names are compared exactly: no trimming, case-sensitive. A whitespace-only
// name is accepted.
func ValidateName(name string, existing []Category) error {
	if name == "" {
		return ErrEmptyName
	}
	for _, c := range existing {
		if c.Name == name {
			return ErrDuplicateName
		}
	}
	return nil
}

func (c Category) EntityID() string {
	return c.ID
}
