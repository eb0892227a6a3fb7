package store

import (
	"errors"
	"fmt"
)

var ErrStorage = errors.New("storage failure")
var ErrItemNotFound = errors.New("item not found")
var ErrCategoryNotFound = errors.New("category not found")
var ErrDanglingCategory = errors.New("item references a category that does not exist")
var ErrDuplicateID = errors.New("entity with this id already exists")
var ErrUnsupportedEntity = errors.New("unsupported entity")

// StorageError is returned when the backing store could not load or commit.
// It matches ErrStorage with errors.Is and unwraps to the backend error.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}
