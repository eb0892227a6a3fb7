package event_bus

const (
	ItemInserted     EventType = "item.inserted"
	ItemUpdated      EventType = "item.updated"
	ItemDeleted      EventType = "item.deleted"
	CategoryInserted EventType = "category.inserted"
	CategoryDeleted  EventType = "category.deleted"
	StoreSaved       EventType = "store.saved"
	StoreDiscarded   EventType = "store.discarded"
)

// StoreEvents lists every notification the store publishes.
var StoreEvents = []EventType{
	ItemInserted,
	ItemUpdated,
	ItemDeleted,
	CategoryInserted,
	CategoryDeleted,
	StoreSaved,
	StoreDiscarded,
}

// Change is the payload of store notifications. EntityID is empty for
// store.saved and store.discarded.
type Change struct {
	Kind     EventType
	EntityID string
}
