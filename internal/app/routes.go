package app

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	// Categories
	r.HandleFunc("/api/category", deps.InventoryHandler.ListCategories).Methods("GET")
	r.HandleFunc("/api/category", deps.InventoryHandler.CreateCategory).Methods("POST")
	r.HandleFunc("/api/category/{categoryId}", deps.InventoryHandler.DeleteCategory).Methods("DELETE")

	// Items
	r.HandleFunc("/api/item/export", deps.InventoryHandler.ExportItems).Methods("GET")
	r.HandleFunc("/api/item", deps.InventoryHandler.ListItems).Methods("GET")
	r.HandleFunc("/api/item", deps.InventoryHandler.CreateItem).Methods("POST")
	r.HandleFunc("/api/item/{itemId}/draft", deps.InventoryHandler.GetItemDraft).Methods("GET")
	r.HandleFunc("/api/item/{itemId}", deps.InventoryHandler.UpdateItem).Methods("PUT")
	r.HandleFunc("/api/item/{itemId}", deps.InventoryHandler.DeleteItem).Methods("DELETE")

	// Summary
	r.HandleFunc("/api/summary", deps.InventoryHandler.GetSummary).Methods("GET")
}
