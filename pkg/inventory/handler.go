package inventory

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/mystuff/mystuff/internal/rest"
	"github.com/mystuff/mystuff/internal/utils"
	"github.com/mystuff/mystuff/pkg/category"
	"github.com/mystuff/mystuff/pkg/item"
	"github.com/mystuff/mystuff/pkg/store"
	log "github.com/sirupsen/logrus"
)

const dateLayout = "2006-01-02"

type CategoryDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ItemDTO struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	PurchaseDate string  `json:"purchaseDate"`
	Price        float64 `json:"price"`
	DailyCost    float64 `json:"dailyCost"`
	CategoryID   string  `json:"categoryId,omitempty"`
}

// ItemDraftDTO carries an item form. Price is the text the user typed.
// NewCategoryName creates a category and assigns the item to it.
type ItemDraftDTO struct {
	Name            string `json:"name"`
	Price           string `json:"price"`
	PurchaseDate    string `json:"purchaseDate"`
	CategoryID      string `json:"categoryId,omitempty"`
	NewCategoryName string `json:"newCategoryName,omitempty"`
}

type SummaryDTO struct {
	CategoryID     string  `json:"categoryId,omitempty"`
	CategoryName   string  `json:"categoryName"`
	ItemCount      int     `json:"itemCount"`
	TotalValue     float64 `json:"totalValue"`
	TotalDailyCost float64 `json:"totalDailyCost"`
}

type Handler struct {
	service  Service
	renderer ItemsRenderer
	clock    utils.Clock
}

func NewHandler(service Service, renderer ItemsRenderer, clock utils.Clock) *Handler {
	return &Handler{service: service, renderer: renderer, clock: clock}
}

// ListCategories godoc
// @Summary List categories
// @Tags Category
// @Produce json
// @Success 200 {array} CategoryDTO
// @Router /api/category [get]
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	log.Debug("Listing categories")
	categories := h.service.ListCategories(r.Context())
	dtos := make([]CategoryDTO, 0, len(categories))
	for _, c := range categories {
		dtos = append(dtos, categoryToDTO(c))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateCategory godoc
// @Summary Create a category
// @Tags Category
// @Accept json
// @Produce json
// @Param category body CategoryDTO true "Category"
// @Success 201 {object} CategoryDTO
// @Failure 400 {object} rest.ErrorResponse "Empty name"
// @Failure 409 {object} rest.ErrorResponse "Name already used"
// @Router /api/category [post]
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating category")
	var dto CategoryDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err)
		return
	}

	created, err := h.service.CreateCategory(r.Context(), dto.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, categoryToDTO(created))
}

// DeleteCategory godoc
// @Summary Delete a category and all of its items
// @Tags Category
// @Param categoryId path string true "Category ID"
// @Success 204
// @Failure 404 {object} rest.ErrorResponse "Category not found"
// @Router /api/category/{categoryId} [delete]
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	categoryID := mux.Vars(r)["categoryId"]
	log.Debugf("Deleting category %s", categoryID)
	if err := h.service.DeleteCategory(r.Context(), categoryID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListItems godoc
// @Summary List items, newest purchase first
// @Tags Item
// @Produce json
// @Param categoryId query string false "Only items of this category"
// @Success 200 {array} ItemDTO
// @Failure 404 {object} rest.ErrorResponse "Category not found"
// @Router /api/item [get]
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	categoryID := r.URL.Query().Get("categoryId")
	log.Debugf("Listing items (category %q)", categoryID)
	items, err := h.service.ListItems(r.Context(), categoryID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	now := h.clock.Now()
	dtos := make([]ItemDTO, 0, len(items))
	for _, i := range items {
		dtos = append(dtos, itemToDTO(i, now))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateItem godoc
// @Summary Create an item
// @Tags Item
// @Accept json
// @Produce json
// @Param item body ItemDraftDTO true "Item"
// @Success 201 {object} ItemDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid input"
// @Failure 404 {object} rest.ErrorResponse "Category not found"
// @Failure 409 {object} rest.ErrorResponse "New category name already used"
// @Router /api/item [post]
func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating item")
	draft, err := decodeDraft(r, NewDraft(h.clock))
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err)
		return
	}

	created, err := h.service.CreateItem(r.Context(), draft)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, itemToDTO(created, h.clock.Now()))
}

// GetItemDraft godoc
// @Summary Get the edit form of an item
// @Tags Item
// @Produce json
// @Param itemId path string true "Item ID"
// @Success 200 {object} ItemDraftDTO
// @Failure 404 {object} rest.ErrorResponse "Item not found"
// @Router /api/item/{itemId}/draft [get]
func (h *Handler) GetItemDraft(w http.ResponseWriter, r *http.Request) {
	itemID := mux.Vars(r)["itemId"]
	draft, err := h.service.EditDraft(r.Context(), itemID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ItemDraftDTO{
		Name:         draft.Name,
		Price:        draft.Price,
		PurchaseDate: draft.PurchaseDate.Format(dateLayout),
		CategoryID:   draft.CategoryID,
	})
}

// UpdateItem godoc
// @Summary Edit an item
// @Tags Item
// @Accept json
// @Produce json
// @Param itemId path string true "Item ID"
// @Param item body ItemDraftDTO true "Item"
// @Success 200 {object} ItemDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid input"
// @Failure 404 {object} rest.ErrorResponse "Item or category not found"
// @Router /api/item/{itemId} [put]
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	itemID := mux.Vars(r)["itemId"]
	log.Debugf("Updating item %s", itemID)
	draft, err := decodeDraft(r, ItemDraft{})
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err)
		return
	}

	updated, err := h.service.EditItem(r.Context(), itemID, draft)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, itemToDTO(updated, h.clock.Now()))
}

// DeleteItem godoc
// @Summary Delete an item
// @Tags Item
// @Param itemId path string true "Item ID"
// @Success 204
// @Failure 404 {object} rest.ErrorResponse "Item not found"
// @Router /api/item/{itemId} [delete]
func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	itemID := mux.Vars(r)["itemId"]
	log.Debugf("Deleting item %s", itemID)
	if err := h.service.DeleteItems(r.Context(), itemID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetSummary godoc
// @Summary Total value and daily cost of the items in view
// @Tags Summary
// @Produce json
// @Param categoryId query string false "Only items of this category"
// @Success 200 {object} SummaryDTO
// @Failure 404 {object} rest.ErrorResponse "Category not found"
// @Router /api/summary [get]
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context(), r.URL.Query().Get("categoryId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SummaryDTO{
		CategoryID:     summary.CategoryID,
		CategoryName:   summary.CategoryName,
		ItemCount:      summary.ItemCount,
		TotalValue:     summary.TotalValue,
		TotalDailyCost: summary.TotalDailyCost,
	})
}

// ExportItems godoc
// @Summary Export items as CSV
// @Tags Item
// @Produce text/csv
// @Param categoryId query string false "Only items of this category"
// @Success 200 {string} string "CSV"
// @Router /api/item/export [get]
func (h *Handler) ExportItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListItems(r.Context(), r.URL.Query().Get("categoryId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	csv, err := h.renderer.RenderItems(items, h.service.ListCategories(r.Context()), h.clock.Now())
	if err != nil {
		rest.WriteError(w, http.StatusInternalServerError, "Could not render items", err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="items.csv"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(csv)); err != nil {
		log.Errorf("failed to write csv: %v", err)
	}
}

// decodeDraft reads an item form over base. A missing purchase date keeps base's.
func decodeDraft(r *http.Request, base ItemDraft) (ItemDraft, error) {
	var dto ItemDraftDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		return ItemDraft{}, err
	}
	draft := base
	draft.Name = dto.Name
	draft.Price = dto.Price
	draft.CategoryID = dto.CategoryID
	draft.NewCategoryName = dto.NewCategoryName
	if dto.PurchaseDate != "" {
		purchaseDate, err := time.Parse(dateLayout, dto.PurchaseDate)
		if err != nil {
			return ItemDraft{}, err
		}
		draft.PurchaseDate = purchaseDate
	}
	return draft, nil
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		rest.WriteError(w, http.StatusBadRequest, "Invalid input", err)
	case errors.Is(err, category.ErrDuplicateName):
		rest.WriteError(w, http.StatusConflict, "Category name already exists", err)
	case errors.Is(err, store.ErrItemNotFound):
		rest.WriteError(w, http.StatusNotFound, "Item not found", err)
	case errors.Is(err, store.ErrCategoryNotFound):
		rest.WriteError(w, http.StatusNotFound, "Category not found", err)
	case errors.Is(err, store.ErrStorage):
		rest.WriteError(w, http.StatusInternalServerError, "Could not save changes", err)
	default:
		log.Errorf("unexpected error: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}

func categoryToDTO(c category.Category) CategoryDTO {
	return CategoryDTO{ID: c.ID, Name: c.Name}
}

func itemToDTO(i item.Item, now time.Time) ItemDTO {
	return ItemDTO{
		ID:           i.ID,
		Name:         i.Name,
		PurchaseDate: i.PurchaseDate.Format(dateLayout),
		Price:        i.Price,
		DailyCost:    i.DailyAverageCost(now),
		CategoryID:   i.CategoryID,
	}
}
