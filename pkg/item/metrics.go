package item

import "time"

// TotalValue sums the prices of the given items.
func TotalValue(items []Item) float64 {
	total := 0.0
	for _, i := range items {
		total += i.Price
	}
	return total
}

// TotalDailyCost sums the daily average cost of the given items as of now.
func TotalDailyCost(items []Item, now time.Time) float64 {
	total := 0.0
	for _, i := range items {
		total += i.DailyAverageCost(now)
	}
	return total
}

// FilterByCategory keeps the items assigned to categoryID. An empty categoryID
// selects everything (the "All" view).
func FilterByCategory(items []Item, categoryID string) []Item {
	if categoryID == "" {
		all := make([]Item, len(items))
		copy(all, items)
		return all
	}
	filtered := make([]Item, 0, len(items))
	for _, i := range items {
		if i.CategoryID == categoryID {
			filtered = append(filtered, i)
		}
	}
	return filtered
}
