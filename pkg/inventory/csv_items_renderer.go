package inventory

import (
	"bytes"
	"encoding/csv"
	"time"

	"github.com/mystuff/mystuff/pkg/category"
	"github.com/mystuff/mystuff/pkg/item"
	log "github.com/sirupsen/logrus"
)

type ItemsRenderer interface {
	RenderItems(items []item.Item, categories []category.Category, now time.Time) (string, error)
}

type CsvItemsRenderer struct {
}

func NewCsvItemsRenderer() *CsvItemsRenderer {
	return &CsvItemsRenderer{}
}

// RenderItems writes one row per item followed by a Total row. Amounts have two decimals.
func (r *CsvItemsRenderer) RenderItems(items []item.Item, categories []category.Category, now time.Time) (string, error) {
	categoryNames := make(map[string]string, len(categories))
	for _, c := range categories {
		categoryNames[c.ID] = c.Name
	}

	data := make([][]string, 0, len(items)+2)
	data = append(data, []string{"Name", "Purchase date", "Price", "Daily cost", "Category"})
	for _, i := range items {
		data = append(data, []string{
			i.Name,
			i.PurchaseDate.Format(dateLayout),
			item.FormatPrice(i.Price),
			item.FormatPrice(i.DailyAverageCost(now)),
			categoryNames[i.CategoryID],
		})
	}
	data = append(data, []string{
		"Total",
		"",
		item.FormatPrice(item.TotalValue(items)),
		item.FormatPrice(item.TotalDailyCost(items, now)),
		"",
	})

	var b bytes.Buffer
	writer := csv.NewWriter(&b)
	if err := writer.WriteAll(data); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}
	return b.String(), nil
}
