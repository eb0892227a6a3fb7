package inventory

import (
	"testing"

	"github.com/mystuff/mystuff/internal/test_utils"
	"github.com/mystuff/mystuff/pkg/category"
	"github.com/mystuff/mystuff/pkg/item"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCsvItemsRenderer_RenderItems(t *testing.T) {
	t.Run("one row per item and a total", func(t *testing.T) {
		// given
		books := category.New("Books")
		items := []item.Item{
			item.New("Novel, hardcover", test_utils.DaysAgo(4), 20, books.ID),
			item.New("Lamp", test_utils.DaysAgo(0), 60.5, ""),
		}
		renderer := NewCsvItemsRenderer()

		// when
		result, err := renderer.RenderItems(items, []category.Category{books}, test_utils.Today)

		// then
		require.NoError(t, err)
		expected := "Name,Purchase date,Price,Daily cost,Category\n" +
			"\"Novel, hardcover\",2024-06-11,20.00,5.00,Books\n" +
			"Lamp,2024-06-15,60.50,60.50,\n" +
			"Total,,80.50,65.50,\n"
		assert.Equal(t, expected, result)
	})

	t.Run("no items renders header and zero total", func(t *testing.T) {
		result, err := NewCsvItemsRenderer().RenderItems(nil, nil, test_utils.Today)

		require.NoError(t, err)
		assert.Equal(t, "Name,Purchase date,Price,Daily cost,Category\nTotal,,0.00,0.00,\n", result)
	})
}
