package item

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr error
	}{
		{in: "10", want: 10},
		{in: "10.00", want: 10},
		{in: "1299.99", want: 1299.99},
		{in: ".5", want: 0.5},
		{in: "0", want: 0},
		{in: "", wantErr: ErrEmptyPrice},
		{in: "abc", wantErr: ErrInvalidPrice},
		{in: "1,5", wantErr: ErrInvalidPrice},
		{in: "1.2.3", wantErr: ErrInvalidPrice},
		{in: " 10", wantErr: ErrInvalidPrice},
		{in: "-1", wantErr: ErrNegativePrice},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePrice(tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "10.00", FormatPrice(10))
	assert.Equal(t, "3.50", FormatPrice(3.5))
	assert.Equal(t, "1234.57", FormatPrice(1234.567))
	assert.Equal(t, "0.00", FormatPrice(0))
}

func TestFormatPrice_RoundTrip(t *testing.T) {
	for _, price := range []float64{0, 0.01, 9.99, 10, 1299.5} {
		parsed, err := ParsePrice(FormatPrice(price))
		assert.NoError(t, err)
		assert.Equal(t, price, parsed)
	}
}
