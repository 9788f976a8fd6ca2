package booking

import (
	"math"
	"testing"

	"github.com/ikkim/salonflow-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
)

func menus(prices ...int) []model.Menu {
	out := make([]model.Menu, 0, len(prices))
	for i, p := range prices {
		out = append(out, model.Menu{ID: uint(i + 1), BasePrice: p})
	}
	return out
}

func TestTotalAmount(t *testing.T) {
	assert.Equal(t, 0, TotalAmount(nil))
	assert.Equal(t, 0, TotalAmount([]model.Menu{}))
	assert.Equal(t, 10000, TotalAmount(menus(4000, 6000)))
}

func TestDiscountedAmount(t *testing.T) {
	tests := []struct {
		name  string
		total int
		rate  float64
		want  int
	}{
		{"ten percent", 10000, 0.1, 9000},
		{"thirty percent exact", 5500, 0.30, 3850},
		{"no discount", 7700, 0, 7700},
		{"rounds half up", 5, 0.5, 3},
		{"rounds down below half", 1234, 0.15, 1049},
		{"empty total", 0, 0.2, 0},
		{"rate above one is not bounded", 1000, 1.5, -500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DiscountedAmount(tt.total, tt.rate))
		})
	}
}

func TestDiscountedAmountNonFiniteRate(t *testing.T) {
	assert.NotPanics(t, func() {
		assert.Equal(t, 0, DiscountedAmount(1000, math.Inf(1)))
		assert.Equal(t, 1000, DiscountAmount(1000, math.Inf(1)))
		assert.Equal(t, 1000, DiscountedAmount(1000, math.NaN()))
		assert.Equal(t, 0, DiscountAmount(1000, math.NaN()))
	})
}

func TestDiscountAmountComplementsDiscountedAmount(t *testing.T) {
	for _, total := range []int{0, 1, 999, 5500, 10000, 123457} {
		for _, rate := range []float64{0, 0.05, 0.1, 0.125, 0.3, 0.5} {
			assert.Equal(t, total, DiscountedAmount(total, rate)+DiscountAmount(total, rate),
				"total=%d rate=%v", total, rate)
		}
	}
}

func TestClampDiscountRate(t *testing.T) {
	assert.Equal(t, 0.0, ClampDiscountRate(-0.1))
	assert.Equal(t, 0.15, ClampDiscountRate(0.15))
	assert.Equal(t, MaxDiscountRate, ClampDiscountRate(0.31))
	assert.Equal(t, MaxDiscountRate, ClampDiscountRate(0.5))
}

func TestMaxDefaultDiscount(t *testing.T) {
	assert.Equal(t, 0.0, MaxDefaultDiscount(nil))
	assert.Equal(t, 0.2, MaxDefaultDiscount([]model.Menu{
		{DefaultDiscount: 0.1},
		{DefaultDiscount: 0.2},
		{DefaultDiscount: 0.05},
	}))
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "¥9,000", FormatPrice(9000))
	assert.Equal(t, "¥1,234,567", FormatPrice(1234567))
	assert.Equal(t, "¥500", FormatPrice(500))
	assert.Equal(t, "10%", FormatDiscountRate(0.1))
	assert.Equal(t, "30%", FormatDiscountRate(0.3))
	assert.Equal(t, "0%", FormatDiscountRate(0))
}
