// Package booking holds the pure rules of the salon booking domain: menu
// pricing, appointment scheduling and menu ordering. Nothing here touches
// storage; services load records and hand them in.
package booking

import (
	"fmt"
	"math"

	"github.com/ikkim/salonflow-backend/internal/app/model"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// MaxDiscountRate caps the discount a customer-facing flow may apply.
const MaxDiscountRate = 0.30

var pricePrinter = message.NewPrinter(language.Japanese)

// TotalAmount sums the base prices of the selected menus.
func TotalAmount(menus []model.Menu) int {
	total := 0
	for _, m := range menus {
		total += m.BasePrice
	}
	return total
}

// DiscountedAmount returns total × (1 − rate) rounded half away from zero.
// The product is computed in decimal so 5500 × 0.7 is exactly 3850.
// rate is not bounded here; callers clamp with ClampDiscountRate.
// A NaN rate discounts nothing and +Inf prices the selection at 0.
func DiscountedAmount(total int, rate float64) int {
	switch {
	case math.IsNaN(rate) || math.IsInf(rate, -1):
		return total
	case math.IsInf(rate, 1):
		return 0
	}
	factor := decimal.NewFromInt(1).Sub(decimal.NewFromFloat(rate))
	return int(decimal.NewFromInt(int64(total)).Mul(factor).Round(0).IntPart())
}

// DiscountAmount is the complement of DiscountedAmount, so both always sum to total.
func DiscountAmount(total int, rate float64) int {
	return total - DiscountedAmount(total, rate)
}

// ClampDiscountRate bounds rate to [0, MaxDiscountRate].
func ClampDiscountRate(rate float64) float64 {
	if math.IsNaN(rate) || rate < 0 {
		return 0
	}
	if rate > MaxDiscountRate {
		return MaxDiscountRate
	}
	return rate
}

// MaxDefaultDiscount is the suggested rate for a selection: the largest
// default discount among the menus, 0 when empty.
func MaxDefaultDiscount(menus []model.Menu) float64 {
	max := 0.0
	for _, m := range menus {
		if m.DefaultDiscount > max {
			max = m.DefaultDiscount
		}
	}
	return max
}

// FormatPrice renders a yen amount with thousands separators, e.g. ¥9,000.
func FormatPrice(amount int) string {
	return pricePrinter.Sprintf("¥%d", amount)
}

// FormatDiscountRate renders a rate as a whole percentage, e.g. 0.1 → 10%.
func FormatDiscountRate(rate float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(rate*100)))
}
