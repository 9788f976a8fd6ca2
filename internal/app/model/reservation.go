package model

import "time"

// ReservationStep is a state of the booking wizard.
type ReservationStep string

const (
	StepMenu     ReservationStep = "menu"
	StepSchedule ReservationStep = "schedule"
	StepConfirm  ReservationStep = "confirm"
	StepQR       ReservationStep = "qr"
)

// Reservation is the immutable snapshot finalised on confirmation. It is
// never persisted; it only feeds the calendar hand-off.
type Reservation struct {
	ShopID           uint      `json:"shop_id"`
	ShopName         string    `json:"shop_name"`
	ShopAddress      string    `json:"shop_address"`
	Menus            []Menu    `json:"menus"`
	AppointmentDate  string    `json:"appointment_date"` // YYYY-MM-DD
	StartTime        string    `json:"start_time"`       // HH:MM
	EndTime          string    `json:"end_time"`         // HH:MM, may exceed 23
	TotalAmount      int       `json:"total_amount"`
	DiscountedAmount int       `json:"discounted_amount"`
	DiscountAmount   int       `json:"discount_amount"`
	DiscountRate     float64   `json:"discount_rate"`
	CouponCode       string    `json:"coupon_code"`
	FinalizedAt      time.Time `json:"finalized_at"`
}

// MenuNames returns the menu names in selection order.
func (r *Reservation) MenuNames() []string {
	names := make([]string, 0, len(r.Menus))
	for _, m := range r.Menus {
		names = append(names, m.Name)
	}
	return names
}
