// Package reservation implements the customer booking wizard
// (menu → schedule → confirm → qr) as a serialisable state value plus the
// stores that keep it between requests.
package reservation

import (
	"errors"
	"time"

	"github.com/ikkim/salonflow-backend/internal/app/model"
	"github.com/ikkim/salonflow-backend/internal/booking"
)

var (
	ErrNoMenuSelected    = errors.New("reservation: select at least one menu")
	ErrInvalidTransition = errors.New("reservation: action not allowed in the current step")
	ErrNoPreviousStep    = errors.New("reservation: already at the first step")
	ErrInvalidSlot       = errors.New("reservation: start time is not a bookable slot")
	ErrNotFinalized      = errors.New("reservation: not confirmed yet")
)

const (
	defaultStartTime = "10:00"
	defaultEndTime   = "11:00"
)

// CodeGenerator produces the display coupon code on first confirmation.
type CodeGenerator func() (string, error)

// State is one customer's wizard. Derived fields (amounts, end time and the
// recommended date) are only written by recalculate.
type State struct {
	ID          string                `json:"id"`
	ShopID      uint                  `json:"shop_id"`
	ShopName    string                `json:"shop_name"`
	ShopAddress string                `json:"shop_address"`
	Step        model.ReservationStep `json:"step"`

	SelectedMenus   []model.Menu `json:"selected_menus"`
	DiscountRate    float64      `json:"discount_rate"`
	AppointmentDate string       `json:"appointment_date"`
	StartTime       string       `json:"start_time"`
	EndTime         string       `json:"end_time"`

	TotalAmount      int `json:"total_amount"`
	DiscountedAmount int `json:"discounted_amount"`
	DiscountAmount   int `json:"discount_amount"`

	CouponCode string             `json:"coupon_code,omitempty"`
	Snapshot   *model.Reservation `json:"snapshot,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewState opens a wizard for shop at the menu step.
func NewState(id string, shop model.Shop, now time.Time) *State {
	s := &State{
		ID:          id,
		ShopID:      shop.ID,
		ShopName:    shop.Name,
		ShopAddress: shop.Address,
		CreatedAt:   now,
	}
	s.clear(now)
	return s
}

func (s *State) clear(now time.Time) {
	s.Step = model.StepMenu
	s.SelectedMenus = []model.Menu{}
	s.DiscountRate = 0
	s.AppointmentDate = booking.DefaultAppointmentDate(now, nil).Format(booking.DateLayout)
	s.StartTime = defaultStartTime
	s.EndTime = defaultEndTime
	s.TotalAmount = 0
	s.DiscountedAmount = 0
	s.DiscountAmount = 0
	s.CouponCode = ""
	s.Snapshot = nil
	s.UpdatedAt = now
}

// SelectMenus replaces the selection and the requested discount rate,
// which is clamped to [0, booking.MaxDiscountRate].
func (s *State) SelectMenus(menus []model.Menu, rate float64, now time.Time) error {
	if s.Step != model.StepMenu {
		return ErrInvalidTransition
	}
	s.SelectedMenus = booking.Sorted(menus)
	s.DiscountRate = booking.ClampDiscountRate(rate)
	s.recalculate(now, true)
	return nil
}

// Next advances one step. Leaving the menu step requires a selection;
// leaving schedule keeps the current date and start time.
func (s *State) Next(now time.Time) error {
	switch s.Step {
	case model.StepMenu:
		if len(s.SelectedMenus) == 0 {
			return ErrNoMenuSelected
		}
		s.Step = model.StepSchedule
	case model.StepSchedule:
		s.Step = model.StepConfirm
	default:
		return ErrInvalidTransition
	}
	s.UpdatedAt = now
	return nil
}

// Schedule stores the chosen date and start time and moves to confirm.
func (s *State) Schedule(date, start string, now time.Time) error {
	if s.Step != model.StepSchedule {
		return ErrInvalidTransition
	}
	if _, err := time.Parse(booking.DateLayout, date); err != nil {
		return booking.ErrInvalidDate
	}
	if !booking.IsBookableSlot(start) {
		return ErrInvalidSlot
	}
	s.AppointmentDate = date
	s.StartTime = start
	s.recalculate(now, false)
	s.Step = model.StepConfirm
	return nil
}

// Confirm freezes the reservation snapshot and moves to the qr step.
// The coupon code is generated once and survives back-and-forth navigation.
func (s *State) Confirm(now time.Time, generate CodeGenerator) error {
	if s.Step != model.StepConfirm {
		return ErrInvalidTransition
	}
	if len(s.SelectedMenus) == 0 {
		return ErrNoMenuSelected
	}
	if s.CouponCode == "" {
		code, err := generate()
		if err != nil {
			return err
		}
		s.CouponCode = code
	}

	menus := make([]model.Menu, len(s.SelectedMenus))
	copy(menus, s.SelectedMenus)
	s.Snapshot = &model.Reservation{
		ShopID:           s.ShopID,
		ShopName:         s.ShopName,
		ShopAddress:      s.ShopAddress,
		Menus:            menus,
		AppointmentDate:  s.AppointmentDate,
		StartTime:        s.StartTime,
		EndTime:          s.EndTime,
		TotalAmount:      s.TotalAmount,
		DiscountedAmount: s.DiscountedAmount,
		DiscountAmount:   s.DiscountAmount,
		DiscountRate:     s.DiscountRate,
		CouponCode:       s.CouponCode,
		FinalizedAt:      now,
	}
	s.Step = model.StepQR
	s.UpdatedAt = now
	return nil
}

// Back returns to the previous step keeping every entered value.
func (s *State) Back(now time.Time) error {
	switch s.Step {
	case model.StepSchedule:
		s.Step = model.StepMenu
	case model.StepConfirm:
		s.Step = model.StepSchedule
	case model.StepQR:
		s.Step = model.StepConfirm
	default:
		return ErrNoPreviousStep
	}
	s.UpdatedAt = now
	return nil
}

// Reset starts over from the menu step with a cleared selection.
func (s *State) Reset(now time.Time) {
	s.clear(now)
}

// Reservation returns the finalised snapshot.
func (s *State) Reservation() (*model.Reservation, error) {
	if s.Step != model.StepQR || s.Snapshot == nil {
		return nil, ErrNotFinalized
	}
	return s.Snapshot, nil
}

// SuggestedDiscountRate is the clamped largest default discount of the selection.
func (s *State) SuggestedDiscountRate() float64 {
	return booking.ClampDiscountRate(booking.MaxDefaultDiscount(s.SelectedMenus))
}

func (s *State) recalculate(now time.Time, selectionChanged bool) {
	s.TotalAmount = booking.TotalAmount(s.SelectedMenus)
	s.DiscountedAmount = booking.DiscountedAmount(s.TotalAmount, s.DiscountRate)
	s.DiscountAmount = s.TotalAmount - s.DiscountedAmount

	if len(s.SelectedMenus) > 0 {
		if selectionChanged {
			s.AppointmentDate = booking.DefaultAppointmentDate(now, s.SelectedMenus).Format(booking.DateLayout)
		}
		if end, err := booking.EndTime(s.StartTime, booking.TotalDuration(s.SelectedMenus)); err == nil {
			s.EndTime = end
		}
	}
	s.UpdatedAt = now
}
