package reservation

import (
	"errors"
	"testing"
	"time"

	"github.com/ikkim/salonflow-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testNow  = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	testShop = model.Shop{ID: 7, Name: "Salon Lumière", Address: "1-2-3 Shibuya, Tokyo"}
)

func fixedCode(code string) CodeGenerator {
	return func() (string, error) { return code, nil }
}

func testMenus() []model.Menu {
	return []model.Menu{
		{ID: 2, Name: "Color", BasePrice: 6000, DurationMin: 60, DefaultIntervalMonth: 2, DefaultDiscount: 0.1, SortOrder: 2},
		{ID: 1, Name: "Cut", BasePrice: 4000, DurationMin: 30, DefaultIntervalMonth: 1, SortOrder: 1},
	}
}

func TestNewState(t *testing.T) {
	s := NewState("abc", testShop, testNow)

	assert.Equal(t, model.StepMenu, s.Step)
	assert.Equal(t, uint(7), s.ShopID)
	assert.Empty(t, s.SelectedMenus)
	assert.Equal(t, "2024-04-15", s.AppointmentDate)
	assert.Equal(t, "10:00", s.StartTime)
	assert.Equal(t, "11:00", s.EndTime)
	assert.Zero(t, s.TotalAmount)
}

func TestSelectMenusRecomputesDerivedValues(t *testing.T) {
	s := NewState("abc", testShop, testNow)

	require.NoError(t, s.SelectMenus(testMenus(), 0.1, testNow))

	assert.Equal(t, []uint{1, 2}, []uint{s.SelectedMenus[0].ID, s.SelectedMenus[1].ID})
	assert.Equal(t, 10000, s.TotalAmount)
	assert.Equal(t, 9000, s.DiscountedAmount)
	assert.Equal(t, 1000, s.DiscountAmount)
	assert.Equal(t, "2024-05-15", s.AppointmentDate)
	assert.Equal(t, "11:30", s.EndTime)
	assert.Equal(t, 0.1, s.SuggestedDiscountRate())
}

func TestSelectMenusClampsDiscountRate(t *testing.T) {
	s := NewState("abc", testShop, testNow)

	require.NoError(t, s.SelectMenus([]model.Menu{{ID: 1, Name: "Perm", BasePrice: 5500, DurationMin: 90}}, 0.5, testNow))
	assert.Equal(t, 0.30, s.DiscountRate)
	assert.Equal(t, 3850, s.DiscountedAmount)

	require.NoError(t, s.SelectMenus([]model.Menu{{ID: 1, Name: "Perm", BasePrice: 5500, DurationMin: 90}}, -1, testNow))
	assert.Equal(t, 0.0, s.DiscountRate)
	assert.Equal(t, 5500, s.DiscountedAmount)
}

func TestNextWithoutSelectionKeepsState(t *testing.T) {
	s := NewState("abc", testShop, testNow)
	before := *s

	err := s.Next(testNow.Add(time.Minute))

	assert.ErrorIs(t, err, ErrNoMenuSelected)
	assert.Equal(t, before, *s)
}

func TestFullFlow(t *testing.T) {
	s := NewState("abc", testShop, testNow)
	require.NoError(t, s.SelectMenus(testMenus(), 0.1, testNow))
	require.NoError(t, s.Next(testNow))
	assert.Equal(t, model.StepSchedule, s.Step)

	require.NoError(t, s.Schedule("2024-05-20", "14:30", testNow))
	assert.Equal(t, model.StepConfirm, s.Step)
	assert.Equal(t, "16:00", s.EndTime)
	assert.Equal(t, "2024-05-20", s.AppointmentDate)

	require.NoError(t, s.Confirm(testNow, fixedCode("AB12CD34")))
	assert.Equal(t, model.StepQR, s.Step)

	r, err := s.Reservation()
	require.NoError(t, err)
	assert.Equal(t, "Salon Lumière", r.ShopName)
	assert.Equal(t, []string{"Cut", "Color"}, r.MenuNames())
	assert.Equal(t, "2024-05-20", r.AppointmentDate)
	assert.Equal(t, "14:30", r.StartTime)
	assert.Equal(t, "16:00", r.EndTime)
	assert.Equal(t, 10000, r.TotalAmount)
	assert.Equal(t, 9000, r.DiscountedAmount)
	assert.Equal(t, "AB12CD34", r.CouponCode)
	assert.Equal(t, testNow, r.FinalizedAt)
}

func TestScheduleValidation(t *testing.T) {
	s := NewState("abc", testShop, testNow)
	require.NoError(t, s.SelectMenus(testMenus(), 0, testNow))
	require.NoError(t, s.Next(testNow))

	assert.ErrorIs(t, s.Schedule("2024-05-20", "20:30", testNow), ErrInvalidSlot)
	assert.ErrorIs(t, s.Schedule("2024-05-20", "10:15", testNow), ErrInvalidSlot)
	assert.Error(t, s.Schedule("20/05/2024", "10:00", testNow))
	assert.Equal(t, model.StepSchedule, s.Step)
}

func TestBackPreservesValues(t *testing.T) {
	s := NewState("abc", testShop, testNow)
	require.NoError(t, s.SelectMenus(testMenus(), 0.2, testNow))
	require.NoError(t, s.Next(testNow))
	require.NoError(t, s.Schedule("2024-05-20", "09:00", testNow))
	require.NoError(t, s.Confirm(testNow, fixedCode("ZZZZ0000")))

	require.NoError(t, s.Back(testNow))
	assert.Equal(t, model.StepConfirm, s.Step)
	require.NoError(t, s.Back(testNow))
	assert.Equal(t, model.StepSchedule, s.Step)
	require.NoError(t, s.Back(testNow))
	assert.Equal(t, model.StepMenu, s.Step)

	assert.Len(t, s.SelectedMenus, 2)
	assert.Equal(t, 0.2, s.DiscountRate)
	assert.Equal(t, "2024-05-20", s.AppointmentDate)
	assert.Equal(t, "09:00", s.StartTime)

	assert.ErrorIs(t, s.Back(testNow), ErrNoPreviousStep)
}

func TestCouponSurvivesReconfirmation(t *testing.T) {
	s := NewState("abc", testShop, testNow)
	require.NoError(t, s.SelectMenus(testMenus(), 0, testNow))
	require.NoError(t, s.Next(testNow))
	require.NoError(t, s.Next(testNow))
	require.NoError(t, s.Confirm(testNow, fixedCode("FIRST001")))
	require.NoError(t, s.Back(testNow))
	require.NoError(t, s.Confirm(testNow, fixedCode("SECOND02")))

	assert.Equal(t, "FIRST001", s.CouponCode)
}

func TestConfirmPropagatesGeneratorError(t *testing.T) {
	s := NewState("abc", testShop, testNow)
	require.NoError(t, s.SelectMenus(testMenus(), 0, testNow))
	require.NoError(t, s.Next(testNow))
	require.NoError(t, s.Next(testNow))

	boom := errors.New("entropy exhausted")
	err := s.Confirm(testNow, func() (string, error) { return "", boom })

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, model.StepConfirm, s.Step)
}

func TestInvalidTransitions(t *testing.T) {
	s := NewState("abc", testShop, testNow)

	assert.ErrorIs(t, s.Schedule("2024-05-20", "10:00", testNow), ErrInvalidTransition)
	assert.ErrorIs(t, s.Confirm(testNow, fixedCode("X")), ErrInvalidTransition)
	_, err := s.Reservation()
	assert.ErrorIs(t, err, ErrNotFinalized)

	require.NoError(t, s.SelectMenus(testMenus(), 0, testNow))
	require.NoError(t, s.Next(testNow))
	assert.ErrorIs(t, s.SelectMenus(testMenus(), 0, testNow), ErrInvalidTransition)

	require.NoError(t, s.Next(testNow))
	require.NoError(t, s.Confirm(testNow, fixedCode("QRSTEP00")))
	assert.ErrorIs(t, s.Next(testNow), ErrInvalidTransition)
}

func TestResetClearsWorkingState(t *testing.T) {
	s := NewState("abc", testShop, testNow)
	require.NoError(t, s.SelectMenus(testMenus(), 0.1, testNow))
	require.NoError(t, s.Next(testNow))
	require.NoError(t, s.Next(testNow))
	require.NoError(t, s.Confirm(testNow, fixedCode("RESET000")))

	later := testNow.Add(time.Hour)
	s.Reset(later)

	assert.Equal(t, model.StepMenu, s.Step)
	assert.Empty(t, s.SelectedMenus)
	assert.Zero(t, s.TotalAmount)
	assert.Empty(t, s.CouponCode)
	assert.Nil(t, s.Snapshot)
	assert.Equal(t, "abc", s.ID)
	assert.Equal(t, uint(7), s.ShopID)
	assert.Equal(t, testNow, s.CreatedAt)
}
