package booking

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ikkim/salonflow-backend/internal/app/model"
)

const (
	DateLayout = "2006-01-02"

	firstSlotMinute = 9 * 60
	lastSlotMinute  = 20 * 60
	slotStepMinutes = 30
)

var (
	ErrInvalidClock    = errors.New("booking: time must be HH:MM")
	ErrInvalidDate     = errors.New("booking: date must be YYYY-MM-DD")
	ErrInvalidDuration = errors.New("booking: duration must not be negative")
)

var bookableSlots = buildSlots()

func buildSlots() []string {
	slots := make([]string, 0, (lastSlotMinute-firstSlotMinute)/slotStepMinutes+1)
	for m := firstSlotMinute; m <= lastSlotMinute; m += slotStepMinutes {
		slots = append(slots, fmt.Sprintf("%02d:%02d", m/60, m%60))
	}
	return slots
}

// BookableTimeSlots returns the start times a customer may pick,
// 09:00 through 20:00 every 30 minutes. The slice is a fresh copy.
func BookableTimeSlots() []string {
	out := make([]string, len(bookableSlots))
	copy(out, bookableSlots)
	return out
}

// IsBookableSlot reports whether clock is one of BookableTimeSlots.
func IsBookableSlot(clock string) bool {
	for _, s := range bookableSlots {
		if s == clock {
			return true
		}
	}
	return false
}

// TotalDuration sums the durations of the selected menus in minutes.
func TotalDuration(menus []model.Menu) int {
	total := 0
	for _, m := range menus {
		total += m.DurationMin
	}
	return total
}

// DefaultAppointmentDate recommends the next visit: now plus the longest
// revisit interval of the selection, or one month when nothing is selected.
func DefaultAppointmentDate(now time.Time, menus []model.Menu) time.Time {
	months := model.DefaultIntervalMonth
	if len(menus) > 0 {
		months = 0
		for _, m := range menus {
			if m.DefaultIntervalMonth > months {
				months = m.DefaultIntervalMonth
			}
		}
	}
	return AddMonths(now, months)
}

// AddMonths adds calendar months, clamping the day to the end of the target
// month: Jan 31 + 1 month is Feb 28 (or 29). time.AddDate would overflow
// into March instead.
func AddMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	if last := daysInMonth(first); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

// ParseClock splits an HH:MM string. Hours are not capped at 23 because
// end times past midnight are rendered as 24:30 and so on.
func ParseClock(clock string) (hour, minute int, err error) {
	parts := strings.Split(clock, ":")
	if len(parts) != 2 || len(parts[1]) != 2 || parts[0] == "" {
		return 0, 0, ErrInvalidClock
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 {
		return 0, 0, ErrInvalidClock
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, ErrInvalidClock
	}
	return hour, minute, nil
}

// EndTime adds durationMin to start. Minutes carry into hours and hours are
// not wrapped, so "23:30" + 60 is "24:30".
func EndTime(start string, durationMin int) (string, error) {
	if durationMin < 0 {
		return "", ErrInvalidDuration
	}
	hour, minute, err := ParseClock(start)
	if err != nil {
		return "", err
	}
	total := hour*60 + minute + durationMin
	return fmt.Sprintf("%02d:%02d", total/60, total%60), nil
}

// AppointmentTime combines a YYYY-MM-DD date with an HH:MM clock in loc.
// Clocks of 24:00 and later roll into the following day.
func AppointmentTime(date, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	day, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	hour, minute, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc), nil
}
