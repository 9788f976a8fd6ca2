// Package calendar turns a confirmed reservation into hand-off artifacts:
// a Google Calendar quick-add link, an ICS file and a QR image of the link.
// Output depends only on the reservation and the time zone, so repeated
// calls for the same snapshot produce identical bytes.
package calendar

import (
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"image/color"
	"net/url"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/ikkim/salonflow-backend/internal/app/model"
	"github.com/ikkim/salonflow-backend/internal/booking"
	qrcode "github.com/skip2/go-qrcode"
)

const (
	productID     = "-//salonflow//Reservation//JA"
	googleBaseURL = "https://calendar.google.com/calendar/render"
	utcStamp      = "20060102T150405Z"

	QRSize = 256
)

// Reminder offsets attached to the ICS event.
var alarmTriggers = []string{"-P3D", "-P1D", "-PT2H"}

var qrForeground = color.RGBA{R: 0x26, G: 0x26, B: 0x26, A: 0xff}

// Event is the calendar view of a reservation.
type Event struct {
	UID         string
	Title       string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	Stamp       time.Time
}

// Artifacts bundles everything the qr step hands to the customer.
type Artifacts struct {
	CalendarURL string `json:"calendar_url"`
	ICS         string `json:"-"`
	QRPNG       []byte `json:"-"`
	QRDataURL   string `json:"qr_data_url"`
	FileName    string `json:"file_name"` // base name without extension
}

// NewEvent derives the calendar event for a finalised reservation.
func NewEvent(r *model.Reservation, loc *time.Location) (Event, error) {
	start, err := booking.AppointmentTime(r.AppointmentDate, r.StartTime, loc)
	if err != nil {
		return Event{}, err
	}
	end, err := booking.AppointmentTime(r.AppointmentDate, r.EndTime, loc)
	if err != nil {
		return Event{}, err
	}

	names := strings.Join(r.MenuNames(), ", ")
	description := fmt.Sprintf("Menu: %s\nPrice: %s\nShop: %s",
		names, booking.FormatPrice(r.DiscountedAmount), r.ShopName)

	return Event{
		UID:         eventUID(r, start),
		Title:       fmt.Sprintf("%s - %s", r.ShopName, names),
		Description: description,
		Location:    r.ShopAddress,
		Start:       start,
		End:         end,
		Stamp:       r.FinalizedAt,
	}, nil
}

func eventUID(r *model.Reservation, start time.Time) string {
	sum := sha1.Sum([]byte(fmt.Sprintf("%d|%s|%d", r.ShopID, r.CouponCode, start.Unix())))
	return hex.EncodeToString(sum[:8]) + "@salonflow"
}

// GoogleCalendarURL builds the quick-add link for e.
func GoogleCalendarURL(e Event) string {
	params := []string{
		"action=TEMPLATE",
		"text=" + url.QueryEscape(e.Title),
		"dates=" + e.Start.UTC().Format(utcStamp) + "/" + e.End.UTC().Format(utcStamp),
		"details=" + url.QueryEscape(e.Description),
		"location=" + url.QueryEscape(e.Location),
	}
	return googleBaseURL + "?" + strings.Join(params, "&")
}

// ICS serialises e as a single-event calendar with three display alarms.
func ICS(e Event) string {
	cal := ics.NewCalendar()
	cal.SetProductId(productID)
	cal.SetCalscale("GREGORIAN")
	cal.SetMethod(ics.MethodPublish)

	event := cal.AddEvent(e.UID)
	event.SetDtStampTime(e.Stamp)
	event.SetStartAt(e.Start)
	event.SetEndAt(e.End)
	event.SetSummary(e.Title)
	event.SetDescription(e.Description)
	event.SetLocation(e.Location)
	event.SetStatus(ics.ObjectStatusConfirmed)
	event.SetTimeTransparency(ics.TransparencyOpaque)

	for _, trigger := range alarmTriggers {
		alarm := event.AddAlarm()
		alarm.SetAction(ics.ActionDisplay)
		alarm.SetTrigger(trigger)
		alarm.SetProperty(ics.ComponentPropertyDescription, "Reminder: "+e.Title)
	}

	return cal.Serialize()
}

// QRCode renders content as a QRSize px PNG with the highest error correction.
func QRCode(content string) ([]byte, error) {
	q, err := qrcode.New(content, qrcode.Highest)
	if err != nil {
		return nil, fmt.Errorf("failed to encode qr code: %w", err)
	}
	q.ForegroundColor = qrForeground
	q.BackgroundColor = color.White
	return q.PNG(QRSize)
}

// Build produces every artifact for r.
func Build(r *model.Reservation, loc *time.Location) (*Artifacts, error) {
	event, err := NewEvent(r, loc)
	if err != nil {
		return nil, err
	}

	link := GoogleCalendarURL(event)
	png, err := QRCode(link)
	if err != nil {
		return nil, err
	}

	return &Artifacts{
		CalendarURL: link,
		ICS:         ICS(event),
		QRPNG:       png,
		QRDataURL:   "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
		FileName:    FileName(r),
	}, nil
}

// FileName is the download base name, e.g. "Salon_reservation_AB12CD34".
func FileName(r *model.Reservation) string {
	shop := strings.Map(func(c rune) rune {
		switch c {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return c
	}, r.ShopName)
	return fmt.Sprintf("%s_reservation_%s", shop, r.CouponCode)
}
