package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/ikkim/salonflow-backend/internal/app/model"
	"github.com/ikkim/salonflow-backend/internal/app/repository"
	"github.com/ikkim/salonflow-backend/internal/booking"
	"github.com/ikkim/salonflow-backend/internal/reservation"
	"github.com/ikkim/salonflow-backend/pkg/calendar"
	"github.com/ikkim/salonflow-backend/pkg/logger"
	"github.com/ikkim/salonflow-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrReservationNotFound = errors.New("reservation session not found or expired")
	ErrInvalidMenuSelected = errors.New("selected menu is not offered by this shop")
	ErrInvalidPhoneNumber  = errors.New("phone number must be in E.164 format")
	ErrFeatureDisabled     = errors.New("feature is not configured")
)

var e164Pattern = regexp.MustCompile(`^\+[1-9][0-9]{7,14}$`)

// ArtifactStore uploads a calendar artifact and returns a download link.
type ArtifactStore interface {
	PutArtifact(ctx context.Context, key, contentType string, body []byte) (string, error)
}

// SMSSender delivers a text message to an E.164 number.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

type ReservationOptions struct {
	SessionTTL time.Duration
	Location   *time.Location
	Artifacts  ArtifactStore // optional
	SMS        SMSSender     // optional
}

type PublishedArtifacts struct {
	CalendarURL string `json:"calendar_url"`
	ICSURL      string `json:"ics_url"`
	QRCodeURL   string `json:"qr_code_url"`
}

type ReservationService interface {
	BookableSlots() []string
	// Start opens a wizard for shopID, or for the signed-in owner's shop,
	// or for the public shop, in that order of preference.
	Start(ctx context.Context, shopID *uint, ownerID string) (*reservation.State, error)
	Get(ctx context.Context, id string) (*reservation.State, error)
	// SelectMenus replaces the selection. A nil rate applies the suggested
	// rate of the selection.
	SelectMenus(ctx context.Context, id string, menuIDs []uint, rate *float64) (*reservation.State, error)
	Next(ctx context.Context, id string) (*reservation.State, error)
	Schedule(ctx context.Context, id, date, start string) (*reservation.State, error)
	Confirm(ctx context.Context, id string) (*reservation.State, error)
	Back(ctx context.Context, id string) (*reservation.State, error)
	Reset(ctx context.Context, id string) (*reservation.State, error)
	Artifacts(ctx context.Context, id string) (*model.Reservation, *calendar.Artifacts, error)
	PublishArtifacts(ctx context.Context, id string) (*PublishedArtifacts, error)
	SendCalendarLink(ctx context.Context, id, phone string) error
}

type reservationService struct {
	shopRepo  repository.ShopRepository
	menuRepo  repository.MenuRepository
	store     reservation.SessionStore
	ttl       time.Duration
	loc       *time.Location
	artifacts ArtifactStore
	sms       SMSSender
	now       func() time.Time
	newCode   reservation.CodeGenerator
}

func NewReservationService(
	shopRepo repository.ShopRepository,
	menuRepo repository.MenuRepository,
	store reservation.SessionStore,
	opts ReservationOptions,
) ReservationService {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 2 * time.Hour
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &reservationService{
		shopRepo:  shopRepo,
		menuRepo:  menuRepo,
		store:     store,
		ttl:       opts.SessionTTL,
		loc:       opts.Location,
		artifacts: opts.Artifacts,
		sms:       opts.SMS,
		now:       time.Now,
		newCode:   util.GenerateCouponCode,
	}
}

func (s *reservationService) BookableSlots() []string {
	return booking.BookableTimeSlots()
}

func (s *reservationService) clock() time.Time {
	return s.now().In(s.loc)
}

func (s *reservationService) resolveShop(shopID *uint, ownerID string) (*model.Shop, error) {
	if shopID != nil {
		return s.shopRepo.FindByID(*shopID)
	}
	if ownerID != "" {
		shop, err := s.shopRepo.FindByOwnerID(ownerID)
		if err == nil {
			return shop, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	return s.shopRepo.FindTemplate()
}

func (s *reservationService) Start(ctx context.Context, shopID *uint, ownerID string) (*reservation.State, error) {
	shop, err := s.resolveShop(shopID, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShopNotFound
		}
		return nil, err
	}

	state := reservation.NewState(uuid.NewString(), *shop, s.clock())
	if err := s.store.Create(ctx, state, s.ttl); err != nil {
		logger.Error("Failed to create reservation session", err, logger.Fields{"shop_id": shop.ID})
		return nil, err
	}

	logger.Info("Reservation session started", logger.Fields{
		"session_id": state.ID,
		"shop_id":    shop.ID,
	})
	return state, nil
}

func (s *reservationService) Get(ctx context.Context, id string) (*reservation.State, error) {
	state, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, reservation.ErrSessionNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return state, nil
}

// mutate loads, changes and saves a session. A failed step leaves the
// stored session untouched.
func (s *reservationService) mutate(ctx context.Context, id string, step func(*reservation.State, time.Time) error) (*reservation.State, error) {
	state, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := step(state, s.clock()); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, state, s.ttl); err != nil {
		logger.Error("Failed to save reservation session", err, logger.Fields{"session_id": id})
		return nil, err
	}
	return state, nil
}

func (s *reservationService) SelectMenus(ctx context.Context, id string, menuIDs []uint, rate *float64) (*reservation.State, error) {
	return s.mutate(ctx, id, func(state *reservation.State, now time.Time) error {
		offered, err := s.menuRepo.FindActiveByShop(state.ShopID)
		if err != nil {
			return err
		}
		byID := make(map[uint]model.Menu, len(offered))
		for _, m := range offered {
			byID[m.ID] = m
		}

		selected := make([]model.Menu, 0, len(menuIDs))
		seen := make(map[uint]bool, len(menuIDs))
		for _, menuID := range menuIDs {
			m, ok := byID[menuID]
			if !ok {
				return fmt.Errorf("%w: %d", ErrInvalidMenuSelected, menuID)
			}
			if !seen[menuID] {
				seen[menuID] = true
				selected = append(selected, m)
			}
		}

		applied := booking.ClampDiscountRate(booking.MaxDefaultDiscount(selected))
		if rate != nil {
			applied = *rate
		}
		return state.SelectMenus(selected, applied, now)
	})
}

func (s *reservationService) Next(ctx context.Context, id string) (*reservation.State, error) {
	return s.mutate(ctx, id, func(state *reservation.State, now time.Time) error {
		return state.Next(now)
	})
}

func (s *reservationService) Schedule(ctx context.Context, id, date, start string) (*reservation.State, error) {
	return s.mutate(ctx, id, func(state *reservation.State, now time.Time) error {
		return state.Schedule(date, start, now)
	})
}

func (s *reservationService) Confirm(ctx context.Context, id string) (*reservation.State, error) {
	state, err := s.mutate(ctx, id, func(state *reservation.State, now time.Time) error {
		return state.Confirm(now, s.newCode)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Reservation confirmed", logger.Fields{
		"session_id":        state.ID,
		"shop_id":           state.ShopID,
		"appointment_date":  state.AppointmentDate,
		"discounted_amount": state.DiscountedAmount,
	})
	return state, nil
}

func (s *reservationService) Back(ctx context.Context, id string) (*reservation.State, error) {
	return s.mutate(ctx, id, func(state *reservation.State, now time.Time) error {
		return state.Back(now)
	})
}

func (s *reservationService) Reset(ctx context.Context, id string) (*reservation.State, error) {
	return s.mutate(ctx, id, func(state *reservation.State, now time.Time) error {
		state.Reset(now)
		return nil
	})
}

func (s *reservationService) Artifacts(ctx context.Context, id string) (*model.Reservation, *calendar.Artifacts, error) {
	state, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	snapshot, err := state.Reservation()
	if err != nil {
		return nil, nil, err
	}

	artifacts, err := calendar.Build(snapshot, s.loc)
	if err != nil {
		logger.Error("Failed to build calendar artifacts", err, logger.Fields{"session_id": id})
		return nil, nil, err
	}
	return snapshot, artifacts, nil
}

func (s *reservationService) PublishArtifacts(ctx context.Context, id string) (*PublishedArtifacts, error) {
	if s.artifacts == nil {
		return nil, ErrFeatureDisabled
	}
	_, artifacts, err := s.Artifacts(ctx, id)
	if err != nil {
		return nil, err
	}

	prefix := fmt.Sprintf("reservations/%s/%s", id, artifacts.FileName)
	icsURL, err := s.artifacts.PutArtifact(ctx, prefix+".ics", "text/calendar; charset=utf-8", []byte(artifacts.ICS))
	if err != nil {
		return nil, err
	}
	qrURL, err := s.artifacts.PutArtifact(ctx, prefix+".png", "image/png", artifacts.QRPNG)
	if err != nil {
		return nil, err
	}

	logger.Info("Calendar artifacts published", logger.Fields{"session_id": id})
	return &PublishedArtifacts{
		CalendarURL: artifacts.CalendarURL,
		ICSURL:      icsURL,
		QRCodeURL:   qrURL,
	}, nil
}

func (s *reservationService) SendCalendarLink(ctx context.Context, id, phone string) error {
	if s.sms == nil {
		return ErrFeatureDisabled
	}
	if !e164Pattern.MatchString(phone) {
		return ErrInvalidPhoneNumber
	}
	snapshot, artifacts, err := s.Artifacts(ctx, id)
	if err != nil {
		return err
	}

	body := fmt.Sprintf("%s %s %s-%s (%s)\nAdd to calendar: %s",
		snapshot.ShopName,
		snapshot.AppointmentDate,
		snapshot.StartTime,
		snapshot.EndTime,
		booking.FormatPrice(snapshot.DiscountedAmount),
		artifacts.CalendarURL,
	)
	if err := s.sms.SendSMS(ctx, phone, body); err != nil {
		logger.Error("Failed to send calendar link", err, logger.Fields{"session_id": id})
		return err
	}

	logger.Info("Calendar link sent by SMS", logger.Fields{"session_id": id})
	return nil
}
