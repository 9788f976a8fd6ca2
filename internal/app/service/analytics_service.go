package service

import (
	"github.com/ikkim/salonflow-backend/internal/app/repository"
)

// SubscriberCounter reports live realtime viewers.
type SubscriberCounter interface {
	SubscriberCount() int
}

type AnalyticsSummary struct {
	Shops           int64                      `json:"shops"`
	ActiveMenus     int64                      `json:"active_menus"`
	MenusByCategory []repository.CategoryCount `json:"menus_by_category"`
	LiveSubscribers int                        `json:"live_subscribers"`
}

type AnalyticsService interface {
	Summary() (*AnalyticsSummary, error)
}

type analyticsService struct {
	shopRepo    repository.ShopRepository
	menuRepo    repository.MenuRepository
	subscribers SubscriberCounter
}

func NewAnalyticsService(shopRepo repository.ShopRepository, menuRepo repository.MenuRepository, subscribers SubscriberCounter) AnalyticsService {
	return &analyticsService{
		shopRepo:    shopRepo,
		menuRepo:    menuRepo,
		subscribers: subscribers,
	}
}

func (s *analyticsService) Summary() (*AnalyticsSummary, error) {
	shops, err := s.shopRepo.Count()
	if err != nil {
		return nil, err
	}
	menus, err := s.menuRepo.CountActive()
	if err != nil {
		return nil, err
	}
	byCategory, err := s.menuRepo.CountActiveByCategory()
	if err != nil {
		return nil, err
	}

	summary := &AnalyticsSummary{
		Shops:           shops,
		ActiveMenus:     menus,
		MenusByCategory: byCategory,
	}
	if s.subscribers != nil {
		summary.LiveSubscribers = s.subscribers.SubscriberCount()
	}
	return summary, nil
}
