package services

import (
	"context"
	"time"

	"github.com/franciscosanchezn/gin-food-ordering-api/internal/cache"
	"github.com/franciscosanchezn/gin-food-ordering-api/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const recentOrdersLimit = 5

// RecentOrder is an order with a resolved customer display name
type RecentOrder struct {
	models.Order
	CustomerName string `json:"customerName"`
}

type DashboardStats struct {
	TotalOrders    int64           `json:"totalOrders"`
	TotalRevenue   decimal.Decimal `json:"totalRevenue"`
	PendingOrders  int64           `json:"pendingOrders"`
	TotalFoods     int64           `json:"totalFoods"`
	TotalEmployees int64           `json:"totalEmployees"`
	RecentOrders   []RecentOrder   `json:"recentOrders"`
}

type DashboardService interface {
	Stats(ctx context.Context, scope Scope) (*DashboardStats, error)
}

type dashboardService struct {
	db    *gorm.DB
	cache cache.Cache
	ttl   time.Duration
	log   *logrus.Logger
}

// NewDashboardService creates a DashboardService. Results are cached for ttl; zero disables caching.
func NewDashboardService(db *gorm.DB, c cache.Cache, ttl time.Duration, log *logrus.Logger) DashboardService {
	return &dashboardService{db: db, cache: c, ttl: ttl, log: log}
}

func dashboardKey(scope Scope) string {
	if scope.Global() {
		return "dashboard:all"
	}
	return "dashboard:" + scope.RestaurantID
}

func (s *dashboardService) Stats(ctx context.Context, scope Scope) (*DashboardStats, error) {
	key := dashboardKey(scope)
	if s.ttl > 0 {
		var cached DashboardStats
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.log.WithError(err).Warn("Dashboard cache read failed")
		} else if found {
			return &cached, nil
		}
	}

	stats := &DashboardStats{}
	g, gctx := errgroup.WithContext(ctx)

	orders := func() *gorm.DB {
		return scope.apply(s.db.WithContext(gctx).Model(&models.Order{}), "restaurant_id")
	}

	g.Go(func() error {
		return orders().Count(&stats.TotalOrders).Error
	})
	g.Go(func() error {
		var revenue decimal.NullDecimal
		err := orders().
			Where("status = ?", models.OrderCompleted).
			Select("SUM(total_amount)").
			Row().Scan(&revenue)
		if err != nil {
			return err
		}
		stats.TotalRevenue = decimal.Zero
		if revenue.Valid {
			stats.TotalRevenue = revenue.Decimal.Round(2)
		}
		return nil
	})
	g.Go(func() error {
		return orders().Where("status = ?", models.OrderPending).Count(&stats.PendingOrders).Error
	})
	g.Go(func() error {
		q := scope.apply(s.db.WithContext(gctx).Model(&models.Food{}), "restaurant_id")
		return q.Count(&stats.TotalFoods).Error
	})
	g.Go(func() error {
		q := scope.apply(s.db.WithContext(gctx).Model(&models.Employee{}), "restaurant_id")
		return q.Count(&stats.TotalEmployees).Error
	})
	g.Go(func() error {
		var recent []models.Order
		q := scope.apply(s.db.WithContext(gctx), "restaurant_id").
			Preload("Customer").
			Preload("Items")
		err := withFoods(q, "Items.Food").
			Order("created_at DESC").
			Limit(recentOrdersLimit).
			Find(&recent).Error
		if err != nil {
			return err
		}
		stats.RecentOrders = make([]RecentOrder, 0, len(recent))
		for _, o := range recent {
			stats.RecentOrders = append(stats.RecentOrders, RecentOrder{Order: o, CustomerName: o.CustomerName()})
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if s.ttl > 0 {
		if err := s.cache.Set(ctx, key, stats, s.ttl); err != nil {
			s.log.WithError(err).Warn("Dashboard cache write failed")
		}
	}
	return stats, nil
}
