package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"bcflats_backend/internal/models"
)

const (
	dashboardCacheKey = "dashboard:stats"
	dashboardCacheTTL = 2 * time.Minute
)

// DashboardStats is the aggregate view behind the admin landing page.
type DashboardStats struct {
	Tenants         TenantStats      `json:"tenants"`
	Rooms           RoomStats        `json:"rooms"`
	Payments        PaymentStats     `json:"payments"`
	Archives        ArchiveStats     `json:"archives"`
	PendingPayments int64            `json:"pending_payments"`
	OpenMaintenance int64            `json:"open_maintenance"`
	RecentPayments  []models.Payment `json:"recent_payments"`
	GeneratedAt     time.Time        `json:"generated_at"`
}

// DashboardService assembles cross-domain statistics. Results are
// cached in Redis for a short window; the cache layer tolerates being
// absent.
type DashboardService struct {
	db       *gorm.DB
	cache    *RedisCache
	billing  *BillingService
	tenants  *TenantService
	rooms    *RoomService
	payments *PaymentService
	archives *ArchiveService
}

func NewDashboardService(db *gorm.DB, cache *RedisCache, billing *BillingService,
	tenants *TenantService, rooms *RoomService, payments *PaymentService,
	archives *ArchiveService) *DashboardService {
	return &DashboardService{
		db:       db,
		cache:    cache,
		billing:  billing,
		tenants:  tenants,
		rooms:    rooms,
		payments: payments,
		archives: archives,
	}
}

// GetStats returns the dashboard aggregate. Current-month charges are
// accrued first so balances are up to date before aggregation.
func (s *DashboardService) GetStats(ctx context.Context) (DashboardStats, error) {
	return GetOrSet(s.cache, ctx, dashboardCacheKey, dashboardCacheTTL, func() (DashboardStats, error) {
		return s.buildStats()
	})
}

// InvalidateCache drops the cached aggregate, called after ledger
// mutations that should be visible immediately.
func (s *DashboardService) InvalidateCache(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Delete(ctx, dashboardCacheKey)
	}
}

func (s *DashboardService) buildStats() (DashboardStats, error) {
	var stats DashboardStats

	if _, err := s.billing.AccrueAllActive(); err != nil {
		return stats, err
	}

	tenantStats, err := s.tenants.GetTenantStats()
	if err != nil {
		return stats, err
	}
	stats.Tenants = *tenantStats

	roomStats, err := s.rooms.GetRoomStats()
	if err != nil {
		return stats, err
	}
	stats.Rooms = *roomStats

	paymentStats, err := s.payments.GetPaymentStats(nil)
	if err != nil {
		return stats, err
	}
	stats.Payments = *paymentStats

	archiveStats, err := s.archives.GetArchiveStats()
	if err != nil {
		return stats, err
	}
	stats.Archives = *archiveStats

	if err := s.db.Model(&models.Payment{}).
		Where("status = ?", models.PaymentStatusPending).
		Count(&stats.PendingPayments).Error; err != nil {
		return stats, err
	}
	if err := s.db.Model(&models.MaintenanceRequest{}).
		Where("status IN ?", []models.MaintenanceStatus{models.MaintenanceStatusPending, models.MaintenanceStatusOngoing}).
		Count(&stats.OpenMaintenance).Error; err != nil {
		return stats, err
	}

	recent, err := s.payments.GetRecentPayments(5)
	if err != nil {
		return stats, err
	}
	stats.RecentPayments = recent
	stats.GeneratedAt = time.Now()
	return stats, nil
}
