package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"bcflats_backend/internal/apperr"
	"bcflats_backend/internal/models"
)

// ArchiveListFilter narrows ListArchives.
type ArchiveListFilter struct {
	Search   string
	RoomID   uint
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}

// ArchiveStats summarizes the archived population.
type ArchiveStats struct {
	Total            int64           `json:"total"`
	WithBalance      int64           `json:"with_balance"`
	TotalUncollected decimal.Decimal `json:"total_uncollected"`
	AverageStayDays  int             `json:"average_stay_days"`
}

// ArchiveService owns the checkout transition and the archive records
// it produces. The transition is one transaction: the tenant's ledger
// state is frozen into an Archive row, the tenant becomes Checked Out,
// the bed is released and the account suspended.
type ArchiveService struct {
	db            *gorm.DB
	billing       *BillingService
	notifications *NotificationService
}

func NewArchiveService(db *gorm.DB, billing *BillingService, notifications *NotificationService) *ArchiveService {
	return &ArchiveService{db: db, billing: billing, notifications: notifications}
}

// ArchiveTenant checks out an active tenant. Charges for the current
// month are accrued first so the snapshot carries the final balance.
func (s *ArchiveService) ArchiveTenant(tenantID uint, archivedBy *uint, reason string) (*models.Archive, error) {
	if err := s.billing.AccrueTenant(tenantID); err != nil {
		return nil, err
	}

	var archive models.Archive
	var tenant models.Tenant

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Account").Preload("Room").First(&tenant, tenantID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("tenant %d not found", tenantID)
			}
			return fmt.Errorf("load tenant: %w", err)
		}
		if tenant.Status != models.TenantStatusActive {
			return apperr.InvalidState("tenant %d is %s, only Active tenants can be archived", tenant.ID, tenant.Status)
		}

		now := time.Now()
		archive = models.Archive{
			TenantID:            tenant.ID,
			AccountID:           tenant.AccountID,
			RoomID:              tenant.RoomID,
			BedNumber:           tenant.BedNumber,
			CheckInDate:         tenant.CheckInDate,
			CheckOutDate:        now,
			LeaseStart:          tenant.LeaseStart,
			LeaseEnd:            tenant.LeaseEnd,
			MonthlyRent:         tenant.MonthlyRent,
			Utilities:           tenant.Utilities,
			Deposit:             tenant.Deposit,
			DepositPaid:         tenant.DepositPaid,
			FinalBalance:        tenant.OutstandingBalance,
			EmergencyContact:    tenant.EmergencyContact,
			SpecialRequirements: tenant.SpecialRequirements,
			Notes:               tenant.Notes,
			ArchivedBy:          archivedBy,
			ArchiveReason:       reason,
		}
		if err := tx.Create(&archive).Error; err != nil {
			return fmt.Errorf("create archive: %w", err)
		}

		if err := tx.Model(&tenant).Updates(map[string]interface{}{
			"status":         models.TenantStatusCheckedOut,
			"check_out_date": now,
		}).Error; err != nil {
			return fmt.Errorf("check out tenant: %w", err)
		}
		tenant.Status = models.TenantStatusCheckedOut

		if err := shiftOccupancy(tx, tenant.RoomID, -1); err != nil {
			return err
		}

		if err := tx.Model(&models.Account{}).Where("id = ?", tenant.AccountID).
			Update("status", models.AccountStatusSuspended).Error; err != nil {
			return fmt.Errorf("suspend account: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifications.TenantArchived(&tenant, &archive)
	return &archive, nil
}

// RestoreTenant reverses a checkout: the tenant becomes Active again,
// the bed is re-occupied, the account reactivated and the archive row
// removed. Fails with Conflict when the bed has been taken since.
func (s *ArchiveService) RestoreTenant(archiveID uint) (*models.Tenant, error) {
	var tenant models.Tenant
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var archive models.Archive
		if err := tx.First(&archive, archiveID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("archive %d not found", archiveID)
			}
			return fmt.Errorf("load archive: %w", err)
		}

		if err := tx.First(&tenant, archive.TenantID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("tenant %d behind archive %d no longer exists", archive.TenantID, archiveID)
			}
			return fmt.Errorf("load tenant: %w", err)
		}
		if tenant.Status != models.TenantStatusCheckedOut {
			return apperr.InvalidState("tenant %d is %s, not Checked Out", tenant.ID, tenant.Status)
		}

		if err := bedConflict(tx, tenant.RoomID, tenant.BedNumber, tenant.ID); err != nil {
			return err
		}
		if err := shiftOccupancy(tx, tenant.RoomID, +1); err != nil {
			return err
		}

		if err := tx.Model(&tenant).Updates(map[string]interface{}{
			"status":         models.TenantStatusActive,
			"check_out_date": nil,
		}).Error; err != nil {
			return fmt.Errorf("restore tenant: %w", err)
		}
		tenant.Status = models.TenantStatusActive
		tenant.CheckOutDate = nil

		if err := tx.Model(&models.Account{}).Where("id = ?", tenant.AccountID).
			Update("status", models.AccountStatusActive).Error; err != nil {
			return fmt.Errorf("reactivate account: %w", err)
		}

		if err := tx.Delete(&archive).Error; err != nil {
			return fmt.Errorf("remove archive: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

// GetArchiveByID returns an archive with its related records loaded.
func (s *ArchiveService) GetArchiveByID(id uint) (*models.Archive, error) {
	var archive models.Archive
	err := s.db.Preload("Account").Preload("Room").Preload("ArchivedByAccount").
		First(&archive, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("archive %d not found", id)
		}
		return nil, err
	}
	return &archive, nil
}

// ListArchives returns archives matching the filter, most recent
// checkout first, with the total count before pagination.
func (s *ArchiveService) ListArchives(filter ArchiveListFilter) ([]models.Archive, int64, error) {
	q := s.db.Model(&models.Archive{})
	if filter.RoomID != 0 {
		q = q.Where("archives.room_id = ?", filter.RoomID)
	}
	if filter.From != nil {
		q = q.Where("archives.check_out_date >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("archives.check_out_date <= ?", *filter.To)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		q = q.Joins("JOIN accounts ON accounts.id = archives.account_id").
			Where("LOWER(accounts.first_name) LIKE ? OR LOWER(accounts.last_name) LIKE ? OR LOWER(accounts.email) LIKE ?",
				pattern, pattern, pattern)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var archives []models.Archive
	err := q.Preload("Account").Preload("Room").Preload("ArchivedByAccount").
		Order("archives.check_out_date DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&archives).Error
	return archives, total, err
}

// DeleteArchive permanently drops an archive record. The underlying
// tenant row is untouched.
func (s *ArchiveService) DeleteArchive(id uint) error {
	res := s.db.Delete(&models.Archive{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("archive %d not found", id)
	}
	return nil
}

// GetArchiveStats summarizes archived tenancies, including balances
// that left with the tenant.
func (s *ArchiveService) GetArchiveStats() (*ArchiveStats, error) {
	stats := &ArchiveStats{TotalUncollected: decimal.Zero}

	var archives []models.Archive
	if err := s.db.Find(&archives).Error; err != nil {
		return nil, err
	}

	stats.Total = int64(len(archives))
	totalDays := 0
	for i := range archives {
		a := &archives[i]
		if a.FinalBalance.IsPositive() {
			stats.WithBalance++
			stats.TotalUncollected = stats.TotalUncollected.Add(a.FinalBalance)
		}
		totalDays += a.StayDuration()
	}
	if stats.Total > 0 {
		stats.AverageStayDays = totalDays / int(stats.Total)
	}
	return stats, nil
}
