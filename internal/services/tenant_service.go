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

// TenantInput carries the caller-supplied fields when creating or
// updating a tenant.
type TenantInput struct {
	AccountID           uint
	RoomID              uint
	BedNumber           int
	LeaseStart          time.Time
	LeaseEnd            *time.Time
	MonthlyRent         *decimal.Decimal
	Utilities           *decimal.Decimal
	Deposit             *decimal.Decimal
	EmergencyContact    map[string]interface{}
	SpecialRequirements string
	Notes               string
}

// TenantListFilter narrows ListTenants.
type TenantListFilter struct {
	Status   models.TenantStatus
	RoomID   uint
	Search   string
	Page     int
	PageSize int
}

// TenantStats summarizes occupancy and receivables.
type TenantStats struct {
	Total            int64           `json:"total"`
	Active           int64           `json:"active"`
	Pending          int64           `json:"pending"`
	CheckedOut       int64           `json:"checked_out"`
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
}

// TenantService manages the tenant lifecycle up to checkout. Checkout
// itself runs through the archive transition.
type TenantService struct {
	db            *gorm.DB
	notifications *NotificationService
}

func NewTenantService(db *gorm.DB, notifications *NotificationService) *TenantService {
	return &TenantService{db: db, notifications: notifications}
}

// CreateTenant creates a Pending tenant assignment. Occupancy is not
// counted until check-in, so the bed is merely earmarked here.
func (s *TenantService) CreateTenant(input TenantInput) (*models.Tenant, error) {
	if input.BedNumber < 1 {
		return nil, apperr.Validation("bed number must be at least 1")
	}

	var tenant models.Tenant
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var account models.Account
		if err := tx.First(&account, input.AccountID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("account %d not found", input.AccountID)
			}
			return fmt.Errorf("load account: %w", err)
		}
		if account.Role != models.RoleTenant {
			return apperr.Validation("account %d is not a tenant account", account.ID)
		}

		var existing int64
		if err := tx.Model(&models.Tenant{}).
			Where("account_id = ? AND status IN ?", account.ID,
				[]models.TenantStatus{models.TenantStatusPending, models.TenantStatusActive}).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return apperr.Conflict("account %d already has an open tenancy", account.ID)
		}

		var room models.Room
		if err := tx.First(&room, input.RoomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("room %d not found", input.RoomID)
			}
			return fmt.Errorf("load room: %w", err)
		}
		if input.BedNumber > room.TotalBeds {
			return apperr.Validation("room %s has only %d beds", room.RoomNumber, room.TotalBeds)
		}

		if err := bedConflict(tx, room.ID, input.BedNumber, 0); err != nil {
			return err
		}

		rent := room.MonthlyRent
		if input.MonthlyRent != nil {
			rent = *input.MonthlyRent
		}
		utilities := room.Utilities
		if input.Utilities != nil {
			utilities = *input.Utilities
		}
		deposit := rent
		if input.Deposit != nil {
			deposit = *input.Deposit
		}

		leaseStart := input.LeaseStart
		if leaseStart.IsZero() {
			leaseStart = time.Now()
		}

		tenant = models.Tenant{
			AccountID:           account.ID,
			RoomID:              room.ID,
			BedNumber:           input.BedNumber,
			Status:              models.TenantStatusPending,
			LeaseStart:          leaseStart,
			LeaseEnd:            input.LeaseEnd,
			MonthlyRent:         rent.Round(2),
			Utilities:           utilities.Round(2),
			Deposit:             deposit.Round(2),
			OutstandingBalance:  decimal.Zero,
			EmergencyContact:    input.EmergencyContact,
			SpecialRequirements: input.SpecialRequirements,
			Notes:               input.Notes,
		}
		if err := tx.Create(&tenant).Error; err != nil {
			return fmt.Errorf("create tenant: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

// bedConflict reports Conflict when another open tenancy holds the
// (room, bed) pair. excludeID skips the tenant being modified.
func bedConflict(tx *gorm.DB, roomID uint, bedNumber int, excludeID uint) error {
	var count int64
	q := tx.Model(&models.Tenant{}).
		Where("room_id = ? AND bed_number = ? AND status IN ?", roomID, bedNumber,
			[]models.TenantStatus{models.TenantStatusPending, models.TenantStatusActive})
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return apperr.Conflict("bed %d in room %d is already taken", bedNumber, roomID)
	}
	return nil
}

// CheckIn activates a Pending tenant: occupies the bed, increments the
// room's occupancy and activates the linked account, all in one
// transaction. The bed conflict is re-checked inside the transaction.
func (s *TenantService) CheckIn(tenantID uint) (*models.Tenant, error) {
	var tenant models.Tenant
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&tenant, tenantID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("tenant %d not found", tenantID)
			}
			return fmt.Errorf("load tenant: %w", err)
		}
		if tenant.Status != models.TenantStatusPending {
			return apperr.Conflict("tenant %d is %s, only Pending tenants can check in", tenant.ID, tenant.Status)
		}

		if err := bedConflict(tx, tenant.RoomID, tenant.BedNumber, tenant.ID); err != nil {
			return err
		}

		var room models.Room
		if err := tx.First(&room, tenant.RoomID).Error; err != nil {
			return fmt.Errorf("load room: %w", err)
		}
		if !room.AddTenant() {
			return apperr.Conflict("room %s is fully occupied", room.RoomNumber)
		}
		if err := tx.Model(&room).Updates(map[string]interface{}{
			"occupied_beds": room.OccupiedBeds,
			"status":        room.Status,
		}).Error; err != nil {
			return fmt.Errorf("update room occupancy: %w", err)
		}

		now := time.Now()
		if err := tx.Model(&tenant).Updates(map[string]interface{}{
			"status":        models.TenantStatusActive,
			"check_in_date": now,
		}).Error; err != nil {
			return fmt.Errorf("activate tenant: %w", err)
		}
		tenant.Status = models.TenantStatusActive
		tenant.CheckInDate = now

		if err := tx.Model(&models.Account{}).Where("id = ?", tenant.AccountID).
			Update("status", models.AccountStatusActive).Error; err != nil {
			return fmt.Errorf("activate account: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

// GetTenantByID returns a tenant with account and room loaded.
func (s *TenantService) GetTenantByID(id uint) (*models.Tenant, error) {
	var tenant models.Tenant
	err := s.db.Preload("Account").Preload("Room").First(&tenant, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("tenant %d not found", id)
		}
		return nil, err
	}
	return &tenant, nil
}

// GetTenantByAccountID returns the open tenancy for an account, used by
// tenant self-service endpoints.
func (s *TenantService) GetTenantByAccountID(accountID uint) (*models.Tenant, error) {
	var tenant models.Tenant
	err := s.db.Preload("Account").Preload("Room").
		Where("account_id = ? AND status IN ?", accountID,
			[]models.TenantStatus{models.TenantStatusPending, models.TenantStatusActive}).
		Order("created_at DESC").First(&tenant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("no open tenancy for account %d", accountID)
		}
		return nil, err
	}
	return &tenant, nil
}

// ListTenants returns tenants matching the filter, newest first, plus
// the total count before pagination.
func (s *TenantService) ListTenants(filter TenantListFilter) ([]models.Tenant, int64, error) {
	q := s.db.Model(&models.Tenant{})
	if filter.Status != "" {
		q = q.Where("tenants.status = ?", filter.Status)
	}
	if filter.RoomID != 0 {
		q = q.Where("tenants.room_id = ?", filter.RoomID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		q = q.Joins("JOIN accounts ON accounts.id = tenants.account_id").
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

	var tenants []models.Tenant
	err := q.Preload("Account").Preload("Room").
		Order("tenants.created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&tenants).Error
	return tenants, total, err
}

// UpdateTenant modifies mutable tenant fields. Moving an active tenant
// to another bed re-checks the conflict and shifts room occupancy.
func (s *TenantService) UpdateTenant(id uint, input TenantInput) (*models.Tenant, error) {
	var tenant models.Tenant
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&tenant, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("tenant %d not found", id)
			}
			return fmt.Errorf("load tenant: %w", err)
		}
		if tenant.Status == models.TenantStatusCheckedOut {
			return apperr.InvalidState("tenant %d is checked out and read-only", id)
		}

		updates := map[string]interface{}{}
		moving := false
		newRoomID := tenant.RoomID
		newBed := tenant.BedNumber
		if input.RoomID != 0 && input.RoomID != tenant.RoomID {
			newRoomID = input.RoomID
			moving = true
		}
		if input.BedNumber != 0 && input.BedNumber != tenant.BedNumber {
			newBed = input.BedNumber
			moving = true
		}
		if moving {
			var room models.Room
			if err := tx.First(&room, newRoomID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.NotFound("room %d not found", newRoomID)
				}
				return fmt.Errorf("load room: %w", err)
			}
			if newBed < 1 || newBed > room.TotalBeds {
				return apperr.Validation("room %s has only %d beds", room.RoomNumber, room.TotalBeds)
			}
			if err := bedConflict(tx, newRoomID, newBed, tenant.ID); err != nil {
				return err
			}
			if tenant.IsActive() && newRoomID != tenant.RoomID {
				if err := shiftOccupancy(tx, tenant.RoomID, -1); err != nil {
					return err
				}
				if err := shiftOccupancy(tx, newRoomID, +1); err != nil {
					return err
				}
			}
			updates["room_id"] = newRoomID
			updates["bed_number"] = newBed
		}

		if input.MonthlyRent != nil {
			if input.MonthlyRent.IsNegative() {
				return apperr.Validation("monthly rent cannot be negative")
			}
			updates["monthly_rent"] = input.MonthlyRent.Round(2)
		}
		if input.Utilities != nil {
			if input.Utilities.IsNegative() {
				return apperr.Validation("utilities cannot be negative")
			}
			updates["utilities"] = input.Utilities.Round(2)
		}
		if input.Deposit != nil {
			if input.Deposit.IsNegative() {
				return apperr.Validation("deposit cannot be negative")
			}
			updates["deposit"] = input.Deposit.Round(2)
		}
		if input.LeaseEnd != nil {
			updates["lease_end"] = input.LeaseEnd
		}
		if input.EmergencyContact != nil {
			updates["emergency_contact"] = input.EmergencyContact
		}
		if input.SpecialRequirements != "" {
			updates["special_requirements"] = input.SpecialRequirements
		}
		if input.Notes != "" {
			updates["notes"] = input.Notes
		}

		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&tenant).Updates(updates).Error; err != nil {
			return fmt.Errorf("update tenant: %w", err)
		}
		return tx.Preload("Account").Preload("Room").First(&tenant, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

func shiftOccupancy(tx *gorm.DB, roomID uint, delta int) error {
	var room models.Room
	if err := tx.First(&room, roomID).Error; err != nil {
		return fmt.Errorf("load room %d: %w", roomID, err)
	}
	ok := false
	if delta > 0 {
		ok = room.AddTenant()
	} else {
		ok = room.RemoveTenant()
	}
	if !ok {
		return apperr.Conflict("room %s occupancy cannot change by %d", room.RoomNumber, delta)
	}
	return tx.Model(&room).Updates(map[string]interface{}{
		"occupied_beds": room.OccupiedBeds,
		"status":        room.Status,
	}).Error
}

// UpdateStatus allows only the Pending to Active transition, which
// routes through CheckIn so occupancy stays consistent.
func (s *TenantService) UpdateStatus(id uint, status models.TenantStatus) (*models.Tenant, error) {
	switch status {
	case models.TenantStatusActive:
		return s.CheckIn(id)
	case models.TenantStatusCheckedOut:
		return nil, apperr.Validation("checkout must go through the archive transition")
	default:
		return nil, apperr.Validation("unsupported status transition to %s", status)
	}
}

// DeleteTenant removes a tenant that never checked in. Active tenants
// must be archived instead.
func (s *TenantService) DeleteTenant(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var tenant models.Tenant
		if err := tx.First(&tenant, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("tenant %d not found", id)
			}
			return fmt.Errorf("load tenant: %w", err)
		}
		if tenant.Status != models.TenantStatusPending {
			return apperr.InvalidState("only Pending tenants can be deleted, tenant %d is %s", id, tenant.Status)
		}
		return tx.Delete(&tenant).Error
	})
}

// GetTenantStats returns occupancy counts and the receivables total.
func (s *TenantService) GetTenantStats() (*TenantStats, error) {
	stats := &TenantStats{TotalOutstanding: decimal.Zero}

	if err := s.db.Model(&models.Tenant{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	counts := map[models.TenantStatus]*int64{
		models.TenantStatusActive:     &stats.Active,
		models.TenantStatusPending:    &stats.Pending,
		models.TenantStatusCheckedOut: &stats.CheckedOut,
	}
	for status, dst := range counts {
		if err := s.db.Model(&models.Tenant{}).Where("status = ?", status).Count(dst).Error; err != nil {
			return nil, err
		}
	}

	var balances []decimal.Decimal
	if err := s.db.Model(&models.Tenant{}).
		Where("status = ?", models.TenantStatusActive).
		Pluck("outstanding_balance", &balances).Error; err != nil {
		return nil, err
	}
	for _, b := range balances {
		stats.TotalOutstanding = stats.TotalOutstanding.Add(b)
	}
	return stats, nil
}
