package services

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"bcflats_backend/internal/apperr"
	"bcflats_backend/internal/logger"
	"bcflats_backend/internal/models"
)

// NotificationService writes in-app notifications. All domain-event
// helpers are fire-and-forget: they log failures and never return an
// error into the ledger transaction that triggered them.
type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// Notify creates a notification for a specific account.
func (s *NotificationService) Notify(accountID uint, role models.Role, typ models.NotificationType, title, message string, metadata map[string]interface{}) error {
	n := models.Notification{
		RecipientRole:      role,
		RecipientAccountID: &accountID,
		Type:               typ,
		Title:              title,
		Message:            message,
		Metadata:           metadata,
	}
	return s.db.Create(&n).Error
}

// BroadcastToRoles creates one notification row per target role.
func (s *NotificationService) BroadcastToRoles(roles []models.Role, typ models.NotificationType, title, message string, metadata map[string]interface{}) error {
	for _, role := range roles {
		n := models.Notification{
			RecipientRole: role,
			Type:          typ,
			Title:         title,
			Message:       message,
			Metadata:      metadata,
		}
		if err := s.db.Create(&n).Error; err != nil {
			return err
		}
	}
	return nil
}

// ListForAccount returns notifications addressed to the account or
// broadcast to its role, newest first.
func (s *NotificationService) ListForAccount(accountID uint, role models.Role, unreadOnly bool, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	q := s.db.Where("recipient_account_id = ? OR (recipient_account_id IS NULL AND recipient_role = ?)", accountID, role)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	var notifications []models.Notification
	err := q.Order("created_at DESC").Limit(limit).Find(&notifications).Error
	return notifications, err
}

// MarkRead flags a single notification as read.
func (s *NotificationService) MarkRead(id uint) error {
	res := s.db.Model(&models.Notification{}).Where("id = ?", id).Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("notification %d not found", id)
	}
	return nil
}

// MarkAllRead flags every notification visible to the account as read.
func (s *NotificationService) MarkAllRead(accountID uint, role models.Role) error {
	return s.db.Model(&models.Notification{}).
		Where("recipient_account_id = ? OR (recipient_account_id IS NULL AND recipient_role = ?)", accountID, role).
		Update("is_read", true).Error
}

// UnreadCount returns the number of unread notifications for the account.
func (s *NotificationService) UnreadCount(accountID uint, role models.Role) (int64, error) {
	var count int64
	err := s.db.Model(&models.Notification{}).
		Where("is_read = ?", false).
		Where("recipient_account_id = ? OR (recipient_account_id IS NULL AND recipient_role = ?)", accountID, role).
		Count(&count).Error
	return count, err
}

// ---- domain event helpers (fire-and-forget) ----

func (s *NotificationService) fire(fn func() error, event string) {
	if err := fn(); err != nil {
		logger.Get().Warn("notification delivery failed", zap.String("event", event), zap.Error(err))
	}
}

// ChargePosted notifies the tenant and staff that a monthly charge was
// accrued.
func (s *NotificationService) ChargePosted(tenant *models.Tenant, cycle *models.BillingCycle) {
	meta := map[string]interface{}{
		"tenant_id":       tenant.ID,
		"cycle_month":     cycle.CycleMonth,
		"monthly_charges": cycle.MonthlyCharges.StringFixed(2),
		"deposit_applied": cycle.DepositApplied.StringFixed(2),
		"final_balance":   cycle.FinalBalance.StringFixed(2),
	}
	msg := fmt.Sprintf("Monthly charges of %s were posted for %s. Outstanding balance: %s.",
		cycle.MonthlyCharges.StringFixed(2), cycle.CycleMonth, cycle.FinalBalance.StringFixed(2))
	s.fire(func() error {
		return s.Notify(tenant.AccountID, models.RoleTenant, models.NotificationTypeBilling, "Monthly charges posted", msg, meta)
	}, "charge_posted_tenant")
	s.fire(func() error {
		return s.BroadcastToRoles(models.StaffRoles(), models.NotificationTypeBilling, "Monthly charges posted",
			fmt.Sprintf("Charges posted for tenant %d (%s): balance %s.", tenant.ID, cycle.CycleMonth, cycle.FinalBalance.StringFixed(2)), meta)
	}, "charge_posted_staff")
}

// BillingCorrected notifies about the one-time deposit backfill.
func (s *NotificationService) BillingCorrected(tenant *models.Tenant, cycle *models.BillingCycle, applied decimal.Decimal) {
	meta := map[string]interface{}{
		"tenant_id":       tenant.ID,
		"cycle_month":     cycle.CycleMonth,
		"deposit_applied": applied.StringFixed(2),
	}
	msg := fmt.Sprintf("Your security deposit of %s was applied to the %s billing cycle. Outstanding balance: %s.",
		applied.StringFixed(2), cycle.CycleMonth, tenant.OutstandingBalance.StringFixed(2))
	s.fire(func() error {
		return s.Notify(tenant.AccountID, models.RoleTenant, models.NotificationTypeBilling, "Billing correction applied", msg, meta)
	}, "billing_corrected")
}

// PaymentReceived notifies the tenant and staff about a completed payment.
func (s *NotificationService) PaymentReceived(tenant *models.Tenant, payment *models.Payment) {
	meta := map[string]interface{}{
		"tenant_id":     tenant.ID,
		"payment_id":    payment.ID,
		"amount":        payment.Amount.StringFixed(2),
		"balance_after": payment.BalanceAfter.StringFixed(2),
	}
	msg := fmt.Sprintf("Payment of %s via %s received. Remaining balance: %s.",
		payment.Amount.StringFixed(2), payment.PaymentMethod, payment.BalanceAfter.StringFixed(2))
	s.fire(func() error {
		return s.Notify(tenant.AccountID, models.RoleTenant, models.NotificationTypePayment, "Payment received", msg, meta)
	}, "payment_received_tenant")
	s.fire(func() error {
		return s.BroadcastToRoles(models.StaffRoles(), models.NotificationTypePayment, "Payment received",
			fmt.Sprintf("Tenant %d paid %s via %s.", tenant.ID, payment.Amount.StringFixed(2), payment.PaymentMethod), meta)
	}, "payment_received_staff")
}

// PendingPaymentSubmitted tells staff a tenant self-reported a payment.
func (s *NotificationService) PendingPaymentSubmitted(tenant *models.Tenant, payment *models.Payment) {
	s.fire(func() error {
		return s.BroadcastToRoles(models.StaffRoles(), models.NotificationTypePayment, "Payment awaiting confirmation",
			fmt.Sprintf("Tenant %d submitted a %s payment of %s for confirmation.", tenant.ID, payment.PaymentMethod, payment.Amount.StringFixed(2)),
			map[string]interface{}{"tenant_id": tenant.ID, "payment_id": payment.ID})
	}, "pending_payment_submitted")
}

// TenantArchived notifies staff that a tenant was checked out and archived.
func (s *NotificationService) TenantArchived(tenant *models.Tenant, archive *models.Archive) {
	s.fire(func() error {
		return s.BroadcastToRoles(models.StaffRoles(), models.NotificationTypeTenant, "Tenant checked out",
			fmt.Sprintf("Tenant %d checked out on %s with final balance %s (%s).",
				tenant.ID, archive.CheckOutDate.Format(time.RFC3339), archive.FinalBalance.StringFixed(2), archive.ArchiveReason),
			map[string]interface{}{"tenant_id": tenant.ID, "archive_id": archive.ID})
	}, "tenant_archived")
}

// MaintenanceUpdated notifies the tenant about a ticket status change.
func (s *NotificationService) MaintenanceUpdated(accountID uint, req *models.MaintenanceRequest) {
	s.fire(func() error {
		return s.Notify(accountID, models.RoleTenant, models.NotificationTypeMaintenance, "Maintenance request updated",
			fmt.Sprintf("Your request %q is now %s.", req.Title, req.Status),
			map[string]interface{}{"request_id": req.ID, "status": string(req.Status)})
	}, "maintenance_updated")
}
