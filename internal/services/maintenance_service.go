package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"bcflats_backend/internal/apperr"
	"bcflats_backend/internal/models"
)

// MaintenanceInput carries the fields of a new repair ticket.
type MaintenanceInput struct {
	Title       string
	Description string
	Priority    models.MaintenancePriority
}

// MaintenanceService manages repair tickets filed by tenants.
type MaintenanceService struct {
	db            *gorm.DB
	notifications *NotificationService
}

func NewMaintenanceService(db *gorm.DB, notifications *NotificationService) *MaintenanceService {
	return &MaintenanceService{db: db, notifications: notifications}
}

// CreateRequest files a ticket for the tenant's current room and
// notifies staff.
func (s *MaintenanceService) CreateRequest(tenantID uint, input MaintenanceInput) (*models.MaintenanceRequest, error) {
	if input.Title == "" {
		return nil, apperr.Validation("title is required")
	}
	priority := input.Priority
	if priority == "" {
		priority = models.MaintenancePriorityLow
	}

	var tenant models.Tenant
	if err := s.db.First(&tenant, tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("tenant %d not found", tenantID)
		}
		return nil, fmt.Errorf("load tenant: %w", err)
	}
	if !tenant.IsActive() {
		return nil, apperr.Validation("only active tenants can file maintenance requests")
	}

	request := models.MaintenanceRequest{
		TenantID:    tenant.ID,
		RoomID:      tenant.RoomID,
		Title:       input.Title,
		Description: input.Description,
		Priority:    priority,
		Status:      models.MaintenanceStatusPending,
	}
	if err := s.db.Create(&request).Error; err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	s.notifications.fire(func() error {
		return s.notifications.BroadcastToRoles(
			[]models.Role{models.RoleAdmin, models.RoleSuperAdmin},
			models.NotificationTypeMaintenance,
			"New maintenance request",
			fmt.Sprintf("%s (priority %s)", request.Title, request.Priority),
			map[string]interface{}{"request_id": request.ID, "room_id": request.RoomID})
	}, "maintenance request filed")
	return &request, nil
}

// GetRequestByID returns a ticket with its tenant and room loaded.
func (s *MaintenanceService) GetRequestByID(id uint) (*models.MaintenanceRequest, error) {
	var request models.MaintenanceRequest
	err := s.db.Preload("Tenant").Preload("Tenant.Account").Preload("Room").
		First(&request, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("maintenance request %d not found", id)
		}
		return nil, err
	}
	return &request, nil
}

// ListRequests returns tickets, optionally filtered by status and
// tenant, most urgent first.
func (s *MaintenanceService) ListRequests(status models.MaintenanceStatus, tenantID uint) ([]models.MaintenanceRequest, error) {
	q := s.db.Model(&models.MaintenanceRequest{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if tenantID != 0 {
		q = q.Where("tenant_id = ?", tenantID)
	}
	var requests []models.MaintenanceRequest
	err := q.Preload("Tenant").Preload("Tenant.Account").Preload("Room").
		Order("CASE priority WHEN 'High' THEN 0 WHEN 'Medium' THEN 1 ELSE 2 END, created_at ASC").
		Find(&requests).Error
	return requests, err
}

// UpdateStatus advances a ticket along Pending -> Ongoing -> Fixed and
// notifies the filing tenant.
func (s *MaintenanceService) UpdateStatus(id uint, status models.MaintenanceStatus) (*models.MaintenanceRequest, error) {
	request, err := s.GetRequestByID(id)
	if err != nil {
		return nil, err
	}

	valid := map[models.MaintenanceStatus][]models.MaintenanceStatus{
		models.MaintenanceStatusPending: {models.MaintenanceStatusOngoing, models.MaintenanceStatusFixed},
		models.MaintenanceStatusOngoing: {models.MaintenanceStatusFixed},
	}
	allowed := false
	for _, next := range valid[request.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, apperr.InvalidState("cannot move request %d from %s to %s", id, request.Status, status)
	}

	if err := s.db.Model(request).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("update request: %w", err)
	}
	request.Status = status

	s.notifications.MaintenanceUpdated(request.Tenant.AccountID, request)
	return request, nil
}

// DeleteRequest removes a ticket.
func (s *MaintenanceService) DeleteRequest(id uint) error {
	res := s.db.Delete(&models.MaintenanceRequest{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("maintenance request %d not found", id)
	}
	return nil
}
