package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"bcflats_backend/internal/apperr"
	"bcflats_backend/internal/models"
)

// AnnouncementInput carries caller-supplied announcement fields.
type AnnouncementInput struct {
	Title       string
	Message     string
	TargetRoles []models.Role
	Priority    models.AnnouncementPriority
	ScheduledAt *time.Time
	ExpiresAt   *time.Time
}

// AnnouncementService manages broadcast announcements. Publishing
// pushes a notification to every targeted role; expiry is swept by the
// background worker.
type AnnouncementService struct {
	db            *gorm.DB
	notifications *NotificationService
}

func NewAnnouncementService(db *gorm.DB, notifications *NotificationService) *AnnouncementService {
	return &AnnouncementService{db: db, notifications: notifications}
}

// CreateAnnouncement creates a Draft announcement.
func (s *AnnouncementService) CreateAnnouncement(input AnnouncementInput, createdBy uint) (*models.Announcement, error) {
	if input.Title == "" || input.Message == "" {
		return nil, apperr.Validation("title and message are required")
	}
	if len(input.TargetRoles) == 0 {
		return nil, apperr.Validation("at least one target role is required")
	}
	if input.ExpiresAt != nil && input.ExpiresAt.Before(time.Now()) {
		return nil, apperr.Validation("expiry must be in the future")
	}

	priority := input.Priority
	if priority == "" {
		priority = models.AnnouncementPriorityMedium
	}

	announcement := models.Announcement{
		Title:       input.Title,
		Message:     input.Message,
		TargetRoles: input.TargetRoles,
		Priority:    priority,
		Status:      models.AnnouncementStatusDraft,
		ScheduledAt: input.ScheduledAt,
		ExpiresAt:   input.ExpiresAt,
		CreatedBy:   createdBy,
	}
	if err := s.db.Create(&announcement).Error; err != nil {
		return nil, fmt.Errorf("create announcement: %w", err)
	}
	return &announcement, nil
}

// GetAnnouncementByID returns a single announcement.
func (s *AnnouncementService) GetAnnouncementByID(id uint) (*models.Announcement, error) {
	var announcement models.Announcement
	err := s.db.Preload("CreatedByAccount").First(&announcement, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("announcement %d not found", id)
		}
		return nil, err
	}
	return &announcement, nil
}

// ListAnnouncements returns announcements, optionally filtered by
// status, newest first.
func (s *AnnouncementService) ListAnnouncements(status models.AnnouncementStatus) ([]models.Announcement, error) {
	q := s.db.Model(&models.Announcement{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var announcements []models.Announcement
	err := q.Preload("CreatedByAccount").Order("created_at DESC").Find(&announcements).Error
	return announcements, err
}

// ListActiveForRole returns published, unexpired announcements visible
// to the given role, highest priority first.
func (s *AnnouncementService) ListActiveForRole(role models.Role) ([]models.Announcement, error) {
	var published []models.Announcement
	err := s.db.Where("status = ?", models.AnnouncementStatusPublished).
		Order("created_at DESC").Find(&published).Error
	if err != nil {
		return nil, err
	}

	now := time.Now()
	visible := make([]models.Announcement, 0, len(published))
	for _, a := range published {
		if a.IsExpired(now) {
			continue
		}
		for _, r := range a.TargetRoles {
			if r == role {
				visible = append(visible, a)
				break
			}
		}
	}
	return visible, nil
}

// UpdateAnnouncement edits a Draft or Suspended announcement.
func (s *AnnouncementService) UpdateAnnouncement(id uint, input AnnouncementInput) (*models.Announcement, error) {
	announcement, err := s.GetAnnouncementByID(id)
	if err != nil {
		return nil, err
	}
	if announcement.Status == models.AnnouncementStatusPublished {
		return nil, apperr.InvalidState("announcement %d is published, suspend it before editing", id)
	}

	updates := map[string]interface{}{}
	if input.Title != "" {
		updates["title"] = input.Title
	}
	if input.Message != "" {
		updates["message"] = input.Message
	}
	if len(input.TargetRoles) > 0 {
		updates["target_roles"] = input.TargetRoles
	}
	if input.Priority != "" {
		updates["priority"] = input.Priority
	}
	if input.ScheduledAt != nil {
		updates["scheduled_at"] = input.ScheduledAt
	}
	if input.ExpiresAt != nil {
		updates["expires_at"] = input.ExpiresAt
	}
	if len(updates) == 0 {
		return announcement, nil
	}
	if err := s.db.Model(announcement).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update announcement: %w", err)
	}
	return s.GetAnnouncementByID(id)
}

// Publish moves a Draft or Suspended announcement live and notifies
// the targeted roles.
func (s *AnnouncementService) Publish(id uint) (*models.Announcement, error) {
	announcement, err := s.GetAnnouncementByID(id)
	if err != nil {
		return nil, err
	}
	switch announcement.Status {
	case models.AnnouncementStatusDraft, models.AnnouncementStatusSuspended:
	case models.AnnouncementStatusPublished:
		return nil, apperr.Conflict("announcement %d is already published", id)
	default:
		return nil, apperr.InvalidState("announcement %d is %s and cannot be published", id, announcement.Status)
	}
	if announcement.IsExpired(time.Now()) {
		return nil, apperr.InvalidState("announcement %d is past its expiry", id)
	}

	if err := s.db.Model(announcement).Update("status", models.AnnouncementStatusPublished).Error; err != nil {
		return nil, fmt.Errorf("publish announcement: %w", err)
	}
	announcement.Status = models.AnnouncementStatusPublished

	s.notifications.fire(func() error {
		return s.notifications.BroadcastToRoles(announcement.TargetRoles,
			models.NotificationTypeSystem, announcement.Title, announcement.Message,
			map[string]interface{}{"announcement_id": announcement.ID, "priority": announcement.Priority})
	}, "announcement published")
	return announcement, nil
}

// Suspend takes a Published announcement off the air.
func (s *AnnouncementService) Suspend(id uint) (*models.Announcement, error) {
	announcement, err := s.GetAnnouncementByID(id)
	if err != nil {
		return nil, err
	}
	if announcement.Status != models.AnnouncementStatusPublished {
		return nil, apperr.InvalidState("announcement %d is %s, only Published announcements can be suspended", id, announcement.Status)
	}
	if err := s.db.Model(announcement).Update("status", models.AnnouncementStatusSuspended).Error; err != nil {
		return nil, fmt.Errorf("suspend announcement: %w", err)
	}
	announcement.Status = models.AnnouncementStatusSuspended
	return announcement, nil
}

// DeleteAnnouncement removes a non-published announcement.
func (s *AnnouncementService) DeleteAnnouncement(id uint) error {
	announcement, err := s.GetAnnouncementByID(id)
	if err != nil {
		return err
	}
	if announcement.Status == models.AnnouncementStatusPublished {
		return apperr.InvalidState("announcement %d is published, suspend it before deleting", id)
	}
	return s.db.Delete(announcement).Error
}

// ExpireDue marks published announcements past their expiry as
// Expired. Returns the number swept.
func (s *AnnouncementService) ExpireDue(now time.Time) (int64, error) {
	res := s.db.Model(&models.Announcement{}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at < ?", models.AnnouncementStatusPublished, now).
		Update("status", models.AnnouncementStatusExpired)
	return res.RowsAffected, res.Error
}
