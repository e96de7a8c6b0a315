package handlers

import (
	"time"

	"github.com/shopspring/decimal"

	"bcflats_backend/internal/models"
)

// Request payloads shared by the JSON handlers. Amount fields decode
// from either JSON numbers or strings.

type registerRequest struct {
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Email     string      `json:"email"`
	Password  string      `json:"password"`
	Role      models.Role `json:"role,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type accountStatusRequest struct {
	Status models.AccountStatus `json:"status"`
}

type tenantRequest struct {
	AccountID           uint                   `json:"account_id"`
	RoomID              uint                   `json:"room_id"`
	BedNumber           int                    `json:"bed_number"`
	LeaseStart          *time.Time             `json:"lease_start,omitempty"`
	LeaseEnd            *time.Time             `json:"lease_end,omitempty"`
	MonthlyRent         *decimal.Decimal       `json:"monthly_rent,omitempty"`
	Utilities           *decimal.Decimal       `json:"utilities,omitempty"`
	Deposit             *decimal.Decimal       `json:"deposit,omitempty"`
	EmergencyContact    map[string]interface{} `json:"emergency_contact,omitempty"`
	SpecialRequirements string                 `json:"special_requirements,omitempty"`
	Notes               string                 `json:"notes,omitempty"`
}

type tenantStatusRequest struct {
	Status models.TenantStatus `json:"status"`
}

type roomRequest struct {
	RoomNumber  string           `json:"room_number"`
	Floor       *int             `json:"floor,omitempty"`
	Building    string           `json:"building,omitempty"`
	RoomType    models.RoomType  `json:"room_type,omitempty"`
	MonthlyRent *decimal.Decimal `json:"monthly_rent,omitempty"`
	Utilities   *decimal.Decimal `json:"utilities,omitempty"`
	TotalBeds   *int             `json:"total_beds,omitempty"`
	Description string           `json:"description,omitempty"`
}

type maintenanceModeRequest struct {
	UnderRepair bool `json:"under_repair"`
}

type paymentRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Method      string          `json:"method"`
	Reference   string          `json:"reference,omitempty"`
	Description string          `json:"description,omitempty"`
}

type archiveRequest struct {
	Reason string `json:"reason,omitempty"`
}

type announcementRequest struct {
	Title       string                      `json:"title"`
	Message     string                      `json:"message"`
	TargetRoles []models.Role               `json:"target_roles"`
	Priority    models.AnnouncementPriority `json:"priority,omitempty"`
	ScheduledAt *time.Time                  `json:"scheduled_at,omitempty"`
	ExpiresAt   *time.Time                  `json:"expires_at,omitempty"`
}

type maintenanceRequest struct {
	Title       string                     `json:"title"`
	Description string                     `json:"description,omitempty"`
	Priority    models.MaintenancePriority `json:"priority,omitempty"`
}

type maintenanceStatusRequest struct {
	Status models.MaintenanceStatus `json:"status"`
}

// listResponse wraps paginated collections.
type listResponse struct {
	Items interface{} `json:"items"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
}
