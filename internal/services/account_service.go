package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"bcflats_backend/internal/apperr"
	"bcflats_backend/internal/jwtutil"
	"bcflats_backend/internal/models"
)

// RegisterInput carries the fields of a signup or staff creation.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Role      models.Role
}

// AccountService handles registration, authentication and account
// administration. Tokens are issued by the injected jwt manager.
type AccountService struct {
	db  *gorm.DB
	jwt *jwtutil.Manager
}

func NewAccountService(db *gorm.DB, jwt *jwtutil.Manager) *AccountService {
	return &AccountService{db: db, jwt: jwt}
}

// Register creates a new account. Tenant signups start Pending and are
// activated at check-in; staff accounts start Active.
func (s *AccountService) Register(input RegisterInput) (*models.Account, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperr.Validation("a valid email is required")
	}
	if len(input.Password) < 8 {
		return nil, apperr.Validation("password must be at least 8 characters")
	}
	if input.FirstName == "" || input.LastName == "" {
		return nil, apperr.Validation("first and last name are required")
	}

	role := input.Role
	if role == "" {
		role = models.RoleTenant
	}
	status := models.AccountStatusPending
	if role != models.RoleTenant {
		status = models.AccountStatusActive
	}

	account := models.Account{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     email,
		Role:      role,
		Status:    status,
	}
	if err := account.SetPassword(input.Password); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	if err := s.db.Create(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("email %s is already registered", email)
		}
		return nil, fmt.Errorf("create account: %w", err)
	}
	return &account, nil
}

// Authenticate verifies credentials and issues a token. A wrong email
// and a wrong password are indistinguishable to the caller.
func (s *AccountService) Authenticate(email, password string) (*models.Account, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var account models.Account
	err := s.db.Where("email = ?", email).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", apperr.Validation("invalid email or password")
		}
		return nil, "", fmt.Errorf("load account: %w", err)
	}
	if !account.CheckPassword(password) {
		return nil, "", apperr.Validation("invalid email or password")
	}
	if account.Status == models.AccountStatusSuspended {
		return nil, "", apperr.InvalidState("account is suspended")
	}

	token, err := s.jwt.Generate(&account)
	if err != nil {
		return nil, "", fmt.Errorf("sign token: %w", err)
	}
	return &account, token, nil
}

// GetAccountByID returns a single account.
func (s *AccountService) GetAccountByID(id uint) (*models.Account, error) {
	var account models.Account
	if err := s.db.First(&account, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("account %d not found", id)
		}
		return nil, err
	}
	return &account, nil
}

// ListAccounts returns accounts, optionally filtered by role.
func (s *AccountService) ListAccounts(role models.Role) ([]models.Account, error) {
	q := s.db.Model(&models.Account{})
	if role != "" {
		q = q.Where("role = ?", role)
	}
	var accounts []models.Account
	err := q.Order("created_at DESC").Find(&accounts).Error
	return accounts, err
}

// UpdateAccount modifies profile fields.
func (s *AccountService) UpdateAccount(id uint, firstName, lastName string) (*models.Account, error) {
	account, err := s.GetAccountByID(id)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if firstName != "" {
		updates["first_name"] = firstName
	}
	if lastName != "" {
		updates["last_name"] = lastName
	}
	if len(updates) == 0 {
		return account, nil
	}
	if err := s.db.Model(account).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update account: %w", err)
	}
	return account, nil
}

// UpdateStatus sets the account status directly. Tenant account status
// normally follows the tenant lifecycle; this is the manual override.
func (s *AccountService) UpdateStatus(id uint, status models.AccountStatus) (*models.Account, error) {
	switch status {
	case models.AccountStatusPending, models.AccountStatusActive, models.AccountStatusSuspended:
	default:
		return nil, apperr.Validation("unknown account status %q", status)
	}
	account, err := s.GetAccountByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(account).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	account.Status = status
	return account, nil
}

// ChangePassword verifies the current password before setting a new one.
func (s *AccountService) ChangePassword(id uint, current, next string) error {
	account, err := s.GetAccountByID(id)
	if err != nil {
		return err
	}
	if !account.CheckPassword(current) {
		return apperr.Validation("current password is incorrect")
	}
	if len(next) < 8 {
		return apperr.Validation("password must be at least 8 characters")
	}
	if err := account.SetPassword(next); err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.db.Model(account).Update("password_hash", account.PasswordHash).Error
}

// DeleteAccount removes an account that has no open tenancy.
func (s *AccountService) DeleteAccount(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var account models.Account
		if err := tx.First(&account, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("account %d not found", id)
			}
			return fmt.Errorf("load account: %w", err)
		}
		var open int64
		if err := tx.Model(&models.Tenant{}).
			Where("account_id = ? AND status IN ?", id,
				[]models.TenantStatus{models.TenantStatusPending, models.TenantStatusActive}).
			Count(&open).Error; err != nil {
			return err
		}
		if open > 0 {
			return apperr.Conflict("account %d has an open tenancy", id)
		}
		return tx.Delete(&account).Error
	})
}
