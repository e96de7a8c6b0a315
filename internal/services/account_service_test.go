package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bcflats_backend/internal/apperr"
	"bcflats_backend/internal/config"
	"bcflats_backend/internal/jwtutil"
	"bcflats_backend/internal/models"
)

func newTestAccountService(t *testing.T) (*AccountService, *jwtutil.Manager) {
	t.Helper()
	db := newTestDB(t)
	jwt := jwtutil.NewManager(config.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 1})
	return NewAccountService(db, jwt), jwt
}

func TestRegister_TenantStartsPending(t *testing.T) {
	accounts, _ := newTestAccountService(t)

	account, err := accounts.Register(RegisterInput{
		FirstName: "Maria",
		LastName:  "Santos",
		Email:     "Maria@Example.com",
		Password:  "sup3rsecret",
	})
	require.NoError(t, err)

	assert.Equal(t, models.RoleTenant, account.Role)
	assert.Equal(t, models.AccountStatusPending, account.Status)
	assert.Equal(t, "maria@example.com", account.Email)
	assert.NotEqual(t, "sup3rsecret", account.PasswordHash)
	assert.True(t, account.CheckPassword("sup3rsecret"))
}

func TestRegister_StaffStartsActive(t *testing.T) {
	accounts, _ := newTestAccountService(t)

	account, err := accounts.Register(RegisterInput{
		FirstName: "Ana",
		LastName:  "Reyes",
		Email:     "ana@example.com",
		Password:  "sup3rsecret",
		Role:      models.RoleAccounting,
	})
	require.NoError(t, err)
	assert.Equal(t, models.AccountStatusActive, account.Status)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	accounts, _ := newTestAccountService(t)

	input := RegisterInput{
		FirstName: "Maria", LastName: "Santos",
		Email: "maria@example.com", Password: "sup3rsecret",
	}
	_, err := accounts.Register(input)
	require.NoError(t, err)

	_, err = accounts.Register(input)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestRegister_Validation(t *testing.T) {
	accounts, _ := newTestAccountService(t)

	tests := []struct {
		name  string
		input RegisterInput
	}{
		{"bad email", RegisterInput{FirstName: "A", LastName: "B", Email: "not-an-email", Password: "sup3rsecret"}},
		{"short password", RegisterInput{FirstName: "A", LastName: "B", Email: "a@example.com", Password: "short"}},
		{"missing name", RegisterInput{Email: "a@example.com", Password: "sup3rsecret"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := accounts.Register(tc.input)
			assert.True(t, apperr.IsKind(err, apperr.KindValidation))
		})
	}
}

func TestAuthenticate_IssuesValidToken(t *testing.T) {
	accounts, jwt := newTestAccountService(t)

	created, err := accounts.Register(RegisterInput{
		FirstName: "Maria", LastName: "Santos",
		Email: "maria@example.com", Password: "sup3rsecret",
	})
	require.NoError(t, err)

	account, token, err := accounts.Authenticate("maria@example.com", "sup3rsecret")
	require.NoError(t, err)
	assert.Equal(t, created.ID, account.ID)

	claims, err := jwt.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, claims.AccountID)
	assert.Equal(t, models.RoleTenant, claims.Role)
}

func TestAuthenticate_WrongCredentialsIndistinguishable(t *testing.T) {
	accounts, _ := newTestAccountService(t)

	_, err := accounts.Register(RegisterInput{
		FirstName: "Maria", LastName: "Santos",
		Email: "maria@example.com", Password: "sup3rsecret",
	})
	require.NoError(t, err)

	_, _, badPassword := accounts.Authenticate("maria@example.com", "wrong-password")
	_, _, badEmail := accounts.Authenticate("nobody@example.com", "sup3rsecret")

	assert.True(t, apperr.IsKind(badPassword, apperr.KindValidation))
	assert.True(t, apperr.IsKind(badEmail, apperr.KindValidation))
	assert.Equal(t, badPassword.Error(), badEmail.Error())
}

func TestAuthenticate_SuspendedAccount(t *testing.T) {
	accounts, _ := newTestAccountService(t)

	account, err := accounts.Register(RegisterInput{
		FirstName: "Maria", LastName: "Santos",
		Email: "maria@example.com", Password: "sup3rsecret",
	})
	require.NoError(t, err)
	_, err = accounts.UpdateStatus(account.ID, models.AccountStatusSuspended)
	require.NoError(t, err)

	_, _, err = accounts.Authenticate("maria@example.com", "sup3rsecret")
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidState))
}

func TestChangePassword(t *testing.T) {
	accounts, _ := newTestAccountService(t)

	account, err := accounts.Register(RegisterInput{
		FirstName: "Maria", LastName: "Santos",
		Email: "maria@example.com", Password: "sup3rsecret",
	})
	require.NoError(t, err)

	err = accounts.ChangePassword(account.ID, "wrong", "newpassword1")
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	require.NoError(t, accounts.ChangePassword(account.ID, "sup3rsecret", "newpassword1"))

	_, _, err = accounts.Authenticate("maria@example.com", "newpassword1")
	require.NoError(t, err)
}
