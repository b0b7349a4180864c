package service

import (
	"testing"
	"time"

	"terravest/internal/models"
	"terravest/internal/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// The mailer points at an unreachable SMTP host in tests; sends fail and are
// logged, which is exactly the best-effort behavior the flows rely on.
func newAuthService(t *testing.T, db *gorm.DB) *AuthService {
	t.Helper()
	cfg := testConfig()
	cfg.Mail.Host = "127.0.0.1"
	cfg.Mail.Port = 1
	return NewAuthService(repository.NewUserRepository(db), NewMailService(cfg.Mail), cfg)
}

func TestRegisterCreatesUnverifiedAccount(t *testing.T) {
	db := testDB(t)
	svc := newAuthService(t, db)

	u, err := svc.Register("Ada Obi", "ada@example.com", "correct-horse-battery")
	require.NoError(t, err)
	require.False(t, u.HasVerifiedEmail())
	require.Len(t, u.VerificationCode, 6)
	require.NotNil(t, u.VerificationCodeExpiry)

	_, err = svc.Register("Ada Again", "ada@example.com", "another-password")
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginRequiresVerifiedEmail(t *testing.T) {
	db := testDB(t)
	svc := newAuthService(t, db)

	u, err := svc.Register("Ada Obi", "ada@example.com", "correct-horse-battery")
	require.NoError(t, err)

	_, _, err = svc.Login("ada@example.com", "correct-horse-battery")
	require.ErrorIs(t, err, ErrEmailNotVerified)

	require.ErrorIs(t, svc.VerifyEmail("ada@example.com", "000000"), ErrInvalidCode)
	require.NoError(t, svc.VerifyEmail("ada@example.com", u.VerificationCode))

	user, tokens, err := svc.Login("ada@example.com", "correct-horse-battery")
	require.NoError(t, err)
	require.NotEmpty(t, tokens.AccessToken)
	require.NotEmpty(t, tokens.RefreshToken)
	require.True(t, user.HasVerifiedEmail())

	_, _, err = svc.Login("ada@example.com", "wrong-password")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyEmailRejectsExpiredCode(t *testing.T) {
	db := testDB(t)
	svc := newAuthService(t, db)

	u, err := svc.Register("Ada Obi", "ada@example.com", "correct-horse-battery")
	require.NoError(t, err)

	past := time.Now().Add(-time.Minute)
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", u.ID).
		Update("verification_code_expiry", past).Error)

	require.ErrorIs(t, svc.VerifyEmail("ada@example.com", u.VerificationCode), ErrInvalidCode)
}

func TestPasswordResetFlow(t *testing.T) {
	db := testDB(t)
	svc := newAuthService(t, db)

	u, err := svc.Register("Ada Obi", "ada@example.com", "correct-horse-battery")
	require.NoError(t, err)
	require.NoError(t, svc.VerifyEmail("ada@example.com", u.VerificationCode))

	// Unknown email is not an error: no account enumeration.
	require.NoError(t, svc.RequestPasswordReset("nobody@example.com"))

	require.NoError(t, svc.RequestPasswordReset("ada@example.com"))
	var stored models.User
	require.NoError(t, db.First(&stored, u.ID).Error)
	require.Len(t, stored.PasswordResetCode, 6)

	// A client can check the code first; the check does not consume it.
	require.ErrorIs(t, svc.VerifyResetCode("ada@example.com", "999999"), ErrInvalidCode)
	require.ErrorIs(t, svc.VerifyResetCode("nobody@example.com", stored.PasswordResetCode), ErrInvalidCode)
	require.NoError(t, svc.VerifyResetCode("ada@example.com", stored.PasswordResetCode))
	require.NoError(t, svc.VerifyResetCode("ada@example.com", stored.PasswordResetCode))

	require.ErrorIs(t, svc.ResetPassword("ada@example.com", "999999", "new-password-1"), ErrInvalidCode)
	require.NoError(t, svc.ResetPassword("ada@example.com", stored.PasswordResetCode, "new-password-1"))

	_, _, err = svc.Login("ada@example.com", "correct-horse-battery")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Login("ada@example.com", "new-password-1")
	require.NoError(t, err)

	// Codes are single-use.
	require.ErrorIs(t, svc.ResetPassword("ada@example.com", stored.PasswordResetCode, "new-password-2"), ErrInvalidCode)
}

func TestPinLifecycle(t *testing.T) {
	db := testDB(t)
	svc := newAuthService(t, db)

	u, err := svc.Register("Ada Obi", "ada@example.com", "correct-horse-battery")
	require.NoError(t, err)

	require.Error(t, svc.SetPin(u.ID, "12ab"))
	require.Error(t, svc.SetPin(u.ID, "12345"))
	require.NoError(t, svc.SetPin(u.ID, "1234"))
	require.Error(t, svc.SetPin(u.ID, "5678")) // already set; must go through UpdatePin

	require.ErrorIs(t, svc.UpdatePin(u.ID, "0000", "5678"), ErrInvalidPin)
	require.NoError(t, svc.UpdatePin(u.ID, "1234", "5678"))

	require.NoError(t, svc.RequestPinReset(u.ID))
	var stored models.User
	require.NoError(t, db.First(&stored, u.ID).Error)
	require.Len(t, stored.PinResetCode, 6)

	require.ErrorIs(t, svc.ResetPin(u.ID, "000000", "4321"), ErrInvalidCode)
	require.NoError(t, svc.ResetPin(u.ID, stored.PinResetCode, "4321"))
	require.NoError(t, svc.UpdatePin(u.ID, "4321", "1111"))
}

func TestRefreshIssuesNewPair(t *testing.T) {
	db := testDB(t)
	svc := newAuthService(t, db)

	u, err := svc.Register("Ada Obi", "ada@example.com", "correct-horse-battery")
	require.NoError(t, err)
	require.NoError(t, svc.VerifyEmail("ada@example.com", u.VerificationCode))

	_, tokens, err := svc.Login("ada@example.com", "correct-horse-battery")
	require.NoError(t, err)

	pair, err := svc.Refresh(tokens.RefreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)

	_, err = svc.Refresh(tokens.AccessToken) // wrong token type / key
	require.Error(t, err)
	_, err = svc.Refresh("garbage")
	require.Error(t, err)
}
