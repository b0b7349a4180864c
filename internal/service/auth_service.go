package service

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"terravest/config"
	"terravest/internal/auth"
	"terravest/internal/domain"
	"terravest/internal/models"
	"terravest/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrInvalidCode        = errors.New("invalid or expired code")
	ErrAlreadyVerified    = errors.New("email already verified")
)

const codeTTL = 30 * time.Minute

// AuthService owns registration, login, the email verification loop,
// password recovery and the transaction PIN lifecycle.
type AuthService struct {
	users *repository.UserRepository
	mail  *MailService
	cfg   *config.Config
}

func NewAuthService(users *repository.UserRepository, mail *MailService, cfg *config.Config) *AuthService {
	return &AuthService{users: users, mail: mail, cfg: cfg}
}

// TokenPair is what a successful login or refresh returns.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Register creates an unverified MEMBER account and emails a verification
// code. The mail send is best effort; the code can be re-requested.
func (s *AuthService) Register(name, email, password string) (*models.User, error) {
	if _, err := s.users.GetByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	code := sixDigitCode()
	expiry := time.Now().Add(codeTTL)
	u := &models.User{
		Name:                   name,
		Email:                  email,
		PasswordHash:           string(hash),
		Role:                   domain.RoleMember,
		VerificationCode:       code,
		VerificationCodeExpiry: &expiry,
	}
	if err := s.users.Create(u); err != nil {
		return nil, err
	}
	if err := s.mail.SendVerificationCode(u.Email, u.Name, code); err != nil {
		log.Printf("[Auth] verification mail failed user=%d: %v", u.ID, err)
	}
	log.Printf("[Auth] registered user=%d email=%s", u.ID, u.Email)
	return u, nil
}

// VerifyEmail consumes a verification code and marks the account verified.
func (s *AuthService) VerifyEmail(email, code string) error {
	u, err := s.users.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidCode
		}
		return err
	}
	if u.HasVerifiedEmail() {
		return ErrAlreadyVerified
	}
	if !codeMatches(u.VerificationCode, u.VerificationCodeExpiry, code) {
		return ErrInvalidCode
	}
	now := time.Now()
	u.EmailVerifiedAt = &now
	u.VerificationCode = ""
	u.VerificationCodeExpiry = nil
	return s.users.Update(u)
}

// ResendVerificationCode rotates the code and re-sends it. Unknown emails
// return nil so the endpoint cannot be used to enumerate accounts.
func (s *AuthService) ResendVerificationCode(email string) error {
	u, err := s.users.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if u.HasVerifiedEmail() {
		return ErrAlreadyVerified
	}
	code := sixDigitCode()
	expiry := time.Now().Add(codeTTL)
	u.VerificationCode = code
	u.VerificationCodeExpiry = &expiry
	if err := s.users.Update(u); err != nil {
		return err
	}
	if err := s.mail.SendVerificationCode(u.Email, u.Name, code); err != nil {
		log.Printf("[Auth] verification mail failed user=%d: %v", u.ID, err)
	}
	return nil
}

// Login checks credentials and issues a token pair. Unverified accounts
// are rejected with ErrEmailNotVerified so the handler can prompt for the
// verification flow instead of a generic 401.
func (s *AuthService) Login(email, password string) (*models.User, *TokenPair, error) {
	u, err := s.users.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}
	if !u.HasVerifiedEmail() {
		return nil, nil, ErrEmailNotVerified
	}
	pair, err := s.issueTokens(u)
	if err != nil {
		return nil, nil, err
	}
	return u, pair, nil
}

// Refresh trades a valid refresh token for a fresh pair.
func (s *AuthService) Refresh(refreshToken string) (*TokenPair, error) {
	userID, err := auth.ParseRefreshToken(&s.cfg.JWT, refreshToken)
	if err != nil {
		return nil, err
	}
	u, err := s.users.GetByID(userID)
	if err != nil {
		return nil, auth.ErrInvalidToken
	}
	return s.issueTokens(u)
}

func (s *AuthService) issueTokens(u *models.User) (*TokenPair, error) {
	access, err := auth.GenerateAccessToken(&s.cfg.JWT, u.ID, u.Email, u.Role)
	if err != nil {
		return nil, err
	}
	refresh, err := auth.GenerateRefreshToken(&s.cfg.JWT, u.ID)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// ChangePassword rotates the password for an authenticated user.
func (s *AuthService) ChangePassword(userID uint, current, next string) error {
	u, err := s.users.GetByID(userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)); err != nil {
		return ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return s.users.Update(u)
}

// RequestPasswordReset emails a reset code. Unknown emails return nil.
func (s *AuthService) RequestPasswordReset(email string) error {
	u, err := s.users.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	code := sixDigitCode()
	expiry := time.Now().Add(codeTTL)
	u.PasswordResetCode = code
	u.PasswordResetCodeExpiry = &expiry
	if err := s.users.Update(u); err != nil {
		return err
	}
	if err := s.mail.SendPasswordResetCode(u.Email, u.Name, code); err != nil {
		log.Printf("[Auth] reset mail failed user=%d: %v", u.ID, err)
	}
	return nil
}

// VerifyResetCode checks a reset code without consuming it, so a client can
// validate the code step before collecting the new password.
func (s *AuthService) VerifyResetCode(email, code string) error {
	u, err := s.users.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidCode
		}
		return err
	}
	if !codeMatches(u.PasswordResetCode, u.PasswordResetCodeExpiry, code) {
		return ErrInvalidCode
	}
	return nil
}

// ResetPassword consumes a reset code and sets the new password.
func (s *AuthService) ResetPassword(email, code, newPassword string) error {
	u, err := s.users.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidCode
		}
		return err
	}
	if !codeMatches(u.PasswordResetCode, u.PasswordResetCodeExpiry, code) {
		return ErrInvalidCode
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	u.PasswordResetCode = ""
	u.PasswordResetCodeExpiry = nil
	return s.users.Update(u)
}

// SetPin sets the transaction PIN for the first time. Updating an existing
// PIN goes through UpdatePin, which requires the current one.
func (s *AuthService) SetPin(userID uint, pin string) error {
	u, err := s.users.GetByID(userID)
	if err != nil {
		return err
	}
	if u.TransactionPinHash != "" {
		return errors.New("PIN already set")
	}
	return s.storePin(u, pin)
}

// UpdatePin rotates the PIN after checking the current one.
func (s *AuthService) UpdatePin(userID uint, currentPin, newPin string) error {
	u, err := s.users.GetByID(userID)
	if err != nil {
		return err
	}
	if u.TransactionPinHash == "" {
		return ErrPinNotSet
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.TransactionPinHash), []byte(currentPin)); err != nil {
		return ErrInvalidPin
	}
	return s.storePin(u, newPin)
}

// RequestPinReset emails a PIN reset code to the account's address.
func (s *AuthService) RequestPinReset(userID uint) error {
	u, err := s.users.GetByID(userID)
	if err != nil {
		return err
	}
	code := sixDigitCode()
	expiry := time.Now().Add(codeTTL)
	u.PinResetCode = code
	u.PinResetCodeExpiry = &expiry
	if err := s.users.Update(u); err != nil {
		return err
	}
	if err := s.mail.SendPinResetCode(u.Email, u.Name, code); err != nil {
		log.Printf("[Auth] PIN reset mail failed user=%d: %v", u.ID, err)
	}
	return nil
}

// ResetPin consumes a PIN reset code and sets the new PIN.
func (s *AuthService) ResetPin(userID uint, code, newPin string) error {
	u, err := s.users.GetByID(userID)
	if err != nil {
		return err
	}
	if !codeMatches(u.PinResetCode, u.PinResetCodeExpiry, code) {
		return ErrInvalidCode
	}
	u.PinResetCode = ""
	u.PinResetCodeExpiry = nil
	return s.storePin(u, newPin)
}

func (s *AuthService) storePin(u *models.User, pin string) error {
	if len(pin) != 4 {
		return errors.New("PIN must be 4 digits")
	}
	for _, c := range pin {
		if c < '0' || c > '9' {
			return errors.New("PIN must be 4 digits")
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.TransactionPinHash = string(hash)
	return s.users.Update(u)
}

func codeMatches(stored string, expiry *time.Time, candidate string) bool {
	if stored == "" || candidate == "" || stored != candidate {
		return false
	}
	return expiry != nil && time.Now().Before(*expiry)
}

func sixDigitCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		// crypto/rand failing means the process has bigger problems.
		panic(err)
	}
	return fmt.Sprintf("%06d", n.Int64())
}
