package services

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rentguard/rentguard/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailAlreadyExists  = errors.New("email already exists")
	ErrUserNotFound        = errors.New("user not found")
	ErrUserCreateFailed    = errors.New("create user failed")
	ErrPasswordHashFailed  = errors.New("hash password failed")
	ErrPasswordResetFailed = errors.New("reset password failed")

	ErrInvalidCurrentPassword = errors.New("invalid current password")
	ErrPasswordUnchanged      = errors.New("new password must differ")
)

type AuthUserRepository interface {
	ExistsByNormalizedEmail(email string) (bool, error)
	FindByNormalizedEmail(email string) (models.User, error)
	FindByID(userID uuid.UUID) (models.User, error)
	Create(user *models.User) error
	UpdatePassword(userID uuid.UUID, passwordHash string, mustChangePassword bool) error
}

type AuthService struct {
	users AuthUserRepository
}

func NewAuthService(users AuthUserRepository) *AuthService {
	return &AuthService{users: users}
}

func (service *AuthService) Register(emailRaw string, passwordRaw string) (models.User, error) {
	email, password, err := NormalizeCredentialsInput(emailRaw, passwordRaw)
	if err != nil {
		return models.User{}, err
	}
	if err := ValidatePasswordStrength(password); err != nil {
		return models.User{}, err
	}

	exists, err := service.users.ExistsByNormalizedEmail(email)
	if err != nil {
		return models.User{}, ErrUserCreateFailed
	}
	if exists {
		return models.User{}, ErrEmailAlreadyExists
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, ErrPasswordHashFailed
	}

	user := models.User{
		Email:        email,
		PasswordHash: string(passwordHash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := service.users.Create(&user); err != nil {
		// A concurrent registration may have won the unique index.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.User{}, ErrEmailAlreadyExists
		}
		if exists, lookupErr := service.users.ExistsByNormalizedEmail(email); lookupErr == nil && exists {
			return models.User{}, ErrEmailAlreadyExists
		}
		return models.User{}, ErrUserCreateFailed
	}
	return user, nil
}

// SignIn never tells an unknown email apart from a wrong password.
func (service *AuthService) SignIn(emailRaw string, passwordRaw string) (models.User, error) {
	email, password, err := NormalizeCredentialsInput(emailRaw, passwordRaw)
	if err != nil {
		return models.User{}, ErrAuthCredentialsInvalid
	}

	user, err := service.users.FindByNormalizedEmail(email)
	if err != nil {
		return models.User{}, ErrAuthCredentialsInvalid
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, ErrAuthCredentialsInvalid
	}
	return user, nil
}

func (service *AuthService) FindByID(userID uuid.UUID) (models.User, error) {
	user, err := service.users.FindByID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// SetPassword replaces the password hash. mustChange forces a change on the
// next sign-in, which is how operator resets hand out temporary passwords.
func (service *AuthService) SetPassword(emailRaw string, password string, mustChange bool) (models.User, error) {
	email := NormalizeAuthEmail(emailRaw)
	if email == "" {
		return models.User{}, ErrAuthCredentialsInvalid
	}
	user, err := service.users.FindByNormalizedEmail(email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, ErrPasswordResetFailed
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, ErrPasswordHashFailed
	}
	if err := service.users.UpdatePassword(user.ID, string(passwordHash), mustChange); err != nil {
		return models.User{}, ErrPasswordResetFailed
	}
	user.PasswordHash = string(passwordHash)
	user.MustChangePassword = mustChange
	return user, nil
}

// ChangePassword is the user-driven counterpart of SetPassword. It clears the
// forced-change flag.
func (service *AuthService) ChangePassword(userID uuid.UUID, currentPassword string, newPassword string) error {
	user, err := service.FindByID(userID)
	if err != nil {
		return err
	}

	currentPassword = strings.TrimSpace(currentPassword)
	newPassword = strings.TrimSpace(newPassword)
	if currentPassword == "" || newPassword == "" {
		return ErrAuthCredentialsInvalid
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidCurrentPassword
	}
	if currentPassword == newPassword {
		return ErrPasswordUnchanged
	}
	if err := ValidatePasswordStrength(newPassword); err != nil {
		return err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return ErrPasswordHashFailed
	}
	if err := service.users.UpdatePassword(user.ID, string(passwordHash), false); err != nil {
		return ErrPasswordResetFailed
	}
	return nil
}
