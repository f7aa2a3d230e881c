package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/rentguard/rentguard/internal/db"
	"github.com/rentguard/rentguard/internal/security"
	"github.com/rentguard/rentguard/internal/services"
	"gorm.io/gorm"
)

const (
	temporaryPasswordAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"
	temporaryPasswordAttempts = 16
)

// RunResetPasswordCommand replaces the user's password with a generated one
// and forces a change on the next sign-in.
func RunResetPasswordCommand(database *gorm.DB, email string, out io.Writer) error {
	temporaryPassword, err := generateTemporaryPassword(12)
	if err != nil {
		return fmt.Errorf("generate temporary password: %w", err)
	}

	authService := services.NewAuthService(db.NewUserRepository(database))
	user, err := authService.SetPassword(email, temporaryPassword, true)
	switch {
	case errors.Is(err, services.ErrAuthCredentialsInvalid):
		return fmt.Errorf("invalid email address %q", email)
	case errors.Is(err, services.ErrUserNotFound):
		return fmt.Errorf("user %s not found", email)
	case err != nil:
		return fmt.Errorf("update user password: %w", err)
	}

	fmt.Fprintf(out, "Password reset for %s\n", user.Email)
	fmt.Fprintf(out, "Temporary password: %s\n", temporaryPassword)
	fmt.Fprintln(out, "User must change password on next login.")
	return nil
}

// generateTemporaryPassword draws until the result meets the password policy.
func generateTemporaryPassword(length int) (string, error) {
	if length < 8 {
		length = 8
	}

	for attempt := 0; attempt < temporaryPasswordAttempts; attempt++ {
		password, err := security.RandomString(length, temporaryPasswordAlphabet)
		if err != nil {
			return "", err
		}
		if services.ValidatePasswordStrength(password) == nil {
			return password, nil
		}
	}
	return "", errors.New("could not generate a password that meets the policy")
}
