package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/rentguard/rentguard/internal/db"
	"github.com/rentguard/rentguard/internal/services"
	"gorm.io/gorm"
)

func RunCreateUserCommand(database *gorm.DB, email string, password string, out io.Writer) error {
	authService := services.NewAuthService(db.NewUserRepository(database))
	user, err := authService.Register(email, password)
	switch {
	case errors.Is(err, services.ErrAuthCredentialsInvalid):
		return errors.New("email and password are required")
	case errors.Is(err, services.ErrWeakPassword):
		return errors.New("password must be at least 8 characters and include upper case, lower case and a digit")
	case errors.Is(err, services.ErrEmailAlreadyExists):
		return fmt.Errorf("user %s already exists", email)
	case err != nil:
		return fmt.Errorf("create user: %w", err)
	}

	fmt.Fprintf(out, "Created user %s (%s)\n", user.Email, user.ID)
	return nil
}
