package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/rentguard/rentguard/internal/db"
	"github.com/rentguard/rentguard/internal/services"
	"gorm.io/gorm"
)

// RunSetPremiumCommand grants or revokes the premium flag, which lifts the
// free-tier property limit.
func RunSetPremiumCommand(database *gorm.DB, email string, premium bool, out io.Writer) error {
	normalizedEmail := services.NormalizeAuthEmail(email)
	if normalizedEmail == "" {
		return fmt.Errorf("invalid email address %q", email)
	}

	users := db.NewUserRepository(database)
	user, err := users.FindByNormalizedEmail(normalizedEmail)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("user %s not found", normalizedEmail)
	}
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}

	if err := users.UpdatePremium(user.ID, premium); err != nil {
		return fmt.Errorf("update premium flag: %w", err)
	}

	if premium {
		fmt.Fprintf(out, "%s is now premium\n", user.Email)
	} else {
		fmt.Fprintf(out, "%s is back on the free plan\n", user.Email)
	}
	return nil
}
