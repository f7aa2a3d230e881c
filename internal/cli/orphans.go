package cli

import (
	"fmt"
	"io"

	"github.com/rentguard/rentguard/internal/db"
	"github.com/rentguard/rentguard/internal/models"
	"github.com/rentguard/rentguard/internal/services"
	"gorm.io/gorm"
)

// RunOrphansCommand lists payments left behind by partially deleted
// properties and removes them when purge is set.
func RunOrphansCommand(database *gorm.DB, purge bool, out io.Writer) error {
	repositories := db.NewRepositories(database)
	paymentService := services.NewPaymentService(repositories.Payments, repositories.Properties, services.DayOverflowClamp, nil)

	orphans, err := paymentService.FindOrphanPayments()
	if err != nil {
		return fmt.Errorf("list orphan payments: %w", err)
	}
	if len(orphans) == 0 {
		fmt.Fprintln(out, "No orphan payments.")
		return nil
	}

	for _, payment := range orphans {
		fmt.Fprintf(out, "%s\tproperty=%s\t%s\tdue=%s\tpaid=%t\n",
			payment.ID, payment.PropertyID, payment.MonthYear, payment.DueDate.Format(models.DateLayout), payment.IsPaid)
	}
	if !purge {
		fmt.Fprintf(out, "%d orphan payments found. Re-run with --purge to delete them.\n", len(orphans))
		return nil
	}

	deleted, err := paymentService.PurgeOrphanPayments()
	if err != nil {
		return fmt.Errorf("purge orphan payments: %w", err)
	}
	fmt.Fprintf(out, "Deleted %d orphan payments.\n", deleted)
	return nil
}
