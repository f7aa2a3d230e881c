package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rentguard/rentguard/internal/db"
	"github.com/rentguard/rentguard/internal/models"
	"github.com/rentguard/rentguard/internal/services"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func TestGenerateTemporaryPasswordMinimumLength(t *testing.T) {
	t.Parallel()

	password, err := generateTemporaryPassword(4)
	if err != nil {
		t.Fatalf("generateTemporaryPassword returned error: %v", err)
	}
	if len(password) != 8 {
		t.Fatalf("generateTemporaryPassword minimum len = %d, want 8", len(password))
	}
}

func TestGenerateTemporaryPasswordMeetsPolicy(t *testing.T) {
	t.Parallel()

	for range 20 {
		password, err := generateTemporaryPassword(12)
		if err != nil {
			t.Fatalf("generateTemporaryPassword returned error: %v", err)
		}
		if err := services.ValidatePasswordStrength(password); err != nil {
			t.Fatalf("password %q fails the policy: %v", password, err)
		}
		for _, char := range password {
			if !strings.ContainsRune(temporaryPasswordAlphabet, char) {
				t.Fatalf("password %q contains char %q outside alphabet", password, char)
			}
		}
	}
}

func TestRunResetPasswordCommandForcesChange(t *testing.T) {
	database := openCLITestDatabase(t)
	if err := RunCreateUserCommand(database, "Owner@Example.com", "StrongPass1", &bytes.Buffer{}); err != nil {
		t.Fatalf("create user: %v", err)
	}

	var out bytes.Buffer
	if err := RunResetPasswordCommand(database, "owner@example.com", &out); err != nil {
		t.Fatalf("reset password: %v", err)
	}

	temporaryPassword := ""
	for _, line := range strings.Split(out.String(), "\n") {
		if value, found := strings.CutPrefix(line, "Temporary password: "); found {
			temporaryPassword = value
		}
	}
	if temporaryPassword == "" {
		t.Fatalf("temporary password missing from output %q", out.String())
	}

	var user models.User
	if err := database.Where("email = ?", "owner@example.com").First(&user).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if !user.MustChangePassword {
		t.Fatal("expected must_change_password after reset")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(temporaryPassword)); err != nil {
		t.Fatalf("stored hash does not match temporary password: %v", err)
	}
}

func TestRunResetPasswordCommandUnknownUser(t *testing.T) {
	database := openCLITestDatabase(t)

	err := RunResetPasswordCommand(database, "missing@example.com", &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestRunCreateUserCommandRejectsDuplicatesAndWeakPasswords(t *testing.T) {
	database := openCLITestDatabase(t)
	if err := RunCreateUserCommand(database, "owner@example.com", "StrongPass1", &bytes.Buffer{}); err != nil {
		t.Fatalf("create user: %v", err)
	}

	if err := RunCreateUserCommand(database, "OWNER@example.com", "StrongPass1", &bytes.Buffer{}); err == nil {
		t.Fatal("expected duplicate email to fail")
	}
	if err := RunCreateUserCommand(database, "second@example.com", "weak", &bytes.Buffer{}); err == nil {
		t.Fatal("expected weak password to fail")
	}
}

func TestRunOrphansCommandListsThenPurges(t *testing.T) {
	database := openCLITestDatabase(t)
	orphan := models.Payment{
		PropertyID: uuid.New(),
		MonthYear:  "03-2024",
		DueDate:    time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC),
	}
	if err := database.Create(&orphan).Error; err != nil {
		t.Fatalf("create orphan payment: %v", err)
	}

	var listing bytes.Buffer
	if err := RunOrphansCommand(database, false, &listing); err != nil {
		t.Fatalf("list orphans: %v", err)
	}
	if !strings.Contains(listing.String(), orphan.ID.String()) {
		t.Fatalf("expected orphan %s in output %q", orphan.ID, listing.String())
	}

	var purge bytes.Buffer
	if err := RunOrphansCommand(database, true, &purge); err != nil {
		t.Fatalf("purge orphans: %v", err)
	}
	if !strings.Contains(purge.String(), "Deleted 1 orphan payments.") {
		t.Fatalf("unexpected purge output %q", purge.String())
	}

	var remaining int64
	if err := database.Model(&models.Payment{}).Count(&remaining).Error; err != nil {
		t.Fatalf("count payments: %v", err)
	}
	if remaining != 0 {
		t.Fatalf("expected no payments after purge, got %d", remaining)
	}
}

func TestRunOrphansCommandKeepsOwnedPayments(t *testing.T) {
	database := openCLITestDatabase(t)
	user := models.User{Email: "owner@example.com", PasswordHash: "x", CreatedAt: time.Now().UTC()}
	if err := database.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	property := models.Property{UserID: user.ID, PropertyName: "Flat", RentAmount: decimal.NewFromInt(100), PaymentDay: 1}
	if err := database.Create(&property).Error; err != nil {
		t.Fatalf("create property: %v", err)
	}
	payment := models.Payment{PropertyID: property.ID, MonthYear: "03-2024", DueDate: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)}
	if err := database.Create(&payment).Error; err != nil {
		t.Fatalf("create payment: %v", err)
	}

	var out bytes.Buffer
	if err := RunOrphansCommand(database, true, &out); err != nil {
		t.Fatalf("purge orphans: %v", err)
	}
	if !strings.Contains(out.String(), "No orphan payments.") {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func openCLITestDatabase(t *testing.T) *gorm.DB {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "rentguard-cli-test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return database
}

func TestRunSetPremiumCommandTogglesFlag(t *testing.T) {
	database := openCLITestDatabase(t)
	if err := RunCreateUserCommand(database, "owner@example.com", "StrongPass1", &bytes.Buffer{}); err != nil {
		t.Fatalf("create user: %v", err)
	}

	if err := RunSetPremiumCommand(database, "OWNER@example.com", true, &bytes.Buffer{}); err != nil {
		t.Fatalf("grant premium: %v", err)
	}
	var user models.User
	if err := database.Where("email = ?", "owner@example.com").First(&user).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if !user.IsPremium {
		t.Fatal("expected premium after grant")
	}

	if err := RunSetPremiumCommand(database, "owner@example.com", false, &bytes.Buffer{}); err != nil {
		t.Fatalf("revoke premium: %v", err)
	}
	if err := database.Where("email = ?", "owner@example.com").First(&user).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if user.IsPremium {
		t.Fatal("expected free plan after revoke")
	}

	if err := RunSetPremiumCommand(database, "missing@example.com", true, &bytes.Buffer{}); err == nil {
		t.Fatal("expected unknown user to fail")
	}
}

func TestReadSecretLineTrimsLineEnding(t *testing.T) {
	t.Parallel()

	line, err := readSecretLine(strings.NewReader("S3cretPass\r\nignored\n"))
	if err != nil {
		t.Fatalf("readSecretLine returned error: %v", err)
	}
	if string(line) != "S3cretPass" {
		t.Fatalf("readSecretLine = %q, want S3cretPass", line)
	}

	last, err := readSecretLine(strings.NewReader("NoNewline1"))
	if err != nil {
		t.Fatalf("readSecretLine at EOF returned error: %v", err)
	}
	if string(last) != "NoNewline1" {
		t.Fatalf("readSecretLine = %q, want NoNewline1", last)
	}
}
