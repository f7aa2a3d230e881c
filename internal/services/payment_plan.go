package services

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rentguard/rentguard/internal/models"
)

const PaymentPlanLength = 12

var ErrInvalidDayOverflowPolicy = errors.New("invalid day overflow policy")

// DayOverflowPolicy decides what happens when the payment day does not exist
// in a target month (day 31 in April, day 30 in February).
type DayOverflowPolicy string

const (
	// DayOverflowClamp resolves the due date to the month's last day.
	DayOverflowClamp DayOverflowPolicy = "clamp"
	// DayOverflowRoll lets calendar normalization carry the excess days into
	// the next month. Schedules generated this way can hold two entries for one
	// month, which the ledger's unique index rejects.
	DayOverflowRoll DayOverflowPolicy = "roll"
)

func ParseDayOverflowPolicy(raw string) (DayOverflowPolicy, error) {
	switch DayOverflowPolicy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", DayOverflowClamp:
		return DayOverflowClamp, nil
	case DayOverflowRoll:
		return DayOverflowRoll, nil
	default:
		return "", ErrInvalidDayOverflowPolicy
	}
}

type PaymentDraft struct {
	PropertyID uuid.UUID
	MonthYear  string
	DueDate    time.Time
	IsPaid     bool
}

func (draft PaymentDraft) DueDateString() string {
	return draft.DueDate.Format(models.DateLayout)
}

func (draft PaymentDraft) Payment() models.Payment {
	return models.Payment{
		PropertyID: draft.PropertyID,
		MonthYear:  draft.MonthYear,
		DueDate:    draft.DueDate,
		IsPaid:     draft.IsPaid,
	}
}

// GeneratePaymentPlan expands a billing day into twelve monthly installments,
// starting with the anchor's month.
func GeneratePaymentPlan(propertyID uuid.UUID, startDay int, anchor time.Time, policy DayOverflowPolicy) []PaymentDraft {
	drafts := make([]PaymentDraft, 0, PaymentPlanLength)
	year, month := anchor.Year(), anchor.Month()
	for offset := 0; offset < PaymentPlanLength; offset++ {
		dueDate := planDueDate(year, month+time.Month(offset), startDay, policy)
		drafts = append(drafts, PaymentDraft{
			PropertyID: propertyID,
			MonthYear:  models.MonthYearKey(dueDate),
			DueDate:    dueDate,
			IsPaid:     false,
		})
	}
	return drafts
}

func planDueDate(year int, month time.Month, day int, policy DayOverflowPolicy) time.Time {
	if policy == DayOverflowRoll {
		return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	}

	firstOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	lastDay := daysInMonth(firstOfMonth.Year(), firstOfMonth.Month())
	if day > lastDay {
		day = lastDay
	}
	if day < 1 {
		day = 1
	}
	return time.Date(firstOfMonth.Year(), firstOfMonth.Month(), day, 0, 0, 0, 0, time.UTC)
}

func draftsToPayments(drafts []PaymentDraft) []models.Payment {
	payments := make([]models.Payment, 0, len(drafts))
	for _, draft := range drafts {
		payments = append(payments, draft.Payment())
	}
	return payments
}
