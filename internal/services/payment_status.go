package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentguard/rentguard/internal/models"
)

type PaymentStatusCode string

const (
	PaymentStatusPaid    PaymentStatusCode = "paid"
	PaymentStatusOverdue PaymentStatusCode = "overdue"
	PaymentStatusPending PaymentStatusCode = "pending"
)

const (
	ColorPaid    = "green"
	ColorOverdue = "red"
	ColorPending = "amber"
)

type PaymentStatus struct {
	Label PaymentStatusCode
	Color string
}

// PaymentStatusFor classifies the current-month payment state of a property.
// It reads nothing but its arguments, so the same inputs always give the same
// status.
func PaymentStatusFor(propertyID uuid.UUID, properties []models.Property, payments []models.Payment, today time.Time) PaymentStatus {
	monthKey := models.MonthYearKey(today)
	for _, payment := range payments {
		if payment.PropertyID != propertyID || payment.MonthYear != monthKey {
			continue
		}
		// First match wins; a well-formed ledger has only one.
		if payment.IsPaid {
			return PaymentStatus{Label: PaymentStatusPaid, Color: ColorPaid}
		}
		break
	}

	paymentDay := models.MinPaymentDay
	for _, property := range properties {
		if property.ID == propertyID {
			paymentDay = property.PaymentDay
			break
		}
	}

	if today.Day() > paymentDay {
		return PaymentStatus{Label: PaymentStatusOverdue, Color: ColorOverdue}
	}
	return PaymentStatus{Label: PaymentStatusPending, Color: ColorPending}
}

// CurrentMonthPayment returns the ledger row for today's month, if any.
func CurrentMonthPayment(propertyID uuid.UUID, payments []models.Payment, today time.Time) (models.Payment, bool) {
	monthKey := models.MonthYearKey(today)
	for _, payment := range payments {
		if payment.PropertyID == propertyID && payment.MonthYear == monthKey {
			return payment, true
		}
	}
	return models.Payment{}, false
}
