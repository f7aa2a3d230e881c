package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MonthYearLayout formats the ledger key of one calendar month, e.g. "03-2024".
const MonthYearLayout = "01-2006"

// DateLayout is the ISO calendar date used for due dates.
const DateLayout = "2006-01-02"

// Payment is one expected rent installment. A property's ledger holds at most
// one payment per month_year.
type Payment struct {
	ID         uuid.UUID `gorm:"type:text;primaryKey" json:"id"`
	PropertyID uuid.UUID `gorm:"type:text;not null;uniqueIndex:uidx_property_month" json:"property_id"`
	MonthYear  string    `gorm:"not null;uniqueIndex:uidx_property_month" json:"month_year"`
	DueDate    time.Time `gorm:"type:date;not null" json:"due_date"`
	IsPaid     bool      `gorm:"not null;default:false" json:"is_paid"`
	CreatedAt  time.Time `json:"created_at"`
}

func (payment *Payment) BeforeCreate(_ *gorm.DB) error {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	return nil
}

func MonthYearKey(day time.Time) string {
	return day.Format(MonthYearLayout)
}
