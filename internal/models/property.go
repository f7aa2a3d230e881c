package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	MinPaymentDay = 1
	MaxPaymentDay = 31
)

// Property is a rental unit owned by a single user.
type Property struct {
	ID                uuid.UUID       `gorm:"type:text;primaryKey" json:"id"`
	UserID            uuid.UUID       `gorm:"type:text;not null;index" json:"user_id"`
	PropertyName      string          `gorm:"not null" json:"property_name"`
	TenantName        string          `gorm:"not null" json:"tenant_name"`
	RentAmount        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"rent_amount"`
	PaymentDay        int             `gorm:"not null;default:1" json:"payment_day"`
	ContractStartDate *time.Time      `gorm:"type:date" json:"contract_start_date"`
	NextIncreaseDate  *time.Time      `gorm:"type:date" json:"next_increase_date"`
	TenantPhone       string          `json:"tenant_phone"`
	TenantEmail       string          `json:"tenant_email"`
	FullAddress       string          `json:"full_address"`
	CreatedAt         time.Time       `json:"created_at"`
}

func (property *Property) BeforeCreate(_ *gorm.DB) error {
	if property.ID == uuid.Nil {
		property.ID = uuid.New()
	}
	return nil
}
