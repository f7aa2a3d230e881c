package api

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/rentguard/rentguard/internal/models"
	"github.com/rentguard/rentguard/internal/services"
	"github.com/shopspring/decimal"
)

type credentialsInput struct {
	Email      string `json:"email" form:"email"`
	Password   string `json:"password" form:"password"`
	RememberMe bool   `json:"remember_me" form:"remember_me"`
}

type changePasswordInput struct {
	CurrentPassword string `json:"current_password" form:"current_password"`
	NewPassword     string `json:"new_password" form:"new_password"`
}

// optionalDate tells an omitted field apart from an explicit null.
type optionalDate struct {
	Set   bool
	Value *time.Time
}

func (date *optionalDate) UnmarshalJSON(data []byte) error {
	date.Set = true
	date.Value = nil

	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil
	}
	parsed, err := time.Parse(models.DateLayout, strings.TrimSpace(*raw))
	if err != nil {
		return err
	}
	date.Value = &parsed
	return nil
}

func (date optionalDate) patch() *services.DatePatch {
	if !date.Set {
		return nil
	}
	return &services.DatePatch{Value: date.Value}
}

type propertyPayload struct {
	PropertyName      string          `json:"property_name"`
	TenantName        string          `json:"tenant_name"`
	RentAmount        decimal.Decimal `json:"rent_amount"`
	PaymentDay        int             `json:"payment_day"`
	ContractStartDate optionalDate    `json:"contract_start_date"`
	NextIncreaseDate  optionalDate    `json:"next_increase_date"`
	TenantPhone       string          `json:"tenant_phone"`
	TenantEmail       string          `json:"tenant_email"`
	FullAddress       string          `json:"full_address"`
}

func (payload propertyPayload) input() services.PropertyInput {
	return services.PropertyInput{
		PropertyName:      payload.PropertyName,
		TenantName:        payload.TenantName,
		RentAmount:        payload.RentAmount,
		PaymentDay:        payload.PaymentDay,
		ContractStartDate: payload.ContractStartDate.Value,
		NextIncreaseDate:  payload.NextIncreaseDate.Value,
		TenantPhone:       payload.TenantPhone,
		TenantEmail:       payload.TenantEmail,
		FullAddress:       payload.FullAddress,
	}
}

type propertyPatchPayload struct {
	PropertyName      *string          `json:"property_name"`
	TenantName        *string          `json:"tenant_name"`
	RentAmount        *decimal.Decimal `json:"rent_amount"`
	PaymentDay        *int             `json:"payment_day"`
	ContractStartDate optionalDate     `json:"contract_start_date"`
	NextIncreaseDate  optionalDate     `json:"next_increase_date"`
	TenantPhone       *string          `json:"tenant_phone"`
	TenantEmail       *string          `json:"tenant_email"`
	FullAddress       *string          `json:"full_address"`
}

func (payload propertyPatchPayload) patch() services.PropertyPatch {
	return services.PropertyPatch{
		PropertyName:      payload.PropertyName,
		TenantName:        payload.TenantName,
		RentAmount:        payload.RentAmount,
		PaymentDay:        payload.PaymentDay,
		ContractStartDate: payload.ContractStartDate.patch(),
		NextIncreaseDate:  payload.NextIncreaseDate.patch(),
		TenantPhone:       payload.TenantPhone,
		TenantEmail:       payload.TenantEmail,
		FullAddress:       payload.FullAddress,
	}
}

type paymentPatchPayload struct {
	IsPaid *bool `json:"is_paid"`
}
