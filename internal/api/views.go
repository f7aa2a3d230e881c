package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentguard/rentguard/internal/models"
	"github.com/rentguard/rentguard/internal/services"
	"github.com/shopspring/decimal"
)

type userView struct {
	ID                 uuid.UUID `json:"user_id"`
	Email              string    `json:"email"`
	IsPremium          bool      `json:"is_premium"`
	MustChangePassword bool      `json:"must_change_password"`
}

type propertyView struct {
	ID                uuid.UUID       `json:"id"`
	PropertyName      string          `json:"property_name"`
	TenantName        string          `json:"tenant_name"`
	RentAmount        decimal.Decimal `json:"rent_amount"`
	PaymentDay        int             `json:"payment_day"`
	ContractStartDate *string         `json:"contract_start_date"`
	NextIncreaseDate  *string         `json:"next_increase_date"`
	TenantPhone       string          `json:"tenant_phone"`
	TenantEmail       string          `json:"tenant_email"`
	FullAddress       string          `json:"full_address"`
	CreatedAt         time.Time       `json:"created_at"`
}

type paymentView struct {
	ID         uuid.UUID `json:"id"`
	PropertyID uuid.UUID `json:"property_id"`
	MonthYear  string    `json:"month_year"`
	DueDate    string    `json:"due_date"`
	IsPaid     bool      `json:"is_paid"`
}

type statusView struct {
	Code  services.PaymentStatusCode `json:"code"`
	Label string                     `json:"label"`
	Color string                     `json:"color"`
}

type rentAdjustmentView struct {
	Eligible       bool            `json:"eligible"`
	MonthsElapsed  int             `json:"months_elapsed"`
	Cycles         int             `json:"cycles"`
	Percentage     decimal.Decimal `json:"percentage"`
	IncreaseAmount decimal.Decimal `json:"increase_amount"`
	CurrentRent    decimal.Decimal `json:"current_rent"`
	NewRent        decimal.Decimal `json:"new_rent"`
}

type dashboardRowView struct {
	Property       propertyView        `json:"property"`
	Status         statusView          `json:"status"`
	CurrentPayment *paymentView        `json:"current_payment"`
	RentAdjustment *rentAdjustmentView `json:"rent_adjustment"`
	LedgerMissing  bool                `json:"ledger_missing"`
}

type chartBarView struct {
	Label string          `json:"label"`
	Value decimal.Decimal `json:"value"`
}

type dashboardView struct {
	Today              string             `json:"today"`
	PropertyCount      int                `json:"property_count"`
	MonthlyIncome      decimal.Decimal    `json:"monthly_income"`
	CollectedThisMonth decimal.Decimal    `json:"collected_this_month"`
	FreeTierRemaining  *int               `json:"free_tier_remaining"`
	Rows               []dashboardRowView `json:"rows"`
	Chart              []chartBarView     `json:"chart"`
}

func newUserView(user *models.User) userView {
	return userView{
		ID:                 user.ID,
		Email:              user.Email,
		IsPremium:          user.IsPremium,
		MustChangePassword: user.MustChangePassword,
	}
}

func newPropertyView(property models.Property) propertyView {
	return propertyView{
		ID:                property.ID,
		PropertyName:      property.PropertyName,
		TenantName:        property.TenantName,
		RentAmount:        property.RentAmount,
		PaymentDay:        property.PaymentDay,
		ContractStartDate: formatOptionalDate(property.ContractStartDate),
		NextIncreaseDate:  formatOptionalDate(property.NextIncreaseDate),
		TenantPhone:       property.TenantPhone,
		TenantEmail:       property.TenantEmail,
		FullAddress:       property.FullAddress,
		CreatedAt:         property.CreatedAt,
	}
}

func newPropertyViews(properties []models.Property) []propertyView {
	views := make([]propertyView, 0, len(properties))
	for _, property := range properties {
		views = append(views, newPropertyView(property))
	}
	return views
}

func newPaymentView(payment models.Payment) paymentView {
	return paymentView{
		ID:         payment.ID,
		PropertyID: payment.PropertyID,
		MonthYear:  payment.MonthYear,
		DueDate:    payment.DueDate.Format(models.DateLayout),
		IsPaid:     payment.IsPaid,
	}
}

func newPaymentViews(payments []models.Payment) []paymentView {
	views := make([]paymentView, 0, len(payments))
	for _, payment := range payments {
		views = append(views, newPaymentView(payment))
	}
	return views
}

func newRentAdjustmentView(adjustment services.RentAdjustment) rentAdjustmentView {
	return rentAdjustmentView{
		Eligible:       adjustment.Eligible,
		MonthsElapsed:  adjustment.MonthsElapsed,
		Cycles:         adjustment.Cycles,
		Percentage:     adjustment.Percentage.Round(2),
		IncreaseAmount: adjustment.IncreaseAmount,
		CurrentRent:    adjustment.CurrentRent,
		NewRent:        adjustment.NewRent,
	}
}

func (handler *Handler) newStatusView(language string, status services.PaymentStatus) statusView {
	return statusView{
		Code:  status.Label,
		Label: handler.i18n.Translate(language, "status."+string(status.Label)),
		Color: status.Color,
	}
}

func (handler *Handler) newDashboardView(language string, dashboard services.Dashboard) dashboardView {
	view := dashboardView{
		Today:              dashboard.Today.Format(models.DateLayout),
		PropertyCount:      dashboard.PropertyCount,
		MonthlyIncome:      dashboard.MonthlyIncome,
		CollectedThisMonth: dashboard.CollectedThisMonth,
		FreeTierRemaining:  dashboard.FreeTierRemaining,
		Rows:               make([]dashboardRowView, 0, len(dashboard.Rows)),
		Chart:              make([]chartBarView, 0, len(dashboard.Chart)),
	}
	for _, row := range dashboard.Rows {
		rowView := dashboardRowView{
			Property:      newPropertyView(row.Property),
			Status:        handler.newStatusView(language, row.Status),
			LedgerMissing: row.LedgerMissing,
		}
		if row.CurrentPayment != nil {
			payment := newPaymentView(*row.CurrentPayment)
			rowView.CurrentPayment = &payment
		}
		if row.RentAdjustment != nil {
			adjustment := newRentAdjustmentView(*row.RentAdjustment)
			rowView.RentAdjustment = &adjustment
		}
		view.Rows = append(view.Rows, rowView)
	}
	for _, bar := range dashboard.Chart {
		view.Chart = append(view.Chart, chartBarView{Label: bar.Label, Value: bar.Value})
	}
	return view
}

func formatOptionalDate(value *time.Time) *string {
	if value == nil || value.IsZero() {
		return nil
	}
	formatted := value.Format(models.DateLayout)
	return &formatted
}
