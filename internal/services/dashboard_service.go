package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentguard/rentguard/internal/models"
	"github.com/shopspring/decimal"
)

const chartLabelRunes = 6

type DashboardRow struct {
	Property       models.Property
	Status         PaymentStatus
	CurrentPayment *models.Payment
	RentAdjustment *RentAdjustment
	LedgerMissing  bool
}

type ChartBar struct {
	Label string
	Value decimal.Decimal
}

type Dashboard struct {
	Today              time.Time
	Rows               []DashboardRow
	PropertyCount      int
	MonthlyIncome      decimal.Decimal
	CollectedThisMonth decimal.Decimal
	FreeTierRemaining  *int
	Chart              []ChartBar
}

type DashboardPropertySource interface {
	ListProperties(userID uuid.UUID) ([]models.Property, error)
	RemainingFreeSlots(userID uuid.UUID) (int, bool, error)
}

type DashboardPaymentSource interface {
	ListPaymentsForUser(userID uuid.UUID) ([]models.Payment, error)
}

type DashboardService struct {
	properties DashboardPropertySource
	payments   DashboardPaymentSource
	rates      RateTable
}

func NewDashboardService(properties DashboardPropertySource, payments DashboardPaymentSource, rates RateTable) *DashboardService {
	return &DashboardService{
		properties: properties,
		payments:   payments,
		rates:      rates,
	}
}

func (service *DashboardService) BuildDashboard(userID uuid.UUID, today time.Time) (Dashboard, error) {
	properties, err := service.properties.ListProperties(userID)
	if err != nil {
		return Dashboard{}, ErrPropertyLoadFailed
	}
	payments, err := service.payments.ListPaymentsForUser(userID)
	if err != nil {
		return Dashboard{}, err
	}

	dashboard := SummarizeDashboard(properties, payments, today, service.rates)

	remaining, limited, err := service.properties.RemainingFreeSlots(userID)
	if err != nil {
		return Dashboard{}, ErrPropertyLoadFailed
	}
	if limited {
		dashboard.FreeTierRemaining = &remaining
	}
	return dashboard, nil
}

// SummarizeDashboard derives every dashboard figure from in-memory state.
func SummarizeDashboard(properties []models.Property, payments []models.Payment, today time.Time, rates RateTable) Dashboard {
	dashboard := Dashboard{
		Today:              today,
		Rows:               make([]DashboardRow, 0, len(properties)),
		PropertyCount:      len(properties),
		MonthlyIncome:      decimal.Zero,
		CollectedThisMonth: decimal.Zero,
		Chart:              make([]ChartBar, 0, len(properties)),
	}

	ledgerSizes := make(map[uuid.UUID]int, len(properties))
	for _, payment := range payments {
		ledgerSizes[payment.PropertyID]++
	}

	for _, property := range properties {
		row := DashboardRow{
			Property:      property,
			Status:        PaymentStatusFor(property.ID, properties, payments, today),
			LedgerMissing: ledgerSizes[property.ID] == 0,
		}
		if payment, found := CurrentMonthPayment(property.ID, payments, today); found {
			row.CurrentPayment = &payment
		}
		if adjustment, ok := EstimatePropertyRent(property, today, rates); ok {
			row.RentAdjustment = &adjustment
		}

		dashboard.MonthlyIncome = dashboard.MonthlyIncome.Add(property.RentAmount)
		if row.Status.Label == PaymentStatusPaid {
			dashboard.CollectedThisMonth = dashboard.CollectedThisMonth.Add(property.RentAmount)
		}
		dashboard.Chart = append(dashboard.Chart, ChartBar{
			Label: chartLabel(property.PropertyName),
			Value: property.RentAmount,
		})
		dashboard.Rows = append(dashboard.Rows, row)
	}
	return dashboard
}

func chartLabel(name string) string {
	runes := []rune(name)
	if len(runes) > chartLabelRunes {
		return string(runes[:chartLabelRunes])
	}
	return name
}
