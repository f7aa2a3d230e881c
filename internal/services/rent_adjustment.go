package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rentguard/rentguard/internal/models"
	"github.com/shopspring/decimal"
)

const adjustmentCycleMonths = 12

var ErrInvalidRateTable = errors.New("invalid rate table")

// RateTable supplies annual index rates in percent. A contract that has run
// for N full years averages the first N entries.
type RateTable interface {
	Rates() []decimal.Decimal
}

// StaticRateTable is a fixed, illustrative sequence of CPI rates. It stands in
// for a real index feed.
type StaticRateTable []decimal.Decimal

func (table StaticRateTable) Rates() []decimal.Decimal {
	return table
}

// ParseRateTable reads comma-separated percentages such as "64.77,44.38".
func ParseRateTable(raw string) (StaticRateTable, error) {
	parts := strings.Split(raw, ",")
	table := make(StaticRateTable, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		rate, err := decimal.NewFromString(trimmed)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidRateTable, trimmed)
		}
		if rate.IsNegative() {
			return nil, fmt.Errorf("%w: negative rate %s", ErrInvalidRateTable, trimmed)
		}
		table = append(table, rate)
	}
	return table, nil
}

type RentAdjustment struct {
	Eligible       bool
	MonthsElapsed  int
	Cycles         int
	Percentage     decimal.Decimal
	IncreaseAmount decimal.Decimal
	CurrentRent    decimal.Decimal
	NewRent        decimal.Decimal
}

// EstimateRentAdjustment averages one rate per full year since the contract
// started and applies it to the current rent, rounded to whole currency units.
// Day of month is ignored when counting elapsed months.
func EstimateRentAdjustment(currentRent decimal.Decimal, contractStart time.Time, today time.Time, rates RateTable) RentAdjustment {
	monthsElapsed := (today.Year()-contractStart.Year())*12 + int(today.Month()) - int(contractStart.Month())
	adjustment := RentAdjustment{
		MonthsElapsed:  monthsElapsed,
		Percentage:     decimal.Zero,
		IncreaseAmount: decimal.Zero,
		CurrentRent:    currentRent,
		NewRent:        currentRent,
	}
	if monthsElapsed < adjustmentCycleMonths {
		return adjustment
	}

	var table []decimal.Decimal
	if rates != nil {
		table = rates.Rates()
	}
	cycles := min(monthsElapsed/adjustmentCycleMonths, len(table))
	if cycles == 0 {
		return adjustment
	}

	sum := decimal.Zero
	for _, rate := range table[:cycles] {
		sum = sum.Add(rate)
	}
	average := sum.Div(decimal.NewFromInt(int64(cycles)))

	multiplier := decimal.NewFromInt(1).Add(average.Div(decimal.NewFromInt(100)))
	newRent := currentRent.Mul(multiplier).Round(0)

	adjustment.Eligible = true
	adjustment.Cycles = cycles
	adjustment.Percentage = average
	adjustment.NewRent = newRent
	adjustment.IncreaseAmount = newRent.Sub(currentRent)
	return adjustment
}

// EstimatePropertyRent estimates the property's next increase. It is not
// eligible while a previously applied increase sets NextIncreaseDate after
// today. ok is false when the contract start date is unknown.
func EstimatePropertyRent(property models.Property, today time.Time, rates RateTable) (RentAdjustment, bool) {
	if property.ContractStartDate == nil {
		return RentAdjustment{}, false
	}
	adjustment := EstimateRentAdjustment(property.RentAmount, *property.ContractStartDate, today, rates)
	if property.NextIncreaseDate != nil && CalendarDate(*property.NextIncreaseDate, time.UTC).After(CalendarDate(today, time.UTC)) {
		adjustment.Eligible = false
	}
	return adjustment, true
}
