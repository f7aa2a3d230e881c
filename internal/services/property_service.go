package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rentguard/rentguard/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrPropertyNotFound         = errors.New("property not found")
	ErrPropertyInputInvalid     = errors.New("invalid property input")
	ErrPropertyNameRequired     = errors.New("property name is required")
	ErrInvalidPaymentDay        = errors.New("invalid payment day")
	ErrInvalidRentAmount        = errors.New("invalid rent amount")
	ErrFreeTierLimitReached     = errors.New("free tier limit reached")
	ErrPropertyLoadFailed       = errors.New("load property failed")
	ErrPropertyCreateFailed     = errors.New("create property failed")
	ErrPropertyUpdateFailed     = errors.New("update property failed")
	ErrPropertyDeleteFailed     = errors.New("delete property failed")
	ErrPaymentPlanCreateFailed  = errors.New("create payment plan failed")
	ErrContractStartDateMissing = errors.New("contract start date missing")
	ErrRentIncreaseNotEligible  = errors.New("rent increase not eligible")
)

// SagaOutcome describes how far a multi-step write got. The steps are not
// wrapped in one transaction, so callers see and repair partial states.
type SagaOutcome string

const (
	SagaCompleted SagaOutcome = "completed"
	SagaPartial   SagaOutcome = "partial"
	SagaFailed    SagaOutcome = "failed"
)

type PropertyRepository interface {
	ListByUser(userID uuid.UUID) ([]models.Property, error)
	CountByUser(userID uuid.UUID) (int64, error)
	FindByUserAndID(userID uuid.UUID, propertyID uuid.UUID) (models.Property, error)
	Create(property *models.Property) error
	UpdateByUserAndID(userID uuid.UUID, propertyID uuid.UUID, updates map[string]any) (int64, error)
	DeleteByUserAndID(userID uuid.UUID, propertyID uuid.UUID) (int64, error)
}

type PaymentLedgerRepository interface {
	CreateBatch(payments []models.Payment) error
	CountByProperty(propertyID uuid.UUID) (int64, error)
	DeleteByProperty(propertyID uuid.UUID) (int64, error)
}

type PropertyUserRepository interface {
	FindByID(userID uuid.UUID) (models.User, error)
}

// PropertyPolicy is the injected configuration that property writes honor.
type PropertyPolicy struct {
	FreeTierLimit int
	Rates         RateTable
	DayOverflow   DayOverflowPolicy
}

type PropertyInput struct {
	PropertyName      string
	TenantName        string
	RentAmount        decimal.Decimal
	PaymentDay        int
	ContractStartDate *time.Time
	NextIncreaseDate  *time.Time
	TenantPhone       string
	TenantEmail       string
	FullAddress       string
}

// DatePatch sets an optional date; a nil Value clears it.
type DatePatch struct {
	Value *time.Time
}

type PropertyPatch struct {
	PropertyName      *string
	TenantName        *string
	RentAmount        *decimal.Decimal
	PaymentDay        *int
	ContractStartDate *DatePatch
	NextIncreaseDate  *DatePatch
	TenantPhone       *string
	TenantEmail       *string
	FullAddress       *string
}

type CreatePropertyResult struct {
	Property models.Property
	Payments []models.Payment
	Outcome  SagaOutcome
}

type DeletePropertyResult struct {
	PropertyID      uuid.UUID
	PaymentsDeleted int64
	Outcome         SagaOutcome
}

type PropertyService struct {
	properties PropertyRepository
	payments   PaymentLedgerRepository
	users      PropertyUserRepository
	policy     PropertyPolicy
	events     EventPublisher
}

func NewPropertyService(properties PropertyRepository, payments PaymentLedgerRepository, users PropertyUserRepository, policy PropertyPolicy, events EventPublisher) *PropertyService {
	if policy.DayOverflow == "" {
		policy.DayOverflow = DayOverflowClamp
	}
	return &PropertyService{
		properties: properties,
		payments:   payments,
		users:      users,
		policy:     policy,
		events:     events,
	}
}

func (service *PropertyService) ListProperties(userID uuid.UUID) ([]models.Property, error) {
	return service.properties.ListByUser(userID)
}

func (service *PropertyService) FindProperty(userID uuid.UUID, propertyID uuid.UUID) (models.Property, error) {
	property, err := service.properties.FindByUserAndID(userID, propertyID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Property{}, ErrPropertyNotFound
	}
	if err != nil {
		return models.Property{}, ErrPropertyLoadFailed
	}
	return property, nil
}

// RemainingFreeSlots reports how many more properties the user may create;
// ok is false when the user is premium or FreeTierLimit is 0 (no limit).
func (service *PropertyService) RemainingFreeSlots(userID uuid.UUID) (int, bool, error) {
	user, err := service.users.FindByID(userID)
	if err != nil {
		return 0, false, err
	}
	if user.IsPremium || service.policy.FreeTierLimit <= 0 {
		return 0, false, nil
	}
	count, err := service.properties.CountByUser(userID)
	if err != nil {
		return 0, false, err
	}
	return max(service.policy.FreeTierLimit-int(count), 0), true, nil
}

// CreatePropertyWithPlan inserts the property and then seeds its twelve-month
// ledger. A ledger failure leaves the property in place with SagaPartial; it
// can be repaired with PaymentService.RegeneratePlan.
func (service *PropertyService) CreatePropertyWithPlan(ctx context.Context, userID uuid.UUID, input PropertyInput, anchor time.Time) (CreatePropertyResult, error) {
	result := CreatePropertyResult{Outcome: SagaFailed}

	normalized, err := NormalizePropertyInput(input)
	if err != nil {
		return result, err
	}

	remaining, limited, err := service.RemainingFreeSlots(userID)
	if err != nil {
		return result, ErrPropertyCreateFailed
	}
	if limited && remaining == 0 {
		return result, ErrFreeTierLimitReached
	}

	property := models.Property{
		UserID:            userID,
		PropertyName:      normalized.PropertyName,
		TenantName:        normalized.TenantName,
		RentAmount:        normalized.RentAmount,
		PaymentDay:        normalized.PaymentDay,
		ContractStartDate: normalized.ContractStartDate,
		NextIncreaseDate:  normalized.NextIncreaseDate,
		TenantPhone:       normalized.TenantPhone,
		TenantEmail:       normalized.TenantEmail,
		FullAddress:       normalized.FullAddress,
		CreatedAt:         time.Now().UTC(),
	}
	if err := service.properties.Create(&property); err != nil {
		return result, ErrPropertyCreateFailed
	}
	result.Property = property
	result.Outcome = SagaPartial

	payments, err := seedPaymentPlan(service.payments, property, anchor, service.policy.DayOverflow)
	if err != nil {
		log.Printf("properties: seed payment plan for %s failed: %v", property.ID, err)
		publishEvent(ctx, service.events, TopicPropertyCreated, propertyEvent(property, SagaPartial))
		return result, ErrPaymentPlanCreateFailed
	}

	result.Payments = payments
	result.Outcome = SagaCompleted
	publishEvent(ctx, service.events, TopicPropertyCreated, propertyEvent(property, SagaCompleted))
	return result, nil
}

func (service *PropertyService) UpdateProperty(userID uuid.UUID, propertyID uuid.UUID, patch PropertyPatch) (models.Property, error) {
	updates, err := propertyPatchUpdates(patch)
	if err != nil {
		return models.Property{}, err
	}
	if len(updates) == 0 {
		return service.FindProperty(userID, propertyID)
	}

	affected, err := service.properties.UpdateByUserAndID(userID, propertyID, updates)
	if err != nil {
		return models.Property{}, ErrPropertyUpdateFailed
	}
	if affected == 0 {
		return models.Property{}, ErrPropertyNotFound
	}
	return service.FindProperty(userID, propertyID)
}

// DeletePropertyCascade removes the ledger first and the property second.
// If the second step fails the property survives with an empty ledger.
func (service *PropertyService) DeletePropertyCascade(ctx context.Context, userID uuid.UUID, propertyID uuid.UUID) (DeletePropertyResult, error) {
	result := DeletePropertyResult{PropertyID: propertyID, Outcome: SagaFailed}

	property, err := service.FindProperty(userID, propertyID)
	if err != nil {
		return result, err
	}

	deleted, err := service.payments.DeleteByProperty(property.ID)
	if err != nil {
		return result, ErrPropertyDeleteFailed
	}
	result.PaymentsDeleted = deleted
	result.Outcome = SagaPartial

	affected, err := service.properties.DeleteByUserAndID(userID, property.ID)
	if err != nil || affected == 0 {
		log.Printf("properties: delete %s after removing %d payments failed: %v", property.ID, deleted, err)
		return result, ErrPropertyDeleteFailed
	}

	result.Outcome = SagaCompleted
	publishEvent(ctx, service.events, TopicPropertyDeleted, propertyEvent(property, SagaCompleted))
	return result, nil
}

func (service *PropertyService) EstimateRent(userID uuid.UUID, propertyID uuid.UUID, today time.Time) (RentAdjustment, error) {
	property, err := service.FindProperty(userID, propertyID)
	if err != nil {
		return RentAdjustment{}, err
	}
	adjustment, ok := EstimatePropertyRent(property, today, service.policy.Rates)
	if !ok {
		return RentAdjustment{}, ErrContractStartDateMissing
	}
	return adjustment, nil
}

// ApplyRentIncrease persists the suggested rent and moves the next increase
// date one year past today, which keeps a repeated apply from compounding.
func (service *PropertyService) ApplyRentIncrease(userID uuid.UUID, propertyID uuid.UUID, today time.Time) (models.Property, RentAdjustment, error) {
	property, err := service.FindProperty(userID, propertyID)
	if err != nil {
		return models.Property{}, RentAdjustment{}, err
	}
	adjustment, ok := EstimatePropertyRent(property, today, service.policy.Rates)
	if !ok {
		return models.Property{}, RentAdjustment{}, ErrContractStartDateMissing
	}
	if !adjustment.Eligible {
		return models.Property{}, adjustment, ErrRentIncreaseNotEligible
	}

	affected, err := service.properties.UpdateByUserAndID(userID, propertyID, map[string]any{
		"rent_amount":        adjustment.NewRent,
		"next_increase_date": oneYearAfter(today),
	})
	if err != nil {
		return models.Property{}, adjustment, ErrPropertyUpdateFailed
	}
	if affected == 0 {
		return models.Property{}, adjustment, ErrPropertyNotFound
	}

	property, err = service.FindProperty(userID, propertyID)
	return property, adjustment, err
}

// oneYearAfter keeps the day of month, clamping Feb 29 to Feb 28.
func oneYearAfter(day time.Time) time.Time {
	year, month := day.Year()+1, day.Month()
	return time.Date(year, month, min(day.Day(), daysInMonth(year, month)), 0, 0, 0, 0, time.UTC)
}

func NormalizePropertyInput(input PropertyInput) (PropertyInput, error) {
	input.PropertyName = strings.TrimSpace(input.PropertyName)
	input.TenantName = strings.TrimSpace(input.TenantName)
	input.TenantPhone = strings.TrimSpace(input.TenantPhone)
	input.TenantEmail = strings.ToLower(strings.TrimSpace(input.TenantEmail))
	input.FullAddress = strings.TrimSpace(input.FullAddress)

	if input.PropertyName == "" {
		return PropertyInput{}, ErrPropertyNameRequired
	}
	if err := validatePaymentDay(input.PaymentDay); err != nil {
		return PropertyInput{}, err
	}
	if err := validateRentAmount(input.RentAmount); err != nil {
		return PropertyInput{}, err
	}
	input.ContractStartDate = normalizeOptionalDate(input.ContractStartDate)
	input.NextIncreaseDate = normalizeOptionalDate(input.NextIncreaseDate)
	return input, nil
}

func propertyPatchUpdates(patch PropertyPatch) (map[string]any, error) {
	updates := map[string]any{}
	if patch.PropertyName != nil {
		name := strings.TrimSpace(*patch.PropertyName)
		if name == "" {
			return nil, ErrPropertyNameRequired
		}
		updates["property_name"] = name
	}
	if patch.TenantName != nil {
		updates["tenant_name"] = strings.TrimSpace(*patch.TenantName)
	}
	if patch.RentAmount != nil {
		if err := validateRentAmount(*patch.RentAmount); err != nil {
			return nil, err
		}
		updates["rent_amount"] = *patch.RentAmount
	}
	if patch.PaymentDay != nil {
		if err := validatePaymentDay(*patch.PaymentDay); err != nil {
			return nil, err
		}
		updates["payment_day"] = *patch.PaymentDay
	}
	if patch.ContractStartDate != nil {
		updates["contract_start_date"] = normalizeOptionalDate(patch.ContractStartDate.Value)
	}
	if patch.NextIncreaseDate != nil {
		updates["next_increase_date"] = normalizeOptionalDate(patch.NextIncreaseDate.Value)
	}
	if patch.TenantPhone != nil {
		updates["tenant_phone"] = strings.TrimSpace(*patch.TenantPhone)
	}
	if patch.TenantEmail != nil {
		updates["tenant_email"] = strings.ToLower(strings.TrimSpace(*patch.TenantEmail))
	}
	if patch.FullAddress != nil {
		updates["full_address"] = strings.TrimSpace(*patch.FullAddress)
	}
	return updates, nil
}

func validatePaymentDay(day int) error {
	if day < models.MinPaymentDay || day > models.MaxPaymentDay {
		return ErrInvalidPaymentDay
	}
	return nil
}

func validateRentAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrInvalidRentAmount
	}
	return nil
}

func normalizeOptionalDate(value *time.Time) *time.Time {
	if value == nil || value.IsZero() {
		return nil
	}
	date := time.Date(value.Year(), value.Month(), value.Day(), 0, 0, 0, 0, time.UTC)
	return &date
}

func seedPaymentPlan(ledger PaymentLedgerRepository, property models.Property, anchor time.Time, policy DayOverflowPolicy) ([]models.Payment, error) {
	payments := draftsToPayments(GeneratePaymentPlan(property.ID, property.PaymentDay, anchor, policy))
	now := time.Now().UTC()
	for index := range payments {
		payments[index].CreatedAt = now
	}
	if err := ledger.CreateBatch(payments); err != nil {
		return nil, err
	}
	return payments, nil
}

type propertyEventPayload struct {
	PropertyID uuid.UUID   `json:"property_id"`
	UserID     uuid.UUID   `json:"user_id"`
	Outcome    SagaOutcome `json:"outcome"`
}

func propertyEvent(property models.Property, outcome SagaOutcome) propertyEventPayload {
	return propertyEventPayload{
		PropertyID: property.ID,
		UserID:     property.UserID,
		Outcome:    outcome,
	}
}
