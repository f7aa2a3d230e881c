package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rentguard/rentguard/internal/models"
	"gorm.io/gorm"
)

var (
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrPaymentLoadFailed   = errors.New("load payments failed")
	ErrPaymentUpdateFailed = errors.New("update payment failed")
	ErrPlanAlreadyExists   = errors.New("payment plan already exists")
	ErrOrphanCleanupFailed = errors.New("orphan payment cleanup failed")
)

type PaymentRepository interface {
	PaymentLedgerRepository
	ListByUser(userID uuid.UUID) ([]models.Payment, error)
	ListByProperty(propertyID uuid.UUID) ([]models.Payment, error)
	FindByUserAndID(userID uuid.UUID, paymentID uuid.UUID) (models.Payment, error)
	SetPaid(paymentID uuid.UUID, isPaid bool) error
	TogglePaid(paymentID uuid.UUID) error
	ListOrphans() ([]models.Payment, error)
	DeleteOrphans() (int64, error)
}

type PaymentPropertyRepository interface {
	FindByUserAndID(userID uuid.UUID, propertyID uuid.UUID) (models.Property, error)
}

type PaymentService struct {
	payments    PaymentRepository
	properties  PaymentPropertyRepository
	dayOverflow DayOverflowPolicy
	events      EventPublisher
}

func NewPaymentService(payments PaymentRepository, properties PaymentPropertyRepository, dayOverflow DayOverflowPolicy, events EventPublisher) *PaymentService {
	if dayOverflow == "" {
		dayOverflow = DayOverflowClamp
	}
	return &PaymentService{
		payments:    payments,
		properties:  properties,
		dayOverflow: dayOverflow,
		events:      events,
	}
}

// ListPaymentsForUser returns the ledgers of the user's own properties only,
// ordered by due date.
func (service *PaymentService) ListPaymentsForUser(userID uuid.UUID) ([]models.Payment, error) {
	payments, err := service.payments.ListByUser(userID)
	if err != nil {
		return []models.Payment{}, ErrPaymentLoadFailed
	}
	return payments, nil
}

func (service *PaymentService) ListPaymentsForProperty(userID uuid.UUID, propertyID uuid.UUID) ([]models.Payment, error) {
	if _, err := service.ownedProperty(userID, propertyID); err != nil {
		return []models.Payment{}, err
	}
	payments, err := service.payments.ListByProperty(propertyID)
	if err != nil {
		return []models.Payment{}, ErrPaymentLoadFailed
	}
	return payments, nil
}

func (service *PaymentService) SetPaid(ctx context.Context, userID uuid.UUID, paymentID uuid.UUID, isPaid bool) (models.Payment, error) {
	if _, err := service.ownedPayment(userID, paymentID); err != nil {
		return models.Payment{}, err
	}
	if err := service.payments.SetPaid(paymentID, isPaid); err != nil {
		return models.Payment{}, ErrPaymentUpdateFailed
	}
	return service.reloadAndPublish(ctx, userID, paymentID)
}

// TogglePaid flips is_paid. Two sequential toggles restore the original value.
func (service *PaymentService) TogglePaid(ctx context.Context, userID uuid.UUID, paymentID uuid.UUID) (models.Payment, error) {
	if _, err := service.ownedPayment(userID, paymentID); err != nil {
		return models.Payment{}, err
	}
	if err := service.payments.TogglePaid(paymentID); err != nil {
		return models.Payment{}, ErrPaymentUpdateFailed
	}
	return service.reloadAndPublish(ctx, userID, paymentID)
}

// RegeneratePlan seeds a fresh twelve-month ledger for a property whose ledger
// is empty, typically after a partial create.
func (service *PaymentService) RegeneratePlan(ctx context.Context, userID uuid.UUID, propertyID uuid.UUID, anchor time.Time) ([]models.Payment, error) {
	property, err := service.ownedProperty(userID, propertyID)
	if err != nil {
		return nil, err
	}

	existing, err := service.payments.CountByProperty(property.ID)
	if err != nil {
		return nil, ErrPaymentLoadFailed
	}
	if existing > 0 {
		return nil, ErrPlanAlreadyExists
	}

	payments, err := seedPaymentPlan(service.payments, property, anchor, service.dayOverflow)
	if err != nil {
		return nil, ErrPaymentPlanCreateFailed
	}
	publishEvent(ctx, service.events, TopicPropertyCreated, propertyEvent(property, SagaCompleted))
	return payments, nil
}

// FindOrphanPayments lists ledger rows whose property no longer exists.
func (service *PaymentService) FindOrphanPayments() ([]models.Payment, error) {
	orphans, err := service.payments.ListOrphans()
	if err != nil {
		return nil, ErrPaymentLoadFailed
	}
	return orphans, nil
}

func (service *PaymentService) PurgeOrphanPayments() (int64, error) {
	deleted, err := service.payments.DeleteOrphans()
	if err != nil {
		return 0, ErrOrphanCleanupFailed
	}
	return deleted, nil
}

func (service *PaymentService) ownedProperty(userID uuid.UUID, propertyID uuid.UUID) (models.Property, error) {
	property, err := service.properties.FindByUserAndID(userID, propertyID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Property{}, ErrPropertyNotFound
	}
	if err != nil {
		return models.Property{}, ErrPropertyLoadFailed
	}
	return property, nil
}

func (service *PaymentService) ownedPayment(userID uuid.UUID, paymentID uuid.UUID) (models.Payment, error) {
	payment, err := service.payments.FindByUserAndID(userID, paymentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Payment{}, ErrPaymentNotFound
	}
	if err != nil {
		return models.Payment{}, ErrPaymentLoadFailed
	}
	return payment, nil
}

func (service *PaymentService) reloadAndPublish(ctx context.Context, userID uuid.UUID, paymentID uuid.UUID) (models.Payment, error) {
	payment, err := service.ownedPayment(userID, paymentID)
	if err != nil {
		return models.Payment{}, err
	}
	publishEvent(ctx, service.events, TopicPaymentUpdated, paymentEventPayload{
		PaymentID:  payment.ID,
		PropertyID: payment.PropertyID,
		MonthYear:  payment.MonthYear,
		IsPaid:     payment.IsPaid,
	})
	return payment, nil
}

type paymentEventPayload struct {
	PaymentID  uuid.UUID `json:"payment_id"`
	PropertyID uuid.UUID `json:"property_id"`
	MonthYear  string    `json:"month_year"`
	IsPaid     bool      `json:"is_paid"`
}
