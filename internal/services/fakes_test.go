package services

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rentguard/rentguard/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var errFakeWrite = errors.New("fake write failure")

// memoryStore backs the property, payment and user repository fakes with
// plain slices so the services can be exercised without a database.
type memoryStore struct {
	mu         sync.Mutex
	users      map[uuid.UUID]models.User
	properties []models.Property
	payments   []models.Payment

	failCreateBatch    bool
	failPropertyDelete bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{users: map[uuid.UUID]models.User{}}
}

func (store *memoryStore) addUser(premium bool) models.User {
	store.mu.Lock()
	defer store.mu.Unlock()

	user := models.User{ID: uuid.New(), Email: uuid.NewString() + "@example.com", IsPremium: premium}
	store.users[user.ID] = user
	return user
}

type fakeUsers struct{ store *memoryStore }

func (repo fakeUsers) FindByID(userID uuid.UUID) (models.User, error) {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	user, ok := repo.store.users[userID]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return user, nil
}

type fakeProperties struct{ store *memoryStore }

func (repo fakeProperties) ListByUser(userID uuid.UUID) ([]models.Property, error) {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	result := make([]models.Property, 0)
	for _, property := range repo.store.properties {
		if property.UserID == userID {
			result = append(result, property)
		}
	}
	slices.Reverse(result)
	return result, nil
}

func (repo fakeProperties) CountByUser(userID uuid.UUID) (int64, error) {
	properties, _ := repo.ListByUser(userID)
	return int64(len(properties)), nil
}

func (repo fakeProperties) FindByUserAndID(userID uuid.UUID, propertyID uuid.UUID) (models.Property, error) {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	for _, property := range repo.store.properties {
		if property.ID == propertyID && property.UserID == userID {
			return property, nil
		}
	}
	return models.Property{}, gorm.ErrRecordNotFound
}

func (repo fakeProperties) Create(property *models.Property) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	if property.ID == uuid.Nil {
		property.ID = uuid.New()
	}
	repo.store.properties = append(repo.store.properties, *property)
	return nil
}

func (repo fakeProperties) UpdateByUserAndID(userID uuid.UUID, propertyID uuid.UUID, updates map[string]any) (int64, error) {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	for index, property := range repo.store.properties {
		if property.ID != propertyID || property.UserID != userID {
			continue
		}
		applyPropertyUpdates(&repo.store.properties[index], updates)
		return 1, nil
	}
	return 0, nil
}

func (repo fakeProperties) DeleteByUserAndID(userID uuid.UUID, propertyID uuid.UUID) (int64, error) {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	if repo.store.failPropertyDelete {
		return 0, errFakeWrite
	}
	before := len(repo.store.properties)
	repo.store.properties = slices.DeleteFunc(repo.store.properties, func(property models.Property) bool {
		return property.ID == propertyID && property.UserID == userID
	})
	return int64(before - len(repo.store.properties)), nil
}

type fakePayments struct{ store *memoryStore }

func (repo fakePayments) CreateBatch(payments []models.Payment) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	if repo.store.failCreateBatch {
		return errFakeWrite
	}
	seen := map[string]struct{}{}
	for _, existing := range repo.store.payments {
		seen[existing.PropertyID.String()+existing.MonthYear] = struct{}{}
	}
	for _, payment := range payments {
		key := payment.PropertyID.String() + payment.MonthYear
		if _, duplicate := seen[key]; duplicate {
			return errors.New("UNIQUE constraint failed: payments.property_id, payments.month_year")
		}
		seen[key] = struct{}{}
	}
	for _, payment := range payments {
		if payment.ID == uuid.Nil {
			payment.ID = uuid.New()
		}
		repo.store.payments = append(repo.store.payments, payment)
	}
	return nil
}

func (repo fakePayments) CountByProperty(propertyID uuid.UUID) (int64, error) {
	payments, _ := repo.ListByProperty(propertyID)
	return int64(len(payments)), nil
}

func (repo fakePayments) DeleteByProperty(propertyID uuid.UUID) (int64, error) {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	before := len(repo.store.payments)
	repo.store.payments = slices.DeleteFunc(repo.store.payments, func(payment models.Payment) bool {
		return payment.PropertyID == propertyID
	})
	return int64(before - len(repo.store.payments)), nil
}

func (repo fakePayments) ListByUser(userID uuid.UUID) ([]models.Payment, error) {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	owned := map[uuid.UUID]struct{}{}
	for _, property := range repo.store.properties {
		if property.UserID == userID {
			owned[property.ID] = struct{}{}
		}
	}
	result := make([]models.Payment, 0)
	for _, payment := range repo.store.payments {
		if _, ok := owned[payment.PropertyID]; ok {
			result = append(result, payment)
		}
	}
	slices.SortStableFunc(result, func(left, right models.Payment) int {
		return left.DueDate.Compare(right.DueDate)
	})
	return result, nil
}

func (repo fakePayments) ListByProperty(propertyID uuid.UUID) ([]models.Payment, error) {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	result := make([]models.Payment, 0)
	for _, payment := range repo.store.payments {
		if payment.PropertyID == propertyID {
			result = append(result, payment)
		}
	}
	return result, nil
}

func (repo fakePayments) FindByUserAndID(userID uuid.UUID, paymentID uuid.UUID) (models.Payment, error) {
	payments, _ := repo.ListByUser(userID)
	for _, payment := range payments {
		if payment.ID == paymentID {
			return payment, nil
		}
	}
	return models.Payment{}, gorm.ErrRecordNotFound
}

func (repo fakePayments) SetPaid(paymentID uuid.UUID, isPaid bool) error {
	return repo.mutate(paymentID, func(payment *models.Payment) { payment.IsPaid = isPaid })
}

func (repo fakePayments) TogglePaid(paymentID uuid.UUID) error {
	return repo.mutate(paymentID, func(payment *models.Payment) { payment.IsPaid = !payment.IsPaid })
}

func (repo fakePayments) ListOrphans() ([]models.Payment, error) {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	result := make([]models.Payment, 0)
	for _, payment := range repo.store.payments {
		if !repo.store.propertyExistsLocked(payment.PropertyID) {
			result = append(result, payment)
		}
	}
	return result, nil
}

func (repo fakePayments) DeleteOrphans() (int64, error) {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	before := len(repo.store.payments)
	repo.store.payments = slices.DeleteFunc(repo.store.payments, func(payment models.Payment) bool {
		return !repo.store.propertyExistsLocked(payment.PropertyID)
	})
	return int64(before - len(repo.store.payments)), nil
}

func (repo fakePayments) mutate(paymentID uuid.UUID, apply func(*models.Payment)) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	for index := range repo.store.payments {
		if repo.store.payments[index].ID == paymentID {
			apply(&repo.store.payments[index])
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (store *memoryStore) propertyExistsLocked(propertyID uuid.UUID) bool {
	for _, property := range store.properties {
		if property.ID == propertyID {
			return true
		}
	}
	return false
}

func applyPropertyUpdates(property *models.Property, updates map[string]any) {
	for column, value := range updates {
		switch column {
		case "property_name":
			property.PropertyName = value.(string)
		case "tenant_name":
			property.TenantName = value.(string)
		case "rent_amount":
			property.RentAmount = value.(decimal.Decimal)
		case "payment_day":
			property.PaymentDay = value.(int)
		case "contract_start_date":
			property.ContractStartDate = value.(*time.Time)
		case "next_increase_date":
			switch typed := value.(type) {
			case *time.Time:
				property.NextIncreaseDate = typed
			case time.Time:
				property.NextIncreaseDate = &typed
			}
		case "tenant_phone":
			property.TenantPhone = value.(string)
		case "tenant_email":
			property.TenantEmail = value.(string)
		case "full_address":
			property.FullAddress = value.(string)
		}
	}
}

type recordedEvent struct {
	Topic   string
	Payload any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
	err    error
}

func (publisher *recordingPublisher) Publish(_ context.Context, topic string, payload any) error {
	publisher.mu.Lock()
	defer publisher.mu.Unlock()

	publisher.events = append(publisher.events, recordedEvent{Topic: topic, Payload: payload})
	return publisher.err
}

func (publisher *recordingPublisher) topics() []string {
	publisher.mu.Lock()
	defer publisher.mu.Unlock()

	topics := make([]string, 0, len(publisher.events))
	for _, event := range publisher.events {
		topics = append(topics, event.Topic)
	}
	return topics
}
