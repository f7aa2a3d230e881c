package db

import (
	"github.com/google/uuid"
	"github.com/rentguard/rentguard/internal/models"
	"gorm.io/gorm"
)

type PaymentRepository struct {
	database *gorm.DB
}

func NewPaymentRepository(database *gorm.DB) *PaymentRepository {
	return &PaymentRepository{database: database}
}

func (repo *PaymentRepository) ownedPropertyIDs(userID uuid.UUID) *gorm.DB {
	return repo.database.Model(&models.Property{}).Select("id").Where("user_id = ?", userID)
}

// ListByUser returns only payments that belong to the user's own properties.
func (repo *PaymentRepository) ListByUser(userID uuid.UUID) ([]models.Payment, error) {
	payments := make([]models.Payment, 0)
	if err := repo.database.
		Where("property_id IN (?)", repo.ownedPropertyIDs(userID)).
		Order("due_date ASC, id ASC").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

func (repo *PaymentRepository) ListByProperty(propertyID uuid.UUID) ([]models.Payment, error) {
	payments := make([]models.Payment, 0)
	if err := repo.database.
		Where("property_id = ?", propertyID).
		Order("due_date ASC, id ASC").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

func (repo *PaymentRepository) CountByProperty(propertyID uuid.UUID) (int64, error) {
	var count int64
	if err := repo.database.Model(&models.Payment{}).Where("property_id = ?", propertyID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (repo *PaymentRepository) FindByUserAndID(userID uuid.UUID, paymentID uuid.UUID) (models.Payment, error) {
	var payment models.Payment
	if err := repo.database.
		Where("id = ? AND property_id IN (?)", paymentID, repo.ownedPropertyIDs(userID)).
		First(&payment).Error; err != nil {
		return models.Payment{}, err
	}
	return payment, nil
}

// CreateBatch inserts the whole ledger in one statement.
func (repo *PaymentRepository) CreateBatch(payments []models.Payment) error {
	if len(payments) == 0 {
		return nil
	}
	return repo.database.Create(&payments).Error
}

func (repo *PaymentRepository) SetPaid(paymentID uuid.UUID, isPaid bool) error {
	return repo.database.Model(&models.Payment{}).Where("id = ?", paymentID).Update("is_paid", isPaid).Error
}

// TogglePaid flips is_paid in a single statement so concurrent toggles never
// read a stale value.
func (repo *PaymentRepository) TogglePaid(paymentID uuid.UUID) error {
	return repo.database.Model(&models.Payment{}).
		Where("id = ?", paymentID).
		Update("is_paid", gorm.Expr("NOT is_paid")).Error
}

func (repo *PaymentRepository) DeleteByProperty(propertyID uuid.UUID) (int64, error) {
	result := repo.database.Where("property_id = ?", propertyID).Delete(&models.Payment{})
	return result.RowsAffected, result.Error
}

func (repo *PaymentRepository) ListOrphans() ([]models.Payment, error) {
	payments := make([]models.Payment, 0)
	if err := repo.database.
		Where("property_id NOT IN (?)", repo.database.Model(&models.Property{}).Select("id")).
		Order("property_id ASC, due_date ASC").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

func (repo *PaymentRepository) DeleteOrphans() (int64, error) {
	result := repo.database.
		Where("property_id NOT IN (?)", repo.database.Model(&models.Property{}).Select("id")).
		Delete(&models.Payment{})
	return result.RowsAffected, result.Error
}
