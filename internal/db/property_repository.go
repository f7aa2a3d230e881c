package db

import (
	"github.com/google/uuid"
	"github.com/rentguard/rentguard/internal/models"
	"gorm.io/gorm"
)

type PropertyRepository struct {
	database *gorm.DB
}

func NewPropertyRepository(database *gorm.DB) *PropertyRepository {
	return &PropertyRepository{database: database}
}

func (repo *PropertyRepository) ListByUser(userID uuid.UUID) ([]models.Property, error) {
	properties := make([]models.Property, 0)
	if err := repo.database.
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&properties).Error; err != nil {
		return nil, err
	}
	return properties, nil
}

func (repo *PropertyRepository) CountByUser(userID uuid.UUID) (int64, error) {
	var count int64
	if err := repo.database.Model(&models.Property{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (repo *PropertyRepository) FindByUserAndID(userID uuid.UUID, propertyID uuid.UUID) (models.Property, error) {
	var property models.Property
	if err := repo.database.
		Where("user_id = ? AND id = ?", userID, propertyID).
		First(&property).Error; err != nil {
		return models.Property{}, err
	}
	return property, nil
}

func (repo *PropertyRepository) Create(property *models.Property) error {
	return repo.database.Create(property).Error
}

func (repo *PropertyRepository) UpdateByUserAndID(userID uuid.UUID, propertyID uuid.UUID, updates map[string]any) (int64, error) {
	result := repo.database.Model(&models.Property{}).
		Where("user_id = ? AND id = ?", userID, propertyID).
		Updates(updates)
	return result.RowsAffected, result.Error
}

func (repo *PropertyRepository) DeleteByUserAndID(userID uuid.UUID, propertyID uuid.UUID) (int64, error) {
	result := repo.database.
		Where("user_id = ? AND id = ?", userID, propertyID).
		Delete(&models.Property{})
	return result.RowsAffected, result.Error
}
