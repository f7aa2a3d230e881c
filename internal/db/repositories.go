package db

import "gorm.io/gorm"

type Repositories struct {
	Users      *UserRepository
	Properties *PropertyRepository
	Payments   *PaymentRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Users:      NewUserRepository(database),
		Properties: NewPropertyRepository(database),
		Payments:   NewPaymentRepository(database),
	}
}
