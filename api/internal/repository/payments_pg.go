package repository

import (
	"stackspay/api/internal/domain"

	"gorm.io/gorm"
)

type PaymentsRepo struct {
}

func InitPaymentsRepo() *PaymentsRepo {
	return &PaymentsRepo{}
}

func (r *PaymentsRepo) Create(tx *gorm.DB, payment *domain.Payments) error {
	return tx.Create(payment).Error
}

func (r *PaymentsRepo) Update(tx *gorm.DB, payment *domain.Payments) error {
	return tx.Save(payment).Error
}

func (r *PaymentsRepo) FindByID(tx *gorm.DB, paymentId string) (*domain.Payments, error) {
	var payment domain.Payments
	return &payment, tx.Where(&domain.Payments{PaymentID: paymentId}).First(&payment).Error
}

func (r *PaymentsRepo) FindByStatus(tx *gorm.DB, status domain.Status) ([]*domain.Payments, error) {
	var payments []*domain.Payments
	// Where on a struct skips zero values, so pending needs an explicit condition
	return payments, tx.Where("status = ?", status).Find(&payments).Error
}

func (r *PaymentsRepo) List(tx *gorm.DB, merchantID string, filters ListFilters) ([]domain.Payments, int64, error) {
	var payments []domain.Payments
	var total int64

	q := tx.Model(&domain.Payments{}).Where("merchant_id = ?", merchantID)
	if filters.Status != nil {
		q = q.Where("status = ?", *filters.Status)
	}
	if filters.PaymentMethod != "" {
		q = q.Where("payment_method = ?", filters.PaymentMethod)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filters.Limit
	if limit <= 0 || limit > 100 {
		limit = 25
	}

	err := q.Order("id DESC").Limit(limit).Offset(filters.Offset).Find(&payments).Error
	return payments, total, err
}
