package repository

import (
	"stackspay/api/internal/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type RefundsRepo struct {
}

func InitRefundsRepo() *RefundsRepo {
	return &RefundsRepo{}
}

func (r *RefundsRepo) Create(tx *gorm.DB, refund *domain.Refunds) error {
	return tx.Create(refund).Error
}

func (r *RefundsRepo) FindByPaymentID(tx *gorm.DB, paymentID string) ([]domain.Refunds, error) {
	var refunds []domain.Refunds
	return refunds, tx.Where(&domain.Refunds{PaymentID: paymentID}).Order("id ASC").Find(&refunds).Error
}

func (r *RefundsRepo) SumByPaymentID(tx *gorm.DB, paymentID string) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := tx.Model(&domain.Refunds{}).Where(&domain.Refunds{PaymentID: paymentID}).Select("SUM(amount)").Scan(&sum).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}
