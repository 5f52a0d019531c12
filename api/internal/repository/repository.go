package repository

import (
	"stackspay/api/internal/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Merchants interface {
	FindByID(tx *gorm.DB, merchantID string) (*domain.Merchants, error)
	FindByApiKey(tx *gorm.DB, apiKey string) (*domain.Merchants, error)
	FindByName(tx *gorm.DB, merchantName string) (*domain.Merchants, error)
	ApiKeyExists(tx *gorm.DB, apiKey string) (bool, error)
	Create(tx *gorm.DB, merchant *domain.Merchants) error
}

type Payments interface {
	Create(tx *gorm.DB, payment *domain.Payments) error
	Update(tx *gorm.DB, payment *domain.Payments) error
	FindByID(tx *gorm.DB, paymentId string) (*domain.Payments, error)
	FindByStatus(tx *gorm.DB, status domain.Status) ([]*domain.Payments, error)
	List(tx *gorm.DB, merchantID string, filters ListFilters) ([]domain.Payments, int64, error)
}

type Refunds interface {
	Create(tx *gorm.DB, refund *domain.Refunds) error
	FindByPaymentID(tx *gorm.DB, paymentID string) ([]domain.Refunds, error)
	SumByPaymentID(tx *gorm.DB, paymentID string) (decimal.Decimal, error)
}

type Webhooks interface {
	Create(tx *gorm.DB, webhook *domain.Webhooks) error
	Delete(tx *gorm.DB, webhookID string) error
	FindByID(tx *gorm.DB, webhookID string) (*domain.Webhooks, error)
	FindByMerchantID(tx *gorm.DB, merchantID string) ([]domain.Webhooks, error)
	FindEnabledByMerchantID(tx *gorm.DB, merchantID string) ([]domain.Webhooks, error)
	// one increment per delivery, not per attempt
	RecordDelivery(tx *gorm.DB, webhookID string, success bool, failureReason string) error
}

type Events interface {
	Create(tx *gorm.DB, eventType string, eventRelationID uint, payload string) error
	Done(tx *gorm.DB, eventRelationID uint, eventType string) error
	Find(tx *gorm.DB, eventRelationID uint, eventType string) (*domain.Events, error)
}

// filters + pagination for payment listing
type ListFilters struct {
	Status        *domain.Status
	PaymentMethod string
	Limit         int
	Offset        int
}

type Repositories struct {
	Merchants Merchants
	Payments  Payments
	Refunds   Refunds
	Webhooks  Webhooks
	Events    Events
}

func New() *Repositories {
	return &Repositories{
		Merchants: InitMerchantsRepo(),
		Payments:  InitPaymentsRepo(),
		Refunds:   InitRefundsRepo(),
		Webhooks:  InitWebhooksRepo(),
		Events:    InitEventsRepo(),
	}
}
