package service

import (
	"stackspay/api/internal/config"
	"stackspay/api/internal/domain"
	"stackspay/api/internal/infra/cache"
	"stackspay/api/internal/infra/nats"
	"stackspay/api/internal/logger"
	"stackspay/api/internal/repository"
	"stackspay/pkg/nats/natsdomain"
	"time"

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
	Create(merchant *domain.Merchants, opts CreatePaymentOpts) (*CreatedPayment, error)
	FindGlobal(tx *gorm.DB, paymentId string) (*domain.Payments, error)
	List(merchantID string, filters repository.ListFilters) ([]domain.Payments, int64, error)
	// idempotency gate: pending -> processing, records blockchain data
	VerifySignature(paymentId string, data *BlockchainData) (*domain.Payments, error)
	// monitor/external verifier path: -> confirmed | failed
	UpdateStatus(paymentId string, status domain.Status, data *BlockchainData) (*domain.Payments, error)
	Refund(paymentId string, merchantId string, opts RefundOpts) (*domain.Payments, error)
	Cancel(paymentId string, merchantId string) (*domain.Payments, error)
	// updates payment and saves it to cache and db
	UpdateAndSave(tx *gorm.DB, payment *domain.Payments) error
}

type Monitor interface {
	// fire-and-forget, a start failure never fails payment creation
	Start(payment *domain.Payments)
	Cancel(paymentId string)
	RunAutostartCheck()
}

type WebhookSender interface {
	// at-least-one-recipient semantics across the merchant's endpoints
	Trigger(payment *domain.Payments, eventType string) error
	Deliver(url string, secret string, webhookID string, body []byte) error
	// redelivery path, the body was signed when it was first queued
	DeliverSigned(url string, signature string, body []byte) error
	VerifySignature(payload []byte, signature string, secret string) bool
	Test(url string, secret string) error
	// egress proxy management
	UpdateList(proxies []string)
	GetList() []string
}

type Webhooks interface {
	Register(merchantID string, url string, events []string) (*domain.Webhooks, error)
	ListByMerchant(merchantID string) ([]domain.Webhooks, error)
	Delete(merchantID string, webhookID string) error
}

type Converter interface {
	Convert(amount decimal.Decimal, from, to domain.Currency, opts *ConvertOpts) (*ConversionResult, error)
}

type Rates interface {
	Rate(from, to domain.Currency) (decimal.Decimal, error)
	Table() map[string]decimal.Decimal
}

type QrCodes interface {
	// generates qr code and saves it to cache
	New(content string) (string, error)
	// returns qr code from cache or generates new one
	FindOrNew(content string) (string, error)
}

type Locker interface {
	Lock(key string)
	Unlock(key string)
	IsLocked(key string) bool
}

type Expiry interface {
	RunFindExpired()
	StartSweeper()
}

type OutboxEvents interface {
	StartProcessEvents()
}

// narrow view of the chain collaborator. the nats bridge implements it,
// tests substitute fakes
type ChainBridge interface {
	CreateDepositAddress(method domain.Method, paymentId string, receivingAddress string, amount decimal.Decimal) (*natsdomain.ResNewAddress, error)
	DepositStatus(method domain.Method, address string) (*natsdomain.ResDepositStatus, error)
	NotifyDeposit(paymentId string, txId string, depositScript string, reclaimScript string) error
}

type Services struct {
	Merchants     Merchants
	Payments      Payments
	Monitor       Monitor
	WebhookSender WebhookSender
	Webhooks      Webhooks
	Converter     Converter
	Rates         Rates
	QrCodes       QrCodes
	Expiry        Expiry
	OutboxEvents  OutboxEvents
}

func NewServices(n *nats.NatsInfra, db *gorm.DB, l logger.Logger, config *config.Config) *Services {
	repos := repository.New()

	lockerService := NewLockerService(cache.InitStorage())

	ratesService := NewRatesService(cache.RatesCache, NewHttpRateProvider(config), time.Duration(config.Rates.RefreshSeconds)*time.Second, l)
	converterService := NewConverterService(ratesService)

	webhookSender := NewWebhookSenderService(db, repos.Webhooks, repos.Events, config.ProxyList, l)

	monitorService := NewMonitorService(db, repos.Payments, n, lockerService, l, config)

	paymentsService := NewPaymentsService(db, repos.Payments, repos.Refunds, converterService, n, monitorService, webhookSender, l, cache.InitStorage(), config)
	monitorService.payments = paymentsService

	return &Services{
		Merchants:     NewMerchantsService(db, repos.Merchants),
		Payments:      paymentsService,
		Monitor:       monitorService,
		WebhookSender: webhookSender,
		Webhooks:      NewWebhooksService(db, repos.Webhooks),
		Converter:     converterService,
		Rates:         ratesService,
		QrCodes:       NewQrCodesService(),
		Expiry:        NewExpiryService(db, repos.Payments, paymentsService, monitorService, webhookSender, l),
		OutboxEvents:  NewOutboxEventsService(db, repos.Events, webhookSender, l),
	}
}
