package service

import (
	"fmt"
	"strings"
	"time"

	"stackspay/api/internal/config"
	"stackspay/api/internal/domain"
	"stackspay/api/internal/infra/cache"
	"stackspay/api/internal/infra/postgres"
	"stackspay/api/internal/logger"
	"stackspay/api/internal/repository"
	"stackspay/pkg/nats/natsdomain"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreatePaymentOpts struct {
	Amount        decimal.Decimal
	Currency      domain.Currency
	PaymentMethod domain.Method
	PayoutMethod  domain.PayoutMethod
	Description   string
	Metadata      string
	ExpiryMinutes int // 0 = config default
}

type CreatedPayment struct {
	Payment      *domain.Payments
	QrPayload    string // bitcoin:/stacks: uri, rendered to png by the qr service
	Instructions string
}

// on-chain observation handed in by the monitor or an external verifier
type BlockchainData struct {
	TxId          string
	BlockHeight   int64
	Confirmations int
	Timestamp     int64
}

type RefundOpts struct {
	Amount        decimal.Decimal
	Reason        string
	TransactionID string // settled refund tx, execution happens outside the gateway
}

type PaymentsService struct {
	repo      repository.Payments
	refunds   repository.Refunds
	converter Converter
	bridge    ChainBridge
	monitor   Monitor
	webhook   WebhookSender
	db        *gorm.DB
	cache     *cache.Cache
	l         logger.Logger
	config    *config.Config
}

func NewPaymentsService(db *gorm.DB, repo repository.Payments, refunds repository.Refunds, converter Converter, bridge ChainBridge, monitor Monitor, webhook WebhookSender, l logger.Logger, cache *cache.Cache, config *config.Config) *PaymentsService {
	return &PaymentsService{repo: repo, refunds: refunds, converter: converter, bridge: bridge, monitor: monitor, webhook: webhook, db: db, l: l, cache: cache, config: config}
}

// runs both conversion legs, allocates the deposit address and persists the
// payment. any leg or address failure aborts the whole thing, no orphan row
func (s *PaymentsService) Create(merchant *domain.Merchants, opts CreatePaymentOpts) (*CreatedPayment, error) {
	var errid = logger.GenErrorId()

	if merchant == nil {
		return nil, domain.ErrMerchantNotFound
	}
	if opts.Currency.IsNone() {
		return nil, domain.ErrInvalidCurrency
	}
	if opts.PaymentMethod.IsNone() || opts.PayoutMethod.IsNone() {
		return nil, domain.ErrInvalidMethod
	}

	paymentCurrency := opts.PaymentMethod.Currency()
	payoutCurrency := opts.PayoutMethod.Currency()

	// leg 1: requested currency -> method currency
	paymentLeg, err := s.convertLeg(opts.Amount, opts.Currency, paymentCurrency)
	if err != nil {
		return nil, err
	}

	// leg 2: method currency -> payout currency
	payoutLeg, err := s.convertLeg(paymentLeg.ToAmount, paymentCurrency, payoutCurrency)
	if err != nil {
		return nil, err
	}

	paymentId := uuid.NewString()

	address, isDemo, err := s.allocateAddress(merchant, opts.PaymentMethod, paymentId, paymentLeg.ToAmount)
	if err != nil {
		s.l.TemplPaymentErr("create deposit address error: "+err.Error(), errid, paymentId, opts.Amount, opts.Currency.ToString(), logger.NA, merchant.MerchantID, logger.NA)
		return nil, err
	}

	expiryMinutes := opts.ExpiryMinutes
	if expiryMinutes <= 0 {
		expiryMinutes = s.config.Payment.ExpiryMinutes
	}

	payment := &domain.Payments{
		PaymentID:  paymentId,
		MerchantID: merchant.MerchantID,
		Status:     domain.STATUS_PENDING,

		Amount:        opts.Amount,
		Currency:      opts.Currency.ToString(),
		PaymentMethod: opts.PaymentMethod.ToString(),
		PayoutMethod:  opts.PayoutMethod.ToString(),

		PaymentAmount:   paymentLeg.ToAmount,
		PaymentCurrency: paymentCurrency.ToString(),
		PayoutAmount:    payoutLeg.ToAmount,
		PayoutCurrency:  payoutCurrency.ToString(),

		// both legs summed, per-leg breakdown is not kept
		ConversionFee: paymentLeg.ConversionFee.Add(payoutLeg.ConversionFee),
		NetworkFee:    paymentLeg.NetworkFee.Add(payoutLeg.NetworkFee),
		TotalFees:     paymentLeg.TotalFees.Add(payoutLeg.TotalFees),
		NetAmount:     payoutLeg.ToAmount,

		PaymentAddress:  address.Address,
		DepositScript:   address.DepositScript,
		ReclaimScript:   address.ReclaimScript,
		SignerPublicKey: address.SignerPublicKey,
		IsDemo:          isDemo,

		RequiredConfirmations: s.config.Payment.RequiredConfirmations,

		EndTimestamp: time.Now().Add(time.Duration(expiryMinutes) * time.Minute).Unix(),
		Description:  opts.Description,
		Metadata:     opts.Metadata,
	}

	if err := s.repo.Create(s.db, payment); err != nil {
		s.l.TemplPaymentErr("payment create error: "+err.Error(), errid, paymentId, opts.Amount, opts.Currency.ToString(), logger.NA, merchant.MerchantID, logger.NA)
		return nil, domain.ErrInternalServerError
	}

	s.cache.Set(paymentId, payment, time.Minute*5)

	// fire-and-forget, a monitor start failure never fails creation
	if opts.PaymentMethod.IsPolled() {
		s.monitor.Start(payment)
	}

	go func() {
		if err := s.webhook.Trigger(payment, domain.EVENT_PAYMENT_CREATED); err != nil {
			s.l.Debug("payment.created webhook error: "+err.Error(), "payment_id", paymentId)
		}
	}()

	return &CreatedPayment{
		Payment:      payment,
		QrPayload:    QrPayload(opts.PaymentMethod, address.Address, paymentLeg.ToAmount),
		Instructions: paymentInstructions(opts.PaymentMethod, paymentLeg.ToAmount, address.Address),
	}, nil
}

func (s *PaymentsService) convertLeg(amount decimal.Decimal, from, to domain.Currency) (*ConversionResult, error) {
	if from == to {
		// same-currency shortcut, skips the engine so no fee is double-charged
		return SameCurrencyResult(amount, from), nil
	}
	return s.converter.Convert(amount, from, to, nil)
}

// asks chaind for a deposit address. a merchant without a receiving wallet
// for the method gets a flagged demo address instead of an error
func (s *PaymentsService) allocateAddress(merchant *domain.Merchants, method domain.Method, paymentId string, amount decimal.Decimal) (*natsdomain.ResNewAddress, bool, error) {
	receiving := merchant.ReceivingAddress(method)
	if receiving == "" {
		return &natsdomain.ResNewAddress{Address: demoAddress(method)}, true, nil
	}

	address, err := s.bridge.CreateDepositAddress(method, paymentId, receiving, amount)
	if err != nil {
		// provider message kept so the merchant sees the real cause
		return nil, false, fmt.Errorf("%w: %s", domain.ErrChainBridge, err.Error())
	}

	return address, false, nil
}

// FindGlobal tries the cache first, then the database
func (s *PaymentsService) FindGlobal(tx *gorm.DB, paymentId string) (*domain.Payments, error) {
	// validate uuid (to avoid unnecessary database and cache queries)
	if uuid.Validate(paymentId) != nil {
		return nil, domain.ErrInvalidPaymentId
	}

	var errid = logger.GenErrorId()

	cacheV := s.cache.Load(paymentId)
	if cacheV != nil { // found
		if payment, ok := cacheV.(*domain.Payments); ok {
			return payment, nil
		}
	}

	payment, err := s.repo.FindByID(tx, paymentId)
	if err != nil {
		if postgres.IsNotFound(err) {
			return nil, domain.ErrPaymentIdNotFound
		}

		s.l.TemplPaymentErr("find payment by id error: "+err.Error(), errid, paymentId, decimal.Zero, logger.NA, logger.NA, logger.NA, logger.NA)
		return nil, domain.ErrInternalServerError
	}

	return payment, nil
}

func (s *PaymentsService) List(merchantID string, filters repository.ListFilters) ([]domain.Payments, int64, error) {
	return s.repo.List(s.db, merchantID, filters)
}

// updates payment and saves it to cache and db
func (s *PaymentsService) UpdateAndSave(tx *gorm.DB, payment *domain.Payments) error {
	if err := s.repo.Update(tx, payment); err != nil {
		return err
	}

	s.cache.Set(payment.PaymentID, payment, time.Minute*5)
	return nil
}

// VerifySignature is the idempotency gate: only a pending payment moves to
// processing, a second call reports the conflict instead of re-processing
func (s *PaymentsService) VerifySignature(paymentId string, data *BlockchainData) (*domain.Payments, error) {
	payment, err := s.FindGlobal(s.db, paymentId)
	if err != nil {
		return nil, err
	}

	if !payment.Status.IsPending() {
		return nil, domain.ErrInvalidState
	}

	payment.Status = domain.STATUS_PROCESSING
	applyBlockchainData(payment, data)

	if err := s.UpdateAndSave(s.db, payment); err != nil {
		s.l.Debug("verify signature save error: "+err.Error(), "payment_id", paymentId)
		return nil, domain.ErrInternalServerError
	}

	return payment, nil
}

// UpdateStatus is the monitor/external-verifier path. The target must be
// reachable through the status graph: confirmed requires processing, failed
// is allowed from pending or processing. VerifySignature's pending
// precondition and this guard enforce the same ordering everywhere
func (s *PaymentsService) UpdateStatus(paymentId string, status domain.Status, data *BlockchainData) (*domain.Payments, error) {
	if status != domain.STATUS_CONFIRMED && status != domain.STATUS_FAILED {
		return nil, domain.ErrStatusNotAllowed
	}

	payment, err := s.FindGlobal(s.db, paymentId)
	if err != nil {
		return nil, err
	}

	if !payment.Status.CanTransition(status) {
		return nil, domain.ErrInvalidState
	}

	payment.Status = status
	applyBlockchainData(payment, data)

	if status == domain.STATUS_CONFIRMED {
		now := time.Now()
		payment.ConfirmedAt = &now
		if payment.Confirmations < payment.RequiredConfirmations {
			payment.Confirmations = payment.RequiredConfirmations
		}

		// settle the payout leg at the confirmation-time rate
		if payment.PayoutCurrency != payment.PaymentCurrency {
			leg, err := s.converter.Convert(payment.PaymentAmount, domain.StrToCurrency(payment.PaymentCurrency), domain.StrToCurrency(payment.PayoutCurrency), nil)
			if err != nil {
				// fallback rates make this nearly unreachable, keep the quote amount
				s.l.Debug("final payout conversion error: "+err.Error(), "payment_id", paymentId)
				payment.FinalPayoutAmount = payment.PayoutAmount
			} else {
				payment.FinalPayoutAmount = leg.ToAmount
			}
		} else {
			payment.FinalPayoutAmount = payment.PayoutAmount
		}
	}

	s.monitor.Cancel(paymentId)

	if err := s.UpdateAndSave(s.db, payment); err != nil {
		s.l.Debug("update status save error: "+err.Error(), "payment_id", paymentId)
		return nil, domain.ErrInternalServerError
	}

	// delivery failure is accounted by the sender, never surfaced here
	if err := s.webhook.Trigger(payment, domain.StatusEvent(status)); err != nil {
		s.l.Debug("status webhook error: "+err.Error(), "payment_id", paymentId, "status", status.ToString())
	}

	return payment, nil
}

// Refund records an externally executed refund and reacts to it
func (s *PaymentsService) Refund(paymentId string, merchantId string, opts RefundOpts) (*domain.Payments, error) {
	payment, err := s.FindGlobal(s.db, paymentId)
	if err != nil {
		return nil, err
	}

	if payment.MerchantID != merchantId {
		return nil, domain.ErrPaymentNotOwned
	}
	if payment.Refunded {
		return nil, domain.ErrAlreadyRefunded
	}
	if payment.Status != domain.STATUS_CONFIRMED && payment.Status != domain.STATUS_PARTIALLY_REFUNDED {
		return nil, domain.ErrInvalidState
	}
	if strings.TrimSpace(opts.TransactionID) == "" {
		return nil, domain.ErrMissingRefundTx
	}

	remaining := payment.RefundRemaining()
	if !opts.Amount.IsPositive() || opts.Amount.GreaterThan(remaining) {
		return nil, domain.ErrInvalidRefundAmount
	}

	refund := &domain.Refunds{
		RefundID:      uuid.NewString(),
		PaymentID:     payment.PaymentID,
		MerchantID:    merchantId,
		Amount:        opts.Amount,
		TransactionID: opts.TransactionID,
		Status:        domain.REFUND_COMPLETED,
		Reason:        opts.Reason,
	}

	if err := s.refunds.Create(s.db, refund); err != nil {
		s.l.Debug("refund create error: "+err.Error(), "payment_id", paymentId)
		return nil, domain.ErrInternalServerError
	}

	payment.RefundedAmount = payment.RefundedAmount.Add(opts.Amount)
	if payment.RefundedAmount.GreaterThanOrEqual(payment.PaymentAmount) {
		payment.Refunded = true
		payment.Status = domain.STATUS_REFUNDED
	} else {
		payment.Status = domain.STATUS_PARTIALLY_REFUNDED
	}

	if err := s.UpdateAndSave(s.db, payment); err != nil {
		s.l.Debug("refund save error: "+err.Error(), "payment_id", paymentId)
		return nil, domain.ErrInternalServerError
	}

	if err := s.webhook.Trigger(payment, domain.EVENT_PAYMENT_REFUNDED); err != nil {
		s.l.Debug("payment.refunded webhook error: "+err.Error(), "payment_id", paymentId)
	}

	return payment, nil
}

func (s *PaymentsService) Cancel(paymentId string, merchantId string) (*domain.Payments, error) {
	payment, err := s.FindGlobal(s.db, paymentId)
	if err != nil {
		return nil, err
	}

	if payment.MerchantID != merchantId {
		return nil, domain.ErrPaymentNotOwned
	}
	if payment.Status.IsTerminal() {
		return nil, domain.ErrAlreadyTerminal
	}
	if !payment.Status.CanTransition(domain.STATUS_CANCELLED) {
		return nil, domain.ErrInvalidState
	}

	payment.Status = domain.STATUS_CANCELLED
	s.monitor.Cancel(paymentId)

	if err := s.UpdateAndSave(s.db, payment); err != nil {
		return nil, domain.ErrInternalServerError
	}

	if err := s.webhook.Trigger(payment, domain.EVENT_PAYMENT_CANCELLED); err != nil {
		s.l.Debug("payment.cancelled webhook error: "+err.Error(), "payment_id", paymentId)
	}

	return payment, nil
}

func applyBlockchainData(payment *domain.Payments, data *BlockchainData) {
	if data == nil {
		return
	}
	if data.TxId != "" {
		payment.TxID = data.TxId
	}
	if data.BlockHeight > 0 {
		payment.BlockHeight = data.BlockHeight
	}
	if data.Confirmations > payment.Confirmations {
		payment.Confirmations = data.Confirmations
	}
	if data.Timestamp > 0 {
		payment.TxTimestamp = data.Timestamp
	}
}

// payment uri rendered into the qr code
func QrPayload(method domain.Method, address string, amount decimal.Decimal) string {
	if method == domain.METHOD_BTC {
		return fmt.Sprintf("bitcoin:%s?amount=%s", address, amount.String())
	}
	return fmt.Sprintf("stacks:%s?amount=%s", address, amount.String())
}

func paymentInstructions(method domain.Method, amount decimal.Decimal, address string) string {
	switch method {
	case domain.METHOD_BTC:
		return fmt.Sprintf("Send exactly %s BTC to %s. The payment confirms after the required block confirmations.", amount.String(), address)
	case domain.METHOD_STX:
		return fmt.Sprintf("Send exactly %s STX to %s from your Stacks wallet.", amount.String(), address)
	default:
		return fmt.Sprintf("Send exactly %s sBTC to %s from your Stacks wallet.", amount.String(), address)
	}
}

// demo placeholder when the merchant has no receiving wallet configured
func demoAddress(method domain.Method) string {
	if method == domain.METHOD_BTC {
		return gofakeit.BitcoinAddress()
	}
	return "ST" + strings.ToUpper(gofakeit.LetterN(38))
}
