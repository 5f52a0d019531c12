package service

import (
	"context"
	"sync"
	"time"

	"stackspay/api/internal/config"
	"stackspay/api/internal/domain"
	"stackspay/api/internal/logger"
	"stackspay/api/internal/repository"
	"stackspay/pkg/nats/natsdomain"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MonitorService polls chaind for deposits, one goroutine per active payment.
// the locker guarantees a single poller per payment id even when autostart
// races with payment creation
type MonitorService struct {
	repo     repository.Payments
	payments Payments // set after construction, the orchestrator owns a monitor reference too
	bridge   ChainBridge
	locker   Locker
	db       *gorm.DB
	l        logger.Logger
	config   *config.Config

	mu    sync.Mutex
	tasks map[string]context.CancelFunc
}

func NewMonitorService(db *gorm.DB, repo repository.Payments, bridge ChainBridge, locker Locker, l logger.Logger, config *config.Config) *MonitorService {
	return &MonitorService{db: db, repo: repo, bridge: bridge, locker: locker, l: l, config: config, tasks: make(map[string]context.CancelFunc)}
}

// Start spawns the polling goroutine. no-op for terminal payments, unpolled
// methods and demo addresses (nothing real to observe there)
func (s *MonitorService) Start(payment *domain.Payments) {
	if payment.Status.IsTerminal() || payment.Status.IsConfirmed() {
		return
	}
	if !domain.StrToMethod(payment.PaymentMethod).IsPolled() {
		return
	}
	if payment.IsDemo && !s.config.Testing.Enabled {
		return
	}

	deadline := time.Unix(payment.EndTimestamp, 0)
	ceiling := time.Now().Add(time.Duration(s.config.Payment.MonitorHours) * time.Hour)
	if ceiling.Before(deadline) {
		deadline = ceiling
	}

	ctx, cancel := context.WithDeadline(context.Background(), deadline)

	// registration and locker acquisition happen under one mutex, a duplicate
	// start must never orphan the live poller's cancel
	s.mu.Lock()
	if _, exists := s.tasks[payment.PaymentID]; exists {
		s.mu.Unlock()
		cancel()
		return
	}
	if s.locker.IsLocked(payment.PaymentID) {
		s.mu.Unlock()
		cancel()
		return
	}
	s.locker.Lock(payment.PaymentID)
	s.tasks[payment.PaymentID] = cancel
	s.mu.Unlock()

	go s.run(ctx, payment)
}

// Cancel stops the poller for a payment, called on every terminal transition
func (s *MonitorService) Cancel(paymentId string) {
	s.mu.Lock()
	cancel, ok := s.tasks[paymentId]
	if ok {
		delete(s.tasks, paymentId)
	}
	s.mu.Unlock()

	if ok {
		cancel()
	}
}

func (s *MonitorService) run(ctx context.Context, payment *domain.Payments) {
	var errid = logger.GenErrorId()

	defer func() {
		s.locker.Unlock(payment.PaymentID)
		s.Cancel(payment.PaymentID)
	}()

	pollDelay := time.Duration(s.config.Payment.PollSeconds) * time.Second
	method := domain.StrToMethod(payment.PaymentMethod)

	// first observation happens right away, then once per poll interval
	for {
		next, done := s.poll(method, payment, errid)
		payment = next
		if done {
			return
		}

		select {
		case <-ctx.Done():
			// the expiry sweeper owns the expired transition
			return
		case <-time.After(pollDelay):
		}
	}
}

// one observation of the deposit. done means the poller should stop, transient
// errors keep it alive for the next tick
func (s *MonitorService) poll(method domain.Method, payment *domain.Payments, errid string) (*domain.Payments, bool) {
	// re-read, the api may have cancelled or confirmed it meanwhile
	current, err := s.payments.FindGlobal(s.db, payment.PaymentID)
	if err != nil {
		s.l.TemplPaymentErr("monitor find payment error: "+err.Error(), errid, payment.PaymentID, payment.Amount, payment.PaymentCurrency, logger.NA, payment.MerchantID, logger.NA)
		return payment, false
	}
	payment = current

	if payment.Status.IsTerminal() || payment.Status.IsConfirmed() {
		return payment, true
	}

	status, err := s.depositStatus(method, payment)
	if err != nil {
		s.l.TemplPaymentErr("deposit status error: "+err.Error(), errid, payment.PaymentID, payment.PaymentAmount, payment.PaymentCurrency, logger.NA, payment.MerchantID, logger.NA)
		return payment, false
	}

	switch status.Status {
	case natsdomain.DepositStatusPending:
		return payment, false

	case natsdomain.DepositStatusFailed:
		if _, err := s.payments.UpdateStatus(payment.PaymentID, domain.STATUS_FAILED, blockchainData(status)); err != nil {
			s.l.TemplPaymentErr("mark failed error: "+err.Error(), errid, payment.PaymentID, payment.PaymentAmount, payment.PaymentCurrency, logger.NA, payment.MerchantID, logger.NA)
			return payment, false
		}
		return payment, true

	case natsdomain.DepositStatusConfirmed:
		if payment.Status.IsPending() {
			updated, err := s.payments.VerifySignature(payment.PaymentID, blockchainData(status))
			if err != nil {
				s.l.TemplPaymentErr("verify deposit error: "+err.Error(), errid, payment.PaymentID, payment.PaymentAmount, payment.PaymentCurrency, logger.NA, payment.MerchantID, logger.NA)
				return payment, false
			}
			payment = updated
		}

		if status.Confirmations < payment.RequiredConfirmations {
			return payment, false
		}

		if _, err := s.payments.UpdateStatus(payment.PaymentID, domain.STATUS_CONFIRMED, blockchainData(status)); err != nil {
			s.l.TemplPaymentErr("mark confirmed error: "+err.Error(), errid, payment.PaymentID, payment.PaymentAmount, payment.PaymentCurrency, logger.NA, payment.MerchantID, logger.NA)
			return payment, false
		}

		// best effort, the payment stays confirmed either way
		if err := s.bridge.NotifyDeposit(payment.PaymentID, status.TxId, payment.DepositScript, payment.ReclaimScript); err != nil {
			s.l.TemplNatsError("notify deposit error", logger.NA, err)
		}

		return payment, true
	}

	return payment, false
}

func (s *MonitorService) depositStatus(method domain.Method, payment *domain.Payments) (*natsdomain.ResDepositStatus, error) {
	if s.config.Testing.Enabled {
		time.Sleep(time.Duration(s.config.Testing.DepositConfirmDelay) * time.Second)
		return &natsdomain.ResDepositStatus{
			Status:        natsdomain.DepositStatusConfirmed,
			Confirmations: payment.RequiredConfirmations,
			TxId:          gofakeit.UUID(),
			Amount:        payment.PaymentAmount,
			BlockHeight:   int64(gofakeit.Number(800_000, 900_000)),
		}, nil
	}

	return s.bridge.DepositStatus(method, payment.PaymentAddress)
}

// restarts pollers for payments that were active when the process went down
func (s *MonitorService) RunAutostartCheck() {
	payments, err := s.repo.FindByStatus(s.db, domain.STATUS_PENDING)
	if err != nil {
		s.l.TemplPaymentErr("autostart find error: "+err.Error(), logger.GenErrorId(), logger.NA, decimal.Zero, logger.NA, logger.NA, logger.NA, logger.NA)
		return
	}

	processing, err := s.repo.FindByStatus(s.db, domain.STATUS_PROCESSING)
	if err == nil {
		payments = append(payments, processing...)
	}

	now := time.Now().Unix()
	for _, p := range payments {
		if now > p.EndTimestamp {
			continue
		}

		s.Start(p)
		time.Sleep(100 * time.Millisecond)
	}
}

func blockchainData(status *natsdomain.ResDepositStatus) *BlockchainData {
	return &BlockchainData{
		TxId:          status.TxId,
		BlockHeight:   status.BlockHeight,
		Confirmations: status.Confirmations,
	}
}
