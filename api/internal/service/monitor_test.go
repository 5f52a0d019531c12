package service

import (
	"sync"
	"testing"
	"time"

	"stackspay/api/internal/config"
	"stackspay/api/internal/domain"
	"stackspay/api/internal/infra/cache"
	"stackspay/api/internal/logger"
	"stackspay/api/internal/repository"
	"stackspay/pkg/nats/natsdomain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// orchestrator stand-in for the monitor, holds one payment
type monitorFakePayments struct {
	mu       sync.Mutex
	payment  *domain.Payments
	statuses []domain.Status
}

func (m *monitorFakePayments) FindGlobal(tx *gorm.DB, paymentId string) (*domain.Payments, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *m.payment
	return &cp, nil
}

func (m *monitorFakePayments) VerifySignature(paymentId string, data *BlockchainData) (*domain.Payments, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payment.Status = domain.STATUS_PROCESSING
	cp := *m.payment
	return &cp, nil
}

func (m *monitorFakePayments) UpdateStatus(paymentId string, status domain.Status, data *BlockchainData) (*domain.Payments, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payment.Status = status
	m.statuses = append(m.statuses, status)
	cp := *m.payment
	return &cp, nil
}

func (m *monitorFakePayments) Create(merchant *domain.Merchants, opts CreatePaymentOpts) (*CreatedPayment, error) {
	return nil, nil
}

func (m *monitorFakePayments) List(merchantID string, filters repository.ListFilters) ([]domain.Payments, int64, error) {
	return nil, 0, nil
}

func (m *monitorFakePayments) Refund(paymentId string, merchantId string, opts RefundOpts) (*domain.Payments, error) {
	return nil, nil
}

func (m *monitorFakePayments) Cancel(paymentId string, merchantId string) (*domain.Payments, error) {
	return nil, nil
}

func (m *monitorFakePayments) UpdateAndSave(tx *gorm.DB, payment *domain.Payments) error { return nil }

func (m *monitorFakePayments) recorded() []domain.Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Status(nil), m.statuses...)
}

// serves a fixed deposit status and counts polls
type monitorBridge struct {
	mu     sync.Mutex
	status *natsdomain.ResDepositStatus
	calls  int
}

func (b *monitorBridge) CreateDepositAddress(method domain.Method, paymentId string, receivingAddress string, amount decimal.Decimal) (*natsdomain.ResNewAddress, error) {
	return nil, nil
}

func (b *monitorBridge) DepositStatus(method domain.Method, address string) (*natsdomain.ResDepositStatus, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	cp := *b.status
	return &cp, nil
}

func (b *monitorBridge) NotifyDeposit(paymentId string, txId string, depositScript string, reclaimScript string) error {
	return nil
}

func (b *monitorBridge) polls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

type monitorFixture struct {
	monitor  *MonitorService
	payments *monitorFakePayments
	bridge   *monitorBridge
	locker   *LockerService
}

func newMonitorFixture(payment *domain.Payments, status *natsdomain.ResDepositStatus) *monitorFixture {
	cfg := &config.Config{}
	// a poll interval far beyond the test deadline, only the immediate
	// first observation can make these tests pass
	cfg.Payment.PollSeconds = 300
	cfg.Payment.MonitorHours = 24

	l := logger.Init(cfg)

	f := &monitorFixture{
		payments: &monitorFakePayments{payment: payment},
		bridge:   &monitorBridge{status: status},
		locker:   NewLockerService(cache.InitStorage()),
	}

	f.monitor = NewMonitorService(nil, nil, f.bridge, f.locker, l, cfg)
	f.monitor.payments = f.payments
	return f
}

func monitorTestPayment() *domain.Payments {
	return &domain.Payments{
		PaymentID:             "a2e8c9d5-aaaa-bbbb-cccc-444455556666",
		MerchantID:            "m1",
		Status:                domain.STATUS_PENDING,
		PaymentMethod:         "btc",
		PaymentAddress:        "bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq",
		PaymentAmount:         decimal.NewFromFloat(0.002),
		PaymentCurrency:       "BTC",
		RequiredConfirmations: 1,
		EndTimestamp:          time.Now().Add(time.Hour).Unix(),
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestMonitorPollsImmediately(t *testing.T) {
	f := newMonitorFixture(monitorTestPayment(), &natsdomain.ResDepositStatus{
		Status:        natsdomain.DepositStatusConfirmed,
		Confirmations: 1,
		TxId:          "0xabc",
	})

	f.monitor.Start(f.payments.payment)

	// first observation happens right away, not one poll interval later
	waitFor(t, "confirmed status", func() bool {
		statuses := f.payments.recorded()
		return len(statuses) == 1 && statuses[0] == domain.STATUS_CONFIRMED
	})
	if polls := f.bridge.polls(); polls != 1 {
		t.Fatalf("bridge polled %d times, want 1", polls)
	}

	// the finished poller releases its lock and task slot
	waitFor(t, "lock release", func() bool {
		return !f.locker.IsLocked(f.payments.payment.PaymentID)
	})
}

func TestMonitorDuplicateStart(t *testing.T) {
	payment := monitorTestPayment()
	f := newMonitorFixture(payment, &natsdomain.ResDepositStatus{
		Status: natsdomain.DepositStatusPending,
	})

	f.monitor.Start(payment)
	waitFor(t, "first poll", func() bool { return f.bridge.polls() == 1 })

	// a second start for the same payment must be a no-op
	f.monitor.Start(payment)
	time.Sleep(50 * time.Millisecond)
	if polls := f.bridge.polls(); polls != 1 {
		t.Fatalf("duplicate start spawned a second poller, %d polls", polls)
	}

	// cancel must reach the live poller, not a leftover cancel from the
	// losing duplicate
	f.monitor.Cancel(payment.PaymentID)
	waitFor(t, "poller shutdown", func() bool {
		return !f.locker.IsLocked(payment.PaymentID)
	})
}
