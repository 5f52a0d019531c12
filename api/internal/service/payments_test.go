package service

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"stackspay/api/internal/config"
	"stackspay/api/internal/domain"
	"stackspay/api/internal/infra/cache"
	"stackspay/api/internal/logger"
	"stackspay/api/internal/repository"
	"stackspay/pkg/nats/natsdomain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// in-memory payments repo, tx is ignored
type fakePaymentsRepo struct {
	mu       sync.Mutex
	payments map[string]*domain.Payments
}

func newFakePaymentsRepo() *fakePaymentsRepo {
	return &fakePaymentsRepo{payments: map[string]*domain.Payments{}}
}

func (r *fakePaymentsRepo) Create(tx *gorm.DB, payment *domain.Payments) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payments[payment.PaymentID] = payment
	return nil
}

func (r *fakePaymentsRepo) Update(tx *gorm.DB, payment *domain.Payments) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payments[payment.PaymentID] = payment
	return nil
}

func (r *fakePaymentsRepo) FindByID(tx *gorm.DB, paymentId string) (*domain.Payments, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	payment, ok := r.payments[paymentId]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return payment, nil
}

func (r *fakePaymentsRepo) FindByStatus(tx *gorm.DB, status domain.Status) ([]*domain.Payments, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Payments
	for _, p := range r.payments {
		if p.Status == status {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePaymentsRepo) List(tx *gorm.DB, merchantID string, filters repository.ListFilters) ([]domain.Payments, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Payments
	for _, p := range r.payments {
		if p.MerchantID == merchantID {
			out = append(out, *p)
		}
	}
	return out, int64(len(out)), nil
}

type fakeRefundsRepo struct {
	mu      sync.Mutex
	refunds []*domain.Refunds
}

func (r *fakeRefundsRepo) Create(tx *gorm.DB, refund *domain.Refunds) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refunds = append(r.refunds, refund)
	return nil
}

func (r *fakeRefundsRepo) FindByPaymentID(tx *gorm.DB, paymentID string) ([]domain.Refunds, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Refunds
	for _, x := range r.refunds {
		if x.PaymentID == paymentID {
			out = append(out, *x)
		}
	}
	return out, nil
}

func (r *fakeRefundsRepo) SumByPaymentID(tx *gorm.DB, paymentID string) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sum := decimal.Zero
	for _, x := range r.refunds {
		if x.PaymentID == paymentID {
			sum = sum.Add(x.Amount)
		}
	}
	return sum, nil
}

type fakeBridge struct {
	mu    sync.Mutex
	calls int
	fail  bool
}

func (b *fakeBridge) CreateDepositAddress(method domain.Method, paymentId string, receivingAddress string, amount decimal.Decimal) (*natsdomain.ResNewAddress, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	if b.fail {
		return nil, fmt.Errorf("no responders available")
	}
	res := &natsdomain.ResNewAddress{Address: "ST2QKZ4FKHAH1NQKYKYAYZPY440FEPK7GZ1R5HBP2"}
	if method == domain.METHOD_SBTC {
		res.DepositScript = "aa"
		res.ReclaimScript = "bb"
		res.SignerPublicKey = "cc"
	}
	return res, nil
}

func (b *fakeBridge) DepositStatus(method domain.Method, address string) (*natsdomain.ResDepositStatus, error) {
	return &natsdomain.ResDepositStatus{Status: natsdomain.DepositStatusPending}, nil
}

func (b *fakeBridge) NotifyDeposit(paymentId string, txId string, depositScript string, reclaimScript string) error {
	return nil
}

type fakeMonitor struct {
	mu        sync.Mutex
	started   []string
	cancelled []string
}

func (m *fakeMonitor) Start(payment *domain.Payments) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = append(m.started, payment.PaymentID)
}

func (m *fakeMonitor) Cancel(paymentId string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelled = append(m.cancelled, paymentId)
}

func (m *fakeMonitor) RunAutostartCheck() {}

type fakeWebhookSender struct {
	mu     sync.Mutex
	events []string
}

func (w *fakeWebhookSender) Trigger(payment *domain.Payments, eventType string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.events = append(w.events, eventType)
	return nil
}

func (w *fakeWebhookSender) Deliver(url string, secret string, webhookID string, body []byte) error {
	return nil
}
func (w *fakeWebhookSender) DeliverSigned(url string, signature string, body []byte) error {
	return nil
}
func (w *fakeWebhookSender) VerifySignature(payload []byte, signature string, secret string) bool {
	return true
}
func (w *fakeWebhookSender) Test(url string, secret string) error { return nil }
func (w *fakeWebhookSender) UpdateList(proxies []string)          {}
func (w *fakeWebhookSender) GetList() []string                    { return nil }

func (w *fakeWebhookSender) triggered() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.events...)
}

type paymentsFixture struct {
	service *PaymentsService
	repo    *fakePaymentsRepo
	refunds *fakeRefundsRepo
	bridge  *fakeBridge
	monitor *fakeMonitor
	webhook *fakeWebhookSender
}

func newPaymentsFixture() *paymentsFixture {
	cfg := &config.Config{}
	cfg.Payment.ExpiryMinutes = 60
	cfg.Payment.RequiredConfirmations = 6

	l := logger.Init(cfg)

	f := &paymentsFixture{
		repo:    newFakePaymentsRepo(),
		refunds: &fakeRefundsRepo{},
		bridge:  &fakeBridge{},
		monitor: &fakeMonitor{},
		webhook: &fakeWebhookSender{},
	}

	f.service = NewPaymentsService(nil, f.repo, f.refunds, testConverter(), f.bridge, f.monitor, f.webhook, l, cache.InitStorage(), cfg)
	return f
}

func testMerchant() *domain.Merchants {
	return &domain.Merchants{
		MerchantID:     "a2e8c9d5-1111-2222-3333-444455556666",
		MerchantName:   "shop",
		StacksAddress:  "ST2QKZ4FKHAH1NQKYKYAYZPY440FEPK7GZ1R5HBP2",
		BitcoinAddress: "bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq",
	}
}

func createOpts() CreatePaymentOpts {
	return CreatePaymentOpts{
		Amount:        decimal.NewFromInt(100),
		Currency:      domain.CURRENCY_USD,
		PaymentMethod: domain.METHOD_SBTC,
		PayoutMethod:  domain.PAYOUT_USD,
	}
}

func TestCreatePayment(t *testing.T) {
	f := newPaymentsFixture()

	created, err := f.service.Create(testMerchant(), createOpts())
	if err != nil {
		t.Fatal(err)
	}

	p := created.Payment
	if p.Status != domain.STATUS_PENDING {
		t.Fatalf("status = %s, want pending", p.Status.ToString())
	}
	if p.PaymentCurrency != "sbtc" || p.PayoutCurrency != "usd" {
		t.Fatalf("legs = %s -> %s", p.PaymentCurrency, p.PayoutCurrency)
	}
	if p.IsDemo {
		t.Fatal("merchant has a receiving wallet, payment must not be demo")
	}
	if p.DepositScript == "" || p.ReclaimScript == "" {
		t.Fatal("sbtc payment missing script material")
	}
	if !p.TotalFees.IsPositive() {
		t.Fatalf("total fees = %s, want > 0", p.TotalFees)
	}
	if created.QrPayload == "" || created.Instructions == "" {
		t.Fatal("qr payload and instructions must be present")
	}
	if f.bridge.calls != 1 {
		t.Fatalf("bridge called %d times, want 1", f.bridge.calls)
	}
}

func TestCreatePaymentDemoFallback(t *testing.T) {
	f := newPaymentsFixture()

	merchant := testMerchant()
	merchant.StacksAddress = ""

	created, err := f.service.Create(merchant, createOpts())
	if err != nil {
		t.Fatal(err)
	}

	if !created.Payment.IsDemo {
		t.Fatal("missing receiving wallet must produce a demo payment")
	}
	if created.Payment.PaymentAddress == "" {
		t.Fatal("demo payment still needs an address")
	}
	if f.bridge.calls != 0 {
		t.Fatal("demo fallback must not hit the chain bridge")
	}
}

func TestCreatePaymentBridgeFailure(t *testing.T) {
	f := newPaymentsFixture()
	f.bridge.fail = true

	_, err := f.service.Create(testMerchant(), createOpts())
	if !errors.Is(err, domain.ErrChainBridge) {
		t.Fatalf("err = %v, want ErrChainBridge", err)
	}
	if len(f.repo.payments) != 0 {
		t.Fatal("failed creation must not leave a payment row")
	}
}

func TestCreatePaymentValidation(t *testing.T) {
	f := newPaymentsFixture()

	_, err := f.service.Create(nil, createOpts())
	if !errors.Is(err, domain.ErrMerchantNotFound) {
		t.Fatalf("nil merchant: err = %v", err)
	}

	opts := createOpts()
	opts.Currency = domain.CURRENCY_NONE
	if _, err := f.service.Create(testMerchant(), opts); !errors.Is(err, domain.ErrInvalidCurrency) {
		t.Fatalf("none currency: err = %v", err)
	}

	opts = createOpts()
	opts.PaymentMethod = domain.METHOD_NONE
	if _, err := f.service.Create(testMerchant(), opts); !errors.Is(err, domain.ErrInvalidMethod) {
		t.Fatalf("none method: err = %v", err)
	}
}

func TestVerifySignatureOnce(t *testing.T) {
	f := newPaymentsFixture()

	created, err := f.service.Create(testMerchant(), createOpts())
	if err != nil {
		t.Fatal(err)
	}

	data := &BlockchainData{TxId: "0xabc", BlockHeight: 123, Confirmations: 1}

	p, err := f.service.VerifySignature(created.Payment.PaymentID, data)
	if err != nil {
		t.Fatal(err)
	}
	if p.Status != domain.STATUS_PROCESSING {
		t.Fatalf("status = %s, want processing", p.Status.ToString())
	}
	if p.TxID != "0xabc" || p.BlockHeight != 123 {
		t.Fatal("blockchain data not recorded")
	}

	// a second verification reports the conflict
	if _, err := f.service.VerifySignature(created.Payment.PaymentID, data); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("second verify: err = %v, want ErrInvalidState", err)
	}
}

func TestUpdateStatusConfirm(t *testing.T) {
	f := newPaymentsFixture()

	created, err := f.service.Create(testMerchant(), createOpts())
	if err != nil {
		t.Fatal(err)
	}
	paymentId := created.Payment.PaymentID

	// confirmed straight from pending is not reachable in the graph
	if _, err := f.service.UpdateStatus(paymentId, domain.STATUS_CONFIRMED, nil); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("confirm from pending: err = %v", err)
	}

	if _, err := f.service.VerifySignature(paymentId, &BlockchainData{TxId: "0xabc"}); err != nil {
		t.Fatal(err)
	}

	p, err := f.service.UpdateStatus(paymentId, domain.STATUS_CONFIRMED, &BlockchainData{Confirmations: 6})
	if err != nil {
		t.Fatal(err)
	}

	if p.Status != domain.STATUS_CONFIRMED {
		t.Fatalf("status = %s, want confirmed", p.Status.ToString())
	}
	if p.ConfirmedAt == nil {
		t.Fatal("confirmed payment missing confirmation time")
	}
	if !p.FinalPayoutAmount.IsPositive() {
		t.Fatalf("final payout amount = %s, want > 0", p.FinalPayoutAmount)
	}
	if len(f.monitor.cancelled) != 1 {
		t.Fatal("confirmation must cancel the monitor")
	}
}

func TestUpdateStatusRejectsArbitraryTargets(t *testing.T) {
	f := newPaymentsFixture()

	created, err := f.service.Create(testMerchant(), createOpts())
	if err != nil {
		t.Fatal(err)
	}

	for _, status := range []domain.Status{domain.STATUS_PENDING, domain.STATUS_EXPIRED, domain.STATUS_CANCELLED, domain.STATUS_REFUNDED} {
		if _, err := f.service.UpdateStatus(created.Payment.PaymentID, status, nil); !errors.Is(err, domain.ErrStatusNotAllowed) {
			t.Fatalf("status %s: err = %v, want ErrStatusNotAllowed", status.ToString(), err)
		}
	}
}

func confirmPayment(t *testing.T, f *paymentsFixture) *domain.Payments {
	t.Helper()

	created, err := f.service.Create(testMerchant(), createOpts())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.service.VerifySignature(created.Payment.PaymentID, &BlockchainData{TxId: "0xabc"}); err != nil {
		t.Fatal(err)
	}
	p, err := f.service.UpdateStatus(created.Payment.PaymentID, domain.STATUS_CONFIRMED, nil)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestRefundPartialThenFull(t *testing.T) {
	f := newPaymentsFixture()
	p := confirmPayment(t, f)

	merchant := testMerchant()
	half := p.PaymentAmount.Div(decimal.NewFromInt(2))

	p, err := f.service.Refund(p.PaymentID, merchant.MerchantID, RefundOpts{Amount: half, TransactionID: "0xr1"})
	if err != nil {
		t.Fatal(err)
	}
	if p.Status != domain.STATUS_PARTIALLY_REFUNDED {
		t.Fatalf("status = %s, want partially_refunded", p.Status.ToString())
	}
	if p.Refunded {
		t.Fatal("partial refund must not flag the payment refunded")
	}

	p, err = f.service.Refund(p.PaymentID, merchant.MerchantID, RefundOpts{Amount: p.RefundRemaining(), TransactionID: "0xr2"})
	if err != nil {
		t.Fatal(err)
	}
	if p.Status != domain.STATUS_REFUNDED || !p.Refunded {
		t.Fatalf("status = %s refunded = %v, want refunded/true", p.Status.ToString(), p.Refunded)
	}

	// nothing left to refund
	if _, err := f.service.Refund(p.PaymentID, merchant.MerchantID, RefundOpts{Amount: half, TransactionID: "0xr3"}); !errors.Is(err, domain.ErrAlreadyRefunded) {
		t.Fatalf("refund after full: err = %v", err)
	}
}

func TestRefundValidation(t *testing.T) {
	f := newPaymentsFixture()
	p := confirmPayment(t, f)
	merchant := testMerchant()

	if _, err := f.service.Refund(p.PaymentID, "some-other-merchant", RefundOpts{Amount: decimal.NewFromFloat(0.0001), TransactionID: "0xr1"}); !errors.Is(err, domain.ErrPaymentNotOwned) {
		t.Fatalf("foreign merchant: err = %v", err)
	}

	if _, err := f.service.Refund(p.PaymentID, merchant.MerchantID, RefundOpts{Amount: decimal.NewFromFloat(0.0001)}); !errors.Is(err, domain.ErrMissingRefundTx) {
		t.Fatalf("missing tx: err = %v", err)
	}

	over := p.RefundRemaining().Add(decimal.NewFromInt(1))
	if _, err := f.service.Refund(p.PaymentID, merchant.MerchantID, RefundOpts{Amount: over, TransactionID: "0xr1"}); !errors.Is(err, domain.ErrInvalidRefundAmount) {
		t.Fatalf("over remaining: err = %v", err)
	}

	if _, err := f.service.Refund(p.PaymentID, merchant.MerchantID, RefundOpts{Amount: decimal.Zero, TransactionID: "0xr1"}); !errors.Is(err, domain.ErrInvalidRefundAmount) {
		t.Fatalf("zero amount: err = %v", err)
	}
}

func TestRefundRequiresConfirmed(t *testing.T) {
	f := newPaymentsFixture()

	created, err := f.service.Create(testMerchant(), createOpts())
	if err != nil {
		t.Fatal(err)
	}

	_, err = f.service.Refund(created.Payment.PaymentID, testMerchant().MerchantID, RefundOpts{Amount: decimal.NewFromFloat(0.0001), TransactionID: "0xr1"})
	if !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("refund pending payment: err = %v", err)
	}
}

func TestCancelPayment(t *testing.T) {
	f := newPaymentsFixture()

	created, err := f.service.Create(testMerchant(), createOpts())
	if err != nil {
		t.Fatal(err)
	}
	merchant := testMerchant()

	p, err := f.service.Cancel(created.Payment.PaymentID, merchant.MerchantID)
	if err != nil {
		t.Fatal(err)
	}
	if p.Status != domain.STATUS_CANCELLED {
		t.Fatalf("status = %s, want cancelled", p.Status.ToString())
	}

	// terminal now
	if _, err := f.service.Cancel(p.PaymentID, merchant.MerchantID); !errors.Is(err, domain.ErrAlreadyTerminal) {
		t.Fatalf("cancel cancelled: err = %v", err)
	}
}

// confirmed is not terminal, an explicit merchant cancel still applies
func TestCancelConfirmedPayment(t *testing.T) {
	f := newPaymentsFixture()
	confirmed := confirmPayment(t, f)

	p, err := f.service.Cancel(confirmed.PaymentID, testMerchant().MerchantID)
	if err != nil {
		t.Fatal(err)
	}
	if p.Status != domain.STATUS_CANCELLED {
		t.Fatalf("status = %s, want cancelled", p.Status.ToString())
	}
}

func TestFindGlobalInvalidId(t *testing.T) {
	f := newPaymentsFixture()

	if _, err := f.service.FindGlobal(nil, "not-a-uuid"); !errors.Is(err, domain.ErrInvalidPaymentId) {
		t.Fatalf("err = %v, want ErrInvalidPaymentId", err)
	}

	if _, err := f.service.FindGlobal(nil, "a2e8c9d5-1111-2222-3333-444455556666"); !errors.Is(err, domain.ErrPaymentIdNotFound) {
		t.Fatalf("err = %v, want ErrPaymentIdNotFound", err)
	}
}
