// Package chainsim fakes the chain side of the gateway: it hands out
// deposit addresses and walks each deposit through pending -> confirmed
// (or failed) as the api polls it. Real chain clients plug in behind the
// same subjects without touching the api.
package chainsim

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"stackspay/chaind/gateway/config"
	"stackspay/pkg/nats/natsdomain"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
)

type deposit struct {
	mu sync.Mutex

	method    string
	paymentId string
	amount    decimal.Decimal

	polls    int
	failed   bool
	txId     string
	block    int64
	notified bool
}

type Sim struct {
	deposits sync.Map // address -> *deposit

	confirmAfterPolls     int
	requiredConfirmations int
	failRate              float64
}

func New(config *config.Config) *Sim {
	return &Sim{
		confirmAfterPolls:     config.ConfirmAfterPolls,
		requiredConfirmations: config.RequiredConfirmations,
		failRate:              config.FailRate,
	}
}

// NewAddress registers a deposit and returns its address. sbtc deposits get
// script material the signer needs later
func (s *Sim) NewAddress(req *natsdomain.ReqNewAddress) *natsdomain.ResNewAddress {
	res := &natsdomain.ResNewAddress{
		Address: s.address(req.Method),
	}

	if req.Method == "sbtc" {
		res.DepositScript = deriveHex(req.PaymentId, "deposit")
		res.ReclaimScript = deriveHex(req.PaymentId, "reclaim")
		res.SignerPublicKey = deriveHex(req.PaymentId, "signer")
	}

	s.deposits.Store(res.Address, &deposit{
		method:    req.Method,
		paymentId: req.PaymentId,
		amount:    req.Amount,
	})

	return res
}

// Status advances the deposit one poll and reports it
func (s *Sim) Status(address string) (*natsdomain.ResDepositStatus, error) {
	v, ok := s.deposits.Load(address)
	if !ok {
		return nil, fmt.Errorf("unknown deposit address: %s", address)
	}

	d := v.(*deposit)
	d.mu.Lock()
	defer d.mu.Unlock()

	d.polls++

	if d.polls == 1 && s.failRate > 0 && gofakeit.Float64Range(0, 1) < s.failRate {
		d.failed = true
	}

	if d.failed {
		return &natsdomain.ResDepositStatus{Status: natsdomain.DepositStatusFailed}, nil
	}

	if d.polls <= s.confirmAfterPolls {
		return &natsdomain.ResDepositStatus{Status: natsdomain.DepositStatusPending}, nil
	}

	if d.txId == "" {
		d.txId = deriveHex(d.paymentId, "tx")
		d.block = int64(gofakeit.Number(800_000, 900_000))
	}

	confirmations := d.polls - s.confirmAfterPolls
	if confirmations > s.requiredConfirmations {
		confirmations = s.requiredConfirmations
	}

	return &natsdomain.ResDepositStatus{
		Status:        natsdomain.DepositStatusConfirmed,
		Confirmations: confirmations,
		TxId:          d.txId,
		Amount:        d.amount,
		BlockHeight:   d.block,
	}, nil
}

// Notify marks the deposit as handed to the signer
func (s *Sim) Notify(req *natsdomain.ReqNotifyDeposit) {
	s.deposits.Range(func(k, v any) bool {
		d := v.(*deposit)
		if d.paymentId == req.PaymentId {
			d.mu.Lock()
			d.notified = true
			d.mu.Unlock()
			return false
		}
		return true
	})
}

func (s *Sim) address(method string) string {
	if method == "btc" {
		return gofakeit.BitcoinAddress()
	}
	return "ST" + strings.ToUpper(gofakeit.LetterN(38))
}

// stable pseudo material, same payment id always yields the same bytes
func deriveHex(paymentId string, kind string) string {
	sum := sha256.Sum256([]byte(paymentId + ":" + kind))
	return hex.EncodeToString(sum[:])
}
