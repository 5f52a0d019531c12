package natsdomain

import (
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/shopspring/decimal"
)

// nats struct
type Ns struct {
	Nc *nats.Conn
	Js jetstream.JetStream
}

type Error struct {
	IsError   bool
	Message   string
	Timestamp time.Time
}

// api -> chaind, allocate a deposit address for a payment
type ReqNewAddress struct {
	Method        string // btc / stx / sbtc
	PaymentId     string
	StacksAddress string // merchant receiving address, empty in demo mode
	Amount        decimal.Decimal
}

type ResNewAddress struct {
	Address string
	// present for sbtc deposits only
	DepositScript   string
	ReclaimScript   string
	SignerPublicKey string
}

// api -> chaind, poll a deposit address
type ReqDepositStatus struct {
	Method  string
	Address string
}

type ResDepositStatus struct {
	Status        string // pending / confirmed / failed
	Confirmations int
	TxId          string
	Amount        decimal.Decimal
	BlockHeight   int64
}

// api -> chaind (jetstream), hand script material to the signer after a
// confirmed deposit. best effort, never rolls a payment back
type ReqNotifyDeposit struct {
	PaymentId     string
	TxId          string
	DepositScript string
	ReclaimScript string
}
