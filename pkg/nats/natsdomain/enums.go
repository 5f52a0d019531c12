package natsdomain

type ActionType string

const (
	// chaind -> api
	MsgActionError ActionType = "error"
	// chaind -> api
	MsgActionInfo ActionType = "info"
	// api -> chaind, deposit script material for the signer
	MsgActionNotify ActionType = "notify"
)

// subjects for nats

// .js. - jetstream
var SubjectsJetStream = [...]string{"chain.js.notify_deposit"}

// .core. - nats core
var Subjects = [...]string{"chain.core.new_address", "chain.core.deposit_status", "chain.core.ping"}

type SubjType uint8
type SubjJsType uint8

// nats core subjects
const (
	SubjNewAddress SubjType = iota
	SubjDepositStatus
	SubjPing
)

// nats jetstream subjects
const (
	SubjJsNotifyDeposit SubjJsType = iota
)

func (s SubjType) String() string {
	return Subjects[s]
}

func (s SubjJsType) String() string {
	return SubjectsJetStream[s]
}

// deposit status reported by chaind
const (
	DepositStatusPending   = "pending"
	DepositStatusConfirmed = "confirmed"
	DepositStatusFailed    = "failed"
)
