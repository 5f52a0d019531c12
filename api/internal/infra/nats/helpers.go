package nats

import (
	"encoding/json"
	"fmt"
	"stackspay/api/internal/domain"
	"stackspay/pkg/nats/natsdomain"
	"stackspay/pkg/utils"

	"github.com/shopspring/decimal"
)

// checks if there is an error in the response. if there is, it returns true and the error message
func HelpersIsError(data []byte) (bool, string) {
	if len(data) < 6 {
		return false, ""
	}

	if string(data[0:6]) == "error:" {
		return true, string(data[6:])
	}
	return false, ""
}

// deposit address allocation wrapper
//
//	method - payment method (btc, stx, sbtc)
//	receivingAddress - merchant wallet the deposit settles to, empty in demo mode
func (n *NatsInfra) CreateDepositAddress(method domain.Method, paymentId string, receivingAddress string, amount decimal.Decimal) (*natsdomain.ResNewAddress, error) {
	data, err := json.Marshal(natsdomain.ReqNewAddress{
		Method:        method.ToString(),
		PaymentId:     paymentId,
		StacksAddress: receivingAddress,
		Amount:        amount,
	})
	if err != nil {
		return nil, err
	}

	resp, err := n.Ns.ReqAndRecv(natsdomain.SubjNewAddress, data)
	if err != nil {
		return nil, err
	}

	iserr, errmsg := HelpersIsError(resp)
	if iserr {
		return nil, fmt.Errorf("%s", errmsg)
	}

	address, err := utils.Unmarshal[natsdomain.ResNewAddress](resp)
	if err != nil {
		return nil, err
	}

	return address, nil
}

func (n *NatsInfra) DepositStatus(method domain.Method, address string) (*natsdomain.ResDepositStatus, error) {
	data, err := json.Marshal(natsdomain.ReqDepositStatus{Method: method.ToString(), Address: address})
	if err != nil {
		return nil, fmt.Errorf("marshal error: %w", err)
	}

	resp, err := n.ReqAndRecv(natsdomain.SubjDepositStatus, data)
	if err != nil {
		return nil, fmt.Errorf("reqAndRecv error: %w", err)
	}

	isError, errmsg := HelpersIsError(resp)
	if isError {
		return nil, fmt.Errorf("error in deposit status response: %s", errmsg)
	}

	status, err := utils.Unmarshal[natsdomain.ResDepositStatus](resp)
	if err != nil {
		return nil, fmt.Errorf("unmarshal error: %w", err)
	}

	return status, nil
}

// best effort, a failure here never rolls the payment back
func (n *NatsInfra) NotifyDeposit(paymentId string, txId string, depositScript string, reclaimScript string) error {
	data, err := json.Marshal(natsdomain.ReqNotifyDeposit{
		PaymentId:     paymentId,
		TxId:          txId,
		DepositScript: depositScript,
		ReclaimScript: reclaimScript,
	})
	if err != nil {
		return err
	}

	return n.JsPublishMsgId(natsdomain.SubjJsNotifyDeposit.String(), data, natsdomain.NewMsgId(paymentId, natsdomain.MsgActionNotify))
}
