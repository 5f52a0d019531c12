package nats

import (
	"encoding/json"
	"fmt"

	"stackspay/pkg/nats/natsdomain"
	"stackspay/pkg/utils"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

func (app *App) NewAddressHandler(msg *nats.Msg) {

	req, err := utils.Unmarshal[natsdomain.ReqNewAddress](msg.Data)
	if err != nil {
		msg.Respond([]byte("error: " + err.Error()))
		return
	}

	if req.Method == "" || req.PaymentId == "" {
		msg.Respond([]byte("error: method and payment id are required"))
		return
	}

	res := app.Sim.NewAddress(req)
	app.Dlog.Log("new address", "method", req.Method, "payment_id", req.PaymentId, "address", res.Address)

	data, err := json.Marshal(res)
	if err != nil {
		msg.Respond([]byte("error: " + err.Error()))
		return
	}

	msg.Respond(data)
}

func (app *App) DepositStatusHandler(msg *nats.Msg) {

	req, err := utils.Unmarshal[natsdomain.ReqDepositStatus](msg.Data)
	if err != nil {
		msg.Respond([]byte("error: " + err.Error()))
		return
	}

	res, err := app.Sim.Status(req.Address)
	if err != nil {
		msg.Respond([]byte("error: " + err.Error()))
		return
	}

	data, err := json.Marshal(res)
	if err != nil {
		msg.Respond([]byte("error: " + err.Error()))
		return
	}

	msg.Respond(data)
}

func (app *App) NotifyDepositHandler(msg jetstream.Msg) {

	req, err := utils.Unmarshal[natsdomain.ReqNotifyDeposit](msg.Data())
	if err != nil {
		fmt.Println("error: " + err.Error())
		msg.Ack()
		return
	}

	app.Sim.Notify(req)
	app.Dlog.Log("deposit notify", "payment_id", req.PaymentId, "tx_id", req.TxId)

	msg.Ack()
}
