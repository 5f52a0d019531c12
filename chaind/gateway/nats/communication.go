package nats

import (
	"fmt"
	"sync"

	"stackspay/chaind/gateway/chainsim"
	"stackspay/chaind/gateway/config"
	"stackspay/pkg/dlog"
	"stackspay/pkg/nats/natsdomain"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

type App struct {
	Sim    *chainsim.Sim
	Config *config.Config
	Ns     *natsdomain.Ns
	C      jetstream.Consumer
	Dlog   dlog.Dlog
}

func (app *App) natsCoreHandler(msg *nats.Msg) {

	switch msg.Subject {
	case natsdomain.SubjNewAddress.String():
		app.NewAddressHandler(msg)
	case natsdomain.SubjDepositStatus.String():
		app.DepositStatusHandler(msg)
	case natsdomain.SubjPing.String():
		msg.Respond([]byte("pong"))
	}

}

func (app *App) consumerHandler(msg jetstream.Msg) {

	meta, _ := msg.Metadata()
	if meta != nil {
		if meta.NumDelivered > 6 {
			fmt.Println("Too many deliveries", meta.NumDelivered)
			msg.Ack()
			return
		}
	}

	switch msg.Subject() {
	case natsdomain.SubjJsNotifyDeposit.String():
		app.NotifyDepositHandler(msg)

	default:
		fmt.Println("invalid subject: " + msg.Subject())
	}
}

const WORKERS = 10

func (app *App) Run(c *config.Config, ns *natsdomain.Ns) {

	_, err := app.C.Consume(app.consumerHandler)
	if err != nil {
		fmt.Println("Consume error: ", err)
		return
	}

	//  nats core

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		for range WORKERS {
			_, err := ns.Nc.QueueSubscribe("chain.core.*", "chain_workers", app.natsCoreHandler)
			if err != nil {
				fmt.Println("QueueSubscribe error: ", err)
				wg.Done()
				break
			}
		}
	}()
	wg.Wait()

	// jetstream
}
