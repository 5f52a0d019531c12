package main

import (
	"stackspay/chaind/gateway/chainsim"
	"stackspay/chaind/gateway/config"
	"stackspay/chaind/gateway/nats"
	"stackspay/pkg/dlog"
)

func main() {

	dlog := dlog.Init()

	config := config.ReadConfig()
	ns, c := nats.Init(config)

	sim := chainsim.New(config)

	app := nats.App{
		Sim:    sim,
		Config: config,
		Ns:     ns,
		C:      c,
		Dlog:   dlog,
	}

	app.Run(config, ns)
}
