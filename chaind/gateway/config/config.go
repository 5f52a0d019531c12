package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Prod_env bool `envconfig:"PROD_ENV"`

	NatsServers []string `envconfig:"NATS_SERVERS" default:"127.0.0.1:4222"`
	Servers     string   `ignored:"true"` // formatted connect string with credentials

	Testnet bool `envconfig:"TESTNET" default:"true"`

	// deposit simulation knobs
	ConfirmAfterPolls     int     `envconfig:"CONFIRM_AFTER_POLLS" default:"2"`
	RequiredConfirmations int     `envconfig:"REQUIRED_CONFIRMATIONS" default:"6"`
	FailRate              float64 `envconfig:"FAIL_RATE" default:"0"`
}

func ReadConfig() *Config {

	var config Config
	if err := envconfig.Process("chaind", &config); err != nil {
		panic(err)
	}

	user, err := os.ReadFile(os.Getenv("SECRETS") + "/nats-user.txt")
	if err != nil {
		panic(err)
	}

	pass, err := os.ReadFile(os.Getenv("SECRETS") + "/nats-password.txt")
	if err != nil {
		panic(err)
	}

	var formatedServers string
	for _, x := range config.NatsServers {
		connectUrl := fmt.Sprintf("nats://%s:%s@%s,", user, pass, x)
		formatedServers += connectUrl
	}

	config.Servers = formatedServers

	return &config
}
