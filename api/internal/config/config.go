package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"gorm.io/gorm"
)

type Config struct {
	DB *gorm.DB

	ProxyPath string   `toml:"proxy_path"` // used in webhook-sender, optional
	ProxyList []string `toml:"-"`          // reads proxies from ProxyPath

	Prod_env bool

	PrivateKey string `toml:"private_key"` // Access header for admin routes

	Postgres struct {
		Host     string
		User     string
		Password string
		Db_name  string
		Port     uint16
		Ssl_mode string
	}
	Nats struct {
		Servers     string
		TomlServers []string `toml:"servers"`
	}
	Api struct {
		Ipv4  string
		Proto string
	} `toml:"stackspay_web"`

	Rates struct {
		ProviderUrl    string `toml:"provider_url"` // quote endpoint, %s = convert currency
		ApiKey         string `toml:"api_key"`
		RefreshSeconds int    `toml:"refresh_seconds"` // min seconds between provider hits
	} `toml:"rates"`

	Payment struct {
		ExpiryMinutes         int `toml:"expiry_minutes"`         // payment lifetime, default 1440
		PollSeconds           int `toml:"poll_seconds"`           // deposit poll cadence, default 30
		MonitorHours          int `toml:"monitor_hours"`          // monitor wall-clock ceiling, default 24
		RequiredConfirmations int `toml:"required_confirmations"` // default 6
	} `toml:"payment"`

	Testing struct {
		Enabled             bool
		DepositConfirmDelay int `toml:"deposit_confirm_delay"` // seconds until chaind reports confirmed
	} `toml:"testing"`
}

func ReadConfig() *Config {
	byte_config, err := os.ReadFile(os.Getenv("CONFIG"))
	if err != nil {
		panic(err)
	}

	var config Config
	_, err = toml.Decode(string(byte_config), &config)
	if err != nil {
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
	for _, x := range config.Nats.TomlServers {
		connectUrl := fmt.Sprintf("nats://%s:%s@%s,", user, pass, string(x))
		formatedServers += connectUrl
	}

	config.Nats.Servers = formatedServers

	// webhook proxies, optional
	if config.ProxyPath != "" {
		config.ProxyList = GetProxyList(config.ProxyPath)
	}

	if config.Prod_env && config.Testing.Enabled {
		panic("cannot use testing in prod")
	}

	config.fillDefaults()

	return &config
}

func (c *Config) fillDefaults() {
	if c.Rates.RefreshSeconds == 0 {
		c.Rates.RefreshSeconds = 60
	}
	if c.Payment.ExpiryMinutes == 0 {
		c.Payment.ExpiryMinutes = 24 * 60
	}
	if c.Payment.PollSeconds == 0 {
		c.Payment.PollSeconds = 30
	}
	if c.Payment.MonitorHours == 0 {
		c.Payment.MonitorHours = 24
	}
	if c.Payment.RequiredConfirmations == 0 {
		c.Payment.RequiredConfirmations = 6
	}
}

func GetProxyList(path string) []string {
	proxyList, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	proxyListArray := strings.Split(string(proxyList), "\n")
	return proxyListArray
}
