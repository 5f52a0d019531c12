package service

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"stackspay/api/internal/config"
	"stackspay/api/internal/domain"
	"stackspay/api/internal/infra/cache"
	"stackspay/api/internal/logger"
	"time"

	"github.com/shopspring/decimal"
)

// supplies the "FROM/TO" rate table for the converter
type RateProvider interface {
	GetConversionRates() (map[string]decimal.Decimal, error)
}

const ratesCacheKey = "rates_table"

// last-resort table used when the provider is down. conversions degrade to
// stale pricing instead of failing
var fallbackRates = map[string]decimal.Decimal{
	"USD/BTC":  decimal.NewFromFloat(0.0000222),
	"BTC/USD":  decimal.NewFromInt(45000),
	"USD/STX":  decimal.NewFromFloat(0.5),
	"STX/USD":  decimal.NewFromFloat(2),
	"USD/SBTC": decimal.NewFromFloat(0.0000222),
	"SBTC/USD": decimal.NewFromInt(45000),
	"BTC/SBTC": decimal.NewFromInt(1),
	"SBTC/BTC": decimal.NewFromInt(1),
	"BTC/STX":  decimal.NewFromInt(22500),
	"STX/BTC":  decimal.NewFromFloat(0.0000444),
	"STX/SBTC": decimal.NewFromFloat(0.0000444),
	"SBTC/STX": decimal.NewFromInt(22500),

	// dollar-pegged legs track usd 1:1
	"USD/USDT":  decimal.NewFromInt(1),
	"USDT/USD":  decimal.NewFromInt(1),
	"USD/USDC":  decimal.NewFromInt(1),
	"USDC/USD":  decimal.NewFromInt(1),
	"BTC/USDT":  decimal.NewFromInt(45000),
	"USDT/BTC":  decimal.NewFromFloat(0.0000222),
	"BTC/USDC":  decimal.NewFromInt(45000),
	"USDC/BTC":  decimal.NewFromFloat(0.0000222),
	"SBTC/USDT": decimal.NewFromInt(45000),
	"USDT/SBTC": decimal.NewFromFloat(0.0000222),
	"SBTC/USDC": decimal.NewFromInt(45000),
	"USDC/SBTC": decimal.NewFromFloat(0.0000222),
	"STX/USDT":  decimal.NewFromFloat(2),
	"USDT/STX":  decimal.NewFromFloat(0.5),
	"STX/USDC":  decimal.NewFromFloat(2),
	"USDC/STX":  decimal.NewFromFloat(0.5),
}

type RatesService struct {
	cache    *cache.Cache
	provider RateProvider
	refresh  time.Duration
	l        logger.Logger
}

func NewRatesService(cache *cache.Cache, provider RateProvider, refresh time.Duration, l logger.Logger) *RatesService {
	if refresh <= 0 {
		refresh = 60 * time.Second
	}
	return &RatesService{cache: cache, provider: provider, refresh: refresh, l: l}
}

// current rate for one pair. provider is hit at most once per refresh window,
// a dead provider falls back to the static table and never fails the caller
func (s *RatesService) Rate(from, to domain.Currency) (decimal.Decimal, error) {
	table := s.Table()

	rate, ok := table[from.Pair(to)]
	if !ok || !rate.IsPositive() {
		return decimal.Zero, domain.ErrInvalidCurrency
	}

	return rate, nil
}

func (s *RatesService) Table() map[string]decimal.Decimal {
	// the cache holds a pointer, its entries must stay comparable
	cached, ok := s.cache.Load(ratesCacheKey).(*map[string]decimal.Decimal)
	if ok && cached != nil {
		return *cached
	}

	table, err := s.provider.GetConversionRates()
	if err != nil || len(table) == 0 {
		if err != nil {
			s.l.TemplNatsError("rates provider failed, using fallback table", logger.NA, err)
		}
		// cache the fallback too, so a dead provider is not hammered
		s.cache.Set(ratesCacheKey, &fallbackRates, s.refresh)
		return fallbackRates
	}

	// fill pairs the provider does not quote directly
	for pair, rate := range fallbackRates {
		if _, ok := table[pair]; !ok {
			table[pair] = rate
		}
	}

	s.cache.Set(ratesCacheKey, &table, s.refresh)
	return table
}

// coinmarketcap-style quote endpoint
type HttpRateProvider struct {
	url    string
	apiKey string
}

func NewHttpRateProvider(config *config.Config) *HttpRateProvider {
	return &HttpRateProvider{url: config.Rates.ProviderUrl, apiKey: config.Rates.ApiKey}
}

type quoteResponse struct {
	Data map[string]struct {
		Quote map[string]struct {
			Price float64 `json:"price"`
		} `json:"quote"`
	} `json:"data"`
}

func (p *HttpRateProvider) GetConversionRates() (map[string]decimal.Decimal, error) {
	req, err := http.NewRequest("GET", p.url, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accepts", "application/json")
	req.Header.Set("X-CMC_PRO_API_KEY", p.apiKey)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var response quoteResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, err
	}

	usdPrices := map[domain.Currency]decimal.Decimal{}
	for ticker, data := range response.Data {
		quote, ok := data.Quote["USD"]
		if !ok || quote.Price <= 0 {
			continue
		}
		c := StrToTickerCurrency(ticker)
		if c.IsNone() {
			continue
		}
		usdPrices[c] = decimal.NewFromFloat(quote.Price)
	}

	if len(usdPrices) == 0 {
		return nil, fmt.Errorf("provider returned no usable quotes")
	}

	return buildRateTable(usdPrices), nil
}

// derives every supported pair from per-currency usd prices
func buildRateTable(usdPrices map[domain.Currency]decimal.Decimal) map[string]decimal.Decimal {
	usdPrices[domain.CURRENCY_USD] = decimal.NewFromInt(1)
	if _, ok := usdPrices[domain.CURRENCY_USDT]; !ok {
		usdPrices[domain.CURRENCY_USDT] = decimal.NewFromInt(1)
	}
	if _, ok := usdPrices[domain.CURRENCY_USDC]; !ok {
		usdPrices[domain.CURRENCY_USDC] = decimal.NewFromInt(1)
	}
	// sbtc is btc-pegged
	if btc, ok := usdPrices[domain.CURRENCY_BTC]; ok {
		usdPrices[domain.CURRENCY_SBTC] = btc
	}

	table := map[string]decimal.Decimal{}
	for from, fromUsd := range usdPrices {
		for to, toUsd := range usdPrices {
			if from == to {
				continue
			}
			table[from.Pair(to)] = fromUsd.Div(toUsd)
		}
	}
	return table
}

func StrToTickerCurrency(ticker string) domain.Currency {
	switch ticker {
	case "BTC":
		return domain.CURRENCY_BTC
	case "STX":
		return domain.CURRENCY_STX
	case "SBTC":
		return domain.CURRENCY_SBTC
	case "USDT":
		return domain.CURRENCY_USDT
	case "USDC":
		return domain.CURRENCY_USDC
	case "USD":
		return domain.CURRENCY_USD
	}
	return domain.CURRENCY_NONE
}
