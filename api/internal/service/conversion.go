package service

import (
	"stackspay/api/internal/domain"

	"github.com/shopspring/decimal"
)

// fee rates per leg kind
var (
	feeRateCrypto = decimal.NewFromFloat(0.005) // crypto <-> crypto
	feeRateFiat   = decimal.NewFromFloat(0.015) // leg touches usd/usdt/usdc

	defaultSlippage = decimal.NewFromFloat(0.01)
)

// flat per-target-currency network fee, denominated in the target currency
var networkFees = map[domain.Currency]decimal.Decimal{
	domain.CURRENCY_BTC:  decimal.NewFromFloat(0.0001),
	domain.CURRENCY_SBTC: decimal.NewFromFloat(0.00005),
	domain.CURRENCY_STX:  decimal.NewFromFloat(0.25),
	domain.CURRENCY_USD:  decimal.NewFromFloat(0.3),
	domain.CURRENCY_USDT: decimal.NewFromFloat(1),
	domain.CURRENCY_USDC: decimal.NewFromFloat(1),
}

type amountLimit struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

var conversionLimits = map[domain.Currency]amountLimit{
	domain.CURRENCY_USD:  {Min: decimal.NewFromFloat(0.01), Max: decimal.NewFromInt(1000000)},
	domain.CURRENCY_USDT: {Min: decimal.NewFromFloat(0.01), Max: decimal.NewFromInt(1000000)},
	domain.CURRENCY_USDC: {Min: decimal.NewFromFloat(0.01), Max: decimal.NewFromInt(1000000)},
	domain.CURRENCY_BTC:  {Min: decimal.NewFromFloat(0.00000546), Max: decimal.NewFromInt(100)},
	domain.CURRENCY_SBTC: {Min: decimal.NewFromFloat(0.00000546), Max: decimal.NewFromInt(100)},
	domain.CURRENCY_STX:  {Min: decimal.NewFromFloat(0.000001), Max: decimal.NewFromInt(10000000)},
}

type ConvertOpts struct {
	Slippage *decimal.Decimal // tolerance, default 1%. ignored when a stable leg is involved
}

type ConversionResult struct {
	From          domain.Currency
	To            domain.Currency
	FromAmount    decimal.Decimal
	ToAmount      decimal.Decimal
	Rate          decimal.Decimal
	ConversionFee decimal.Decimal // in target currency
	NetworkFee    decimal.Decimal // in target currency
	TotalFees     decimal.Decimal
	EstimatedTime string
}

type ConverterService struct {
	rates Rates
}

func NewConverterService(rates Rates) *ConverterService {
	return &ConverterService{rates: rates}
}

// one conversion leg. callers must not request from == to, they synthesize
// a SameCurrencyResult instead so no fee is charged on a no-op leg
func (s *ConverterService) Convert(amount decimal.Decimal, from, to domain.Currency, opts *ConvertOpts) (*ConversionResult, error) {
	if from.IsNone() || to.IsNone() {
		return nil, domain.ErrInvalidCurrency
	}

	limit, ok := conversionLimits[from]
	if !ok {
		return nil, domain.ErrInvalidCurrency
	}
	if amount.LessThan(limit.Min) || amount.GreaterThan(limit.Max) {
		return nil, domain.ErrAmountOutOfBounds
	}

	rate, err := s.rates.Rate(from, to)
	if err != nil {
		return nil, err
	}

	converted := amount.Mul(rate)

	feeRate := feeRateCrypto
	if from.IsStable() || to.IsStable() {
		feeRate = feeRateFiat
	}
	conversionFee := converted.Mul(feeRate)

	networkFee := networkFees[to]

	toAmount := converted.Sub(conversionFee).Sub(networkFee)

	// slippage haircut applies to volatile pairs only
	if !from.IsStable() && !to.IsStable() {
		slippage := defaultSlippage
		if opts != nil && opts.Slippage != nil {
			slippage = *opts.Slippage
		}
		toAmount = toAmount.Mul(decimal.NewFromInt(1).Sub(slippage))
	}

	if toAmount.IsNegative() {
		toAmount = decimal.Zero
	}

	return &ConversionResult{
		From:          from,
		To:            to,
		FromAmount:    amount,
		ToAmount:      toAmount,
		Rate:          rate,
		ConversionFee: conversionFee,
		NetworkFee:    networkFee,
		TotalFees:     conversionFee.Add(networkFee),
		EstimatedTime: estimatedTime(from, to),
	}, nil
}

// caller-side shortcut for from == to. zero fees, rate 1
func SameCurrencyResult(amount decimal.Decimal, c domain.Currency) *ConversionResult {
	return &ConversionResult{
		From:          c,
		To:            c,
		FromAmount:    amount,
		ToAmount:      amount,
		Rate:          decimal.NewFromInt(1),
		ConversionFee: decimal.Zero,
		NetworkFee:    decimal.Zero,
		TotalFees:     decimal.Zero,
		EstimatedTime: "instant",
	}
}

// coarse ui bucket, not used for control flow
func estimatedTime(from, to domain.Currency) string {
	switch {
	case from == to:
		return "instant"
	case from == domain.CURRENCY_BTC || to == domain.CURRENCY_BTC:
		return "10-60 minutes"
	case from == domain.CURRENCY_SBTC || to == domain.CURRENCY_SBTC:
		return "10-30 minutes"
	default:
		return "1-10 minutes"
	}
}
