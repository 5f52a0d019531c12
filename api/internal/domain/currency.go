package domain

type Currency uint8

const (
	CURRENCY_NONE Currency = iota // only for init
	CURRENCY_USD
	CURRENCY_BTC
	CURRENCY_STX
	CURRENCY_SBTC
	CURRENCY_USDT
	CURRENCY_USDC
)

var Currencies = [...]string{"none", "usd", "btc", "stx", "sbtc", "usdt", "usdc"}

func (c Currency) ToString() string {
	return Currencies[c]
}

func (c Currency) IsNone() bool {
	return c == CURRENCY_NONE
}

// usd and the dollar-pegged tokens. conversion legs touching these
// get the higher fee rate and never get slippage applied
func (c Currency) IsStable() bool {
	return c == CURRENCY_USD || c == CURRENCY_USDT || c == CURRENCY_USDC
}

func (c Currency) IsCrypto() bool {
	return c == CURRENCY_BTC || c == CURRENCY_STX || c == CURRENCY_SBTC
}

// pair key for the rate table, e.g. "USD/BTC"
func (c Currency) Pair(to Currency) string {
	return c.Ticker() + "/" + to.Ticker()
}

func (c Currency) Ticker() string {
	return [...]string{"NONE", "USD", "BTC", "STX", "SBTC", "USDT", "USDC"}[c]
}

func StrToCurrency(s string) Currency {
	for i, currencyName := range Currencies {
		if s == currencyName {
			return Currency(i)
		}
	}
	return CURRENCY_NONE
}

// the network the customer pays on
type Method uint8

const (
	METHOD_NONE Method = iota // only for init
	METHOD_SBTC
	METHOD_BTC
	METHOD_STX
)

var Methods = [...]string{"none", "sbtc", "btc", "stx"}

func (m Method) ToString() string {
	return Methods[m]
}

func (m Method) IsNone() bool {
	return m == METHOD_NONE
}

// currency the customer actually sends for this method
func (m Method) Currency() Currency {
	return [...]Currency{CURRENCY_NONE, CURRENCY_SBTC, CURRENCY_BTC, CURRENCY_STX}[m]
}

// only btc deposits are advanced by chain polling. stx/sbtc payments
// move forward through the signature verification path
func (m Method) IsPolled() bool {
	return m == METHOD_BTC
}

func StrToMethod(s string) Method {
	for i, methodName := range Methods {
		if s == methodName {
			return Method(i)
		}
	}
	return METHOD_NONE
}

// currency the merchant is settled in
type PayoutMethod uint8

const (
	PAYOUT_NONE PayoutMethod = iota // only for init
	PAYOUT_SBTC
	PAYOUT_USD
	PAYOUT_USDT
	PAYOUT_USDC
)

var PayoutMethods = [...]string{"none", "sbtc", "usd", "usdt", "usdc"}

func (p PayoutMethod) ToString() string {
	return PayoutMethods[p]
}

func (p PayoutMethod) IsNone() bool {
	return p == PAYOUT_NONE
}

func (p PayoutMethod) Currency() Currency {
	return [...]Currency{CURRENCY_NONE, CURRENCY_SBTC, CURRENCY_USD, CURRENCY_USDT, CURRENCY_USDC}[p]
}

func StrToPayoutMethod(s string) PayoutMethod {
	for i, payoutName := range PayoutMethods {
		if s == payoutName {
			return PayoutMethod(i)
		}
	}
	return PAYOUT_NONE
}
