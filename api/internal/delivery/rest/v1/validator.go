package v1

import (
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"stackspay/api/internal/domain"
	"stackspay/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type limit struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

// mirrors the converter bounds, the service re-checks them anyway
var amountLimits = map[string]limit{
	"usd":  {Min: decimal.NewFromFloat(0.01), Max: decimal.NewFromInt(1000000)},
	"usdt": {Min: decimal.NewFromFloat(0.01), Max: decimal.NewFromInt(1000000)},
	"usdc": {Min: decimal.NewFromFloat(0.01), Max: decimal.NewFromInt(1000000)},
	"btc":  {Min: decimal.NewFromFloat(0.00000546), Max: decimal.NewFromInt(100)},
	"sbtc": {Min: decimal.NewFromFloat(0.00000546), Max: decimal.NewFromInt(100)},
	"stx":  {Min: decimal.NewFromFloat(0.000001), Max: decimal.NewFromInt(10000000)},
}

type NewPaymentData struct {
	AmountFloat   float64 `json:"amount" validate:"required,amount"`
	Currency      string  `json:"currency" validate:"required,oneof=usd btc stx sbtc usdt usdc"`
	PaymentMethod string  `json:"payment_method" validate:"required,oneof=sbtc btc stx"`
	PayoutMethod  string  `json:"payout_method" validate:"required,oneof=sbtc usd usdt usdc"`
	ExpiryMinutes int     `json:"expiry_minutes" validate:"gte=0,lte=4320"`
	Description   string  `json:"description" validate:"max=256"`
	Metadata      string  `json:"metadata" validate:"max=4096"`
	ApiKey        string  `json:"api_key" validate:"min=64,max=64"` // sha256

	Amount decimal.Decimal `json:"-"` // used after validation
}

// checks the validity of data in query
// returns false if there is an error
func filterQuery(c *gin.Context) (*NewPaymentData, bool) {

	var data NewPaymentData
	err := c.ShouldBindJSON(&data)
	if err != nil {
		responseErr(c, http.StatusBadRequest, domain.ErrMsgBadRequest, "")
		return nil, false
	}

	v := validator.New()

	v.RegisterValidation("amount", validateAmount)
	v.RegisterValidation("webhook", validateWebhook)
	err = v.Struct(data)
	if err == nil {
		data.Amount = decimal.NewFromFloat(data.AmountFloat)

		return &data, true
	}

	validationErrs, err := utils.SafeCast[validator.ValidationErrors](err)
	if err != nil {
		responseErr(c, http.StatusBadRequest, domain.ErrMsgBadRequest, "")
		return nil, false
	}
	if validationErrs == nil {
		responseErr(c, http.StatusBadRequest, domain.ErrMsgBadRequest, "")
		return nil, false
	}

	validationErr := validationErrs[0]
	responseErr(c, http.StatusBadRequest, formatValidationErr(data, data.Currency, validationErr), "")

	return nil, false

}

// binds json and runs struct validation, responds on failure
func bindAndValidate(c *gin.Context, data any) bool {
	if err := c.ShouldBindJSON(data); err != nil {
		responseErr(c, http.StatusBadRequest, domain.ErrMsgBadRequest, "")
		return false
	}

	v := validator.New()

	v.RegisterValidation("amount", validateAmount)
	v.RegisterValidation("webhook", validateWebhook)

	if err := v.Struct(data); err != nil {
		validationErrs, castErr := utils.SafeCast[validator.ValidationErrors](err)
		if castErr != nil || validationErrs == nil {
			responseErr(c, http.StatusBadRequest, domain.ErrMsgBadRequest, "")
			return false
		}
		responseErr(c, http.StatusBadRequest, formatValidationErr(data, "", validationErrs[0]), "")
		return false
	}
	return true
}

func validateAmount(fl validator.FieldLevel) bool {

	obj := fl.Parent()
	amount := fl.Field().Float()

	amountCurrency := obj.FieldByName("Currency")
	if !amountCurrency.IsValid() {
		return false
	}

	limit, ok := amountLimits[amountCurrency.String()]
	if !ok {
		return false
	}

	amountDecimal := decimal.NewFromFloat(amount)

	if amountDecimal.LessThan(limit.Min) || amountDecimal.GreaterThan(limit.Max) {
		return false
	}

	return true
}

func validateWebhook(fl validator.FieldLevel) bool {
	if fl.Field().String() == "" { // webhook is not set
		return true
	}

	if len(fl.Field().String()) <= 8 {
		return false
	}
	if !strings.Contains(fl.Field().String(), ".") { // has dot
		return false
	}

	_, err := url.ParseRequestURI(fl.Field().String())
	return err == nil
}

func formatValidationErr(data any, currency string, err validator.FieldError) string {
	jsonTag := getJSONTag(data, err.Field())

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("field '%s' is required", jsonTag)
	case "oneof":
		return fmt.Sprintf("field '%s' must be one of '%s'", jsonTag, err.Param())
	case "min":
		return fmt.Sprintf("field '%s' must be at least %s characters long", jsonTag, err.Param())
	case "max":
		return fmt.Sprintf("field '%s' must be at most %s characters long", jsonTag, err.Param())
	case "gte":
		return fmt.Sprintf("field '%s' must be greater than or equal to %s", jsonTag, err.Param())
	case "lte":
		return fmt.Sprintf("field '%s' must be less than or equal to %s", jsonTag, err.Param())
	//  custom tags
	case "webhook":
		return fmt.Sprintf("field '%s' must be a valid HTTPS url", jsonTag)
	case "amount":
		limit, ok := amountLimits[currency]
		if !ok {
			var currencyList string
			for k := range amountLimits {
				currencyList += k + " "
			}
			return fmt.Sprintf("field currency must be one of '%s'", currencyList)
		}
		return fmt.Sprintf("field '%s' must be greater than %s and less than %s", jsonTag, limit.Min, limit.Max)

	default:
		return fmt.Sprintf("invalid field '%s'", jsonTag)
	}

}

func getJSONTag(structType any, fieldName string) string {
	typ := reflect.TypeOf(structType)
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	field, _ := typ.FieldByName(fieldName)
	tag := field.Tag.Get("json")
	if tag == "" {
		return fieldName
	}
	return tag
}
