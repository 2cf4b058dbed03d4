package arc

import (
	"errors"
	"log"

	"github.com/shopspring/decimal"
)

// Currency is a ticker symbol used in all merchant-facing notifications and
// backend requests.
const Currency = "ARC"

// Amount is processing app's own type for representing an amount of ARC and
// is internally an uint64 holding amount of 1e-8 ARC units so that precision
// is not lost due to used floating point number representation. It supports
// conversion to float64 (to interact with APIs that accept amounts as floats),
// and to string. It is also JSON-able and resulting JSON value is a stringed
// float because by API convention all amounts are transfered to clients as
// stringed floats
type Amount uint64

var unitsInARCDecimal = decimal.New(1, 8)

// ErrNonPositiveAmount is returned when an order or transfer amount is zero
// or negative. Merchant payments always carry a positive amount.
var ErrNonPositiveAmount = errors.New("Amount must be positive")

// ToStringedFloat converts Amount to a string with float amount of ARC
// written in it. It is used to create API responses to client.
// Library "github.com/shopspring/decimal" is used for convertion
func (amount Amount) ToStringedFloat() string {
	return decimal.New(int64(amount), -8).String()
}

// Float64 converts Amount to float64. It is used to pass amount to an API
// that accepts float64.
// Library "github.com/shopspring/decimal" is used for convertion
func (amount Amount) Float64() float64 {
	amountFloat, exact := decimal.New(int64(amount), -8).Float64()
	if !exact {
		log.Printf(
			"WARNING: non-exact conversion from Amount to float64."+
				"Amount is %s, float amount is %f",
			amount,
			amountFloat,
		)
	}
	return amountFloat
}

func (amount Amount) String() string {
	return amount.ToStringedFloat()
}

// MarshalJSON is used to serialize Amount to JSON. Resulting JSON value
// is a string obtained by .ToStringedFloat()
func (amount Amount) MarshalJSON() ([]byte, error) {
	return []byte("\"" + amount.ToStringedFloat() + "\""), nil
}

// UnmarshalJSON deserializes Amount from JSON. Both stringed floats and bare
// numbers are accepted because merchant pages send amounts as numbers
func (amount *Amount) UnmarshalJSON(b []byte) error {
	if len(b) > 1 && b[0] == '"' && b[len(b)-1] == '"' {
		b = b[1 : len(b)-1]
	}
	value, err := AmountFromStringedFloat(string(b))
	if err != nil {
		return err
	}
	*amount = value
	return nil
}

// AmountFromFloat creates Amount from floating-point amount of ARC. Negative
// values are rejected because Amount is unsigned and a negative input would
// silently wrap into a huge value
func AmountFromFloat(amountF64 float64) (Amount, error) {
	amountDecimal := decimal.NewFromFloat(amountF64)
	if amountDecimal.Sign() < 0 {
		return 0, ErrNonPositiveAmount
	}
	return Amount(amountDecimal.Mul(unitsInARCDecimal).IntPart()), nil
}

// AmountFromStringedFloat creates Amount from stringed float and is used
// to read values from API requests and from the shared KV store. Negative
// values are rejected
func AmountFromStringedFloat(amountSF string) (Amount, error) {
	amountDecimal, err := decimal.NewFromString(amountSF)
	if err != nil {
		return 0, err
	}
	if amountDecimal.Sign() < 0 {
		return 0, ErrNonPositiveAmount
	}
	return Amount(amountDecimal.Mul(unitsInARCDecimal).IntPart()), nil
}

// Must is a helper that wraps a call to a function returning (Amount, error)
// and panics if the error is non-nil
func Must(amount Amount, err error) Amount {
	if err != nil {
		panic(err)
	}
	return amount
}

// CheckPositive returns ErrNonPositiveAmount for a zero amount. It is used
// to validate order amounts before a payment is triggered
func CheckPositive(amount Amount) error {
	if amount == 0 {
		return ErrNonPositiveAmount
	}
	return nil
}
