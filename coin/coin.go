package coin

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"

	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/errors"
)

// IsTicker is the RegExp to ensure valid ticker codes
var IsTicker = regexp.MustCompile(`^[A-Z]{3,4}$`).MatchString

// Coin is an amount of a single fungible asset. Amounts are indivisible
// units.
type Coin struct {
	Ticker string
	Amount uint64
}

// NewCoin creates a new coin object
func NewCoin(amount uint64, ticker string) Coin {
	return Coin{
		Ticker: ticker,
		Amount: amount,
	}
}

// NewCoinp returns a pointer to a new coin.
func NewCoinp(amount uint64, ticker string) *Coin {
	c := NewCoin(amount, ticker)
	return &c
}

// Add combines two coins. Returns error if they are of different
// currencies, or if the combination would cause an overflow.
func (c Coin) Add(o Coin) (Coin, error) {
	if !c.SameType(o) {
		return Coin{}, errors.Wrapf(errors.ErrType, "adding %s to %s", o.Ticker, c.Ticker)
	}
	if c.Amount > math.MaxUint64-o.Amount {
		return Coin{}, errors.Wrapf(errors.ErrOverflow, "%d + %d", c.Amount, o.Amount)
	}
	c.Amount += o.Amount
	return c, nil
}

// Subtract given amount. Returns ErrInsufficientAmount if the result would
// be negative.
func (c Coin) Subtract(o Coin) (Coin, error) {
	if !c.SameType(o) {
		return Coin{}, errors.Wrapf(errors.ErrType, "subtracting %s from %s", o.Ticker, c.Ticker)
	}
	if c.Amount < o.Amount {
		return Coin{}, errors.Wrapf(errors.ErrInsufficientAmount, "%d - %d", c.Amount, o.Amount)
	}
	c.Amount -= o.Amount
	return c, nil
}

// IsZero returns true if the amount is 0
func (c Coin) IsZero() bool {
	return c.Amount == 0
}

// IsGTE returns true if c is same type and at least as large as o.
func (c Coin) IsGTE(o Coin) bool {
	return c.SameType(o) && c.Amount >= o.Amount
}

// SameType returns true if they have the same currency
func (c Coin) SameType(o Coin) bool {
	return c.Ticker == o.Ticker
}

// Equals returns true if all fields are identical
func (c Coin) Equals(o Coin) bool {
	return c == o
}

// Validate ensures that the coin uses a valid ticker.
func (c Coin) Validate() error {
	if !IsTicker(c.Ticker) {
		return errors.Wrapf(errors.ErrInput, "invalid ticker: %q", c.Ticker)
	}
	return nil
}

func (c *Coin) Marshal() ([]byte, error) {
	var w escrowd.ProtoWriter
	w.String(1, c.Ticker)
	w.Uvarint(2, c.Amount)
	return w.Bytes(), nil
}

func (c *Coin) Unmarshal(raw []byte) error {
	*c = Coin{}
	r := escrowd.NewProtoReader(raw)
	for r.Next() {
		switch r.Field() {
		case 1:
			c.Ticker = r.Text()
		case 2:
			c.Amount = r.Uvarint()
		default:
			r.Skip()
		}
	}
	return r.Err()
}

// UnmarshalJSON accepts both the human readable format "<amount> <ticker>"
// and an object with ticker and amount attributes.
func (c *Coin) UnmarshalJSON(raw []byte) error {
	var human string
	if err := json.Unmarshal(raw, &human); err == nil {
		parsed, err := ParseCoin(human)
		if err != nil {
			return err
		}
		*c = parsed
		return nil
	}

	// Because UnmarshalJSON method is provided, we can no longer use Coin
	// type for this.
	var coin struct {
		Ticker string `json:"ticker"`
		Amount uint64 `json:"amount"`
	}
	if err := json.Unmarshal(raw, &coin); err != nil {
		return err
	}
	*c = Coin{Ticker: coin.Ticker, Amount: coin.Amount}
	return nil
}

// String returns the human readable representation that can be parsed
// back with ParseCoin.
func (c Coin) String() string {
	if c.Ticker == "" {
		return strconv.FormatUint(c.Amount, 10)
	}
	return fmt.Sprintf("%d %s", c.Amount, c.Ticker)
}

var humanCoinFormatRx = regexp.MustCompile(`^\s*(\d+)\s*([A-Z]{3,4})\s*$`)

// ParseCoin parse a human readable coin representation. Accepted format
// is a string:
//   "<amount> <ticker>"
func ParseCoin(h string) (Coin, error) {
	m := humanCoinFormatRx.FindStringSubmatch(h)
	if m == nil {
		return Coin{}, errors.Wrapf(errors.ErrInput, "invalid coin format: %q", h)
	}
	amount, err := strconv.ParseUint(m[1], 10, 64)
	if err != nil {
		return Coin{}, errors.Wrapf(errors.ErrOverflow, "invalid amount: %s", err)
	}
	return Coin{Ticker: m[2], Amount: amount}, nil
}

// Set updates this coin value to what is provided. This method implements
// flag.Value interface.
func (c *Coin) Set(raw string) error {
	val, err := ParseCoin(raw)
	if err != nil {
		return err
	}
	*c = val
	return nil
}
