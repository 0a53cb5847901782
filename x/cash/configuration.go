package cash

import (
	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/coin"
	"github.com/iov-one/escrowd/errors"
	"github.com/iov-one/escrowd/gconf"
)

// confPkg is the name under which the configuration is stored.
const confPkg = "cash"

// Configuration lists the tickers that accounts can be opened for.
type Configuration struct {
	Metadata *escrowd.Metadata `json:"metadata"`
	// Owner is the address allowed to manage the configuration.
	Owner   escrowd.Address `json:"owner"`
	Tickers []string        `json:"tickers"`
}

func (c *Configuration) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", c.Metadata.Validate())
	// owner field is optional
	if len(c.Owner) != 0 {
		errs = errors.AppendField(errs, "Owner", c.Owner.Validate())
	}
	if len(c.Tickers) == 0 {
		errs = errors.AppendField(errs, "Tickers", errors.ErrEmpty)
	}
	seen := make(map[string]bool, len(c.Tickers))
	for _, t := range c.Tickers {
		if !coin.IsTicker(t) {
			errs = errors.AppendField(errs, "Tickers", errors.Wrapf(errors.ErrInput, "invalid ticker %q", t))
		}
		if seen[t] {
			errs = errors.AppendField(errs, "Tickers", errors.Wrapf(errors.ErrDuplicate, "ticker %q", t))
		}
		seen[t] = true
	}
	return errs
}

// Allows returns true if accounts of given ticker can be created.
func (c *Configuration) Allows(ticker string) bool {
	for _, t := range c.Tickers {
		if t == ticker {
			return true
		}
	}
	return false
}

func (c *Configuration) Marshal() ([]byte, error) {
	var w escrowd.ProtoWriter
	if err := w.Message(1, c.Metadata); err != nil {
		return nil, err
	}
	w.RawBytes(2, c.Owner)
	for _, t := range c.Tickers {
		w.String(3, t)
	}
	return w.Bytes(), nil
}

func (c *Configuration) Unmarshal(raw []byte) error {
	*c = Configuration{}
	r := escrowd.NewProtoReader(raw)
	for r.Next() {
		switch r.Field() {
		case 1:
			c.Metadata = &escrowd.Metadata{}
			r.Message(c.Metadata)
		case 2:
			c.Owner = r.RawBytes()
		case 3:
			c.Tickers = append(c.Tickers, r.Text())
		default:
			r.Skip()
		}
	}
	return r.Err()
}

func loadConf(db gconf.ReadStore) (*Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, confPkg, &conf); err != nil {
		return nil, errors.Wrap(err, "load configuration")
	}
	return &conf, nil
}
