package cash

import (
	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/coin"
	"github.com/iov-one/escrowd/errors"
	"github.com/iov-one/escrowd/gconf"
)

const optKey = "cash"

// GenesisAccount is used to parse the json from genesis file. Address is
// hex encoded.
type GenesisAccount struct {
	Address escrowd.Address `json:"address"`
	Coins   []coin.Coin     `json:"coins"`
}

// Initializer fulfils the Initializer interface to load data from the
// genesis file
type Initializer struct {
	control Controller
}

var _ escrowd.Initializer = Initializer{}

// NewInitializer returns a genesis initializer that issues initial
// balances using given controller.
func NewInitializer(control Controller) Initializer {
	return Initializer{control: control}
}

// FromGenesis will store the cash configuration and issue the initial
// balances of all genesis accounts.
func (i Initializer) FromGenesis(opts escrowd.Options, db escrowd.KVStore) error {
	var conf Configuration
	if err := gconf.InitConfig(db, opts, confPkg, &conf); err != nil {
		return errors.Wrap(err, "init config")
	}

	next, err := opts.Stream(optKey)
	switch {
	case errors.ErrEmpty.Is(err):
		return nil
	case err != nil:
		return errors.Wrap(err, "cannot read accounts")
	}
	for n := 0; ; n++ {
		var acct GenesisAccount
		switch err := next(&acct); {
		case err == nil:
		case errors.ErrEmpty.Is(err):
			return nil
		default:
			return errors.Wrapf(err, "account %d", n)
		}
		if err := acct.Address.Validate(); err != nil {
			return errors.Wrapf(err, "account %d address", n)
		}
		for _, c := range acct.Coins {
			if err := i.control.Issue(db, acct.Address, c); err != nil {
				return errors.Wrapf(err, "account %d issue %s", n, c)
			}
		}
	}
}
