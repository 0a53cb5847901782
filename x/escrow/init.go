package escrow

import (
	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/errors"
	"github.com/iov-one/escrowd/orm"
)

const optKey = "escrow"

// GenesisAgreement is an agreement preloaded from the genesis file. It is
// always stored in the Created state with terms version zero.
type GenesisAgreement struct {
	Seller               escrowd.Address `json:"seller"`
	ID                   uint64          `json:"id"`
	Buyer                escrowd.Address `json:"buyer"`
	Arbiter              escrowd.Address `json:"arbiter"`
	Asset                string          `json:"asset"`
	Amount               uint64          `json:"amount"`
	AutoCompleteDuration int64           `json:"auto_complete_duration"`
}

// Initializer fulfils the Initializer interface to load data from the
// genesis file
type Initializer struct {
	bucket orm.ModelBucket
}

var _ escrowd.Initializer = (*Initializer)(nil)

// NewInitializer returns a genesis initializer storing agreements in the
// default bucket.
func NewInitializer() *Initializer {
	return &Initializer{bucket: NewAgreementBucket()}
}

// FromGenesis will parse initial agreements from genesis and save them to
// the database
func (i *Initializer) FromGenesis(opts escrowd.Options, db escrowd.KVStore) error {
	next, err := opts.Stream(optKey)
	switch {
	case errors.ErrEmpty.Is(err):
		return nil
	case err != nil:
		return errors.Wrap(err, "cannot read agreements")
	}
	for n := 0; ; n++ {
		var g GenesisAgreement
		switch err := next(&g); {
		case err == nil:
		case errors.ErrEmpty.Is(err):
			return nil
		default:
			return errors.Wrapf(err, "agreement %d", n)
		}
		key := AgreementKey(g.Seller, g.ID)
		a := &Agreement{
			Metadata:             &escrowd.Metadata{Schema: 1},
			State:                StateCreated,
			ID:                   g.ID,
			Seller:               g.Seller,
			Buyer:                g.Buyer,
			Arbiter:              g.Arbiter,
			Asset:                g.Asset,
			Amount:               g.Amount,
			AutoCompleteDuration: g.AutoCompleteDuration,
			Vault:                VaultAddress(key),
		}
		if err := i.bucket.Create(db, key, a); err != nil {
			return errors.Wrapf(err, "agreement %d", n)
		}
	}
}
