package escrow

import (
	"encoding/binary"

	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/coin"
	"github.com/iov-one/escrowd/errors"
	"github.com/iov-one/escrowd/migration"
	"github.com/iov-one/escrowd/orm"
)

func init() {
	migration.MustRegister(1, &Agreement{}, migration.NoModification)
}

// BucketName is where we store the agreements
const BucketName = "agreement"

// State is the lifecycle stage of an agreement.
type State int32

const (
	StateCreated         State = 1
	StateFunded          State = 2
	StateMarkedAsShipped State = 3
	StateBuyerConfirmed  State = 4
	StateFundsReleased   State = 5
	// StateCancelled is terminal. No operation moves an agreement into or
	// out of it.
	StateCancelled State = 6
)

var stateNames = map[State]string{
	StateCreated:         "created",
	StateFunded:          "funded",
	StateMarkedAsShipped: "marked_as_shipped",
	StateBuyerConfirmed:  "buyer_confirmed",
	StateFundsReleased:   "funds_released",
	StateCancelled:       "cancelled",
}

func (s State) String() string {
	if s == 0 {
		return "none"
	}
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "unknown"
}

// Validate returns an error if the value is not a known state.
func (s State) Validate() error {
	if _, ok := stateNames[s]; !ok {
		return errors.Wrapf(errors.ErrState, "unknown state %d", s)
	}
	return nil
}

// shipped returns true for all states that require the shipment time to be
// recorded.
func (s State) shipped() bool {
	switch s {
	case StateMarkedAsShipped, StateBuyerConfirmed, StateFundsReleased:
		return true
	}
	return false
}

// Agreement is the persisted state of an escrow between a seller and a
// buyer.
type Agreement struct {
	Metadata *escrowd.Metadata
	State    State
	ID       uint64
	Seller   escrowd.Address
	Buyer    escrowd.Address
	Arbiter  escrowd.Address
	Asset    string
	Amount   uint64
	// AutoCompleteDuration is the number of seconds after shipment when
	// the seller can withdraw without buyer confirmation.
	AutoCompleteDuration int64
	// TermsVersion is the block height when the terms were last written.
	TermsVersion uint64
	// ShippedAt is nil until the seller marks the agreement as shipped.
	ShippedAt *escrowd.UnixTime
	Vault     escrowd.Address
}

var _ orm.Model = (*Agreement)(nil)

func (a *Agreement) GetMetadata() *escrowd.Metadata {
	return a.Metadata
}

// Validate makes sure the agreement is well formed. Terms are validated in
// the same order the messages do, so the first failing rule is reported.
func (a *Agreement) Validate() error {
	if err := a.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if err := a.State.Validate(); err != nil {
		return err
	}
	if err := a.Seller.Validate(); err != nil {
		return errors.Wrap(ErrInvalidSeller, "seller")
	}
	if err := validateTerms(a.Seller, a.Buyer, a.Arbiter, a.Asset, a.Amount, a.AutoCompleteDuration); err != nil {
		return err
	}
	if a.State.shipped() != (a.ShippedAt != nil) {
		return errors.Wrapf(errors.ErrState, "shipment time in %s state", a.State)
	}
	if !a.Vault.Equals(VaultAddress(AgreementKey(a.Seller, a.ID))) {
		return errors.Wrap(errors.ErrModel, "vault address not derived from the key")
	}
	return nil
}

// validateTerms checks the terms of an agreement in the order the guards
// are evaluated.
func validateTerms(seller, buyer, arbiter escrowd.Address, asset string, amount uint64, duration int64) error {
	if amount == 0 {
		return errors.Wrap(ErrInvalidAmount, "must be greater than zero")
	}
	if buyer.Equals(seller) {
		return errors.Wrap(ErrBuyerCannotBeSeller, "buyer")
	}
	if !validParty(buyer) {
		return errors.Wrap(ErrInvalidBuyerAddress, "buyer")
	}
	if !validParty(arbiter) {
		return errors.Wrap(ErrInvalidArbiterAddress, "arbiter")
	}
	if duration < 0 {
		return errors.Wrapf(ErrInvalidDuration, "%d", duration)
	}
	if !coin.IsTicker(asset) {
		return errors.Wrapf(ErrInvalidTokenMint, "asset %q", asset)
	}
	return nil
}

// validParty returns true if given address can be a party of an agreement.
func validParty(a escrowd.Address) bool {
	return a.Validate() == nil && !a.IsNull()
}

// AgreementKey returns the key under which the agreement of given seller is
// stored.
func AgreementKey(seller escrowd.Address, id uint64) []byte {
	key := make([]byte, len(seller)+8)
	copy(key, seller)
	binary.BigEndian.PutUint64(key[len(seller):], id)
	return key
}

// VaultCondition returns the condition that owns the vault of the agreement
// stored under given key. No signature can fulfil it.
func VaultCondition(key []byte) escrowd.Condition {
	return escrowd.NewCondition("escrow", "vault", key)
}

// VaultAddress returns the address of the vault account of the agreement
// stored under given key.
func VaultAddress(key []byte) escrowd.Address {
	return VaultCondition(key).Address()
}

func (a *Agreement) Marshal() ([]byte, error) {
	var w escrowd.ProtoWriter
	if err := w.Message(1, a.Metadata); err != nil {
		return nil, err
	}
	w.Varint(2, int64(a.State))
	w.Uvarint(3, a.ID)
	w.RawBytes(4, a.Seller)
	w.RawBytes(5, a.Buyer)
	w.RawBytes(6, a.Arbiter)
	w.String(7, a.Asset)
	w.Uvarint(8, a.Amount)
	w.Varint(9, a.AutoCompleteDuration)
	w.Uvarint(10, a.TermsVersion)
	if a.ShippedAt != nil {
		at := int64(*a.ShippedAt)
		w.OptionalVarint(11, &at)
	}
	w.RawBytes(12, a.Vault)
	return w.Bytes(), nil
}

func (a *Agreement) Unmarshal(raw []byte) error {
	*a = Agreement{}
	r := escrowd.NewProtoReader(raw)
	for r.Next() {
		switch r.Field() {
		case 1:
			a.Metadata = &escrowd.Metadata{}
			r.Message(a.Metadata)
		case 2:
			a.State = State(r.Varint())
		case 3:
			a.ID = r.Uvarint()
		case 4:
			a.Seller = r.RawBytes()
		case 5:
			a.Buyer = r.RawBytes()
		case 6:
			a.Arbiter = r.RawBytes()
		case 7:
			a.Asset = r.Text()
		case 8:
			a.Amount = r.Uvarint()
		case 9:
			a.AutoCompleteDuration = r.Varint()
		case 10:
			a.TermsVersion = r.Uvarint()
		case 11:
			at := escrowd.UnixTime(r.Varint())
			a.ShippedAt = &at
		case 12:
			a.Vault = r.RawBytes()
		default:
			r.Skip()
		}
	}
	return r.Err()
}

func agreementBuyer(m orm.Model) ([]byte, error) {
	a, ok := m.(*Agreement)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T", m)
	}
	return a.Buyer, nil
}

func agreementSeller(m orm.Model) ([]byte, error) {
	a, ok := m.(*Agreement)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T", m)
	}
	return a.Seller, nil
}

// NewAgreementBucket returns a bucket for agreements, indexed by buyer and
// seller.
func NewAgreementBucket() orm.ModelBucket {
	b := orm.NewModelBucket(BucketName, &Agreement{},
		orm.WithIndex("buyer", agreementBuyer, false),
		orm.WithIndex("seller", agreementSeller, false),
	)
	return migration.NewModelBucket(b)
}
