package escrow

import (
	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/errors"
	"github.com/iov-one/escrowd/migration"
)

func init() {
	migration.MustRegister(1, &CreateMsg{}, migration.NoModification)
	migration.MustRegister(1, &UpdateTermsMsg{}, migration.NoModification)
	migration.MustRegister(1, &FundMsg{}, migration.NoModification)
	migration.MustRegister(1, &MarkShippedMsg{}, migration.NoModification)
	migration.MustRegister(1, &BuyerConfirmMsg{}, migration.NoModification)
	migration.MustRegister(1, &WithdrawMsg{}, migration.NoModification)
}

const (
	pathCreateMsg       = "escrow/create"
	pathUpdateTermsMsg  = "escrow/update_terms"
	pathFundMsg         = "escrow/fund"
	pathMarkShippedMsg  = "escrow/mark_shipped"
	pathBuyerConfirmMsg = "escrow/buyer_confirm"
	pathWithdrawMsg     = "escrow/withdraw"
)

// CreateMsg opens a new agreement. The seller must sign it.
type CreateMsg struct {
	Metadata             *escrowd.Metadata
	Seller               escrowd.Address
	ID                   uint64
	Buyer                escrowd.Address
	Arbiter              escrowd.Address
	Asset                string
	Amount               uint64
	AutoCompleteDuration int64
}

var _ escrowd.Msg = (*CreateMsg)(nil)

// Path returns the routing path for this message
func (CreateMsg) Path() string {
	return pathCreateMsg
}

func (m *CreateMsg) GetMetadata() *escrowd.Metadata {
	return m.Metadata
}

// Validate makes sure that this is sensible
func (m *CreateMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if err := m.Seller.Validate(); err != nil {
		return errors.Wrap(ErrInvalidSeller, err.Error())
	}
	return validateTerms(m.Seller, m.Buyer, m.Arbiter, m.Asset, m.Amount, m.AutoCompleteDuration)
}

func (m *CreateMsg) Marshal() ([]byte, error) {
	return marshalTerms(m.Metadata, m.Seller, m.ID, m.Buyer, m.Arbiter, m.Asset, m.Amount, m.AutoCompleteDuration)
}

func (m *CreateMsg) Unmarshal(raw []byte) error {
	*m = CreateMsg{}
	return unmarshalTerms(raw, &m.Metadata, &m.Seller, &m.ID, &m.Buyer, &m.Arbiter, &m.Asset, &m.Amount, &m.AutoCompleteDuration)
}

// UpdateTermsMsg rewrites the terms of an agreement that was not funded
// yet. The seller must sign it.
type UpdateTermsMsg struct {
	Metadata             *escrowd.Metadata
	Seller               escrowd.Address
	ID                   uint64
	Buyer                escrowd.Address
	Arbiter              escrowd.Address
	Asset                string
	Amount               uint64
	AutoCompleteDuration int64
}

var _ escrowd.Msg = (*UpdateTermsMsg)(nil)

// Path returns the routing path for this message
func (UpdateTermsMsg) Path() string {
	return pathUpdateTermsMsg
}

func (m *UpdateTermsMsg) GetMetadata() *escrowd.Metadata {
	return m.Metadata
}

// Validate makes sure that this is sensible
func (m *UpdateTermsMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if err := m.Seller.Validate(); err != nil {
		return errors.Wrap(ErrInvalidSeller, err.Error())
	}
	return validateTerms(m.Seller, m.Buyer, m.Arbiter, m.Asset, m.Amount, m.AutoCompleteDuration)
}

func (m *UpdateTermsMsg) Marshal() ([]byte, error) {
	return marshalTerms(m.Metadata, m.Seller, m.ID, m.Buyer, m.Arbiter, m.Asset, m.Amount, m.AutoCompleteDuration)
}

func (m *UpdateTermsMsg) Unmarshal(raw []byte) error {
	*m = UpdateTermsMsg{}
	return unmarshalTerms(raw, &m.Metadata, &m.Seller, &m.ID, &m.Buyer, &m.Arbiter, &m.Asset, &m.Amount, &m.AutoCompleteDuration)
}

func marshalTerms(meta *escrowd.Metadata, seller escrowd.Address, id uint64, buyer, arbiter escrowd.Address, asset string, amount uint64, duration int64) ([]byte, error) {
	var w escrowd.ProtoWriter
	if err := w.Message(1, meta); err != nil {
		return nil, err
	}
	w.RawBytes(2, seller)
	w.Uvarint(3, id)
	w.RawBytes(4, buyer)
	w.RawBytes(5, arbiter)
	w.String(6, asset)
	w.Uvarint(7, amount)
	w.Varint(8, duration)
	return w.Bytes(), nil
}

func unmarshalTerms(raw []byte, meta **escrowd.Metadata, seller *escrowd.Address, id *uint64, buyer, arbiter *escrowd.Address, asset *string, amount *uint64, duration *int64) error {
	r := escrowd.NewProtoReader(raw)
	for r.Next() {
		switch r.Field() {
		case 1:
			*meta = &escrowd.Metadata{}
			r.Message(*meta)
		case 2:
			*seller = r.RawBytes()
		case 3:
			*id = r.Uvarint()
		case 4:
			*buyer = r.RawBytes()
		case 5:
			*arbiter = r.RawBytes()
		case 6:
			*asset = r.Text()
		case 7:
			*amount = r.Uvarint()
		case 8:
			*duration = r.Varint()
		default:
			r.Skip()
		}
	}
	return r.Err()
}

// FundMsg moves the agreement amount from the buyer into the vault. The
// signer is the buyer. TermsVersion must be the version of the terms the
// buyer agrees with.
type FundMsg struct {
	Metadata     *escrowd.Metadata
	Seller       escrowd.Address
	ID           uint64
	Asset        string
	TermsVersion uint64
}

var _ escrowd.Msg = (*FundMsg)(nil)

// Path returns the routing path for this message
func (FundMsg) Path() string {
	return pathFundMsg
}

func (m *FundMsg) GetMetadata() *escrowd.Metadata {
	return m.Metadata
}

// Validate makes sure that this is sensible
func (m *FundMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if err := m.Seller.Validate(); err != nil {
		return errors.Wrap(ErrInvalidSeller, err.Error())
	}
	return nil
}

func (m *FundMsg) Marshal() ([]byte, error) {
	var w escrowd.ProtoWriter
	if err := w.Message(1, m.Metadata); err != nil {
		return nil, err
	}
	w.RawBytes(2, m.Seller)
	w.Uvarint(3, m.ID)
	w.String(4, m.Asset)
	w.Uvarint(5, m.TermsVersion)
	return w.Bytes(), nil
}

func (m *FundMsg) Unmarshal(raw []byte) error {
	*m = FundMsg{}
	r := escrowd.NewProtoReader(raw)
	for r.Next() {
		switch r.Field() {
		case 1:
			m.Metadata = &escrowd.Metadata{}
			r.Message(m.Metadata)
		case 2:
			m.Seller = r.RawBytes()
		case 3:
			m.ID = r.Uvarint()
		case 4:
			m.Asset = r.Text()
		case 5:
			m.TermsVersion = r.Uvarint()
		default:
			r.Skip()
		}
	}
	return r.Err()
}

// MarkShippedMsg records the shipment. The seller must sign it.
type MarkShippedMsg struct {
	Metadata *escrowd.Metadata
	Seller   escrowd.Address
	ID       uint64
}

var _ escrowd.Msg = (*MarkShippedMsg)(nil)

// Path returns the routing path for this message
func (MarkShippedMsg) Path() string {
	return pathMarkShippedMsg
}

func (m *MarkShippedMsg) GetMetadata() *escrowd.Metadata {
	return m.Metadata
}

// Validate makes sure that this is sensible
func (m *MarkShippedMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if err := m.Seller.Validate(); err != nil {
		return errors.Wrap(ErrInvalidSeller, err.Error())
	}
	return nil
}

func (m *MarkShippedMsg) Marshal() ([]byte, error) {
	var w escrowd.ProtoWriter
	if err := w.Message(1, m.Metadata); err != nil {
		return nil, err
	}
	w.RawBytes(2, m.Seller)
	w.Uvarint(3, m.ID)
	return w.Bytes(), nil
}

func (m *MarkShippedMsg) Unmarshal(raw []byte) error {
	*m = MarkShippedMsg{}
	r := escrowd.NewProtoReader(raw)
	for r.Next() {
		switch r.Field() {
		case 1:
			m.Metadata = &escrowd.Metadata{}
			r.Message(m.Metadata)
		case 2:
			m.Seller = r.RawBytes()
		case 3:
			m.ID = r.Uvarint()
		default:
			r.Skip()
		}
	}
	return r.Err()
}

// BuyerConfirmMsg confirms the delivery. The signer is the buyer.
type BuyerConfirmMsg struct {
	Metadata *escrowd.Metadata
	Seller   escrowd.Address
	ID       uint64
}

var _ escrowd.Msg = (*BuyerConfirmMsg)(nil)

// Path returns the routing path for this message
func (BuyerConfirmMsg) Path() string {
	return pathBuyerConfirmMsg
}

func (m *BuyerConfirmMsg) GetMetadata() *escrowd.Metadata {
	return m.Metadata
}

// Validate makes sure that this is sensible
func (m *BuyerConfirmMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if err := m.Seller.Validate(); err != nil {
		return errors.Wrap(ErrInvalidSeller, err.Error())
	}
	return nil
}

func (m *BuyerConfirmMsg) Marshal() ([]byte, error) {
	var w escrowd.ProtoWriter
	if err := w.Message(1, m.Metadata); err != nil {
		return nil, err
	}
	w.RawBytes(2, m.Seller)
	w.Uvarint(3, m.ID)
	return w.Bytes(), nil
}

func (m *BuyerConfirmMsg) Unmarshal(raw []byte) error {
	*m = BuyerConfirmMsg{}
	r := escrowd.NewProtoReader(raw)
	for r.Next() {
		switch r.Field() {
		case 1:
			m.Metadata = &escrowd.Metadata{}
			r.Message(m.Metadata)
		case 2:
			m.Seller = r.RawBytes()
		case 3:
			m.ID = r.Uvarint()
		default:
			r.Skip()
		}
	}
	return r.Err()
}

// WithdrawMsg releases the vault funds to the seller. The seller must sign
// it.
type WithdrawMsg struct {
	Metadata *escrowd.Metadata
	Seller   escrowd.Address
	ID       uint64
	Asset    string
}

var _ escrowd.Msg = (*WithdrawMsg)(nil)

// Path returns the routing path for this message
func (WithdrawMsg) Path() string {
	return pathWithdrawMsg
}

func (m *WithdrawMsg) GetMetadata() *escrowd.Metadata {
	return m.Metadata
}

// Validate makes sure that this is sensible
func (m *WithdrawMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if err := m.Seller.Validate(); err != nil {
		return errors.Wrap(ErrInvalidSeller, err.Error())
	}
	return nil
}

func (m *WithdrawMsg) Marshal() ([]byte, error) {
	var w escrowd.ProtoWriter
	if err := w.Message(1, m.Metadata); err != nil {
		return nil, err
	}
	w.RawBytes(2, m.Seller)
	w.Uvarint(3, m.ID)
	w.String(4, m.Asset)
	return w.Bytes(), nil
}

func (m *WithdrawMsg) Unmarshal(raw []byte) error {
	*m = WithdrawMsg{}
	r := escrowd.NewProtoReader(raw)
	for r.Next() {
		switch r.Field() {
		case 1:
			m.Metadata = &escrowd.Metadata{}
			r.Message(m.Metadata)
		case 2:
			m.Seller = r.RawBytes()
		case 3:
			m.ID = r.Uvarint()
		case 4:
			m.Asset = r.Text()
		default:
			r.Skip()
		}
	}
	return r.Err()
}
