package cash

import (
	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/coin"
	"github.com/iov-one/escrowd/errors"
	"github.com/iov-one/escrowd/migration"
)

func init() {
	migration.MustRegister(1, &SendMsg{}, migration.NoModification)
	migration.MustRegister(1, &CreateAccountMsg{}, migration.NoModification)
}

const (
	sendTxCost          int64 = 100
	createAccountTxCost int64 = 50

	maxMemoSize int = 128
)

// SendMsg moves tokens from the source account to the destination account
// of the same ticker.
type SendMsg struct {
	Metadata    *escrowd.Metadata
	Source      escrowd.Address
	Destination escrowd.Address
	Amount      *coin.Coin
	Memo        string
}

var _ escrowd.Msg = (*SendMsg)(nil)

// Path returns the routing path for this message
func (SendMsg) Path() string {
	return "cash/send"
}

func (m *SendMsg) GetMetadata() *escrowd.Metadata {
	return m.Metadata
}

// Validate makes sure that this is sensible
func (m *SendMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	switch {
	case m.Amount == nil:
		errs = errors.AppendField(errs, "Amount", errors.ErrEmpty)
	case m.Amount.IsZero():
		errs = errors.AppendField(errs, "Amount", errors.ErrAmount)
	default:
		errs = errors.AppendField(errs, "Amount", m.Amount.Validate())
	}
	errs = errors.AppendField(errs, "Source", m.Source.Validate())
	errs = errors.AppendField(errs, "Destination", m.Destination.Validate())
	if len(m.Memo) > maxMemoSize {
		errs = errors.AppendField(errs, "Memo", errors.Wrap(errors.ErrInput, "memo too long"))
	}
	return errs
}

func (m *SendMsg) Marshal() ([]byte, error) {
	var w escrowd.ProtoWriter
	if err := w.Message(1, m.Metadata); err != nil {
		return nil, err
	}
	w.RawBytes(2, m.Source)
	w.RawBytes(3, m.Destination)
	if err := w.Message(4, m.Amount); err != nil {
		return nil, err
	}
	w.String(5, m.Memo)
	return w.Bytes(), nil
}

func (m *SendMsg) Unmarshal(raw []byte) error {
	*m = SendMsg{}
	r := escrowd.NewProtoReader(raw)
	for r.Next() {
		switch r.Field() {
		case 1:
			m.Metadata = &escrowd.Metadata{}
			r.Message(m.Metadata)
		case 2:
			m.Source = r.RawBytes()
		case 3:
			m.Destination = r.RawBytes()
		case 4:
			m.Amount = &coin.Coin{}
			r.Message(m.Amount)
		case 5:
			m.Memo = r.Text()
		default:
			r.Skip()
		}
	}
	return r.Err()
}

// CreateAccountMsg opens an empty account for the owner.
type CreateAccountMsg struct {
	Metadata *escrowd.Metadata
	Owner    escrowd.Address
	Ticker   string
}

var _ escrowd.Msg = (*CreateAccountMsg)(nil)

// Path returns the routing path for this message
func (CreateAccountMsg) Path() string {
	return "cash/create_account"
}

func (m *CreateAccountMsg) GetMetadata() *escrowd.Metadata {
	return m.Metadata
}

func (m *CreateAccountMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "Owner", m.Owner.Validate())
	if !coin.IsTicker(m.Ticker) {
		errs = errors.AppendField(errs, "Ticker", errors.ErrInput)
	}
	return errs
}

func (m *CreateAccountMsg) Marshal() ([]byte, error) {
	var w escrowd.ProtoWriter
	if err := w.Message(1, m.Metadata); err != nil {
		return nil, err
	}
	w.RawBytes(2, m.Owner)
	w.String(3, m.Ticker)
	return w.Bytes(), nil
}

func (m *CreateAccountMsg) Unmarshal(raw []byte) error {
	*m = CreateAccountMsg{}
	r := escrowd.NewProtoReader(raw)
	for r.Next() {
		switch r.Field() {
		case 1:
			m.Metadata = &escrowd.Metadata{}
			r.Message(m.Metadata)
		case 2:
			m.Owner = r.RawBytes()
		case 3:
			m.Ticker = r.Text()
		default:
			r.Skip()
		}
	}
	return r.Err()
}
