package escrowd

import (
	"github.com/iov-one/escrowd/errors"
)

// Metadata is embedded in every model and message. It carries the schema
// version of the data format, so that stored entities can be migrated when
// the format changes.
type Metadata struct {
	Schema uint32
}

// Validate returns an error if the metadata is not usable.
func (m *Metadata) Validate() error {
	if m == nil {
		return errors.Wrap(errors.ErrEmpty, "metadata")
	}
	if m.Schema < 1 {
		return errors.Wrap(errors.ErrMetadata, "schema version")
	}
	return nil
}

// Copy returns a copy of this object.
func (m *Metadata) Copy() *Metadata {
	if m == nil {
		return nil
	}
	cpy := *m
	return &cpy
}

func (m *Metadata) Marshal() ([]byte, error) {
	var w ProtoWriter
	w.Uvarint(1, uint64(m.Schema))
	return w.Bytes(), nil
}

func (m *Metadata) Unmarshal(raw []byte) error {
	*m = Metadata{}
	r := NewProtoReader(raw)
	for r.Next() {
		switch r.Field() {
		case 1:
			m.Schema = uint32(r.Uvarint())
		default:
			r.Skip()
		}
	}
	return r.Err()
}
