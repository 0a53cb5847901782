package migration

import (
	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/errors"
)

// MyModel is a schema versioned entity used only in tests.
type MyModel struct {
	Metadata *escrowd.Metadata
	Cnt      int64
	err      error
}

func (m *MyModel) GetMetadata() *escrowd.Metadata {
	return m.Metadata
}

func (m *MyModel) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	return nil
}

func (m *MyModel) Marshal() ([]byte, error) {
	var w escrowd.ProtoWriter
	if err := w.Message(1, m.Metadata); err != nil {
		return nil, err
	}
	w.Varint(2, m.Cnt)
	return w.Bytes(), nil
}

func (m *MyModel) Unmarshal(raw []byte) error {
	*m = MyModel{}
	r := escrowd.NewProtoReader(raw)
	for r.Next() {
		switch r.Field() {
		case 1:
			m.Metadata = &escrowd.Metadata{}
			r.Message(m.Metadata)
		case 2:
			m.Cnt = r.Varint()
		default:
			r.Skip()
		}
	}
	return r.Err()
}

// MyMsg is a schema versioned message used only in tests.
type MyMsg struct {
	Metadata *escrowd.Metadata
	Content  string
}

func (m *MyMsg) GetMetadata() *escrowd.Metadata {
	return m.Metadata
}

func (m *MyMsg) Validate() error {
	return m.Metadata.Validate()
}

func (MyMsg) Path() string {
	return "migration/my_msg"
}

func (m *MyMsg) Marshal() ([]byte, error) {
	var w escrowd.ProtoWriter
	if err := w.Message(1, m.Metadata); err != nil {
		return nil, err
	}
	w.String(2, m.Content)
	return w.Bytes(), nil
}

func (m *MyMsg) Unmarshal(raw []byte) error {
	*m = MyMsg{}
	r := escrowd.NewProtoReader(raw)
	for r.Next() {
		switch r.Field() {
		case 1:
			m.Metadata = &escrowd.Metadata{}
			r.Message(m.Metadata)
		case 2:
			m.Content = r.Text()
		default:
			r.Skip()
		}
	}
	return r.Err()
}
