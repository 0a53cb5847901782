package escrowd

import (
	"reflect"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/escrowd/errors"
)

// Protobuf wire types used by the encoding.
const (
	WireVarint  = 0
	WireFixed64 = 1
	WireBytes   = 2
	WireFixed32 = 5
)

// ProtoWriter builds a protobuf encoded message one field at a time. Models
// and messages use it to implement Marshal. The output is compatible with a
// proto3 declaration of the same fields: zero values are not written.
type ProtoWriter struct {
	buf []byte
}

// Bytes returns the encoded message. A message without any field written
// is an empty, non nil slice, so that it can be stored as a value.
func (w *ProtoWriter) Bytes() []byte {
	if w.buf == nil {
		return []byte{}
	}
	return w.buf
}

func (w *ProtoWriter) key(field int, wire int) {
	w.buf = append(w.buf, proto.EncodeVarint(uint64(field)<<3|uint64(wire))...)
}

// Uvarint writes an unsigned integer field.
func (w *ProtoWriter) Uvarint(field int, v uint64) {
	if v == 0 {
		return
	}
	w.key(field, WireVarint)
	w.buf = append(w.buf, proto.EncodeVarint(v)...)
}

// Varint writes a signed integer field using the int64 encoding.
func (w *ProtoWriter) Varint(field int, v int64) {
	w.Uvarint(field, uint64(v))
}

// OptionalVarint writes a signed integer field when the value is present,
// including a zero value. A nil value writes nothing, so the reader can tell
// a missing value from zero.
func (w *ProtoWriter) OptionalVarint(field int, v *int64) {
	if v == nil {
		return
	}
	w.key(field, WireVarint)
	w.buf = append(w.buf, proto.EncodeVarint(uint64(*v))...)
}

// RawBytes writes a length delimited binary field.
func (w *ProtoWriter) RawBytes(field int, b []byte) {
	if len(b) == 0 {
		return
	}
	w.key(field, WireBytes)
	w.buf = append(w.buf, proto.EncodeVarint(uint64(len(b)))...)
	w.buf = append(w.buf, b...)
}

// String writes a length delimited string field.
func (w *ProtoWriter) String(field int, s string) {
	w.RawBytes(field, []byte(s))
}

// Message writes an embedded message field. A nil message writes nothing.
// An empty but present message is written, so its presence is preserved.
func (w *ProtoWriter) Message(field int, m Marshaller) error {
	if isNilMarshaller(m) {
		return nil
	}
	raw, err := m.Marshal()
	if err != nil {
		return errors.Wrapf(err, "field %d", field)
	}
	w.key(field, WireBytes)
	w.buf = append(w.buf, proto.EncodeVarint(uint64(len(raw)))...)
	w.buf = append(w.buf, raw...)
	return nil
}

func isNilMarshaller(m Marshaller) bool {
	if m == nil {
		return true
	}
	v := reflect.ValueOf(m)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

// ProtoReader walks over the fields of a protobuf encoded message. Use it
// the way bufio.Scanner is used:
//
//   r := NewProtoReader(raw)
//   for r.Next() {
//       switch r.Field() {
//       case 1:
//           m.ID = r.Uvarint()
//       default:
//           r.Skip()
//       }
//   }
//   return r.Err()
type ProtoReader struct {
	raw   []byte
	pos   int
	field int
	wire  int
	err   error
}

// NewProtoReader returns a reader of given protobuf encoded message.
func NewProtoReader(raw []byte) *ProtoReader {
	return &ProtoReader{raw: raw}
}

// Next moves to the next field. It returns false when all data was consumed
// or an error happened.
func (r *ProtoReader) Next() bool {
	if r.err != nil || r.pos >= len(r.raw) {
		return false
	}
	k, n := proto.DecodeVarint(r.raw[r.pos:])
	if n == 0 {
		r.err = errors.Wrap(errors.ErrInput, "malformed field key")
		return false
	}
	r.pos += n
	r.field = int(k >> 3)
	r.wire = int(k & 7)
	if r.field == 0 {
		r.err = errors.Wrap(errors.ErrInput, "illegal field number 0")
		return false
	}
	return true
}

// Field returns the number of the current field.
func (r *ProtoReader) Field() int {
	return r.field
}

// Err returns the first error found while reading.
func (r *ProtoReader) Err() error {
	return r.err
}

// Fail stops the reader with given error. Use it to report a problem with a
// field value.
func (r *ProtoReader) Fail(err error) {
	if r.err == nil && err != nil {
		r.err = errors.Wrapf(err, "field %d", r.field)
	}
}

// Uvarint reads the current field as an unsigned integer.
func (r *ProtoReader) Uvarint() uint64 {
	if !r.expect(WireVarint) {
		return 0
	}
	v, n := proto.DecodeVarint(r.raw[r.pos:])
	if n == 0 {
		r.Fail(errors.Wrap(errors.ErrInput, "malformed varint"))
		return 0
	}
	r.pos += n
	return v
}

// Varint reads the current field as a signed integer.
func (r *ProtoReader) Varint() int64 {
	return int64(r.Uvarint())
}

// RawBytes reads the current length delimited field. The returned slice is
// a copy and can be retained.
func (r *ProtoReader) RawBytes() []byte {
	b := r.delimited()
	if b == nil {
		return nil
	}
	cpy := make([]byte, len(b))
	copy(cpy, b)
	return cpy
}

// Text reads the current length delimited field as a string.
func (r *ProtoReader) Text() string {
	return string(r.delimited())
}

// Message decodes the current length delimited field into given message.
func (r *ProtoReader) Message(m Persistent) {
	b := r.delimited()
	if r.err != nil {
		return
	}
	if err := m.Unmarshal(b); err != nil {
		r.Fail(err)
	}
}

// Skip ignores the current field. Unknown fields are skipped so that old
// binaries can read data written by newer ones.
func (r *ProtoReader) Skip() {
	switch r.wire {
	case WireVarint:
		r.Uvarint()
	case WireBytes:
		r.delimited()
	case WireFixed64:
		r.advance(8)
	case WireFixed32:
		r.advance(4)
	default:
		r.Fail(errors.Wrapf(errors.ErrInput, "unsupported wire type %d", r.wire))
	}
}

func (r *ProtoReader) delimited() []byte {
	if !r.expect(WireBytes) {
		return nil
	}
	size, n := proto.DecodeVarint(r.raw[r.pos:])
	if n == 0 {
		r.Fail(errors.Wrap(errors.ErrInput, "malformed length"))
		return nil
	}
	r.pos += n
	start := r.pos
	if !r.advance(int(size)) {
		return nil
	}
	return r.raw[start:r.pos:r.pos]
}

func (r *ProtoReader) advance(n int) bool {
	if n < 0 || r.pos+n > len(r.raw) || r.pos+n < r.pos {
		r.Fail(errors.Wrap(errors.ErrInput, "unexpected end of data"))
		return false
	}
	r.pos += n
	return true
}

func (r *ProtoReader) expect(wire int) bool {
	if r.err != nil {
		return false
	}
	if r.wire != wire {
		r.Fail(errors.Wrapf(errors.ErrInput, "wire type %d, want %d", r.wire, wire))
		return false
	}
	return true
}
