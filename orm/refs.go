package orm

import (
	"bytes"

	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/errors"
)

// refList is an ordered set of primary keys. It is the value stored under a
// non unique index key.
type refList struct {
	Refs [][]byte
}

var _ escrowd.Persistent = (*refList)(nil)

// add inserts given reference keeping the set sorted. Adding a reference
// that is already present is an error.
func (l *refList) add(ref []byte) error {
	i, found := l.find(ref)
	if found {
		return errors.Wrap(errors.ErrDuplicate, "reference already in set")
	}
	l.Refs = append(l.Refs, nil)
	copy(l.Refs[i+1:], l.Refs[i:])
	l.Refs[i] = ref
	return nil
}

// remove drops given reference from the set.
func (l *refList) remove(ref []byte) error {
	i, found := l.find(ref)
	if !found {
		return errors.Wrap(errors.ErrNotFound, "reference not in set")
	}
	l.Refs = append(l.Refs[:i], l.Refs[i+1:]...)
	return nil
}

// find returns the position of given reference and true if it is present.
// Otherwise the position is where the reference should be inserted.
func (l *refList) find(ref []byte) (int, bool) {
	for i, r := range l.Refs {
		switch bytes.Compare(ref, r) {
		case -1:
			return i, false
		case 0:
			return i, true
		}
	}
	return len(l.Refs), false
}

func (l *refList) Marshal() ([]byte, error) {
	var w escrowd.ProtoWriter
	for _, r := range l.Refs {
		w.RawBytes(1, r)
	}
	return w.Bytes(), nil
}

func (l *refList) Unmarshal(raw []byte) error {
	*l = refList{}
	r := escrowd.NewProtoReader(raw)
	for r.Next() {
		switch r.Field() {
		case 1:
			l.Refs = append(l.Refs, r.RawBytes())
		default:
			r.Skip()
		}
	}
	return r.Err()
}
