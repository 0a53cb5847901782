package orm

import (
	"bytes"
	"encoding/hex"

	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/errors"
)

const compactIdxPrefix = "_i."

// compactIndex is an index implementation that stores all indexed entities
// as a set, serialized and stored under a single key. It should be used
// only for small sized index collections.
//
// For a unique index the stored value is the single primary key, otherwise
// it is a sorted list of primary keys.
type compactIndex struct {
	name   string
	id     []byte
	unique bool
	index  MultiKeyIndexer
}

func newCompactIndex(bucket, name string, indexer MultiKeyIndexer, unique bool) compactIndex {
	if !isIndexName(name) {
		panic(errors.Wrapf(errors.ErrInput, "illegal index name: %q", name))
	}
	return compactIndex{
		name:   name,
		id:     []byte(compactIdxPrefix + bucket + "_" + name + ":"),
		index:  indexer,
		unique: unique,
	}
}

// indexKey is the full key we store in the db, including prefix. We copy
// into a new array rather than use append, as we don't want consecutive
// calls to overwrite the same byte array.
func (i compactIndex) indexKey(value []byte) []byte {
	l := len(i.id)
	out := make([]byte, l+len(value))
	copy(out, i.id)
	copy(out[l:], value)
	return out
}

// update moves the primary key reference from the values computed for prev
// to the values computed for next.
//
// prev == nil means insert
// next == nil means delete
func (i compactIndex) update(db escrowd.KVStore, pk []byte, prev, next Model) error {
	if prev == nil && next == nil {
		return errors.Wrap(errors.ErrHuman, "update requires at least one non-nil model")
	}
	var oldKeys, newKeys [][]byte
	var err error
	if prev != nil {
		if oldKeys, err = i.index(prev); err != nil {
			return errors.Wrapf(err, "index %s", i.name)
		}
	}
	if next != nil {
		if newKeys, err = i.index(next); err != nil {
			return errors.Wrapf(err, "index %s", i.name)
		}
	}
	keysToAdd := subtract(newKeys, oldKeys)
	keysToRemove := subtract(oldKeys, newKeys)

	// check unique constraints first
	if i.unique {
		for _, k := range keysToAdd {
			ok, err := db.Has(i.indexKey(k))
			if err != nil {
				return err
			}
			if ok {
				return errors.Wrap(errors.ErrDuplicate, i.name)
			}
		}
	}
	for _, k := range keysToRemove {
		if err := i.remove(db, k, pk); err != nil {
			return err
		}
	}
	for _, k := range keysToAdd {
		if err := i.insert(db, k, pk); err != nil {
			return err
		}
	}
	return nil
}

// subtract returns all elements of minuend that are not in subtrahend.
func subtract(minuend [][]byte, subtrahend [][]byte) [][]byte {
	var r [][]byte
outer:
	for _, m := range minuend {
		for _, s := range subtrahend {
			if bytes.Equal(m, s) {
				continue outer
			}
		}
		r = append(r, m)
	}
	return r
}

func (i compactIndex) remove(db escrowd.KVStore, value []byte, pk []byte) error {
	if len(value) == 0 {
		return nil
	}
	key := i.indexKey(value)
	cur, err := db.Get(key)
	if err != nil {
		return err
	}
	if cur == nil {
		return errors.Wrap(errors.ErrNotFound, "cannot remove index from nothing")
	}
	if i.unique {
		if !bytes.Equal(cur, pk) {
			return errors.Wrap(errors.ErrNotFound, "cannot remove index from invalid model")
		}
		return db.Delete(key)
	}

	var refs refList
	if err := refs.Unmarshal(cur); err != nil {
		return errors.Wrap(err, "cannot load index references")
	}
	if err := refs.remove(pk); err != nil {
		return err
	}
	if len(refs.Refs) == 0 {
		return db.Delete(key)
	}
	raw, err := refs.Marshal()
	if err != nil {
		return err
	}
	return db.Set(key, raw)
}

func (i compactIndex) insert(db escrowd.KVStore, value []byte, pk []byte) error {
	if len(value) == 0 {
		return nil
	}
	key := i.indexKey(value)
	cur, err := db.Get(key)
	if err != nil {
		return err
	}
	if i.unique {
		if cur != nil {
			return errors.Wrap(errors.ErrDuplicate, i.name)
		}
		return db.Set(key, pk)
	}

	var refs refList
	if cur != nil {
		if err := refs.Unmarshal(cur); err != nil {
			return errors.Wrap(err, "cannot load index references")
		}
	}
	if err := refs.add(pk); err != nil {
		return err
	}
	raw, err := refs.Marshal()
	if err != nil {
		return err
	}
	return db.Set(key, raw)
}

// keys returns all primary keys indexed under given value. An empty result
// is not an error.
func (i compactIndex) keys(db escrowd.ReadOnlyKVStore, value []byte) ([][]byte, error) {
	if len(value) == 0 {
		return nil, nil
	}
	raw, err := db.Get(i.indexKey(value))
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	if i.unique {
		return [][]byte{raw}, nil
	}
	var refs refList
	if err := refs.Unmarshal(raw); err != nil {
		return nil, errors.Wrap(err, "cannot load index references")
	}
	return refs.Refs, nil
}

// decodeIndexValue accepts the index value either as raw bytes or, for
// human friendly queries, as a hex encoded string.
func decodeIndexValue(mod string, data []byte) ([]byte, error) {
	switch mod {
	case escrowd.KeyQueryMod:
		return data, nil
	case hexQueryMod:
		v, err := hex.DecodeString(string(data))
		if err != nil {
			return nil, errors.Wrap(errors.ErrInput, "invalid hex value")
		}
		return v, nil
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown mod: %s", mod)
	}
}

const hexQueryMod = "hex"
