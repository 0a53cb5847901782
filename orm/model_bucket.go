package orm

import (
	"reflect"

	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/errors"
)

// ModelBucket is implemented by buckets that store models of a single type
// under a common key prefix and maintain their secondary indexes.
type ModelBucket interface {
	// One query the database for a single model instance. Lookup is done
	// by the primary index key. Result is loaded into given destination
	// model.
	// This method returns ErrNotFound if the entity does not exist in the
	// database.
	// If given model type cannot be used to contain stored entity, ErrType
	// is returned.
	One(db escrowd.ReadOnlyKVStore, key []byte, dest Model) error

	// Has returns true if an entity with given primary key exists.
	Has(db escrowd.ReadOnlyKVStore, key []byte) (bool, error)

	// Create saves given model in the database. It returns ErrDuplicate
	// if an entity with the same primary key already exists.
	Create(db escrowd.KVStore, key []byte, m Model) error

	// Put saves given model in the database, overwriting any entity stored
	// under the same key. Model must be valid.
	Put(db escrowd.KVStore, key []byte, m Model) error

	// Delete removes an entity with given primary key from the database.
	// It returns ErrNotFound if an entity with given key does not exist.
	Delete(db escrowd.KVStore, key []byte) error

	// ByIndex returns all models that are indexed under given value by
	// the index with given name. Models are loaded into the destination
	// that must be a pointer to a slice of models. Primary keys of the
	// loaded models are returned in the same order.
	ByIndex(db escrowd.ReadOnlyKVStore, indexName string, value []byte, dest ModelSlicePtr) ([][]byte, error)

	// Register registers the bucket and all its indexes in the query
	// router under the "/<name>" path.
	Register(name string, r escrowd.QueryRouter)
}

// ModelBucketOption is implemented by any function that can configure
// ModelBucket during creation.
type ModelBucketOption func(mb *modelBucket)

// WithIndex configures the bucket to build an index with given name. All
// entities stored in the bucket are indexed using value returned by the
// indexer function. If an index is unique, there can be only one entity
// referenced per index value.
func WithIndex(name string, indexer Indexer, unique bool) ModelBucketOption {
	return WithMultiKeyIndex(name, asMultiKeyIndexer(indexer), unique)
}

// WithMultiKeyIndex is like WithIndex but a single entity can be indexed
// under many values.
func WithMultiKeyIndex(name string, indexer MultiKeyIndexer, unique bool) ModelBucketOption {
	return func(mb *modelBucket) {
		if _, ok := mb.indexes[name]; ok {
			panic(errors.Wrapf(errors.ErrDuplicate, "index %q", name))
		}
		mb.indexes[name] = newCompactIndex(mb.name, name, indexer, unique)
		mb.order = append(mb.order, name)
	}
}

// NewModelBucket returns a ModelBucket instance that stores entities of the
// same type as given model. Model must be a pointer to a structure.
func NewModelBucket(name string, m Model, opts ...ModelBucketOption) ModelBucket {
	if !isBucketName(name) {
		panic(errors.Wrapf(errors.ErrInput, "illegal bucket name: %q", name))
	}
	tp := reflect.TypeOf(m)
	if tp == nil || tp.Kind() != reflect.Ptr {
		panic(errors.Wrapf(errors.ErrType, "model must be a pointer, got %T", m))
	}
	mb := &modelBucket{
		name:    name,
		prefix:  []byte(name + ":"),
		model:   tp,
		indexes: make(map[string]compactIndex),
	}
	for _, fn := range opts {
		fn(mb)
	}
	return mb
}

type modelBucket struct {
	name    string
	prefix  []byte
	model   reflect.Type
	indexes map[string]compactIndex
	// order keeps index updates deterministic.
	order []string
}

// dbKey is the full key we store in the db, including prefix. We copy into
// a new array rather than use append, as we don't want consecutive calls to
// overwrite the same byte array.
func (mb *modelBucket) dbKey(key []byte) []byte {
	l := len(mb.prefix)
	out := make([]byte, l+len(key))
	copy(out, mb.prefix)
	copy(out[l:], key)
	return out
}

func (mb *modelBucket) newModel() Model {
	return reflect.New(mb.model.Elem()).Interface().(Model)
}

func (mb *modelBucket) One(db escrowd.ReadOnlyKVStore, key []byte, dest Model) error {
	if reflect.TypeOf(dest) != mb.model {
		return errors.Wrapf(errors.ErrType, "%s cannot be represented as %T", mb.model, dest)
	}
	raw, err := db.Get(mb.dbKey(key))
	if err != nil {
		return errors.Wrap(err, "cannot load from the store")
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "%T not in the store", dest)
	}
	if err := dest.Unmarshal(raw); err != nil {
		return errors.Wrapf(err, "cannot unmarshal %T", dest)
	}
	return nil
}

func (mb *modelBucket) Has(db escrowd.ReadOnlyKVStore, key []byte) (bool, error) {
	ok, err := db.Has(mb.dbKey(key))
	if err != nil {
		return false, errors.Wrap(err, "cannot check the store")
	}
	return ok, nil
}

func (mb *modelBucket) Create(db escrowd.KVStore, key []byte, m Model) error {
	switch ok, err := mb.Has(db, key); {
	case err != nil:
		return err
	case ok:
		return errors.Wrapf(errors.ErrDuplicate, "%T already in the store", m)
	}
	return mb.Put(db, key, m)
}

func (mb *modelBucket) Put(db escrowd.KVStore, key []byte, m Model) error {
	if reflect.TypeOf(m) != mb.model {
		return errors.Wrapf(errors.ErrType, "cannot store %T in %s bucket", m, mb.name)
	}
	if len(key) == 0 {
		return errors.Wrap(errors.ErrEmpty, "key")
	}
	if err := m.Validate(); err != nil {
		return errors.Wrap(err, "invalid model")
	}

	prev, err := mb.load(db, key)
	if err != nil {
		return err
	}
	for _, name := range mb.order {
		if err := mb.indexes[name].update(db, key, prev, m); err != nil {
			return errors.Wrap(err, "cannot update index")
		}
	}

	raw, err := m.Marshal()
	if err != nil {
		return errors.Wrapf(err, "cannot marshal %T", m)
	}
	if err := db.Set(mb.dbKey(key), raw); err != nil {
		return errors.Wrap(err, "cannot store in the database")
	}
	return nil
}

func (mb *modelBucket) Delete(db escrowd.KVStore, key []byte) error {
	prev, err := mb.load(db, key)
	if err != nil {
		return err
	}
	if prev == nil {
		return errors.Wrapf(errors.ErrNotFound, "%s not in the store", mb.model)
	}
	for _, name := range mb.order {
		if err := mb.indexes[name].update(db, key, prev, nil); err != nil {
			return errors.Wrap(err, "cannot update index")
		}
	}
	if err := db.Delete(mb.dbKey(key)); err != nil {
		return errors.Wrap(err, "cannot delete from the database")
	}
	return nil
}

// load returns the model stored under given key or nil if it does not exist.
func (mb *modelBucket) load(db escrowd.ReadOnlyKVStore, key []byte) (Model, error) {
	m := mb.newModel()
	switch err := mb.One(db, key, m); {
	case err == nil:
		return m, nil
	case errors.ErrNotFound.Is(err):
		return nil, nil
	default:
		return nil, err
	}
}

func (mb *modelBucket) ByIndex(db escrowd.ReadOnlyKVStore, indexName string, value []byte, destination ModelSlicePtr) ([][]byte, error) {
	idx, ok := mb.indexes[indexName]
	if !ok {
		return nil, errors.Wrapf(errors.ErrInput, "no such index: %s", indexName)
	}

	dest := reflect.ValueOf(destination)
	if dest.Kind() != reflect.Ptr || dest.Elem().Kind() != reflect.Slice {
		return nil, errors.Wrapf(errors.ErrType, "destination must be a pointer to a slice, got %T", destination)
	}
	slice := dest.Elem()
	elemType := slice.Type().Elem()

	keys, err := idx.keys(db, value)
	if err != nil {
		return nil, err
	}
	for _, key := range keys {
		m := mb.newModel()
		if err := mb.One(db, key, m); err != nil {
			return nil, errors.Wrapf(err, "index %s reference %X", indexName, key)
		}
		v := reflect.ValueOf(m)
		switch {
		case v.Type().AssignableTo(elemType):
			slice = reflect.Append(slice, v)
		case v.Elem().Type().AssignableTo(elemType):
			slice = reflect.Append(slice, v.Elem())
		default:
			return nil, errors.Wrapf(errors.ErrType, "%T cannot be represented as %s", m, elemType)
		}
	}
	dest.Elem().Set(slice)
	return keys, nil
}

func (mb *modelBucket) Register(name string, r escrowd.QueryRouter) {
	path := "/" + name
	r.Register(path, keyQuery{mb: mb})
	for _, n := range mb.order {
		r.Register(path+"/"+n, indexQuery{mb: mb, idx: mb.indexes[n]})
	}
}

// keyQuery returns the raw entity stored under the primary key given as
// query data.
type keyQuery struct {
	mb *modelBucket
}

var _ escrowd.QueryHandler = keyQuery{}

func (q keyQuery) Query(db escrowd.ReadOnlyKVStore, mod string, data []byte) ([]escrowd.Model, error) {
	key, err := decodeIndexValue(mod, data)
	if err != nil {
		return nil, err
	}
	dbKey := q.mb.dbKey(key)
	raw, err := db.Get(dbKey)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	return []escrowd.Model{escrowd.Pair(dbKey, raw)}, nil
}

// indexQuery returns all raw entities referenced by the index value given
// as query data.
type indexQuery struct {
	mb  *modelBucket
	idx compactIndex
}

var _ escrowd.QueryHandler = indexQuery{}

func (q indexQuery) Query(db escrowd.ReadOnlyKVStore, mod string, data []byte) ([]escrowd.Model, error) {
	value, err := decodeIndexValue(mod, data)
	if err != nil {
		return nil, err
	}
	keys, err := q.idx.keys(db, value)
	if err != nil {
		return nil, err
	}
	res := make([]escrowd.Model, 0, len(keys))
	for _, key := range keys {
		dbKey := q.mb.dbKey(key)
		raw, err := db.Get(dbKey)
		if err != nil {
			return nil, err
		}
		if raw == nil {
			return nil, errors.Wrapf(errors.ErrNotFound, "index %s reference %X", q.idx.name, key)
		}
		res = append(res, escrowd.Pair(dbKey, raw))
	}
	return res, nil
}
