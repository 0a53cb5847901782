package migration

import (
	"reflect"

	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/errors"
	"github.com/iov-one/escrowd/orm"
)

// ModelBucket implements the orm.ModelBucket interface and provides the same
// functionality with additional model schema migration. Every model is
// upgraded to the latest registered schema version when loaded and before
// being stored.
//
// Query handlers registered by this bucket return data as stored in the
// database. Query returned data is never altered.
type ModelBucket struct {
	orm.ModelBucket
	migrations *register
}

var _ orm.ModelBucket = (*ModelBucket)(nil)

// NewModelBucket returns a schema aware wrapper of given bucket.
func NewModelBucket(b orm.ModelBucket) *ModelBucket {
	return &ModelBucket{
		ModelBucket: b,
		migrations:  reg,
	}
}

// useRegister will update this bucket to use a custom register instance
// instead of the global one. This is a private method meant to be used for
// tests only.
func (m *ModelBucket) useRegister(r *register) {
	m.migrations = r
}

func (m *ModelBucket) One(db escrowd.ReadOnlyKVStore, key []byte, dest orm.Model) error {
	if err := m.ModelBucket.One(db, key, dest); err != nil {
		return err
	}
	if err := m.migrate(db, dest); err != nil {
		return errors.Wrap(err, "migrate")
	}
	return nil
}

func (m *ModelBucket) ByIndex(db escrowd.ReadOnlyKVStore, indexName string, value []byte, dest orm.ModelSlicePtr) ([][]byte, error) {
	keys, err := m.ModelBucket.ByIndex(db, indexName, value, dest)
	if err != nil {
		return nil, err
	}

	// The correct type of the dest was already validated by the
	// ModelBucket when getting data by index. We can safely skip checks,
	// dest is a slice of models.
	slice := reflect.ValueOf(dest).Elem()
	for i := 0; i < slice.Len(); i++ {
		item := slice.Index(i)

		// Slice can be both of values and pointer to values. This
		// method must support both notations.
		var model orm.Model
		if m, ok := item.Interface().(orm.Model); ok {
			model = m
		} else {
			model = item.Addr().Interface().(orm.Model)
		}

		if err := m.migrate(db, model); err != nil {
			return nil, errors.Wrapf(err, "migrate %d element", i)
		}
	}
	return keys, nil
}

func (m *ModelBucket) Create(db escrowd.KVStore, key []byte, model orm.Model) error {
	if err := m.migrate(db, model); err != nil {
		return errors.Wrap(err, "migrate")
	}
	return m.ModelBucket.Create(db, key, model)
}

func (m *ModelBucket) Put(db escrowd.KVStore, key []byte, model orm.Model) error {
	if err := m.migrate(db, model); err != nil {
		return errors.Wrap(err, "migrate")
	}
	return m.ModelBucket.Put(db, key, model)
}

func (m *ModelBucket) migrate(db escrowd.ReadOnlyKVStore, model orm.Model) error {
	return migrate(m.migrations, db, model)
}

func migrate(migrations *register, db escrowd.ReadOnlyKVStore, value interface{}) error {
	m, ok := value.(Migratable)
	if !ok {
		return errors.Wrap(errors.ErrModel, "model cannot be migrated")
	}
	current := migrations.Latest(m)
	if current == 0 {
		return errors.Wrapf(errors.ErrSchema, "no schema registered for %T", m)
	}

	meta := m.GetMetadata()
	if meta == nil {
		return errors.Wrapf(errors.ErrMetadata, "%T metadata is nil", m)
	}

	// In case of schema not being set we assume the code is expecting the
	// current version.
	if meta.Schema == 0 {
		meta.Schema = current
		return nil
	}

	if meta.Schema > current {
		return errors.Wrapf(errors.ErrSchema, "model schema higher than %d", current)
	}

	// Migration is applied in place, directly modifying the instance.
	if err := migrations.Apply(db, m, current); err != nil {
		return errors.Wrap(err, "schema migration")
	}
	return nil
}

// Migrate upgrades given value to the latest registered schema version.
//
// Returns an error if the passed value is not Migratable, not registered
// with migrations, missing Metadata, has a Schema higher than the current
// one or if the final migrated value is invalid.
func Migrate(db escrowd.ReadOnlyKVStore, value interface{}) error {
	return migrate(reg, db, value)
}
