package migration

import (
	"reflect"

	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/errors"
)

// Migratable is implemented by both messages and models that carry schema
// version information. Schema migration supports both of those data types.
type Migratable interface {
	GetMetadata() *escrowd.Metadata
	Validate() error
}

// Migrator is a function that migrates a data entity from version
// requiredVersion-1 to requested version.
type Migrator func(db escrowd.ReadOnlyKVStore, m Migratable) error

// NoModification is a migration function that migrates data that requires
// no change. It should be used to register migrations that do not require
// any modifications.
func NoModification(db escrowd.ReadOnlyKVStore, m Migratable) error {
	return nil
}

func newRegister() *register {
	return &register{
		handlers: make(map[payloadVersion]Migrator),
		latest:   make(map[reflect.Type]uint32),
	}
}

type register struct {
	handlers map[payloadVersion]Migrator
	// latest keeps the highest registered version of each payload.
	latest map[reflect.Type]uint32
}

// payloadVersion references a message or a model at a given schema version.
type payloadVersion struct {
	payload reflect.Type
	version uint32
}

func payloadType(m Migratable) (reflect.Type, error) {
	tp := reflect.TypeOf(m)
	for tp != nil && tp.Kind() == reflect.Ptr {
		tp = tp.Elem()
	}
	if tp == nil || tp.Kind() != reflect.Struct {
		return nil, errors.Wrapf(errors.ErrInput, "only struct can be migrated, got %T", m)
	}
	return tp, nil
}

func (r *register) MustRegister(migrationTo uint32, m Migratable, fn Migrator) {
	if err := r.Register(migrationTo, m, fn); err != nil {
		panic(err)
	}
}

// Register adds a migration to given version. Versions must be registered
// sequentially, starting with 1.
func (r *register) Register(migrationTo uint32, m Migratable, fn Migrator) error {
	if migrationTo < 1 {
		return errors.Wrap(errors.ErrInput, "minimal allowed version is 1")
	}
	tp, err := payloadType(m)
	if err != nil {
		return err
	}
	pv := payloadVersion{version: migrationTo, payload: tp}
	if _, ok := r.handlers[pv]; ok {
		return errors.Wrapf(errors.ErrDuplicate, "already registered: %s.%s:%d", tp.PkgPath(), tp.Name(), migrationTo)
	}
	if migrationTo != r.latest[tp]+1 {
		return errors.Wrapf(errors.ErrInput, "missing %d version migration for %s.%s", r.latest[tp]+1, tp.PkgPath(), tp.Name())
	}
	r.handlers[pv] = fn
	r.latest[tp] = migrationTo
	return nil
}

// Latest returns the highest schema version registered for given payload
// type or zero if nothing was registered.
func (r *register) Latest(m Migratable) uint32 {
	tp, err := payloadType(m)
	if err != nil {
		return 0
	}
	return r.latest[tp]
}

func (r *register) Apply(db escrowd.ReadOnlyKVStore, m Migratable, migrateTo uint32) error {
	if migrateTo < 1 {
		return errors.Wrap(errors.ErrInput, "minimal allowed version is 1")
	}
	tp, err := payloadType(m)
	if err != nil {
		return err
	}
	meta := m.GetMetadata()
	if meta == nil {
		return errors.Wrapf(errors.ErrMetadata, "%T metadata is nil", m)
	}
	for v := meta.Schema + 1; v <= migrateTo; v++ {
		migrate, ok := r.handlers[payloadVersion{payload: tp, version: v}]
		if !ok {
			return errors.Wrapf(errors.ErrSchema, "migration to version %d missing", v)
		}
		if err := migrate(db, m); err != nil {
			return errors.Wrapf(err, "migration to version %d", v)
		}
		meta.Schema = v
	}

	if err := m.Validate(); err != nil {
		return errors.Wrap(err, "validation")
	}
	return nil
}

// reg is a globally available register instance that must be used during the
// runtime to register migration handlers.
// Register is declared as a separate type so that it can be tested without
// worrying about the global state.
var reg = newRegister()

// MustRegister registers a migration function for given payload in the
// global register. It panics on failure and is meant to be called from
// package init.
func MustRegister(migrationTo uint32, m Migratable, fn Migrator) {
	reg.MustRegister(migrationTo, m, fn)
}

// Apply updates a payload by applying all missing data migrations. Even a no
// modification migration is updating the metadata to point to the latest
// data format version.
//
// Because changes are applied directly on the passed payload, even if this
// function fails some of the data migrations might be applied.
//
// Validation method is called only on the final version of the payload.
func Apply(db escrowd.ReadOnlyKVStore, m Migratable, migrateTo uint32) error {
	return reg.Apply(db, m, migrateTo)
}

// Latest returns the current schema version of given payload type as
// registered in the global register.
func Latest(m Migratable) uint32 {
	return reg.Latest(m)
}
