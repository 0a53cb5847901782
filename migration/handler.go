package migration

import (
	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/errors"
)

// SchemaMigratingHandler returns a handler that will ensure incoming
// messages are in the current schema version format. If a message in older
// schema is handled then it is first being migrated. Messages that cannot be
// migrated to current schema version are returning migration error. This
// functionality is executed before the decorated handler and it is
// transparent to the wrapped handler.
func SchemaMigratingHandler(h escrowd.Handler) escrowd.Handler {
	return &schemaMigratingHandler{
		handler:    h,
		migrations: reg,
	}
}

type schemaMigratingHandler struct {
	handler    escrowd.Handler
	migrations *register
}

func (h *schemaMigratingHandler) Check(ctx escrowd.Context, db escrowd.KVStore, tx escrowd.Tx) (*escrowd.CheckResult, error) {
	if err := h.migrate(db, tx); err != nil {
		return nil, errors.Wrap(err, "migration")
	}
	return h.handler.Check(ctx, db, tx)
}

func (h *schemaMigratingHandler) Deliver(ctx escrowd.Context, db escrowd.KVStore, tx escrowd.Tx) (*escrowd.DeliverResult, error) {
	if err := h.migrate(db, tx); err != nil {
		return nil, errors.Wrap(err, "migration")
	}
	return h.handler.Deliver(ctx, db, tx)
}

func (h *schemaMigratingHandler) migrate(db escrowd.ReadOnlyKVStore, tx escrowd.Tx) error {
	msg, err := tx.GetMsg()
	if err != nil {
		return errors.Wrap(err, "get msg")
	}
	if _, ok := msg.(Migratable); !ok {
		return errors.Wrap(errors.ErrMsg, "message cannot be migrated")
	}
	return migrate(h.migrations, db, msg)
}

// SchemaMigratingRegistry decorates given registry so that every registered
// handler is wrapped with SchemaMigratingHandler.
func SchemaMigratingRegistry(r escrowd.Registry) escrowd.Registry {
	return &schemaMigratingRegistry{reg: r}
}

type schemaMigratingRegistry struct {
	reg escrowd.Registry
}

func (r *schemaMigratingRegistry) Handle(path string, h escrowd.Handler) {
	r.reg.Handle(path, SchemaMigratingHandler(h))
}
