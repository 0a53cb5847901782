package weavetest

import "github.com/iov-one/escrowd"

// Handler is a mock implementation of the escrowd.Handler interface.
//
// Each method call is counted. Configured result and error are returned.
// If WriteKey is set, the handler writes WriteValue under that key before
// returning.
type Handler struct {
	checkCall   int
	CheckResult escrowd.CheckResult
	CheckErr    error

	deliverCall   int
	DeliverResult escrowd.DeliverResult
	DeliverErr    error

	WriteKey   []byte
	WriteValue []byte
}

var _ escrowd.Handler = (*Handler)(nil)

func (h *Handler) Check(ctx escrowd.Context, db escrowd.KVStore, tx escrowd.Tx) (*escrowd.CheckResult, error) {
	h.checkCall++
	if err := h.write(db); err != nil {
		return nil, err
	}
	res := h.CheckResult
	return &res, h.CheckErr
}

func (h *Handler) Deliver(ctx escrowd.Context, db escrowd.KVStore, tx escrowd.Tx) (*escrowd.DeliverResult, error) {
	h.deliverCall++
	if err := h.write(db); err != nil {
		return nil, err
	}
	res := h.DeliverResult
	return &res, h.DeliverErr
}

func (h *Handler) write(db escrowd.KVStore) error {
	if h.WriteKey == nil {
		return nil
	}
	return db.Set(h.WriteKey, h.WriteValue)
}

func (h *Handler) CheckCallCount() int {
	return h.checkCall
}

func (h *Handler) DeliverCallCount() int {
	return h.deliverCall
}

func (h *Handler) CallCount() int {
	return h.checkCall + h.deliverCall
}

// PanicHandler is a handler that always panics with given value.
type PanicHandler struct {
	Value interface{}
}

var _ escrowd.Handler = PanicHandler{}

func (h PanicHandler) Check(escrowd.Context, escrowd.KVStore, escrowd.Tx) (*escrowd.CheckResult, error) {
	panic(h.Value)
}

func (h PanicHandler) Deliver(escrowd.Context, escrowd.KVStore, escrowd.Tx) (*escrowd.DeliverResult, error) {
	panic(h.Value)
}
