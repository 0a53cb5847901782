package utils

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/errors"
	"github.com/iov-one/escrowd/store"
	"github.com/iov-one/escrowd/weavetest"
	"github.com/iov-one/escrowd/weavetest/assert"
	"github.com/tendermint/tendermint/libs/log"
)

func TestRecovery(t *testing.T) {
	h := weavetest.PanicHandler{Value: "boom"}
	r := NewRecovery()

	ctx := context.Background()
	s := store.MemStore()

	// Panic handler panics. Test the test tool.
	assert.Panics(t, func() { _, _ = h.Check(ctx, s, nil) })
	assert.Panics(t, func() { _, _ = h.Deliver(ctx, s, nil) })

	// Recovery wrapped handler returns an error.
	_, err := r.Check(ctx, s, nil, h)
	assert.IsErr(t, errors.ErrPanic, err)

	_, err = r.Deliver(ctx, s, nil, h)
	assert.IsErr(t, errors.ErrPanic, err)

	// Errors pass through unchanged.
	fail := &weavetest.Handler{DeliverErr: errors.ErrState}
	_, err = r.Deliver(ctx, s, nil, fail)
	assert.IsErr(t, errors.ErrState, err)
}

func TestRecoveryLogsPanic(t *testing.T) {
	var buf bytes.Buffer
	ctx := escrowd.WithLogger(context.Background(), log.NewTMLogger(&buf))
	tx := &weavetest.Tx{Msg: &weavetest.Msg{RoutePath: "escrow/withdraw"}}

	_, err := NewRecovery().Deliver(ctx, store.MemStore(), tx, weavetest.PanicHandler{Value: "vault missing"})
	assert.IsErr(t, errors.ErrPanic, err)
	if !strings.Contains(err.Error(), "escrow/withdraw: vault missing") {
		t.Fatalf("panic value and path not in the error: %q", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "E[") {
		t.Fatalf("want an error log line, got %q", out)
	}
	if !strings.Contains(out, "path=escrow/withdraw") {
		t.Fatalf("transaction path not logged: %q", out)
	}
}
