package app

import (
	"context"
	"testing"

	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/errors"
	"github.com/iov-one/escrowd/store"
	"github.com/iov-one/escrowd/weavetest"
	"github.com/iov-one/escrowd/x/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChain(t *testing.T) {
	c1 := &weavetest.Decorator{}
	c2 := &weavetest.Decorator{}
	h := &weavetest.Handler{}

	stack := ChainDecorators(
		c1,
		utils.NewLogging(),
		utils.NewRecovery(),
		c2,
	).WithHandler(h)

	ctx := context.Background()
	db := store.MemStore()
	tx := &weavetest.Tx{Msg: &weavetest.Msg{RoutePath: "test/chain"}}

	_, err := stack.Check(ctx, db, tx)
	require.NoError(t, err)
	_, err = stack.Deliver(escrowd.WithHeight(ctx, 4), db, tx)
	require.NoError(t, err)

	assert.Equal(t, 2, c1.CallCount())
	assert.Equal(t, 2, c2.CallCount())
	assert.Equal(t, 2, h.CallCount())

	// an error in the middle of the stack stops the call chain
	c2.DeliverErr = errors.ErrUnauthorized
	_, err = stack.Deliver(ctx, db, tx)
	assert.True(t, errors.ErrUnauthorized.Is(err))
	assert.Equal(t, 3, c1.CallCount())
	assert.Equal(t, 3, c2.CallCount())
	assert.Equal(t, 2, h.CallCount())
}

func TestChainRecoversPanics(t *testing.T) {
	stack := ChainDecorators(
		utils.NewRecovery(),
	).WithHandler(weavetest.PanicHandler{Value: "boom"})

	_, err := stack.Check(context.Background(), store.MemStore(), &weavetest.Tx{})
	assert.True(t, errors.ErrPanic.Is(err))
	_, err = stack.Deliver(context.Background(), store.MemStore(), &weavetest.Tx{})
	assert.True(t, errors.ErrPanic.Is(err))
}

func TestChainSkipsNil(t *testing.T) {
	var missing *weavetest.Decorator
	d := &weavetest.Decorator{}
	chain := ChainDecorators(nil, d, missing).Chain(nil)
	assert.Len(t, chain.chain, 1)

	h := &weavetest.Handler{}
	_, err := chain.WithHandler(h).Check(context.Background(), store.MemStore(), &weavetest.Tx{})
	require.NoError(t, err)
	assert.Equal(t, 1, d.CheckCallCount())
	assert.Equal(t, 1, h.CheckCallCount())
}

func TestChainDoesNotShareBase(t *testing.T) {
	base := ChainDecorators(&weavetest.Decorator{}, &weavetest.Decorator{})
	checkOnly := &weavetest.Decorator{}
	deliverOnly := &weavetest.Decorator{}

	a := base.Chain(checkOnly)
	b := base.Chain(deliverOnly)
	assert.Len(t, base.chain, 2)
	require.Len(t, a.chain, 3)
	require.Len(t, b.chain, 3)
	assert.True(t, a.chain[2] == escrowd.Decorator(checkOnly))
	assert.True(t, b.chain[2] == escrowd.Decorator(deliverOnly))
}
