package utils

import (
	"context"
	"testing"

	"github.com/iov-one/escrowd/errors"
	"github.com/iov-one/escrowd/store"
	"github.com/iov-one/escrowd/weavetest"
	"github.com/iov-one/escrowd/weavetest/assert"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	ctx := context.Background()
	db := store.MemStore()
	tx := &weavetest.Tx{Msg: &weavetest.Msg{RoutePath: "escrow/fund"}}

	ok := &weavetest.Handler{}
	for i := 0; i < 3; i++ {
		_, err := m.Deliver(ctx, db, tx, ok)
		assert.Nil(t, err)
	}
	_, err := m.Check(ctx, db, tx, ok)
	assert.Nil(t, err)

	fail := &weavetest.Handler{DeliverErr: errors.ErrUnauthorized}
	_, err = m.Deliver(ctx, db, tx, fail)
	assert.IsErr(t, errors.ErrUnauthorized, err)

	assert.Equal(t, float64(3), testutil.ToFloat64(m.txs.WithLabelValues("escrow/fund", "deliver", "0")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.txs.WithLabelValues("escrow/fund", "check", "0")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.txs.WithLabelValues("escrow/fund", "deliver", "2")))

	assert.Panics(t, func() { NewMetrics(reg) })
}
