package utils

import (
	"strconv"
	"time"

	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is a decorator that counts processed transactions and measures
// the processing time. Counters are labeled with the message path, the
// processing phase (check or deliver) and the ABCI result code.
type Metrics struct {
	txs      *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

var _ escrowd.Decorator = Metrics{}

// NewMetrics creates a Metrics decorator. Collectors are registered with
// given registerer. Creating two decorators on the same registerer panics.
func NewMetrics(reg prometheus.Registerer) Metrics {
	m := Metrics{
		txs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "escrowd",
			Subsystem: "tx",
			Name:      "processed_total",
			Help:      "Total number of processed transactions.",
		}, []string{"path", "phase", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "escrowd",
			Subsystem: "tx",
			Name:      "duration_seconds",
			Help:      "Transaction processing time.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}, []string{"path", "phase"}),
	}
	reg.MustRegister(m.txs, m.duration)
	return m
}

// Check passes the request along and records the result.
func (m Metrics) Check(ctx escrowd.Context, store escrowd.KVStore, tx escrowd.Tx, next escrowd.Checker) (*escrowd.CheckResult, error) {
	start := time.Now()
	res, err := next.Check(ctx, store, tx)
	m.observe(tx, "check", start, err)
	return res, err
}

// Deliver passes the request along and records the result.
func (m Metrics) Deliver(ctx escrowd.Context, store escrowd.KVStore, tx escrowd.Tx, next escrowd.Deliverer) (*escrowd.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, store, tx)
	m.observe(tx, "deliver", start, err)
	return res, err
}

func (m Metrics) observe(tx escrowd.Tx, phase string, start time.Time, err error) {
	path := escrowd.GetPath(tx)
	code, _ := errors.ABCIInfo(err, false)
	m.txs.WithLabelValues(path, phase, strconv.FormatUint(uint64(code), 10)).Inc()
	m.duration.WithLabelValues(path, phase).Observe(time.Since(start).Seconds())
}
