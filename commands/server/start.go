package server

import (
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/iov-one/escrowd/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tendermint/tendermint/abci/server"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

const (
	flagBind    = "bind"
	flagDebug   = "debug"
	flagMetrics = "metrics"
)

// Options are passed to the AppGenerator when the daemon starts.
type Options struct {
	Home   string
	Logger log.Logger
	Debug  bool
	// Registerer collects application metrics. It is exposed over HTTP
	// when the -metrics flag is set.
	Registerer prometheus.Registerer
}

// AppGenerator lets us lazily initialize app, using home dir
// and logger potentially initialized with other flags
type AppGenerator func(*Options) (abci.Application, error)

type startFlags struct {
	bind    string
	metrics string
	debug   bool
}

func parseStartFlags(args []string) (startFlags, error) {
	var f startFlags
	fs := flag.NewFlagSet("start", flag.ContinueOnError)
	fs.StringVar(&f.bind, flagBind, "tcp://localhost:26658", "address server listens on")
	fs.StringVar(&f.metrics, flagMetrics, "", "address the prometheus metrics are served on, disabled if empty")
	fs.BoolVar(&f.debug, flagDebug, false, "call stack returned on error")
	if err := fs.Parse(args); err != nil {
		return f, errors.Wrap(errors.ErrInput, err.Error())
	}
	return f, nil
}

// StartCmd initializes the application and runs the ABCI socket server
// until the process receives an interrupt.
func StartCmd(gen AppGenerator, logger log.Logger, home string, args []string) error {
	flags, err := parseStartFlags(args)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	app, err := gen(&Options{
		Home:       home,
		Logger:     logger,
		Debug:      flags.debug,
		Registerer: reg,
	})
	if err != nil {
		return err
	}

	if flags.metrics != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go func() {
			logger.Info("Serving metrics", "bind", flags.metrics)
			if err := http.ListenAndServe(flags.metrics, mux); err != nil {
				logger.Error("Metrics server failed", "err", err)
			}
		}()
	}

	logger.Info("Starting ABCI app", "bind", flags.bind)
	svr, err := server.NewServer(flags.bind, "socket", app)
	if err != nil {
		return errors.Wrap(err, "cannot create listener")
	}
	svr.SetLogger(logger.With("module", "abci-server"))
	if err := svr.Start(); err != nil {
		return errors.Wrap(err, "cannot start server")
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	s := <-sig
	logger.Info("Shutting down", "signal", s.String())
	return svr.Stop()
}
