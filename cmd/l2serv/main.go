package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"github.com/jddeal/go-wsr88d/internal/config"
	"github.com/jddeal/go-wsr88d/internal/logging"
	"github.com/jddeal/go-wsr88d/internal/observability"
	"github.com/jddeal/go-wsr88d/internal/server"
)

var cli struct {
	Config string `short:"c" long:"config" description:"YAML config file, L2SERV_* environment variables override it"`
}

const shutdownTimeout = 10 * time.Second

func main() {
	if _, err := flags.Parse(&cli); err != nil {
		os.Exit(1)
	}

	cfg, err := config.Load(cli.Config)
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}

	log, closer, err := logging.New(cfg)
	if err != nil {
		logrus.Fatalf("logging: %v", err)
	}
	defer closer.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(reg)

	srv := server.New(cfg, log, metrics, reg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("shutdown")
	}
}
