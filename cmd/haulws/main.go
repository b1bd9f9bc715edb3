package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"boxhaul/internal/config"
	"boxhaul/internal/gridio"
	"boxhaul/internal/logging"
	"boxhaul/internal/metrics"
	"boxhaul/internal/persistence/indexdb"
	"boxhaul/internal/runner"
	"boxhaul/internal/transport/ws"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		cfgPath, addr, traceDir, indexPath string
		allowRemote                        bool
	)
	flag.StringVar(&cfgPath, "config", "", "run config yaml (optional)")
	flag.StringVar(&addr, "addr", "", "listen address (default serve.addr)")
	flag.StringVar(&traceDir, "trace", "", "directory for zstd event traces")
	flag.StringVar(&indexPath, "index", "", "sqlite run index")
	flag.BoolVar(&allowRemote, "allow-remote", false, "accept websocket peers beyond loopback")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if addr != "" {
		cfg.Serve.Addr = addr
	}
	if traceDir != "" {
		cfg.Trace.Dir = traceDir
	}
	if indexPath != "" {
		cfg.Index.Path = indexPath
	}

	log := logging.New(logging.Config{
		Service:    "haulws",
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSize:    cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})

	m := metrics.New()
	m.Registry().MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	r := &runner.Runner{Logger: log, TraceDir: cfg.Trace.Dir, Metrics: m}
	if cfg.Index.Path != "" {
		idx, err := indexdb.OpenSQLite(cfg.Index.Path)
		if err != nil {
			fmt.Fprintln(os.Stderr, "index:", err)
			return 1
		}
		defer idx.Close()
		r.Index = idx
	}

	srv := ws.NewServer(ws.Options{
		Logger:      log,
		Runner:      r,
		Grid:        gridio.ReadOptions{Size: cfg.Grid.Size, Header: cfg.Grid.Header()},
		AllowRemote: allowRemote,
	})
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/ws", srv.Handler())
	mux.Handle("/metrics", promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	httpSrv := &http.Server{
		Addr:              cfg.Serve.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	log.Info("listening", "addr", cfg.Serve.Addr)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("serve", "err", err)
		return 1
	}
	return 0
}
