package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/tuantuan-o/ConnectionPool/pkg/api"
	"github.com/tuantuan-o/ConnectionPool/pkg/config"
	"github.com/tuantuan-o/ConnectionPool/pkg/dbconn"
	"github.com/tuantuan-o/ConnectionPool/pkg/health"
	"github.com/tuantuan-o/ConnectionPool/pkg/logger"
	"github.com/tuantuan-o/ConnectionPool/pkg/pool"
)

func main() {
	configPath := flag.String("config", "pool.ini", "Config file path (key=value or YAML)")
	adminAddr := flag.String("admin-addr", "", "Admin listen address (overrides config)")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
	logFormat := flag.String("log-format", "", "Log format: text or json (overrides config)")
	demoWorkers := flag.Int("demo-workers", 0, "Run a demo insert workload with this many workers, then exit")
	demoInserts := flag.Int("demo-inserts", 2500, "Inserts per demo worker")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Command-line flags win over the config file
	if *adminAddr != "" {
		cfg.Admin.Addr = *adminAddr
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if *logFormat != "" {
		cfg.Logging.Format = *logFormat
	}

	logger.Init(logger.LogLevel(cfg.Logging.Level), cfg.Logging.Format)
	log := logger.Get()

	log.InfoWith("configuration loaded", "config", cfg.String())

	factory, err := dbconn.NewFactory(cfg.Database)
	if err != nil {
		log.ErrorWithErr("failed to build connection factory", err)
		os.Exit(1)
	}

	p, err := pool.New(pool.Config{
		InitSize:       cfg.Pool.InitSize,
		MaxSize:        cfg.Pool.MaxSize,
		MaxIdle:        cfg.Pool.MaxIdle(),
		AcquireTimeout: cfg.Pool.AcquireTimeout(),
	}, factory)
	if err != nil {
		log.ErrorWithErr("failed to start pool", err)
		os.Exit(1)
	}

	if *demoWorkers > 0 {
		runDemo(p, *demoWorkers, *demoInserts)
		p.Close()
		return
	}

	monitor := health.NewMonitor()
	monitor.SetComponentStatus("config", health.StatusHealthy, "loaded from "+*configPath)

	admin := api.NewServer(p, monitor)
	httpSrv := &http.Server{
		Addr:    cfg.Admin.Addr,
		Handler: admin.Router(),
	}

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.ErrorWithErr("admin server failed", err)
		}
	}()
	log.InfoWith("admin server listening", "addr", cfg.Admin.Addr)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.InfoWith("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		log.ErrorWithErr("admin server shutdown failed", err)
	}
	if err := p.Close(); err != nil {
		log.ErrorWithErr("pool shutdown failed", err)
	}
}

// runDemo stresses the pool: each worker repeatedly borrows a connection and
// inserts a row, so connection cost is amortized across all inserts
func runDemo(p *pool.Pool, workers, inserts int) {
	log := logger.Get()
	log.InfoWith("starting demo workload", "workers", workers, "insertsPerWorker", inserts)

	var failures atomic.Uint64
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < inserts; j++ {
				if err := insertOne(p); err != nil {
					failures.Add(1)
				}
			}
		}()
	}
	wg.Wait()

	log.InfoWith("demo finished",
		"inserts", workers*inserts,
		"failures", failures.Load(),
		"elapsed", time.Since(start),
	)
}

func insertOne(p *pool.Pool) error {
	ctx := context.Background()

	conn, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	_, err = conn.Exec(ctx, "INSERT INTO user(name, age, sex) VALUES (?, ?, ?)", "zhang san", 20, "male")
	return err
}
