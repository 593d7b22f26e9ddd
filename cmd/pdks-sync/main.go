package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cdr.dev/slog/v3"
	"cdr.dev/slog/v3/sloggers/sloghuman"
	"github.com/coder/quartz"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/pflag"
	"golang.org/x/xerrors"

	"github.com/BrandonDHaskell/pdks-sync/internal/config"
	"github.com/BrandonDHaskell/pdks-sync/internal/healthsrv"
	"github.com/BrandonDHaskell/pdks-sync/internal/httpapi"
	"github.com/BrandonDHaskell/pdks-sync/internal/pdks/device/httpdevice"
	"github.com/BrandonDHaskell/pdks-sync/internal/pdks/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "pdks-sync: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		once    = pflag.Bool("once", false, "run a single sync pass and exit")
		envFile = pflag.String("env-file", ".env", "dotenv file to load before reading the environment")
	)
	pflag.Parse()

	// A missing .env is normal in production.
	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return xerrors.Errorf("load %s: %w", *envFile, err)
	}

	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := slog.Make(sloghuman.Sink(os.Stderr)).Leveled(logLevel(cfg.LogLevel)).Named("pdks-sync")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return xerrors.Errorf("open store: %w", err)
	}
	defer st.close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := service.NewMetrics(registry)

	runner := service.NewRunner(service.RunnerDeps{
		Dialer: httpdevice.New(httpdevice.Options{
			BaseURL: cfg.DeviceURL,
			Timeout: cfg.DeviceTimeout,
			Logger:  logger.Named("device"),
		}),
		Raw:       st.raw,
		Workdays:  st.workdays,
		Personnel: st.personnel,
		Logger:    logger.Named("sync"),
		Metrics:   metrics,
		Clock:     quartz.NewReal(),
	}, service.Options{
		DayStartHour:        cfg.DayStartHour,
		MinInterval:         cfg.MinInterval,
		AutoCreatePersonnel: cfg.AutoCreatePersonnel,
		ClearDeviceData:     cfg.ClearDeviceData,
	})

	logger.Info(ctx, "starting",
		slog.F("env", cfg.Env),
		slog.F("store", cfg.Store),
		slog.F("device_url", cfg.DeviceURL),
		slog.F("day_start_hour", cfg.DayStartHour),
		slog.F("min_interval", cfg.MinInterval.String()),
		slog.F("auto_create_personnel", cfg.AutoCreatePersonnel),
		slog.F("clear_device_data", cfg.ClearDeviceData),
	)

	if *once {
		res := runner.RunPass(ctx)
		if res.Err != nil {
			logger.Warn(ctx, "single pass did not complete", slog.Error(res.Err))
		}
		return nil
	}

	tracker := service.NewStatusTracker()
	observers := []service.Observer{tracker.Observe}

	var grpcSrv *healthsrv.Server
	if cfg.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			return xerrors.Errorf("listen grpc %s: %w", cfg.GRPCAddr, err)
		}
		grpcSrv = healthsrv.New(logger.Named("grpc"))
		observers = append(observers, grpcSrv.Observe)
		go func() {
			if err := grpcSrv.Serve(lis); err != nil {
				logger.Error(ctx, "grpc server error", slog.Error(err))
				stop()
			}
		}()
	}

	var httpSrv *httpapi.Server
	if cfg.HTTPAddr != "" {
		httpSrv = httpapi.NewServer(httpapi.Dependencies{
			Logger:   logger.Named("http"),
			Addr:     cfg.HTTPAddr,
			Status:   tracker,
			Gatherer: registry,
		})
		go func() {
			logger.Info(ctx, "listening", slog.F("addr", cfg.HTTPAddr))
			if err := httpSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error(ctx, "http server error", slog.Error(err))
				stop()
			}
		}()
	}

	sched := service.NewScheduler(runner, service.SchedulerConfig{
		Interval:  cfg.SyncInterval,
		Observers: observers,
	}, logger.Named("scheduler"))
	sched.Start(ctx)

	<-ctx.Done()
	logger.Info(context.Background(), "shutting down")

	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if httpSrv != nil {
		_ = httpSrv.Shutdown(shutdownCtx)
	}
	if grpcSrv != nil {
		grpcSrv.Stop()
	}
	return nil
}

func logLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
