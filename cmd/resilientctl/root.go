package main

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/orrery/resilient/backoff"
	"github.com/orrery/resilient/circuit"
	"github.com/orrery/resilient/engine"
	"github.com/orrery/resilient/hedge"
	"github.com/orrery/resilient/observe/promobserve"
)

var (
	flagDebug           bool
	flagInterval        time.Duration
	flagFailureRate     float64
	flagMaxRetries      int
	flagMetricsAddr     string
	flagEnableHedge     bool
	flagConfigPath      string
	flagFailureThreshold int
	flagResetTimeout    time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "resilientctl",
	Short: "Drive the resilient executor against a simulated dependency",
	Run:   run,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
	rootCmd.Flags().DurationVar(&flagInterval, "interval", 2*time.Second, "time between simulated calls")
	rootCmd.Flags().Float64Var(&flagFailureRate, "failure-rate", 0.5, "probability a simulated call fails")
	rootCmd.Flags().IntVar(&flagMaxRetries, "max-retries", 3, "maximum retries per call")
	rootCmd.Flags().StringVar(&flagMetricsAddr, "metrics-addr", ":2112", "address to serve Prometheus metrics on, empty to disable")
	rootCmd.Flags().BoolVar(&flagEnableHedge, "hedge", false, "enable speculative hedged attempts")
	rootCmd.Flags().StringVar(&flagConfigPath, "config", "", "optional YAML file with default flag values")
	rootCmd.Flags().IntVar(&flagFailureThreshold, "circuit-failure-threshold", 5, "consecutive failures before the breaker opens")
	rootCmd.Flags().DurationVar(&flagResetTimeout, "circuit-reset-timeout", 10*time.Second, "how long the breaker stays open before probing")
}

// applyFileConfig overlays fc onto any flag the caller left at its default,
// letting a config file set baseline behavior while explicit flags still win.
func applyFileConfig(cmd *cobra.Command, fc *fileConfig) {
	if !cmd.Flags().Changed("interval") && fc.Interval > 0 {
		flagInterval = fc.Interval
	}
	if !cmd.Flags().Changed("failure-rate") && fc.FailureRate > 0 {
		flagFailureRate = fc.FailureRate
	}
	if !cmd.Flags().Changed("max-retries") && fc.MaxRetries > 0 {
		flagMaxRetries = fc.MaxRetries
	}
	if !cmd.Flags().Changed("metrics-addr") && fc.MetricsAddr != "" {
		flagMetricsAddr = fc.MetricsAddr
	}
	if !cmd.Flags().Changed("hedge") && fc.Hedge {
		flagEnableHedge = fc.Hedge
	}
	if !cmd.Flags().Changed("circuit-failure-threshold") && fc.CircuitBreaker.FailureThreshold > 0 {
		flagFailureThreshold = fc.CircuitBreaker.FailureThreshold
	}
	if !cmd.Flags().Changed("circuit-reset-timeout") && fc.CircuitBreaker.ResetTimeout > 0 {
		flagResetTimeout = fc.CircuitBreaker.ResetTimeout
	}
}

func run(cmd *cobra.Command, args []string) {
	_ = godotenv.Load()

	if flagConfigPath != "" {
		fc, err := loadFileConfig(flagConfigPath)
		if err != nil {
			slog.Error("failed to load config file", "path", flagConfigPath, "error", err)
			os.Exit(1)
		}
		applyFileConfig(cmd, fc)
	}

	level := slog.LevelInfo
	if flagDebug {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.RFC3339,
	}))
	slog.SetDefault(logger)

	reg := prometheus.NewRegistry()
	promObs := promobserve.New(reg, "resilientctl_demo")

	if flagMetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go func() {
			logger.Info("serving metrics", "addr", flagMetricsAddr)
			if err := http.ListenAndServe(flagMetricsAddr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", "error", err)
			}
		}()
	}

	eng, err := engine.New(
		engine.WithTimeout(500*time.Millisecond),
		engine.WithRetry(engine.RetryConfig{
			MaxRetries: flagMaxRetries,
			Strategy:   backoff.Exponential(25*time.Millisecond, 2, time.Second),
			Jitter:     backoff.Full(50),
		}),
		engine.WithCircuitBreaker(circuit.Config{
			Enabled:          true,
			FailureThreshold: flagFailureThreshold,
			ResetTimeout:     flagResetTimeout,
		}),
		engine.WithHedge(engine.HedgeConfig{
			Enabled:               flagEnableHedge,
			MaxHedges:             2,
			Trigger:               hedge.FixedDelayTrigger{Delay: 150 * time.Millisecond},
			CancelOnFirstTerminal: true,
		}),
		engine.WithHooks(promObs.Hooks()),
		engine.WithLogger(slogAdapter{logger}),
	)
	if err != nil {
		logger.Error("failed to build engine", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(flagInterval)
	defer ticker.Stop()

	logger.Info("resilientctl started", "interval", flagInterval, "failureRate", flagFailureRate, "hedging", flagEnableHedge)

	for {
		select {
		case <-ticker.C:
			callOnce(ctx, eng, logger)
		case sig := <-sigChan:
			logger.Info("received signal, shutting down", "signal", sig.String())
			return
		}
	}
}

func callOnce(ctx context.Context, eng *engine.Engine, logger *slog.Logger) {
	callCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	r := engine.Run(callCtx, eng, func(context.Context) (string, error) {
		time.Sleep(time.Duration(rand.Intn(50)) * time.Millisecond)
		if rand.Float64() < flagFailureRate {
			return "", errors.New("simulated dependency failure")
		}
		return "ok", nil
	})

	if r.Ok() {
		logger.Info("call succeeded", "attempts", r.Metrics.TotalAttempts, "retries", r.Metrics.TotalRetries)
		return
	}
	logger.Warn("call failed", "type", r.Type.String(), "code", r.Err.Code, "attempts", r.Metrics.TotalAttempts)
}

type slogAdapter struct{ l *slog.Logger }

func (a slogAdapter) Debug(msg string, args ...any) { a.l.Debug(msg, args...) }
func (a slogAdapter) Info(msg string, args ...any)  { a.l.Info(msg, args...) }
func (a slogAdapter) Warn(msg string, args ...any)  { a.l.Warn(msg, args...) }
func (a slogAdapter) Error(msg string, args ...any) { a.l.Error(msg, args...) }
