package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"watch2give/config"
	"watch2give/core"
	"watch2give/core/events"
	"watch2give/native/watch2give"
	"watch2give/observability/logging"
	w2gotel "watch2give/observability/otel"
	"watch2give/rpc"
	"watch2give/storage"
)

const serviceName = "watch2given"

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Parse()

	if err := run(*configFile); err != nil {
		fmt.Fprintf(os.Stderr, "watch2given: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if env := strings.TrimSpace(os.Getenv("W2G_ENV")); env != "" {
		cfg.Environment = env
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("LogLevel: %w", err)
	}
	logger := logging.SetupWithOptions(logging.Options{
		Service:    serviceName,
		Env:        cfg.Environment,
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		Level:      level,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := w2gotel.Init(ctx, w2gotel.FromNodeConfig(serviceName, cfg))
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(flushCtx); err != nil {
			logger.Warn("telemetry shutdown failed", slog.Any("error", err))
		}
	}()

	db, err := storage.NewLevelDBWithOptions(filepath.Join(cfg.DataDir, "ledger"), storage.LevelDBOptions{
		CacheMB: cfg.Ledger.CacheMB,
		Handles: cfg.Ledger.Handles,
	})
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	ledger, err := core.OpenLedger(db)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	ledger.SetLogger(logger)
	schedule, err := rewardSchedule(cfg.Ledger.RewardTiers)
	if err != nil {
		return fmt.Errorf("reward tiers: %w", err)
	}
	ledger.SetRewardSchedule(schedule)
	ledger.SetEmitter(eventLogger{logger: logger.With(slog.String("component", "events"))})
	logger.Info("ledger ready",
		slog.Uint64("height", ledger.Height()),
		slog.String("root", ledger.StateRoot().Hex()))

	secret := cfg.RPC.JWTSecret()
	logAuthMode(logger, cfg.RPC, secret)
	server := rpc.NewServer(ledger, rpc.Config{
		MaxRequestBytes:   cfg.RPC.MaxRequestBytes,
		RequestsPerMinute: cfg.RPC.RequestsPerMinute,
		Burst:             cfg.RPC.Burst,
		JWTSecret:         secret,
		JWTIssuer:         cfg.RPC.JWTIssuer,
		TrustedProxies:    cfg.RPC.TrustedProxies,
	}, logger)

	if err := server.Serve(ctx, cfg.RPCAddress); err != nil {
		return err
	}
	logger.Info("shutdown complete", slog.Uint64("height", ledger.Height()))
	return nil
}

// logAuthMode reports whether caller tokens can be verified. Mint, burn and
// proof submission stay open either way.
func logAuthMode(logger *slog.Logger, cfg config.RPC, secret []byte) {
	if len(secret) == 0 {
		logger.Warn("RPC JWT secret not set; donate, stake and w2g_call will be rejected",
			slog.String("env_var", cfg.JWTSecretEnv))
		return
	}
	logger.Info("RPC caller authentication enabled",
		slog.String("env_var", cfg.JWTSecretEnv),
		logging.MaskField("jwt_secret", string(secret)),
		slog.String("issuer", cfg.JWTIssuer))
}

func rewardSchedule(tiers []config.RewardTier) (watch2give.RewardSchedule, error) {
	converted := make([]watch2give.RewardTier, 0, len(tiers))
	for _, tier := range tiers {
		converted = append(converted, watch2give.RewardTier{Threshold: tier.Threshold, Name: tier.Name})
	}
	return watch2give.NewRewardSchedule(converted)
}

// eventLogger writes every committed event to the structured log.
type eventLogger struct {
	logger *slog.Logger
}

func (e eventLogger) Emit(evt events.Event) {
	payload := evt.Event()
	if payload == nil {
		return
	}
	attrs := make([]any, 0, len(payload.Attributes)+1)
	attrs = append(attrs, slog.String("type", payload.Type))
	for k, v := range payload.Attributes {
		attrs = append(attrs, slog.String(k, v))
	}
	e.logger.Info("ledger event", attrs...)
}
