package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

func Load() App {
	cfg := App{
		Port:             getenv("APP_PORT", "8080"),
		Env:              getenv("APP_ENV", "dev"),
		Store:            getenv("STORE", "postgres"),
		JWTSecret:        getenv("JWT_SECRET", "local_dev_secret"),
		LedgerURL:        os.Getenv("LEDGER_URL"),
		LedgerAPIKey:     os.Getenv("LEDGER_API_KEY"),
		ServicePrincipal: must("SERVICE_PRINCIPAL"),
		ReservationFee:   getUint("RESERVATION_FEE", 0),
		HoldPeriod:       getDuration("HOLD_PERIOD", 120*time.Second),
		SweepInterval:    getDuration("SWEEP_INTERVAL", 10*time.Second),
		VerifyWindow:     getUint("VERIFY_WINDOW", 1),
		KafkaBroker:      os.Getenv("KAFKA_BROKER"),
		KafkaTopic:       getenv("KAFKA_TOPIC", "vehicle-events"),
		OtelEndpoint:     os.Getenv("OTEL_ENDPOINT"),
	}
	if !cfg.InMemory() {
		cfg.DatabaseURL = must("DATABASE_URL")
		cfg.LedgerURL = must("LEDGER_URL")
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "err", err)
		panic(err)
	}
	return cfg
}

func (a App) Validate() error {
	if a.HoldPeriod <= 0 {
		return fmt.Errorf("HOLD_PERIOD must be positive, got %s", a.HoldPeriod)
	}
	if a.SweepInterval <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL must be positive, got %s", a.SweepInterval)
	}
	if a.VerifyWindow == 0 {
		return fmt.Errorf("VERIFY_WINDOW must be at least 1")
	}
	return nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getUint(k string, def uint64) uint64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		slog.Error("invalid unsigned env", "key", k, "value", v)
		panic("invalid env " + k)
	}
	return n
}

func getDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Error("invalid duration env", "key", k, "value", v)
		panic("invalid env " + k)
	}
	return d
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		slog.Error("required env missing", "key", k)
		panic("missing env " + k)
	}
	return v
}
