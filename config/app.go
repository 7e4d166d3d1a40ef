package config

import "time"

type App struct {
	Port        string `env:"APP_PORT" default:"8080"`
	Env         string `env:"APP_ENV" default:"dev"`
	Store       string `env:"STORE" default:"postgres"`
	DatabaseURL string `env:"DATABASE_URL"`
	JWTSecret   string `env:"JWT_SECRET,required"`

	LedgerURL        string `env:"LEDGER_URL"`
	LedgerAPIKey     string `env:"LEDGER_API_KEY"`
	ServicePrincipal string `env:"SERVICE_PRINCIPAL,required"`

	ReservationFee uint64        `env:"RESERVATION_FEE" default:"0"`
	HoldPeriod     time.Duration `env:"HOLD_PERIOD" default:"120s"`
	SweepInterval  time.Duration `env:"SWEEP_INTERVAL" default:"10s"`
	VerifyWindow   uint64        `env:"VERIFY_WINDOW" default:"1"`

	KafkaBroker  string `env:"KAFKA_BROKER"`
	KafkaTopic   string `env:"KAFKA_TOPIC" default:"vehicle-events"`
	OtelEndpoint string `env:"OTEL_ENDPOINT"`
}

// InMemory reports whether the process runs without Postgres and a remote ledger.
func (a App) InMemory() bool { return a.Store == "memory" }
