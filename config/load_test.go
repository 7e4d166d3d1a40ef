package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SERVICE_PRINCIPAL", "2vxsx-fae")
	t.Setenv("STORE", "memory")
	for _, k := range []string{"APP_PORT", "HOLD_PERIOD", "SWEEP_INTERVAL", "VERIFY_WINDOW", "KAFKA_TOPIC"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, 120*time.Second, cfg.HoldPeriod)
	require.Equal(t, 10*time.Second, cfg.SweepInterval)
	require.Equal(t, uint64(1), cfg.VerifyWindow)
	require.Equal(t, "vehicle-events", cfg.KafkaTopic)
	require.True(t, cfg.InMemory())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVICE_PRINCIPAL", "2vxsx-fae")
	t.Setenv("STORE", "memory")
	t.Setenv("HOLD_PERIOD", "5m")
	t.Setenv("RESERVATION_FEE", "10000")

	cfg := Load()
	require.Equal(t, 5*time.Minute, cfg.HoldPeriod)
	require.Equal(t, uint64(10000), cfg.ReservationFee)
}

func TestLoad_PostgresRequiresDatabaseURL(t *testing.T) {
	t.Setenv("SERVICE_PRINCIPAL", "2vxsx-fae")
	t.Setenv("STORE", "postgres")
	t.Setenv("DATABASE_URL", "")

	require.Panics(t, func() { Load() })
}

func TestValidate(t *testing.T) {
	cfg := App{HoldPeriod: time.Second, SweepInterval: time.Second, VerifyWindow: 1}
	require.NoError(t, cfg.Validate())

	cfg.VerifyWindow = 0
	require.Error(t, cfg.Validate())
}
