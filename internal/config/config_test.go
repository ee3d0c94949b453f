package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("JWT_TTL", "")
	t.Setenv("ORDER_PRICE_POLICY", "")
	t.Setenv("KAFKA_BROKERS", "")

	cfg := Load()
	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
	assert.Equal(t, 30*24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, PricePolicyTrust, cfg.OrderPricePolicy)
	assert.Nil(t, cfg.KafkaBrokers)
	assert.Equal(t, "products", cfg.ESIndex)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Mongo")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("STRICT_ORDER_STATUS", "true")
	t.Setenv("SERVER_PORT", "not-a-number")

	cfg := Load()
	assert.Equal(t, DriverMongo, cfg.StoreDriver)
	assert.Equal(t, 2*time.Hour, cfg.JWTTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.StrictOrderStatus)
	assert.Equal(t, 8080, cfg.ServerPort)
	require.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "postgres ok", cfg: Config{StoreDriver: DriverPostgres, DatabaseURL: "postgres://x", OrderPricePolicy: PricePolicyTrust}},
		{name: "postgres without dsn", cfg: Config{StoreDriver: DriverPostgres, OrderPricePolicy: PricePolicyTrust}, wantErr: true},
		{name: "mongo without uri", cfg: Config{StoreDriver: DriverMongo, OrderPricePolicy: PricePolicyTrust}, wantErr: true},
		{name: "unknown driver", cfg: Config{StoreDriver: "redis", OrderPricePolicy: PricePolicyTrust}, wantErr: true},
		{name: "unknown policy", cfg: Config{StoreDriver: DriverSQLite, DatabaseURL: "file.db", OrderPricePolicy: "maybe"}, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
