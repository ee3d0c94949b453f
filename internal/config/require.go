package config

import (
	"fmt"
	"log"
	"slices"
)

func MustNonEmptyBytes(value []byte, envName string) {
	if len(value) == 0 {
		log.Fatalf("missing required env %s", envName)
	}
}

// Validate checks the settings that depend on each other.
func (c Config) Validate() error {
	switch c.StoreDriver {
	case DriverPostgres, DriverSQLite:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for store driver %q", c.StoreDriver)
		}
	case DriverMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required for store driver %q", c.StoreDriver)
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if !slices.Contains([]string{PricePolicyTrust, PricePolicyVerify}, c.OrderPricePolicy) {
		return fmt.Errorf("unknown ORDER_PRICE_POLICY %q", c.OrderPricePolicy)
	}
	return nil
}
