package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AppConfig เก็บค่า env ทั้งหมดที่ service ใช้ (โหลดครั้งเดียวตอน start)
type AppConfig struct {
	Port            string
	CorsOrigins     []string
	DefaultCurrency string
	// DefaultTaxRate is a fraction (0.12 = 12%), used when an addon has no tax ids.
	DefaultTaxRate decimal.Decimal
	CashSalePrefix string
	SessionTTL     time.Duration
	SeedData       bool

	RedisAddr    string
	RedisChannel string
	KafkaBroker  string
	KafkaTopic   string
}

func envOrDefault(key, def string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	return value
}

func envBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("⚠️ %s=%q is not a bool, using %v", key, raw, def)
		return def
	}
	return v
}

func parseCorsOrigins(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{"*"}
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// parseTaxRate accepts "12" or "12%" (percent) or "0.12" (fraction).
func parseTaxRate(raw string) decimal.Decimal {
	raw = strings.TrimSpace(raw)
	// "12%" เป็นเปอร์เซ็นต์เสมอ, ตัวเลขเปล่า >1 ถือเป็นเปอร์เซ็นต์, <=1 เป็น fraction
	percent := strings.HasSuffix(raw, "%")
	raw = strings.TrimSpace(strings.TrimSuffix(raw, "%"))
	if raw == "" {
		return decimal.Zero
	}
	rate, err := decimal.NewFromString(raw)
	if err != nil || rate.IsNegative() {
		log.Printf("⚠️ DEFAULT_TAX_RATE=%q is invalid, using 0", raw)
		return decimal.Zero
	}
	if percent || rate.GreaterThan(decimal.NewFromInt(1)) {
		rate = rate.Div(decimal.NewFromInt(100))
	}
	return rate
}

func Load() AppConfig {
	ttl, err := time.ParseDuration(envOrDefault("ORDER_SESSION_TTL", "12h"))
	if err != nil {
		log.Printf("⚠️ ORDER_SESSION_TTL invalid (%v), using 12h", err)
		ttl = 12 * time.Hour
	}

	return AppConfig{
		Port:            envOrDefault("PORT", "8080"),
		CorsOrigins:     parseCorsOrigins(os.Getenv("CORS_ORIGINS")),
		DefaultCurrency: strings.ToUpper(envOrDefault("DEFAULT_CURRENCY", "LKR")),
		DefaultTaxRate:  parseTaxRate(os.Getenv("DEFAULT_TAX_RATE")),
		CashSalePrefix:  envOrDefault("CASH_SALE_PREFIX", "CASH"),
		SessionTTL:      ttl,
		SeedData:        envBool("SEED_DATA", true),
		RedisAddr:       strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisChannel:    envOrDefault("REDIS_CHANNEL", "service-addons"),
		KafkaBroker:     strings.TrimSpace(os.Getenv("KAFKA_BROKER")),
		KafkaTopic:      envOrDefault("KAFKA_TOPIC", "service-addons"),
	}
}
