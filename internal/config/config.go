package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	DBDSN    string
	MediaDir string
	LogFile  string
	BaseURL  string

	StripeSecretKey      string
	StripePublishableKey string
	PaymentCurrency      string
	BaseCurrency         string
	CheckoutTTL          time.Duration

	RateURL      string
	FallbackRate float64
	RateCacheTTL time.Duration
	RedisAddr    string

	KafkaBrokers []string
	KafkaTopic   string

	AdminPassword string
	DisplayTZ     string
}

// Load reads the environment, after loading .env when one exists in the working directory.
func Load() Config {
	if err := godotenv.Load(); err == nil {
		log.Printf("[config] loaded .env")
	}

	cfg := Config{
		Port:     env("PORT", "8080"),
		DBDSN:    env("DB_DSN", "flowerstream.db"), // sqlite file in project root
		MediaDir: env("MEDIA_DIR", "./web/media"),
		LogFile:  env("LOG_FILE", "./flowerstream.log"),

		StripeSecretKey:      os.Getenv("STRIPE_SECRET_KEY"),
		StripePublishableKey: os.Getenv("STRIPE_PUBLISHABLE_KEY"),
		PaymentCurrency:      strings.ToLower(env("PAYMENT_CURRENCY", "eur")),
		BaseCurrency:         strings.ToUpper(env("BASE_CURRENCY", "UAH")),
		CheckoutTTL:          duration("CHECKOUT_TTL", 24*time.Hour),

		RateURL:      env("RATE_URL", "https://bank.gov.ua/NBUStatService/v1/statdirectory/exchange?valcode=EUR&json"),
		FallbackRate: float("FALLBACK_RATE", 50.0),
		RateCacheTTL: duration("RATE_CACHE_TTL", time.Hour),
		RedisAddr:    os.Getenv("REDIS_ADDR"),

		KafkaTopic: env("KAFKA_TOPIC", "order.placed"),

		AdminPassword: env("ADMIN_PASSWORD", "Admin123!"),
		DisplayTZ:     env("DISPLAY_TZ", "Europe/Kyiv"),
	}
	// hosted payment sessions live 30m to 24h; a pending checkout must not outlive its session
	if cfg.CheckoutTTL < 30*time.Minute || cfg.CheckoutTTL > 24*time.Hour {
		clamped := min(max(cfg.CheckoutTTL, 30*time.Minute), 24*time.Hour)
		log.Printf("[config] CHECKOUT_TTL=%s outside 30m..24h, using %s", cfg.CheckoutTTL, clamped)
		cfg.CheckoutTTL = clamped
	}
	cfg.BaseURL = strings.TrimRight(env("BASE_URL", "http://localhost:"+cfg.Port), "/")
	if b := os.Getenv("KAFKA_BROKERS"); b != "" {
		cfg.KafkaBrokers = strings.Split(b, ",")
	}

	log.Printf("[config] PORT=%s DB_DSN=%s MEDIA_DIR=%s LOG_FILE=%s BASE_URL=%s STRIPE=%s REDIS=%q KAFKA=%v",
		cfg.Port, cfg.DBDSN, cfg.MediaDir, cfg.LogFile, cfg.BaseURL, mask(cfg.StripeSecretKey), cfg.RedisAddr, cfg.KafkaBrokers)
	return cfg
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func duration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("[config] bad %s=%q, using %s", key, v, def)
		return def
	}
	return d
}

func float(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		log.Printf("[config] bad %s=%q, using %v", key, v, def)
		return def
	}
	return f
}

func mask(secret string) string {
	if secret == "" {
		return "sandbox"
	}
	if len(secret) <= 8 {
		return "****"
	}
	return secret[:7] + "****"
}
