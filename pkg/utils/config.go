package utils

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	Session  SessionConfig
	Booking  BookingConfig
	Payment  PaymentConfig
}

type AppConfig struct {
	Name    string
	Port    string
	Debug   bool
	LogPath string
}

type ServerConfig struct {
	RateLimitPerSec float64
	RateLimitBurst  int
	CacheTTLSeconds int
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

type SessionConfig struct {
	ExpiryHours int
}

type BookingConfig struct {
	// WindowMinutes bounds how long a pending reservation stays payable,
	// measured from created_at.
	WindowMinutes int
}

type PaymentConfig struct {
	Methods   []string
	LatencyMS int
}

// Window returns the payment window as a duration.
func (b BookingConfig) Window() time.Duration {
	return time.Duration(b.WindowMinutes) * time.Minute
}

// KnownMethod reports whether method is one of the configured payment methods.
func (p PaymentConfig) KnownMethod(method string) bool {
	for _, m := range p.Methods {
		if m == method {
			return true
		}
	}
	return false
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("APP_NAME", "hotel-booking")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("SESSION_EXPIRY_HOURS", 24)
	viper.SetDefault("BOOKING_WINDOW_MINUTES", 15)
	viper.SetDefault("PAYMENT_METHODS", "wechat,alipay,card")
	viper.SetDefault("PAYMENT_LATENCY_MS", 300)
	viper.SetDefault("RATE_LIMIT_PER_SEC", 10)
	viper.SetDefault("RATE_LIMIT_BURST", 20)
	viper.SetDefault("CACHE_TTL_SECONDS", 60)

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:    viper.GetString("APP_NAME"),
			Port:    viper.GetString("PORT"),
			Debug:   viper.GetBool("DEBUG"),
			LogPath: viper.GetString("LOG_PATH"),
		},
		Server: ServerConfig{
			RateLimitPerSec: viper.GetFloat64("RATE_LIMIT_PER_SEC"),
			RateLimitBurst:  viper.GetInt("RATE_LIMIT_BURST"),
			CacheTTLSeconds: viper.GetInt("CACHE_TTL_SECONDS"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
		},
		Session: SessionConfig{
			ExpiryHours: viper.GetInt("SESSION_EXPIRY_HOURS"),
		},
		Booking: BookingConfig{
			WindowMinutes: viper.GetInt("BOOKING_WINDOW_MINUTES"),
		},
		Payment: PaymentConfig{
			Methods:   splitMethods(viper.GetString("PAYMENT_METHODS")),
			LatencyMS: viper.GetInt("PAYMENT_LATENCY_MS"),
		},
	}

	return config, nil
}

func splitMethods(raw string) []string {
	var methods []string
	for _, m := range strings.Split(raw, ",") {
		if m = strings.TrimSpace(m); m != "" {
			methods = append(methods, m)
		}
	}
	return methods
}
