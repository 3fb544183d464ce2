package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server  ServerConfig
	Redis   RedisConfig
	NATS    NATSConfig
	Email   EmailConfig
	Places  PlacesConfig
	Booking BookingConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type RedisConfig struct {
	URL string
}

type NATSConfig struct {
	URL     string
	Enabled bool
}

type EmailConfig struct {
	SMTPHost      string
	SMTPPort      int
	SMTPUser      string
	SMTPPass      string
	SMTPFrom      string
	SMTPUseTLS    bool
	MailerSendKey string
	FromName      string
	OwnerEmail    string
	DevMode       bool // print emails to logs instead of sending
}

type PlacesConfig struct {
	// Backend selects the resolver for server-side booking sessions:
	// "gazetteer" (offline district list), "proxy" (the local suggest
	// endpoint), or "google".
	Backend       string
	NominatimURL  string
	CountryCode   string
	GoogleMapsKey string
	CacheTTL      time.Duration
	RateLimit     int
	RateWindow    time.Duration
}

type BookingConfig struct {
	WhatsAppNumber string
	NotifyURL      string
	NotifyTimeout  time.Duration
	SessionTTL     time.Duration
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 5*time.Second),
			WriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:  getDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		NATS: NATSConfig{
			URL:     getEnv("NATS_URL", "nats://localhost:4222"),
			Enabled: getBool("NATS_ENABLED", false),
		},
		Email: EmailConfig{
			SMTPHost:      getEnv("SMTP_HOST", "localhost"),
			SMTPPort:      getInt("SMTP_PORT", 1025),
			SMTPUser:      getEnv("SMTP_USER", ""),
			SMTPPass:      getEnv("SMTP_PASS", ""),
			SMTPFrom:      getEnv("SMTP_FROM", "bookings@navidrop.local"),
			SMTPUseTLS:    getBool("SMTP_USE_TLS", false),
			MailerSendKey: getEnv("MAILERSEND_API_KEY", ""),
			FromName:      getEnv("EMAIL_FROM_NAME", "NaviDrop Taxi"),
			OwnerEmail:    getEnv("OWNER_EMAIL", "bookings@navidrop.local"),
			DevMode:       getBool("EMAIL_DEV_MODE", true),
		},
		Places: PlacesConfig{
			Backend:       getEnv("PLACES_BACKEND", "gazetteer"),
			NominatimURL:  getEnv("NOMINATIM_URL", "https://nominatim.openstreetmap.org"),
			CountryCode:   getEnv("PLACES_COUNTRY", "in"),
			GoogleMapsKey: getEnv("GOOGLE_MAPS_API_KEY", ""),
			CacheTTL:      getDuration("PLACES_CACHE_TTL", 15*time.Minute),
			RateLimit:     getInt("PLACES_RATE_LIMIT", 30),
			RateWindow:    getDuration("PLACES_RATE_WINDOW", time.Minute),
		},
		Booking: BookingConfig{
			WhatsAppNumber: getEnv("WHATSAPP_NUMBER", "919787099804"),
			NotifyURL:      getEnv("NOTIFY_URL", "http://127.0.0.1:8080/api/send-booking-email"),
			NotifyTimeout:  getDuration("NOTIFY_TIMEOUT", 10*time.Second),
			SessionTTL:     getDuration("BOOKING_SESSION_TTL", 30*time.Minute),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
