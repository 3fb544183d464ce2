package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/navidrop/taxi-site/internal/booking"
	"github.com/navidrop/taxi-site/internal/http/handlers"
	"github.com/navidrop/taxi-site/internal/places"
	"github.com/navidrop/taxi-site/internal/platform/cache"
	"github.com/navidrop/taxi-site/internal/platform/mailer"
	"github.com/navidrop/taxi-site/pkg/config"
	"github.com/navidrop/taxi-site/pkg/events"
	"github.com/navidrop/taxi-site/pkg/logger"
	mw "github.com/navidrop/taxi-site/pkg/middleware"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	// Redis backs the suggest cache and rate limiter; both degrade
	// gracefully, so a missing redis is a warning, not a failure.
	var redisClient *redis.Client
	if client, err := cache.NewClient(cfg.Redis.URL); err != nil {
		logger.Warn("Redis unavailable, caching and rate limiting disabled", "error", err)
	} else {
		redisClient = client
		defer redisClient.Close()
	}

	var bus events.Publisher
	if cfg.NATS.Enabled {
		eventBus, err := events.NewNATSEventBus(cfg.NATS.URL)
		if err != nil {
			logger.Warn("NATS unavailable, booking events disabled", "error", err)
		} else {
			bus = eventBus
			defer eventBus.Close()
		}
	}

	notifier := &mailer.Notifier{
		Svc:        buildMailer(cfg),
		OwnerEmail: cfg.Email.OwnerEmail,
		FromName:   cfg.Email.FromName,
	}

	suggestCache := cache.NewSuggestCache(redisClient, cfg.Places.CacheTTL)
	resolver := buildResolver(cfg)

	dispatcher := &booking.Dispatcher{
		WhatsAppNumber: cfg.Booking.WhatsAppNumber,
		NotifyURL:      cfg.Booking.NotifyURL,
		Timeout:        cfg.Booking.NotifyTimeout,
		Open: func(link string) error {
			// Server-side sessions cannot open a browser tab; the link is
			// surfaced in the confirm response for the client to follow.
			logger.Info("WhatsApp deep link ready", "url", link)
			return nil
		},
	}

	sessions := handlers.NewSessionStore(cfg.Booking.SessionTTL, func() *booking.Form {
		return booking.NewForm(booking.FormConfig{
			Resolver:  resolver,
			Submitter: dispatcher,
			Debounce:  places.DefaultDebounce,
		})
	})
	defer sessions.Close()

	placesHandler := handlers.NewPlacesHandler(cfg.Places.NominatimURL, cfg.Places.CountryCode, suggestCache)
	notifyHandler := handlers.NewNotifyHandler(notifier, bus)
	catalogHandler := handlers.NewCatalogHandler()
	sessionHandler := handlers.NewSessionHandler(sessions)

	// Setup router
	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.ServiceName("site"))
	r.Use(mw.Logging)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000", "*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Use(mw.Health)

	var rateLimitStore mw.RateLimitStore
	if redisClient != nil {
		rateLimitStore = cache.NewCounter(redisClient)
	}

	r.Route("/api", func(r chi.Router) {
		r.With(mw.RateLimit(rateLimitStore, cfg.Places.RateLimit, cfg.Places.RateWindow)).
			Mount("/location-suggest", placesHandler.Routes())
		r.Mount("/send-booking-email", notifyHandler.Routes())
		r.Mount("/catalog", catalogHandler.Routes())
		r.Mount("/booking/sessions", sessionHandler.Routes())
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down site...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Site shutdown error", "error", err)
		}
	}()

	logger.Info("Starting site", "port", cfg.Server.Port, "places_backend", cfg.Places.Backend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Site server error", "error", err)
		os.Exit(1)
	}
}

func buildMailer(cfg *config.Config) mailer.Service {
	switch {
	case cfg.Email.DevMode:
		logger.Info("Using dev mailer")
		return mailer.DevMailer{}
	case cfg.Email.MailerSendKey != "":
		logger.Info("Using MailerSend mailer")
		return mailer.NewMailer(cfg.Email.MailerSendKey, cfg.Email.FromName, cfg.Email.SMTPFrom)
	default:
		logger.Info("Using SMTP mailer", "host", cfg.Email.SMTPHost)
		return mailer.NewSMTPMailer(
			cfg.Email.SMTPHost, cfg.Email.SMTPPort, cfg.Email.SMTPFrom,
			cfg.Email.SMTPUser, cfg.Email.SMTPPass, cfg.Email.SMTPUseTLS,
		)
	}
}

func buildResolver(cfg *config.Config) places.Resolver {
	switch cfg.Places.Backend {
	case "google":
		if cfg.Places.GoogleMapsKey == "" {
			logger.Warn("PLACES_BACKEND=google but no API key, falling back to gazetteer")
			return places.GazetteerResolver{}
		}
		resolver, err := places.NewGoogleResolver(cfg.Places.GoogleMapsKey)
		if err != nil {
			logger.Warn("Google Places client failed, falling back to gazetteer", "error", err)
			return places.GazetteerResolver{}
		}
		return resolver
	case "proxy":
		return places.NewProxyResolver("http://127.0.0.1:" + cfg.Server.Port)
	default:
		return places.GazetteerResolver{}
	}
}
