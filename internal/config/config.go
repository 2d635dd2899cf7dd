package config

import (
	"strconv"
	"time"

	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr   string
	DBDSN        string
	MongoURI     string
	RedisAddr    string
	RabbitURL    string
	JWTSecret    string
	OTLPEndpoint string

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	MailFrom string

	EventCacheTTL  time.Duration
	IdempotencyTTL time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	listen := os.Getenv("LISTEN_ADDR")
	if listen == "" {
		listen = ":8080"
	}

	cacheTTL, _ := time.ParseDuration(os.Getenv("EVENT_CACHE_TTL"))
	if cacheTTL == 0 {
		cacheTTL = 5 * time.Minute
	}
	idempTTL, _ := time.ParseDuration(os.Getenv("IDEMPOTENCY_TTL"))
	if idempTTL == 0 {
		idempTTL = time.Hour
	}

	smtpPort := 587
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			smtpPort = p
		}
	}

	return &Config{
		ListenAddr:     listen,
		DBDSN:          os.Getenv("DB_DSN"),
		MongoURI:       os.Getenv("MONGO_URI"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RabbitURL:      os.Getenv("RABBIT_URL"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		OTLPEndpoint:   os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		SMTPHost:       os.Getenv("SMTP_HOST"),
		SMTPPort:       smtpPort,
		SMTPUser:       os.Getenv("SMTP_USER"),
		SMTPPass:       os.Getenv("SMTP_PASS"),
		MailFrom:       os.Getenv("MAIL_FROM"),
		EventCacheTTL:  cacheTTL,
		IdempotencyTTL: idempTTL,
	}, nil
}
