package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DispatchSimulated = "simulated"
	DispatchWhatsApp  = "whatsapp"
)

const defaultPersona = "Você é a assistente virtual de uma rede de consultoras de lingerie. " +
	"Responda em português, de forma curta e simpática, e convide a pessoa a se cadastrar como consultora."

type Config struct {
	Port        string
	DatabaseURL string
	AutoMigrate bool

	RabbitMQURL string
	RedisURI    string
	DedupeTTL   time.Duration

	WhatsAppBaseURL     string
	WhatsAppAccessToken string
	WhatsAppPhoneID     string
	WhatsAppVerifyToken string
	WhatsAppOwnNumber   string
	WhatsAppAppSecret   string

	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
	ReplyPersona  string

	MailHost     string
	MailPort     int
	MailUser     string
	MailPassword string
	MailFrom     string

	HandoffFallbackContact string
	DispatchMode           string
	DispatchConcurrency    int
	DispatchSeed           int64

	AllowedOrigins       []string
	RegisterRateLimit    int
	RegisterRateInterval time.Duration
}

// Load lê o .env (se existir) e depois o ambiente.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("ℹ️ [CONFIG] .env não encontrado, usando apenas variáveis de ambiente")
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		AutoMigrate: getBool("AUTO_MIGRATE", true),

		RabbitMQURL: os.Getenv("RABBITMQ_URL"),
		RedisURI:    os.Getenv("REDIS_URI"),
		DedupeTTL:   getDuration("WEBHOOK_DEDUPE_TTL", 24*time.Hour),

		WhatsAppBaseURL:     os.Getenv("WHATSAPP_BASE_URL"),
		WhatsAppAccessToken: os.Getenv("WHATSAPP_ACCESS_TOKEN"),
		WhatsAppPhoneID:     os.Getenv("WHATSAPP_PHONE_ID"),
		WhatsAppVerifyToken: os.Getenv("WHATSAPP_VERIFY_TOKEN"),
		WhatsAppOwnNumber:   os.Getenv("WHATSAPP_OWN_NUMBER"),
		WhatsAppAppSecret:   os.Getenv("WHATSAPP_APP_SECRET"),

		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   os.Getenv("OPENAI_MODEL"),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
		ReplyPersona:  getEnv("REPLY_PERSONA", defaultPersona),

		MailHost:     os.Getenv("MAIL_HOST"),
		MailPort:     getInt("MAIL_PORT", 587),
		MailUser:     os.Getenv("MAIL_USER"),
		MailPassword: os.Getenv("MAIL_PASS"),
		MailFrom:     os.Getenv("MAIL_FROM"),

		HandoffFallbackContact: os.Getenv("HANDOFF_FALLBACK_CONTACT"),
		DispatchMode:           strings.ToLower(getEnv("DISPATCH_MODE", DispatchSimulated)),
		DispatchConcurrency:    getInt("DISPATCH_CONCURRENCY", 16),
		DispatchSeed:           int64(getInt("DISPATCH_SEED", 0)),

		AllowedOrigins:       strings.Split(getEnv("CORS_ALLOWED_ORIGINS", "*"), ","),
		RegisterRateLimit:    getInt("REGISTER_RATE_LIMIT", 5),
		RegisterRateInterval: getDuration("REGISTER_RATE_INTERVAL", time.Minute),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("⚠️ [CONFIG] %s=%q inválido, usando %d", key, v, fallback)
		return fallback
	}
	return n
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("⚠️ [CONFIG] %s=%q inválido, usando %s", key, v, fallback)
		return fallback
	}
	return d
}
