package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Mail providers
const (
	MailProviderSMTP = "smtp"
	MailProviderDev  = "dev"
)

type Config struct {
	Port    string
	AppEnv  string
	DevMode bool // Exposes relay error details in API responses
	DBUrl   string
	// SMTP Configuration
	SMTPHost               string
	SMTPPort               int
	SMTPFallbackPort       int
	SMTPUsername           string
	SMTPPassword           string
	SMTPFromName           string
	SMTPInsecureSkipVerify bool
	ReceiverEmail          string
	MailProvider           string
	// Delivery policy
	MailMaxAttempts    int
	MailRetryBaseDelay time.Duration
	// Human fallback contact shown to visitors when delivery fails
	ContactPhone string
	ContactEmail string
	// Chat widget
	ChatPhone       string
	ChatCompanyName string
	ChatRevealDelay time.Duration
	// Redis/Upstash Configuration
	UpstashRedisURL      string
	UpstashRedisPassword string
	// Rate Limiting Configuration
	RateLimitWindowSeconds    int
	RateLimitContactThreshold int
	// HTTP
	CORSAllowedOrigins []string
	TrustedProxies     []string // Proxies whose X-Forwarded-For is honoured; empty trusts none
	AdminJWTSecret     string
	AdminJWKSURL       string
	// Logging
	LogLevel string
	LogFile  string
}

// DeliveryConfiguration is the process-wide relay configuration used to send notifications.
type DeliveryConfiguration struct {
	Host        string
	Port        int
	Username    string
	Password    string
	Destination string
}

// TransportSecurity selects how a relay connection is encrypted.
type TransportSecurity string

const (
	SecuritySTARTTLS    TransportSecurity = "starttls"
	SecurityImplicitTLS TransportSecurity = "implicit_tls"
)

// TransportSettings describes one relay connection profile.
type TransportSettings struct {
	Name     string
	Host     string
	Port     int
	Security TransportSecurity
}

func LoadConfig() (*Config, error) {
	// Load .env file (only effective locally; missing file is ignored in production)
	_ = godotenv.Load()

	cfg := &Config{
		Port:    getEnv("PORT", "8080"),
		AppEnv:  getEnv("APP_ENV", "development"),
		DevMode: getEnvBool("DEV_MODE", false),
		DBUrl:   getEnv("DATABASE_URL", ""),
		// SMTP Configuration
		SMTPHost:               getEnv("SMTP_HOST", ""),
		SMTPPort:               getEnvInt("SMTP_PORT", 587),
		SMTPFallbackPort:       getEnvInt("SMTP_FALLBACK_PORT", 465),
		SMTPUsername:           getEnv("SMTP_USER", ""),
		SMTPPassword:           getEnv("SMTP_PASS", ""),
		SMTPFromName:           getEnv("SMTP_FROM_NAME", "MITAN Engitech Services - Contact Form"),
		SMTPInsecureSkipVerify: getEnvBool("SMTP_INSECURE_SKIP_VERIFY", false),
		ReceiverEmail:          getEnv("RECEIVER_EMAIL", ""),
		MailProvider:           strings.ToLower(getEnv("MAIL_PROVIDER", MailProviderSMTP)),
		// Delivery policy
		MailMaxAttempts:    getEnvInt("MAIL_MAX_ATTEMPTS", 3),
		MailRetryBaseDelay: getEnvDuration("MAIL_RETRY_BASE_DELAY", time.Second),
		// Fallback contact
		ContactPhone: getEnv("CONTACT_PHONE", "+91 96088 88383"),
		ContactEmail: getEnv("CONTACT_EMAIL", "info@mesjsr.com"),
		// Chat widget
		ChatPhone:       getEnv("CHAT_PHONE", "919608888383"),
		ChatCompanyName: getEnv("CHAT_COMPANY_NAME", "MITAN Engitech Services"),
		ChatRevealDelay: getEnvDuration("CHAT_REVEAL_DELAY", 1500*time.Millisecond),
		// Redis/Upstash Configuration
		UpstashRedisURL:      getEnv("UPSTASH_REDIS_URL", ""),
		UpstashRedisPassword: getEnv("UPSTASH_REDIS_PASSWORD", ""),
		// Rate Limiting Configuration
		RateLimitWindowSeconds:    getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitContactThreshold: getEnvInt("RATE_LIMIT_CONTACT_THRESHOLD", 5),
		// HTTP
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"https://mesjsr.com", "https://www.mesjsr.com"}),
		TrustedProxies:     getEnvList("TRUSTED_PROXIES", nil),
		AdminJWTSecret:     getEnv("ADMIN_JWT_SECRET", ""),
		AdminJWKSURL:       getEnv("ADMIN_JWKS_URL", ""),
		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", ""),
	}

	if cfg.MailMaxAttempts < 1 {
		cfg.MailMaxAttempts = 1
	}

	if missing := cfg.MissingDelivery(); len(missing) > 0 && cfg.MailProvider == MailProviderSMTP {
		log.Printf("WARNING: mail relay not configured (missing %s). Inquiries will be logged for manual follow-up.", strings.Join(missing, ", "))
	}

	if cfg.UpstashRedisURL == "" {
		log.Println("WARNING: UPSTASH_REDIS_URL not configured. Rate limiting will use in-memory fallback.")
	}

	return cfg, nil
}

// AdminEnabled reports whether operator routes can authenticate anyone.
func (c *Config) AdminEnabled() bool {
	return c.AdminJWTSecret != "" || c.AdminJWKSURL != ""
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Delivery returns the relay configuration for the primary transport.
func (c *Config) Delivery() DeliveryConfiguration {
	return DeliveryConfiguration{
		Host:        c.SMTPHost,
		Port:        c.SMTPPort,
		Username:    c.SMTPUsername,
		Password:    c.SMTPPassword,
		Destination: c.ReceiverEmail,
	}
}

// MissingDelivery lists the environment keys required for sending that are empty.
func (c *Config) MissingDelivery() []string {
	var missing []string
	if strings.TrimSpace(c.SMTPHost) == "" {
		missing = append(missing, "SMTP_HOST")
	}
	if strings.TrimSpace(c.SMTPUsername) == "" {
		missing = append(missing, "SMTP_USER")
	}
	if c.SMTPPassword == "" {
		missing = append(missing, "SMTP_PASS")
	}
	if strings.TrimSpace(c.ReceiverEmail) == "" {
		missing = append(missing, "RECEIVER_EMAIL")
	}
	return missing
}

// Transports returns the ordered relay profiles tried for each submission.
// The configured port goes first; the alternate port with the other encryption mode follows.
func (c *Config) Transports() []TransportSettings {
	primary := TransportSettings{Name: "primary", Host: c.SMTPHost, Port: c.SMTPPort, Security: securityForPort(c.SMTPPort)}

	fallbackPort := c.SMTPFallbackPort
	if fallbackPort == 0 || fallbackPort == c.SMTPPort {
		if primary.Security == SecurityImplicitTLS {
			fallbackPort = 587
		} else {
			fallbackPort = 465
		}
	}
	secondary := TransportSettings{Name: "secondary", Host: c.SMTPHost, Port: fallbackPort, Security: securityForPort(fallbackPort)}
	if secondary.Security == primary.Security {
		if primary.Security == SecurityImplicitTLS {
			secondary.Security = SecuritySTARTTLS
		} else {
			secondary.Security = SecurityImplicitTLS
		}
	}

	return []TransportSettings{primary, secondary}
}

func securityForPort(port int) TransportSecurity {
	if port == 465 {
		return SecurityImplicitTLS
	}
	return SecuritySTARTTLS
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// getEnvDuration accepts Go durations ("1500ms") or plain milliseconds ("1500")
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		if ms, err := strconv.Atoi(value); err == nil {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return fallback
}

// getEnvList splits a comma separated variable, dropping empty entries
func getEnvList(key string, fallback []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimRight(strings.TrimSpace(part), "/"); p != "" {
			out = append(out, p)
		}
	}
	return out
}
