package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Rate is a request budget over a fixed window, e.g. "20/min".
type Rate struct {
	Limit  int
	Window time.Duration
}

type Config struct {
	Env  string
	Port string

	DatabaseURL   string
	MongoURI      string
	MongoDatabase string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	GeminiAPIKey string
	GeminiModel  string

	EmailHost     string
	EmailPort     int
	EmailUser     string
	EmailPassword string
	FromEmail     string

	SMSProvider       string
	TwilioAccountSID  string
	TwilioAuthToken   string
	TwilioPhoneNumber string
	TextbeltAPIKey    string

	MediaRoot      string
	PageSize       int
	CORSOrigins    []string
	TrustedProxies []string
	// PublicBaseURL, when set, is used for absolute pagination links.
	PublicBaseURL *url.URL

	AnonRate Rate
	UserRate Rate
	AIRate   Rate

	ReportWorkers    int
	ReportMaxRetries int
	DoctorCacheTTL   time.Duration

	// DotEnvLoaded reports whether a .env file was read.
	DotEnvLoaded bool
}

// Load reads .env (if present) and the process environment. Malformed
// numeric values are reported together.
func Load() (*Config, error) {
	loaded := godotenv.Load() == nil
	env := &envReader{}

	cfg := &Config{
		Env:  getEnv("APP_ENV", "development"),
		Port: getEnv("API_PORT", "8080"),

		DatabaseURL:   os.Getenv("DATABASE_URL"),
		MongoURI:      os.Getenv("MONGO_URI"),
		MongoDatabase: getEnv("MONGO_DATABASE", "smart_health"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       env.int("REDIS_DB", 0),

		JWTSecret:       os.Getenv("JWT_SECRET"),
		AccessTokenTTL:  time.Duration(env.int("ACCESS_TOKEN_MINUTES", 60)) * time.Minute,
		RefreshTokenTTL: time.Duration(env.int("REFRESH_TOKEN_DAYS", 7)) * 24 * time.Hour,

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-1.5-flash"),

		EmailHost:     getEnv("EMAIL_HOST", "smtp.gmail.com"),
		EmailPort:     env.int("EMAIL_PORT", 587),
		EmailUser:     os.Getenv("EMAIL_HOST_USER"),
		EmailPassword: os.Getenv("EMAIL_HOST_PASSWORD"),

		SMSProvider:       strings.ToLower(getEnv("SMS_PROVIDER", "twilio")),
		TwilioAccountSID:  os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:   os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioPhoneNumber: os.Getenv("TWILIO_PHONE_NUMBER"),
		TextbeltAPIKey:    os.Getenv("TEXTBELT_API_KEY"),

		MediaRoot:      getEnv("MEDIA_ROOT", "./media"),
		PageSize:       env.int("PAGE_SIZE", 10),
		CORSOrigins:    splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		TrustedProxies: splitList(os.Getenv("TRUSTED_PROXIES")),

		ReportWorkers:    env.int("REPORT_WORKERS", 2),
		ReportMaxRetries: env.int("REPORT_MAX_RETRIES", 3),

		DotEnvLoaded: loaded,
	}
	if err := env.err(); err != nil {
		return nil, err
	}
	cfg.FromEmail = getEnv("DEFAULT_FROM_EMAIL", cfg.EmailUser)

	var err error
	if cfg.AnonRate, err = ParseRate(getEnv("THROTTLE_ANON", "20/min")); err != nil {
		return nil, fmt.Errorf("THROTTLE_ANON: %w", err)
	}
	if cfg.UserRate, err = ParseRate(getEnv("THROTTLE_USER", "200/min")); err != nil {
		return nil, fmt.Errorf("THROTTLE_USER: %w", err)
	}
	if cfg.AIRate, err = ParseRate(getEnv("THROTTLE_AI", "10/min")); err != nil {
		return nil, fmt.Errorf("THROTTLE_AI: %w", err)
	}
	if cfg.DoctorCacheTTL, err = time.ParseDuration(getEnv("DOCTOR_CACHE_TTL", "5m")); err != nil {
		return nil, fmt.Errorf("DOCTOR_CACHE_TTL: %w", err)
	}
	if raw := os.Getenv("PUBLIC_BASE_URL"); raw != "" {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, fmt.Errorf("PUBLIC_BASE_URL: expected an absolute http(s) URL, got %q", raw)
		}
		cfg.PublicBaseURL = u
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not configured")
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// ParseRate parses "N/unit" where unit is sec, min, hour or day.
func ParseRate(s string) (Rate, error) {
	parts := strings.SplitN(strings.TrimSpace(s), "/", 2)
	if len(parts) != 2 {
		return Rate{}, fmt.Errorf("invalid rate %q", s)
	}
	n, err := strconv.Atoi(parts[0])
	if err != nil || n <= 0 {
		return Rate{}, fmt.Errorf("invalid rate limit %q", parts[0])
	}
	var window time.Duration
	switch strings.ToLower(parts[1]) {
	case "s", "sec", "second":
		window = time.Second
	case "m", "min", "minute":
		window = time.Minute
	case "h", "hour":
		window = time.Hour
	case "d", "day":
		window = 24 * time.Hour
	default:
		return Rate{}, fmt.Errorf("invalid rate unit %q", parts[1])
	}
	return Rate{Limit: n, Window: window}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envReader collects parse failures so Load can report every bad value.
type envReader struct {
	errs []error
}

func (r *envReader) int(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: invalid integer %q", key, v))
		return fallback
	}
	return n
}

func (r *envReader) err() error {
	return errors.Join(r.errs...)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
