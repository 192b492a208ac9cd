package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultDatabaseDriver  = "mongo"
	defaultMongoURI        = "mongodb://localhost:27017"
	defaultMongoDatabase   = "shopfront"
	defaultRedisAddr       = "localhost:6379"
	defaultJWTSecret       = "change-me-in-production"
	defaultAppPort         = "8080"
	defaultGRPCPort        = "9090"
	defaultAppEnv          = "local"
	defaultFrontendURL     = "http://localhost:3000"
	defaultProviderTimeout = 10 * time.Second
	defaultRateLimit       = 200
)

var (
	loadOnce sync.Once
	loadErr  error

	mu     sync.RWMutex
	values = defaultValues()
)

// Load reads config/app.json, then .env, then the process environment.
// Later sources override earlier ones. Safe to call repeatedly.
func Load() error {
	loadOnce.Do(func() {
		loadErr = loadFromFiles("config/app.json", ".env")
	})
	return loadErr
}

func defaultValues() map[string]string {
	return map[string]string{
		"APP_ENV":               defaultAppEnv,
		"APP_PORT":              defaultAppPort,
		"GRPC_PORT":             defaultGRPCPort,
		"DB_DRIVER":             defaultDatabaseDriver,
		"MONGO_URI":             defaultMongoURI,
		"MONGO_DATABASE":        defaultMongoDatabase,
		"REDIS_ADDR":            defaultRedisAddr,
		"REDIS_PASSWORD":        "",
		"JWT_SECRET":            defaultJWTSecret,
		"STRIPE_SECRET_KEY":     "",
		"STRIPE_WEBHOOK_SECRET": "",
		"MAIL_DRIVER":           "",
		"FRONTEND_URL":          defaultFrontendURL,
		"LOG_MONGO_URI":         "",
	}
}

// str loads configuration and reads key, falling back to its built-in default.
func str(key string) string {
	_ = Load()
	return get(key, defaultValues()[key])
}

// DatabaseDriver is "mongo" or "memory". Anything else means mongo.
func DatabaseDriver() string {
	if d := strings.ToLower(str("DB_DRIVER")); d == "memory" {
		return d
	}
	return defaultDatabaseDriver
}

func MongoURI() string      { return str("MONGO_URI") }
func MongoDatabase() string { return str("MONGO_DATABASE") }
func RedisAddr() string     { return str("REDIS_ADDR") }
func RedisPassword() string { return str("REDIS_PASSWORD") }
func JWTSecret() string     { return str("JWT_SECRET") }
func AppPort() string       { return str("APP_PORT") }
func GRPCPort() string      { return str("GRPC_PORT") }
func AppEnv() string        { return str("APP_ENV") }
func LogMongoURI() string   { return str("LOG_MONGO_URI") }

func IsProduction() bool {
	env := AppEnv()
	return env == "production" || env == "prod"
}

// ErrInsecureSecret is returned by Validate when production runs with the
// built-in JWT secret.
var ErrInsecureSecret = errors.New("config: JWT_SECRET must be set in production")

// Validate rejects settings a production process must not start with.
func Validate() error {
	if IsProduction() && JWTSecret() == defaultJWTSecret {
		return ErrInsecureSecret
	}
	return nil
}

func StripeSecretKey() string     { return str("STRIPE_SECRET_KEY") }
func StripeWebhookSecret() string { return str("STRIPE_WEBHOOK_SECRET") }

// ProviderTimeout bounds each call to an external provider (payments, mail).
func ProviderTimeout() time.Duration { return Duration("PROVIDER_TIMEOUT", defaultProviderTimeout) }

func MailDriver() string     { return strings.ToLower(str("MAIL_DRIVER")) }
func SendGridAPIKey() string { return str("SENDGRID_API_KEY") }
func MailFrom() string       { return Get("MAIL_FROM", "no-reply@shopfront.local") }
func MailFromName() string   { return Get("MAIL_FROM_NAME", "Shopfront") }

// FrontendURL is the base used for links in verification and reset emails.
func FrontendURL() string { return strings.TrimRight(str("FRONTEND_URL"), "/") }

func RateLimit() int { return Int("RATE_LIMIT", defaultRateLimit) }

// loadFromFiles layers defaults, the JSON file, the dotenv file and the
// process environment. Missing files are skipped.
func loadFromFiles(configPath, envPath string) error {
	loaded := defaultValues()

	fromJSON, err := readJSON(configPath)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	merge(loaded, fromJSON)

	fromEnvFile, err := godotenv.Read(envPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("read %s: %w", envPath, err)
	}
	merge(loaded, fromEnvFile)

	environ := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && strings.TrimSpace(v) != "" {
			environ[k] = v
		}
	}
	merge(loaded, environ)

	mu.Lock()
	values = loaded
	mu.Unlock()
	return nil
}

// readJSON flattens a JSON object of scalars into strings. Nested values
// are ignored.
func readJSON(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var raw map[string]interface{}
	if err := json.NewDecoder(file).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		switch v := v.(type) {
		case string:
			out[k] = v
		case float64:
			out[k] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			out[k] = strconv.FormatBool(v)
		}
	}
	return out, nil
}

func merge(dst, src map[string]string) {
	for k, v := range src {
		if k = strings.ToUpper(strings.TrimSpace(k)); k != "" {
			dst[k] = strings.TrimSpace(v)
		}
	}
}

func get(key, fallback string) string {
	mu.RLock()
	defer mu.RUnlock()
	if v := strings.TrimSpace(values[key]); v != "" {
		return v
	}
	return fallback
}

// Get reads any config key by name with an optional fallback.
func Get(key, fallback string) string {
	_ = Load()
	return get(key, fallback)
}

// Int reads an integer key, returning fallback when absent or malformed.
func Int(key string, fallback int) int {
	_ = Load()
	n, err := strconv.Atoi(get(key, ""))
	if err != nil {
		return fallback
	}
	return n
}

// Duration reads a Go duration string ("5s", "250ms"). Plain integers are seconds.
func Duration(key string, fallback time.Duration) time.Duration {
	_ = Load()
	raw := get(key, "")
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(raw); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return fallback
}

// Set overrides a key at runtime. Intended for tests and CLI flags.
func Set(key, value string) {
	_ = Load()
	mu.Lock()
	values[strings.ToUpper(key)] = value
	mu.Unlock()
}
