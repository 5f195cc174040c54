package config

import (
	"fmt"
	"log"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// Store backends accepted by VERSE_STORE.
const (
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request timeout (ex: 5s)

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Verse store
	Store          string        // "sqlite" | "memory"
	DBPath         string        // sqlite file path (required when Store = sqlite)
	CorpusFile     string        // YAML corpus to import and reload (optional, empty = no reload)
	ReloadInterval time.Duration // interval to reload the corpus (default: 24h)
	WatchCorpus    bool          // reload when the corpus file changes
	NearDistance   int           // NEAR proximity window
	LookupWorkers  int           // worker pool size for reference lookups

	// Redis (optional, empty address = result cache disabled)
	RedisAddr           string        // ex: "localhost:6379"
	RedisUser           string        // optional
	RedisPassword       string        // optional
	RedisDB             int           // Redis DB number
	RedisDT             time.Duration // Redis dial timeout (ex: 5s)
	RedisRT             time.Duration // Redis read timeout (ex: 3s)
	RedisWT             time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait        time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout    time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize       int           // Redis connection pool size
	RedisConnectTimeout time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval  time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold  int           // warn after this many attempts
	CacheTTL            time.Duration // search result cache TTL

	// Rate limiting (per client IP, API routes only)
	RateBurst  int
	RatePerMin int

	AllowedHosts []string // optional, restrict access to specific Host headers
	AllowedCIDRS []string // optional, restrict access to specific IP (e.g. "1.2.3.4, 5.6.7.8")
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
	CORSOrigins  []string // allowed CORS origins, "*" = any
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("VERSE_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("VERSE_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("VERSE_REQUEST_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("VERSE_LOG_LEVEL", "info"),
		PrettyLog: mustBool("VERSE_PRETTY_LOG", true),

		// Verse store
		Store:          strings.ToLower(getenv("VERSE_STORE", StoreSQLite)),
		CorpusFile:     getenv("VERSE_CORPUS_FILE", ""),
		ReloadInterval: mustDuration("VERSE_RELOAD_INTERVAL", 24*time.Hour),
		WatchCorpus:    mustBool("VERSE_WATCH_CORPUS", true),
		NearDistance:   getenvInt("VERSE_NEAR_DISTANCE", 100),
		LookupWorkers:  getenvInt("VERSE_LOOKUP_WORKERS", defaultWorkers()),

		// Redis settings
		RedisAddr:           getenv("VERSE_REDIS_ADDR", ""),
		RedisUser:           getenv("VERSE_REDIS_USERNAME", "default"),
		RedisPassword:       getenv("VERSE_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("VERSE_REDIS_DB", 0),
		RedisDT:             mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:        mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:       getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:  getenvInt("REDIS_WARN_THRESHOLD", 3),
		CacheTTL:            mustDuration("VERSE_CACHE_TTL", 10*time.Minute),

		RateBurst:  getenvInt("VERSE_RATE_BURST", 60),
		RatePerMin: getenvInt("VERSE_RATE_PER_MIN", 120),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("VERSE_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv("VERSE_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("VERSE_TRUST_PROXY", true),
		CORSOrigins:  splitAndTrim(getenv("VERSE_CORS_ORIGINS", "*")),
	}

	// The database path only matters for the sqlite backend
	if cfg.Store == StoreSQLite {
		cfg.DBPath = requireEnv("VERSE_DB_PATH")
	}

	cfg.validate()

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

func (c *Config) validate() {
	if c.Store != StoreSQLite && c.Store != StoreMemory {
		panic(fmt.Sprintf("❌ FATAL: Invalid VERSE_STORE %q (want sqlite or memory)", c.Store))
	}
	// An empty memory store would never have anything to search
	if c.Store == StoreMemory && c.CorpusFile == "" {
		panic("❌ FATAL: VERSE_CORPUS_FILE is required when VERSE_STORE=memory")
	}

	if c.ReloadInterval <= 0 {
		panic(fmt.Sprintf("❌ FATAL: VERSE_RELOAD_INTERVAL must be positive, got %s", c.ReloadInterval))
	}
	if c.NearDistance < 1 {
		panic(fmt.Sprintf("❌ FATAL: VERSE_NEAR_DISTANCE must be positive, got %d", c.NearDistance))
	}
	if c.LookupWorkers < 1 {
		c.LookupWorkers = 1
	}
	if c.RateBurst < 1 || c.RatePerMin < 1 {
		panic("❌ FATAL: VERSE_RATE_BURST and VERSE_RATE_PER_MIN must be positive")
	}
}

// CacheEnabled reports whether a redis address is configured.
func (c *Config) CacheEnabled() bool { return c.RedisAddr != "" }

// helpers
func defaultWorkers() int {
	return max(1, runtime.NumCPU()/2)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		panic(fmt.Sprintf("❌ FATAL: Invalid integer value for %s: %s", key, v))
	}
	return i
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
