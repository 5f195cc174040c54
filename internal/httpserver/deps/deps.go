package deps

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/versefinder/internal/domain"
	"github.com/MrSnakeDoc/versefinder/internal/logger"
	"github.com/MrSnakeDoc/versefinder/internal/metrics"
	"github.com/MrSnakeDoc/versefinder/internal/scheduler"
	"github.com/MrSnakeDoc/versefinder/internal/search"
	redisstore "github.com/MrSnakeDoc/versefinder/internal/store/redis"
)

// Cache is the search result cache (redis in production).
type Cache interface {
	GetCachedSearch(ctx context.Context, keywords []string) ([]domain.Verse, bool, error)
	CacheSearch(ctx context.Context, keywords []string, verses []domain.Verse, ttl time.Duration) error
	FlushCache(ctx context.Context) error
	RecordQuery(ctx context.Context, keywords []string) error
	TopQueries(ctx context.Context, n int64) ([]redisstore.QueryCount, error)
	Ping(ctx context.Context) error
}

// ReloadStatuser reports the last corpus reload.
type ReloadStatuser interface {
	Status() scheduler.ReloadStatus
}

type Deps struct {
	Logger        logger.Logger
	StartTime     time.Time
	Version       string
	Commit        string
	BuildDate     string
	GoVersion     string
	TimeNow       func() time.Time       // for testing, defaults to time.Now
	AllowedHosts  []string               // Host headers allowed to access the server
	AllowedCIDRS  []string               // IPs allowed to access the API and ops endpoints
	TrustProxy    bool                   // true if running behind a trusted reverse proxy (e.g., cloudflared)
	CORSOrigins   []string               // allowed CORS origins
	RateBurst     int                    // per-IP token bucket size
	RatePerMin    int                    // per-IP refill rate
	StoreKind     string                 // "sqlite" | "memory"
	Repository    domain.VerseRepository // verse store
	Engine        *search.Engine         // keyword search
	Resolver      *search.Resolver       // reference lookups
	Cache         Cache                  // nil when redis is not configured
	CacheTTL      time.Duration          // search result cache TTL
	Metrics       *metrics.Registry      // prometheus collectors (nil = /metrics disabled)
	Reloader      ReloadStatuser         // nil when no corpus file is configured
	ReloadTrigger chan struct{}          // Channel to trigger manual corpus reload (nil if disabled)
}
