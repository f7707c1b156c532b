package deps

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pinsync/pinsync/internal/auth"
	"github.com/pinsync/pinsync/internal/domain"
	"github.com/pinsync/pinsync/internal/logger"
	"github.com/pinsync/pinsync/internal/store/sqlite"
)

// EventPublisher is the outbound side of the change-event transport.
// Satisfied by *realtime.Publisher; tests substitute a capture fake.
type EventPublisher interface {
	Publish(ctx context.Context, ev domain.ChangeEvent) error
}

type Deps struct {
	Logger        logger.Logger
	StartTime     time.Time
	Version       string
	Commit        string
	BuildDate     string
	GoVersion     string
	TimeNow       func() time.Time   // for testing, defaults to time.Now
	BaseURL       string             // public origin, used in page rendering
	Repo          *sqlite.Repository // bookmark persistence
	RedisClient   *redis.Client      // realtime transport connection
	Publisher     EventPublisher     // change-event fan-out
	Sessions      *auth.Sessions     // session token issue/verify
	Google        *auth.Google       // sign-in redirect flow
	AllowedEmails []string           // optional sign-in allowlist
	PurgeTrigger  chan struct{}      // manual janitor trigger
}
