package scheduler

import (
	"context"
	"time"

	"github.com/pinsync/pinsync/internal/logger"
)

const (
	// DefaultPurgeThreshold is the age a soft-deleted row must reach
	// before it is permanently removed.
	DefaultPurgeThreshold = 30 * 24 * time.Hour
)

// Purger is the storage operation the janitor drives.
type Purger interface {
	PurgeDeleted(ctx context.Context, cutoff time.Time) (int, error)
}

// Janitor periodically purges soft-deleted bookmarks older than the
// threshold. Deletion intents only soft-delete rows, so the janitor is what
// eventually reclaims the space.
type Janitor struct {
	store         Purger
	logger        logger.Logger
	interval      time.Duration
	threshold     time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewJanitor creates a janitor. manualTrigger may be nil when no manual
// purge endpoint is wired.
func NewJanitor(
	store Purger,
	log logger.Logger,
	interval time.Duration,
	threshold time.Duration,
	manualTrigger chan struct{},
) *Janitor {
	if threshold == 0 {
		threshold = DefaultPurgeThreshold
	}

	return &Janitor{
		store:         store,
		logger:        log,
		interval:      interval,
		threshold:     threshold,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start begins the periodic purge process.
func (j *Janitor) Start(ctx context.Context) error {
	// Run immediately on start
	if err := j.Purge(ctx); err != nil {
		j.logger.Warn("initial purge failed",
			logger.Error(err))
	}

	ticker := time.NewTicker(j.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := j.Purge(ctx); err != nil {
					j.logger.Error("purge failed",
						logger.Error(err))
				}
			case <-j.manualTrigger:
				j.logger.Info("manual purge triggered")
				if err := j.Purge(ctx); err != nil {
					j.logger.Error("purge failed",
						logger.Error(err))
				}
			case <-j.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the janitor.
func (j *Janitor) Stop() {
	close(j.stopCh)
}

// Purge removes rows soft-deleted longer ago than the threshold.
func (j *Janitor) Purge(ctx context.Context) error {
	cutoff := time.Now().Add(-j.threshold)

	purged, err := j.store.PurgeDeleted(ctx, cutoff)
	if err != nil {
		return err
	}

	if purged > 0 {
		j.logger.Info("purge completed",
			logger.Int("rows_purged", purged),
			logger.Time("cutoff", cutoff))
	} else {
		j.logger.Debug("no rows to purge")
	}

	return nil
}
