package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/cwrk-planet/presence-service/internal/domain"
	"github.com/cwrk-planet/presence-service/internal/store"
)

const (
	DefaultSweepInterval = 5 * time.Minute
	// DefaultTTL bounds the age of heartbeat and sdk-sync entries.
	DefaultTTL = time.Hour
	// WebhookTTL is deliberately longer: webhook entries are authoritative
	// until an explicit leave, so reaping them is speculative cleanup for
	// leave events that were never delivered.
	WebhookTTL = 2 * time.Hour
)

// Sweeper evicts entries whose age exceeds their source-dependent TTL and
// drops meetings emptied by the pruning. It is owned by the same lifecycle as
// the store: started after construction, stopped via context on shutdown.
type Sweeper struct {
	store      *store.Store
	now        func() time.Time
	interval   time.Duration
	defaultTTL time.Duration
	webhookTTL time.Duration
}

func NewSweeper(st *store.Store) *Sweeper {
	return &Sweeper{
		store:      st,
		now:        time.Now,
		interval:   DefaultSweepInterval,
		defaultTTL: DefaultTTL,
		webhookTTL: WebhookTTL,
	}
}

func (sw *Sweeper) SetNow(now func() time.Time) {
	if now != nil {
		sw.now = now
	}
}

func (sw *Sweeper) SetInterval(d time.Duration) {
	if d > 0 {
		sw.interval = d
	}
}

func (sw *Sweeper) SetTTLs(defaultTTL, webhookTTL time.Duration) {
	if defaultTTL > 0 {
		sw.defaultTTL = defaultTTL
	}
	if webhookTTL > 0 {
		sw.webhookTTL = webhookTTL
	}
}

// Run executes one pass per tick until ctx is cancelled. A pass is
// fire-and-forget: whatever happens on one tick never cancels future ticks.
func (sw *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(sw.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sw.RunOnce(sw.now())
		}
	}
}

// RunOnce executes a single sweep pass at the provided instant and returns
// the number of evicted entries. Each meeting is pruned independently over a
// defensive snapshot of keys, so one partition never blocks the rest.
func (sw *Sweeper) RunOnce(now time.Time) int {
	evicted := 0
	for _, key := range sw.store.MeetingKeys() {
		evicted += sw.store.Prune(key, func(_ string, e domain.Entry) bool {
			ttl := sw.defaultTTL
			if e.Source == domain.SourceWebhook {
				ttl = sw.webhookTTL
			}
			return now.Sub(e.LastSeen) > ttl
		})
	}
	if evicted > 0 {
		slog.Debug("presence sweep evicted entries", "count", evicted)
	}
	return evicted
}
