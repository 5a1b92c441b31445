package bus

import (
	"context"
	"net/url"
	"sync"

	"github.com/rs/zerolog"

	"github.com/bericyb/dislinkedIn/internal/service"
)

// TargetHost limits pushes to contexts showing the feed site.
const TargetHost = "www.linkedin.com"

type subscriber struct {
	url     string
	deliver func(Push)
}

// Broadcaster pushes counter state to every registered page context. A sync
// is always the full map, never a delta: each receiving context replaces its
// cache wholesale and re-renders from it.
type Broadcaster struct {
	mu     sync.Mutex
	svc    *service.CounterService
	log    zerolog.Logger
	nextID int
	subs   map[int]subscriber
}

func NewBroadcaster(svc *service.CounterService, logger zerolog.Logger) *Broadcaster {
	return &Broadcaster{
		svc:  svc,
		log:  logger,
		subs: make(map[int]subscriber),
	}
}

// Register adds a page context by its location URL. The returned function
// unregisters it (tab closed).
func (b *Broadcaster) Register(pageURL string, deliver func(Push)) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = subscriber{url: pageURL, deliver: deliver}
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// SyncAll fetches the full counter map once and pushes it to every matching
// context.
func (b *Broadcaster) SyncAll(ctx context.Context) {
	dislikes := b.svc.GetAllDislikes(ctx)
	n := b.push(Push{Action: ActionSyncDislikes, Dislikes: dislikes})
	b.log.Debug().Int("contexts", n).Int("posts", len(dislikes)).Msg("synced dislikes to contexts")
}

// RefreshAll asks every matching context to re-pull its counter map.
func (b *Broadcaster) RefreshAll() {
	b.push(Push{Action: ActionRefreshDislikes})
}

// ClearAll wipes the local store, then tells every matching context to drop
// its cached counts.
func (b *Broadcaster) ClearAll(ctx context.Context) error {
	if err := b.svc.ClearAll(ctx); err != nil {
		return err
	}
	b.push(Push{Action: ActionClearAllDislikes})
	return nil
}

func (b *Broadcaster) push(msg Push) int {
	b.mu.Lock()
	targets := make([]subscriber, 0, len(b.subs))
	for _, sub := range b.subs {
		if matchesTarget(sub.url) {
			targets = append(targets, sub)
		}
	}
	b.mu.Unlock()

	for _, sub := range targets {
		sub.deliver(msg)
	}
	return len(targets)
}

func matchesTarget(pageURL string) bool {
	u, err := url.Parse(pageURL)
	if err != nil {
		return false
	}
	return u.Host == TargetHost
}
