package bus

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/bericyb/dislinkedIn/internal/local"
	"github.com/bericyb/dislinkedIn/internal/service"
)

func newTestBroadcaster(t *testing.T) (*Broadcaster, *service.CounterService) {
	t.Helper()
	ls, err := local.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open local store: %v", err)
	}
	svc := service.NewCounterService(nil, ls, nil, zerolog.Nop())
	return NewBroadcaster(svc, zerolog.Nop()), svc
}

func TestBroadcaster_SyncAllPushesFullMap(t *testing.T) {
	b, svc := newTestBroadcaster(t)
	ctx := context.Background()

	if _, err := svc.AddDislike(ctx, "urn:li:activity:1"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := svc.AddDislike(ctx, "urn:li:activity:2"); err != nil {
		t.Fatalf("add: %v", err)
	}

	var got []Push
	b.Register("https://www.linkedin.com/feed/", func(msg Push) {
		got = append(got, msg)
	})

	b.SyncAll(ctx)

	if len(got) != 1 {
		t.Fatalf("received %d pushes, want 1", len(got))
	}
	if got[0].Action != ActionSyncDislikes {
		t.Errorf("action = %q, want %q", got[0].Action, ActionSyncDislikes)
	}
	// Always the whole map, never a delta.
	if len(got[0].Dislikes) != 2 {
		t.Errorf("push carries %d entries, want 2", len(got[0].Dislikes))
	}
}

func TestBroadcaster_OnlyFeedContextsReceive(t *testing.T) {
	b, _ := newTestBroadcaster(t)

	feedPushes, otherPushes := 0, 0
	b.Register("https://www.linkedin.com/feed/", func(Push) { feedPushes++ })
	b.Register("https://news.example.com/", func(Push) { otherPushes++ })
	b.Register("not a url at all ://", func(Push) { otherPushes++ })

	b.RefreshAll()

	if feedPushes != 1 {
		t.Errorf("feed context got %d pushes, want 1", feedPushes)
	}
	if otherPushes != 0 {
		t.Errorf("non-feed contexts got %d pushes, want 0", otherPushes)
	}
}

func TestBroadcaster_UnregisterStopsDelivery(t *testing.T) {
	b, _ := newTestBroadcaster(t)

	pushes := 0
	unregister := b.Register("https://www.linkedin.com/feed/", func(Push) { pushes++ })

	b.RefreshAll()
	unregister()
	b.RefreshAll()

	if pushes != 1 {
		t.Errorf("got %d pushes, want 1 (delivery after unregister)", pushes)
	}
}

func TestBroadcaster_ClearAllWipesStoreAndNotifies(t *testing.T) {
	b, svc := newTestBroadcaster(t)
	ctx := context.Background()

	if _, err := svc.AddDislike(ctx, "urn:li:activity:wipe"); err != nil {
		t.Fatalf("add: %v", err)
	}

	var got []Push
	b.Register("https://www.linkedin.com/feed/", func(msg Push) {
		got = append(got, msg)
	})

	if err := b.ClearAll(ctx); err != nil {
		t.Fatalf("clear all: %v", err)
	}

	if len(svc.GetAllDislikes(ctx)) != 0 {
		t.Errorf("counters remain after clear")
	}
	if len(got) != 1 || got[0].Action != ActionClearAllDislikes {
		t.Errorf("pushes = %+v, want one clearAllDislikes", got)
	}
}
