package cache

import (
	"context"
	"testing"
	"time"
	"travelbook/pkg/logger"
)

func TestCache_DisabledIsNoop(t *testing.T) {
	ctx := context.Background()
	caches := []*Cache{nil, New(nil, "board", time.Minute, logger.Discard())}

	for _, c := range caches {
		if c.Enabled() {
			t.Fatalf("cache without client should be disabled")
		}
		c.Set(ctx, "2025-06-10", map[string]int{"open": 27})
		var out map[string]int
		if c.Get(ctx, "2025-06-10", &out) {
			t.Errorf("disabled cache reported a hit")
		}
		c.Delete(ctx, "2025-06-10")
		c.Bump(ctx, "2025-06-10")
		if key, ok := c.Versioned(ctx, "2025-06-10"); ok || key != "" {
			t.Errorf("Versioned() on disabled cache = %q, %v", key, ok)
		}
		if err := c.Ping(ctx); err != nil {
			t.Errorf("Ping() on disabled cache = %v", err)
		}
	}
}

func TestCache_Key(t *testing.T) {
	c := New(nil, "settings", time.Minute, logger.Discard())
	if got := c.key("default"); got != "settings:default" {
		t.Errorf("key() = %q", got)
	}
	if got := c.versionKey("2025-06-10"); got != "settings:version:2025-06-10" {
		t.Errorf("versionKey() = %q", got)
	}
}
