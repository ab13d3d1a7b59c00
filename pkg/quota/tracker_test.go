package quota

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available for testing: %v", err)
	}

	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("Failed to flush test DB: %v", err)
	}

	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})

	return client
}

func TestTracker_AddAndGetState(t *testing.T) {
	client := setupTestRedis(t)
	tracker := NewTracker(client, "v1", 100, 75, zerolog.Nop())
	ctx := context.Background()

	if err := tracker.Add(ctx, 40); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := tracker.Add(ctx, 20); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	state, err := tracker.GetState(ctx)
	if err != nil {
		t.Fatalf("GetState failed: %v", err)
	}
	if state.BytesUsed != 60 {
		t.Errorf("BytesUsed = %d, want 60", state.BytesUsed)
	}
}

func TestTracker_GetState_Empty(t *testing.T) {
	client := setupTestRedis(t)
	tracker := NewTracker(client, "v1", 100, 75, zerolog.Nop())

	state, err := tracker.GetState(context.Background())
	if err != nil {
		t.Fatalf("GetState failed: %v", err)
	}
	if state.BytesUsed != 0 {
		t.Errorf("BytesUsed = %d, want 0", state.BytesUsed)
	}
	if state.MaxBytes != 100 {
		t.Errorf("MaxBytes = %d, want 100", state.MaxBytes)
	}
}

func TestTracker_ShouldAllowWrite(t *testing.T) {
	client := setupTestRedis(t)
	tracker := NewTracker(client, "v1", 100, 75, zerolog.Nop())
	ctx := context.Background()

	allowed, err := tracker.ShouldAllowWrite(ctx, 50)
	if err != nil {
		t.Fatalf("ShouldAllowWrite failed: %v", err)
	}
	if !allowed {
		t.Error("write should be allowed under quota")
	}

	if err := tracker.Add(ctx, 95); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	allowed, err = tracker.ShouldAllowWrite(ctx, 10)
	if err != nil {
		t.Fatalf("ShouldAllowWrite failed: %v", err)
	}
	if allowed {
		t.Error("write should be blocked over quota")
	}
}

func TestTracker_AddNegativeDelta(t *testing.T) {
	client := setupTestRedis(t)
	tracker := NewTracker(client, "v1", 100, 75, zerolog.Nop())
	ctx := context.Background()

	if err := tracker.Add(ctx, 60); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	// A shrinking overwrite reports negative growth
	if err := tracker.Add(ctx, -20); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	state, err := tracker.GetState(ctx)
	if err != nil {
		t.Fatalf("GetState failed: %v", err)
	}
	if state.BytesUsed != 40 {
		t.Errorf("BytesUsed = %d, want 40", state.BytesUsed)
	}

	allowed, err := tracker.ShouldAllowWrite(ctx, 50)
	if err != nil {
		t.Fatalf("ShouldAllowWrite failed: %v", err)
	}
	if !allowed {
		t.Error("write should fit after the shrink was accounted")
	}
}

func TestTracker_Reset(t *testing.T) {
	client := setupTestRedis(t)
	tracker := NewTracker(client, "v1", 100, 75, zerolog.Nop())
	ctx := context.Background()

	if err := tracker.Add(ctx, 90); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := tracker.Reset(ctx); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	state, err := tracker.GetState(ctx)
	if err != nil {
		t.Fatalf("GetState failed: %v", err)
	}
	if state.BytesUsed != 0 {
		t.Errorf("BytesUsed after reset = %d, want 0", state.BytesUsed)
	}
}

func TestTracker_PurgeStale(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()

	v1 := NewTracker(client, "v1", 100, 75, zerolog.Nop())
	v2 := NewTracker(client, "v2", 100, 75, zerolog.Nop())

	if err := v1.Add(ctx, 30); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := v2.Add(ctx, 40); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if err := v2.PurgeStale(ctx); err != nil {
		t.Fatalf("PurgeStale failed: %v", err)
	}

	state, err := v1.GetState(ctx)
	if err != nil {
		t.Fatalf("GetState failed: %v", err)
	}
	if state.BytesUsed != 0 {
		t.Errorf("stale counter survived purge: %d", state.BytesUsed)
	}

	state, err = v2.GetState(ctx)
	if err != nil {
		t.Fatalf("GetState failed: %v", err)
	}
	if state.BytesUsed != 40 {
		t.Errorf("current counter lost during purge: %d", state.BytesUsed)
	}
}

func TestNewTracker_Defaults(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	defer client.Close()

	tracker := NewTracker(client, "v1", 0, 0, zerolog.Nop())
	if tracker.maxBytes != DefaultMaxBytes {
		t.Errorf("maxBytes = %d, want %d", tracker.maxBytes, DefaultMaxBytes)
	}
	if tracker.warnBytes != DefaultMaxBytes*3/4 {
		t.Errorf("warnBytes = %d, want %d", tracker.warnBytes, int64(DefaultMaxBytes*3/4))
	}
}
