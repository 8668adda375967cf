package imports

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/factory_backend/utils"
)

func TestMemorySessionStore_TakeIsSingleUse(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore(30 * time.Minute)

	session, err := NewSession("orders", &OrdersPayload{}, newValidationResult())
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if err := store.Put(ctx, session); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := store.Take(ctx, session.Token)
	if err != nil {
		t.Fatalf("first Take: %v", err)
	}
	if got.Kind != "orders" {
		t.Fatalf("unexpected kind %q", got.Kind)
	}

	if _, err := store.Take(ctx, session.Token); !errors.Is(err, utils.ErrorSessionNotFound) {
		t.Fatalf("second Take expected ErrorSessionNotFound, got %v", err)
	}
}

func TestMemorySessionStore_UnknownToken(t *testing.T) {
	store := NewMemorySessionStore(30 * time.Minute)
	if _, err := store.Take(context.Background(), "nope"); !errors.Is(err, utils.ErrorSessionNotFound) {
		t.Fatalf("expected ErrorSessionNotFound, got %v", err)
	}
}

func TestMemorySessionStore_ExpiredOnTake(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore(time.Minute)

	session, err := NewSession("orders", &OrdersPayload{}, newValidationResult())
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	session.CreatedAt = time.Now().Add(-2 * time.Minute)
	if err := store.Put(ctx, session); err != nil {
		t.Fatalf("Put: %v", err)
	}

	if _, err := store.Take(ctx, session.Token); !errors.Is(err, utils.ErrorSessionNotFound) {
		t.Fatalf("expired session expected ErrorSessionNotFound, got %v", err)
	}
}

func TestMemorySessionStore_Sweep(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore(time.Minute)

	stale, _ := NewSession("orders", &OrdersPayload{}, newValidationResult())
	stale.CreatedAt = time.Now().Add(-2 * time.Minute)
	fresh, _ := NewSession("orders", &OrdersPayload{}, newValidationResult())
	_ = store.Put(ctx, stale)
	_ = store.Put(ctx, fresh)

	if err := store.Sweep(ctx, time.Now()); err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if _, err := store.Take(ctx, stale.Token); !errors.Is(err, utils.ErrorSessionNotFound) {
		t.Fatalf("stale session should be swept, got %v", err)
	}
	if _, err := store.Take(ctx, fresh.Token); err != nil {
		t.Fatalf("fresh session should survive the sweep: %v", err)
	}
}

func TestNewSession_RoundTripsPayload(t *testing.T) {
	payload := &OrdersPayload{Rows: []OrderRow{{ProductName: "Bag", Quantity: 5, Status: "pending"}}}
	session, err := NewSession("orders", payload, newValidationResult())
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if session.Token == "" {
		t.Fatal("session token should be minted")
	}

	var decoded OrdersPayload
	if err := json.Unmarshal(session.Payload, &decoded); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if len(decoded.Rows) != 1 || decoded.Rows[0].ProductName != "Bag" {
		t.Fatalf("unexpected decoded payload %+v", decoded)
	}
}
