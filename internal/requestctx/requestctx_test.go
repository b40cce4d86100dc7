package requestctx

import (
	"context"
	"testing"
)

func TestActor(t *testing.T) {
	ctx := context.Background()
	if got := Actor(ctx); got != "anonymous" {
		t.Fatalf("expected anonymous, got %q", got)
	}
	ctx = WithPrincipal(ctx, Principal{Name: "Admin User", Email: "admin"})
	if got := Actor(ctx); got != "admin" {
		t.Fatalf("expected admin, got %q", got)
	}
	ctx = WithRequestID(ctx, "req-1")
	if got := GetRequestID(ctx); got != "req-1" {
		t.Fatalf("expected req-1, got %q", got)
	}
}
