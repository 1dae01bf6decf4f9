// ABOUTME: Unit tests for identity context helpers
// ABOUTME: Tests context propagation and avatar initials

package auth

import (
	"context"
	"testing"
)

func TestWithIdentity_RoundTrip(t *testing.T) {
	id := &Identity{SessionID: "s1", UserID: "u1", Email: "ada@example.com", Token: "tok"}
	ctx := WithIdentity(context.Background(), id)

	got := FromContext(ctx)
	if got != id {
		t.Fatalf("FromContext() = %v, want %v", got, id)
	}
	if MustFromContext(ctx) != id {
		t.Error("MustFromContext() returned a different identity")
	}
}

func TestFromContext_Missing(t *testing.T) {
	if got := FromContext(context.Background()); got != nil {
		t.Errorf("FromContext() = %v, want nil", got)
	}
}

func TestMustFromContext_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustFromContext() did not panic")
		}
	}()
	MustFromContext(context.Background())
}

func TestIdentity_Initial(t *testing.T) {
	tests := []struct {
		email string
		want  string
	}{
		{"ada@example.com", "A"},
		{"émile@example.com", "É"},
		{"", "?"},
	}
	for _, tt := range tests {
		id := &Identity{Email: tt.email}
		if got := id.Initial(); got != tt.want {
			t.Errorf("Initial(%q) = %q, want %q", tt.email, got, tt.want)
		}
	}

	var nilID *Identity
	if got := nilID.Initial(); got != "?" {
		t.Errorf("nil Initial() = %q, want ?", got)
	}
}
