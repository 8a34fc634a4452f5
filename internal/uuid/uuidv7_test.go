package uuid

import (
	"testing"
	"time"

	googleuuid "github.com/google/uuid"
)

func TestNew(t *testing.T) {
	t.Run("valid_v7", func(t *testing.T) {
		id := New()
		parsed, err := googleuuid.Parse(id)
		if err != nil {
			t.Fatalf("expected valid uuid, got %q: %v", id, err)
		}
		if parsed.Version() != 7 {
			t.Errorf("expected version 7, got %d", parsed.Version())
		}
		if parsed.Variant() != googleuuid.RFC4122 {
			t.Errorf("expected RFC4122 variant, got %v", parsed.Variant())
		}
	})

	t.Run("strictly_increasing", func(t *testing.T) {
		prev := New()
		for i := 0; i < 10000; i++ {
			id := New()
			if id <= prev {
				t.Fatalf("id %q is not greater than %q", id, prev)
			}
			prev = id
		}
	})

	t.Run("clock_moving_backwards", func(t *testing.T) {
		now := time.Now().Add(time.Hour)
		first := newAt(now)
		second := newAt(now.Add(-time.Minute))
		if second <= first {
			t.Errorf("expected %q > %q after clock skew", second, first)
		}
	})
}

func TestIsValid(t *testing.T) {
	if !IsValid(New()) {
		t.Error("expected generated id to be valid")
	}
	if IsValid("not-a-uuid") {
		t.Error("expected invalid string to be rejected")
	}
	if _, err := Parse("not-a-uuid"); err == nil {
		t.Error("expected parse error")
	}
}
