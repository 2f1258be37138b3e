package budget

import (
	"context"
	"testing"
	"time"
)

func TestUnlimited_AlwaysAllows(t *testing.T) {
	u := Unlimited{}
	for i := 0; i < 5; i++ {
		if d := u.AllowAttempt(context.Background(), i, KindRetry, 1); !d.Allowed {
			t.Fatalf("attempt %d: expected allowed", i)
		}
	}
}

func TestTokenBucket_ExhaustsThenDenies(t *testing.T) {
	b := NewTokenBucket(2, 0)
	if d := b.AllowAttempt(context.Background(), 1, KindRetry, 1); !d.Allowed {
		t.Fatal("1st attempt should be allowed")
	}
	if d := b.AllowAttempt(context.Background(), 2, KindRetry, 1); !d.Allowed {
		t.Fatal("2nd attempt should be allowed")
	}
	if d := b.AllowAttempt(context.Background(), 3, KindRetry, 1); d.Allowed {
		t.Fatal("3rd attempt should be denied")
	}
}

func TestTokenBucket_Refills(t *testing.T) {
	b := NewTokenBucket(1, 10) // 10 tokens/sec
	now := time.Unix(0, 0)
	b.SetClock(func() time.Time { return now })

	if d := b.AllowAttempt(context.Background(), 1, KindRetry, 1); !d.Allowed {
		t.Fatal("expected allowed")
	}
	if d := b.AllowAttempt(context.Background(), 2, KindRetry, 1); d.Allowed {
		t.Fatal("expected denied, bucket just drained")
	}

	now = now.Add(200 * time.Millisecond) // +2 tokens, capped at capacity 1
	if d := b.AllowAttempt(context.Background(), 3, KindRetry, 1); !d.Allowed {
		t.Fatal("expected allowed after refill")
	}
}

func TestNew_UnlimitedWhenNoCapacity(t *testing.T) {
	if _, ok := New(Config{}).(Unlimited); !ok {
		t.Fatal("expected Unlimited for zero-value Config")
	}
}
