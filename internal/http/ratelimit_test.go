package httpapi

import (
	"fmt"
	"testing"
	"time"
)

func TestCreateLimiterBurstThenDeny(t *testing.T) {
	l := newCreateLimiter(0.0001, 3)

	for i := 0; i < 3; i++ {
		if !l.Allow("1.2.3.4") {
			t.Fatalf("request %d within burst should be allowed", i+1)
		}
	}
	if l.Allow("1.2.3.4") {
		t.Error("request beyond burst should be denied")
	}
}

func TestCreateLimiterKeysAreIndependent(t *testing.T) {
	l := newCreateLimiter(0.0001, 1)

	if !l.Allow("1.2.3.4") {
		t.Fatal("first key should be allowed")
	}
	if l.Allow("1.2.3.4") {
		t.Error("first key should now be exhausted")
	}
	if !l.Allow("5.6.7.8") {
		t.Error("second key has its own bucket and should be allowed")
	}
}

func TestCreateLimiterRefills(t *testing.T) {
	l := newCreateLimiter(10, 1)

	if !l.Allow("1.2.3.4") {
		t.Fatal("first request should be allowed")
	}
	if l.Allow("1.2.3.4") {
		t.Fatal("bucket should be empty")
	}

	// Backdate the bucket instead of sleeping; a second at 10 rps refills it.
	l.mu.Lock()
	l.clients["1.2.3.4"].lastSeen = time.Now().Add(-time.Second)
	l.mu.Unlock()

	if !l.Allow("1.2.3.4") {
		t.Error("bucket should have refilled")
	}
}

func TestCreateLimiterEvictsIdleClients(t *testing.T) {
	l := newCreateLimiter(1, 1)

	for i := 0; i < 100; i++ {
		l.Allow(fmt.Sprintf("10.0.0.%d", i))
	}

	l.mu.Lock()
	for _, b := range l.clients {
		b.lastSeen = time.Now().Add(-2 * time.Minute)
	}
	l.evictIdle(time.Now())
	tracked := len(l.clients)
	l.mu.Unlock()

	if tracked != 0 {
		t.Errorf("expected idle buckets evicted, %d still tracked", tracked)
	}
}
