package ratelimit

import "testing"

func TestAllow_WithinBurst(t *testing.T) {
	krl := New(1, 3)
	defer krl.Stop()

	for i := range 3 {
		if !krl.Allow("10.0.0.1") {
			t.Fatalf("request %d should be within burst", i)
		}
	}
	if krl.Allow("10.0.0.1") {
		t.Error("request beyond burst should be denied")
	}
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	krl := New(1, 1)
	defer krl.Stop()

	if !krl.Allow("10.0.0.1") {
		t.Fatal("first key should be allowed")
	}
	if !krl.Allow("10.0.0.2") {
		t.Error("a different key has its own bucket")
	}
	if krl.Allow("10.0.0.1") {
		t.Error("first key exhausted its burst")
	}
}

func TestStop_Idempotent(t *testing.T) {
	krl := New(1, 1)
	krl.Stop()
	krl.Stop()
}
