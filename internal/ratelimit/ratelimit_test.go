package ratelimit

import "testing"

func TestLimiter_AllowsUpToCapacityThenBlocks(t *testing.T) {
	l := New(60)

	for i := 0; i < 60; i++ {
		if !l.Allow("key-a", 0) {
			t.Fatalf("expected request %d to be allowed", i)
		}
	}
	if l.Allow("key-a", 0) {
		t.Error("expected the 61st request to be blocked")
	}
}

func TestLimiter_KeysAreIndependent(t *testing.T) {
	l := New(1)

	if !l.Allow("key-a", 0) {
		t.Fatal("expected first request for key-a to be allowed")
	}
	if l.Allow("key-a", 0) {
		t.Error("expected key-a to be exhausted")
	}
	if !l.Allow("key-b", 0) {
		t.Error("expected key-b to have its own independent bucket")
	}
}

func TestLimiter_PerKeyRPMOverridesDefault(t *testing.T) {
	l := New(1)

	if !l.Allow("key-a", 2) {
		t.Fatal("expected first request to be allowed")
	}
	if !l.Allow("key-a", 2) {
		t.Error("expected second request to be allowed under the key's own rpm=2")
	}
	if l.Allow("key-a", 2) {
		t.Error("expected third request to be blocked")
	}
}

func TestLimiter_Forget(t *testing.T) {
	l := New(1)
	l.Allow("key-a", 0)
	l.Forget("key-a")

	if !l.Allow("key-a", 0) {
		t.Error("expected a fresh bucket after Forget")
	}
}
