package passes

import (
	"strings"
	"testing"
	"time"
)

func TestPassRoundTrip(t *testing.T) {
	now := time.Now()
	payload := GeneratePayload("u42", "00123", now)

	memberID, err := VerifyPayload(payload, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("expected valid pass, got %v", err)
	}
	if memberID != "u42" {
		t.Fatalf("expected member u42, got %s", memberID)
	}
}

func TestPassExpired(t *testing.T) {
	now := time.Now()
	payload := GeneratePayload("u42", "00123", now)

	if _, err := VerifyPayload(payload, now.Add(passTTL+time.Minute)); err == nil {
		t.Fatal("expected expiry error")
	}
}

func TestPassTampered(t *testing.T) {
	now := time.Now()
	payload := GeneratePayload("u42", "00123", now)
	tampered := strings.Replace(payload, "u42", "u43", 1)

	if _, err := VerifyPayload(tampered, now); err == nil {
		t.Fatal("expected signature error")
	}
}

func TestPassMalformed(t *testing.T) {
	if _, err := VerifyPayload("garbage", time.Now()); err == nil {
		t.Fatal("expected malformed error")
	}
}
