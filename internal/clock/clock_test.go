package clock

import (
	"testing"
	"time"
)

func TestFromEnvDefaultsToSystem(t *testing.T) {
	t.Setenv(EnvNow, "")

	c, err := FromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := c.(System); !ok {
		t.Fatalf("expected System clock, got %T", c)
	}
	if time.Since(c.Now()) > time.Minute {
		t.Fatalf("system clock is far off: %v", c.Now())
	}
}

func TestFromEnvFixed(t *testing.T) {
	t.Setenv(EnvNow, "2026-03-09T09:30:00Z")

	c, err := FromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2026, 3, 9, 9, 30, 0, 0, time.UTC)
	if !c.Now().Equal(want) {
		t.Fatalf("expected %v, got %v", want, c.Now())
	}
}

func TestFromEnvInvalid(t *testing.T) {
	t.Setenv(EnvNow, "yesterday")

	if _, err := FromEnv(); err == nil {
		t.Fatal("expected parse error")
	}
}
