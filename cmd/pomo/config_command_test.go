package main

import (
	"strings"
	"testing"

	"github.com/amonks/pomo/internal/config"
)

func TestRedactConfigHidesAuthToken(t *testing.T) {
	cfg := &config.Config{Store: config.Store{Backend: config.BackendLibsql, URL: "libsql://db.example", AuthToken: "secret"}}

	out, err := config.Encode(redactConfig(cfg))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if strings.Contains(out, "secret") {
		t.Fatalf("expected token to be redacted:\n%s", out)
	}
	if !strings.Contains(out, redacted) {
		t.Fatalf("expected redaction marker:\n%s", out)
	}
	if cfg.Store.AuthToken != "secret" {
		t.Fatal("redaction must not modify the loaded config")
	}
}
