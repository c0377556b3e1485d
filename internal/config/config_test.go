package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "secret")

	cfg := Load()
	if cfg.Port != "8080" || cfg.MongoDatabase != "jobboard" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.MaxFileSize != 2<<20 {
		t.Fatalf("MaxFileSize = %d", cfg.MaxFileSize)
	}
	if cfg.DefaultPageLimit != 10 || cfg.MaxPageLimit != 100 {
		t.Fatalf("page limits = %d/%d", cfg.DefaultPageLimit, cfg.MaxPageLimit)
	}
	if cfg.ApplicationWindow != 7*24*time.Hour {
		t.Fatalf("ApplicationWindow = %v", cfg.ApplicationWindow)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("STORAGE_TIMEOUT", "3s")
	t.Setenv("GEOCODER_TIMEOUT", "7")
	t.Setenv("APPLY_RATE_LIMIT", "5")
	t.Setenv("MAX_FILE_SIZE", "1048576")
	t.Setenv("SHUTDOWN_TIMEOUT", "soon")

	cfg := Load()
	if cfg.Port != "9000" {
		t.Fatalf("Port = %s", cfg.Port)
	}
	if cfg.StorageTimeout != 3*time.Second || cfg.GeocoderTimeout != 7*time.Second {
		t.Fatalf("timeouts = %v/%v", cfg.StorageTimeout, cfg.GeocoderTimeout)
	}
	if cfg.ApplyRateLimit != 5 || cfg.MaxFileSize != 1<<20 {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Fatalf("ShutdownTimeout = %v, want default", cfg.ShutdownTimeout)
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		GeocoderProvider: "google",
		MaxFileSize:      0,
		DefaultPageLimit: 50,
		MaxPageLimit:     20,
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"JWT_SECRET", "MONGO_URI", "GEOCODER_PROVIDER", "MAX_FILE_SIZE", "DEFAULT_PAGE_LIMIT"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}
