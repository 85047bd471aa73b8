package config

import (
	"os"
	"testing"
	"time"
)

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	old, had := os.LookupEnv(key)
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("setenv %s failed: %v", key, err)
	}
	t.Cleanup(func() {
		if had {
			_ = os.Setenv(key, old)
		} else {
			_ = os.Unsetenv(key)
		}
	})
}

func unsetEnv(t *testing.T, key string) {
	t.Helper()
	old, had := os.LookupEnv(key)
	_ = os.Unsetenv(key)
	t.Cleanup(func() {
		if had {
			_ = os.Setenv(key, old)
		}
	})
}

func TestLoadRequiresMySQLDSN(t *testing.T) {
	unsetEnv(t, "MYSQL_DSN")
	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing MYSQL_DSN")
	}
}

func TestLoadDefaults(t *testing.T) {
	setEnv(t, "MYSQL_DSN", "root:root@tcp(localhost:3306)/studio?parseTime=true")
	unsetEnv(t, "APP_SERVICE_NAME")
	unsetEnv(t, "REDIS_ADDR")
	unsetEnv(t, "SMTP_HOST")
	unsetEnv(t, "MAIL_SEND_ALL_STUDIO_EMAILS")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.App.ServiceName != "studio-service" {
		t.Fatalf("unexpected app service name: %s", cfg.App.ServiceName)
	}
	if cfg.App.PermissionDeniedURL != "/permission-denied" {
		t.Fatalf("unexpected permission denied url: %s", cfg.App.PermissionDeniedURL)
	}
	if cfg.Redis.Addr != "" {
		t.Fatalf("expected the gallery cache disabled by default, got %q", cfg.Redis.Addr)
	}
	if !cfg.Mail.SendAllStudioEmails {
		t.Fatal("expected studio emails enabled by default")
	}
	if cfg.Mail.SubjectPrefix != "[rebk designs]" {
		t.Fatalf("unexpected subject prefix: %q", cfg.Mail.SubjectPrefix)
	}
	if cfg.Media.Root != "media" {
		t.Fatalf("unexpected media root: %s", cfg.Media.Root)
	}
	if cfg.Jobs.MediaPruneInterval != 60*time.Minute {
		t.Fatalf("unexpected media prune interval: %v", cfg.Jobs.MediaPruneInterval)
	}
}

func TestLoadOverrides(t *testing.T) {
	setEnv(t, "MYSQL_DSN", "root:root@tcp(localhost:3306)/studio?parseTime=true")
	setEnv(t, "APP_SERVICE_NAME", "studio-test")
	setEnv(t, "HTTP_PORT", "8181")
	setEnv(t, "MYSQL_MAX_OPEN_CONNS", "20")
	setEnv(t, "MYSQL_MAX_IDLE_CONNS", "8")
	setEnv(t, "MYSQL_CONN_MAX_LIFETIME_MINUTES", "40")
	setEnv(t, "REDIS_ADDR", "localhost:6379")
	setEnv(t, "GALLERY_CACHE_TTL_MINUTES", "5")
	setEnv(t, "MAIL_SEND_ALL_STUDIO_EMAILS", "false")
	setEnv(t, "MEDIA_ROOT", "/var/lib/studio/media")
	setEnv(t, "MEDIA_PRUNE_INTERVAL_MINUTES", "15")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.App.ServiceName != "studio-test" {
		t.Fatalf("unexpected app service name: %s", cfg.App.ServiceName)
	}
	if cfg.HTTP.Port != "8181" {
		t.Fatalf("unexpected http port: %s", cfg.HTTP.Port)
	}
	if cfg.MySQL.MaxOpenConns != 20 || cfg.MySQL.MaxIdleConns != 8 {
		t.Fatalf("unexpected mysql pool config: %+v", cfg.MySQL)
	}
	if cfg.MySQL.ConnMaxLifetime != 40*time.Minute {
		t.Fatalf("unexpected mysql lifetime: %v", cfg.MySQL.ConnMaxLifetime)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("unexpected redis addr: %s", cfg.Redis.Addr)
	}
	if cfg.Redis.CacheTTL != 5*time.Minute {
		t.Fatalf("unexpected cache ttl: %v", cfg.Redis.CacheTTL)
	}
	if cfg.Mail.SendAllStudioEmails {
		t.Fatal("expected studio emails disabled")
	}
	if cfg.Media.Root != "/var/lib/studio/media" {
		t.Fatalf("unexpected media root: %s", cfg.Media.Root)
	}
	if cfg.Jobs.MediaPruneInterval != 15*time.Minute {
		t.Fatalf("unexpected media prune interval: %v", cfg.Jobs.MediaPruneInterval)
	}
}
