package config

import (
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"testing"
	"time"

	"github.com/princekumarofficial/marketplace-service/internal/utils/mimetype"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
env: "dev"
jwt_secret: "s"
pgsql:
  host: "db"
http_server:
  address: ":8080"
storage:
  bucket_name: "uploads"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.PGSQL.Host != "db" || cfg.PGSQL.Port != "5432" {
		t.Fatalf("Unexpected pgsql config: %+v", cfg.PGSQL)
	}
	if cfg.Storage.BucketName != "uploads" {
		t.Fatalf("Expected bucket from file, got %q", cfg.Storage.BucketName)
	}
	if cfg.Storage.UploadURLTTL != 60*time.Second {
		t.Fatalf("Expected 60s upload TTL, got %v", cfg.Storage.UploadURLTTL)
	}
	if cfg.Storage.NGOPrefix != "items/ngocampaign" || cfg.Storage.DefaultPrefix != "items" {
		t.Fatalf("Unexpected prefixes: %q %q", cfg.Storage.NGOPrefix, cfg.Storage.DefaultPrefix)
	}
	if cfg.Media.DefaultMimeType != "image/png" {
		t.Fatalf("Expected image/png default, got %q", cfg.Media.DefaultMimeType)
	}
	if cfg.RateLimit.TicketCapacity != 30 {
		t.Fatalf("Expected ticket capacity 30, got %d", cfg.RateLimit.TicketCapacity)
	}
	if cfg.Worker.ReconcileInterval != 10*time.Minute || cfg.Worker.PageSize != 200 {
		t.Fatalf("Unexpected worker config: %+v", cfg.Worker)
	}
}

func TestLoad_FileValues(t *testing.T) {
	path := writeConfig(t, `
env: "dev"
jwt_secret: "s"
http_server:
  address: ":9090"
storage:
  upload_url_ttl: 30s
media:
  allowed_mime_types: ["image/png", "image/webp"]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.Storage.UploadURLTTL != 30*time.Second {
		t.Fatalf("Expected 30s TTL, got %v", cfg.Storage.UploadURLTTL)
	}
	if want := []string{"image/png", "image/webp"}; !reflect.DeepEqual(cfg.Media.AllowedMimeTypes, want) {
		t.Fatalf("Expected %v, got %v", want, cfg.Media.AllowedMimeTypes)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Expected error for missing file")
	}
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	os.Unsetenv("JWT_SECRET")

	path := writeConfig(t, `
env: "dev"
`)
	if _, err := Load(path); err == nil {
		t.Fatal("Expected error without jwt_secret")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("S3_BUCKET_NAME", "from-env")

	path := writeConfig(t, `
jwt_secret: "s"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.Storage.BucketName != "from-env" {
		t.Fatalf("Expected bucket from env, got %q", cfg.Storage.BucketName)
	}
	if cfg.Env != "production" {
		t.Fatalf("Expected default env, got %q", cfg.Env)
	}
}

func TestShippedConfig_AllowsEveryResolvedType(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "config", "local.yaml"))
	if err != nil {
		t.Fatalf("Failed to load shipped config: %v", err)
	}

	for _, mimeType := range mimetype.Types() {
		if !slices.Contains(cfg.Media.AllowedMimeTypes, mimeType) {
			t.Fatalf("Shipped config does not allow %s, uploads of it would be re-signed as %s",
				mimeType, cfg.Media.DefaultMimeType)
		}
	}
	if len(cfg.Admin.UserIDs) == 0 {
		t.Fatal("Expected an admin user in the shipped config")
	}
	if cfg.RateLimit.TicketAddrCapacity <= 0 {
		t.Fatalf("Expected a per-address ticket cap, got %d", cfg.RateLimit.TicketAddrCapacity)
	}
}

func TestLoad_DefaultMimeTypesCoverResolver(t *testing.T) {
	path := writeConfig(t, `
jwt_secret: "s"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for _, mimeType := range mimetype.Types() {
		if !slices.Contains(cfg.Media.AllowedMimeTypes, mimeType) {
			t.Fatalf("Default allow-list is missing %s: %v", mimeType, cfg.Media.AllowedMimeTypes)
		}
	}
}
