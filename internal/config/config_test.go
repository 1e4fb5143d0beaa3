package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Contact.Recipient != "contact@mihq.company" {
		t.Errorf("expected default recipient, got %q", cfg.Contact.Recipient)
	}
	if cfg.Contact.Mailer != MailerLog {
		t.Errorf("expected default mailer %q, got %q", MailerLog, cfg.Contact.Mailer)
	}
	if cfg.CarouselInterval() != 5*time.Second {
		t.Errorf("expected 5s carousel interval, got %v", cfg.CarouselInterval())
	}
	if len(cfg.Server.AllowedOrigins) != 1 || cfg.Server.AllowedOrigins[0] != "*" {
		t.Errorf("expected allowed origins [*], got %v", cfg.Server.AllowedOrigins)
	}
}

func TestDefaultConfigDoesNotShareDeny(t *testing.T) {
	a := DefaultConfig()
	a.Server.Deny[0] = "changed"
	if DefaultDeny[0] == "changed" {
		t.Fatal("DefaultConfig must copy DefaultDeny")
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nermi.yml")

	original := DefaultConfig()
	original.Server.Port = 9090
	original.Server.AllowedOrigins = []string{"https://nermi.example", "https://www.nermi.example"}
	original.Contact.Mailer = MailerSMTP
	original.Contact.MessageFormat = FormatMarkdown
	original.SMTP.Host = "smtp.example.com"
	original.SMTP.Password = "hunter2"
	original.Admin.Token = "0123456789abcdef"
	original.Carousel.IntervalMS = 3000

	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Server.Port != 9090 {
		t.Errorf("port: got %d, want 9090", loaded.Server.Port)
	}
	if loaded.Contact.Mailer != MailerSMTP {
		t.Errorf("mailer: got %q, want %q", loaded.Contact.Mailer, MailerSMTP)
	}
	if loaded.Contact.MessageFormat != FormatMarkdown {
		t.Errorf("message_format: got %q", loaded.Contact.MessageFormat)
	}
	if loaded.SMTP.Host != "smtp.example.com" {
		t.Errorf("smtp.host: got %q", loaded.SMTP.Host)
	}
	if loaded.SMTP.Password != "" {
		t.Error("smtp.password must not be written to disk")
	}
	if loaded.Admin.Token != "" {
		t.Error("admin.token must not be written to disk")
	}
	if loaded.CarouselInterval() != 3*time.Second {
		t.Errorf("carousel interval: got %v", loaded.CarouselInterval())
	}
	if len(loaded.Server.AllowedOrigins) != 2 {
		t.Fatalf("allowed_origins: got %v", loaded.Server.AllowedOrigins)
	}
	for i, v := range loaded.Server.AllowedOrigins {
		if v != original.Server.AllowedOrigins[i] {
			t.Errorf("allowed_origins[%d]: got %q, want %q", i, v, original.Server.AllowedOrigins[i])
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nonexistent.yml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load should not fail for missing file: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port, got %d", cfg.Server.Port)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nermi.yml")

	if err := DefaultConfig().Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	t.Setenv("NERMI_SMTP__PASSWORD", "s3cret")
	t.Setenv("NERMI_CONTACT__RECIPIENT", "hello@nermi.example")
	t.Setenv("NERMI_SERVER__PORT", "9999")
	t.Setenv("NERMI_ADMIN__TOKEN", "0123456789abcdef")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.SMTP.Password != "s3cret" {
		t.Errorf("smtp.password: got %q", loaded.SMTP.Password)
	}
	if loaded.Contact.Recipient != "hello@nermi.example" {
		t.Errorf("contact.recipient: got %q", loaded.Contact.Recipient)
	}
	if loaded.Server.Port != 9999 {
		t.Errorf("server.port: got %d", loaded.Server.Port)
	}
	if loaded.Admin.Token != "0123456789abcdef" {
		t.Errorf("admin.token: got %q", loaded.Admin.Token)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yml")
	if err := os.WriteFile(path, []byte("server: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, true},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }, true},
		{"empty site dir", func(c *Config) { c.Server.SiteDir = "" }, true},
		{"empty recipient", func(c *Config) { c.Contact.Recipient = "" }, true},
		{"bad recipient", func(c *Config) { c.Contact.Recipient = "not-an-address" }, true},
		{"unknown mailer", func(c *Config) { c.Contact.Mailer = "pigeon" }, true},
		{"unknown format", func(c *Config) { c.Contact.MessageFormat = "rtf" }, true},
		{"smtp without host", func(c *Config) { c.Contact.Mailer = MailerSMTP }, true},
		{"smtp with host", func(c *Config) {
			c.Contact.Mailer = MailerSMTP
			c.SMTP.Host = "smtp.example.com"
		}, false},
		{"negative rate", func(c *Config) { c.Contact.RateLimitPerMinute = -1 }, true},
		{"rate without burst", func(c *Config) {
			c.Contact.RateLimitPerMinute = 5
			c.Contact.RateLimitBurst = 0
		}, true},
		{"zero interval", func(c *Config) { c.Carousel.IntervalMS = 0 }, true},
		{"negative webhook timeout", func(c *Config) { c.Webhook.TimeoutSeconds = -1 }, true},
		{"short admin token", func(c *Config) { c.Admin.Token = "short" }, true},
		{"admin token", func(c *Config) { c.Admin.Token = "0123456789abcdef" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFallbackContact(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.FallbackContact(); got != cfg.Contact.Recipient {
		t.Errorf("FallbackContact() = %q, want recipient", got)
	}
	cfg.Contact.FallbackContact = "owner@nermi.example"
	if got := cfg.FallbackContact(); got != "owner@nermi.example" {
		t.Errorf("FallbackContact() = %q", got)
	}
}

func TestWebhookTimeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Webhook.TimeoutSeconds = 0
	if cfg.WebhookTimeout() != 10*time.Second {
		t.Errorf("WebhookTimeout() = %v, want 10s", cfg.WebhookTimeout())
	}
	cfg.Webhook.TimeoutSeconds = 3
	if cfg.WebhookTimeout() != 3*time.Second {
		t.Errorf("WebhookTimeout() = %v, want 3s", cfg.WebhookTimeout())
	}
}

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b , c ", []string{"a", "b", "c"}},
		{"*", []string{"*"}},
		{"", nil},
		{"  ,  , ", nil},
	}
	for _, tt := range tests {
		got := splitAndTrim(tt.input)
		if len(got) != len(tt.want) {
			t.Errorf("splitAndTrim(%q) len = %d, want %d", tt.input, len(got), len(tt.want))
			continue
		}
		for i, v := range got {
			if v != tt.want[i] {
				t.Errorf("splitAndTrim(%q)[%d] = %q, want %q", tt.input, i, v, tt.want[i])
			}
		}
	}
}

func TestEnvKey(t *testing.T) {
	if got := envKey("NERMI_CONTACT__FROM_NAME"); got != "contact.from_name" {
		t.Errorf("envKey = %q", got)
	}
	if got := envKey("NERMI_LOG_LEVEL"); got != "log_level" {
		t.Errorf("envKey = %q", got)
	}
}
