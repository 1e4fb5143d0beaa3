package config

import (
	"fmt"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides. A double underscore separates
// levels: NERMI_SMTP__PASSWORD sets smtp.password.
const EnvPrefix = "NERMI_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (NERMI_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// envKey maps NERMI_CONTACT__FROM_NAME to contact.from_name.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Save writes the configuration to the given YAML file path. Secrets are
// left out; supply them through NERMI_SMTP__PASSWORD and NERMI_ADMIN__TOKEN.
func (c *Config) Save(path string) error {
	out := *c
	out.SMTP.Password = ""
	out.Admin.Token = ""
	data, err := yamlv3.Marshal(&out)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

const minAdminTokenLen = 16

var validMailers = map[MailerKind]bool{
	MailerSMTP: true,
	MailerLog:  true,
}

var validFormats = map[MessageFormat]bool{
	FormatText:     true,
	FormatMarkdown: true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Server.SiteDir == "" {
		return fmt.Errorf("server.site_dir is required")
	}

	if c.Contact.Recipient == "" {
		return fmt.Errorf("contact.recipient is required")
	}
	if _, err := mail.ParseAddress(c.Contact.Recipient); err != nil {
		return fmt.Errorf("invalid contact.recipient %q: %w", c.Contact.Recipient, err)
	}
	if !validMailers[c.Contact.Mailer] {
		return fmt.Errorf("invalid contact.mailer %q: must be one of smtp, log", c.Contact.Mailer)
	}
	if !validFormats[c.Contact.MessageFormat] {
		return fmt.Errorf("invalid contact.message_format %q: must be one of text, markdown", c.Contact.MessageFormat)
	}
	if c.Contact.RateLimitPerMinute < 0 {
		return fmt.Errorf("contact.rate_limit_per_minute must be non-negative")
	}
	if c.Contact.RateLimitPerMinute > 0 && c.Contact.RateLimitBurst < 1 {
		return fmt.Errorf("contact.rate_limit_burst must be at least 1 when rate limiting is enabled")
	}

	if c.Contact.Mailer == MailerSMTP {
		if c.SMTP.Host == "" {
			return fmt.Errorf("smtp.host is required when contact.mailer is smtp")
		}
		if c.SMTP.Port < 1 || c.SMTP.Port > 65535 {
			return fmt.Errorf("smtp.port %d out of range", c.SMTP.Port)
		}
	}

	if c.Webhook.TimeoutSeconds < 0 {
		return fmt.Errorf("webhook.timeout_seconds must be non-negative")
	}
	if c.Admin.Token != "" && len(c.Admin.Token) < minAdminTokenLen {
		return fmt.Errorf("admin.token must be at least %d characters", minAdminTokenLen)
	}
	if c.Carousel.IntervalMS <= 0 {
		return fmt.Errorf("carousel.interval_ms must be positive")
	}

	return nil
}

// CarouselInterval returns the auto-advance period.
func (c *Config) CarouselInterval() time.Duration {
	return time.Duration(c.Carousel.IntervalMS) * time.Millisecond
}

// WebhookTimeout returns the webhook client timeout.
func (c *Config) WebhookTimeout() time.Duration {
	if c.Webhook.TimeoutSeconds == 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Webhook.TimeoutSeconds) * time.Second
}

// FallbackContact is the address shown to visitors when delivery fails.
func (c *Config) FallbackContact() string {
	if c.Contact.FallbackContact != "" {
		return c.Contact.FallbackContact
	}
	return c.Contact.Recipient
}
