package config

// MailerKind selects how contact messages are delivered.
type MailerKind string

const (
	MailerSMTP MailerKind = "smtp"
	MailerLog  MailerKind = "log"
)

// MessageFormat controls how the contact message body is rendered.
type MessageFormat string

const (
	FormatText     MessageFormat = "text"
	FormatMarkdown MessageFormat = "markdown"
)

// Config is the top-level configuration, corresponding to nermi.yml.
type Config struct {
	LogLevel string         `yaml:"log_level" koanf:"log_level"`
	Server   ServerConfig   `yaml:"server" koanf:"server"`
	Contact  ContactConfig  `yaml:"contact" koanf:"contact"`
	SMTP     SMTPConfig     `yaml:"smtp" koanf:"smtp"`
	Database DatabaseConfig `yaml:"database" koanf:"database"`
	Webhook  WebhookConfig  `yaml:"webhook" koanf:"webhook"`
	Carousel CarouselConfig `yaml:"carousel" koanf:"carousel"`
	Admin    AdminConfig    `yaml:"admin" koanf:"admin"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           int      `yaml:"port" koanf:"port"`
	SiteDir        string   `yaml:"site_dir" koanf:"site_dir"`
	AllowedOrigins []string `yaml:"allowed_origins" koanf:"allowed_origins"`
	// Deny lists glob patterns under SiteDir that are never served.
	Deny []string `yaml:"deny" koanf:"deny"`
}

// ContactConfig holds contact form relay settings.
type ContactConfig struct {
	Recipient       string        `yaml:"recipient" koanf:"recipient"`
	FromName        string        `yaml:"from_name" koanf:"from_name"`
	FromDomain      string        `yaml:"from_domain" koanf:"from_domain"`
	SiteName        string        `yaml:"site_name" koanf:"site_name"`
	FallbackContact string        `yaml:"fallback_contact" koanf:"fallback_contact"`
	MessageFormat   MessageFormat `yaml:"message_format" koanf:"message_format"`
	Mailer          MailerKind    `yaml:"mailer" koanf:"mailer"`
	// RateLimitPerMinute of 0 disables per-client limiting.
	RateLimitPerMinute int `yaml:"rate_limit_per_minute" koanf:"rate_limit_per_minute"`
	RateLimitBurst     int `yaml:"rate_limit_burst" koanf:"rate_limit_burst"`
}

// SMTPConfig holds the outgoing mail relay.
type SMTPConfig struct {
	Host     string `yaml:"host" koanf:"host"`
	Port     int    `yaml:"port" koanf:"port"`
	Username string `yaml:"username" koanf:"username"`
	Password string `yaml:"password,omitempty" koanf:"password"`
}

// DatabaseConfig holds the submissions database. An empty Path disables
// recording.
type DatabaseConfig struct {
	Path string `yaml:"path" koanf:"path"`
}

// WebhookConfig holds the optional new-submission webhook.
type WebhookConfig struct {
	URL            string `yaml:"url" koanf:"url"`
	TimeoutSeconds int    `yaml:"timeout_seconds" koanf:"timeout_seconds"`
}

// CarouselConfig holds carousel preview settings.
type CarouselConfig struct {
	IntervalMS int `yaml:"interval_ms" koanf:"interval_ms"`
}

// AdminConfig guards the operator API. An empty Token disables it.
type AdminConfig struct {
	Token string `yaml:"token,omitempty" koanf:"token"`
}
