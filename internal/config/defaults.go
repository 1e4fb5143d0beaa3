package config

// DefaultDeny are site paths never served as static files.
var DefaultDeny = []string{
	"**/.*",
	"**/.*/**",
	"**/*.php",
	"**/*.yml",
	"**/*.yaml",
	"**/*.db",
	"**/*.db-*",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Server: ServerConfig{
			Port:           8080,
			SiteDir:        "public",
			AllowedOrigins: []string{"*"},
			Deny:           append([]string(nil), DefaultDeny...),
		},
		Contact: ContactConfig{
			Recipient:          "contact@mihq.company",
			FromName:           "NerMI Contact Form",
			SiteName:           "NerMI",
			MessageFormat:      FormatText,
			Mailer:             MailerLog,
			RateLimitPerMinute: 0,
			RateLimitBurst:     3,
		},
		SMTP: SMTPConfig{
			Port: 587,
		},
		Database: DatabaseConfig{
			Path: "data/nermi.db",
		},
		Webhook: WebhookConfig{
			TimeoutSeconds: 10,
		},
		Carousel: CarouselConfig{
			IntervalMS: 5000,
		},
	}
}
