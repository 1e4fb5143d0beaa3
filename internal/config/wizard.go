package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard, saves the result to
// path and returns it.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Let's configure the site server.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Static site directory.
	siteDir, err := (&promptui.Prompt{
		Label:   "Static site directory",
		Default: cfg.Server.SiteDir,
	}).Run()
	if err != nil {
		return nil, fmt.Errorf("site directory: %w", err)
	}
	cfg.Server.SiteDir = siteDir

	// 2. Recipient.
	recipient, err := (&promptui.Prompt{
		Label:    "Contact form recipient",
		Default:  cfg.Contact.Recipient,
		Validate: validateAddress,
	}).Run()
	if err != nil {
		return nil, fmt.Errorf("recipient: %w", err)
	}
	cfg.Contact.Recipient = recipient

	// 3. Mailer.
	mailerPrompt := promptui.Select{
		Label: "Deliver contact messages via",
		Items: []string{
			"smtp — send through an SMTP relay",
			"log  — write messages to the log (development)",
		},
	}
	idx, _, err := mailerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("mailer selection: %w", err)
	}
	cfg.Contact.Mailer = []MailerKind{MailerSMTP, MailerLog}[idx]

	if cfg.Contact.Mailer == MailerSMTP {
		host, err := (&promptui.Prompt{Label: "SMTP host"}).Run()
		if err != nil {
			return nil, fmt.Errorf("smtp host: %w", err)
		}
		cfg.SMTP.Host = host

		port, err := (&promptui.Prompt{
			Label:    "SMTP port",
			Default:  strconv.Itoa(cfg.SMTP.Port),
			Validate: validatePort,
		}).Run()
		if err != nil {
			return nil, fmt.Errorf("smtp port: %w", err)
		}
		cfg.SMTP.Port, _ = strconv.Atoi(port)

		user, err := (&promptui.Prompt{Label: "SMTP username (blank for none)"}).Run()
		if err != nil {
			return nil, fmt.Errorf("smtp username: %w", err)
		}
		cfg.SMTP.Username = user
	}

	// 4. Allowed origins.
	origins, err := (&promptui.Prompt{
		Label:   "Allowed CORS origins (comma-separated)",
		Default: strings.Join(cfg.Server.AllowedOrigins, ","),
	}).Run()
	if err != nil {
		return nil, fmt.Errorf("allowed origins: %w", err)
	}
	if list := splitAndTrim(origins); len(list) > 0 {
		cfg.Server.AllowedOrigins = list
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Contact.Mailer == MailerSMTP && cfg.SMTP.Username != "" && os.Getenv(EnvPrefix+"SMTP__PASSWORD") == "" {
		fmt.Printf("\nNote: set %sSMTP__PASSWORD in your environment before running serve.\n", EnvPrefix)
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

func validateAddress(s string) error {
	if !strings.Contains(s, "@") {
		return fmt.Errorf("not an email address")
	}
	return nil
}

func validatePort(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 65535 {
		return fmt.Errorf("port must be 1-65535")
	}
	return nil
}

// splitAndTrim splits a comma-separated string and trims whitespace.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if token := strings.TrimSpace(part); token != "" {
			result = append(result, token)
		}
	}
	return result
}
