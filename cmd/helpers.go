package cmd

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/nermi/website/internal/config"
	"github.com/nermi/website/internal/contact"
	"github.com/nermi/website/internal/db"
	"github.com/nermi/website/internal/observability"
	"github.com/nermi/website/internal/submissions"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `nermi init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// newLogger builds the process logger. --verbose forces debug level.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	return observability.NewLogger(level)
}

// buildMailer returns the delivery backend selected by contact.mailer.
func buildMailer(cfg *config.Config, logger *zap.Logger) contact.Mailer {
	if cfg.Contact.Mailer == config.MailerSMTP {
		return contact.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password)
	}
	return contact.NewLogMailer(logger.Named("mailer"))
}

// openStore opens the submissions database. It returns nils when recording
// is disabled.
func openStore(cfg *config.Config) (*db.DB, *submissions.Store, error) {
	if cfg.Database.Path == "" {
		return nil, nil, nil
	}
	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	return database, submissions.NewStore(database), nil
}
