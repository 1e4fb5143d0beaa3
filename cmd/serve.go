package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nermi/website/internal/admin"
	"github.com/nermi/website/internal/config"
	"github.com/nermi/website/internal/contact"
	"github.com/nermi/website/internal/notify"
	"github.com/nermi/website/internal/page"
	"github.com/nermi/website/internal/server"
	"github.com/nermi/website/internal/site"
	"github.com/nermi/website/internal/submissions"
)

var (
	servePort    int
	serveSiteDir string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the website and the contact form relay",
	Long: `Starts the HTTP server. Static files are served from the site directory
and contact form posts are accepted at /send-email and /api/contact. Page
tuning values are published at /api/page-config.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if servePort != 0 {
			cfg.Server.Port = servePort
		}
		if serveSiteDir != "" {
			cfg.Server.SiteDir = serveSiteDir
		}

		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer logger.Sync()

		database, store, err := openStore(cfg)
		if err != nil {
			return err
		}
		if database != nil {
			defer database.Close()
		}

		var (
			feed  *admin.Feed
			extra []notify.Notifier
		)
		if cfg.Admin.Token != "" {
			feed = admin.NewFeed(logger.Named("feed"))
			extra = append(extra, feed)
		}
		handler := contact.NewHandler(contactOptions(cfg, logger, store, extra...))

		srv := server.New(server.Config{
			Port:           cfg.Server.Port,
			AllowedOrigins: cfg.Server.AllowedOrigins,
		}, logger)
		contact.RegisterRoutes(srv.Router(), handler)
		admin.RegisterRoutes(srv.Router(), store, feed, cfg.Admin.Token)
		page.RegisterRoutes(srv.Router(), page.DefaultSettings(cfg.CarouselInterval()))

		static, err := site.Handler(cfg.Server.SiteDir, cfg.Server.Deny)
		if err != nil {
			return err
		}
		srv.Router().Handle("/*", static)

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			logger.Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("server shutdown", zap.Error(err))
			}
		}()

		logger.Info("nermi starting",
			zap.String("version", Version),
			zap.Int("port", cfg.Server.Port),
			zap.String("site_dir", cfg.Server.SiteDir),
			zap.String("mailer", string(cfg.Contact.Mailer)),
			zap.String("database", cfg.Database.Path),
		)

		err = srv.Start()
		handler.Wait()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: %w", err)
	},
}

// contactOptions wires the relay's collaborators from cfg. store may be nil.
// extra notifiers are told about deliveries alongside the webhook.
func contactOptions(cfg *config.Config, logger *zap.Logger, store *submissions.Store, extra ...notify.Notifier) contact.Options {
	opts := contact.Options{
		Recipient:       cfg.Contact.Recipient,
		FallbackContact: cfg.FallbackContact(),
		Composer: contact.NewComposer(
			cfg.Contact.FromName,
			cfg.Contact.FromDomain,
			cfg.Contact.SiteName,
			contact.Format(cfg.Contact.MessageFormat),
		),
		Mailer: buildMailer(cfg, logger),
		Store:  store,
		Logger: logger.Named("contact"),
	}
	notifiers := extra
	if cfg.Webhook.URL != "" {
		notifiers = append(notifiers, notify.NewDispatcher(cfg.Webhook.URL, cfg.WebhookTimeout()))
	}
	switch len(notifiers) {
	case 0:
	case 1:
		opts.Notifier = notifiers[0]
	default:
		opts.Notifier = notify.Multi(notifiers)
	}
	if cfg.Contact.RateLimitPerMinute > 0 {
		opts.Limiter = contact.NewLimiter(cfg.Contact.RateLimitPerMinute, cfg.Contact.RateLimitBurst)
	}
	return opts
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "port to listen on (overrides server.port)")
	serveCmd.Flags().StringVar(&serveSiteDir, "site-dir", "", "static site directory (overrides server.site_dir)")
	rootCmd.AddCommand(serveCmd)
}
