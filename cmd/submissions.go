package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/nermi/website/internal/contact"
	"github.com/nermi/website/internal/progress"
	"github.com/nermi/website/internal/submissions"
)

var (
	subsStatus string
	subsLimit  int
	subsSince  time.Duration
	subsJSON   bool
)

var submissionsCmd = &cobra.Command{
	Use:   "submissions",
	Short: "List recorded contact form submissions",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		database, store, err := openStore(cfg)
		if err != nil {
			return err
		}
		if store == nil {
			return fmt.Errorf("submission recording is disabled (database.path is empty)")
		}
		defer database.Close()

		filter := submissions.ListFilter{
			Status: submissions.Status(subsStatus),
			Limit:  subsLimit,
		}
		if subsSince > 0 {
			filter.Since = time.Now().Add(-subsSince)
		}
		switch filter.Status {
		case "", submissions.StatusPending, submissions.StatusSent, submissions.StatusFailed:
		default:
			return fmt.Errorf("unknown status %q (want pending, sent or failed)", subsStatus)
		}

		subs, err := store.List(cmd.Context(), filter)
		if err != nil {
			return err
		}
		if subsJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(subs)
		}
		return printSubmissions(cmd.OutOrStdout(), subs)
	},
}

var retryLimit int

var retryCmd = &cobra.Command{
	Use:   "retry",
	Short: "Redeliver submissions whose email failed",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
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
		if store == nil {
			return fmt.Errorf("submission recording is disabled (database.path is empty)")
		}
		defer database.Close()

		failed, err := store.List(cmd.Context(), submissions.ListFilter{
			Status: submissions.StatusFailed,
			Limit:  retryLimit,
		})
		if err != nil {
			return err
		}
		if len(failed) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No failed submissions.")
			return nil
		}

		handler := contact.NewHandler(contactOptions(cfg, logger, store))
		sent, err := redeliver(cmd.Context(), handler, failed,
			progress.NewReporter(cmd.ErrOrStderr(), "Redelivering"))
		handler.Wait()

		fmt.Fprintf(cmd.OutOrStdout(), "Redelivered %d of %d submissions.\n", sent, len(failed))
		return err
	},
}

// redeliver sends each submission again and returns how many succeeded.
// Failures are joined into the returned error.
func redeliver(ctx context.Context, h *contact.Handler, subs []submissions.Submission, rep progress.Reporter) (int, error) {
	var (
		sent int
		errs []error
	)
	rep.Start(len(subs))
	for i, sub := range subs {
		if err := h.Redeliver(ctx, sub); err != nil {
			errs = append(errs, err)
		} else {
			sent++
		}
		rep.Update(i+1, sub.Email)
	}
	rep.Finish()
	return sent, errors.Join(errs...)
}

func printSubmissions(out io.Writer, subs []submissions.Submission) error {
	if len(subs) == 0 {
		fmt.Fprintln(out, "No submissions.")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CREATED\tSTATUS\tNAME\tEMAIL\tSUBJECT\tID")
	for _, s := range subs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			s.CreatedAt.Local().Format(time.DateTime), s.Status, s.Name, s.Email, truncate(s.Subject, 40), s.ID)
	}
	return tw.Flush()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func init() {
	submissionsCmd.Flags().StringVar(&subsStatus, "status", "", "only show pending, sent or failed submissions")
	submissionsCmd.Flags().IntVar(&subsLimit, "limit", 20, "maximum rows to show (0 for all)")
	submissionsCmd.Flags().DurationVar(&subsSince, "since", 0, "only show submissions newer than this, e.g. 24h")
	submissionsCmd.Flags().BoolVar(&subsJSON, "json", false, "print JSON instead of a table")
	retryCmd.Flags().IntVar(&retryLimit, "limit", 0, "maximum submissions to retry (0 for all)")
	submissionsCmd.AddCommand(retryCmd)
	rootCmd.AddCommand(submissionsCmd)
}
