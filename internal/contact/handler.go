package contact

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/nermi/website/internal/observability"
	"github.com/nermi/website/internal/submissions"
)

// MaxBodyBytes caps the size of a form post.
const MaxBodyBytes = 64 << 10

const notifyTimeout = 30 * time.Second

// ErrNoSenderDomain is returned by Redeliver when neither the submission
// nor the composer names a sender domain. Set contact.from_domain.
var ErrNoSenderDomain = errors.New("no sender domain recorded; set contact.from_domain")

// Notifier is told about every delivered submission.
type Notifier interface {
	Notify(ctx context.Context, sub submissions.Submission) error
}

// Response is the JSON body returned for POST requests.
type Response struct {
	Success  bool      `json:"success"`
	Message  string    `json:"message,omitempty"`
	Error    string    `json:"error,omitempty"`
	Received *Received `json:"received,omitempty"`
}

// Options configures a Handler. Store, Notifier and Limiter are optional.
type Options struct {
	Recipient       string
	FallbackContact string
	Composer        *Composer
	Mailer          Mailer
	Store           *submissions.Store
	Notifier        Notifier
	Limiter         *Limiter
	Logger          *zap.Logger
	Now             func() time.Time
}

// Handler serves the contact form endpoint.
type Handler struct {
	opts Options
	wg   sync.WaitGroup
}

// NewHandler returns a Handler for opts.
func NewHandler(opts Options) *Handler {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.FallbackContact == "" {
		opts.FallbackContact = opts.Recipient
	}
	return &Handler{opts: opts}
}

// RegisterRoutes mounts the relay at /send-email and /api/contact.
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Handle("/send-email", h)
	r.Handle("/api/contact", h)
}

// Wait blocks until background webhook notifications finish.
func (h *Handler) Wait() { h.wg.Wait() }

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodPost:
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
		return
	}

	ctx := r.Context()
	logger := observability.FromContextOr(ctx, h.opts.Logger)
	ip := clientIP(r)

	if h.opts.Limiter != nil && !h.opts.Limiter.Allow(ip) {
		logger.Warn("contact submission rate limited", zap.String("client", ip))
		writeJSON(w, http.StatusTooManyRequests, Response{Error: "Too many requests"})
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, Response{Error: "Request body too large"})
			return
		}
		logger.Debug("reading contact body", zap.Error(err))
		body = nil
	}

	fields, err := DecodeRequest(body).Validate()
	if err != nil {
		var missing *MissingFieldsError
		switch {
		case errors.As(err, &missing):
			rec := missing.Received
			writeJSON(w, http.StatusBadRequest, Response{Error: "Missing required fields", Received: &rec})
		case errors.Is(err, ErrInvalidEmail):
			writeJSON(w, http.StatusBadRequest, Response{Error: "Invalid email address"})
		default:
			writeJSON(w, http.StatusBadRequest, Response{Error: err.Error()})
		}
		return
	}

	msg, err := h.opts.Composer.Compose(fields, h.opts.Recipient, r.Host, h.opts.Now())
	if err != nil {
		logger.Error("composing contact email", zap.Error(err))
		h.writeFailure(w)
		return
	}

	sub := submissions.Submission{
		Name:     fields.Name,
		Email:    fields.Email,
		Subject:  fields.Subject,
		Message:  fields.Message,
		RemoteIP: ip,
		Host:     r.Host,
	}
	h.record(ctx, logger, &sub)

	if err := h.opts.Mailer.Send(ctx, msg); err != nil {
		logger.Error("sending contact email", zap.String("submission_id", sub.ID), zap.Error(err))
		h.mark(ctx, logger, &sub, submissions.StatusFailed, err.Error())
		h.writeFailure(w)
		return
	}

	h.mark(ctx, logger, &sub, submissions.StatusSent, "")
	logger.Info("contact email sent", zap.String("submission_id", sub.ID))
	h.notify(ctx, logger, sub)

	writeJSON(w, http.StatusOK, Response{Success: true, Message: "Email sent successfully"})
}

// Redeliver composes and sends a recorded submission again, updating its
// stored status. The sender domain comes from the Host the form was posted
// to unless the composer has a fixed domain. The Sent line shows the
// original submission time.
func (h *Handler) Redeliver(ctx context.Context, sub submissions.Submission) error {
	if sub.Host == "" && h.opts.Composer.FromDomain == "" {
		return fmt.Errorf("redelivering %s: %w", sub.ID, ErrNoSenderDomain)
	}
	sent := sub.CreatedAt
	if sent.IsZero() {
		sent = h.opts.Now()
	}
	f := Fields{Name: sub.Name, Email: sub.Email, Subject: sub.Subject, Message: sub.Message}
	msg, err := h.opts.Composer.Compose(f, h.opts.Recipient, sub.Host, sent)
	if err != nil {
		return err
	}

	logger := h.opts.Logger
	if err := h.opts.Mailer.Send(ctx, msg); err != nil {
		h.mark(ctx, logger, &sub, submissions.StatusFailed, err.Error())
		return fmt.Errorf("redelivering %s: %w", sub.ID, err)
	}
	h.mark(ctx, logger, &sub, submissions.StatusSent, "")
	logger.Info("contact email redelivered", zap.String("submission_id", sub.ID))
	h.notify(ctx, logger, sub)
	return nil
}

func (h *Handler) writeFailure(w http.ResponseWriter) {
	writeJSON(w, http.StatusInternalServerError, Response{
		Error: fmt.Sprintf("Failed to send email. Please try again or contact directly at %s", h.opts.FallbackContact),
	})
}

// record stores sub when a store is configured. Storage failures are
// logged and never block delivery.
func (h *Handler) record(ctx context.Context, logger *zap.Logger, sub *submissions.Submission) {
	if h.opts.Store == nil {
		return
	}
	if err := h.opts.Store.Create(ctx, sub); err != nil {
		logger.Error("recording contact submission", zap.Error(err))
		sub.ID = ""
	}
}

func (h *Handler) mark(ctx context.Context, logger *zap.Logger, sub *submissions.Submission, status submissions.Status, errMsg string) {
	sub.Status = status
	sub.Error = errMsg
	if h.opts.Store == nil || sub.ID == "" {
		return
	}
	if err := h.opts.Store.MarkStatus(ctx, sub.ID, status, errMsg); err != nil {
		logger.Error("updating contact submission", zap.String("submission_id", sub.ID), zap.Error(err))
	}
}

// notify posts sub to the webhook in the background so a slow endpoint
// does not delay the visitor's response.
func (h *Handler) notify(ctx context.Context, logger *zap.Logger, sub submissions.Submission) {
	if h.opts.Notifier == nil {
		return
	}
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()
		if err := h.opts.Notifier.Notify(ctx, sub); err != nil {
			logger.Warn("contact webhook failed", zap.String("submission_id", sub.ID), zap.Error(err))
		}
	}()
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
