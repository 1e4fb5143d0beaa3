package contact

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nermi/website/internal/db"
	"github.com/nermi/website/internal/submissions"
)

const validBody = `{"name":"Ada Lovelace","email":"ada@example.com","subject":"Hello","message":"Hi there"}`

type fakeMailer struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	subs []submissions.Submission
}

func (n *fakeNotifier) Notify(_ context.Context, sub submissions.Submission) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subs = append(n.subs, sub)
	return nil
}

func setupTestStore(t *testing.T) *submissions.Store {
	t.Helper()
	database, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return submissions.NewStore(database)
}

func newTestHandler(t *testing.T, mailer Mailer, store *submissions.Store, notifier Notifier) *Handler {
	t.Helper()
	opts := Options{
		Recipient: "contact@mihq.company",
		Composer:  NewComposer("NerMI Contact Form", "nermi.example", "NerMI", FormatText),
		Mailer:    mailer,
		Store:     store,
		Notifier:  notifier,
		Now:       func() time.Time { return testTime },
	}
	return NewHandler(opts)
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHandlerSuccess(t *testing.T) {
	mailer := &fakeMailer{}
	store := setupTestStore(t)
	notifier := &fakeNotifier{}
	h := newTestHandler(t, mailer, store, notifier)

	rec := do(h, http.MethodPost, "/send-email", validBody)
	h.Wait()

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Email sent successfully", body["message"])

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "[Hello] Message from Ada Lovelace", mailer.sent[0].Subject)
	assert.Equal(t, "contact@mihq.company", mailer.sent[0].To)
	assert.Equal(t, "ada@example.com", mailer.sent[0].ReplyTo)

	subs, err := store.List(context.Background(), submissions.ListFilter{})
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, submissions.StatusSent, subs[0].Status)
	assert.Equal(t, "192.0.2.1", subs[0].RemoteIP)
	assert.Equal(t, "example.com", subs[0].Host)

	require.Len(t, notifier.subs, 1)
	assert.Equal(t, subs[0].ID, notifier.subs[0].ID)
	assert.Equal(t, submissions.StatusSent, notifier.subs[0].Status)
}

func TestHandlerSendFailure(t *testing.T) {
	mailer := &fakeMailer{err: errors.New("connection refused")}
	store := setupTestStore(t)
	notifier := &fakeNotifier{}
	h := newTestHandler(t, mailer, store, notifier)

	rec := do(h, http.MethodPost, "/send-email", validBody)
	h.Wait()

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Failed to send email. Please try again or contact directly at contact@mihq.company", body["error"])

	subs, err := store.List(context.Background(), submissions.ListFilter{})
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, submissions.StatusFailed, subs[0].Status)
	assert.Contains(t, subs[0].Error, "connection refused")
	assert.Empty(t, notifier.subs)
}

func TestHandlerFallbackContact(t *testing.T) {
	h := NewHandler(Options{
		Recipient:       "contact@mihq.company",
		FallbackContact: "owner@example.com",
		Composer:        NewComposer("Form", "", "NerMI", FormatText),
		Mailer:          &fakeMailer{err: errors.New("down")},
	})
	rec := do(h, http.MethodPost, "/send-email", validBody)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "owner@example.com")
}

func TestHandlerWithoutStore(t *testing.T) {
	mailer := &fakeMailer{}
	h := newTestHandler(t, mailer, nil, nil)
	rec := do(h, http.MethodPost, "/send-email", validBody)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, mailer.sent, 1)
}

func TestHandlerOptions(t *testing.T) {
	mailer := &fakeMailer{}
	h := newTestHandler(t, mailer, nil, nil)
	rec := do(h, http.MethodOptions, "/send-email", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Empty(t, mailer.sent)
}

func TestHandlerMethodNotAllowed(t *testing.T) {
	h := newTestHandler(t, &fakeMailer{}, nil, nil)
	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		rec := do(h, method, "/send-email", "")
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, method)
		assert.Equal(t, "Method not allowed", decode(t, rec)["error"], method)
	}
}

func TestHandlerMissingFields(t *testing.T) {
	mailer := &fakeMailer{}
	h := newTestHandler(t, mailer, nil, nil)

	rec := do(h, http.MethodPost, "/send-email", `{"name":"Ada","email":"ada@example.com"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Missing required fields", body["error"])
	assert.Equal(t, map[string]any{
		"name":    true,
		"email":   true,
		"subject": false,
		"message": false,
	}, body["received"])
	assert.Empty(t, mailer.sent)
}

func TestHandlerMalformedJSON(t *testing.T) {
	h := newTestHandler(t, &fakeMailer{}, nil, nil)
	rec := do(h, http.MethodPost, "/send-email", `{not json`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, map[string]any{
		"name":    false,
		"email":   false,
		"subject": false,
		"message": false,
	}, decode(t, rec)["received"])
}

func TestHandlerRejectsNonStringFields(t *testing.T) {
	mailer := &fakeMailer{}
	h := newTestHandler(t, mailer, nil, nil)

	for _, body := range []string{
		`{"name":"a","email":"a@b.co","subject":7,"message":"m"}`,
		`{"NAME":"a","email":"a@b.co","subject":"s","message":"m"}`,
	} {
		rec := do(h, http.MethodPost, "/send-email", body)
		require.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, "Missing required fields", decode(t, rec)["error"], body)
	}
	assert.Empty(t, mailer.sent)
}

func TestHandlerInvalidEmail(t *testing.T) {
	mailer := &fakeMailer{}
	h := newTestHandler(t, mailer, nil, nil)
	rec := do(h, http.MethodPost, "/send-email",
		`{"name":"Ada","email":"not-an-email","subject":"Hi","message":"Hello"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid email address", decode(t, rec)["error"])
	assert.Empty(t, mailer.sent)
}

func TestHandlerRateLimited(t *testing.T) {
	mailer := &fakeMailer{}
	h := NewHandler(Options{
		Recipient: "contact@mihq.company",
		Composer:  NewComposer("Form", "", "NerMI", FormatText),
		Mailer:    mailer,
		Limiter:   NewLimiter(1, 1),
	})

	assert.Equal(t, http.StatusOK, do(h, http.MethodPost, "/send-email", validBody).Code)
	rec := do(h, http.MethodPost, "/send-email", validBody)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "Too many requests", decode(t, rec)["error"])
	assert.Len(t, mailer.sent, 1)
}

func TestHandlerBodyTooLarge(t *testing.T) {
	h := newTestHandler(t, &fakeMailer{}, nil, nil)
	big := `{"name":"` + strings.Repeat("a", MaxBodyBytes) + `"}`
	rec := do(h, http.MethodPost, "/send-email", big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestRegisterRoutes(t *testing.T) {
	mailer := &fakeMailer{}
	h := newTestHandler(t, mailer, nil, nil)
	r := chi.NewRouter()
	RegisterRoutes(r, h)

	for _, path := range []string{"/send-email", "/api/contact"} {
		rec := do(r, http.MethodPost, path, validBody)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
	assert.Len(t, mailer.sent, 2)

	rec := do(r, http.MethodPost, "/elsewhere", validBody)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRedeliver(t *testing.T) {
	store := setupTestStore(t)
	failed := submissions.Submission{
		Name: "Ada Lovelace", Email: "ada@example.com", Subject: "Hello", Message: "Hi",
		Status: submissions.StatusFailed, Error: "timeout", CreatedAt: testTime,
	}
	require.NoError(t, store.Create(context.Background(), &failed))

	down := &fakeMailer{err: errors.New("still down")}
	h := newTestHandler(t, down, store, nil)
	require.Error(t, h.Redeliver(context.Background(), failed))
	got, err := store.GetByID(context.Background(), failed.ID)
	require.NoError(t, err)
	assert.Equal(t, submissions.StatusFailed, got.Status)
	assert.Contains(t, got.Error, "still down")

	mailer := &fakeMailer{}
	notifier := &fakeNotifier{}
	h = newTestHandler(t, mailer, store, notifier)
	require.NoError(t, h.Redeliver(context.Background(), failed))
	h.Wait()

	got, err = store.GetByID(context.Background(), failed.ID)
	require.NoError(t, err)
	assert.Equal(t, submissions.StatusSent, got.Status)
	assert.Empty(t, got.Error)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "[Hello] Message from Ada Lovelace", mailer.sent[0].Subject)
	assert.Equal(t, "noreply@nermi.example", mailer.sent[0].From.Address)
	assert.Contains(t, mailer.sent[0].HTML, "March 4, 2026, 9:05 am UTC")
	require.Len(t, notifier.subs, 1)
}

func TestRedeliverUsesRecordedHost(t *testing.T) {
	store := setupTestStore(t)
	mailer := &fakeMailer{}
	h := NewHandler(Options{
		Recipient: "contact@mihq.company",
		Composer:  NewComposer("NerMI Contact Form", "", "NerMI", FormatText),
		Mailer:    mailer,
		Store:     store,
		Now:       func() time.Time { return testTime },
	})

	rec := do(h, http.MethodPost, "/send-email", validBody)
	h.Wait()
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "noreply@example.com", mailer.sent[0].From.Address)

	subs, err := store.List(context.Background(), submissions.ListFilter{})
	require.NoError(t, err)
	require.Len(t, subs, 1)
	require.NoError(t, h.Redeliver(context.Background(), subs[0]))
	h.Wait()
	require.Len(t, mailer.sent, 2)
	assert.Equal(t, "noreply@example.com", mailer.sent[1].From.Address)

	legacy := submissions.Submission{
		Name: "Ada Lovelace", Email: "ada@example.com", Subject: "Hello", Message: "Hi",
		Status: submissions.StatusFailed, CreatedAt: testTime,
	}
	require.NoError(t, store.Create(context.Background(), &legacy))
	err = h.Redeliver(context.Background(), legacy)
	require.ErrorIs(t, err, ErrNoSenderDomain)
	assert.Len(t, mailer.sent, 2)

	got, err := store.GetByID(context.Background(), legacy.ID)
	require.NoError(t, err)
	assert.Equal(t, submissions.StatusFailed, got.Status)
}
