// Package contact implements the contact form mail relay: it validates a
// JSON form post, composes an HTML notification email and hands it to a
// Mailer.
package contact

import (
	"encoding/json"
	"errors"
	"net/mail"
	"strings"
)

var (
	// ErrMissingFields matches a *MissingFieldsError.
	ErrMissingFields = errors.New("missing required fields")
	// ErrInvalidEmail is returned when the email field is not an address.
	ErrInvalidEmail = errors.New("invalid email address")
)

// Request is the decoded form body. A nil field was absent, null or not a
// JSON string.
type Request struct {
	Name    *string
	Email   *string
	Subject *string
	Message *string
}

// Received reports which fields were present.
type Received struct {
	Name    bool `json:"name"`
	Email   bool `json:"email"`
	Subject bool `json:"subject"`
	Message bool `json:"message"`
}

// All reports whether every field was present.
func (r Received) All() bool {
	return r.Name && r.Email && r.Subject && r.Message
}

func (r Received) missing() []string {
	var out []string
	if !r.Name {
		out = append(out, "name")
	}
	if !r.Email {
		out = append(out, "email")
	}
	if !r.Subject {
		out = append(out, "subject")
	}
	if !r.Message {
		out = append(out, "message")
	}
	return out
}

// MissingFieldsError lists the fields absent from a request.
type MissingFieldsError struct {
	Received Received
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Received.missing(), ", ")
}

func (e *MissingFieldsError) Is(target error) bool { return target == ErrMissingFields }

// Fields are the trimmed values of a valid request.
type Fields struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// DecodeRequest parses body. Keys match exactly. Malformed JSON yields a
// Request with no fields present, and a null or non-string value is treated
// as absent.
func DecodeRequest(body []byte) Request {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return Request{}
	}
	return Request{
		Name:    stringField(raw, "name"),
		Email:   stringField(raw, "email"),
		Subject: stringField(raw, "subject"),
		Message: stringField(raw, "message"),
	}
}

func stringField(raw map[string]json.RawMessage, key string) *string {
	v, ok := raw[key]
	if !ok || len(v) == 0 || v[0] != '"' {
		return nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return nil
	}
	return &s
}

// Received reports which fields are present.
func (r Request) Received() Received {
	return Received{
		Name:    r.Name != nil,
		Email:   r.Email != nil,
		Subject: r.Subject != nil,
		Message: r.Message != nil,
	}
}

// Validate checks presence of all fields and the shape of the email.
func (r Request) Validate() (Fields, error) {
	rec := r.Received()
	if !rec.All() {
		return Fields{}, &MissingFieldsError{Received: rec}
	}
	f := Fields{
		Name:    strings.TrimSpace(*r.Name),
		Email:   strings.TrimSpace(*r.Email),
		Subject: strings.TrimSpace(*r.Subject),
		Message: strings.TrimSpace(*r.Message),
	}
	if !ValidEmail(f.Email) {
		return f, ErrInvalidEmail
	}
	return f, nil
}

// ValidEmail reports whether s is a bare addr-spec (no display name or
// angle brackets) whose domain is a dotted host name.
func ValidEmail(s string) bool {
	if s == "" || len(s) > 254 || strings.ContainsAny(s, " \t\r\n") {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Name != "" || addr.Address != s {
		return false
	}
	at := strings.LastIndexByte(s, '@')
	if at < 1 || at > 64 {
		return false
	}
	labels := strings.Split(s[at+1:], ".")
	if len(labels) < 2 {
		return false
	}
	for _, label := range labels {
		if !validLabel(label) {
			return false
		}
	}
	return true
}

func validLabel(label string) bool {
	if label == "" || len(label) > 63 || label[0] == '-' || label[len(label)-1] == '-' {
		return false
	}
	for _, c := range label {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-':
		default:
			return false
		}
	}
	return true
}
