package submissions

import "time"

// Status tracks delivery of a submission.
type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
)

// Submission is one contact form message as received.
type Submission struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	RemoteIP  string    `json:"remote_ip,omitempty"`
	Host      string    `json:"host,omitempty"` // request Host the form was posted to
	Status    Status    `json:"status"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
