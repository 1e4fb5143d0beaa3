package notify

import (
	"context"
	"errors"

	"github.com/nermi/website/internal/submissions"
)

// Notifier is anything told about delivered submissions.
type Notifier interface {
	Notify(ctx context.Context, sub submissions.Submission) error
}

// Multi fans a submission out to every notifier. All notifiers run even
// when an earlier one fails; the errors are joined.
type Multi []Notifier

// Notify calls each notifier in order.
func (m Multi) Notify(ctx context.Context, sub submissions.Submission) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, sub); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
