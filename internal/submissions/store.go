package submissions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nermi/website/internal/db"
)

// ErrNotFound is returned when a submission does not exist.
var ErrNotFound = errors.New("submission not found")

// ListFilter controls which submissions are returned by List.
type ListFilter struct {
	Status Status
	Since  time.Time
	Limit  int
	Offset int
}

// Store records contact form submissions.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Create inserts s. An empty ID is replaced by a UUID and an empty status
// by pending; both are written back to s.
func (s *Store) Create(ctx context.Context, sub *Submission) error {
	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	if sub.Status == "" {
		sub.Status = StatusPending
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO submissions (id, name, email, subject, message, remote_ip, host, status, error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sub.ID, sub.Name, sub.Email, sub.Subject, sub.Message, sub.RemoteIP, sub.Host,
		string(sub.Status), sub.Error,
		sub.CreatedAt.UTC().Format(time.DateTime), sub.CreatedAt.UTC().Format(time.DateTime),
	)
	if err != nil {
		return fmt.Errorf("inserting submission: %w", err)
	}
	return nil
}

// MarkStatus records the delivery outcome for id.
func (s *Store) MarkStatus(ctx context.Context, id string, status Status, errMsg string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE submissions SET status = ?, error = ?, updated_at = datetime('now') WHERE id = ?`,
		string(status), errMsg, id)
	if err != nil {
		return fmt.Errorf("updating submission status: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("submission %s: %w", id, ErrNotFound)
	}
	return nil
}

// GetByID retrieves a single submission.
func (s *Store) GetByID(ctx context.Context, id string) (*Submission, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, subject, message, remote_ip, host, status, error, created_at
		FROM submissions WHERE id = ?`, id)

	sub, err := scanInto(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("submission %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning submission: %w", err)
	}
	return sub, nil
}

// List returns submissions matching the filter, newest first.
func (s *Store) List(ctx context.Context, filter ListFilter) ([]Submission, error) {
	var (
		clauses []string
		args    []any
	)

	if filter.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, string(filter.Status))
	}
	if !filter.Since.IsZero() {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, filter.Since.UTC().Format(time.DateTime))
	}

	query := "SELECT id, name, email, subject, message, remote_ip, host, status, error, created_at FROM submissions"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC, rowid DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
		if filter.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", filter.Offset)
		}
	} else if filter.Offset > 0 {
		query += fmt.Sprintf(" LIMIT -1 OFFSET %d", filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying submissions: %w", err)
	}
	defer rows.Close()

	var result []Submission
	for rows.Next() {
		sub, err := scanInto(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning submission: %w", err)
		}
		result = append(result, *sub)
	}
	return result, rows.Err()
}

// scanner is implemented by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanInto(sc scanner) (*Submission, error) {
	var (
		sub    Submission
		status string
		ts     string
	)

	err := sc.Scan(&sub.ID, &sub.Name, &sub.Email, &sub.Subject, &sub.Message,
		&sub.RemoteIP, &sub.Host, &status, &sub.Error, &ts)
	if err != nil {
		return nil, err
	}

	sub.Status = Status(status)
	if t, parseErr := time.Parse(time.DateTime, ts); parseErr == nil {
		sub.CreatedAt = t
	} else if t, parseErr := time.Parse(time.RFC3339, ts); parseErr == nil {
		sub.CreatedAt = t
	}

	return &sub, nil
}
