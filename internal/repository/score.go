package repository

import (
	"cmp"
	"context"
	"errors"
	"math"
	"strings"
	"time"
)

const (
	DefaultLimit       = 10
	MaxLimit           = 100
	DefaultRecentLimit = 20
)

var ErrInvalidScore = errors.New("invalid score")

// ValidationError says what is wrong with a submitted score.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidScore
}

type Score struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Mines     int       `json:"mines" db:"mines"`
	Size      string    `json:"size" db:"size"`
	Time      int       `json:"time" db:"time"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// NewScore trims name and size and truncates mines and time toward zero.
// Empty text and non-finite numbers are rejected.
func NewScore(name, size string, mines, seconds float64) (Score, error) {
	name, size = strings.TrimSpace(name), strings.TrimSpace(size)
	switch {
	case name == "":
		return Score{}, &ValidationError{"name", "must not be empty"}
	case size == "":
		return Score{}, &ValidationError{"size", "must not be empty"}
	case !finite(mines):
		return Score{}, &ValidationError{"mines", "must be a finite number"}
	case !finite(seconds):
		return Score{}, &ValidationError{"time", "must be a finite number"}
	}
	return Score{
		Name:  name,
		Size:  size,
		Mines: int(math.Trunc(mines)),
		Time:  int(math.Trunc(seconds)),
	}, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0) &&
		f > math.MinInt32 && f < math.MaxInt32
}

// ClampLimit maps limit into [1, MaxLimit]; zero means DefaultLimit.
func ClampLimit(limit int) int {
	if limit == 0 {
		return DefaultLimit
	}
	return max(1, min(MaxLimit, limit))
}

type ScoreFilter struct {
	Size  string
	Limit int
}

// WhereClause renders the filter with @named parameters, which both pgx
// and go-sqlite3 accept.
func (f ScoreFilter) WhereClause() (string, map[string]any) {
	clauses := make([]string, 0)
	args := map[string]any{"limit": ClampLimit(f.Limit)}
	if f.Size != "" {
		clauses = append(clauses, "size = @size")
		args["size"] = f.Size
	}
	return strings.Join(clauses, " AND "), args
}

// Scores persists finished games.
type Scores interface {
	Insert(ctx context.Context, s Score) (int64, error)
	// Top returns the fastest scores, most recent first among equal times.
	Top(ctx context.Context, f ScoreFilter) ([]Score, error)
	// Recent returns the newest scores first.
	Recent(ctx context.Context, limit int) ([]Score, error)
	Ping(ctx context.Context) error
	Close() error
}

func compareTop(a, b Score) int {
	return cmp.Or(
		cmp.Compare(a.Time, b.Time),
		b.CreatedAt.Compare(a.CreatedAt),
		cmp.Compare(b.ID, a.ID),
	)
}

func compareRecent(a, b Score) int {
	return cmp.Or(
		b.CreatedAt.Compare(a.CreatedAt),
		cmp.Compare(b.ID, a.ID),
	)
}

const (
	selectScores = `SELECT id, name, mines, size, "time", created_at FROM scores`
	orderTop     = ` ORDER BY "time" ASC, created_at DESC, id DESC LIMIT @limit`
	orderRecent  = ` ORDER BY created_at DESC, id DESC LIMIT @limit`
)

func topQuery(f ScoreFilter) (string, map[string]any) {
	query := selectScores
	where, args := f.WhereClause()
	if where != "" {
		query += " WHERE " + where
	}
	return query + orderTop, args
}

func clampRecent(limit int) int {
	if limit == 0 {
		return DefaultRecentLimit
	}
	return ClampLimit(limit)
}
