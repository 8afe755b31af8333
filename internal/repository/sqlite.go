package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/mattn/go-sqlite3"
)

type SQLite struct {
	mu sync.Mutex
	db *sql.DB
}

// NewSQLite wraps a database migrated with the sqlite migrations.
func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

func namedArgs(args map[string]any) []any {
	named := make([]any, 0, len(args))
	for k, v := range args {
		named = append(named, sql.Named(k, v))
	}
	return named
}

func (s *SQLite) Insert(ctx context.Context, score Score) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO scores (name, mines, size, time)
		VALUES (@name, @mines, @size, @time)`,
		sql.Named("name", score.Name),
		sql.Named("mines", score.Mines),
		sql.Named("size", score.Size),
		sql.Named("time", score.Time),
	)
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return 0, fmt.Errorf("%w: %s", ErrInvalidScore, sqliteErr.Error())
	}
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *SQLite) Top(ctx context.Context, f ScoreFilter) ([]Score, error) {
	query, args := topQuery(f)
	return s.query(ctx, query, args)
}

func (s *SQLite) Recent(ctx context.Context, limit int) ([]Score, error) {
	return s.query(ctx, selectScores+orderRecent, map[string]any{"limit": clampRecent(limit)})
}

func (s *SQLite) query(ctx context.Context, query string, args map[string]any) ([]Score, error) {
	rows, err := s.db.QueryContext(ctx, query, namedArgs(args)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scores := make([]Score, 0)
	for rows.Next() {
		var score Score
		if err := rows.Scan(
			&score.ID, &score.Name, &score.Mines, &score.Size, &score.Time, &score.CreatedAt,
		); err != nil {
			return nil, err
		}
		scores = append(scores, score)
	}
	return scores, rows.Err()
}

func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
