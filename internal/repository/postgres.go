package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Postgres struct {
	db *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{db: pool}
}

func (p *Postgres) Insert(ctx context.Context, s Score) (int64, error) {
	var id int64
	err := p.db.QueryRow(ctx, `
		INSERT INTO scores (name, mines, size, "time")
		VALUES (@name, @mines, @size, @time)
		RETURNING id`,
		pgx.NamedArgs{
			"name":  s.Name,
			"mines": s.Mines,
			"size":  s.Size,
			"time":  s.Time,
		},
	).Scan(&id)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) {
		return 0, fmt.Errorf("%w: %s", ErrInvalidScore, pgErr.Message)
	}
	return id, err
}

func (p *Postgres) Top(ctx context.Context, f ScoreFilter) ([]Score, error) {
	query, args := topQuery(f)
	rows, err := p.db.Query(ctx, query, pgx.NamedArgs(args))
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[Score])
}

func (p *Postgres) Recent(ctx context.Context, limit int) ([]Score, error) {
	rows, err := p.db.Query(
		ctx, selectScores+orderRecent, pgx.NamedArgs{"limit": clampRecent(limit)},
	)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[Score])
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.Ping(ctx)
}

func (p *Postgres) Close() error {
	p.db.Close()
	return nil
}
