package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"health-companion-api/internal/store"
)

type Store struct {
	pool *pgxpool.Pool
}

var _ store.Store = (*Store)(nil)

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Open connects and pings.
func Open(ctx context.Context, url string) (*Store, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return New(pool), nil
}

func (s *Store) Migrate(ctx context.Context, ddl string) error {
	_, err := s.pool.Exec(ctx, ddl)
	return err
}

func (s *Store) Close() { s.pool.Close() }

// patch accumulates "col = $n" assignments for partial updates.
type patch struct {
	sets []string
	args []any
}

func (p *patch) set(col string, v any) {
	p.args = append(p.args, v)
	p.sets = append(p.sets, fmt.Sprintf("%s = $%d", col, len(p.args)))
}

// exec runs UPDATE table SET ... WHERE id AND user_id and maps "no row" to
// store.ErrNotFound.
func (s *Store) exec(ctx context.Context, table, userID, id string, p *patch) error {
	if len(p.sets) == 0 {
		return s.exists(ctx, table, userID, id)
	}
	args := append(p.args, id, userID)
	q := fmt.Sprintf(`UPDATE %s SET %s WHERE id = $%d AND user_id = $%d`,
		table, strings.Join(p.sets, ", "), len(args)-1, len(args))
	tag, err := s.pool.Exec(ctx, q, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) exists(ctx context.Context, table, userID, id string) error {
	var one int
	err := s.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT 1 FROM %s WHERE id = $1 AND user_id = $2`, table), id, userID,
	).Scan(&one)
	return notFound(err)
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
