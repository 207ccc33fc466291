package dataset

import (
	"context"
	"errors"
	"fmt"

	"github.com/Nxllpointer/ziplocator/view"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps the dataset in a zip_locations table so several
// instances can share one imported copy.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Connect opens a pool and checks connectivity.
func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: failed to connect: %w", err)
	}
	return pool, nil
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS zip_locations (
			zip INTEGER PRIMARY KEY,
			lat DOUBLE PRECISION NOT NULL,
			lng DOUBLE PRECISION NOT NULL
		)
	`
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("postgres: failed to create schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM zip_locations`).Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: failed to count zip locations: %w", err)
	}
	return n, nil
}

// Import replaces the table contents with recs in one transaction.
func (s *PostgresStore) Import(ctx context.Context, recs []Record) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("postgres: failed to begin import: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `TRUNCATE zip_locations`); err != nil {
		return 0, fmt.Errorf("postgres: failed to truncate zip locations: %w", err)
	}

	seen := make(map[uint32]struct{}, len(recs))
	rows := make([][]any, 0, len(recs))
	for _, r := range recs {
		if _, dup := seen[r.Zip]; dup {
			continue
		}
		seen[r.Zip] = struct{}{}
		rows = append(rows, []any{int32(r.Zip), r.Location.Lat, r.Location.Lng})
	}

	n, err := tx.CopyFrom(ctx,
		pgx.Identifier{"zip_locations"},
		[]string{"zip", "lat", "lng"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return 0, fmt.Errorf("postgres: failed to copy zip locations: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("postgres: failed to commit import: %w", err)
	}
	return n, nil
}

// Records loads the whole table, for building an Index.
func (s *PostgresStore) Records(ctx context.Context) ([]Record, error) {
	rows, err := s.pool.Query(ctx, `SELECT zip, lat, lng FROM zip_locations ORDER BY zip`)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query zip locations: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			zip int32
			r   Record
		)
		if err := rows.Scan(&zip, &r.Location.Lat, &r.Location.Lng); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan zip location: %w", err)
		}
		r.Zip = uint32(zip)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to read zip locations: %w", err)
	}
	return out, nil
}

// Lookup returns the location of one zip. ok is false when it is unknown.
func (s *PostgresStore) Lookup(ctx context.Context, zip uint32) (ll view.LatLng, ok bool, err error) {
	err = s.pool.QueryRow(ctx, `SELECT lat, lng FROM zip_locations WHERE zip = $1`, int32(zip)).
		Scan(&ll.Lat, &ll.Lng)
	if errors.Is(err, pgx.ErrNoRows) {
		return view.LatLng{}, false, nil
	}
	if err != nil {
		return view.LatLng{}, false, fmt.Errorf("postgres: failed to look up zip %d: %w", zip, err)
	}
	return ll, true, nil
}

func (s *PostgresStore) Health(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: health check failed: %w", err)
	}
	return nil
}

// LoadIndex builds an Index from the table, seeding it from seed first
// when the table is empty.
func (s *PostgresStore) LoadIndex(ctx context.Context, seed func() ([]Record, error)) (*Index, error) {
	if err := s.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	n, err := s.Count(ctx)
	if err != nil {
		return nil, err
	}
	if n == 0 && seed != nil {
		recs, err := seed()
		if err != nil {
			return nil, err
		}
		if _, err := s.Import(ctx, recs); err != nil {
			return nil, err
		}
	}
	recs, err := s.Records(ctx)
	if err != nil {
		return nil, err
	}
	return NewIndex(recs)
}
