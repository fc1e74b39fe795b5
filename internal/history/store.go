// Package history keeps the link positions of every resolved pose in an
// in-memory DuckDB database so clients can replay trajectories.
package history

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"log/slog"
	"time"

	"github.com/marcboeker/go-duckdb"
	"github.com/urdf-visualizer/backend/internal/models"
)

// Options tunes the DuckDB instance.
type Options struct {
	Threads     int    // 0 keeps the DuckDB default
	MemoryLimit string // e.g. "256MB"; empty keeps the default
}

// Store records pose samples for any number of sessions.
type Store struct {
	db     *sql.DB
	logger *slog.Logger

	// Limits concurrent trajectory queries.
	querySem chan struct{}
}

// NewStore opens an in-memory database and creates the poses table.
func NewStore(opts Options, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	connector, err := duckdb.NewConnector("", func(execer driver.ExecerContext) error {
		pragmas := []string{"PRAGMA enable_progress_bar=false"}
		if opts.Threads > 0 {
			pragmas = append(pragmas, fmt.Sprintf("PRAGMA threads=%d", opts.Threads))
		}
		if opts.MemoryLimit != "" {
			pragmas = append(pragmas, fmt.Sprintf("PRAGMA memory_limit='%s'", opts.MemoryLimit))
		}
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				return fmt.Errorf("%s: %w", pragma, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create DuckDB connector: %w", err)
	}

	db := sql.OpenDB(connector)
	_, err = db.Exec(`
		CREATE TABLE poses (
			session_id  VARCHAR NOT NULL,
			sequence    BIGINT  NOT NULL,
			recorded_at BIGINT  NOT NULL,
			link        VARCHAR NOT NULL,
			x           DOUBLE,
			y           DOUBLE,
			z           DOUBLE
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	logger.Debug("pose history ready", "threads", opts.Threads, "memoryLimit", opts.MemoryLimit)
	return &Store{db: db, logger: logger, querySem: make(chan struct{}, 3)}, nil
}

// Record appends one row per resolved link of snap.
func (s *Store) Record(ctx context.Context, snap *models.PoseSnapshot, at time.Time) error {
	if len(snap.Transforms) == 0 {
		return nil
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to get connection: %w", err)
	}
	defer conn.Close()

	err = conn.Raw(func(driverConn interface{}) error {
		dConn, ok := driverConn.(*duckdb.Conn)
		if !ok {
			return fmt.Errorf("failed to cast to duckdb.Conn")
		}

		appender, err := duckdb.NewAppenderFromConn(dConn, "", "poses")
		if err != nil {
			return fmt.Errorf("failed to create appender: %w", err)
		}
		defer appender.Close()

		ms := at.UnixMilli()
		for _, lt := range snap.Transforms {
			err := appender.AppendRow(
				snap.SessionID,
				snap.Sequence,
				ms,
				lt.Link,
				lt.Position[0],
				lt.Position[1],
				lt.Position[2],
			)
			if err != nil {
				return fmt.Errorf("failed to append %s: %w", lt.Link, err)
			}
		}
		return appender.Flush()
	})
	if err != nil {
		return fmt.Errorf("appender error: %w", err)
	}
	return nil
}

// Trajectory returns the most recent samples of a session in ascending
// sequence order. An empty link returns samples of every link. limit <= 0
// means no limit.
func (s *Store) Trajectory(ctx context.Context, sessionID, link string, limit int) ([]models.PoseSample, error) {
	select {
	case s.querySem <- struct{}{}:
		defer func() { <-s.querySem }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	where := "session_id = ?"
	args := []any{sessionID}
	if link != "" {
		where += " AND link = ?"
		args = append(args, link)
	}

	query := `
		SELECT sequence, recorded_at, link, x, y, z FROM (
			SELECT * FROM poses
			WHERE ` + where + `
			ORDER BY sequence DESC, link DESC`
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	query += ") ORDER BY sequence ASC, link ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("trajectory query failed: %w", err)
	}
	defer rows.Close()

	samples := make([]models.PoseSample, 0)
	for rows.Next() {
		var ps models.PoseSample
		if err := rows.Scan(&ps.Sequence, &ps.RecordedAt, &ps.Link, &ps.Position[0], &ps.Position[1], &ps.Position[2]); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		samples = append(samples, ps)
	}
	return samples, rows.Err()
}

// Count returns the number of samples stored for a session.
func (s *Store) Count(ctx context.Context, sessionID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM poses WHERE session_id = ?", sessionID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count query failed: %w", err)
	}
	return n, nil
}

// Forget drops every sample of a session.
func (s *Store) Forget(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM poses WHERE session_id = ?", sessionID); err != nil {
		return fmt.Errorf("delete session %s: %w", sessionID, err)
	}
	return nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}
