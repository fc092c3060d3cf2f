package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/felixgeelhaar/reflex-go/domain/episode"
)

// EpisodeStore is a SQLite-backed implementation of episode.Store.
type EpisodeStore struct {
	db *sql.DB
}

// NewEpisodeStore creates a new SQLite episode store with the given
// configuration.
func NewEpisodeStore(cfg Config, opts ...Option) (*EpisodeStore, error) {
	for _, opt := range opts {
		opt(&cfg)
	}

	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}

	s := &EpisodeStore{db: db}

	if cfg.AutoMigrate {
		if err := s.migrate(); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return s, nil
}

// NewEpisodeStoreFromDB creates an episode store from an existing
// database connection.
func NewEpisodeStoreFromDB(db *sql.DB) (*EpisodeStore, error) {
	s := &EpisodeStore{db: db}

	if err := s.migrate(); err != nil {
		return nil, err
	}

	return s, nil
}

// Close closes the underlying database.
func (s *EpisodeStore) Close() error {
	return s.db.Close()
}

// migrate creates the episodes table if it doesn't exist.
// The full aggregate (steps included) is stored as a JSON blob; the
// filterable columns are duplicated for indexed queries.
func (s *EpisodeStore) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS episodes (
			id TEXT PRIMARY KEY,
			world TEXT NOT NULL,
			status TEXT NOT NULL,
			steps INTEGER NOT NULL,
			error TEXT,
			data BLOB NOT NULL,
			start_time INTEGER NOT NULL,
			end_time INTEGER,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_episodes_status ON episodes(status);
		CREATE INDEX IF NOT EXISTS idx_episodes_world ON episodes(world);
		CREATE INDEX IF NOT EXISTS idx_episodes_start_time ON episodes(start_time);
	`

	_, err := s.db.Exec(schema)
	if err != nil {
		return errors.Join(ErrMigrationFailed, err)
	}

	return nil
}

// Save persists a new episode.
func (s *EpisodeStore) Save(ctx context.Context, ep *episode.Episode) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if ep == nil || ep.ID == "" {
		return episode.ErrInvalidEpisode
	}

	data, err := json.Marshal(ep)
	if err != nil {
		return err
	}

	now := time.Now().Unix()

	var endTime sql.NullInt64
	if !ep.EndTime.IsZero() {
		endTime = sql.NullInt64{Int64: ep.EndTime.Unix(), Valid: true}
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO episodes (id, world, status, steps, error, data, start_time, end_time, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ep.ID, ep.World, string(ep.Status), len(ep.Steps), ep.Error,
		data, ep.StartTime.Unix(), endTime, now, now,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return episode.ErrEpisodeExists
		}
		return err
	}

	return nil
}

// Get retrieves an episode by ID.
func (s *EpisodeStore) Get(ctx context.Context, id string) (*episode.Episode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if id == "" {
		return nil, episode.ErrInvalidEpisode
	}

	var data []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT data FROM episodes WHERE id = ?",
		id,
	).Scan(&data)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, episode.ErrEpisodeNotFound
	}
	if err != nil {
		return nil, err
	}

	var ep episode.Episode
	if err := json.Unmarshal(data, &ep); err != nil {
		return nil, err
	}

	return &ep, nil
}

// Update updates an existing episode.
func (s *EpisodeStore) Update(ctx context.Context, ep *episode.Episode) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if ep == nil || ep.ID == "" {
		return episode.ErrInvalidEpisode
	}

	data, err := json.Marshal(ep)
	if err != nil {
		return err
	}

	now := time.Now().Unix()

	var endTime sql.NullInt64
	if !ep.EndTime.IsZero() {
		endTime = sql.NullInt64{Int64: ep.EndTime.Unix(), Valid: true}
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE episodes SET
			world = ?, status = ?, steps = ?, error = ?, data = ?, end_time = ?, updated_at = ?
		 WHERE id = ?`,
		ep.World, string(ep.Status), len(ep.Steps), ep.Error, data, endTime, now, ep.ID,
	)

	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return episode.ErrEpisodeNotFound
	}

	return nil
}

// Delete removes an episode by ID.
func (s *EpisodeStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if id == "" {
		return episode.ErrInvalidEpisode
	}

	result, err := s.db.ExecContext(ctx, "DELETE FROM episodes WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return episode.ErrEpisodeNotFound
	}

	return nil
}

// List returns episodes matching the filter.
func (s *EpisodeStore) List(ctx context.Context, filter episode.ListFilter) ([]*episode.Episode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	query, args := buildListQuery(filter, false)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var episodes []*episode.Episode
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}

		var ep episode.Episode
		if err := json.Unmarshal(data, &ep); err != nil {
			continue // Skip malformed entries
		}

		episodes = append(episodes, &ep)
	}

	return episodes, rows.Err()
}

// Count returns the number of episodes matching the filter.
func (s *EpisodeStore) Count(ctx context.Context, filter episode.ListFilter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	query, args := buildListQuery(filter, true)

	var count int64
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

// buildListQuery builds the SQL query for listing episodes.
func buildListQuery(filter episode.ListFilter, countOnly bool) (string, []any) {
	var query string
	if countOnly {
		query = "SELECT COUNT(*) FROM episodes"
	} else {
		query = "SELECT data FROM episodes"
	}

	where, args := buildWhereClause(filter)

	if where != "" {
		query += " WHERE " + where
	}

	if !countOnly {
		query += " ORDER BY " + orderColumn(filter.OrderBy)
		if filter.Descending {
			query += " DESC"
		}

		if filter.Limit > 0 {
			query += " LIMIT ?"
			args = append(args, filter.Limit)
		} else if filter.Offset > 0 {
			// SQLite requires a LIMIT clause before OFFSET; -1 means
			// unlimited.
			query += " LIMIT -1"
		}

		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	return query, args
}

// buildWhereClause builds the WHERE clause for episode filters.
func buildWhereClause(filter episode.ListFilter) (string, []any) {
	var conditions []string
	var args []any

	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, status := range filter.Status {
			placeholders[i] = "?"
			args = append(args, string(status))
		}
		conditions = append(conditions, "status IN ("+strings.Join(placeholders, ", ")+")")
	}

	if filter.World != "" {
		conditions = append(conditions, "world = ?")
		args = append(args, filter.World)
	}

	if !filter.FromTime.IsZero() {
		conditions = append(conditions, "start_time >= ?")
		args = append(args, filter.FromTime.Unix())
	}

	if !filter.ToTime.IsZero() {
		conditions = append(conditions, "start_time <= ?")
		args = append(args, filter.ToTime.Unix())
	}

	return strings.Join(conditions, " AND "), args
}

// orderColumn maps an OrderBy value to its column.
func orderColumn(orderBy episode.OrderBy) string {
	switch orderBy {
	case episode.OrderByEndTime:
		return "end_time"
	case episode.OrderByID:
		return "id"
	case episode.OrderByStatus:
		return "status"
	default:
		return "start_time"
	}
}

// isUniqueViolation reports whether the error is a primary-key conflict.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
