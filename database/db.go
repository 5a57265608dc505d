package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

const (
	pingAttempts = 10
	pingBackoff  = 2 * time.Second

	// fixed width so TEXT timestamps sort chronologically in SQLite
	timeLayout = "2006-01-02T15:04:05.000000000Z"
)

// SQLStore keeps each itinerary body as one JSON document column.
type SQLStore struct {
	db       *sql.DB
	postgres bool
}

// ─── Init ─────────────────────────────────────────────────────────────────────

// OpenPostgres connects with pool settings sized for a small hosted
// PostgreSQL and waits for the server to come up.
func OpenPostgres(ctx context.Context, dsn string) (*SQLStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	s := &SQLStore{db: db, postgres: true}
	if err := s.waitReady(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	log.Info().Msg("✅ Database connected and migrated")
	return s, nil
}

// OpenSQLite opens or creates a SQLite file. ":memory:" is limited to one
// connection so every query sees the same database.
func OpenSQLite(ctx context.Context, path string) (*SQLStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	s := &SQLStore{db: db}
	if err := s.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	log.Info().Str("path", path).Msg("✅ SQLite database ready")
	return s, nil
}

func (s *SQLStore) waitReady(ctx context.Context) error {
	var err error
	for i := 0; i < pingAttempts; i++ {
		if err = s.db.PingContext(ctx); err == nil {
			return nil
		}
		log.Warn().Err(err).Msgf("⏳ Waiting for database... attempt %d/%d", i+1, pingAttempts)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pingBackoff):
		}
	}
	return fmt.Errorf("failed to connect to database after retries: %w", err)
}

// ─── Migrations ───────────────────────────────────────────────────────────────

func (s *SQLStore) migrate(ctx context.Context) error {
	docType, tsType := "TEXT", "TEXT"
	if s.postgres {
		docType, tsType = "JSONB", "TIMESTAMPTZ"
	}

	migrations := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS itineraries (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			document   %s NOT NULL,
			created_at %s NOT NULL,
			updated_at %s NOT NULL
		)`, docType, tsType, tsType),

		`CREATE INDEX IF NOT EXISTS idx_itineraries_user_created
			ON itineraries(user_id, created_at DESC)`,
	}

	for _, m := range migrations {
		if _, err := s.db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// ─── CRUD ─────────────────────────────────────────────────────────────────────

func (s *SQLStore) Create(ctx context.Context, userID string, doc Document) (string, error) {
	raw, err := json.Marshal(body(doc))
	if err != nil {
		return "", fmt.Errorf("failed to encode itinerary: %w", err)
	}

	id := uuid.New().String()
	now := stamp(time.Now())
	_, err = s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO itineraries (id, user_id, document, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`),
		id, userID, string(raw), now, now)
	if err != nil {
		return "", fmt.Errorf("failed to create itinerary: %w", err)
	}
	return id, nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (Document, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidID, id)
	}

	row := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT id, user_id, document, created_at, updated_at
		FROM itineraries WHERE id = ?`), id)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get itinerary: %w", err)
	}
	return doc, nil
}

func (s *SQLStore) ListByUser(ctx context.Context, userID string) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT id, user_id, document, created_at, updated_at
		FROM itineraries WHERE user_id = ?
		ORDER BY created_at DESC`), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query itineraries: %w", err)
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to read itinerary: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Update reads, merges and writes back inside one transaction; Postgres
// locks the row for the duration.
func (s *SQLStore) Update(ctx context.Context, id string, fields Document) (Document, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidID, id)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin update: %w", err)
	}
	defer tx.Rollback()

	query := `SELECT id, user_id, document, created_at, updated_at FROM itineraries WHERE id = ?`
	if s.postgres {
		query += " FOR UPDATE"
	}
	current, err := scanDocument(tx.QueryRowContext(ctx, s.rebind(query), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get itinerary: %w", err)
	}

	merged := body(current)
	for k, v := range body(fields) {
		merged[k] = v
	}
	raw, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("failed to encode itinerary: %w", err)
	}

	now := stamp(time.Now())
	if _, err := tx.ExecContext(ctx, s.rebind(`
		UPDATE itineraries SET document = ?, updated_at = ? WHERE id = ?`),
		string(raw), now, id); err != nil {
		return nil, fmt.Errorf("failed to update itinerary: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit update: %w", err)
	}

	merged[keyID] = current[keyID]
	merged[keyUserID] = current[keyUserID]
	merged[keyCreatedAt] = current[keyCreatedAt]
	merged[keyUpdatedAt], _ = parseStamp(now)
	return merged, nil
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidID, id)
	}

	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM itineraries WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete itinerary: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (Document, error) {
	var (
		id, userID       string
		raw              []byte
		created, updated timeValue
	)
	if err := row.Scan(&id, &userID, &raw, &created, &updated); err != nil {
		return nil, err
	}

	doc := Document{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("corrupt document %s: %w", id, err)
	}
	doc[keyID] = id
	doc[keyUserID] = userID
	doc[keyCreatedAt] = created.t
	doc[keyUpdatedAt] = updated.t
	return doc, nil
}

// timeValue accepts TIMESTAMPTZ values from Postgres and TEXT from SQLite.
type timeValue struct{ t time.Time }

func (v *timeValue) Scan(src any) error {
	switch t := src.(type) {
	case time.Time:
		v.t = t.UTC()
		return nil
	case string:
		return v.parse(t)
	case []byte:
		return v.parse(string(t))
	}
	return fmt.Errorf("unsupported timestamp type %T", src)
}

func (v *timeValue) parse(s string) error {
	t, err := parseStamp(s)
	if err != nil {
		return err
	}
	v.t = t
	return nil
}

func stamp(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseStamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

// rebind turns ? placeholders into $n for Postgres.
func (s *SQLStore) rebind(query string) string {
	if !s.postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
