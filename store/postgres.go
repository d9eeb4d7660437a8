package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	ai "github.com/spetersoncode/maildraft"
)

const schema = `
CREATE TABLE IF NOT EXISTS draft_history (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	draft      TEXT NOT NULL,
	metadata   JSONB NOT NULL DEFAULT '{}',
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS draft_history_user_created
	ON draft_history (user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS user_profiles (
	user_id     TEXT PRIMARY KEY,
	name        TEXT NOT NULL DEFAULT '',
	title       TEXT NOT NULL DEFAULT '',
	company     TEXT NOT NULL DEFAULT '',
	signature   TEXT NOT NULL DEFAULT '',
	style_notes TEXT NOT NULL DEFAULT '',
	preferences JSONB NOT NULL DEFAULT '{}',
	updated_at  TIMESTAMPTZ NOT NULL
);`

// Postgres implements the history and profile stores over PostgreSQL.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres wraps an existing pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// OpenPostgres connects to the database at connString.
func OpenPostgres(ctx context.Context, connString string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// Close releases the pool.
func (p *Postgres) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}

// Migrate creates the tables if they do not exist.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Append stores r for userID. A request id already stored is ignored.
func (p *Postgres) Append(ctx context.Context, userID string, r ai.DraftResult) error {
	if userID == "" {
		return ErrMissingUser
	}
	entry := ai.NewHistoryEntry(userID, r)
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	md, err := json.Marshal(entry.Metadata)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	_, err = p.pool.Exec(ctx, `
		INSERT INTO draft_history (id, user_id, draft, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING`,
		entry.ID, entry.UserID, entry.Draft, md, entry.Timestamp)
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

// List returns up to limit entries for userID, most recent first. A
// non-positive limit returns every entry.
func (p *Postgres) List(ctx context.Context, userID string, limit int) ([]ai.HistoryEntry, error) {
	query := `
		SELECT id, user_id, draft, metadata, created_at
		FROM draft_history
		WHERE user_id = $1
		ORDER BY created_at DESC, id`
	args := []any{userID}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var out []ai.HistoryEntry
	for rows.Next() {
		var (
			e  ai.HistoryEntry
			md []byte
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.Draft, &md, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		if err := json.Unmarshal(md, &e.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return out, nil
}

// Get returns the profile of userID, or an empty profile.
func (p *Postgres) Get(ctx context.Context, userID string) (ai.Profile, error) {
	prof, err := p.getProfile(ctx, p.pool, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ai.Profile{UserID: userID}, nil
	}
	return prof, err
}

// Update applies u to the stored profile in a single transaction.
func (p *Postgres) Update(ctx context.Context, userID string, u ai.ProfileUpdate) (ai.Profile, error) {
	if userID == "" {
		return ai.Profile{}, ErrMissingUser
	}
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return ai.Profile{}, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	current, err := p.getProfile(ctx, tx, userID, "FOR UPDATE")
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return ai.Profile{}, err
	}
	next := current.Apply(u)
	next.UserID = userID

	prefs, err := json.Marshal(next.Preferences)
	if err != nil {
		return ai.Profile{}, fmt.Errorf("encode preferences: %w", err)
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO user_profiles (user_id, name, title, company, signature, style_notes, preferences, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO UPDATE SET
			name = EXCLUDED.name,
			title = EXCLUDED.title,
			company = EXCLUDED.company,
			signature = EXCLUDED.signature,
			style_notes = EXCLUDED.style_notes,
			preferences = EXCLUDED.preferences,
			updated_at = EXCLUDED.updated_at`,
		next.UserID, next.Name, next.Title, next.Company, next.Signature, next.StyleNotes, prefs, next.UpdatedAt)
	if err != nil {
		return ai.Profile{}, fmt.Errorf("update profile: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return ai.Profile{}, fmt.Errorf("commit: %w", err)
	}
	return next, nil
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (p *Postgres) getProfile(ctx context.Context, q querier, userID string, suffix ...string) (ai.Profile, error) {
	query := `
		SELECT user_id, name, title, company, signature, style_notes, preferences, updated_at
		FROM user_profiles WHERE user_id = $1`
	for _, s := range suffix {
		query += " " + s
	}

	var (
		prof    ai.Profile
		prefs   []byte
		updated time.Time
	)
	err := q.QueryRow(ctx, query, userID).Scan(
		&prof.UserID, &prof.Name, &prof.Title, &prof.Company,
		&prof.Signature, &prof.StyleNotes, &prefs, &updated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ai.Profile{UserID: userID}, err
		}
		return ai.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	if len(prefs) > 0 {
		if err := json.Unmarshal(prefs, &prof.Preferences); err != nil {
			return ai.Profile{}, fmt.Errorf("decode preferences: %w", err)
		}
	}
	prof.UpdatedAt = updated
	return prof, nil
}
