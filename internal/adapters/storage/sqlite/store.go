package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/PabloGalante/linkpitch/internal/domain"
)

// Store is a single-file persistent backend for local mode. Timelines are
// kept as JSON columns, timestamps as unix nanoseconds.
type Store struct{ db *sql.DB }

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// one writer at a time
	db.SetMaxOpenConns(1)
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Migrate(ctx context.Context) error {
	stmt := `
CREATE TABLE IF NOT EXISTS users (
	owner_id TEXT PRIMARY KEY,
	name TEXT NOT NULL DEFAULT '',
	headline TEXT NOT NULL DEFAULT '',
	company TEXT NOT NULL DEFAULT '',
	about TEXT NOT NULL DEFAULT '',
	avatar_url TEXT NOT NULL DEFAULT '',
	experience TEXT NOT NULL DEFAULT '{}',
	education TEXT NOT NULL DEFAULT '{}',
	linkedin_url TEXT NOT NULL DEFAULT '',
	scraped_at INTEGER,
	updated_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS contacts (
	owner_id TEXT NOT NULL,
	contact_id TEXT NOT NULL,
	name TEXT NOT NULL DEFAULT '',
	headline TEXT NOT NULL DEFAULT '',
	company TEXT NOT NULL DEFAULT '',
	about TEXT NOT NULL DEFAULT '',
	avatar_url TEXT NOT NULL DEFAULT '',
	experience TEXT NOT NULL DEFAULT '{}',
	education TEXT NOT NULL DEFAULT '{}',
	linkedin_url TEXT NOT NULL DEFAULT '',
	scraped_at INTEGER,
	updated_at INTEGER NOT NULL,
	PRIMARY KEY (owner_id, contact_id)
);
CREATE TABLE IF NOT EXISTS messages (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL UNIQUE,
	owner_id TEXT NOT NULL,
	contact_id TEXT NOT NULL,
	role TEXT NOT NULL,
	content TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS messages_thread ON messages (owner_id, contact_id, created_at);
`
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("sqlite migrate: %w", err)
	}
	return nil
}

// profileRow holds the columns users and contacts share.
type profileRow struct {
	name, headline, company, about, avatarURL, linkedInURL string
	experience, education                                  domain.Timeline
	scrapedAt                                              *time.Time
}

func (r profileRow) args() ([]any, error) {
	exp, err := json.Marshal(r.experience.Normalize())
	if err != nil {
		return nil, err
	}
	edu, err := json.Marshal(r.education.Normalize())
	if err != nil {
		return nil, err
	}
	var scraped sql.NullInt64
	if r.scrapedAt != nil {
		scraped = sql.NullInt64{Int64: r.scrapedAt.UnixNano(), Valid: true}
	}
	return []any{r.name, r.headline, r.company, r.about, r.avatarURL, string(exp), string(edu), r.linkedInURL, scraped, time.Now().UnixNano()}, nil
}

const profileCols = `name, headline, company, about, avatar_url, experience, education, linkedin_url, scraped_at`

func scanProfile(row *sql.Row) (profileRow, error) {
	var (
		r        profileRow
		exp, edu string
		scraped  sql.NullInt64
	)
	if err := row.Scan(&r.name, &r.headline, &r.company, &r.about, &r.avatarURL, &exp, &edu, &r.linkedInURL, &scraped); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return r, domain.ErrNotFound
		}
		return r, err
	}
	if err := decodeTimeline(exp, &r.experience); err != nil {
		return r, err
	}
	if err := decodeTimeline(edu, &r.education); err != nil {
		return r, err
	}
	if scraped.Valid {
		t := time.Unix(0, scraped.Int64).UTC()
		r.scrapedAt = &t
	}
	return r, nil
}

func decodeTimeline(raw string, dst *domain.Timeline) error {
	var t domain.Timeline
	if err := json.Unmarshal([]byte(raw), &t); err != nil {
		return fmt.Errorf("decode timeline: %w", err)
	}
	*dst = t.Normalize()
	return nil
}

// ─────────────────────────────────────────
// UserStore
// ─────────────────────────────────────────

func (s *Store) SaveUserProfile(ctx context.Context, owner domain.OwnerID, p *domain.UserProfile) error {
	args, err := profileRow{
		name: p.Name, headline: p.Headline, company: p.Company, about: p.About,
		avatarURL: p.AvatarURL, linkedInURL: p.LinkedInURL,
		experience: p.Experience, education: p.Education, scrapedAt: p.ScrapedAt,
	}.args()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO users (owner_id, `+profileCols+`, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(owner_id) DO UPDATE SET
		name=excluded.name,
		headline=excluded.headline,
		company=excluded.company,
		about=excluded.about,
		avatar_url=excluded.avatar_url,
		experience=excluded.experience,
		education=excluded.education,
		linkedin_url=excluded.linkedin_url,
		scraped_at=excluded.scraped_at,
		updated_at=excluded.updated_at
	`, append([]any{string(owner)}, args...)...)
	if err != nil {
		return fmt.Errorf("sqlite SaveUserProfile: %w", err)
	}
	return nil
}

func (s *Store) FindUserProfile(ctx context.Context, owner domain.OwnerID) (*domain.UserProfile, error) {
	r, err := scanProfile(s.db.QueryRowContext(ctx, `SELECT `+profileCols+` FROM users WHERE owner_id = ?`, string(owner)))
	if err != nil {
		return nil, err
	}
	return &domain.UserProfile{
		Name: r.name, Headline: r.headline, Company: r.company, About: r.about,
		AvatarURL: r.avatarURL, Experience: r.experience, Education: r.education,
		LinkedInURL: r.linkedInURL, ScrapedAt: r.scrapedAt,
	}, nil
}

// ─────────────────────────────────────────
// ContactStore
// ─────────────────────────────────────────

func (s *Store) SaveContact(ctx context.Context, owner domain.OwnerID, c *domain.ContactProfile) error {
	args, err := profileRow{
		name: c.Name, headline: c.Headline, company: c.Company, about: c.About,
		avatarURL: c.AvatarURL, linkedInURL: c.LinkedInURL,
		experience: c.Experience, education: c.Education, scrapedAt: c.ScrapedAt,
	}.args()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO contacts (owner_id, contact_id, `+profileCols+`, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(owner_id, contact_id) DO UPDATE SET
		name=excluded.name,
		headline=excluded.headline,
		company=excluded.company,
		about=excluded.about,
		avatar_url=excluded.avatar_url,
		experience=excluded.experience,
		education=excluded.education,
		linkedin_url=excluded.linkedin_url,
		scraped_at=excluded.scraped_at,
		updated_at=excluded.updated_at
	`, append([]any{string(owner), string(c.ID)}, args...)...)
	if err != nil {
		return fmt.Errorf("sqlite SaveContact: %w", err)
	}
	return nil
}

func (s *Store) FindContactProfile(ctx context.Context, contact domain.ContactID, owner domain.OwnerID) (*domain.ContactProfile, error) {
	r, err := scanProfile(s.db.QueryRowContext(ctx,
		`SELECT `+profileCols+` FROM contacts WHERE owner_id = ? AND contact_id = ?`, string(owner), string(contact)))
	if err != nil {
		return nil, err
	}
	return &domain.ContactProfile{
		ID:   contact,
		Name: r.name, Headline: r.headline, Company: r.company, About: r.about,
		AvatarURL: r.avatarURL, Experience: r.experience, Education: r.education,
		LinkedInURL: r.linkedInURL, ScrapedAt: r.scrapedAt,
	}, nil
}

// ─────────────────────────────────────────
// MessageStore
// ─────────────────────────────────────────

func (s *Store) AppendMessage(ctx context.Context, owner domain.OwnerID, contact domain.ContactID, msg *domain.ConversationMessage) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO messages (id, owner_id, contact_id, role, content, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		string(msg.ID), string(owner), string(contact), string(msg.Role), msg.Content, msg.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("sqlite AppendMessage: %w", err)
	}
	return nil
}

// FindHistory returns the newest limit messages of a thread, oldest first.
func (s *Store) FindHistory(ctx context.Context, contact domain.ContactID, owner domain.OwnerID, limit int) ([]domain.ConversationMessage, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, role, content, created_at FROM (
		SELECT seq, id, role, content, created_at FROM messages
		WHERE owner_id = ? AND contact_id = ?
		ORDER BY created_at DESC, seq DESC
		LIMIT ?
	) ORDER BY created_at ASC, seq ASC`, string(owner), string(contact), limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite FindHistory: %w", err)
	}
	defer rows.Close()

	var out []domain.ConversationMessage
	for rows.Next() {
		var (
			m       domain.ConversationMessage
			id      string
			role    string
			created int64
		)
		if err := rows.Scan(&id, &role, &m.Content, &created); err != nil {
			return nil, err
		}
		m.ID = domain.MessageID(id)
		m.Role = domain.Role(role)
		m.CreatedAt = time.Unix(0, created).UTC()
		out = append(out, m)
	}
	return out, rows.Err()
}
