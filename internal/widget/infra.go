package widget

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

const transcriptSchema = `
CREATE TABLE IF NOT EXISTS widget_messages (
	id          UUID PRIMARY KEY,
	session_id  TEXT NOT NULL,
	sender      TEXT NOT NULL,
	text        TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS widget_messages_session_idx
	ON widget_messages (session_id, created_at);
`

// OpenDB connects to Postgres and makes sure the transcript table exists.
func OpenDB(ctx context.Context, dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database connection string is required")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		if strings.Contains(strings.ToLower(dsn), "sslmode") {
			return nil, fmt.Errorf("db ping error: %w", err)
		}
		log.Println("[db] retrying connection with SSL disabled")
		return OpenDB(ctx, withSSLDisabled(dsn))
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if _, err := db.ExecContext(ctx, transcriptSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("db schema error: %w", err)
	}
	return db, nil
}

func withSSLDisabled(dsn string) string {
	if u, err := url.Parse(dsn); err == nil && u.Scheme != "" {
		q := u.Query()
		q.Set("sslmode", "disable")
		u.RawQuery = q.Encode()
		return u.String()
	}
	return dsn + " sslmode=disable"
}

type pgTranscript struct {
	db *sql.DB
}

func NewTranscript(db *sql.DB) Transcript {
	return &pgTranscript{db: db}
}

func (r *pgTranscript) SaveMessage(ctx context.Context, sessionID string, msg Message) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO widget_messages (id, session_id, sender, text, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`,
		msg.ID,
		sessionID,
		string(msg.Sender),
		msg.Text,
		msg.CreatedAt,
	)
	return err
}

// NopTranscript discards messages; used when no database is configured.
type NopTranscript struct{}

func (NopTranscript) SaveMessage(context.Context, string, Message) error {
	return nil
}
