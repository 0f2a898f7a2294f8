package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/p-n-ai/unimatch/internal/api"
)

const dbTimeout = 5 * time.Second

// PostgresStore is a PostgreSQL-backed Store.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// cards is the JSONB shape of a bot message's attachments.
type cards struct {
	Recommendations []api.RecItem   `json:"recommendations,omitempty"`
	StudyPlan       []api.StudyItem `json:"study_plan,omitempty"`
}

// NewPostgresStore creates a PostgreSQL-backed transcript store. The schema
// must already be migrated.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) CreateSession() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	id := generateID()
	if _, err := s.pool.Exec(ctx,
		`INSERT INTO chat_sessions (id, started_at) VALUES ($1, $2)`,
		id, time.Now(),
	); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) AddMessage(sessionID string, msg Message) error {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	if msg.Role == "" {
		return fmt.Errorf("message role is required")
	}
	at := msg.At
	if at.IsZero() {
		at = time.Now()
	}

	data, err := json.Marshal(cards{Recommendations: msg.Recommendations, StudyPlan: msg.StudyPlan})
	if err != nil {
		return fmt.Errorf("marshal cards: %w", err)
	}

	cmd, err := s.pool.Exec(ctx,
		`INSERT INTO chat_messages (session_id, role, text, cards, failed, created_at)
		 SELECT $1, $2, $3, $4::jsonb, $5, $6
		 FROM chat_sessions WHERE id = $1`,
		sessionID,
		string(msg.Role),
		msg.Text,
		string(data),
		msg.Failed,
		at,
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("session not found: %s", sessionID)
	}
	return nil
}

func (s *PostgresStore) Transcript(sessionID string) ([]Message, error) {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	var exists bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM chat_sessions WHERE id = $1)`, sessionID,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("lookup session: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("session not found: %s", sessionID)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT role, text, cards, failed, created_at
		 FROM chat_messages
		 WHERE session_id = $1
		 ORDER BY id ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	msgs := []Message{}
	for rows.Next() {
		var (
			msg  Message
			role string
			raw  []byte
		)
		if err := rows.Scan(&role, &msg.Text, &raw, &msg.Failed, &msg.At); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msg.Role = Role(role)
		var c cards
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("decode cards: %w", err)
		}
		msg.Recommendations, msg.StudyPlan = c.Recommendations, c.StudyPlan
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return msgs, nil
}
