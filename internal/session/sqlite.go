package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/atulram/Flashcard-App/internal/models"
)

// SQLiteStore persists sessions in SQLite so they survive restarts. Cards
// are stored as a JSON blob; sessions are small and never queried by card.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Save(ctx context.Context, session *models.StudySession) error {
	cards, err := json.Marshal(session.Cards)
	if err != nil {
		return fmt.Errorf("marshal cards: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, filename, cards, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET filename = excluded.filename, cards = excluded.cards;
	`, session.ID, session.Filename, string(cards), session.CreatedAt)
	if err != nil {
		return fmt.Errorf("save session %s: %w", session.ID, err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*models.StudySession, error) {
	session := &models.StudySession{}
	var cards string
	row := s.db.QueryRowContext(ctx, `
		SELECT id, filename, cards, created_at FROM sessions WHERE id = ?;
	`, id)
	if err := row.Scan(&session.ID, &session.Filename, &cards, &session.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(cards), &session.Cards); err != nil {
		return nil, fmt.Errorf("unmarshal cards for session %s: %w", id, err)
	}
	session.TotalCards = len(session.Cards)
	return session, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?;`, id)
	if err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrSessionNotFound
	}
	return nil
}
