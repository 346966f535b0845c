package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	fsrs "github.com/open-spaced-repetition/go-fsrs"

	"github.com/atulram/Flashcard-App/internal/models"
	"github.com/atulram/Flashcard-App/internal/session"
)

// ErrCardOutOfRange is returned when a review targets a card index the
// session does not have.
var ErrCardOutOfRange = errors.New("card index out of range")

// StudyService owns study session lifecycle and card review scheduling.
type StudyService struct {
	store  session.Store
	params fsrs.Parameters
}

func NewStudyService(store session.Store) *StudyService {
	return &StudyService{store: store, params: fsrs.DefaultParam()}
}

// CreateSession stores the generated cards under a fresh opaque session id,
// with every card scheduled as new and due immediately.
func (s *StudyService) CreateSession(ctx context.Context, filename string, cards []models.Flashcard) (*models.StudySession, error) {
	now := time.Now().UTC()
	for i := range cards {
		due := now
		cards[i].Due = &due
		cards[i].State = int(fsrs.New)
	}

	sess := &models.StudySession{
		ID:         uuid.NewString(),
		Filename:   filename,
		Cards:      cards,
		TotalCards: len(cards),
		CreatedAt:  now,
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return sess, nil
}

func (s *StudyService) GetSession(ctx context.Context, id string) (*models.StudySession, error) {
	return s.store.Get(ctx, id)
}

func (s *StudyService) DeleteSession(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// ReviewCard updates the scheduling information for one card based on the
// user's rating and persists the session.
func (s *StudyService) ReviewCard(ctx context.Context, sessionID string, cardIndex int, rating fsrs.Rating) (*models.Flashcard, error) {
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if cardIndex < 0 || cardIndex >= len(sess.Cards) {
		return nil, ErrCardOutOfRange
	}

	card := &sess.Cards[cardIndex]
	now := time.Now().UTC()
	scheduling := s.params.Repeat(card.ToFSRSCard(), now)
	info, ok := scheduling[rating]
	if !ok {
		return nil, fmt.Errorf("rating %d not supported", rating)
	}
	card.ApplyFSRSCard(info.Card)

	if err := s.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save reviewed session: %w", err)
	}
	return card, nil
}
