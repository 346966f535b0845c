package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/atulram/Flashcard-App/internal/models"
)

var (
	// ErrAIUnavailable is returned when no model provider is configured.
	ErrAIUnavailable = errors.New("no ai provider is configured")
	// ErrModelUnavailable is returned when the external model call fails.
	ErrModelUnavailable = errors.New("model request failed")
	// ErrInsufficientText is returned when the extracted text is too short
	// to generate useful flashcards from.
	ErrInsufficientText = errors.New("insufficient text extracted from document")
)

// minTextLength is the minimum usable length of cleaned document text. This
// is a usability rule, not an extraction error, so it lives here rather than
// in the extractor.
const minTextLength = 100

// ModelClient is the boundary to the external generative model. The reply
// is treated as untrusted free-form text.
type ModelClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// AIService turns extracted document text into a validated flashcard set.
type AIService struct {
	client ModelClient
}

func NewAIService(client ModelClient) *AIService {
	return &AIService{client: client}
}

// GenerateFlashcards estimates a card target from the text length, builds
// the generation prompt, calls the model, and normalizes its reply. Stage
// failures surface as typed errors; no partial set is ever returned outside
// the normalizer's own fallback chain.
func (s *AIService) GenerateFlashcards(ctx context.Context, text string) ([]models.Flashcard, error) {
	if s.client == nil {
		return nil, ErrAIUnavailable
	}
	if len(strings.TrimSpace(text)) < minTextLength {
		return nil, ErrInsufficientText
	}

	count := estimateCardCount(text)
	prompt := buildFlashcardPrompt(text, count)

	log.Printf("generating %d flashcards from %d characters of text", count, len(text))

	reply, err := s.client.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}

	cards, err := normalizeFlashcards(reply)
	if err != nil {
		return nil, err
	}

	log.Printf("normalized %d flashcards from model reply", len(cards))
	return cards, nil
}
