package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/atulram/Flashcard-App/internal/models"
)

var (
	// ErrMalformedResponse is returned when the model replied with valid
	// JSON that is not an array of cards.
	ErrMalformedResponse = errors.New("model response is not a flashcard array")
	// ErrNoValidCards is returned when every candidate in a syntactically
	// valid reply failed validation.
	ErrNoValidCards = errors.New("no valid flashcards found in response")
)

// Minimum lengths (in runes, after trimming) for a card to be kept.
const (
	minQuestionLen = 10
	minAnswerLen   = 5
)

type cardCandidate struct {
	question string
	answer   string
}

// normalizeFlashcards turns the raw model reply into validated flashcards.
//
// The primary path strips markdown fencing, slices out the JSON array, and
// parses it strictly. Only a JSON syntax failure routes to the pattern-based
// fallback; a reply that parses to something other than an array is a
// malformed response, and an array whose candidates all fail validation
// yields ErrNoValidCards. The fallback itself never fails: it pools matches
// from every pattern and falls back to a single placeholder card when
// nothing survives.
func normalizeFlashcards(raw string) ([]models.Flashcard, error) {
	cleaned := extractJSONArray(raw)

	var top any
	if err := json.Unmarshal([]byte(cleaned), &top); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return extractFallbackCards(raw), nil
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	elements, ok := top.([]any)
	if !ok {
		return nil, ErrMalformedResponse
	}

	var candidates []cardCandidate
	for _, el := range elements {
		obj, ok := el.(map[string]any)
		if !ok {
			continue
		}
		question, hasQ := obj["question"]
		answer, hasA := obj["answer"]
		if !hasQ || !hasA {
			continue
		}
		candidates = append(candidates, cardCandidate{
			question: coerceString(question),
			answer:   coerceString(answer),
		})
	}

	cards := filterCandidates(candidates, minQuestionLen, minAnswerLen)
	if len(cards) == 0 {
		return nil, ErrNoValidCards
	}
	return capCards(cards), nil
}

// extractJSONArray removes markdown code fences and slices the text down to
// the outermost JSON array when one is present.
func extractJSONArray(text string) string {
	text = fenceOpen.ReplaceAllString(text, "")
	text = fenceClose.ReplaceAllString(text, "")

	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start != -1 && end != -1 && end > start {
		text = text[start : end+1]
	}
	return strings.TrimSpace(text)
}

var (
	fenceOpen  = regexp.MustCompile("```json\\s*")
	fenceClose = regexp.MustCompile("```\\s*")
)

// Fallback matchers, tried in order against the unmodified reply. Each one
// recognizes question/answer pairs in a different surface form: JSON-like
// quoted-key fragments, Q:/A: line pairs, and Question:/Answer: line pairs.
var fallbackPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)["']question["']\s*:\s*["']([^"']+)["'],?\s*["']answer["']\s*:\s*["']([^"']+)["']`),
	regexp.MustCompile(`(?is)q:\s*([^\n]+)\s*a:\s*([^\n]+)`),
	regexp.MustCompile(`(?is)question:\s*([^\n]+)\s*answer:\s*([^\n]+)`),
}

// extractFallbackCards recovers cards from an unparseable reply. Matches from
// all patterns are pooled without deduplication, filtered with exclusive
// length bounds (strictly greater than the minimums, unlike the primary
// path's inclusive bounds), and capped. When nothing matches, a single
// generic placeholder card is synthesized so this path never returns an
// empty set.
func extractFallbackCards(raw string) []models.Flashcard {
	var candidates []cardCandidate
	for _, pattern := range fallbackPatterns {
		for _, match := range pattern.FindAllStringSubmatch(raw, -1) {
			if len(match) != 3 {
				continue
			}
			candidates = append(candidates, cardCandidate{
				question: match[1],
				answer:   match[2],
			})
		}
	}

	cards := filterCandidates(candidates, minQuestionLen+1, minAnswerLen+1)
	if len(cards) == 0 {
		cards = []models.Flashcard{{
			Question: "What was the main topic of the uploaded document?",
			Answer:   "Please review the document content to understand the main concepts and topics covered.",
		}}
	}
	return capCards(cards)
}

// filterCandidates trims each candidate and keeps the ones whose trimmed
// question and answer meet the given minimum lengths, preserving order.
// Candidates are discarded, never coerced to fit.
func filterCandidates(candidates []cardCandidate, minQ, minA int) []models.Flashcard {
	var cards []models.Flashcard
	for _, c := range candidates {
		question := strings.TrimSpace(c.question)
		answer := strings.TrimSpace(c.answer)
		if question == "" || answer == "" {
			continue
		}
		if utf8.RuneCountInString(question) < minQ || utf8.RuneCountInString(answer) < minA {
			continue
		}
		cards = append(cards, models.Flashcard{Question: question, Answer: answer})
	}
	return cards
}

func capCards(cards []models.Flashcard) []models.Flashcard {
	if len(cards) > maxFlashcards {
		return cards[:maxFlashcards]
	}
	return cards
}

// coerceString renders a decoded JSON value as text so that numeric or
// boolean question/answer values still pass through validation.
func coerceString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}
