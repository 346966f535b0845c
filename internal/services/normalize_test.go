package services

import (
	"errors"
	"strings"
	"testing"
)

const (
	validQuestion = "What is the powerhouse of the cell?"
	validAnswer   = "The mitochondrion."
)

func TestNormalizeFlashcards_ValidArray(t *testing.T) {
	reply := `[
		{"question": "What is the powerhouse of the cell?", "answer": "The mitochondrion."},
		{"question": "Which organelle builds proteins?", "answer": "The ribosome."}
	]`

	cards, err := normalizeFlashcards(reply)
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if len(cards) != 2 {
		t.Fatalf("expected 2 cards, got %d", len(cards))
	}
	if cards[0].Question != validQuestion || cards[0].Answer != validAnswer {
		t.Errorf("first card out of order: %+v", cards[0])
	}
	if cards[1].Question != "Which organelle builds proteins?" {
		t.Errorf("second card out of order: %+v", cards[1])
	}
}

func TestNormalizeFlashcards_MarkdownFencing(t *testing.T) {
	unfenced := `[{"question": "` + validQuestion + `", "answer": "` + validAnswer + `"}]`
	fenced := "```json\n" + unfenced + "\n```"

	plain, err := normalizeFlashcards(unfenced)
	if err != nil {
		t.Fatalf("unfenced normalize failed: %v", err)
	}
	wrapped, err := normalizeFlashcards(fenced)
	if err != nil {
		t.Fatalf("fenced normalize failed: %v", err)
	}

	if len(plain) != len(wrapped) {
		t.Fatalf("fenced and unfenced differ in length: %d vs %d", len(plain), len(wrapped))
	}
	for i := range plain {
		if plain[i] != wrapped[i] {
			t.Errorf("card %d differs: %+v vs %+v", i, plain[i], wrapped[i])
		}
	}
}

func TestNormalizeFlashcards_SurroundingProse(t *testing.T) {
	reply := "Sure! Here are your flashcards:\n" +
		`[{"question": "` + validQuestion + `", "answer": "` + validAnswer + `"}]` +
		"\nLet me know if you need more."

	cards, err := normalizeFlashcards(reply)
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if len(cards) != 1 {
		t.Fatalf("expected 1 card, got %d", len(cards))
	}
}

func TestNormalizeFlashcards_Validation(t *testing.T) {
	t.Run("InvalidCandidatesDropped", func(t *testing.T) {
		reply := `[
			{"question": "` + validQuestion + `", "answer": "` + validAnswer + `"},
			{"question": "Too short?", "answer": "ok"},
			{"question": "Missing answer key entirely so it gets skipped"},
			"not an object",
			{"question": "   ", "answer": "Blank question should be dropped."}
		]`

		cards, err := normalizeFlashcards(reply)
		if err != nil {
			t.Fatalf("normalize failed: %v", err)
		}
		if len(cards) != 1 {
			t.Fatalf("expected only the valid card, got %d", len(cards))
		}
		if cards[0].Question != validQuestion {
			t.Errorf("wrong survivor: %+v", cards[0])
		}
	})

	t.Run("InclusiveBounds", func(t *testing.T) {
		// Exactly 10-rune question and 5-rune answer pass the primary path.
		reply := `[{"question": "Ten runes!", "answer": "Five!"}]`
		cards, err := normalizeFlashcards(reply)
		if err != nil {
			t.Fatalf("normalize failed: %v", err)
		}
		if len(cards) != 1 {
			t.Fatalf("expected boundary-length card to survive, got %d cards", len(cards))
		}
	})

	t.Run("AllInvalidFailsWithoutFallback", func(t *testing.T) {
		// Valid JSON whose candidates all fail must not reach the
		// pattern extractors.
		reply := `[{"question": "short", "answer": "x"}]`
		_, err := normalizeFlashcards(reply)
		if !errors.Is(err, ErrNoValidCards) {
			t.Fatalf("expected ErrNoValidCards, got %v", err)
		}
	})

	t.Run("NumericValuesCoerced", func(t *testing.T) {
		reply := `[{"question": "How many planets orbit the sun?", "answer": 12345}]`
		cards, err := normalizeFlashcards(reply)
		if err != nil {
			t.Fatalf("normalize failed: %v", err)
		}
		if cards[0].Answer != "12345" {
			t.Errorf("expected coerced answer, got %q", cards[0].Answer)
		}
	})
}

func TestNormalizeFlashcards_TopLevelObject(t *testing.T) {
	// Note: the bracket-slicing step means an object that wraps an array
	// gets sliced down to that array, so only a bracket-free object
	// exercises the not-an-array failure.
	reply := `{"question": "` + validQuestion + `", "answer": "` + validAnswer + `"}`

	_, err := normalizeFlashcards(reply)
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse for top-level object, got %v", err)
	}
}

func TestNormalizeFlashcards_FallbackQAPairs(t *testing.T) {
	reply := "here is some broken json [{...\n" +
		"Q: What is the capital of France exactly?\n" +
		"A: The capital of France is Paris.\n" +
		"Q: What is the tallest mountain on Earth?\n" +
		"A: Mount Everest is the tallest.\n"

	cards, err := normalizeFlashcards(reply)
	if err != nil {
		t.Fatalf("fallback normalize failed: %v", err)
	}
	if len(cards) != 2 {
		t.Fatalf("expected 2 fallback cards, got %d: %+v", len(cards), cards)
	}
	if cards[0].Question != "What is the capital of France exactly?" {
		t.Errorf("unexpected first question: %q", cards[0].Question)
	}
	if cards[1].Answer != "Mount Everest is the tallest." {
		t.Errorf("unexpected second answer: %q", cards[1].Answer)
	}
}

func TestNormalizeFlashcards_FallbackQuestionAnswerPairs(t *testing.T) {
	reply := "not json at all {{\n" +
		"Question: Why does the sky look blue during the day?\n" +
		"Answer: Shorter wavelengths scatter more in the atmosphere.\n"

	cards, err := normalizeFlashcards(reply)
	if err != nil {
		t.Fatalf("fallback normalize failed: %v", err)
	}
	if len(cards) != 1 {
		t.Fatalf("expected 1 fallback card, got %d", len(cards))
	}
	if cards[0].Answer != "Shorter wavelengths scatter more in the atmosphere." {
		t.Errorf("unexpected answer: %q", cards[0].Answer)
	}
}

func TestNormalizeFlashcards_FallbackQuotedKeyFragment(t *testing.T) {
	// Truncated JSON: the syntax is broken but the quoted-key fragment is
	// still recoverable.
	reply := `[{"question": "What ended the Cretaceous period on Earth?", "answer": "An asteroid impact at Chicxulub."}, {"question": "Incomplete`

	cards, err := normalizeFlashcards(reply)
	if err != nil {
		t.Fatalf("fallback normalize failed: %v", err)
	}
	if len(cards) != 1 {
		t.Fatalf("expected 1 recovered card, got %d", len(cards))
	}
	if cards[0].Question != "What ended the Cretaceous period on Earth?" {
		t.Errorf("unexpected question: %q", cards[0].Question)
	}
}

func TestNormalizeFlashcards_FallbackPlaceholder(t *testing.T) {
	cards, err := normalizeFlashcards("complete nonsense without any structure {{{")
	if err != nil {
		t.Fatalf("fallback normalize failed: %v", err)
	}
	if len(cards) != 1 {
		t.Fatalf("expected exactly one placeholder card, got %d", len(cards))
	}
	if cards[0].Question != "What was the main topic of the uploaded document?" {
		t.Errorf("unexpected placeholder question: %q", cards[0].Question)
	}
}

func TestNormalizeFlashcards_FallbackExclusiveBounds(t *testing.T) {
	// The fallback filter requires strictly more than 10/5 runes, so
	// boundary-length pairs that would pass the primary path are dropped
	// here and the placeholder takes over.
	reply := "broken json [{\nQ: Ten runes!\nA: Five!\n"

	cards, err := normalizeFlashcards(reply)
	if err != nil {
		t.Fatalf("fallback normalize failed: %v", err)
	}
	if len(cards) != 1 {
		t.Fatalf("expected placeholder only, got %d cards", len(cards))
	}
	if cards[0].Question != "What was the main topic of the uploaded document?" {
		t.Errorf("expected placeholder, got %q", cards[0].Question)
	}
}

func TestNormalizeFlashcards_CapsAtFifteen(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("[")
	for i := 0; i < 40; i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(`{"question": "` + validQuestion + `", "answer": "` + validAnswer + `"}`)
	}
	sb.WriteString("]")

	cards, err := normalizeFlashcards(sb.String())
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if len(cards) != maxFlashcards {
		t.Fatalf("expected cap at %d cards, got %d", maxFlashcards, len(cards))
	}
}

func TestNormalizeFlashcards_EmptyReply(t *testing.T) {
	// An empty reply is a syntax failure, so it routes to fallback and
	// yields the placeholder.
	cards, err := normalizeFlashcards("")
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if len(cards) != 1 {
		t.Fatalf("expected placeholder card, got %d cards", len(cards))
	}
}
