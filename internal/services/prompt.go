package services

import (
	"fmt"
	"strings"
)

// Card count bounds relative to source length. Short documents get a few
// focused cards, long ones are capped at maxFlashcards.
const (
	minFlashcards = 3
	maxFlashcards = 15
)

// estimateCardCount picks the target number of flashcards from the word
// count of the extracted text. Monotonically non-decreasing.
func estimateCardCount(text string) int {
	words := len(strings.Fields(text))
	switch {
	case words < 200:
		return minFlashcards
	case words < 500:
		return 5
	case words < 1000:
		return 8
	case words < 2000:
		return 12
	default:
		return maxFlashcards
	}
}

// buildFlashcardPrompt assembles the generation instruction. The target
// count is stated both up front and in the closing directive to bias the
// model toward exact compliance, and the extracted text is embedded
// verbatim. Same inputs always yield the same prompt.
func buildFlashcardPrompt(text string, count int) string {
	return fmt.Sprintf(`You are an expert educational content creator. Please analyze the following text and create exactly %d high-quality flashcards for studying.

Requirements:
1. Create exactly %d flashcards
2. Focus on the most important concepts, definitions, facts, and key points
3. Questions should be clear and specific
4. Answers should be concise but complete
5. Avoid overly obvious or trivial questions
6. Include a mix of question types: definitions, explanations, examples, applications
7. Ensure questions test understanding, not just memorization

Output format: Return ONLY a valid JSON array with this exact structure:
[
  {
    "question": "Clear, specific question here",
    "answer": "Concise but complete answer here"
  },
  {
    "question": "Another question here",
    "answer": "Another answer here"
  }
]

Content to analyze:
%s

Generate exactly %d flashcards in the JSON format specified above:`, count, count, text, count)
}
