package models

import (
	"time"

	fsrs "github.com/open-spaced-repetition/go-fsrs"
)

// Flashcard is a validated question/answer pair produced by generation.
// The scheduling fields track spaced-repetition state for the card within
// its study session.
type Flashcard struct {
	Question      string     `json:"question"`
	Answer        string     `json:"answer"`
	Due           *time.Time `json:"due,omitempty"`
	Stability     float64    `json:"stability"`
	Difficulty    float64    `json:"difficulty"`
	ElapsedDays   int        `json:"elapsedDays"`
	ScheduledDays int        `json:"scheduledDays"`
	Reps          int        `json:"reps"`
	Lapses        int        `json:"lapses"`
	State         int        `json:"state"`
	LastReview    *time.Time `json:"lastReview,omitempty"`
}

// StudySession groups the flashcards generated from one uploaded document.
type StudySession struct {
	ID         string      `json:"sessionId"`
	Filename   string      `json:"filename"`
	Cards      []Flashcard `json:"flashcards"`
	TotalCards int         `json:"totalCards"`
	CreatedAt  time.Time   `json:"createdAt"`
}

func (c *Flashcard) ToFSRSCard() fsrs.Card {
	card := fsrs.Card{
		Stability:     c.Stability,
		Difficulty:    c.Difficulty,
		ElapsedDays:   uint64(max(c.ElapsedDays, 0)),
		ScheduledDays: uint64(max(c.ScheduledDays, 0)),
		Reps:          uint64(max(c.Reps, 0)),
		Lapses:        uint64(max(c.Lapses, 0)),
		State:         fsrs.State(max(c.State, 0)),
	}
	if c.Due != nil {
		card.Due = *c.Due
	}
	if c.LastReview != nil {
		card.LastReview = *c.LastReview
	}
	return card
}

func (c *Flashcard) ApplyFSRSCard(f fsrs.Card) {
	c.Due = timePtr(f.Due)
	c.Stability = f.Stability
	c.Difficulty = f.Difficulty
	c.ElapsedDays = int(f.ElapsedDays)
	c.ScheduledDays = int(f.ScheduledDays)
	c.Reps = int(f.Reps)
	c.Lapses = int(f.Lapses)
	c.State = int(f.State)
	c.LastReview = timePtr(f.LastReview)
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func max[T ~int | ~int32 | ~int64](a, b T) T {
	if a > b {
		return a
	}
	return b
}
