// Package game defines the core domain types, the store interfaces the
// engine persists through, and the server-authoritative state machine.
package game

import (
	"context"
	"time"
)

// Elements is the fixed set of participants a viewer can vote for.
// Scores are always keyed by this set; it is not extensible at runtime.
var Elements = []string{"Noinoi", "Mauro", "Linda", "Pedro", "Lanita", "Mom", "Meu Querido"}

// Question is a single prompt shown on the TV. Inactive questions are
// retained in storage but excluded from play.
type Question struct {
	ID       int64  `json:"id"`
	Order    int    `json:"order"`
	Prompt   string `json:"prompt"`
	Answer   string `json:"answer,omitempty"`
	Category string `json:"category,omitempty"`
	Active   bool   `json:"active"`
}

// QuestionInput is a question as submitted by clients (bulk replace or
// import). Missing fields are defaulted by Engine.ReplaceQuestions:
// zero ID gets a fresh one, nil Order becomes position+1, nil Active
// becomes true.
type QuestionInput struct {
	ID       int64  `json:"id"`
	Order    *int   `json:"order"`
	Prompt   string `json:"prompt"`
	Answer   string `json:"answer"`
	Category string `json:"category"`
	Active   *bool  `json:"active"`
}

// AudioState is the background-music sub-state of the game config. Its
// lifecycle is independent of the question flow.
type AudioState struct {
	Track   *string `json:"track"`
	Volume  float64 `json:"volume"`
	Playing bool    `json:"playing"`
}

// GameConfig is the mutable game cursor. CurrentIndex is a position in
// QuestionOrder, not in the question store. SelectedElement is the choice
// made for the question at CurrentIndex and is cleared whenever the
// cursor advances.
type GameConfig struct {
	CurrentIndex    int        `json:"currentIndex"`
	SelectedElement *string    `json:"selectedElement"`
	QuestionOrder   []int      `json:"questionOrder,omitempty"`
	Audio           AudioState `json:"audio"`
}

// DefaultConfig is the config a fresh game starts from.
func DefaultConfig() GameConfig {
	return GameConfig{
		CurrentIndex: 0,
		Audio: AudioState{
			Track:   nil,
			Volume:  0.5,
			Playing: false,
		},
	}
}

// Answer records the element chosen for one underlying question.
// QuestionIndex is the question's real (store) position, reached through
// QuestionOrder, so a reshuffle does not invalidate the entry.
type Answer struct {
	QuestionIndex int       `json:"questionIndex"`
	Element       string    `json:"element"`
	Timestamp     time.Time `json:"timestamp"`
}

// AnswerLog is the append/update ledger of answers plus the derived score
// tally. Scores is always the exact aggregate of Answers: one increment
// per entry, kept in sync on overwrite.
type AnswerLog struct {
	Answers []Answer       `json:"answers"`
	Scores  map[string]int `json:"scores"`
}

// NewAnswerLog returns an empty ledger with a zeroed score for every
// element.
func NewAnswerLog() AnswerLog {
	scores := make(map[string]int, len(Elements))
	for _, el := range Elements {
		scores[el] = 0
	}
	return AnswerLog{
		Answers: []Answer{},
		Scores:  scores,
	}
}

// Upsert records element as the answer for questionIndex, replacing any
// previous entry for that index. On overwrite the old element's score is
// decremented and the new one incremented, so the tally never double
// counts. At most one entry per distinct questionIndex.
func (l *AnswerLog) Upsert(questionIndex int, element string, now time.Time) {
	if l.Scores == nil {
		*l = NewAnswerLog()
	}
	for i := range l.Answers {
		if l.Answers[i].QuestionIndex == questionIndex {
			l.Scores[l.Answers[i].Element]--
			l.Answers[i].Element = element
			l.Answers[i].Timestamp = now
			l.Scores[element]++
			return
		}
	}
	l.Answers = append(l.Answers, Answer{
		QuestionIndex: questionIndex,
		Element:       element,
		Timestamp:     now,
	})
	l.Scores[element]++
}

// Find returns the recorded element for questionIndex, or nil.
func (l *AnswerLog) Find(questionIndex int) *string {
	for i := range l.Answers {
		if l.Answers[i].QuestionIndex == questionIndex {
			return &l.Answers[i].Element
		}
	}
	return nil
}

// Snapshot is the full derived game view pushed to every client after
// each accepted mutation. It is a projection of the three stores, never
// stored itself.
type Snapshot struct {
	Questions       []Question     `json:"questions"`
	CurrentIndex    int            `json:"currentIndex"`
	CurrentQuestion *Question      `json:"currentQuestion"`
	TotalQuestions  int            `json:"totalQuestions"`
	Audio           AudioState     `json:"audio"`
	SelectedElement *string        `json:"selectedElement"`
	CurrentAnswer   *string        `json:"currentAnswer"`
	Scores          map[string]int `json:"scores"`
	GameEnded       bool           `json:"gameEnded"`
	IsFirstQuestion bool           `json:"isFirstQuestion"`
}

// QuestionStore persists the question set.
type QuestionStore interface {
	// Load returns active questions sorted ascending by Order.
	Load(ctx context.Context) ([]Question, error)
	// LoadAll returns every question, including inactive ones.
	LoadAll(ctx context.Context) ([]Question, error)
	Save(ctx context.Context, questions []Question) error
}

// ConfigStore persists the game cursor and audio state.
type ConfigStore interface {
	Load(ctx context.Context) (GameConfig, error)
	Save(ctx context.Context, cfg GameConfig) error
}

// AnswerStore persists the answer ledger.
type AnswerStore interface {
	Load(ctx context.Context) (AnswerLog, error)
	// Upsert applies the AnswerLog update rule for one real question index.
	Upsert(ctx context.Context, questionIndex int, element string) error
	// Reset clears all answers and zeroes every score.
	Reset(ctx context.Context) error
}
