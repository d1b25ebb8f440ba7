package game

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"
)

// Engine validates and applies every game mutation against the three
// stores and derives the canonical snapshot. All operations run under a
// single mutex, so no client ever observes a torn read between the
// self-heal of QuestionOrder and its use.
//
// Operations report (applied, err): applied is false when the event was
// rejected as a no-op (empty question set, blank element) and the caller
// must not broadcast; err is a persistence failure, logged by the caller,
// never fatal.
type Engine struct {
	mu        sync.Mutex
	questions QuestionStore
	config    ConfigStore
	answers   AnswerStore
	logger    *slog.Logger
	rnd       *rand.Rand
	now       func() time.Time
}

func NewEngine(questions QuestionStore, config ConfigStore, answers AnswerStore, logger *slog.Logger) *Engine {
	return &Engine{
		questions: questions,
		config:    config,
		answers:   answers,
		logger:    logger,
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
		now:       time.Now,
	}
}

// Advance moves the cursor by delta (+1/-1), clamped into
// [0, totalQuestions-1], and clears the selected element.
//
// Lap reset: moving from an index > 0 down to index 0 wipes the answer
// ledger before the cursor lands. The remote uses "back to question one"
// as an implicit new-round signal, so this navigation silently zeroes all
// scores. Intentional, if surprising; do not fold into the generic path.
func (e *Engine) Advance(ctx context.Context, delta int) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	questions, err := e.questions.Load(ctx)
	if err != nil {
		return false, err
	}
	if len(questions) == 0 {
		return false, nil
	}

	cfg, err := e.config.Load(ctx)
	if err != nil {
		return false, err
	}

	previous := cfg.CurrentIndex
	next := clamp(previous+delta, 0, len(questions)-1)

	if previous > 0 && next == 0 {
		if err := e.answers.Reset(ctx); err != nil {
			return false, err
		}
	}

	cfg.CurrentIndex = next
	cfg.SelectedElement = nil
	if err := e.config.Save(ctx, cfg); err != nil {
		return false, err
	}
	return true, nil
}

// JumpTo repositions the cursor to index, clamped into range. Unlike
// Advance it neither clears the selected element nor triggers the lap
// reset: it is the narrow reposition used by admin resets and debug
// jumps.
func (e *Engine) JumpTo(ctx context.Context, index int) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	questions, err := e.questions.Load(ctx)
	if err != nil {
		return false, err
	}

	cfg, err := e.config.Load(ctx)
	if err != nil {
		return false, err
	}

	cfg.CurrentIndex = clamp(index, 0, max(len(questions)-1, 0))
	if err := e.config.Save(ctx, cfg); err != nil {
		return false, err
	}
	return true, nil
}

// SelectElement records element as the answer for the current question's
// real index and marks it as the selection for this navigation. Rejected
// when element is blank or there are no questions.
func (e *Engine) SelectElement(ctx context.Context, element string) (bool, error) {
	if element == "" {
		return false, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	questions, err := e.questions.Load(ctx)
	if err != nil {
		return false, err
	}
	if len(questions) == 0 {
		return false, nil
	}

	cfg, err := e.config.Load(ctx)
	if err != nil {
		return false, err
	}
	if err = e.healOrder(ctx, &cfg, len(questions)); err != nil {
		return false, err
	}

	realIndex := cfg.QuestionOrder[clamp(cfg.CurrentIndex, 0, len(questions)-1)]
	if err := e.answers.Upsert(ctx, realIndex, element); err != nil {
		return false, err
	}

	cfg.SelectedElement = &element
	if err := e.config.Save(ctx, cfg); err != nil {
		return false, err
	}
	return true, nil
}

// ResetGame clears the ledger, reshuffles the question order, and puts
// the cursor back on question one with nothing selected.
func (e *Engine) ResetGame(ctx context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.answers.Reset(ctx); err != nil {
		return false, err
	}

	questions, err := e.questions.Load(ctx)
	if err != nil {
		return false, err
	}

	cfg, err := e.config.Load(ctx)
	if err != nil {
		return false, err
	}

	cfg.QuestionOrder = e.rnd.Perm(len(questions))
	cfg.CurrentIndex = 0
	cfg.SelectedElement = nil
	if err := e.config.Save(ctx, cfg); err != nil {
		return false, err
	}
	return true, nil
}

// ReplaceQuestions validates and persists input as the new full question
// set, returning the normalized records. Cursor and ledger are left
// untouched; a now-stale QuestionOrder is repaired lazily on the next
// read.
func (e *Engine) ReplaceQuestions(ctx context.Context, input []QuestionInput) ([]Question, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	questions := NormalizeQuestions(input, e.now())
	if err := e.questions.Save(ctx, questions); err != nil {
		return nil, false, err
	}
	return questions, true, nil
}

// NormalizeQuestions applies the defaulting rules for submitted question
// records: a zero ID gets a fresh millisecond-based one, a missing order
// becomes position+1, and active defaults to true unless explicitly
// false.
func NormalizeQuestions(input []QuestionInput, now time.Time) []Question {
	questions := make([]Question, 0, len(input))
	for i, in := range input {
		q := Question{
			ID:       in.ID,
			Prompt:   in.Prompt,
			Answer:   in.Answer,
			Category: in.Category,
			Active:   true,
		}
		if q.ID == 0 {
			q.ID = now.UnixMilli() + int64(i)
		}
		if in.Order != nil {
			q.Order = *in.Order
		} else {
			q.Order = i + 1
		}
		if in.Active != nil {
			q.Active = *in.Active
		}
		questions = append(questions, q)
	}
	return questions
}

// SetAudioTrack points the background audio at track (nil stops it).
func (e *Engine) SetAudioTrack(ctx context.Context, track *string) (bool, error) {
	return e.patchAudio(ctx, func(a *AudioState) { a.Track = track })
}

// SetVolume sets the audio volume, clamped into [0,1].
func (e *Engine) SetVolume(ctx context.Context, volume float64) (bool, error) {
	if volume < 0 {
		volume = 0
	}
	if volume > 1 {
		volume = 1
	}
	return e.patchAudio(ctx, func(a *AudioState) { a.Volume = volume })
}

// TogglePlay flips the audio play/pause state.
func (e *Engine) TogglePlay(ctx context.Context) (bool, error) {
	return e.patchAudio(ctx, func(a *AudioState) { a.Playing = !a.Playing })
}

func (e *Engine) patchAudio(ctx context.Context, patch func(*AudioState)) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cfg, err := e.config.Load(ctx)
	if err != nil {
		return false, err
	}
	patch(&cfg.Audio)
	if err := e.config.Save(ctx, cfg); err != nil {
		return false, err
	}
	return true, nil
}

// PopulateDebugData fills the ledger with random answers for up to ten
// questions and forces the cursor onto the last question with a random
// selection recorded, so the end-of-game view can be exercised without
// playing a full round. Ledger consistency invariants hold throughout.
func (e *Engine) PopulateDebugData(ctx context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.answers.Reset(ctx); err != nil {
		return false, err
	}

	questions, err := e.questions.Load(ctx)
	if err != nil {
		return false, err
	}

	cfg, err := e.config.Load(ctx)
	if err != nil {
		return false, err
	}
	if err = e.healOrder(ctx, &cfg, len(questions)); err != nil {
		return false, err
	}

	for seq := 0; seq < len(questions) && seq < 10; seq++ {
		element := Elements[e.rnd.Intn(len(Elements))]
		if err := e.answers.Upsert(ctx, cfg.QuestionOrder[seq], element); err != nil {
			return false, err
		}
	}

	last := len(questions) - 1
	if last >= 0 {
		element := Elements[e.rnd.Intn(len(Elements))]
		if err := e.answers.Upsert(ctx, cfg.QuestionOrder[last], element); err != nil {
			return false, err
		}
		cfg.CurrentIndex = last
		cfg.SelectedElement = &element
		if err := e.config.Save(ctx, cfg); err != nil {
			return false, err
		}
	}
	return true, nil
}

// Snapshot derives the canonical view of the game from the three stores.
// Pure except for the QuestionOrder self-heal, which persists the
// repaired order so repeated derivations agree.
func (e *Engine) Snapshot(ctx context.Context) (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked(ctx)
}

func (e *Engine) snapshotLocked(ctx context.Context) (Snapshot, error) {
	questions, err := e.questions.Load(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	cfg, err := e.config.Load(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	if err = e.healOrder(ctx, &cfg, len(questions)); err != nil {
		return Snapshot{}, err
	}

	log, err := e.answers.Load(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	total := len(questions)
	index := 0
	var current *Question
	var currentAnswer *string
	if total > 0 {
		index = clamp(cfg.CurrentIndex, 0, total-1)
		realIndex := cfg.QuestionOrder[index]
		current = &questions[realIndex]
		currentAnswer = log.Find(realIndex)
	}

	return Snapshot{
		Questions:       questions,
		CurrentIndex:    index,
		CurrentQuestion: current,
		TotalQuestions:  total,
		Audio:           cfg.Audio,
		SelectedElement: cfg.SelectedElement,
		CurrentAnswer:   currentAnswer,
		Scores:          log.Scores,
		GameEnded:       index == total-1 && cfg.SelectedElement != nil,
		IsFirstQuestion: index == 0,
	}, nil
}

// Questions returns the active question set, ready for play.
func (e *Engine) Questions(ctx context.Context) ([]Question, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.questions.Load(ctx)
}

// AllQuestions returns every stored question, including inactive ones.
func (e *Engine) AllQuestions(ctx context.Context) ([]Question, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.questions.LoadAll(ctx)
}

// healOrder repairs cfg.QuestionOrder in place when its length no longer
// matches the active question count, persisting the fresh permutation.
// Load-bearing: it must run before every read or write that resolves a
// real index through the order.
func (e *Engine) healOrder(ctx context.Context, cfg *GameConfig, total int) error {
	if len(cfg.QuestionOrder) == total {
		return nil
	}
	cfg.QuestionOrder = e.rnd.Perm(total)
	if err := e.config.Save(ctx, *cfg); err != nil {
		return err
	}
	if e.logger != nil {
		e.logger.Debug("regenerated stale question order", "total", total)
	}
	return nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
