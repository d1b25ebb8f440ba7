package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/festapp/telao/internal/game"
	"github.com/festapp/telao/internal/migrations"
)

var ErrNotFound = errors.New("not found")

// Document keys for the three game stores.
const (
	docQuestions = "questions"
	docConfig    = "config"
	docAnswers   = "answers"
)

// DocStore is the key-value JSON blob store behind the game's three
// persistence interfaces. Each document is one row in the documents
// table; reads of a missing key fall back to the document's zero value,
// the way a missing file would on first boot.
type DocStore struct {
	db *sql.DB
}

// NewDocStore ensures the schema exists and returns a store over db.
func NewDocStore(db *sql.DB) (*DocStore, error) {
	if err := migrations.Run(db); err != nil {
		return nil, fmt.Errorf("initializing document store: %w", err)
	}
	return &DocStore{db: db}, nil
}

func (s *DocStore) get(ctx context.Context, key string, v any) error {
	var raw string
	err := s.db.QueryRowContext(ctx, `
		SELECT value FROM documents WHERE key = ?
	`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("reading document %q: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("decoding document %q: %w", key, err)
	}
	return nil
}

func (s *DocStore) put(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding document %q: %w", key, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (key, value, updated_at)
		VALUES (?, ?, strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, key, string(raw))
	if err != nil {
		return fmt.Errorf("writing document %q: %w", key, err)
	}
	return nil
}

// Questions returns the question-store view of the documents table.
func (s *DocStore) Questions() game.QuestionStore { return questionDocs{s} }

// Config returns the config-store view of the documents table.
func (s *DocStore) Config() game.ConfigStore { return configDocs{s} }

// Answers returns the answer-ledger view of the documents table.
func (s *DocStore) Answers() game.AnswerStore { return answerDocs{s} }

type questionDocs struct{ s *DocStore }

func (d questionDocs) Load(ctx context.Context) ([]game.Question, error) {
	all, err := d.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	active := make([]game.Question, 0, len(all))
	for _, q := range all {
		if q.Active {
			active = append(active, q)
		}
	}
	sort.SliceStable(active, func(i, j int) bool { return active[i].Order < active[j].Order })
	return active, nil
}

func (d questionDocs) LoadAll(ctx context.Context) ([]game.Question, error) {
	var questions []game.Question
	err := d.s.get(ctx, docQuestions, &questions)
	if errors.Is(err, ErrNotFound) {
		return []game.Question{}, nil
	}
	if err != nil {
		return nil, err
	}
	return questions, nil
}

func (d questionDocs) Save(ctx context.Context, questions []game.Question) error {
	return d.s.put(ctx, docQuestions, questions)
}

type configDocs struct{ s *DocStore }

func (d configDocs) Load(ctx context.Context) (game.GameConfig, error) {
	var cfg game.GameConfig
	err := d.s.get(ctx, docConfig, &cfg)
	if errors.Is(err, ErrNotFound) {
		return game.DefaultConfig(), nil
	}
	if err != nil {
		return game.GameConfig{}, err
	}
	return cfg, nil
}

func (d configDocs) Save(ctx context.Context, cfg game.GameConfig) error {
	return d.s.put(ctx, docConfig, cfg)
}

type answerDocs struct{ s *DocStore }

func (d answerDocs) Load(ctx context.Context) (game.AnswerLog, error) {
	var log game.AnswerLog
	err := d.s.get(ctx, docAnswers, &log)
	if errors.Is(err, ErrNotFound) {
		return game.NewAnswerLog(), nil
	}
	if err != nil {
		return game.AnswerLog{}, err
	}
	if log.Scores == nil {
		log = game.NewAnswerLog()
	}
	return log, nil
}

func (d answerDocs) Upsert(ctx context.Context, questionIndex int, element string) error {
	log, err := d.Load(ctx)
	if err != nil {
		return err
	}
	log.Upsert(questionIndex, element, time.Now())
	return d.s.put(ctx, docAnswers, log)
}

func (d answerDocs) Reset(ctx context.Context) error {
	return d.s.put(ctx, docAnswers, game.NewAnswerLog())
}
