package server

import (
	"context"
	"testing"

	"github.com/festapp/telao/internal/database"
	"github.com/festapp/telao/internal/game"
)

func setupStore(t *testing.T) *DocStore {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store, err := NewDocStore(db)
	if err != nil {
		t.Fatalf("init doc store: %v", err)
	}
	return store
}

func TestQuestionStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)
	questions := store.Questions()

	saved := []game.Question{
		{ID: 2, Order: 2, Prompt: "Second", Active: true},
		{ID: 1, Order: 1, Prompt: "First", Active: true},
		{ID: 3, Order: 3, Prompt: "Benched", Active: false},
	}
	if err := questions.Save(ctx, saved); err != nil {
		t.Fatalf("save: %v", err)
	}

	active, err := questions.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("expected 2 active questions, got %d", len(active))
	}
	if active[0].Prompt != "First" || active[1].Prompt != "Second" {
		t.Errorf("expected order-sorted questions, got %q then %q", active[0].Prompt, active[1].Prompt)
	}

	all, err := questions.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load all: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 stored questions, got %d", len(all))
	}
}

func TestQuestionStoreEmptyDefault(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	questions, err := store.Questions().Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if questions == nil || len(questions) != 0 {
		t.Errorf("expected empty slice on fresh store, got %#v", questions)
	}
}

func TestConfigStoreDefault(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	cfg, err := store.Config().Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.CurrentIndex != 0 {
		t.Errorf("expected index 0, got %d", cfg.CurrentIndex)
	}
	if cfg.Audio.Volume != 0.5 {
		t.Errorf("expected default volume 0.5, got %v", cfg.Audio.Volume)
	}
	if cfg.SelectedElement != nil {
		t.Errorf("expected no selection, got %q", *cfg.SelectedElement)
	}
}

func TestConfigStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)
	configs := store.Config()

	selected := "Pedro"
	in := game.GameConfig{
		CurrentIndex:    3,
		SelectedElement: &selected,
		QuestionOrder:   []int{2, 0, 1, 3},
		Audio:           game.AudioState{Volume: 0.8, Playing: true},
	}
	if err := configs.Save(ctx, in); err != nil {
		t.Fatalf("save: %v", err)
	}

	out, err := configs.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if out.CurrentIndex != 3 {
		t.Errorf("expected index 3, got %d", out.CurrentIndex)
	}
	if out.SelectedElement == nil || *out.SelectedElement != "Pedro" {
		t.Errorf("expected selection Pedro, got %v", out.SelectedElement)
	}
	if len(out.QuestionOrder) != 4 || out.QuestionOrder[0] != 2 {
		t.Errorf("expected question order preserved, got %v", out.QuestionOrder)
	}
	if !out.Audio.Playing || out.Audio.Volume != 0.8 {
		t.Errorf("expected audio state preserved, got %+v", out.Audio)
	}
}

func TestAnswerStoreUpsertAndReset(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)
	answers := store.Answers()

	if err := answers.Upsert(ctx, 0, "Linda"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := answers.Upsert(ctx, 1, "Linda"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := answers.Upsert(ctx, 0, "Mauro"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	log, err := answers.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(log.Answers) != 2 {
		t.Fatalf("expected 2 answers after overwrite, got %d", len(log.Answers))
	}
	if log.Scores["Linda"] != 1 || log.Scores["Mauro"] != 1 {
		t.Errorf("expected score transfer on overwrite, got %v", log.Scores)
	}

	if err := answers.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	log, err = answers.Load(ctx)
	if err != nil {
		t.Fatalf("load after reset: %v", err)
	}
	if len(log.Answers) != 0 {
		t.Errorf("expected empty ledger after reset, got %d answers", len(log.Answers))
	}
	for _, el := range game.Elements {
		if log.Scores[el] != 0 {
			t.Errorf("expected zero score for %s after reset, got %d", el, log.Scores[el])
		}
	}
}
