package file

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"quizboard-service/internal/domain"
)

func TestSampleLoaderServesBundledQuiz(t *testing.T) {
	loader := SampleLoader()

	quiz, err := loader.LoadQuiz(context.Background(), "general-knowledge")
	if err != nil {
		t.Fatalf("load sample: %v", err)
	}
	if len(quiz.Categories) != 5 {
		t.Fatalf("expected 5 categories, got %d", len(quiz.Categories))
	}
	for _, c := range quiz.Categories {
		if len(c.Questions) != domain.QuestionsPerCategory {
			t.Fatalf("category %q has %d questions", c.Title, len(c.Questions))
		}
	}
	if p, ok := quiz.Categories[0].Questions[2].Points.Number(); !ok || p != 300 {
		t.Fatalf("expected numeric 300, got %v %v", p, ok)
	}
	bonus := quiz.Categories[4].Questions[4]
	if _, ok := bonus.Points.Number(); ok || bonus.Points.String() != "Bonus" || bonus.TimerDuration != 90 {
		t.Fatalf("unexpected bonus question %+v", bonus)
	}
}

func TestLoaderReadsJSONAndYAML(t *testing.T) {
	fsys := fstest.MapFS{
		"history.json": {Data: []byte(`{"title":"History","createdAt":2,"categories":[{"title":"Dates","questions":[{"points":"100","question":"q","answer":"a"}]}]}`)},
		"quiz.yml":     {Data: []byte("id: custom\ntitle: Custom\ncreatedAt: 1\ncategories: []\n")},
		"notes.txt":    {Data: []byte("ignored")},
	}
	loader := NewQuizLoader(fsys)

	list, err := loader.ListQuizzes(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != "history" || list[1].ID != "custom" {
		t.Fatalf("unexpected listing %+v", list)
	}

	quiz, err := loader.LoadQuiz(context.Background(), "history")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	points := quiz.Categories[0].Questions[0].Points
	if _, ok := points.Number(); ok || points.String() != "100" {
		t.Fatalf("quoted points should stay a label, got %v", points)
	}

	if _, err := loader.LoadQuiz(context.Background(), "missing"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
}

func TestLoaderReportsBadDocument(t *testing.T) {
	loader := NewQuizLoader(fstest.MapFS{"broken.yaml": {Data: []byte("categories: [")}})
	if _, err := loader.ListQuizzes(context.Background()); err == nil {
		t.Fatalf("expected parse error")
	}
}
