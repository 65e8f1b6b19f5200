package file

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"quizboard-service/internal/domain"
	"quizboard-service/internal/infra/memory"

	"gopkg.in/yaml.v3"
)

//go:embed samples/*.yaml
var samples embed.FS

// QuizLoader reads quiz documents (YAML or JSON) from the top level of a filesystem.
// A document without an id takes its file name.
type QuizLoader struct {
	fsys fs.FS
}

func NewQuizLoader(fsys fs.FS) *QuizLoader {
	return &QuizLoader{fsys: fsys}
}

// SampleLoader serves the quizzes bundled with the binary.
func SampleLoader() *QuizLoader {
	sub, err := fs.Sub(samples, "samples")
	if err != nil {
		panic(err)
	}
	return NewQuizLoader(sub)
}

func (l *QuizLoader) LoadQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	quizzes, err := l.readAll()
	if err != nil {
		return domain.Quiz{}, err
	}
	for _, q := range quizzes {
		if q.ID == quizID {
			return q, nil
		}
	}
	return domain.Quiz{}, domain.ErrQuizNotFound
}

func (l *QuizLoader) ListQuizzes(_ context.Context) ([]domain.QuizSummary, error) {
	quizzes, err := l.readAll()
	if err != nil {
		return nil, err
	}
	out := make([]domain.QuizSummary, 0, len(quizzes))
	for _, q := range quizzes {
		out = append(out, q.Summary())
	}
	memory.SortSummaries(out)
	return out, nil
}

func (l *QuizLoader) readAll() ([]domain.Quiz, error) {
	entries, err := fs.ReadDir(l.fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read quiz dir: %w", err)
	}
	var quizzes []domain.Quiz
	for _, entry := range entries {
		if entry.IsDir() || !isQuizFile(entry.Name()) {
			continue
		}
		quiz, err := l.readFile(entry.Name())
		if err != nil {
			return nil, err
		}
		quizzes = append(quizzes, quiz)
	}
	return quizzes, nil
}

func (l *QuizLoader) readFile(name string) (domain.Quiz, error) {
	data, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("read quiz %s: %w", name, err)
	}
	var quiz domain.Quiz
	// JSON documents are valid YAML.
	if err := yaml.Unmarshal(data, &quiz); err != nil {
		return domain.Quiz{}, fmt.Errorf("parse quiz %s: %w", name, err)
	}
	if quiz.ID == "" {
		quiz.ID = strings.TrimSuffix(name, path.Ext(name))
	}
	return quiz, nil
}

func isQuizFile(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}
