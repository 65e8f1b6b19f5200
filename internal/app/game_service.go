package app

import (
	"context"

	"quizboard-service/internal/domain"
	"quizboard-service/internal/game"

	"github.com/google/uuid"
)

// SessionRepository abstracts where live game sessions are kept (in-memory, Redis, etc).
type SessionRepository interface {
	Put(session *game.Session)
	Get(sessionID string) (*game.Session, bool)
	Delete(sessionID string)
}

// QuizRepository gives read-only access to quiz content.
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	ListQuizzes(ctx context.Context) ([]domain.QuizSummary, error)
}

// GameService contains the game board use cases.
type GameService struct {
	sessions SessionRepository
	quizzes  QuizRepository
	opts     game.Options
	newID    func() string
}

func NewGameService(store SessionRepository, quizzes QuizRepository, opts game.Options) *GameService {
	return &GameService{
		sessions: store,
		quizzes:  quizzes,
		opts:     opts,
		newID:    func() string { return uuid.NewString() },
	}
}

func (s *GameService) ListQuizzes(ctx context.Context) ([]domain.QuizSummary, error) {
	return s.quizzes.ListQuizzes(ctx)
}

// StartSession loads the quiz and opens a fresh session with the default roster.
func (s *GameService) StartSession(ctx context.Context, quizID string) (domain.Snapshot, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Snapshot{}, err
	}
	session := game.NewSession(s.newID(), quiz, s.opts)
	s.sessions.Put(session)
	return session.Snapshot(), nil
}

func (s *GameService) Snapshot(_ context.Context, sessionID string) (domain.Snapshot, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return domain.Snapshot{}, err
	}
	return session.Snapshot(), nil
}

func (s *GameService) SelectQuestion(_ context.Context, sessionID string, key domain.QuestionKey) (bool, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return false, err
	}
	return session.SelectQuestion(key)
}

func (s *GameService) RevealAnswer(_ context.Context, sessionID string) error {
	session, err := s.session(sessionID)
	if err != nil {
		return err
	}
	return session.RevealAnswer()
}

func (s *GameService) CloseQuestion(_ context.Context, sessionID string) (bool, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return false, err
	}
	return session.CloseQuestion()
}

func (s *GameService) AddTeam(_ context.Context, sessionID string) (domain.Team, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return domain.Team{}, err
	}
	return session.AddTeam()
}

func (s *GameService) RemoveTeam(_ context.Context, sessionID string, teamID int) (bool, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return false, err
	}
	return session.RemoveTeam(teamID)
}

func (s *GameService) RenameTeam(_ context.Context, sessionID string, teamID int, name string) (bool, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return false, err
	}
	return session.RenameTeam(teamID, name)
}

func (s *GameService) AdjustScore(_ context.Context, sessionID string, teamID, delta int) (domain.Team, bool, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return domain.Team{}, false, err
	}
	return session.AdjustScore(teamID, delta)
}

// Subscribe returns a channel that receives snapshots for a session.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *GameService) Subscribe(_ context.Context, sessionID string) (<-chan domain.Snapshot, func(), error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := session.Subscribe()
	return ch, cancel, nil
}

// EndSession discards the session. Starting the quiz again yields a new one.
func (s *GameService) EndSession(_ context.Context, sessionID string) error {
	session, err := s.session(sessionID)
	if err != nil {
		return err
	}
	session.End()
	s.sessions.Delete(sessionID)
	return nil
}

func (s *GameService) session(sessionID string) (*game.Session, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok || session.Ended() {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}
