package game

import (
	"sync"
	"time"

	"quizboard-service/internal/domain"
)

// Options tune a new session. Zero values fall back to the defaults.
type Options struct {
	Teams        int
	ScoreStep    int
	Policy       TimerPolicy
	Scheduler    Scheduler
	TickInterval time.Duration
	Now          func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Teams <= 0 {
		o.Teams = DefaultTeams
	}
	if o.ScoreStep <= 0 {
		o.ScoreStep = 100
	}
	if o.Policy == nil {
		o.Policy = ExactPolicy{}
	}
	if o.Scheduler == nil {
		o.Scheduler = WallClock{}
	}
	if o.TickInterval <= 0 {
		o.TickInterval = time.Second
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Session is one play-through of a quiz: the board, the scoreboard and the
// question currently open. Every event, including timer ticks, is applied
// under mu, so transitions happen one at a time.
type Session struct {
	id        string
	quiz      domain.Quiz
	opts      Options
	createdAt time.Time

	mu          sync.Mutex
	roster      *Roster
	completed   *CompletionTracker
	active      *openQuestion
	revision    uint64
	ended       bool
	lastActive  time.Time
	subscribers map[chan domain.Snapshot]struct{}
}

type openQuestion struct {
	key   domain.QuestionKey
	q     domain.Question
	timer *Timer
	tick  Canceler
}

// NewSession starts a session in the idle state with a fresh roster.
func NewSession(id string, quiz domain.Quiz, opts Options) *Session {
	opts = opts.withDefaults()
	now := opts.Now()
	return &Session{
		id:          id,
		quiz:        quiz,
		opts:        opts,
		createdAt:   now,
		lastActive:  now,
		roster:      NewRoster(opts.Teams),
		completed:   NewCompletionTracker(),
		subscribers: make(map[chan domain.Snapshot]struct{}),
	}
}

func (s *Session) ID() string           { return s.id }
func (s *Session) QuizID() string       { return s.quiz.ID }
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// LastActive is the time of the last state change.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// SelectQuestion opens the question at key. Completed keys and empty slots
// are ignored and report false.
func (s *Session) SelectQuestion(key domain.QuestionKey) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return false, domain.ErrSessionEnded
	}
	if s.active != nil {
		return false, domain.ErrQuestionOpen
	}
	if s.completed.IsCompleted(key) {
		return false, nil
	}
	q, ok := s.quiz.QuestionAt(key)
	if !ok {
		return false, nil
	}

	open := &openQuestion{key: key, q: q, timer: NewTimer(s.opts.Policy.Duration(q))}
	s.active = open
	s.scheduleTickLocked(open)
	s.changedLocked()
	return true, nil
}

// RevealAnswer shows the answer of the open question and stops its countdown.
func (s *Session) RevealAnswer() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return domain.ErrSessionEnded
	}
	if s.active == nil {
		return domain.ErrNoActiveQuestion
	}
	if s.active.timer.Revealed() {
		return nil
	}
	s.cancelTickLocked(s.active)
	s.active.timer.Reveal()
	s.changedLocked()
	return nil
}

// CloseQuestion closes the open question. It is marked completed only when
// its answer was revealed; otherwise it stays selectable. The result reports
// whether the question was completed.
func (s *Session) CloseQuestion() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return false, domain.ErrSessionEnded
	}
	if s.active == nil {
		return false, nil
	}
	open := s.active
	s.cancelTickLocked(open)
	completed := open.timer.Revealed()
	if completed {
		s.completed.MarkCompleted(open.key)
	}
	s.active = nil
	s.changedLocked()
	return completed, nil
}

func (s *Session) AddTeam() (domain.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return domain.Team{}, domain.ErrSessionEnded
	}
	team := s.roster.Add()
	s.changedLocked()
	return team, nil
}

// RemoveTeam reports false when id is unknown or is the last team.
func (s *Session) RemoveTeam(id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return false, domain.ErrSessionEnded
	}
	if !s.roster.Remove(id) {
		return false, nil
	}
	s.changedLocked()
	return true, nil
}

func (s *Session) RenameTeam(id int, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return false, domain.ErrSessionEnded
	}
	if !s.roster.Rename(id, name) {
		return false, nil
	}
	s.changedLocked()
	return true, nil
}

func (s *Session) AdjustScore(id int, delta int) (domain.Team, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return domain.Team{}, false, domain.ErrSessionEnded
	}
	team, ok := s.roster.AdjustScore(id, delta)
	if !ok {
		return domain.Team{}, false, nil
	}
	s.changedLocked()
	return team, true, nil
}

func (s *Session) Teams() []domain.Team {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return nil
	}
	return s.roster.Teams()
}

func (s *Session) IsCompleted(key domain.QuestionKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return false
	}
	return s.completed.IsCompleted(key)
}

// ActiveQuestion returns the open question's key, if any.
func (s *Session) ActiveQuestion() (domain.QuestionKey, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return domain.QuestionKey{}, false
	}
	return s.active.key, true
}

func (s *Session) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Ended reports whether End was called.
func (s *Session) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

// End discards the session's state and disconnects subscribers. It is safe
// to call more than once.
func (s *Session) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return
	}
	if s.active != nil {
		s.cancelTickLocked(s.active)
		s.active = nil
	}
	s.ended = true
	s.roster = NewRoster(0)
	s.completed = NewCompletionTracker()
	s.changedLocked()
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
}

// Subscribe returns a channel that receives the current snapshot and then one
// per state change. The caller must invoke the returned cancel function.
// On an ended session the channel is already closed.
func (s *Session) Subscribe() (<-chan domain.Snapshot, func()) {
	ch := make(chan domain.Snapshot, 8)

	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	s.subscribers[ch] = struct{}{}
	ch <- s.snapshotLocked()
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) scheduleTickLocked(open *openQuestion) {
	if open.timer.State() != domain.TimerRunning {
		return
	}
	open.tick = s.opts.Scheduler.AfterFunc(s.opts.TickInterval, func() {
		s.onTick(open)
	})
}

func (s *Session) cancelTickLocked(open *openQuestion) {
	if open.tick != nil {
		open.tick.Stop()
		open.tick = nil
	}
}

func (s *Session) onTick(open *openQuestion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// A callback that raced with Stop must not touch a replaced question.
	if s.ended || s.active != open || open.tick == nil {
		return
	}
	open.tick = nil
	if !open.timer.Tick() {
		return
	}
	s.scheduleTickLocked(open)
	s.changedLocked()
}

func (s *Session) changedLocked() {
	s.revision++
	s.lastActive = s.opts.Now()
	s.broadcastLocked()
}

func (s *Session) broadcastLocked() {
	if len(s.subscribers) == 0 {
		return
	}
	snap := s.snapshotLocked()
	for ch := range s.subscribers {
		select {
		case ch <- snap:
		default:
			// Drop the oldest pending snapshot so a slow reader never blocks the session.
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}

func (s *Session) snapshotLocked() domain.Snapshot {
	snap := domain.Snapshot{
		SessionID: s.id,
		QuizID:    s.quiz.ID,
		QuizTitle: s.quiz.Title,
		Revision:  s.revision,
		Board:     s.boardLocked(),
		Teams:     s.roster.Teams(),
		Completed: s.completed.Keys(),
		ScoreStep: s.opts.ScoreStep,
		Ended:     s.ended,
	}
	if s.active != nil {
		snap.Active = s.activeViewLocked()
	}
	return snap
}

func (s *Session) activeViewLocked() *domain.ActiveQuestionView {
	open := s.active
	view := &domain.ActiveQuestionView{
		Key:        open.key,
		Points:     open.q.Points.String(),
		Question:   open.q.Question,
		Subtext:    open.q.Subtext,
		Duration:   open.timer.Duration(),
		Remaining:  open.timer.Remaining(),
		TimerState: open.timer.State(),
	}
	if open.key.Category < len(s.quiz.Categories) {
		view.CategoryTitle = s.quiz.Categories[open.key.Category].Title
	}
	if open.timer.Revealed() {
		view.Answer = open.q.Answer
	}
	return view
}

// boardLocked renders QuestionsPerCategory rows, or more if a category is
// longer. Missing questions become empty placeholder cells.
func (s *Session) boardLocked() domain.Board {
	rows := domain.QuestionsPerCategory
	titles := make([]string, len(s.quiz.Categories))
	for i, c := range s.quiz.Categories {
		titles[i] = c.Title
		if len(c.Questions) > rows {
			rows = len(c.Questions)
		}
	}

	board := domain.Board{Categories: titles, Rows: make([][]domain.BoardCell, rows)}
	for qi := 0; qi < rows; qi++ {
		row := make([]domain.BoardCell, len(s.quiz.Categories))
		for ci := range s.quiz.Categories {
			key := domain.QuestionKey{Category: ci, Question: qi}
			cell := domain.BoardCell{Key: key}
			if q, ok := s.quiz.QuestionAt(key); ok {
				cell.Completed = s.completed.IsCompleted(key)
				if !cell.Completed {
					cell.Points = q.Points.String()
				}
			} else {
				cell.Empty = true
			}
			row[ci] = cell
		}
		board.Rows[qi] = row
	}
	return board
}
