package domain

// QuestionsPerCategory is the number of rows on a board.
const QuestionsPerCategory = 5

// Question is a single clue on the board.
type Question struct {
	Points        Points `json:"points" yaml:"points"`
	Question      string `json:"question" yaml:"question"`
	Answer        string `json:"answer" yaml:"answer"`
	Subtext       string `json:"subtext,omitempty" yaml:"subtext,omitempty"`
	TimerDuration int    `json:"timerDuration,omitempty" yaml:"timerDuration,omitempty"` // seconds, <= 0 means unset
}

// Category is a board column.
type Category struct {
	Title     string     `json:"title" yaml:"title"`
	Questions []Question `json:"questions" yaml:"questions"`
}

// Quiz is the read-only content a game session is played from.
type Quiz struct {
	ID         string     `json:"id" yaml:"id"`
	Title      string     `json:"title" yaml:"title"`
	CreatedAt  int64      `json:"createdAt" yaml:"createdAt"` // unix millis
	Categories []Category `json:"categories" yaml:"categories"`
}

// QuestionAt returns the question at key. Ragged categories and out of range
// keys report false.
func (q Quiz) QuestionAt(key QuestionKey) (Question, bool) {
	if key.Category < 0 || key.Category >= len(q.Categories) {
		return Question{}, false
	}
	questions := q.Categories[key.Category].Questions
	if key.Question < 0 || key.Question >= len(questions) {
		return Question{}, false
	}
	return questions[key.Question], true
}

// Summary is the dashboard view of a quiz.
func (q Quiz) Summary() QuizSummary {
	return QuizSummary{
		ID:         q.ID,
		Title:      q.Title,
		CreatedAt:  q.CreatedAt,
		Categories: len(q.Categories),
	}
}

// QuizSummary lists a quiz without its content.
type QuizSummary struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	CreatedAt  int64  `json:"createdAt"`
	Categories int    `json:"categories"`
}

// Team is a scoreboard entry. Scores are unbounded in both directions.
type Team struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// QuestionKey identifies a board position.
type QuestionKey struct {
	Category int `json:"category"`
	Question int `json:"question"`
}

// Index flattens the key into a single integer.
func (k QuestionKey) Index(perCategory int) int {
	return k.Category*perCategory + k.Question
}

// TimerState is the countdown state of the open question.
type TimerState string

const (
	TimerRunning  TimerState = "running"
	TimerExpired  TimerState = "expired"
	TimerRevealed TimerState = "revealed"
)

// BoardCell is one rendered position on the board.
type BoardCell struct {
	Key       QuestionKey `json:"key"`
	Points    string      `json:"points,omitempty"`
	Completed bool        `json:"completed"`
	Empty     bool        `json:"empty"` // no question at this slot
}

// Board is the grid view: Rows[questionIdx][categoryIdx].
type Board struct {
	Categories []string      `json:"categories"`
	Rows       [][]BoardCell `json:"rows"`
}

// ActiveQuestionView describes the open question. Answer stays empty until revealed.
type ActiveQuestionView struct {
	Key           QuestionKey `json:"key"`
	CategoryTitle string      `json:"categoryTitle"`
	Points        string      `json:"points"`
	Question      string      `json:"question"`
	Subtext       string      `json:"subtext,omitempty"`
	Answer        string      `json:"answer,omitempty"`
	Duration      int         `json:"duration"`
	Remaining     int         `json:"remaining"`
	TimerState    TimerState  `json:"timerState"`
}

// Snapshot is the full read model of a game session.
type Snapshot struct {
	SessionID string              `json:"sessionId"`
	QuizID    string              `json:"quizId"`
	QuizTitle string              `json:"quizTitle"`
	Revision  uint64              `json:"revision"`
	Board     Board               `json:"board"`
	Teams     []Team              `json:"teams"`
	Completed []QuestionKey       `json:"completed"`
	Active    *ActiveQuestionView `json:"active,omitempty"`
	ScoreStep int                 `json:"scoreStep"`
	Ended     bool                `json:"ended"`
}
