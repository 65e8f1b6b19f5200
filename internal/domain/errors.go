package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a game session does not exist or has ended.
	ErrSessionNotFound = errors.New("game session not found")
	// ErrSessionEnded is returned by operations on a session after End.
	ErrSessionEnded = errors.New("game session ended")
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuestionOpen is returned when selecting a question while another one is open.
	ErrQuestionOpen = errors.New("another question is already open")
	// ErrNoActiveQuestion is returned when revealing with no question open.
	ErrNoActiveQuestion = errors.New("no question is open")
	// ErrUnknownTimerPolicy indicates a misconfigured timer policy name.
	ErrUnknownTimerPolicy = errors.New("unknown timer policy")
)
