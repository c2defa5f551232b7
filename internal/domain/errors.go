package domain

import "errors"

var (
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrSessionNotFound is returned when no session exists for a code.
	ErrSessionNotFound = errors.New("live session not found")
	// ErrParticipantNotFound is returned when a user acts before joining.
	ErrParticipantNotFound = errors.New("not a participant in this session")
	// ErrNotInstructor is returned when a session-control action comes from
	// anyone but the session's owning instructor.
	ErrNotInstructor = errors.New("only the session instructor may do this")

	// ErrSessionNotActive is returned for mutations on an ended session.
	ErrSessionNotActive = errors.New("session is not active")
	// ErrNotCurrentQuestion is returned when an answer targets a question
	// other than the one currently in play.
	ErrNotCurrentQuestion = errors.New("not the current question")
	// ErrNoMoreQuestions is returned when advancing past the last question.
	ErrNoMoreQuestions = errors.New("no more questions")

	// ErrAlreadyJoined is returned on a repeated join by the same user.
	ErrAlreadyJoined = errors.New("already joined this session")
	// ErrAlreadyAnswered is returned on a duplicate answer for a question index.
	ErrAlreadyAnswered = errors.New("question already answered")
	// ErrSessionCodeInUse is returned when a caller-supplied code collides.
	ErrSessionCodeInUse = errors.New("session code already in use")

	// ErrQuestionIndexOutOfRange is returned for indexes outside the quiz.
	ErrQuestionIndexOutOfRange = errors.New("question index out of range")
	// ErrAnswerIndexOutOfRange is returned for option indexes outside the question.
	ErrAnswerIndexOutOfRange = errors.New("answer index out of range")
)
