package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"live-quiz-service/internal/domain"
)

// SessionRepository abstracts how live sessions are stored (in-memory,
// Redis, etc). Update must apply mutate as a single atomic read-modify-write
// for the given code: concurrent updates to one session must serialize, and
// an error from mutate must leave stored state untouched.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.LiveSession) error
	Get(ctx context.Context, code string) (*domain.LiveSession, error)
	Update(ctx context.Context, code string, mutate func(*domain.LiveSession) error) (*domain.LiveSession, error)
	ListActive(ctx context.Context) ([]*domain.LiveSession, error)
}

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// SessionService enforces the live-session lifecycle: which question is in
// play, who may transition it, and what a legal answer looks like.
type SessionService struct {
	sessions SessionRepository
	quizzes  QuizRepository
	now      func() time.Time
	newCode  func() string
}

func NewSessionService(sessions SessionRepository, quizzes QuizRepository) *SessionService {
	return &SessionService{
		sessions: sessions,
		quizzes:  quizzes,
		now:      time.Now,
		newCode:  uuid.NewString,
	}
}

// WithClock overrides the service clock. Test-only.
func (s *SessionService) WithClock(now func() time.Time) *SessionService {
	s.now = now
	return s
}

// Create opens a new session for quizID in the waiting state. The session
// code defaults to a generated token when the caller supplies none; a
// supplied code that collides with an existing session is rejected.
func (s *SessionService) Create(ctx context.Context, quizID, instructorID, code string) (*domain.LiveSession, error) {
	if _, err := s.quizzes.GetQuiz(ctx, quizID); err != nil {
		return nil, err
	}
	if code == "" {
		code = s.newCode()
	}
	session := &domain.LiveSession{
		SessionCode:  code,
		QuizID:       quizID,
		InstructorID: instructorID,
		IsActive:     true,
		CreatedAt:    s.now(),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Join adds userID as a participant with score 0. A second join by the same
// user fails rather than silently succeeding.
func (s *SessionService) Join(ctx context.Context, code, userID string) (*domain.LiveSession, error) {
	return s.sessions.Update(ctx, code, func(session *domain.LiveSession) error {
		if !session.IsActive {
			return domain.ErrSessionNotActive
		}
		if session.Participant(userID) != nil {
			return domain.ErrAlreadyJoined
		}
		session.Participants = append(session.Participants, domain.Participant{UserID: userID})
		return nil
	})
}

// StartQuestion opens the current question for answers and stamps the start
// time from which all clients derive their countdowns.
func (s *SessionService) StartQuestion(ctx context.Context, code, callerID string) (*domain.LiveSession, error) {
	quiz, fetched := domain.Quiz{}, false
	return s.sessions.Update(ctx, code, func(session *domain.LiveSession) error {
		if err := s.instructorGate(session, callerID); err != nil {
			return err
		}
		if !fetched {
			var err error
			if quiz, err = s.quizzes.GetQuiz(ctx, session.QuizID); err != nil {
				return err
			}
			fetched = true
		}
		if session.CurrentQuestionIndex >= len(quiz.Questions) {
			return domain.ErrQuestionIndexOutOfRange
		}
		now := s.now()
		session.QuestionStarted = true
		session.QuestionStartTime = &now
		return nil
	})
}

// EndQuestion closes the current question without advancing, so no further
// answers are accepted while the instructor holds on the results.
func (s *SessionService) EndQuestion(ctx context.Context, code, callerID string) (*domain.LiveSession, error) {
	return s.sessions.Update(ctx, code, func(session *domain.LiveSession) error {
		if err := s.instructorGate(session, callerID); err != nil {
			return err
		}
		session.QuestionStarted = false
		session.QuestionStartTime = nil
		return nil
	})
}

// AdvanceQuestion moves to the next question in the closed state; the next
// question must be explicitly started.
func (s *SessionService) AdvanceQuestion(ctx context.Context, code, callerID string) (*domain.LiveSession, error) {
	quiz, fetched := domain.Quiz{}, false
	return s.sessions.Update(ctx, code, func(session *domain.LiveSession) error {
		if err := s.instructorGate(session, callerID); err != nil {
			return err
		}
		if !fetched {
			var err error
			if quiz, err = s.quizzes.GetQuiz(ctx, session.QuizID); err != nil {
				return err
			}
			fetched = true
		}
		if session.CurrentQuestionIndex >= len(quiz.Questions)-1 {
			return domain.ErrNoMoreQuestions
		}
		session.CurrentQuestionIndex++
		session.QuestionStarted = false
		session.QuestionStartTime = nil
		return nil
	})
}

// EndSession terminates the session. Ending an already-ended session is a
// no-op success, so duplicate instructor clicks can't double-harm.
func (s *SessionService) EndSession(ctx context.Context, code, callerID string) (*domain.LiveSession, error) {
	return s.sessions.Update(ctx, code, func(session *domain.LiveSession) error {
		if session.InstructorID != callerID {
			return domain.ErrNotInstructor
		}
		if !session.IsActive {
			return nil
		}
		now := s.now()
		session.IsActive = false
		session.QuestionStarted = false
		session.QuestionStartTime = nil
		session.EndedAt = &now
		return nil
	})
}

// SubmitResult is the outcome of a single answer submission.
type SubmitResult struct {
	IsCorrect bool `json:"isCorrect"`
	Score     int  `json:"score"`
}

// SubmitAnswer validates and records one answer. Validation order is fixed
// so error precedence stays deterministic: session existence, participant
// membership, session active, current question, not yet answered, index
// bounds. answerIndex may be domain.NoAnswer to record a timeout.
func (s *SessionService) SubmitAnswer(ctx context.Context, code, userID string, questionIndex, answerIndex int) (SubmitResult, error) {
	var result SubmitResult
	_, err := s.sessions.Update(ctx, code, func(session *domain.LiveSession) error {
		participant := session.Participant(userID)
		if participant == nil {
			return domain.ErrParticipantNotFound
		}
		if !session.IsActive {
			return domain.ErrSessionNotActive
		}
		if questionIndex != session.CurrentQuestionIndex {
			return domain.ErrNotCurrentQuestion
		}
		if participant.HasAnswered(questionIndex) {
			return domain.ErrAlreadyAnswered
		}

		quiz, err := s.quizzes.GetQuiz(ctx, session.QuizID)
		if err != nil {
			return err
		}
		if questionIndex < 0 || questionIndex >= len(quiz.Questions) {
			return domain.ErrQuestionIndexOutOfRange
		}
		question := quiz.Questions[questionIndex]
		if answerIndex != domain.NoAnswer && (answerIndex < 0 || answerIndex >= len(question.Options)) {
			return domain.ErrAnswerIndexOutOfRange
		}

		correct := answerIndex == question.CorrectAnswer
		participant.Answers = append(participant.Answers, domain.Answer{
			QuestionIndex: questionIndex,
			AnswerIndex:   answerIndex,
			IsCorrect:     correct,
			AnsweredAt:    s.now(),
		})
		if correct {
			participant.Score++
		}
		result = SubmitResult{IsCorrect: correct, Score: participant.Score}
		return nil
	})
	if err != nil {
		return SubmitResult{}, err
	}
	return result, nil
}

func (s *SessionService) instructorGate(session *domain.LiveSession, callerID string) error {
	if session.InstructorID != callerID {
		return domain.ErrNotInstructor
	}
	if !session.IsActive {
		return domain.ErrSessionNotActive
	}
	return nil
}
