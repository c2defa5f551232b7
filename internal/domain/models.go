package domain

import "time"

// NoAnswer is the sentinel answer index recorded when a participant's time
// ran out without a selection. It always scores as incorrect.
const NoAnswer = -1

// DefaultTimeLimit is applied to questions that don't carry their own limit.
const DefaultTimeLimit = 30

// Question is a single multiple-choice question. CorrectAnswer indexes into
// Options and must be in range.
type Question struct {
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	TimeLimit     int      `json:"timeLimit"` // seconds; zero means DefaultTimeLimit
}

// TimeLimitSeconds returns the question's time limit with the default applied.
func (q Question) TimeLimitSeconds() int {
	if q.TimeLimit <= 0 {
		return DefaultTimeLimit
	}
	return q.TimeLimit
}

// Quiz is an ordered set of questions. Quiz content is owned by an external
// store and is immutable for the lifetime of a session.
type Quiz struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	CreatedBy string     `json:"createdBy,omitempty"`
	Questions []Question `json:"questions"`
}

// Answer records one participant submission for one question index.
type Answer struct {
	QuestionIndex int       `json:"questionIndex"`
	AnswerIndex   int       `json:"answerIndex"`
	IsCorrect     bool      `json:"isCorrect"`
	AnsweredAt    time.Time `json:"answeredAt"`
}

// Participant is a user who joined a live session. Answers are append-only,
// at most one per question index.
type Participant struct {
	UserID  string   `json:"userId"`
	Score   int      `json:"score"`
	Answers []Answer `json:"answers"`
}

// HasAnswered reports whether an answer is already recorded for the index.
func (p *Participant) HasAnswered(questionIndex int) bool {
	for _, a := range p.Answers {
		if a.QuestionIndex == questionIndex {
			return true
		}
	}
	return false
}

// LiveSession is the server-authoritative record of an instructor-run
// session. All mutation goes through atomic read-modify-write against the
// session repository, keyed by SessionCode.
type LiveSession struct {
	SessionCode          string        `json:"sessionCode"`
	QuizID               string        `json:"quizId"`
	InstructorID         string        `json:"instructorId"`
	IsActive             bool          `json:"isActive"`
	CurrentQuestionIndex int           `json:"currentQuestionIndex"`
	QuestionStarted      bool          `json:"questionStarted"`
	QuestionStartTime    *time.Time    `json:"questionStartTime"`
	Participants         []Participant `json:"participants"`
	CreatedAt            time.Time     `json:"createdAt"`
	EndedAt              *time.Time    `json:"endedAt"`
}

// Participant returns the entry for userID, or nil if the user never joined.
func (s *LiveSession) Participant(userID string) *Participant {
	for i := range s.Participants {
		if s.Participants[i].UserID == userID {
			return &s.Participants[i]
		}
	}
	return nil
}

// Clone returns a deep copy, so repository reads never alias stored state.
func (s *LiveSession) Clone() *LiveSession {
	out := *s
	if s.QuestionStartTime != nil {
		t := *s.QuestionStartTime
		out.QuestionStartTime = &t
	}
	if s.EndedAt != nil {
		t := *s.EndedAt
		out.EndedAt = &t
	}
	out.Participants = make([]Participant, len(s.Participants))
	for i, p := range s.Participants {
		cp := p
		cp.Answers = append([]Answer(nil), p.Answers...)
		out.Participants[i] = cp
	}
	return &out
}
