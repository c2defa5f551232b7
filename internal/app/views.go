package app

import (
	"time"

	"live-quiz-service/internal/domain"
)

// SessionSummary is the list-view projection: quiz title only, never
// question content, so the list can't leak answers.
type SessionSummary struct {
	SessionCode      string     `json:"sessionCode"`
	QuizID           string     `json:"quizId"`
	QuizTitle        string     `json:"quizTitle"`
	IsActive         bool       `json:"isActive"`
	ParticipantCount int        `json:"participantCount"`
	CreatedAt        time.Time  `json:"createdAt"`
	EndedAt          *time.Time `json:"endedAt,omitempty"`
}

// QuestionView is a question as shown to participants: the correct-answer
// index is never part of this shape.
type QuestionView struct {
	Index     int      `json:"index"`
	Text      string   `json:"text"`
	Options   []string `json:"options"`
	TimeLimit int      `json:"timeLimit"`
}

// ParticipantView is a participant as shown in the detail payload.
type ParticipantView struct {
	UserID   string `json:"userId"`
	Score    int    `json:"score"`
	Answered int    `json:"answered"`
}

// SessionDetail is the polled projection of a session. CurrentQuestion is
// present only while the question is started; Quiz (with answer keys) is
// present only for the owning instructor.
type SessionDetail struct {
	SessionCode          string            `json:"sessionCode"`
	QuizID               string            `json:"quizId"`
	QuizTitle            string            `json:"quizTitle"`
	InstructorID         string            `json:"instructorId"`
	IsActive             bool              `json:"isActive"`
	CurrentQuestionIndex int               `json:"currentQuestionIndex"`
	QuestionStarted      bool              `json:"questionStarted"`
	QuestionStartTime    *time.Time        `json:"questionStartTime"`
	TotalQuestions       int               `json:"totalQuestions"`
	CurrentQuestion      *QuestionView     `json:"currentQuestion,omitempty"`
	Participants         []ParticipantView `json:"participants"`
	Quiz                 *domain.Quiz      `json:"quiz,omitempty"`
	CreatedAt            time.Time         `json:"createdAt"`
	EndedAt              *time.Time        `json:"endedAt,omitempty"`
}

// ScoreView is a participant's running score.
type ScoreView struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// ReviewRecord joins one recorded answer with its originating question for
// post-hoc review.
type ReviewRecord struct {
	QuestionText   string   `json:"questionText"`
	Options        []string `json:"options"`
	SelectedAnswer string   `json:"selectedAnswer"`
	CorrectAnswer  string   `json:"correctAnswer"`
	IsCorrect      bool     `json:"isCorrect"`
}

// LeaderboardEntry ranks one participant. Ranks are consecutive 1-based
// positions; equal scores keep join order.
type LeaderboardEntry struct {
	Rank           int    `json:"rank"`
	UserID         string `json:"userId"`
	DisplayName    string `json:"displayName"`
	Score          int    `json:"score"`
	TotalQuestions int    `json:"totalQuestions"`
	Percentage     int    `json:"percentage"`
}

// UserResults is the caller's own detailed result sheet.
type UserResults struct {
	UserID         string         `json:"userId"`
	DisplayName    string         `json:"displayName"`
	Score          int            `json:"score"`
	TotalQuestions int            `json:"totalQuestions"`
	Percentage     int            `json:"percentage"`
	Answers        []ReviewRecord `json:"answers"`
}

// SessionResults is the full results payload.
type SessionResults struct {
	Session     SessionSummary     `json:"session"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
	UserResults *UserResults       `json:"userResults,omitempty"`
}
