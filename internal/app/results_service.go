package app

import (
	"context"
	"math"
	"sort"

	"live-quiz-service/internal/domain"
)

// UserDirectory resolves user identity owned by an external collaborator.
type UserDirectory interface {
	DisplayName(ctx context.Context, userID string) (string, error)
}

// ResultsService is the read side: list, detail, scores, and results
// aggregation. It never mutates sessions.
type ResultsService struct {
	sessions SessionRepository
	quizzes  QuizRepository
	users    UserDirectory
}

func NewResultsService(sessions SessionRepository, quizzes QuizRepository, users UserDirectory) *ResultsService {
	return &ResultsService{sessions: sessions, quizzes: quizzes, users: users}
}

// GetActiveSessions lists every active session joined with its quiz title.
func (s *ResultsService) GetActiveSessions(ctx context.Context) ([]SessionSummary, error) {
	sessions, err := s.sessions.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	summaries := make([]SessionSummary, 0, len(sessions))
	for _, session := range sessions {
		title := ""
		if quiz, err := s.quizzes.GetQuiz(ctx, session.QuizID); err == nil {
			title = quiz.Title
		}
		summaries = append(summaries, summarize(session, title))
	}
	return summaries, nil
}

// GetSessionDetail returns the polled projection for a session. The current
// question payload is included only while the question is started, so
// clients cannot pre-fetch upcoming questions; the answer-bearing quiz is
// included only for the owning instructor.
func (s *ResultsService) GetSessionDetail(ctx context.Context, code, callerID string) (SessionDetail, error) {
	session, err := s.sessions.Get(ctx, code)
	if err != nil {
		return SessionDetail{}, err
	}
	quiz, err := s.quizzes.GetQuiz(ctx, session.QuizID)
	if err != nil {
		return SessionDetail{}, err
	}

	detail := SessionDetail{
		SessionCode:          session.SessionCode,
		QuizID:               session.QuizID,
		QuizTitle:            quiz.Title,
		InstructorID:         session.InstructorID,
		IsActive:             session.IsActive,
		CurrentQuestionIndex: session.CurrentQuestionIndex,
		QuestionStarted:      session.QuestionStarted,
		QuestionStartTime:    session.QuestionStartTime,
		TotalQuestions:       len(quiz.Questions),
		Participants:         make([]ParticipantView, 0, len(session.Participants)),
		CreatedAt:            session.CreatedAt,
		EndedAt:              session.EndedAt,
	}
	for _, p := range session.Participants {
		detail.Participants = append(detail.Participants, ParticipantView{
			UserID:   p.UserID,
			Score:    p.Score,
			Answered: len(p.Answers),
		})
	}
	if session.QuestionStarted && session.CurrentQuestionIndex < len(quiz.Questions) {
		q := quiz.Questions[session.CurrentQuestionIndex]
		detail.CurrentQuestion = &QuestionView{
			Index:     session.CurrentQuestionIndex,
			Text:      q.Text,
			Options:   q.Options,
			TimeLimit: q.TimeLimitSeconds(),
		}
	}
	if callerID == session.InstructorID {
		detail.Quiz = &quiz
	}
	return detail, nil
}

// ParticipantScore returns the caller's running score in a session.
func (s *ResultsService) ParticipantScore(ctx context.Context, code, userID string) (ScoreView, error) {
	session, err := s.sessions.Get(ctx, code)
	if err != nil {
		return ScoreView{}, err
	}
	participant := session.Participant(userID)
	if participant == nil {
		return ScoreView{}, domain.ErrParticipantNotFound
	}
	return ScoreView{Correct: participant.Score, Total: len(participant.Answers)}, nil
}

// GetResults builds the leaderboard and, when the caller is a participant,
// their per-question review sheet.
func (s *ResultsService) GetResults(ctx context.Context, code, callerID string) (SessionResults, error) {
	session, err := s.sessions.Get(ctx, code)
	if err != nil {
		return SessionResults{}, err
	}
	quiz, err := s.quizzes.GetQuiz(ctx, session.QuizID)
	if err != nil {
		return SessionResults{}, err
	}
	total := len(quiz.Questions)

	// Stable sort over the join-ordered slice keeps ties deterministic.
	ranked := make([]domain.Participant, len(session.Participants))
	copy(ranked, session.Participants)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	leaderboard := make([]LeaderboardEntry, 0, len(ranked))
	for i, p := range ranked {
		leaderboard = append(leaderboard, LeaderboardEntry{
			Rank:           i + 1,
			UserID:         p.UserID,
			DisplayName:    s.displayName(ctx, p.UserID),
			Score:          p.Score,
			TotalQuestions: total,
			Percentage:     percentage(p.Score, total),
		})
	}

	results := SessionResults{
		Session:     summarize(session, quiz.Title),
		Leaderboard: leaderboard,
	}
	if participant := session.Participant(callerID); participant != nil {
		results.UserResults = s.userResults(ctx, participant, quiz)
	}
	return results, nil
}

func (s *ResultsService) userResults(ctx context.Context, participant *domain.Participant, quiz domain.Quiz) *UserResults {
	total := len(quiz.Questions)
	out := &UserResults{
		UserID:         participant.UserID,
		DisplayName:    s.displayName(ctx, participant.UserID),
		Score:          participant.Score,
		TotalQuestions: total,
		Percentage:     percentage(participant.Score, total),
		Answers:        make([]ReviewRecord, 0, len(participant.Answers)),
	}
	for _, answer := range participant.Answers {
		if answer.QuestionIndex < 0 || answer.QuestionIndex >= total {
			continue
		}
		q := quiz.Questions[answer.QuestionIndex]
		out.Answers = append(out.Answers, ReviewRecord{
			QuestionText:   q.Text,
			Options:        q.Options,
			SelectedAnswer: optionText(q, answer.AnswerIndex),
			CorrectAnswer:  optionText(q, q.CorrectAnswer),
			IsCorrect:      answer.IsCorrect,
		})
	}
	return out
}

func (s *ResultsService) displayName(ctx context.Context, userID string) string {
	if s.users == nil {
		return userID
	}
	name, err := s.users.DisplayName(ctx, userID)
	if err != nil || name == "" {
		return userID
	}
	return name
}

func summarize(session *domain.LiveSession, title string) SessionSummary {
	return SessionSummary{
		SessionCode:      session.SessionCode,
		QuizID:           session.QuizID,
		QuizTitle:        title,
		IsActive:         session.IsActive,
		ParticipantCount: len(session.Participants),
		CreatedAt:        session.CreatedAt,
		EndedAt:          session.EndedAt,
	}
}

func percentage(score, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(total) * 100))
}

func optionText(q domain.Question, index int) string {
	if index < 0 || index >= len(q.Options) {
		return "No answer"
	}
	return q.Options[index]
}
