package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"live-quiz-service/internal/app"
	"live-quiz-service/internal/domain"
	"live-quiz-service/internal/infra/memory"
)

func TestSessionDetailHidesUnstartedQuestion(t *testing.T) {
	ctx := context.Background()
	sessions, results := newResultsFixture()
	mustCreate(t, sessions, "room-1")

	detail, err := results.GetSessionDetail(ctx, "room-1", "u1")
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if detail.CurrentQuestion != nil {
		t.Fatalf("expected no current question before start, got %+v", detail.CurrentQuestion)
	}
	if detail.CurrentQuestionIndex != 0 || detail.TotalQuestions != 3 {
		t.Fatalf("expected defined index and total, got %+v", detail)
	}
	if detail.Quiz != nil {
		t.Fatalf("answer-bearing quiz must not reach non-owners")
	}

	if _, err := sessions.StartQuestion(ctx, "room-1", "instr"); err != nil {
		t.Fatalf("start: %v", err)
	}
	detail, err = results.GetSessionDetail(ctx, "room-1", "u1")
	if err != nil {
		t.Fatalf("detail after start: %v", err)
	}
	if detail.CurrentQuestion == nil || detail.CurrentQuestion.Text != "1+1?" {
		t.Fatalf("expected current question payload, got %+v", detail.CurrentQuestion)
	}
	if detail.CurrentQuestion.TimeLimit != 20 {
		t.Fatalf("expected time limit 20, got %d", detail.CurrentQuestion.TimeLimit)
	}
}

func TestSessionDetailIncludesQuizForOwnerOnly(t *testing.T) {
	ctx := context.Background()
	sessions, results := newResultsFixture()
	mustCreate(t, sessions, "room-1")

	detail, err := results.GetSessionDetail(ctx, "room-1", "instr")
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if detail.Quiz == nil || len(detail.Quiz.Questions) != 3 {
		t.Fatalf("expected full quiz for owner, got %+v", detail.Quiz)
	}
}

func TestActiveSessionListCarriesTitleOnly(t *testing.T) {
	ctx := context.Background()
	sessions, results := newResultsFixture()
	mustCreate(t, sessions, "room-1")
	mustCreate(t, sessions, "room-2")
	if _, err := sessions.EndSession(ctx, "room-2", "instr"); err != nil {
		t.Fatalf("end: %v", err)
	}

	list, err := results.GetActiveSessions(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].SessionCode != "room-1" {
		t.Fatalf("expected only room-1 active, got %+v", list)
	}
	if list[0].QuizTitle != "General Knowledge" {
		t.Fatalf("expected quiz title join, got %+v", list[0])
	}
}

func TestParticipantScore(t *testing.T) {
	ctx := context.Background()
	sessions, results := newResultsFixture()
	mustCreate(t, sessions, "room-1")
	mustJoin(t, sessions, "room-1", "u1")
	if _, err := sessions.SubmitAnswer(ctx, "room-1", "u1", 0, 1); err != nil {
		t.Fatalf("submit: %v", err)
	}

	score, err := results.ParticipantScore(ctx, "room-1", "u1")
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if score.Correct != 1 || score.Total != 1 {
		t.Fatalf("expected 1/1, got %+v", score)
	}

	if _, err := results.ParticipantScore(ctx, "room-1", "stranger"); !errors.Is(err, domain.ErrParticipantNotFound) {
		t.Fatalf("expected participant gate, got %v", err)
	}
}

func TestResultsLeaderboardRanksAndTieBreak(t *testing.T) {
	ctx := context.Background()
	sessions, results := newResultsFixture()
	mustCreate(t, sessions, "room-1")
	for _, u := range []string{"u1", "u2", "u3"} {
		mustJoin(t, sessions, "room-1", u)
	}

	// u2 scores on question 0; u1 and u3 tie at zero.
	if _, err := sessions.SubmitAnswer(ctx, "room-1", "u2", 0, 1); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := sessions.SubmitAnswer(ctx, "room-1", "u1", 0, 0); err != nil {
		t.Fatalf("submit: %v", err)
	}

	res, err := results.GetResults(ctx, "room-1", "u1")
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if len(res.Leaderboard) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(res.Leaderboard))
	}
	want := []struct {
		rank int
		user string
	}{{1, "u2"}, {2, "u1"}, {3, "u3"}}
	for i, w := range want {
		entry := res.Leaderboard[i]
		if entry.Rank != w.rank || entry.UserID != w.user {
			t.Fatalf("entry %d: expected rank %d user %s, got %+v", i, w.rank, w.user, entry)
		}
	}
	if res.Leaderboard[0].Percentage != 33 {
		t.Fatalf("expected 1/3 to round to 33%%, got %d", res.Leaderboard[0].Percentage)
	}
	if res.Leaderboard[0].DisplayName != "Bob" {
		t.Fatalf("expected directory name, got %q", res.Leaderboard[0].DisplayName)
	}
}

func TestResultsUserReviewRecords(t *testing.T) {
	ctx := context.Background()
	sessions, results := newResultsFixture()
	mustCreate(t, sessions, "room-1")
	mustJoin(t, sessions, "room-1", "u1")

	if _, err := sessions.SubmitAnswer(ctx, "room-1", "u1", 0, 0); err != nil { // wrong
		t.Fatalf("submit: %v", err)
	}
	if _, err := sessions.AdvanceQuestion(ctx, "room-1", "instr"); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if _, err := sessions.SubmitAnswer(ctx, "room-1", "u1", 1, domain.NoAnswer); err != nil {
		t.Fatalf("submit timeout: %v", err)
	}

	res, err := results.GetResults(ctx, "room-1", "u1")
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if res.UserResults == nil || len(res.UserResults.Answers) != 2 {
		t.Fatalf("expected 2 review records, got %+v", res.UserResults)
	}
	first := res.UserResults.Answers[0]
	if first.QuestionText != "1+1?" || first.SelectedAnswer != "1" || first.CorrectAnswer != "2" || first.IsCorrect {
		t.Fatalf("unexpected review record: %+v", first)
	}
	second := res.UserResults.Answers[1]
	if second.SelectedAnswer != "No answer" || second.IsCorrect {
		t.Fatalf("expected timeout review record, got %+v", second)
	}

	// Non-participants get the leaderboard but no personal sheet.
	other, err := results.GetResults(ctx, "room-1", "observer")
	if err != nil {
		t.Fatalf("results for observer: %v", err)
	}
	if other.UserResults != nil {
		t.Fatalf("expected no user results for non-participant")
	}
}

func newResultsFixture() (*app.SessionService, *app.ResultsService) {
	sessions := memory.NewSessionRepository()
	quizzes := memory.NewQuizRepository(memory.NewStaticQuizLoader(testQuizzes()), 5*time.Minute)
	directory := memory.NewStaticUserDirectory(map[string]string{
		"u1": "Alice",
		"u2": "Bob",
	})
	return app.NewSessionService(sessions, quizzes), app.NewResultsService(sessions, quizzes, directory)
}
