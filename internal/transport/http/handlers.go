package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"live-quiz-service/internal/app"
	"live-quiz-service/internal/domain"
)

// SessionHandler exposes the live-session state machine and its read side
// over HTTP.
type SessionHandler struct {
	sessions *app.SessionService
	results  *app.ResultsService
}

func NewSessionHandler(sessions *app.SessionService, results *app.ResultsService) *SessionHandler {
	return &SessionHandler{sessions: sessions, results: results}
}

type createSessionRequest struct {
	QuizID      string `json:"quizId"`
	SessionCode string `json:"sessionCode"`
}

type submitAnswerRequest struct {
	QuestionIndex *int `json:"questionIndex"`
	AnswerIndex   *int `json:"answerIndex"`
}

func (h *SessionHandler) CreateSession(c *fiber.Ctx) error {
	var req createSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.QuizID == "" {
		// matches the content store's behavior for an unresolvable quiz
		return respondError(c, domain.ErrQuizNotFound)
	}
	session, err := h.sessions.Create(c.Context(), req.QuizID, callerID(c), req.SessionCode)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(session)
}

func (h *SessionHandler) ListSessions(c *fiber.Ctx) error {
	summaries, err := h.results.GetActiveSessions(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(summaries)
}

func (h *SessionHandler) GetSession(c *fiber.Ctx) error {
	detail, err := h.results.GetSessionDetail(c.Context(), c.Params("code"), callerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(detail)
}

func (h *SessionHandler) Join(c *fiber.Ctx) error {
	session, err := h.sessions.Join(c.Context(), c.Params("code"), callerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message":     "joined session",
		"sessionCode": session.SessionCode,
	})
}

func (h *SessionHandler) StartQuestion(c *fiber.Ctx) error {
	session, err := h.sessions.StartQuestion(c.Context(), c.Params("code"), callerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message":              "question started",
		"currentQuestionIndex": session.CurrentQuestionIndex,
		"questionStartTime":    session.QuestionStartTime,
	})
}

func (h *SessionHandler) EndQuestion(c *fiber.Ctx) error {
	session, err := h.sessions.EndQuestion(c.Context(), c.Params("code"), callerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message":              "question ended",
		"currentQuestionIndex": session.CurrentQuestionIndex,
	})
}

func (h *SessionHandler) NextQuestion(c *fiber.Ctx) error {
	session, err := h.sessions.AdvanceQuestion(c.Context(), c.Params("code"), callerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message":              "moved to next question",
		"currentQuestionIndex": session.CurrentQuestionIndex,
	})
}

func (h *SessionHandler) SubmitAnswer(c *fiber.Ctx) error {
	var req submitAnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.QuestionIndex == nil || req.AnswerIndex == nil {
		return badRequest(c, "questionIndex and answerIndex are required")
	}
	result, err := h.sessions.SubmitAnswer(c.Context(), c.Params("code"), callerID(c), *req.QuestionIndex, *req.AnswerIndex)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

func (h *SessionHandler) EndSession(c *fiber.Ctx) error {
	session, err := h.sessions.EndSession(c.Context(), c.Params("code"), callerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "session ended",
		"endedAt": session.EndedAt,
	})
}

func (h *SessionHandler) GetScore(c *fiber.Ctx) error {
	score, err := h.results.ParticipantScore(c.Context(), c.Params("code"), callerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(score)
}

func (h *SessionHandler) GetResults(c *fiber.Ctx) error {
	results, err := h.results.GetResults(c.Context(), c.Params("code"), callerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(results)
}

// respondError maps domain errors to the status-code conventions: 404
// unknown session/quiz, 403 ownership/membership violations, 400 wrong
// lifecycle phase, duplicates, and bad indexes. Anything unrecognized is an
// infrastructure failure and stays a generic 500.
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrQuizNotFound), errors.Is(err, domain.ErrSessionNotFound):
		return c.Status(fiber.StatusNotFound).JSON(errorBody("not_found", err.Error()))
	case errors.Is(err, domain.ErrNotInstructor), errors.Is(err, domain.ErrParticipantNotFound):
		return c.Status(fiber.StatusForbidden).JSON(errorBody("forbidden", err.Error()))
	case errors.Is(err, domain.ErrSessionNotActive),
		errors.Is(err, domain.ErrNotCurrentQuestion),
		errors.Is(err, domain.ErrNoMoreQuestions):
		return c.Status(fiber.StatusBadRequest).JSON(errorBody("invalid_state", err.Error()))
	case errors.Is(err, domain.ErrAlreadyJoined),
		errors.Is(err, domain.ErrAlreadyAnswered),
		errors.Is(err, domain.ErrSessionCodeInUse):
		return c.Status(fiber.StatusBadRequest).JSON(errorBody("conflict", err.Error()))
	case errors.Is(err, domain.ErrQuestionIndexOutOfRange),
		errors.Is(err, domain.ErrAnswerIndexOutOfRange):
		return c.Status(fiber.StatusBadRequest).JSON(errorBody("invalid_argument", err.Error()))
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(errorBody("internal", "internal server error"))
	}
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(errorBody("invalid_argument", message))
}

func errorBody(kind, message string) fiber.Map {
	return fiber.Map{"kind": kind, "message": message}
}
