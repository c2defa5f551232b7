package http

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
)

// SetupRoutes registers the live-session surface on the app. Every session
// route requires a bearer token; session-control routes additionally require
// the instructor role.
func SetupRoutes(app *fiber.App, handler *SessionHandler, jwtSecret string) {
	app.Use(requestLogger())

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	auth := RequireAuth(jwtSecret)
	instructor := RequireInstructor()

	sessions := app.Group("/live-sessions", auth)
	sessions.Post("/", instructor, handler.CreateSession)
	sessions.Get("/", handler.ListSessions)
	sessions.Get("/:code", handler.GetSession)
	sessions.Post("/:code/join", handler.Join)
	sessions.Post("/:code/start-question", instructor, handler.StartQuestion)
	sessions.Post("/:code/end-question", instructor, handler.EndQuestion)
	sessions.Post("/:code/next-question", instructor, handler.NextQuestion)
	sessions.Post("/:code/submit-answer", handler.SubmitAnswer)
	sessions.Post("/:code/answer", handler.SubmitAnswer)
	sessions.Put("/:code/end", instructor, handler.EndSession)
	sessions.Get("/:code/score", handler.GetScore)
	sessions.Get("/:code/results", handler.GetResults)
}

func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		log.Printf("%s %s %d %s", c.Method(), c.Path(), c.Response().StatusCode(), time.Since(start))
		return err
	}
}
