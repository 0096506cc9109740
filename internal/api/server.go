package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/calvinhuynh14/bridge-pen-pal-sub000/internal/auth"
	"github.com/calvinhuynh14/bridge-pen-pal-sub000/internal/config"
)

func NewServer(cfg *config.Config, log *zap.SugaredLogger, verifier *auth.Verifier, cmd LetterCommands, qry LetterQueries, rep ReportRecorder, rdb *redis.Client) *fiber.App {
	app := fiber.New()
	app.Use(Recovery(log))
	app.Use(RequestLogger(log))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	h := NewHandlers(cmd, qry, rep, log)
	limit := NewRateLimiter(rdb, "rl:letters", cfg.App.Rate, time.Minute).Middleware()

	root := app.Group("", JWTAuth(verifier))

	// /letters/open and /letters/received|sent must register before /letters/:id
	root.Get("/letters/open", h.openLetters)
	root.Get("/letters/received", h.receivedLetters)
	root.Get("/letters/sent", h.sentLetters)
	root.Post("/letters/:id/claim", limit, h.claimLetter)
	root.Post("/letters/:id/report", limit, h.reportLetter)
	root.Post("/letters", limit, h.sendLetter)
	root.Get("/letters/:id", h.getLetter)
	root.Get("/correspondence/:penPalId", h.correspondence)
	root.Get("/pen-pals", h.penPals)

	return app
}
