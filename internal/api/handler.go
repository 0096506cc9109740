package api

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/calvinhuynh14/bridge-pen-pal-sub000/internal/domain"
	"github.com/calvinhuynh14/bridge-pen-pal-sub000/internal/service"
)

type LetterCommands interface {
	Create(ctx context.Context, actor domain.Actor, in service.CreateLetterInput) (*domain.Letter, error)
	Get(ctx context.Context, actor domain.Actor, id string) (*domain.Letter, error)
	Claim(ctx context.Context, actor domain.Actor, id string) error
}

type LetterQueries interface {
	OpenFeed(ctx context.Context, actor domain.Actor) ([]*domain.Letter, error)
	Received(ctx context.Context, actor domain.Actor) ([]*domain.Letter, error)
	Sent(ctx context.Context, actor domain.Actor) ([]*domain.Letter, error)
	Correspondence(ctx context.Context, actor domain.Actor, req service.CorrespondenceRequest) (*service.CorrespondencePage, error)
	PenPals(ctx context.Context, actor domain.Actor, req service.PenPalRequest) (*service.PenPalPage, error)
}

type ReportRecorder interface {
	Report(ctx context.Context, actor domain.Actor, letterID, reason string) error
}

type Handlers struct {
	cmd LetterCommands
	qry LetterQueries
	rep ReportRecorder
	log *zap.SugaredLogger
}

func NewHandlers(cmd LetterCommands, qry LetterQueries, rep ReportRecorder, log *zap.SugaredLogger) *Handlers {
	return &Handlers{cmd: cmd, qry: qry, rep: rep, log: log}
}

func (h *Handlers) sendLetter(c *fiber.Ctx) error {
	var req struct {
		Content        string `json:"content"`
		ReceiverID     string `json:"receiver_id"`
		IsOpenLetter   bool   `json:"is_open_letter"`
		ParentLetterID string `json:"parent_letter_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, h.log, domain.NewValidationError("body", "invalid request body"))
	}
	l, err := h.cmd.Create(c.Context(), actorFrom(c), service.CreateLetterInput{
		Content:        req.Content,
		ReceiverID:     req.ReceiverID,
		IsOpenLetter:   req.IsOpenLetter,
		ParentLetterID: req.ParentLetterID,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":   "letter sent",
		"letter_id": l.ID,
	})
}

func (h *Handlers) getLetter(c *fiber.Ctx) error {
	l, err := h.cmd.Get(c.Context(), actorFrom(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"letter": l})
}

func (h *Handlers) claimLetter(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.cmd.Claim(c.Context(), actorFrom(c), id); err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"message":   "letter claimed",
		"letter_id": id,
	})
}

func (h *Handlers) reportLetter(c *fiber.Ctx) error {
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, h.log, domain.NewValidationError("body", "invalid request body"))
	}
	if err := h.rep.Report(c.Context(), actorFrom(c), c.Params("id"), req.Reason); err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "report submitted"})
}

func (h *Handlers) openLetters(c *fiber.Ctx) error {
	letters, err := h.qry.OpenFeed(c.Context(), actorFrom(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"letters": letters, "count": len(letters)})
}

func (h *Handlers) receivedLetters(c *fiber.Ctx) error {
	letters, err := h.qry.Received(c.Context(), actorFrom(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"letters": letters, "count": len(letters)})
}

func (h *Handlers) sentLetters(c *fiber.Ctx) error {
	letters, err := h.qry.Sent(c.Context(), actorFrom(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"letters": letters, "count": len(letters)})
}

func (h *Handlers) correspondence(c *fiber.Ctx) error {
	page, err := h.qry.Correspondence(c.Context(), actorFrom(c), service.CorrespondenceRequest{
		CounterpartID: c.Params("penPalId"),
		Page:          c.QueryInt("page", 1),
		PerPage:       c.QueryInt("per_page", 10),
		Search:        c.Query("search"),
		Filter:        c.Query("filter", "all"),
		Sort:          c.Query("sort", "newest"),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"messages": page.Messages, "pagination": page.Pagination})
}

func (h *Handlers) penPals(c *fiber.Ctx) error {
	page, err := h.qry.PenPals(c.Context(), actorFrom(c), service.PenPalRequest{
		Page:    c.QueryInt("page", 1),
		PerPage: c.QueryInt("per_page", 10),
		Search:  c.Query("search"),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"pen_pals": page.PenPals, "pagination": page.Pagination})
}
