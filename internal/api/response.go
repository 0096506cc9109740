package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/calvinhuynh14/bridge-pen-pal-sub000/internal/domain"
)

// writeError translates the domain error taxonomy to status codes:
// validation 422, not-found 404, authorization 403, conflict and invalid
// state 400. Anything else is a 500 with details kept in the log.
func writeError(c *fiber.Ctx, log *zap.SugaredLogger, err error) error {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "validation failed",
			"errors":  ve.Fields,
		})
	}
	var nf *domain.NotFoundError
	if errors.As(err, &nf) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": nf.Error()})
	}
	var ae *domain.AuthorizationError
	if errors.As(err, &ae) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": ae.Error()})
	}
	var ce *domain.ConflictError
	if errors.As(err, &ce) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": ce.Error()})
	}
	var ise *domain.InvalidStateError
	if errors.As(err, &ise) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": ise.Error()})
	}

	log.Errorw("request failed", "path", c.Path(), "err", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "internal server error"})
}
