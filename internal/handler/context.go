package handler

import (
	"go-stockbook/pkg/apperr"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// businessID reads the tenant id resolved by the auth middleware. It is
// never taken from the request body or query string.
func businessID(c *fiber.Ctx) uuid.UUID {
	id, ok := c.Locals("business_id").(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return id
}

func userID(c *fiber.Ctx) uuid.UUID {
	id, ok := c.Locals("user_id").(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return id
}

// fail maps a typed service error to its HTTP status.
func fail(c *fiber.Ctx, err error) error {
	return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
}

func parseUUID(id string) (uuid.UUID, error) {
	return uuid.Parse(id)
}
