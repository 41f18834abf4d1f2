package handler

import (
	"go-stockbook/internal/model"
	"go-stockbook/internal/repository"
	"go-stockbook/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ContactHandler struct {
	service service.ContactService
}

func NewContactHandler(s service.ContactService) *ContactHandler {
	return &ContactHandler{service: s}
}

func (h *ContactHandler) CreateContact(c *fiber.Ctx) error {
	var input service.CreateContactInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	contact, err := h.service.CreateContact(c.UserContext(), businessID(c), input)
	if err != nil {
		return fail(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": string(contact.Kind) + " added", "data": contact})
}

// GetContacts lists customers/vendors
// Query params: kind, search, page, limit
func (h *ContactHandler) GetContacts(c *fiber.Ctx) error {
	filter := repository.ContactFilter{
		Search: c.Query("search"),
		Page:   parseIntQuery(c, "page", 1),
		Limit:  parseIntQuery(c, "limit", 20),
	}
	if kind := c.Query("kind"); kind == string(model.ContactCustomer) || kind == string(model.ContactVendor) {
		filter.Kind = model.ContactKind(kind)
	}

	contacts, total, err := h.service.GetContacts(c.UserContext(), businessID(c), filter)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"data": contacts, "total": total, "page": filter.Page, "limit": filter.Limit})
}

func (h *ContactHandler) GetContact(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid contact ID"})
	}

	contact, err := h.service.GetContact(c.UserContext(), businessID(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(contact)
}

func (h *ContactHandler) UpdateContact(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid contact ID"})
	}

	var input service.UpdateContactInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	contact, err := h.service.UpdateContact(c.UserContext(), businessID(c), id, input)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"message": "Contact updated", "data": contact})
}

func (h *ContactHandler) DeleteContact(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid contact ID"})
	}

	if err := h.service.DeleteContact(c.UserContext(), businessID(c), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Contact deleted"})
}
