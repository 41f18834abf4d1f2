package handler

import (
	"time"

	"go-stockbook/internal/model"
	"go-stockbook/internal/repository"
	"go-stockbook/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type TransactionHandler struct {
	posting service.PostingService
	reports service.ReportService
}

func NewTransactionHandler(posting service.PostingService, reports service.ReportService) *TransactionHandler {
	return &TransactionHandler{posting: posting, reports: reports}
}

// PostTransaction records a sale or purchase, adjusting stock and
// writing the ledger row atomically
// POST /api/v1/transactions
func (h *TransactionHandler) PostTransaction(c *fiber.Ctx) error {
	var input service.PostTransactionInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	transaction, err := h.posting.PostTransaction(c.UserContext(), businessID(c), input)
	if err != nil {
		return fail(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "Transaction recorded", "data": transaction})
}

// GetTransactions lists ledger entries, newest first
// Query params: kind, contact_id, from, to, page, limit
func (h *TransactionHandler) GetTransactions(c *fiber.Ctx) error {
	filter, err := transactionFilter(c, 20)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	transactions, total, err := h.reports.GetTransactionReport(c.UserContext(), businessID(c), filter)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"data": transactions, "total": total, "page": filter.Page, "limit": filter.Limit})
}

func (h *TransactionHandler) GetTransaction(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}

	transaction, err := h.reports.GetTransaction(c.UserContext(), businessID(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(transaction)
}

func transactionFilter(c *fiber.Ctx, defaultLimit int) (repository.TransactionFilter, error) {
	filter := repository.TransactionFilter{
		Page:  parseIntQuery(c, "page", 1),
		Limit: parseIntQuery(c, "limit", defaultLimit),
	}

	if kind := c.Query("kind"); kind == string(model.TxSale) || kind == string(model.TxPurchase) {
		filter.Kind = model.TransactionKind(kind)
	}
	if contactID := c.Query("contact_id"); contactID != "" {
		id, err := uuid.Parse(contactID)
		if err != nil {
			return filter, fiber.NewError(400, "Invalid contact_id")
		}
		filter.ContactID = id
	}
	if from := c.Query("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return filter, fiber.NewError(400, "Invalid from date, expected YYYY-MM-DD")
		}
		filter.From = t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return filter, fiber.NewError(400, "Invalid to date, expected YYYY-MM-DD")
		}
		// Inclusive end of day
		filter.To = t.Add(24*time.Hour - time.Nanosecond)
	}

	return filter, nil
}
