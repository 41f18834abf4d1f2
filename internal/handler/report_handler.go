package handler

import (
	"go-stockbook/internal/repository"
	"go-stockbook/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ReportHandler struct {
	service service.ReportService
}

func NewReportHandler(s service.ReportService) *ReportHandler {
	return &ReportHandler{service: s}
}

// GetTransactionReport returns filtered, paginated ledger entries
// Query params: kind, contact_id, from, to, page, limit
func (h *ReportHandler) GetTransactionReport(c *fiber.Ctx) error {
	filter, err := transactionFilter(c, 50)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	transactions, total, err := h.service.GetTransactionReport(c.UserContext(), businessID(c), filter)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"data": transactions, "total": total, "page": filter.Page, "limit": filter.Limit})
}

// GetInventoryReport returns filtered, paginated products
// Query params: search, category, page, limit
func (h *ReportHandler) GetInventoryReport(c *fiber.Ctx) error {
	filter := repository.ProductFilter{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Page:     parseIntQuery(c, "page", 1),
		Limit:    parseIntQuery(c, "limit", 50),
	}

	products, total, err := h.service.GetInventoryReport(c.UserContext(), businessID(c), filter)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"data": products, "total": total, "page": filter.Page, "limit": filter.Limit})
}
