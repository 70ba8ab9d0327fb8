// Package api exposes the pipeline over HTTP for the upload UI and for
// batch clients.
package api

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/ledgerlens/statement-extractor/internal/logging"
	"github.com/ledgerlens/statement-extractor/internal/models"
	"github.com/ledgerlens/statement-extractor/internal/pipeline"
)

const maxUploadBytes = 32 << 20

// Handler serves statement parsing over HTTP.
type Handler struct {
	Pipeline *pipeline.Pipeline
}

// Router builds the fiber app with all routes registered.
func (h *Handler) Router() *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit:             maxUploadBytes,
		DisableStartupMessage: true,
	})

	app.Get("/api/health", h.health)
	app.Post("/api/parse", h.parse)
	return app
}

func (h *Handler) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// parse accepts a multipart "file" field holding one PDF and returns the
// parsed result. Balance sentinels (0.0 means "not found") are translated
// to JSON null so clients never mistake absence for a zero balance.
func (h *Handler) parse(c *fiber.Ctx) error {
	log := logging.Component("api")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "multipart field 'file' is required",
		})
	}

	f, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "could not open uploaded file",
		})
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "could not read uploaded file",
		})
	}

	log.WithFields(map[string]interface{}{
		"filename": fileHeader.Filename,
		"bytes":    len(data),
	}).Info("parse request")

	result := h.Pipeline.Process(c.Context(), models.RawDocument{
		Data:     data,
		Filename: fileHeader.Filename,
	})
	return c.JSON(toResponse(result))
}

// Response is the wire shape of a processed document. It mirrors
// models.Result except that balance fields are nullable.
type Response struct {
	Format       models.DetectedFormat      `json:"format"`
	Transactions []models.ParsedTransaction `json:"transactions"`
	Balances     BalanceResponse            `json:"balances"`
	TextBalances BalanceResponse            `json:"textBalances"`
	OCRBalances  BalanceResponse            `json:"ocrBalances"`
	Warnings     []models.Warning           `json:"warnings,omitempty"`
}

// BalanceResponse carries nullable balances; null means the value was not
// found by any extraction path.
type BalanceResponse struct {
	Opening *float64 `json:"opening"`
	Closing *float64 `json:"closing"`
}

func toResponse(r *models.Result) Response {
	txns := r.Transactions
	if txns == nil {
		txns = []models.ParsedTransaction{}
	}
	return Response{
		Format:       r.Format,
		Transactions: txns,
		Balances:     toBalanceResponse(r.Balances),
		TextBalances: toBalanceResponse(r.TextBalances),
		OCRBalances:  toBalanceResponse(r.OCRBalances),
		Warnings:     r.Warnings,
	}
}

func toBalanceResponse(p models.BalancePair) BalanceResponse {
	return BalanceResponse{
		Opening: nullableAmount(p.Opening),
		Closing: nullableAmount(p.Closing),
	}
}

func nullableAmount(v float64) *float64 {
	if v == 0 {
		return nil
	}
	return &v
}
