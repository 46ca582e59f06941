// Package api exposes the statement parser over HTTP for callers that
// prefer an upload endpoint to spawning the CLI per document.
package api

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ledgerdesk/statement-parser/internal/models"
	"github.com/ledgerdesk/statement-parser/internal/pipeline"
)

const version = "1.0.0"

// Handler holds the HTTP handlers for the API.
type Handler struct {
	Proc *pipeline.Processor
}

// Register sets up the API routes on a fiber app.
func (h *Handler) Register(app *fiber.App) {
	app.Get("/api/health", h.HandleHealth)
	app.Post("/api/parse", h.HandleParse)
}

// NewApp builds a fiber app with the API routes registered.
func NewApp(proc *pipeline.Processor) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit:             32 << 20, // statements are small; 32MB is generous
		DisableStartupMessage: true,
	})
	h := &Handler{Proc: proc}
	h.Register(app)
	return app
}

func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": version,
	})
}

// HandleParse accepts a multipart PDF upload (field "file", optional field
// "hint") and responds with the ParseResult JSON. The uploaded file is
// staged under its original name because account detection reads the
// filename.
func (h *Handler) HandleParse(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "No file uploaded. Use form field 'file'.")
	}
	if !strings.HasSuffix(strings.ToLower(fh.Filename), ".pdf") {
		return badRequest(c, "Only PDF files are supported.")
	}

	dir, err := os.MkdirTemp("", "statement-")
	if err != nil {
		return internalError(c, fmt.Sprintf("Failed to stage upload: %v", err))
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, filepath.Base(fh.Filename))
	if err := c.SaveFile(fh, path); err != nil {
		return internalError(c, fmt.Sprintf("Failed to save upload: %v", err))
	}

	result := h.Proc.Process(path, c.FormValue("hint"))
	if result.Error != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(result)
	}
	return c.JSON(result)
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(errorBody(msg))
}

func internalError(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusInternalServerError).JSON(errorBody(msg))
}

func errorBody(msg string) models.ParseResult {
	return models.ParseResult{
		Transactions: []models.Transaction{},
		Error:        &msg,
	}
}
