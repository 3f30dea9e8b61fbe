// Package api exposes the engine behind an HTTP surface using Fiber,
// matching the teacher's main.go wiring (api.HandleHealth /
// api.HandleConvert registered under app.Group("/api")). The response
// shape is grounded in handler.go's ConvertResponse, generalized from a
// fixed three-bank switch to the profile registry.
package api

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/insightdelivered/bank-statement-converter/internal/bankresolver"
	"github.com/insightdelivered/bank-statement-converter/internal/engine"
	"github.com/insightdelivered/bank-statement-converter/internal/extractor"
	"github.com/insightdelivered/bank-statement-converter/internal/logging"
	"github.com/insightdelivered/bank-statement-converter/internal/profile"
	"github.com/insightdelivered/bank-statement-converter/internal/writer"
)

// Version is reported from /api/health and embedded in convert responses.
const Version = "1.0.0"

// Handler holds the dependencies every route needs: the profile
// registry and a logger. Unlike the teacher's bare package-level
// functions, routes are methods so tests can inject a registry.
type Handler struct {
	Registry *profile.Registry
	Logger   zerolog.Logger
}

// NewHandler builds a Handler from a profile registry and a logger.
func NewHandler(registry *profile.Registry, logger zerolog.Logger) *Handler {
	return &Handler{Registry: registry, Logger: logger}
}

// Register attaches routes to a Fiber router group, mirroring
// main.go's apiGroup.Get("/health")/apiGroup.Post("/convert") wiring.
func (h *Handler) Register(group fiber.Router) {
	group.Get("/health", h.HandleHealth)
	group.Post("/convert", h.HandleConvert)
}

// HandleHealth reports liveness and version, the Fiber equivalent of
// the teacher's handleHealth.
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "version": Version})
}

// convertResponse is the JSON response from /api/convert, structurally
// close to the teacher's ConvertResponse but built from
// writer.JSONResult instead of a raw models.StatementInfo.
type convertResponse struct {
	Success   bool               `json:"success"`
	Error     string             `json:"error,omitempty"`
	Bank      string             `json:"bank,omitempty"`
	RequestID string             `json:"requestId"`
	Result    *writer.JSONResult `json:"result,omitempty"`
	CSV       string             `json:"csv,omitempty"`
}

// HandleConvert accepts a multipart PDF upload, resolves the bank
// profile, runs the engine, and returns JSON plus an embedded CSV
// rendering — the same "always include a ready-to-download CSV"
// behavior as the teacher's handler.
func (h *Handler) HandleConvert(c *fiber.Ctx) error {
	requestID := uuid.NewString()
	log := h.Logger.With().Str("requestId", requestID).Logger()

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, requestID, "no file uploaded; use form field 'file'")
	}
	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".pdf") {
		return writeError(c, fiber.StatusBadRequest, requestID, "only PDF files are supported")
	}

	tmpFile, err := os.CreateTemp("", "statement-*.pdf")
	if err != nil {
		return writeError(c, fiber.StatusInternalServerError, requestID, "failed to create temp file")
	}
	defer os.Remove(tmpFile.Name())
	defer tmpFile.Close()

	src, err := fileHeader.Open()
	if err != nil {
		return writeError(c, fiber.StatusInternalServerError, requestID, "failed to open uploaded file")
	}
	defer src.Close()
	if _, err := io.Copy(tmpFile, src); err != nil {
		return writeError(c, fiber.StatusInternalServerError, requestID, "failed to save uploaded file")
	}
	tmpFile.Close()

	bankParam := c.FormValue("bank")
	includeHeader := c.FormValue("header") != "false"

	pages, textErr := extractor.ExtractText(tmpFile.Name())
	if textErr != nil {
		log.Warn().Err(textErr).Msg("plain-text extraction failed; bank auto-detection will be unavailable")
	}

	var bank *profile.Profile
	if bankParam != "" {
		bank, err = bankresolver.Resolve(bankParam, pages, h.Registry)
	} else {
		bank, err = bankresolver.AutoDetect(pages, h.Registry)
	}
	if err != nil {
		return writeError(c, fiber.StatusUnprocessableEntity, requestID, err.Error())
	}

	stream, _, streamErr := extractor.ExtractTokenStream(tmpFile.Name())
	if streamErr != nil {
		return writeError(c, fiber.StatusUnprocessableEntity, requestID, "pdf extraction failed: "+streamErr.Error())
	}

	ctx, cancel := context.WithTimeout(c.Context(), 30*time.Second)
	defer cancel()

	orchestrator := engine.NewCoreOrchestrator(logging.WarnFunc(log, fileHeader.Filename))
	result, parseErr := orchestrator.Parse(ctx, stream, bank)
	if parseErr != nil {
		return writeError(c, fiber.StatusUnprocessableEntity, requestID, "parsing failed: "+parseErr.Error())
	}

	var csvBuf strings.Builder
	csvWriter := &writer.CSVWriter{IncludeHeader: includeHeader, BankName: bank.Name}
	if err := csvWriter.Write(&csvBuf, result); err != nil {
		return writeError(c, fiber.StatusInternalServerError, requestID, "csv generation failed: "+err.Error())
	}

	jsonResult := writer.ToJSONResult(result)
	return c.JSON(convertResponse{
		Success:   true,
		Bank:      bank.ID,
		RequestID: requestID,
		Result:    &jsonResult,
		CSV:       csvBuf.String(),
	})
}

func writeError(c *fiber.Ctx, status int, requestID, msg string) error {
	return c.Status(status).JSON(convertResponse{Success: false, Error: msg, RequestID: requestID})
}
