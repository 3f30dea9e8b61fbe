package api

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/insightdelivered/bank-statement-converter/internal/logging"
	"github.com/insightdelivered/bank-statement-converter/internal/profile"
)

func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()
	registry, err := profile.Builtin()
	if err != nil {
		t.Fatalf("building registry: %v", err)
	}
	h := NewHandler(registry, logging.Nop())
	app := fiber.New()
	group := app.Group("/api")
	h.Register(group)
	return app
}

func TestHealthEndpoint(t *testing.T) {
	app := setupTestApp(t)

	req := httptest.NewRequest("GET", "/api/health", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	var result map[string]string
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if result["status"] != "ok" {
		t.Errorf("expected status=ok, got %q", result["status"])
	}
}

func TestConvertEndpointRequiresFile(t *testing.T) {
	app := setupTestApp(t)

	req := httptest.NewRequest("POST", "/api/convert", nil)
	req.Header.Set("Content-Type", "multipart/form-data; boundary=----test")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	if resp.StatusCode == fiber.StatusOK {
		t.Error("expected non-200 for missing file")
	}
}
