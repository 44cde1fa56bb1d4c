package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const testSeed = `{"records": [
	{"system_tag": "ZEN_QAW", "date": "2024-01-02", "nav": 100, "portfolio_value": 1000000, "capital_in_out": 1000000},
	{"system_tag": "ZEN_QAW", "date": "2024-01-03", "nav": 105, "portfolio_value": 1050000, "pnl": 50000},
	{"system_tag": "ZEN_QAW", "date": "2024-01-04", "nav": 110, "portfolio_value": 1100000, "pnl": 50000},
	{"system_tag": "", "date": "2024-01-04", "nav": 1},
	{"system_tag": "ZEN_QAW", "date": "04/01/2024", "nav": 1}
]}`

// TestNewApp_InitializesAllServices verifies that NewApp creates an App with
// storage, registry, aggregation and the MCP server initialized.
func TestNewApp_InitializesAllServices(t *testing.T) {
	configPath := writeTestConfig(t)

	a, err := NewApp(configPath)
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	defer a.Close()

	if a.Config == nil {
		t.Error("Config is nil")
	}
	if a.Logger == nil {
		t.Error("Logger is nil")
	}
	if a.Storage == nil {
		t.Error("Storage is nil")
	}
	if a.Registry == nil {
		t.Error("Registry is nil")
	}
	if a.Aggregation == nil {
		t.Error("Aggregation is nil")
	}
	if a.MCPServer == nil {
		t.Error("MCPServer is nil")
	}
	if a.StartupTime.IsZero() {
		t.Error("StartupTime is zero")
	}
	if !a.Storage.Cached() {
		t.Error("expected record cache to be enabled")
	}
}

// TestNewApp_SeedsRecords verifies the seed file is imported and bad rows skipped.
func TestNewApp_SeedsRecords(t *testing.T) {
	a, err := NewApp(writeTestConfig(t))
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	defer a.Close()

	records, err := a.Storage.Records().ListRecords(context.Background(), "ZEN_QAW", time.Time{})
	if err != nil {
		t.Fatalf("ListRecords failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("seeded records = %d, want 3", len(records))
	}
}

// TestNewApp_RegistersAllTools verifies that NewApp registers all expected MCP tools.
func TestNewApp_RegistersAllTools(t *testing.T) {
	a, err := NewApp(writeTestConfig(t))
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	defer a.Close()

	c, err := newInProcessClient(t, a.MCPServer)
	if err != nil {
		t.Fatalf("Failed to create in-process client: %v", err)
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	toolsResult, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		t.Fatalf("ListTools failed: %v", err)
	}

	expectedTools := []string{
		"get_version",
		"list_schemes",
		"get_scheme_analytics",
		"invalidate_cache",
	}

	toolNames := make(map[string]bool)
	for _, tool := range toolsResult.Tools {
		toolNames[tool.Name] = true
	}
	for _, name := range expectedTools {
		if !toolNames[name] {
			t.Errorf("Expected tool %q not registered", name)
		}
	}
	if len(toolsResult.Tools) != len(expectedTools) {
		t.Errorf("Expected %d tools, got %d", len(expectedTools), len(toolsResult.Tools))
	}
}

// TestNewApp_GetVersionToolWorks verifies that the get_version tool works
// through a full App initialization.
func TestNewApp_GetVersionToolWorks(t *testing.T) {
	a, err := NewApp(writeTestConfig(t))
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	defer a.Close()

	c, err := newInProcessClient(t, a.MCPServer)
	if err != nil {
		t.Fatalf("Failed to create in-process client: %v", err)
	}
	defer c.Close()

	req := mcp.CallToolRequest{}
	req.Params.Name = "get_version"
	result, err := c.CallTool(context.Background(), req)
	if err != nil {
		t.Fatalf("get_version failed: %v", err)
	}

	text := result.Content[0].(mcp.TextContent).Text
	if !strings.Contains(text, "navdash") || !strings.Contains(text, "Status: OK") {
		t.Errorf("unexpected get_version output: %s", text)
	}
}

// TestNewApp_CloseIsIdempotent verifies that calling Close multiple times
// does not panic.
func TestNewApp_CloseIsIdempotent(t *testing.T) {
	a, err := NewApp(writeTestConfig(t))
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	if err := a.StartCacheScheduler(); err != nil {
		t.Fatalf("StartCacheScheduler failed: %v", err)
	}

	a.Close()
	a.Close()
}

// TestNewApp_InvalidConfigReturnsError verifies that an invalid config file
// returns a meaningful error.
func TestNewApp_InvalidConfigReturnsError(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "bad.toml")
	os.WriteFile(configPath, []byte("{{{{invalid toml"), 0644)

	_, err := NewApp(configPath)
	if err == nil {
		t.Fatal("Expected error for invalid config content, got nil")
	}
}

// TestNewApp_InvalidSchemesReturnsError verifies registry validation runs at startup.
func TestNewApp_InvalidSchemesReturnsError(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "navdash.toml")
	config := `
[storage.badger]
path = "` + filepath.ToSlash(filepath.Join(dir, "records")) + `"

[[schemes]]
name = "Broken"
kind = "live"
`
	os.WriteFile(configPath, []byte(config), 0644)

	_, err := NewApp(configPath)
	if err == nil || !strings.Contains(err.Error(), "invalid scheme configuration") {
		t.Fatalf("Expected scheme configuration error, got %v", err)
	}
}

// TestStartCacheScheduler_BadSpec verifies an invalid cron spec is reported.
func TestStartCacheScheduler_BadSpec(t *testing.T) {
	a, err := NewApp(writeTestConfig(t))
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	defer a.Close()

	a.Config.Cache.RefreshSchedule = "every tuesday"
	if err := a.StartCacheScheduler(); err == nil {
		t.Fatal("Expected error for invalid schedule")
	}
}

// --- test helpers ---

// writeTestConfig creates a navdash.toml and seed file in a temp directory.
func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	seedPath := filepath.Join(dir, "seed.json")
	if err := os.WriteFile(seedPath, []byte(testSeed), 0644); err != nil {
		t.Fatalf("Failed to write seed file: %v", err)
	}

	config := `
[storage]
backend = "badger"
seed_file = "` + filepath.ToSlash(seedPath) + `"

[storage.badger]
path = "` + filepath.ToSlash(filepath.Join(dir, "records")) + `"

[cache]
enabled = true
refresh_schedule = "@every 1h"

[logging]
level = "error"

[[schemes]]
name = "Scheme QTF"
kind = "frozen"

[[schemes]]
name = "Scheme QAW"
kind = "live"
system_tag = "ZEN_QAW"
active = true

[[schemes]]
name = "Total Portfolio"
kind = "composite"
components = ["Scheme QTF", "Scheme QAW"]
active = true

[[accounts]]
id = "ACC-001"
schemes = ["Total Portfolio", "Scheme QAW", "Scheme QTF"]
`
	configPath := filepath.Join(dir, "navdash.toml")
	if err := os.WriteFile(configPath, []byte(config), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return configPath
}

// newInProcessClient creates an mcp-go in-process client connected to the given
// MCP server. Handles initialization handshake.
func newInProcessClient(t *testing.T, mcpServer *server.MCPServer) (*client.Client, error) {
	t.Helper()

	c, err := client.NewInProcessClient(mcpServer)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	if err := c.Start(ctx); err != nil {
		return nil, err
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}
	if _, err := c.Initialize(ctx, initReq); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}
