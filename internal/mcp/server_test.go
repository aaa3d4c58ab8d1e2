package mcp

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/a3tai/formengine/internal/config"
	"github.com/a3tai/formengine/internal/formengine"
)

func testConfig(t *testing.T, mode string) *config.Config {
	t.Helper()
	return &config.Config{
		Mode:            mode,
		Host:            "127.0.0.1",
		Port:            8080,
		PDFDirectory:    t.TempDir(),
		MaxDocumentSize: 1024 * 1024,
		Version:         "1.0.0",
		ServerName:      "test-formengine",
		LogLevel:        "info",
	}
}

func TestNewServer(t *testing.T) {
	service := formengine.NewService(1024*1024, false)

	tests := []struct {
		name        string
		mode        string
		service     *formengine.Service
		expectError bool
	}{
		{
			name:    "valid stdio mode config",
			mode:    "stdio",
			service: service,
		},
		{
			name:    "valid server mode config",
			mode:    "server",
			service: service,
		},
		{
			name:        "nil service",
			mode:        "stdio",
			service:     nil,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, err := NewServer(testConfig(t, tt.mode), tt.service)

			if tt.expectError {
				if err == nil {
					t.Error("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if server == nil {
				t.Fatal("Expected server instance, got nil")
			}
			if server.mcpServer == nil {
				t.Error("Expected underlying MCP server to be initialized")
			}
			if server.service != tt.service {
				t.Error("Expected server to hold the provided service")
			}
		})
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	server, err := NewServer(testConfig(t, "stdio"), formengine.NewService(1024*1024, false))
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	return server
}

func toolRequest(args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func TestServer_HandleFormConvert(t *testing.T) {
	server := newTestServer(t)

	request := toolRequest(map[string]interface{}{
		"hierarchical": `{"client_name": "Acme", "client_email": "a@acme.test"}`,
	})

	result, err := server.handleFormConvert(context.Background(), request)
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	resultText := extractTextFromResult(result)
	if !strings.Contains(resultText, `"name": "Client"`) {
		t.Errorf("expected a Client section in the result, got: %s", resultText)
	}
	if !strings.Contains(resultText, "client_email") {
		t.Errorf("expected the raw key to be retained, got: %s", resultText)
	}
}

func TestServer_HandleFormConvertErrors(t *testing.T) {
	server := newTestServer(t)

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{
			name: "missing hierarchical argument",
			args: map[string]interface{}{},
		},
		{
			name: "non-object payload",
			args: map[string]interface{}{"hierarchical": `[1, 2]`},
		},
		{
			name: "malformed prior fields",
			args: map[string]interface{}{
				"hierarchical": `{"a": 1}`,
				"prior_fields": `{not json`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := server.handleFormConvert(context.Background(), toolRequest(tt.args))
			if err != nil {
				t.Fatalf("handler returned transport error: %v", err)
			}
			if result == nil || !result.IsError {
				t.Error("expected a tool error result")
			}
		})
	}
}

func TestServer_HandleFormSerialize(t *testing.T) {
	server := newTestServer(t)

	request := toolRequest(map[string]interface{}{
		"sections": `[
			{"id": "s1", "name": "Client", "order": 0, "fields": [
				{"id": "f1", "key": "client_name", "label": "Name", "type": "text", "value": "Acme"}
			]}
		]`,
	})

	result, err := server.handleFormSerialize(context.Background(), request)
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	resultText := extractTextFromResult(result)
	if !strings.Contains(resultText, `"name": "Acme"`) {
		t.Errorf("expected serialized value in result, got: %s", resultText)
	}
}

func TestServer_HandleFormInspect(t *testing.T) {
	server := newTestServer(t)

	request := toolRequest(map[string]interface{}{
		"hierarchical": `{"items": [{"a": 1, "b": 2}, {"a": 3, "b": 4}]}`,
	})

	result, err := server.handleFormInspect(context.Background(), request)
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	resultText := extractTextFromResult(result)
	if !strings.Contains(resultText, "table_flat") {
		t.Errorf("expected a table_flat decision, got: %s", resultText)
	}
}

func TestServer_HandleFormEngineInfo(t *testing.T) {
	server := newTestServer(t)

	result, err := server.handleFormEngineInfo(context.Background(), toolRequest(nil))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	resultText := extractTextFromResult(result)
	for _, want := range []string{"test-formengine", "form_convert", "form_serialize"} {
		if !strings.Contains(resultText, want) {
			t.Errorf("expected info output to mention %q, got: %s", want, resultText)
		}
	}
}

func TestServer_HandleFormSeedPDFMissingFile(t *testing.T) {
	server := newTestServer(t)

	request := toolRequest(map[string]interface{}{
		"path": "/nonexistent/form.pdf",
	})

	result, err := server.handleFormSeedPDF(context.Background(), request)
	if err != nil {
		t.Fatalf("handler returned transport error: %v", err)
	}
	if result == nil || !result.IsError {
		t.Error("expected a tool error result for missing file")
	}
}

func extractTextFromResult(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}
	for _, content := range result.Content {
		if textContent, ok := content.(mcp.TextContent); ok {
			return textContent.Text
		}
		if textContentPtr, ok := content.(*mcp.TextContent); ok {
			return textContentPtr.Text
		}
	}
	return ""
}
