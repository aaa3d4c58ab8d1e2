package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/a3tai/formengine/internal/config"
	"github.com/a3tai/formengine/internal/descriptions"
	"github.com/a3tai/formengine/internal/formengine"
	"github.com/a3tai/formengine/internal/model"
)

// Server represents the MCP server instance
type Server struct {
	config    *config.Config
	service   *formengine.Service
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, service *formengine.Service) (*Server, error) {
	if service == nil {
		return nil, fmt.Errorf("service cannot be nil")
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // Static tool set
	)

	s := &Server{
		config:    cfg,
		service:   service,
		mcpServer: mcpServer,
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	formConvertTool := mcp.NewTool(
		"form_convert",
		mcp.WithDescription(descriptions.FormConvertDescription),
		mcp.WithString("hierarchical",
			mcp.Required(),
			mcp.Description("Raw hierarchical document JSON produced by the analysis step"),
		),
		mcp.WithString("prior_fields",
			mcp.Description("Optional JSON array of previously persisted fields whose confirmed edits take precedence"),
		),
	)
	s.mcpServer.AddTool(formConvertTool, s.handleFormConvert)

	formSerializeTool := mcp.NewTool(
		"form_serialize",
		mcp.WithDescription(descriptions.FormSerializeDescription),
		mcp.WithString("sections",
			mcp.Required(),
			mcp.Description("JSON array of section descriptors (the edited model)"),
		),
	)
	s.mcpServer.AddTool(formSerializeTool, s.handleFormSerialize)

	formInspectTool := mcp.NewTool(
		"form_inspect",
		mcp.WithDescription(descriptions.FormInspectDescription),
		mcp.WithString("hierarchical",
			mcp.Required(),
			mcp.Description("Raw hierarchical document JSON to classify"),
		),
	)
	s.mcpServer.AddTool(formInspectTool, s.handleFormInspect)

	formSeedPDFTool := mcp.NewTool(
		"form_seed_pdf",
		mcp.WithDescription(descriptions.FormSeedPDFDescription),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the PDF file"),
		),
	)
	s.mcpServer.AddTool(formSeedPDFTool, s.handleFormSeedPDF)

	formEngineInfoTool := mcp.NewTool(
		"form_engine_info",
		mcp.WithDescription(descriptions.FormEngineInfoDescription),
	)
	s.mcpServer.AddTool(formEngineInfoTool, s.handleFormEngineInfo)
}

// Handler functions

func (s *Server) handleFormConvert(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	hierarchical, err := request.RequireString("hierarchical")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := formengine.FormConvertRequest{Hierarchical: json.RawMessage(hierarchical)}

	args := request.GetArguments()
	if prior, ok := args["prior_fields"].(string); ok && prior != "" {
		var priorFields []model.FieldDescriptor
		if err := json.Unmarshal([]byte(prior), &priorFields); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid prior_fields: %v", err)), nil
		}
		req.PriorFields = priorFields
	}

	result, err := s.service.Convert(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return jsonToolResult(result)
}

func (s *Server) handleFormSerialize(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sectionsJSON, err := request.RequireString("sections")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	sections, err := model.DecodeSections([]byte(sectionsJSON))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.service.Serialize(formengine.FormSerializeRequest{Sections: sections})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return jsonToolResult(result.Document)
}

func (s *Server) handleFormInspect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	hierarchical, err := request.RequireString("hierarchical")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.service.Inspect(formengine.FormInspectRequest{
		Hierarchical: json.RawMessage(hierarchical),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := fmt.Sprintf("Classified %d top-level key(s):\n", len(result.Decisions))
	for _, d := range result.Decisions {
		responseText += fmt.Sprintf("  %-30s %-15s %s\n", d.Key, d.Decision, d.Evidence)
	}
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleFormSeedPDF(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.service.SeedFromPDF(formengine.FormSeedPDFRequest{Path: path})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return jsonToolResult(result)
}

func (s *Server) handleFormEngineInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	info := s.service.EngineInfo(s.config.ServerName, s.config.Version)

	responseText := fmt.Sprintf("%s v%s\n", info.ServerName, info.Version)
	responseText += fmt.Sprintf("Max document size: %d bytes\n", info.MaxDocumentSize)
	responseText += fmt.Sprintf("Supported field types: %v\n", info.FieldTypes)
	responseText += "\nAvailable tools:\n"
	for _, tool := range info.Tools {
		responseText += fmt.Sprintf("  • %s\n", tool)
	}
	return mcp.NewToolResultText(responseText), nil
}

// jsonToolResult marshals a result payload as indented JSON text
func jsonToolResult(payload any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// Run starts the MCP server in the configured mode
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsServerMode() {
		return s.runServerMode(ctx)
	}
	return s.runStdioMode(ctx)
}

// runStdioMode runs the server in stdio mode
func (s *Server) runStdioMode(_ context.Context) error {
	if s.config.IsDebug() {
		log.Printf("Starting form engine MCP server in stdio mode")
		log.Printf("PDF seed directory: %s", s.config.PDFDirectory)
	}

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode runs the server over streamable HTTP
func (s *Server) runServerMode(ctx context.Context) error {
	httpServer := server.NewStreamableHTTPServer(s.mcpServer)
	log.Printf("Starting form engine MCP server on %s", s.config.Address())

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Start(s.config.Address())
	}()

	select {
	case <-ctx.Done():
		return httpServer.Shutdown(context.Background())
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to serve HTTP: %w", err)
		}
		return nil
	}
}
