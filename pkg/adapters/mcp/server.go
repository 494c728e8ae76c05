package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/conduit"
	"github.com/aretw0/conduit/pkg/domain"
	"github.com/aretw0/conduit/pkg/response"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ManifestURI is the resource exposing the loaded manifest.
const ManifestURI = "conduit://manifest"

// Engine defines the interface required by the MCP server to interact with Conduit.
type Engine interface {
	Handle(ctx context.Context, req conduit.Request) (domain.Outcome, error)
	Actions() []domain.ActionInfo
	Manifest() *domain.Manifest
}

// DispatchArgs are the arguments of the dispatch tool.
type DispatchArgs struct {
	Intent     string   `json:"intent,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
	Partial    bool     `json:"partial,omitempty"`
	Stream     string   `json:"stream,omitempty"`
	Response   string   `json:"response,omitempty"`
}

// ActionList is the result of the list_actions tool.
type ActionList struct {
	Actions []domain.ActionInfo `json:"actions" jsonschema_description:"Dispatch table entries in ranked order"`
}

// Server wraps a Conduit dispatcher and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, version string) *Server {
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("conduit-mcp", version),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server, e.g. for in-process clients.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	dispatchTool := mcp.NewTool("dispatch",
		mcp.WithDescription("Dispatch a recognition response to its handler. The top intent of the response is used unless intent is given."),
		mcp.WithString("response", mcp.Description("Recognition response as a JSON object")),
		mcp.WithString("intent", mcp.Description("Intent to dispatch, overriding the response")),
		mcp.WithNumber("confidence", mcp.Description("Confidence score in [0, 1], overriding the response")),
		mcp.WithBoolean("partial", mcp.Description("Whether the response is partial")),
		mcp.WithString("stream", mcp.Description("Request ID of a streamed recognition; enables early validation and excludes intent and confidence")),
		mcp.WithOutputSchema[domain.Report](),
	)
	s.mcpServer.AddTool(dispatchTool, mcp.NewStructuredToolHandler(s.handleDispatch))

	listTool := mcp.NewTool("list_actions",
		mcp.WithDescription("List the dispatch table: intents, handlers, signatures and confidence bands."),
		mcp.WithOutputSchema[ActionList](),
	)
	s.mcpServer.AddTool(listTool, mcp.NewStructuredToolHandler(s.handleListActions))
}

func (s *Server) handleDispatch(ctx context.Context, request mcp.CallToolRequest, args DispatchArgs) (domain.Report, error) {
	resp := response.Empty()
	if args.Response != "" {
		var err error
		resp, err = response.Parse(args.Response)
		if err != nil {
			return domain.Report{}, fmt.Errorf("invalid response: %w", err)
		}
	}

	out, err := s.engine.Handle(ctx, conduit.Request{
		Intent:     args.Intent,
		Confidence: args.Confidence,
		Partial:    args.Partial,
		Stream:     args.Stream,
		Response:   resp,
	})
	if err != nil {
		return domain.Report{}, err
	}
	return out.Report(), nil
}

func (s *Server) handleListActions(ctx context.Context, request mcp.CallToolRequest, args struct{}) (ActionList, error) {
	return ActionList{Actions: s.engine.Actions()}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(ManifestURI, "Loaded Manifest",
		mcp.WithMIMEType("application/json"),
	), s.readManifest)
}

func (s *Server) readManifest(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(s.engine.Manifest())
	if err != nil {
		return nil, fmt.Errorf("failed to encode manifest: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      ManifestURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
