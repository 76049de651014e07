package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/brownian/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Process is a named process the server exposes as tools.
type Process interface {
	ports.Process
	Name() string
}

// UpdateArgs are the arguments of the update tool.
type UpdateArgs struct {
	State    map[string]any `json:"state" jsonschema_description:"Current state tree keyed by port"`
	Interval float64        `json:"interval" jsonschema_description:"Simulated time to advance"`
}

// UpdateResult is the structured output of the update tool.
type UpdateResult struct {
	Update   map[string]any `json:"update" jsonschema_description:"Deltas and coordinates to merge into the state"`
	Interval float64        `json:"interval" jsonschema_description:"Interval that was advanced"`
}

// Server exposes a process as an MCP server.
type Server struct {
	proc      Process
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(proc Process, version string, opts ...Option) *Server {
	s := &Server{
		proc:      proc,
		mcpServer: server.NewMCPServer("brownian-mcp", version),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer { return s.mcpServer }

// ServeStdio serves on stdin/stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves over SSE on port until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(fmt.Sprintf("http://localhost:%d", port)))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())
	httpServer := &http.Server{Addr: addr, Handler: mux}

	errs := make(chan error, 1)
	go func() {
		s.logger.Info("mcp server listening (sse)", "address", addr)
		errs <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errs:
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

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("get_schema",
		mcp.WithDescription("Describe the ports and per-species records of the process state."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		desc, err := s.proc.Schema().Describe()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("schema failed: %v", err)), nil
		}
		return jsonResult(desc)
	})

	s.mcpServer.AddTool(mcp.NewTool("initial_state",
		mcp.WithDescription("Return the molecule counts the loaded model starts with."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		state, err := s.proc.InitialState()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("initial state failed: %v", err)), nil
		}
		return jsonResult(state)
	})

	updateTool := mcp.NewTool("update",
		mcp.WithDescription("Redistribute the given counts uniformly, advance the simulation by interval and return the deltas."),
		mcp.WithObject("state", mcp.Required(), mcp.Description("State tree with a molecules port keyed by species")),
		mcp.WithNumber("interval", mcp.Required(), mcp.Description("Simulated time to advance, greater than zero")),
		mcp.WithOutputSchema[UpdateResult](),
	)
	s.mcpServer.AddTool(updateTool, mcp.NewStructuredToolHandler(s.handleUpdate))
}

func (s *Server) handleUpdate(ctx context.Context, request mcp.CallToolRequest, args UpdateArgs) (UpdateResult, error) {
	update, err := s.proc.Update(ctx, args.State, args.Interval)
	if err != nil {
		s.logger.Warn("mcp update failed", "process", s.proc.Name(), "error", err)
		return UpdateResult{}, fmt.Errorf("update failed: %w", err)
	}
	return UpdateResult{Update: update, Interval: args.Interval}, nil
}

func (s *Server) registerResources() {
	uri := "brownian://" + s.proc.Name() + "/schema"
	s.mcpServer.AddResource(mcp.NewResource(uri, "Process Schema",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		desc, err := s.proc.Schema().Describe()
		if err != nil {
			return nil, fmt.Errorf("failed to describe schema: %w", err)
		}
		data, err := json.Marshal(desc)
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      uri,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
