// Package server exposes devicepilot over the Model Context Protocol so
// agents can run commands, read the screen, and chat without shelling out.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mj1618/devicepilot/internal/chat"
	"github.com/mj1618/devicepilot/internal/dispatcher"
	"github.com/mj1618/devicepilot/internal/logging"
	"github.com/mj1618/devicepilot/internal/platform"
	"github.com/mj1618/devicepilot/internal/status"
)

// Dispatcher runs a natural-language command.
type Dispatcher interface {
	Dispatch(ctx context.Context, utterance string) dispatcher.Result
}

// ChatBackend backs the chat tool. Store may be nil to skip persistence.
type ChatBackend struct {
	Generator chat.Generator
	Store     *chat.Store
	Category  string
}

// Config holds MCP server configuration.
type Config struct {
	Name      string
	Version   string
	Transport string
	Port      int
	CacheTTL  time.Duration
}

// Deps are the components the tools call into. Classifier, Tracker, and
// Chat may be nil.
type Deps struct {
	Provider   *platform.Provider
	Dispatcher Dispatcher
	Classifier dispatcher.Classifier
	Tracker    *status.Tracker
	Chat       *ChatBackend
	Log        *zap.Logger
}

// Server wraps the MCP server with the device provider and tree cache.
type Server struct {
	cfg        Config
	deps       Deps
	cache      *TreeCache
	providerMu sync.Mutex
	mcp        *mcpserver.MCPServer
	log        *zap.Logger
}

// New creates and configures an MCP server with all devicepilot tools.
func New(cfg Config, deps Deps) *Server {
	if cfg.Name == "" {
		cfg.Name = "devicepilot"
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	if deps.Provider == nil {
		deps.Provider = &platform.Provider{}
	}
	s := &Server{
		cfg:   cfg,
		deps:  deps,
		cache: NewTreeCache(cfg.CacheTTL),
		log:   logging.OrNop(deps.Log).Named("mcp"),
	}
	s.mcp = mcpserver.NewMCPServer(cfg.Name, cfg.Version)
	s.registerTools()
	return s
}

// MCP returns the underlying MCP server.
func (s *Server) MCP() *mcpserver.MCPServer { return s.mcp }

// Serve runs the configured transport until it fails or ctx is done.
func (s *Server) Serve(ctx context.Context) error {
	switch s.cfg.Transport {
	case "", "stdio":
		s.log.Info("serving MCP over stdio")
		return mcpserver.ServeStdio(s.mcp)
	case "streamable-http":
		addr := fmt.Sprintf(":%d", s.cfg.Port)
		httpServer := mcpserver.NewStreamableHTTPServer(s.mcp)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			s.log.Info("serving MCP over streamable HTTP", zap.String("addr", addr))
			if err := httpServer.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		})
		return g.Wait()
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", s.cfg.Transport)
	}
}

func (s *Server) registerTools() {
	s.mcp.AddTool(
		mcp.NewTool("run_command",
			mcp.WithDescription("Run a natural-language device command such as 'open youtube', 'turn off wifi' or 'send hi to Alice on whatsapp'. Commands run one at a time."),
			mcp.WithString("utterance", mcp.Description("The command to run"), mcp.Required()),
		),
		s.handleRunCommand,
	)

	s.mcp.AddTool(
		mcp.NewTool("classify",
			mcp.WithDescription("Resolve an utterance to an intent without executing it"),
			mcp.WithString("utterance", mcp.Description("The command to classify"), mcp.Required()),
			mcp.WithBoolean("offline", mcp.Description("Use only the local keyword rules")),
		),
		s.handleClassify,
	)

	s.mcp.AddTool(
		mcp.NewTool("read_screen",
			mcp.WithDescription("Read the accessibility tree of the device's foreground screen"),
			mcp.WithBoolean("flat", mcp.Description("Return a flat list with path breadcrumbs instead of a tree")),
			mcp.WithString("text", mcp.Description("Only elements whose text or description contains this")),
			mcp.WithBoolean("interactive", mcp.Description("Only clickable or editable elements")),
		),
		s.handleReadScreen,
	)

	s.mcp.AddTool(
		mcp.NewTool("status",
			mcp.WithDescription("Report the automation step currently in progress"),
		),
		s.handleStatus,
	)

	s.mcp.AddTool(
		mcp.NewTool("device_info",
			mcp.WithDescription("Describe the attached device and whether an automation agent is attached"),
		),
		s.handleDeviceInfo,
	)

	s.mcp.AddTool(
		mcp.NewTool("chat",
			mcp.WithDescription("Send a message to the chat assistant. Pass chat_id to continue a stored conversation."),
			mcp.WithString("message", mcp.Description("Message to send"), mcp.Required()),
			mcp.WithString("chat_id", mcp.Description("Existing chat to continue")),
			mcp.WithString("category", mcp.Description("Category for a new chat")),
			mcp.WithBoolean("reasoning", mcp.Description("Ask for reasoning before the response")),
		),
		s.handleChat,
	)
}
