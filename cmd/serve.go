package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mj1618/devicepilot/internal/server"
	"github.com/mj1618/devicepilot/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start an MCP server exposing devicepilot tools",
	Long: `Start a Model Context Protocol (MCP) server that exposes devicepilot as
tools: run_command, classify, read_screen, status, device_info, and chat.

Supported transports:
  stdio             Standard I/O (default, for local MCP clients)
  streamable-http   Streamable HTTP transport (for remote agents)

Examples:
  devicepilot serve
  devicepilot serve --transport streamable-http --port 8080
  devicepilot serve --cache-ttl 0`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("transport", "stdio", "Transport: stdio, streamable-http")
	serveCmd.Flags().Int("port", 8080, "HTTP port for streamable-http transport")
	serveCmd.Flags().Int("cache-ttl", 500, "Element tree cache TTL in milliseconds (0 to disable)")
	serveCmd.Flags().Bool("offline", false, "Skip the remote classifier")
	serveCmd.Flags().Bool("no-chat", false, "Do not expose the chat tool")
}

func runServe(cmd *cobra.Command, args []string) error {
	transport, _ := cmd.Flags().GetString("transport")
	port, _ := cmd.Flags().GetInt("port")
	cacheTTLMs, _ := cmd.Flags().GetInt("cache-ttl")
	offline, _ := cmd.Flags().GetBool("offline")
	noChat, _ := cmd.Flags().GetBool("no-chat")

	comp, err := buildComponents(offline)
	if err != nil {
		return err
	}

	deps := server.Deps{
		Provider:   comp.provider,
		Dispatcher: comp.dispatcher,
		Tracker:    comp.tracker,
		Log:        logger,
	}
	if comp.classifier != nil {
		deps.Classifier = comp.classifier
	}

	if !noChat {
		backend, closeStore, err := chatBackend(cmd)
		if err != nil {
			return err
		}
		defer closeStore()
		deps.Chat = backend
	}

	srv := server.New(server.Config{
		Version:   version.Version,
		Transport: transport,
		Port:      port,
		CacheTTL:  time.Duration(cacheTTLMs) * time.Millisecond,
	}, deps)
	if err := srv.Serve(cmd.Context()); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}

// chatBackend builds the chat tool backend. A missing API key disables the
// tool instead of failing the server.
func chatBackend(cmd *cobra.Command) (*server.ChatBackend, func(), error) {
	gen, err := openGenerator(cmd.Context())
	if err != nil {
		logger.Warn("chat tool disabled", zap.Error(err))
		return nil, func() {}, nil
	}
	store, err := openChatStore()
	if err != nil {
		return nil, nil, err
	}
	closeStore := func() {
		if err := store.Close(); err != nil {
			logger.Warn("close chat store", zap.Error(err))
		}
	}
	return &server.ChatBackend{
		Generator: gen,
		Store:     store,
		Category:  loadedConfig().Chat.Category,
	}, closeStore, nil
}
