package server

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/mj1618/devicepilot/internal/chat"
	"github.com/mj1618/devicepilot/internal/dispatcher"
	"github.com/mj1618/devicepilot/internal/intent"
	"github.com/mj1618/devicepilot/internal/model"
	"github.com/mj1618/devicepilot/internal/output"
	"github.com/mj1618/devicepilot/internal/platform"
)

// ClassifyResult is the output of the classify tool.
type ClassifyResult struct {
	Source dispatcher.Source `yaml:"source" json:"source"`
	Intent intent.Intent     `yaml:"intent" json:"intent"`
}

// DeviceResult is the output of the device_info tool.
type DeviceResult struct {
	Device     platform.DeviceInfo `yaml:"device"     json:"device"`
	Automation bool                `yaml:"automation" json:"automation"`
}

// ChatReply is the output of the chat tool.
type ChatReply struct {
	ChatID string `yaml:"chat_id" json:"chat_id"`
	Reply  string `yaml:"reply"   json:"reply"`
}

func toText(v interface{}) string {
	b, err := yaml.Marshal(v)
	if err != nil {
		return err.Error()
	}
	return string(b)
}

func (s *Server) handleRunCommand(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	utterance := stringParam(request.GetArguments(), "utterance", "")
	if utterance == "" {
		return mcp.NewToolResultError("utterance is required"), nil
	}
	if s.deps.Dispatcher == nil {
		return mcp.NewToolResultError("command dispatch is not configured"), nil
	}

	s.providerMu.Lock()
	defer s.providerMu.Unlock()

	res := s.deps.Dispatcher.Dispatch(ctx, utterance)
	s.cache.Invalidate()

	s.log.Debug("run_command", zap.String("utterance", utterance), zap.Bool("executed", res.Executed))
	if !res.Executed {
		return mcp.NewToolResultError(toText(res)), nil
	}
	return mcp.NewToolResultText(toText(res)), nil
}

func (s *Server) handleClassify(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	utterance := stringParam(params, "utterance", "")
	if utterance == "" {
		return mcp.NewToolResultError("utterance is required"), nil
	}
	offline := boolParam(params, "offline", false)

	if !offline && s.deps.Classifier != nil {
		if in := s.deps.Classifier.Classify(ctx, utterance); in != nil {
			return mcp.NewToolResultText(toText(ClassifyResult{Source: dispatcher.SourceClassifier, Intent: *in})), nil
		}
	}
	return mcp.NewToolResultText(toText(ClassifyResult{Source: dispatcher.SourceFallback, Intent: intent.Fallback(utterance)})), nil
}

func (s *Server) handleReadScreen(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	flat := boolParam(params, "flat", false)
	text := stringParam(params, "text", "")
	interactive := boolParam(params, "interactive", false)

	s.providerMu.Lock()
	defer s.providerMu.Unlock()

	if s.deps.Provider.Reader == nil {
		return mcp.NewToolResultError("screen reader not available"), nil
	}
	elements, size, err := s.cache.Read(ctx, s.deps.Provider.Reader)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	elements = model.PruneEmptyGroups(elements)
	if interactive {
		elements = model.FilterInteractive(elements)
	}
	if text != "" {
		elements = model.FilterByText(elements, text)
	}

	ts := time.Now().Unix()
	if flat {
		return mcp.NewToolResultText(toText(output.ReadFlatResult{
			Size: size, TS: ts, Elements: model.FlattenElements(elements),
		})), nil
	}
	return mcp.NewToolResultText(toText(output.ReadResult{Size: size, TS: ts, Elements: elements})), nil
}

func (s *Server) handleStatus(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.deps.Tracker == nil {
		return mcp.NewToolResultText("operation: idle\n"), nil
	}
	ev, ok := s.deps.Tracker.Latest()
	if !ok {
		return mcp.NewToolResultText("operation: idle\n"), nil
	}
	return mcp.NewToolResultText(toText(ev)), nil
}

func (s *Server) handleDeviceInfo(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.providerMu.Lock()
	defer s.providerMu.Unlock()

	p := s.deps.Provider
	if p.Describer == nil {
		return mcp.NewToolResultError("device info not available"), nil
	}
	info, err := p.Describer.DeviceInfo(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res := DeviceResult{Device: info}
	if p.Automation != nil {
		res.Automation = p.Automation.AutomationAvailable(ctx)
	}
	return mcp.NewToolResultText(toText(res)), nil
}

func (s *Server) handleChat(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	message := stringParam(params, "message", "")
	if message == "" {
		return mcp.NewToolResultError("message is required"), nil
	}
	backend := s.deps.Chat
	if backend == nil || backend.Generator == nil {
		return mcp.NewToolResultError("chat is not configured: set GEMINI_API_KEY"), nil
	}

	c := &chat.Chat{Category: stringParam(params, "category", backend.Category)}
	var saver chat.Saver
	if backend.Store != nil {
		saver = backend.Store
		if id := stringParam(params, "chat_id", ""); id != "" {
			loaded, err := backend.Store.LoadChat(ctx, id)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			c = loaded
		}
	}

	session := chat.NewSession(c, backend.Generator, saver, s.log)
	session.SetReasoning(boolParam(params, "reasoning", false))

	reply, err := session.Send(ctx, message)
	out := ChatReply{ChatID: session.Chat().ID, Reply: reply.Text}
	if err != nil {
		s.log.Info("chat failed", zap.Error(err))
		if out.Reply == "" {
			out.Reply = err.Error()
		}
		return mcp.NewToolResultError(toText(out)), nil
	}
	return mcp.NewToolResultText(toText(out)), nil
}
