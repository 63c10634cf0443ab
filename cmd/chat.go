package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mj1618/devicepilot/internal/chat"
	"github.com/mj1618/devicepilot/internal/dispatcher"
	"github.com/mj1618/devicepilot/internal/intent"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the assistant and manage saved chats",
	Long: `Send messages to the Gemini-backed assistant. Conversations are saved to a
local database and can be listed, searched, summarized, exported, and imported.

In agent mode, messages that look like device commands ("open youtube",
"send hi to Alice") are executed on the device instead of being answered.`,
}

var chatSendCmd = &cobra.Command{
	Use:   "send <message...>",
	Short: "Send one message and print the reply",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runChatSend,
}

var chatReplCmd = &cobra.Command{
	Use:   "repl",
	Short: "Chat interactively, one message per line",
	RunE:  runChatRepl,
}

var chatSummarizeCmd = &cobra.Command{
	Use:   "summarize <chat-id>",
	Short: "Generate and store a summary of a saved chat",
	Args:  cobra.ExactArgs(1),
	RunE:  runChatSummarize,
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.AddCommand(chatSendCmd, chatReplCmd, chatSummarizeCmd)
	for _, c := range []*cobra.Command{chatSendCmd, chatReplCmd} {
		c.Flags().String("chat", "", "Continue the saved chat with this ID")
		c.Flags().String("category", "", "Category for a new chat (default from config)")
		c.Flags().Bool("agent", false, "Execute messages that look like device commands")
		c.Flags().Bool("reasoning", false, "Ask the model to reason before answering")
		c.Flags().Bool("no-save", false, "Keep the conversation in memory only")
	}
}

// ChatReply is the output of chat send.
type ChatReply struct {
	ChatID  string             `yaml:"chat_id,omitempty" json:"chat_id,omitempty"`
	Reply   string             `yaml:"reply"             json:"reply"`
	Command *dispatcher.Result `yaml:"command,omitempty" json:"command,omitempty"`
}

// chatTurn sends messages through one session, routing device commands to
// the dispatcher in agent mode.
type chatTurn struct {
	session *chat.Session
	agent   bool
	// dispatch is built on first use so plain chats never touch the device.
	dispatch func(ctx context.Context, utterance string) (dispatcher.Result, error)
}

func (t *chatTurn) send(ctx context.Context, text string) (ChatReply, error) {
	if t.agent && intent.IsLikelyCommand(text) {
		res, err := t.dispatch(ctx, text)
		if err != nil {
			return ChatReply{}, err
		}
		reply, err := t.session.Record(ctx, text, dispatcher.AgentReply(text, res))
		return ChatReply{ChatID: t.session.Chat().ID, Reply: reply.Text, Command: &res}, err
	}
	reply, err := t.session.Send(ctx, text)
	return ChatReply{ChatID: t.session.Chat().ID, Reply: reply.Text}, err
}

// openSession builds a session from the shared chat flags. The returned
// func releases the store.
func openSession(cmd *cobra.Command) (*chatTurn, func(), error) {
	chatID, _ := cmd.Flags().GetString("chat")
	category, _ := cmd.Flags().GetString("category")
	agent, _ := cmd.Flags().GetBool("agent")
	reasoning, _ := cmd.Flags().GetBool("reasoning")
	noSave, _ := cmd.Flags().GetBool("no-save")

	if noSave && chatID != "" {
		return nil, nil, fmt.Errorf("--chat requires saving; drop --no-save")
	}
	if category == "" {
		category = loadedConfig().Chat.Category
	}

	gen, err := openGenerator(cmd.Context())
	if err != nil {
		return nil, nil, err
	}

	c := &chat.Chat{Category: category}
	var saver chat.Saver
	release := func() {}
	if !noSave {
		store, err := openChatStore()
		if err != nil {
			return nil, nil, err
		}
		release = func() { _ = store.Close() }
		saver = store
		if chatID != "" {
			if c, err = store.LoadChat(cmd.Context(), chatID); err != nil {
				release()
				return nil, nil, err
			}
		}
	}

	session := chat.NewSession(c, gen, saver, logger)
	session.SetReasoning(reasoning)
	if chatID != "" && cmd.Flags().Changed("category") {
		session.SetCategory(category)
	}

	var comp *components
	turn := &chatTurn{
		session: session,
		agent:   agent,
		dispatch: func(ctx context.Context, utterance string) (dispatcher.Result, error) {
			if comp == nil {
				built, err := buildComponents(false)
				if err != nil {
					return dispatcher.Result{}, err
				}
				comp = built
			}
			return comp.dispatcher.Dispatch(ctx, utterance), nil
		},
	}
	return turn, release, nil
}

func runChatSend(cmd *cobra.Command, args []string) error {
	turn, release, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer release()

	out, err := turn.send(cmd.Context(), strings.Join(args, " "))
	if out.Reply != "" {
		if perr := printResult(cmd, out); perr != nil {
			return perr
		}
	}
	return err
}

func runChatRepl(cmd *cobra.Command, args []string) error {
	turn, release, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer release()
	return repl(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), turn)
}

// repl reads one message per line until EOF or "exit". Failed turns are
// shown and the loop continues.
func repl(ctx context.Context, in io.Reader, out io.Writer, turn *chatTurn) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprint(out, "> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
		case "exit", "quit":
			return nil
		default:
			reply, err := turn.send(ctx, line)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			switch {
			case reply.Reply != "":
				fmt.Fprintln(out, reply.Reply)
			case err != nil:
				fmt.Fprintln(out, chat.ErrorPrefix+err.Error())
			}
		}
		fmt.Fprint(out, "> ")
	}
	return scanner.Err()
}

func runChatSummarize(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	gen, err := openGenerator(ctx)
	if err != nil {
		return err
	}
	store, err := openChatStore()
	if err != nil {
		return err
	}
	defer store.Close()

	c, err := store.LoadChat(ctx, args[0])
	if err != nil {
		return err
	}

	// The session only generates; the summary column is written directly so
	// the chat's messages are not rewritten.
	summary, err := chat.NewSession(c, gen, nil, logger).Summarize(ctx)
	if errors.Is(err, chat.ErrEmptyChat) {
		return fmt.Errorf("chat %s has no messages to summarize", c.ID)
	}
	if err != nil {
		return err
	}
	if err := store.UpdateSummary(ctx, c.ID, summary); err != nil {
		return err
	}
	return printResult(cmd, map[string]string{"chat_id": c.ID, "summary": summary})
}
