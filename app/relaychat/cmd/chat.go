package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/cchalm/relaychat/internal/ai"
	"github.com/cchalm/relaychat/internal/client"
	"github.com/cchalm/relaychat/internal/store"
	"github.com/cchalm/relaychat/internal/telemetry"
	"github.com/cchalm/relaychat/internal/transcript"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with a running relay from the terminal",
	Long: `Starts an interactive chat session against a relay server. Type a message and
press enter to send it. Commands: /new starts over, /save <file> writes an HTML
transcript, /help lists commands, /quit exits.`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&flags.chatAPIURL, "url", client.DefaultBaseURL, "Base URL of the relay server")

	rootCmd.AddCommand(chatCmd)
}

const chatHelp = `Commands:
  /new          start a new conversation
  /save <file>  save the conversation as an HTML page
  /help         show this help
  /quit         exit`

func runChat(cmd *cobra.Command, args []string) error {
	ctx := setupContext()

	// Relay-side logging is noise in an interactive session
	log.SetOutput(io.Discard)

	sessionID := telemetry.NewSessionID()
	relayClient := client.New(cfg.ChatAPIURL, nil).WithSessionID(sessionID)
	session := newChatSession(store.New(relayClient), cmd.OutOrStdout(), newMarkdownRenderer())

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	fmt.Fprintln(session.out, dimStyle.Render(fmt.Sprintf("Connected to %s. Type /help for commands.", cfg.ChatAPIURL)))
	session.printConversation()

	for {
		input, err := line.Prompt("> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(session.out)
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}
		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}

		if !session.handleLine(ctx, input) {
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

// chatSession drives one terminal conversation against a store
type chatSession struct {
	store  *store.Store
	out    io.Writer
	render replyRenderer
}

func newChatSession(s *store.Store, out io.Writer, render replyRenderer) *chatSession {
	return &chatSession{store: s, out: out, render: render}
}

// handleLine processes one line of user input. It returns false when the session should end
func (cs *chatSession) handleLine(ctx context.Context, input string) bool {
	text := strings.TrimSpace(input)
	if text == "" {
		return true
	}
	if strings.HasPrefix(text, "/") {
		return cs.handleCommand(text)
	}

	cs.store.SetInput(input)
	fmt.Fprintln(cs.out, dimStyle.Render("..."))
	if !cs.store.Submit(ctx, input) {
		return true
	}

	state := cs.store.Snapshot()
	if state.Error != "" {
		fmt.Fprintln(cs.out, errorBannerStyle.Render(state.Error))
		cs.store.DismissError()
		return true
	}
	cs.printTurn(state.Turns[len(state.Turns)-1])
	return true
}

func (cs *chatSession) handleCommand(text string) bool {
	name, arg, _ := strings.Cut(text, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "/quit", "/exit":
		return false
	case "/new":
		cs.store.Reset()
		fmt.Fprintln(cs.out, dimStyle.Render("Started a new conversation."))
		cs.printConversation()
	case "/save":
		if arg == "" {
			fmt.Fprintln(cs.out, errorBannerStyle.Render("Usage: /save <file>"))
			return true
		}
		saved, err := cs.save(arg)
		if err != nil {
			fmt.Fprintln(cs.out, errorBannerStyle.Render(err.Error()))
			return true
		}
		fmt.Fprintln(cs.out, dimStyle.Render("Saved transcript to "+saved))
	case "/help":
		fmt.Fprintln(cs.out, chatHelp)
	default:
		fmt.Fprintln(cs.out, errorBannerStyle.Render(fmt.Sprintf("Unknown command %s. Type /help for commands.", name)))
	}
	return true
}

// save writes the transcript to path, adding an .html extension if it has none, and returns the path written
func (cs *chatSession) save(path string) (string, error) {
	if filepath.Ext(path) == "" {
		path += ".html"
	}
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create transcript file: %w", err)
	}
	defer f.Close()

	if err := transcript.New().Render(f, cs.store.Snapshot().Turns); err != nil {
		return "", fmt.Errorf("failed to write transcript: %w", err)
	}
	return path, nil
}

func (cs *chatSession) printConversation() {
	for _, turn := range cs.store.Snapshot().Turns {
		cs.printTurn(turn)
	}
}

func (cs *chatSession) printTurn(turn ai.Turn) {
	if turn.Role == ai.RoleAssistant {
		fmt.Fprintln(cs.out, assistantLabelStyle.Render("Assistant"))
		fmt.Fprint(cs.out, cs.render(turn.Content))
		return
	}
	fmt.Fprintln(cs.out, userLabelStyle.Render("You"))
	fmt.Fprintln(cs.out, turn.Content)
}
