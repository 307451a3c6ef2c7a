package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/iksnae/storyline/internal"
	"github.com/iksnae/storyline/internal/chat"
	"github.com/iksnae/storyline/internal/llm"
	"github.com/iksnae/storyline/internal/store"
	"github.com/iksnae/storyline/internal/tools"
	"github.com/iksnae/storyline/internal/ui"
	"github.com/spf13/cobra"
)

const replHelp = `Commands:
  help                       Show this help
  clear                      Start a fresh conversation
  history                    Show the number of messages so far
  review <feature> <story>   Ask for a review of a stored story
  exit, quit                 Leave the session

Anything else is sent to the assistant.`

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive story writing session",
	Long: `Start an interactive session with the assistant.

The assistant can create, update, list and search stories and features in the
store, ask you multiple-choice questions and present drafts for approval.
Type 'help' inside the session for the available commands.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd.Context(), cmd)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(ctx context.Context, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("%w: set ANTHROPIC_API_KEY or run 'storyline config set-key'", llm.ErrMissingCredential)
	}
	gateway, err := llm.NewAnthropicGateway(llm.AnthropicConfig{
		APIKey:    cfg.APIKey,
		Model:     cfg.Model,
		BaseURL:   cfg.BaseURL,
		MaxTokens: cfg.MaxTokens,
		Timeout:   cfg.HTTPTimeout,
	})
	if err != nil {
		return err
	}
	defer gateway.Close()

	st, err := store.Open(cfg.StoreDir)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	var extra string
	if contextFile != "" {
		data, err := os.ReadFile(contextFile)
		if err != nil {
			return &internal.StorageError{Path: contextFile, Op: "read", Err: err}
		}
		extra = string(data)
	}

	term := ui.NewTerminal(cmd.InOrStdin(), cmd.OutOrStdout())
	sess, err := newSession(ctx, gateway, st, term, cfg.MaxRounds, extra)
	if err != nil {
		return err
	}
	fmt.Fprintf(term.Out(), "Storyline %s · model %s · store %s\n", version, gateway.Model(), st.Root())
	fmt.Fprintln(term.Out(), "Type 'help' for commands, 'exit' to quit.")
	return sess.run(ctx)
}

// session is one REPL over an orchestrator
type session struct {
	term  *ui.Terminal
	orch  *chat.Orchestrator
	store *store.Store
}

func newSession(ctx context.Context, gateway llm.Gateway, st *store.Store, term *ui.Terminal, maxRounds int, extra string) (*session, error) {
	specs, err := tools.Specs()
	if err != nil {
		return nil, fmt.Errorf("failed to build tool schemas: %w", err)
	}

	opts := []chat.Option{chat.WithMaxRounds(maxRounds), chat.WithTools(specs)}
	if term.Interactive() {
		opts = append(opts, chat.WithWaiter(internal.ShowProgress))
	}
	orch := chat.New(gateway, tools.NewExecutor(st, term), term, opts...)

	projectContext, err := chat.BuildProjectContext(ctx, st, extra)
	if err != nil {
		return nil, err
	}
	orch.AddContext(projectContext)

	return &session{term: term, orch: orch, store: st}, nil
}

// run reads lines until exit or end of input. Failed turns are reported and
// the session continues.
func (s *session) run(ctx context.Context) error {
	for {
		line, err := s.term.ReadLine(ctx, "you › ")
		if errors.Is(err, io.EOF) || errors.Is(err, ui.ErrCancelled) {
			fmt.Fprintln(s.term.Out(), "\nGoodbye!")
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		done, err := s.handle(ctx, line)
		if err != nil {
			internal.LogDebug("Turn failed: %v", err)
			s.term.ShowError(err)
		}
		if done {
			fmt.Fprintln(s.term.Out(), "Goodbye!")
			return nil
		}
	}
}

func (s *session) handle(ctx context.Context, line string) (bool, error) {
	fields := strings.Fields(line)
	switch strings.ToLower(fields[0]) {
	case "exit", "quit":
		return true, nil
	case "help":
		fmt.Fprintln(s.term.Out(), replHelp)
		return false, nil
	case "clear":
		s.orch.ClearHistory()
		fmt.Fprintln(s.term.Out(), "Conversation cleared.")
		return false, nil
	case "history":
		fmt.Fprintln(s.term.Out(), historySummary(s.orch.History()))
		return false, nil
	case "review":
		if len(fields) == 3 {
			return false, s.review(ctx, fields[1], fields[2])
		}
	}
	return false, s.send(ctx, line)
}

func (s *session) review(ctx context.Context, featureID, storyID string) error {
	story, err := s.store.GetStory(featureID, storyID)
	if err != nil {
		return err
	}
	if story == nil {
		return fmt.Errorf("story not found: %s/%s", featureID, storyID)
	}
	return s.send(ctx, chat.ReviewPrompt(story))
}

// send runs one turn. An interrupt cancels the turn, not the session.
func (s *session) send(ctx context.Context, text string) error {
	turnCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	return s.orch.Chat(turnCtx, text)
}

func historySummary(msgs []llm.Message) string {
	var user, assistant int
	for _, m := range msgs {
		if m.Role == llm.RoleUser {
			user++
		} else {
			assistant++
		}
	}
	return fmt.Sprintf("%d messages (%d user, %d assistant)", len(msgs), user, assistant)
}
