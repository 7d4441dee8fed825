// Package main is the entry point for the murmur application.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/billie-coop/murmur/internal/app"
	"github.com/billie-coop/murmur/internal/config"
	"github.com/billie-coop/murmur/internal/tui"
	"github.com/billie-coop/murmur/internal/tui/events"
	"github.com/billie-coop/murmur/internal/tui/styles"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogFile is the log inside the data directory. The terminal belongs to the
// UI, so nothing is logged to stderr.
const LogFile = "murmur.log"

// cli holds flag values and the per-run services shared by subcommands.
type cli struct {
	dataDir   string
	provider  string
	host      string
	model     string
	verbose   bool
	noPersist bool

	configs *config.Manager
	logger  *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "murmur",
		Short: "murmur - chat with a local language model in your terminal",
		Long: `murmur is a terminal chat client for a local model server.

It streams replies from Ollama (or any OpenAI-compatible server such as
LM Studio or llama.cpp) and keeps your conversation between runs.

Run without arguments to start the interactive chat interface.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInteractiveChat()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.dataDir, "data-dir", config.DefaultDataDir(), "directory for config, logs and transcripts")
	flags.StringVar(&c.provider, "provider", "", "model server type: ollama or openai")
	flags.StringVar(&c.host, "host", "", "model server base URL")
	flags.StringVar(&c.model, "model", "", "model name")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "log at debug level")
	flags.BoolVar(&c.noPersist, "no-persist", false, "do not load or save the transcript")

	root.AddCommand(c.askCmd(), c.searchCmd(), c.modelsCmd(), c.configCmd())
	return root
}

// setup loads the config, applies flag overrides and opens the log file.
func (c *cli) setup() error {
	c.configs = config.NewManager(c.dataDir)
	if err := c.configs.Load(); err != nil {
		return err
	}

	logger, err := newLogger(filepath.Join(c.dataDir, LogFile), c.verbose)
	if err != nil {
		return err
	}
	c.logger = logger
	return nil
}

// effectiveConfig returns the loaded config with this run's flags applied.
// The file on disk is not changed.
func (c *cli) effectiveConfig() *config.Config {
	cfg := *c.configs.Get()
	if c.provider != "" {
		cfg.Provider = c.provider
	}
	if c.host != "" {
		cfg.Host = c.host
	}
	if c.model != "" {
		cfg.Model = c.model
	}
	if c.noPersist {
		cfg.Persist = false
	}
	return &cfg
}

func (c *cli) newApp(persist bool) (*app.App, error) {
	cfg := c.effectiveConfig()
	cfg.Persist = cfg.Persist && persist
	return app.New(cfg, app.Options{DataDir: c.dataDir, Logger: c.logger})
}

func newLogger(path string, verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	config.OutputPaths = []string{path}
	config.ErrorOutputPaths = []string{path}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

func (c *cli) runInteractiveChat() error {
	a, err := c.newApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	model := tui.New(a)
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		c.logger.Error("ui exited with error", zap.Error(err))
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}

func (c *cli) askCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask [prompt]",
		Short: "Stream one reply to stdout without the interface",
		Long: `Sends a single prompt with the system prompt and prints the reply as it
streams. The transcript is not touched.

Example:
  murmur ask "what does a goroutine cost?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.newApp(false)
			if err != nil {
				return err
			}
			defer a.Close()
			return ask(cmd.Context(), a, strings.Join(args, " "), cmd.OutOrStdout())
		},
	}
}

// ask runs one request through the chat service and copies its fragments
// to out as they arrive.
func ask(ctx context.Context, a *app.App, prompt string, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	sub := a.EventBroker.Subscribe(events.ChatResponse, events.ChatSettled)
	defer sub.Close()

	go a.Chat.Send(ctx, 1, prompt)

	for {
		event, ok := sub.Next(ctx)
		if !ok {
			return ctx.Err()
		}
		switch payload := event.Payload.(type) {
		case events.FragmentPayload:
			fmt.Fprint(out, payload.Text)
		case events.SettledPayload:
			fmt.Fprintln(out)
			return payload.Err
		}
	}
}

func (c *cli) searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search [query]",
		Short: "Search the web and print the results",
		Long: `Runs the same web search as ctrl+f in the chat interface and prints
each hit. Set search_endpoint to use another DuckDuckGo-compatible page.

Example:
  murmur search "bubbletea v2 key events"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.newApp(false)
			if err != nil {
				return err
			}
			defer a.Close()

			query := strings.Join(args, " ")
			results, err := a.Search.Search(cmd.Context(), 1, query)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(results) == 0 {
				fmt.Fprintf(out, "No results for %q\n", query)
				return nil
			}
			for i, r := range results {
				fmt.Fprintf(out, "%d. %s\n   %s\n", i+1, r.Title, r.URL)
				if r.Snippet != "" {
					fmt.Fprintf(out, "   %s\n", r.Snippet)
				}
			}
			return nil
		},
	}
}

func (c *cli) modelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the models the server offers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.newApp(false)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			models, err := a.Chat.Models(ctx)
			if err != nil {
				return fmt.Errorf("failed to list models: %w", err)
			}

			current := a.Config.Model
			for _, name := range models {
				marker := "  "
				if name == current || strings.TrimSuffix(name, ":latest") == current {
					marker = "* "
				}
				fmt.Fprintln(cmd.OutOrStdout(), marker+name)
			}
			return nil
		},
	}
}

func (c *cli) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change settings",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print every setting",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# %s\n", c.configs.Path())
			for _, key := range config.Keys() {
				value, err := c.configs.Value(key)
				if err != nil {
					return err
				}
				if strings.Contains(value, "\n") {
					value = strings.SplitN(value, "\n", 2)[0] + " ..."
				}
				fmt.Fprintf(out, "%-15s %s\n", key, value)
			}
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Change one setting",
		Long:  "Keys: " + strings.Join(config.Keys(), ", "),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == "theme" {
				themes := styles.DefaultManager().List()
				if !slices.Contains(themes, args[1]) {
					return fmt.Errorf("unknown theme %q, available: %s", args[1], strings.Join(themes, ", "))
				}
			}
			if err := c.configs.Set(args[0], args[1]); err != nil {
				return err
			}
			c.logger.Info("config updated", zap.String("key", args[0]))
			fmt.Fprintf(cmd.OutOrStdout(), "%s updated\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(show, set)
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
